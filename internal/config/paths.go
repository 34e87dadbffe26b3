package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains the resolved file system locations used at runtime
type Paths struct {
	ExecutableDir  string
	DataDir        string
	IndustriesFile string
	LogFile        string
}

// ResolvePaths turns the configured (possibly relative) paths into absolute ones.
// A relative data directory is looked up in the working directory first and then
// next to the executable.
func (c *Config) ResolvePaths() (*Paths, error) {
	exeDir, err := executableDir()
	if err != nil {
		return nil, err
	}

	dataDir, err := resolve(c.Paths.DataDir, exeDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data dir: %w", err)
	}

	paths := &Paths{
		ExecutableDir: exeDir,
		DataDir:       dataDir,
		LogFile:       c.Logging.FilePath,
	}

	if c.Paths.IndustriesFile != "" {
		paths.IndustriesFile, err = resolve(c.Paths.IndustriesFile, exeDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve industries file: %w", err)
		}
	}

	return paths, nil
}

// FileExists reports whether path exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	return filepath.Dir(exe), nil
}

func resolve(p, exeDir string) (string, error) {
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}

	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if FileExists(abs) {
		return abs, nil
	}

	if candidate := filepath.Join(exeDir, p); FileExists(candidate) {
		return candidate, nil
	}

	// Neither exists yet; keep the working-directory form so errors name it.
	return abs, nil
}
