//go:build ignore

// build.go - pricelens build script
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: all, web, coefreport, test, clean

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	module          = "pricelens"
	contractsPkg    = module + "/pkg/contracts"
	defaultDistName = "dist"
)

// BuildContext holds configuration for the build process
type BuildContext struct {
	Verbose bool
	RootDir string
	DistDir string
}

var (
	// executables maps the cmd/ directory name to the output binary name
	executables = map[string]string{
		"web":        "pricelens",
		"coefreport": "coefreport",
	}

	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorBlue  = "\033[34m"
	colorCyan  = "\033[36m"
)

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	rootDir, err := os.Getwd()
	if err != nil {
		printError(fmt.Sprintf("Failed to get current directory: %v", err))
		os.Exit(1)
	}
	if _, err := os.Stat(filepath.Join(rootDir, "go.mod")); err != nil {
		printError("build.go must be run from the module root")
		os.Exit(1)
	}

	ctx := &BuildContext{
		Verbose: *verbose,
		RootDir: rootDir,
		DistDir: filepath.Join(rootDir, defaultDistName),
	}

	printHeader()
	startTime := time.Now()

	switch *target {
	case "all":
		buildExecutable("web", ctx)
		buildExecutable("coefreport", ctx)
	case "web", "coefreport":
		buildExecutable(*target, ctx)
	case "test":
		runTests(ctx)
	case "clean":
		clean(ctx)
	default:
		printError(fmt.Sprintf("Unknown target: %s", *target))
		fmt.Println("Targets: all, web, coefreport, test, clean")
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Build completed in %s", time.Since(startTime).Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "        pricelens - Build System           " + colorReset)
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println()
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

// gitCommit returns the short HEAD hash, or "unknown" outside a git checkout
func gitCommit(dir string) string {
	cmd := exec.Command("git", "rev-parse", "--short", "HEAD")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

func buildExecutable(name string, ctx *BuildContext) {
	binName := executables[name]
	if runtime.GOOS == "windows" {
		binName += ".exe"
	}

	printInfo(fmt.Sprintf("Building %s...", name))

	if err := os.MkdirAll(ctx.DistDir, 0o755); err != nil {
		printError(fmt.Sprintf("Failed to create %s: %v", ctx.DistDir, err))
		os.Exit(1)
	}

	outputPath := filepath.Join(ctx.DistDir, binName)
	ldflags := fmt.Sprintf("-s -w -X %s.BuildTime=%s -X %s.GitCommit=%s",
		contractsPkg, time.Now().UTC().Format(time.RFC3339),
		contractsPkg, gitCommit(ctx.RootDir))

	args := []string{"build"}
	if ctx.Verbose {
		args = append(args, "-v")
	}
	args = append(args, "-ldflags", ldflags, "-o", outputPath, "./cmd/"+name)

	cmd := exec.Command("go", args...)
	cmd.Dir = ctx.RootDir
	cmd.Stderr = os.Stderr
	if ctx.Verbose {
		fmt.Printf("Running: go %s\n", strings.Join(args, " "))
		cmd.Stdout = os.Stdout
	}

	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Failed to build %s: %v", name, err))
		os.Exit(1)
	}

	if info, err := os.Stat(outputPath); err == nil {
		sizeMB := float64(info.Size()) / 1024 / 1024
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", binName, sizeMB))
	}
}

func runTests(ctx *BuildContext) {
	printInfo("Running Go tests...")

	args := []string{"test", "-race"}
	if ctx.Verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Dir = ctx.RootDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Go tests failed: %v", err))
		os.Exit(1)
	}
	printSuccess("All tests passed")
}

func clean(ctx *BuildContext) {
	printInfo("Cleaning build artifacts...")

	if err := os.RemoveAll(ctx.DistDir); err != nil {
		printError(fmt.Sprintf("Failed to clean %s: %v", ctx.DistDir, err))
		os.Exit(1)
	}

	logs, _ := filepath.Glob(filepath.Join(ctx.RootDir, "logs", "*.log"))
	for _, f := range logs {
		if err := os.Remove(f); err != nil && ctx.Verbose {
			printError(fmt.Sprintf("Failed to remove %s: %v", f, err))
		}
	}

	printSuccess("Build artifacts cleaned")
}
