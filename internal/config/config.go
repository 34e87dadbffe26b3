package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load
const EnvPrefix = "PRICELENS"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Model     ModelConfig     `yaml:"model" envconfig:"MODEL"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST" default:"127.0.0.1"`
	Port            int           `yaml:"port" envconfig:"PORT" default:"5000" validate:"min=1,max=65535"`
	Debug           bool          `yaml:"debug" envconfig:"DEBUG" default:"false"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5000"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"false"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/pricelens.log"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir        string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data" validate:"required"`
	IndustriesFile string `yaml:"industries_file" envconfig:"INDUSTRIES_FILE"`
}

// TelemetryConfig selects the OpenTelemetry exporters
type TelemetryConfig struct {
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"none" validate:"oneof=stdout none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" default:"prometheus" validate:"oneof=prometheus none"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" default:"1" validate:"gte=0,lte=1"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT" default:"development"`
}

// ModelConfig holds regression settings
type ModelConfig struct {
	// Alpha is the L2 regularisation strength
	Alpha float64 `yaml:"alpha" envconfig:"ALPHA" default:"1.0" validate:"gt=0"`
}

// Load loads configuration from environment variables and an optional config file.
// Environment values win over file values.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file path; an empty path skips the file.
func LoadFrom(configFile string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile != "" {
		fileConfig, keys, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg, keys)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file. The returned set holds the
// dotted path of every key present in the file, so explicit zero values and
// false can be told apart from absent keys.
func loadFromFile(filePath string) (*Config, map[string]bool, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, nil, err
	}

	var raw map[interface{}]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}
	keys := make(map[string]bool)
	collectKeys("", raw, keys)

	return &cfg, keys, nil
}

func collectKeys(prefix string, node map[interface{}]interface{}, keys map[string]bool) {
	for k, v := range node {
		name := fmt.Sprint(k)
		if prefix != "" {
			name = prefix + "." + name
		}
		keys[name] = true
		if child, ok := v.(map[interface{}]interface{}); ok {
			collectKeys(name, child, keys)
		}
	}
}

// mergeConfigs overlays every file value whose key is present in the file and
// was not given explicitly in the environment.
func mergeConfigs(fileConfig, envConfig Config, keys map[string]bool) Config {
	fromFile := func(key, env string) bool {
		if !keys[key] {
			return false
		}
		_, ok := os.LookupEnv(EnvPrefix + "_" + env)
		return !ok
	}

	if fromFile("server.host", "SERVER_HOST") {
		envConfig.Server.Host = fileConfig.Server.Host
	}
	if fromFile("server.port", "SERVER_PORT") {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if fromFile("server.debug", "SERVER_DEBUG") {
		envConfig.Server.Debug = fileConfig.Server.Debug
	}
	if fromFile("server.read_timeout", "SERVER_READ_TIMEOUT") {
		envConfig.Server.ReadTimeout = fileConfig.Server.ReadTimeout
	}
	if fromFile("server.write_timeout", "SERVER_WRITE_TIMEOUT") {
		envConfig.Server.WriteTimeout = fileConfig.Server.WriteTimeout
	}
	if fromFile("server.idle_timeout", "SERVER_IDLE_TIMEOUT") {
		envConfig.Server.IdleTimeout = fileConfig.Server.IdleTimeout
	}
	if fromFile("server.shutdown_timeout", "SERVER_SHUTDOWN_TIMEOUT") {
		envConfig.Server.ShutdownTimeout = fileConfig.Server.ShutdownTimeout
	}

	if fromFile("security.allowed_origins", "SECURITY_ALLOWED_ORIGINS") {
		envConfig.Security.AllowedOrigins = fileConfig.Security.AllowedOrigins
	}
	if fromFile("security.enable_cors", "SECURITY_ENABLE_CORS") {
		envConfig.Security.EnableCORS = fileConfig.Security.EnableCORS
	}
	if fromFile("security.rate_limit.enabled", "SECURITY_RATE_LIMIT_ENABLED") {
		envConfig.Security.RateLimit.Enabled = fileConfig.Security.RateLimit.Enabled
	}
	if fromFile("security.rate_limit.rps", "SECURITY_RATE_LIMIT_RPS") {
		envConfig.Security.RateLimit.RPS = fileConfig.Security.RateLimit.RPS
	}
	if fromFile("security.rate_limit.burst", "SECURITY_RATE_LIMIT_BURST") {
		envConfig.Security.RateLimit.Burst = fileConfig.Security.RateLimit.Burst
	}

	if fromFile("logging.level", "LOGGING_LEVEL") {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if fromFile("logging.output", "LOGGING_OUTPUT") {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}
	if fromFile("logging.file_path", "LOGGING_FILE_PATH") {
		envConfig.Logging.FilePath = fileConfig.Logging.FilePath
	}

	if fromFile("paths.data_dir", "PATHS_DATA_DIR") {
		envConfig.Paths.DataDir = fileConfig.Paths.DataDir
	}
	if fromFile("paths.industries_file", "PATHS_INDUSTRIES_FILE") {
		envConfig.Paths.IndustriesFile = fileConfig.Paths.IndustriesFile
	}

	if fromFile("telemetry.trace_exporter", "TELEMETRY_TRACE_EXPORTER") {
		envConfig.Telemetry.TraceExporter = fileConfig.Telemetry.TraceExporter
	}
	if fromFile("telemetry.metric_exporter", "TELEMETRY_METRIC_EXPORTER") {
		envConfig.Telemetry.MetricExporter = fileConfig.Telemetry.MetricExporter
	}
	if fromFile("telemetry.sample_ratio", "TELEMETRY_SAMPLE_RATIO") {
		envConfig.Telemetry.SampleRatio = fileConfig.Telemetry.SampleRatio
	}
	if fromFile("telemetry.environment", "TELEMETRY_ENVIRONMENT") {
		envConfig.Telemetry.Environment = fileConfig.Telemetry.Environment
	}

	if fromFile("model.alpha", "MODEL_ALPHA") {
		envConfig.Model.Alpha = fileConfig.Model.Alpha
	}

	return envConfig
}

// Validate checks the struct tags of every section
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// getConfigFilePath returns the first config file found in the usual locations
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            5000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:5000"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				RPS:   100,
				Burst: 50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/pricelens.log",
		},
		Paths: PathsConfig{
			DataDir: "data",
		},
		Telemetry: TelemetryConfig{
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1,
			Environment:    "development",
		},
		Model: ModelConfig{
			Alpha: 1.0,
		},
	}
}
