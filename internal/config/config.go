package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort         = 8080
	DefaultHost         = "127.0.0.1"
	DefaultLogLevel     = "info"
	DefaultLanguage     = "de"
	DefaultMaxImageSize = 20 * 1024 * 1024 // 20MB

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the form render server
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Form configuration
	FormsDirectory  string
	OutputDirectory string
	Language        string
	Verify          bool
	Compress        bool

	// Application configuration
	Version      string
	ServerName   string
	LogLevel     string
	MaxImageSize int64 // Maximum embedded image size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		// Fallback to current directory if working directory cannot be determined
		currentDir = "."
	}

	return &Config{
		Mode:            ModeStdio, // Default to stdio mode for MCP compatibility
		Host:            DefaultHost,
		Port:            DefaultPort,
		FormsDirectory:  filepath.Join(currentDir, "forms"),
		OutputDirectory: filepath.Join(currentDir, "output"),
		Language:        DefaultLanguage,
		Verify:          true,
		Compress:        true,
		Version:         "1.0.0",
		ServerName:      "formpdf",
		LogLevel:        DefaultLogLevel,
		MaxImageSize:    DefaultMaxImageSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.FormsDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.FormsDirectory); err == nil {
			cfg.FormsDirectory = expandedPath
		}
	}
	if cfg.OutputDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.OutputDirectory); err == nil {
			cfg.OutputDirectory = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix("FORMPDF")
	viper.AutomaticEnv()

	// Define flags with Viper
	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("forms", cfg.FormsDirectory)
	viper.SetDefault("output", cfg.OutputDirectory)
	viper.SetDefault("lang", cfg.Language)
	viper.SetDefault("verify", cfg.Verify)
	viper.SetDefault("compress", cfg.Compress)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maximagesize", cfg.MaxImageSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("forms", cfg.FormsDirectory, "Directory containing form definitions")
	pflag.String("output", cfg.OutputDirectory, "Directory for rendered documents")
	pflag.String("lang", cfg.Language, "Preferred i18n language for form names and labels")
	pflag.Bool("verify", cfg.Verify, "Read rendered documents back for verification")
	pflag.Bool("compress", cfg.Compress, "Compress content streams in rendered documents")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maximagesize", cfg.MaxImageSize, "Maximum embedded image size in bytes")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("mode", pflag.Lookup("mode"))
	_ = viper.BindPFlag("host", pflag.Lookup("host"))
	_ = viper.BindPFlag("port", pflag.Lookup("port"))
	_ = viper.BindPFlag("forms", pflag.Lookup("forms"))
	_ = viper.BindPFlag("output", pflag.Lookup("output"))
	_ = viper.BindPFlag("lang", pflag.Lookup("lang"))
	_ = viper.BindPFlag("verify", pflag.Lookup("verify"))
	_ = viper.BindPFlag("compress", pflag.Lookup("compress"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("maximagesize", pflag.Lookup("maximagesize"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nformpdf - A Model Context Protocol server that renders form definitions into PDF documents\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                          "+
			"# stdio mode, ./forms (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --forms=/path/to/forms                   "+
			"# stdio mode with custom forms directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --forms=/path/to/forms     # server mode\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --host=0.0.0.0 --port=8081 # server on all interfaces\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  FORMPDF_MODE         Server mode\n")
		fmt.Fprintf(os.Stderr, "  FORMPDF_HOST         Server host\n")
		fmt.Fprintf(os.Stderr, "  FORMPDF_PORT         Server port\n")
		fmt.Fprintf(os.Stderr, "  FORMPDF_FORMS        Forms directory\n")
		fmt.Fprintf(os.Stderr, "  FORMPDF_OUTPUT       Output directory\n")
		fmt.Fprintf(os.Stderr, "  FORMPDF_LANG         Preferred language\n")
		fmt.Fprintf(os.Stderr, "  FORMPDF_VERIFY       Verify rendered documents\n")
		fmt.Fprintf(os.Stderr, "  FORMPDF_COMPRESS     Compress content streams\n")
		fmt.Fprintf(os.Stderr, "  FORMPDF_LOGLEVEL     Log level\n")
		fmt.Fprintf(os.Stderr, "  FORMPDF_MAXIMAGESIZE Maximum image size\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.FormsDirectory = viper.GetString("forms")
	cfg.OutputDirectory = viper.GetString("output")
	cfg.Language = viper.GetString("lang")
	cfg.Verify = viper.GetBool("verify")
	cfg.Compress = viper.GetBool("compress")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxImageSize = viper.GetInt64("maximagesize")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	// Validate forms directory
	if c.FormsDirectory == "" {
		return errors.New("forms directory cannot be empty")
	}

	// Check if forms directory exists, create if it doesn't
	if _, err := os.Stat(c.FormsDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.FormsDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create forms directory %s: %w", c.FormsDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access forms directory %s: %w", c.FormsDirectory, err)
	}

	// Validate output directory
	if c.OutputDirectory == "" {
		return errors.New("output directory cannot be empty")
	}

	// Validate language
	if c.Language == "" {
		return errors.New("language cannot be empty")
	}

	// Validate max image size
	if c.MaxImageSize <= 0 {
		return errors.New("maximum image size must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, FormsDirectory: %s, OutputDirectory: %s, Language: %s, LogLevel: %s}",
		c.Mode, c.Host, c.Port, c.FormsDirectory, c.OutputDirectory, c.Language, c.LogLevel)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
