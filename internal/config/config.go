// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the configuration for excavator
type Config struct {
	// General settings
	Version     string `yaml:"version" json:"version"`
	ProjectName string `yaml:"project_name,omitempty" json:"project_name,omitempty"`

	// Analysis settings
	Analysis AnalysisConfig `yaml:"analysis" json:"analysis"`

	// Golden fixture settings
	Golden GoldenConfig `yaml:"golden" json:"golden"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// File patterns
	Files FilesConfig `yaml:"files" json:"files"`

	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

type AnalysisConfig struct {
	// Function line span at which a function is a long method
	LongMethodThreshold int `yaml:"long_method_threshold" json:"long_method_threshold"`

	// Parameter count above which a parameter list is long
	LongParameterListThreshold int `yaml:"long_parameter_list_threshold" json:"long_parameter_list_threshold"`

	// Chain depth at which an expression counts as a message chain
	MessageChainThreshold int `yaml:"message_chain_threshold" json:"message_chain_threshold"`

	// Cyclomatic complexity above which a finding is reported
	ComplexityThreshold int `yaml:"complexity_threshold" json:"complexity_threshold"`

	// Control-flow keywords the calculator recognizes
	DecisionKeywords []string `yaml:"decision_keywords" json:"decision_keywords"`

	// Decorator name -> dispatch modifier (class, static)
	DispatchMarkers map[string]string `yaml:"dispatch_markers" json:"dispatch_markers"`

	// Parallel analysis
	MaxWorkers int `yaml:"max_workers" json:"max_workers"`
}

type GoldenConfig struct {
	// Directory holding golden files; empty means next to the source
	Dir string `yaml:"dir,omitempty" json:"dir,omitempty"`

	// Analyzed root; golden files under Dir mirror source paths relative
	// to it. Empty means the working directory
	Root string `yaml:"root,omitempty" json:"root,omitempty"`

	// Suffix appended to the source path
	Suffix string `yaml:"suffix" json:"suffix"`
}

type OutputConfig struct {
	// Default output format
	Format string `yaml:"format" json:"format"`

	// Colorized output
	Colors bool `yaml:"colors" json:"colors"`

	// Verbosity level
	Verbose bool `yaml:"verbose" json:"verbose"`

	// Show suggestions
	ShowSuggestions bool `yaml:"show_suggestions" json:"show_suggestions"`

	// Output file path (optional)
	OutputFile string `yaml:"output_file,omitempty" json:"output_file,omitempty"`
}

type FilesConfig struct {
	// Include patterns
	Include []string `yaml:"include" json:"include"`

	// Exclude patterns
	Exclude []string `yaml:"exclude" json:"exclude"`

	// Max file size (in KB)
	MaxFileSize int `yaml:"max_file_size" json:"max_file_size"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Analysis: AnalysisConfig{
			LongMethodThreshold:        15,
			LongParameterListThreshold: 4,
			MessageChainThreshold:      4,
			ComplexityThreshold:        10,
			DecisionKeywords:           []string{"if", "elif", "for", "while", "case", "except", "except*", "and", "or"},
			DispatchMarkers: map[string]string{
				"classmethod":  "class",
				"staticmethod": "static",
			},
			MaxWorkers: 4,
		},
		Golden: GoldenConfig{
			Suffix: ".golden",
		},
		Output: OutputConfig{
			Format:          "console",
			Colors:          true,
			Verbose:         false,
			ShowSuggestions: false,
		},
		Files: FilesConfig{
			Include:     []string{"**/*.py"},
			Exclude:     []string{".venv/**", "venv/**", "__pycache__/**", ".git/**", "node_modules/**"},
			MaxFileSize: 1024, // 1MB
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from file or returns default
func LoadConfig(configPath string) (*Config, error) {
	// If no config path provided, look for default config files
	if configPath == "" {
		configPath = findConfigFile()
	}

	// If still no config found, return default
	if configPath == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	config := DefaultConfig() // Start with defaults

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// findConfigFile looks for config files in common locations
func findConfigFile() string {
	possiblePaths := []string{
		".excavator.yml",
		".excavator.yaml",
		"excavator.yml",
		"excavator.yaml",
		".config/excavator.yml",
		".config/excavator.yaml",
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	validFormats := []string{"console", "json", "canonical"}
	formatValid := false
	for _, format := range validFormats {
		if c.Output.Format == format {
			formatValid = true
			break
		}
	}
	if !formatValid {
		return fmt.Errorf("invalid output format: %s (valid: %v)", c.Output.Format, validFormats)
	}

	if c.Analysis.MaxWorkers < 1 {
		return fmt.Errorf("max_workers must be at least 1")
	}

	if c.Analysis.LongMethodThreshold < 1 {
		return fmt.Errorf("long_method_threshold must be at least 1")
	}
	if c.Analysis.LongParameterListThreshold < 0 || c.Analysis.MessageChainThreshold < 1 {
		return fmt.Errorf("long_parameter_list_threshold and message_chain_threshold must be positive")
	}

	if len(c.Analysis.DecisionKeywords) == 0 {
		return fmt.Errorf("decision_keywords must not be empty")
	}

	for marker, target := range c.Analysis.DispatchMarkers {
		switch target {
		case "instance", "class", "static":
		default:
			return fmt.Errorf("dispatch marker %s: invalid target %q (valid: instance, class, static)", marker, target)
		}
	}

	if c.Golden.Suffix == "" {
		return fmt.Errorf("golden suffix must not be empty")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	return nil
}

// SaveConfig saves configuration to file
func (c *Config) SaveConfig(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateConfig creates a sample configuration file
func GenerateConfig(configPath string) error {
	config := DefaultConfig()
	return config.SaveConfig(configPath)
}

// MaxFileBytes returns the configured size limit in bytes
func (c *Config) MaxFileBytes() int64 {
	return int64(c.Files.MaxFileSize) * 1024
}
