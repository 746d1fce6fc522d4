package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mvdbrink/teamplanner/pkg/core/planner"
)

const configFileName = "teamplanner_config.yaml"

// PlanningDefaults carries per-run defaults the plan command falls back to
type PlanningDefaults struct {
	Weeks          int    `yaml:"weeks" validate:"required,min=1,max=12"`
	Algorithm      string `yaml:"algorithm" validate:"required,oneof=balanced sequential custom"`
	IncludeStandby bool   `yaml:"includeStandby"`
}

// Config represents the application configuration
type Config struct {
	DatabaseURL string           `yaml:"databaseURL" validate:"required"`
	TeamID      string           `yaml:"teamID" validate:"required,uuid4"`
	Planning    PlanningDefaults `yaml:"planning"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from teamplanner_config.yaml,
// searched for in the current directory first and the home directory second
func Load() (*Config, error) {
	path, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}
	return LoadFromPath(path)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Config{
		Planning: PlanningDefaults{
			Weeks:     4,
			Algorithm: string(planner.AlgorithmBalanced),
		},
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate validates the configuration struct
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// findConfigFile searches the current directory and the home directory
func findConfigFile() (string, error) {
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homePath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homePath); err == nil {
		return homePath, nil
	}

	return "", fmt.Errorf("%s not found in current directory or home directory", configFileName)
}
