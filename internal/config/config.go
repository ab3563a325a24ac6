package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	GitLab GitLabConfig `yaml:"gitlab"`
	Server ServerConfig `yaml:"server"`
	Chart  ChartConfig  `yaml:"chart"`
}

// GitLabConfig points the dashboard at a GitLab instance and project.
type GitLabConfig struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token"`
	Project string `yaml:"project"`
}

// ServerConfig controls the HTTP surface.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
	DBPath    string `yaml:"db_path"`
}

// ChartConfig controls chart-side defaults.
type ChartConfig struct {
	DefaultSpanDays int    `yaml:"default_span_days"`
	Theme           string `yaml:"theme"`
}

// Load loads config from the user's config directory.
// Returns default config if the file doesn't exist. A .env file and
// environment variables override file values, so the token never has to
// live in the config file.
func Load() (*Config, error) {
	// Best effort; a missing .env is the normal case
	_ = godotenv.Load()

	configPath, err := getConfigPath()
	if err != nil {
		config := defaultConfig()
		config.applyEnvOverrides()
		return config, nil
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := defaultConfig()
		config.applyEnvOverrides()
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	// Fill in any missing values with defaults
	config.applyDefaults()
	config.applyEnvOverrides()

	return &config, nil
}

// Save saves the config to the user's config directory
func (c *Config) Save() error {
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0o644)
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	// Try XDG_CONFIG_HOME first
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "ganttdash", "config.yaml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", "ganttdash", "config.yaml"), nil
}

func defaultConfig() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	if c.GitLab.BaseURL == "" {
		c.GitLab.BaseURL = "https://gitlab.com"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.DBPath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.Server.DBPath = filepath.Join(home, ".ganttdash", "prefs.db")
		}
	}
	if c.Chart.DefaultSpanDays <= 0 {
		c.Chart.DefaultSpanDays = 7
	}
	if c.Chart.Theme == "" {
		c.Chart.Theme = "light"
	}
}

// applyEnvOverrides lets the environment win over file values.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GITLAB_URL"); v != "" {
		c.GitLab.BaseURL = v
	}
	if v := os.Getenv("GITLAB_TOKEN"); v != "" {
		c.GitLab.Token = v
	}
	if v := os.Getenv("GITLAB_PROJECT"); v != "" {
		c.GitLab.Project = v
	}
	if v := os.Getenv("GANTTDASH_ADDR"); v != "" {
		c.Server.Addr = v
	}
}
