package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	xdgAppName = "taskplan"
	configFile = "config.yaml"
	envPrefix  = "TASKPLAN"

	DefaultBaseURL  = "http://localhost:5000/api"
	DefaultListen   = ":5000"
	DefaultCalendar = "Tasks"
)

type Config struct {
	BaseURL   string        `mapstructure:"base_url" yaml:"base_url"`
	APIToken  string        `mapstructure:"api_token" yaml:"api_token,omitempty"`
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
	NoticeTTL time.Duration `mapstructure:"notice_ttl" yaml:"notice_ttl"`
	LogLevel  string        `mapstructure:"log_level" yaml:"log_level"`
	Calendar  string        `mapstructure:"calendar" yaml:"calendar"`
	Listen    string        `mapstructure:"listen" yaml:"listen"`
}

func Default() *Config {
	return &Config{
		BaseURL:   DefaultBaseURL,
		Timeout:   30 * time.Second,
		NoticeTTL: 5 * time.Second,
		LogLevel:  "warn",
		Calendar:  DefaultCalendar,
		Listen:    DefaultListen,
	}
}

// Dir is the per-user directory holding the config, oauth token and calendar index.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

func GetConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the config file at its default location. See LoadFrom.
func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return Default(), nil
	}
	return LoadFrom(path)
}

// LoadFrom layers, lowest first: defaults, the YAML file at path (missing is
// fine), a .env file in the working directory, and TASKPLAN_* variables.
func LoadFrom(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	def := Default()
	v := viper.New()
	v.SetDefault("base_url", def.BaseURL)
	v.SetDefault("api_token", "")
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("notice_ttl", def.NoticeTTL)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("calendar", def.Calendar)
	v.SetDefault("listen", def.Listen)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.Calendar == "" {
		cfg.Calendar = DefaultCalendar
	}
	return &cfg, nil
}

// Save writes cfg to the default location.
func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

func SaveTo(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer f.Close()

	encoder := yaml.NewEncoder(f)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return err
	}
	return encoder.Close()
}
