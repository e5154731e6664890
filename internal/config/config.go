package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr          string        `yaml:"addr"`
	APITimeout    time.Duration `yaml:"timeout"`
	DatabasePath  string        `yaml:"database_path"`
	AlertInterval time.Duration `yaml:"alert_interval"`
	Auth          AuthConfig    `yaml:"auth"`
	Defaults      Defaults      `yaml:"defaults"`
}

// AuthConfig describes the optional admin signin surface. When Enabled is
// false the whole API is open, matching the single-tenant deployment the
// service was built for.
type AuthConfig struct {
	Enabled       bool          `yaml:"enabled"`
	JWTSecret     string        `yaml:"jwt_secret"`
	Username      string        `yaml:"username"`
	PasswordHash  string        `yaml:"password_hash"`
	TokenDuration time.Duration `yaml:"token_duration"`
}

// Defaults fill the optional carnet fields left empty on creation.
type Defaults struct {
	MedicalFitness      string `yaml:"medical_fitness"`
	Employer            string `yaml:"employer"`
	AuthorizationType   string `yaml:"authorization_type"`
	ResolutionReference string `yaml:"resolution_reference"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:          getEnv("CARNETS_ADDR", ":8080"),
		APITimeout:    15 * time.Second,
		DatabasePath:  getEnv("CARNETS_DATABASE_PATH", "carnets.db"),
		AlertInterval: 0,
		Auth: AuthConfig{
			JWTSecret:     getEnv("CARNETS_JWT_SECRET", ""),
			TokenDuration: 1 * time.Hour,
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate fills remaining defaults and rejects configurations that cannot
// serve requests safely.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path must not be empty")
	}
	if c.APITimeout <= 0 {
		c.APITimeout = 15 * time.Second
	}

	if c.Defaults.MedicalFitness == "" {
		c.Defaults.MedicalFitness = "Fit"
	}
	if c.Defaults.Employer == "" {
		c.Defaults.Employer = "ARCOR SAIC"
	}
	if c.Defaults.AuthorizationType == "" {
		c.Defaults.AuthorizationType = "Autoelevador 2240 Kg"
	}
	if c.Defaults.ResolutionReference == "" {
		c.Defaults.ResolutionReference = "960/2015"
	}

	if c.Auth.Enabled {
		if c.Auth.JWTSecret == "" {
			return fmt.Errorf("auth.jwt_secret is required when auth is enabled")
		}
		if c.Auth.Username == "" || c.Auth.PasswordHash == "" {
			return fmt.Errorf("auth.username and auth.password_hash are required when auth is enabled")
		}
		if c.Auth.TokenDuration <= 0 {
			c.Auth.TokenDuration = 1 * time.Hour
		}
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
