package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/rulekit/internal/mdlint"
	"github.com/starford/rulekit/internal/tokens"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Rules  RulesConfig       `yaml:"rules"`
	Tokens TokensConfig      `yaml:"tokens"`
	Lint   LintConfig        `yaml:"lint"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Rules.Validate(); err != nil {
		return err
	}
	if err := c.Tokens.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// RulesConfig locates the rule trees and tunes the structural checks.
type RulesConfig struct {
	Path            string `yaml:"path"`
	FullDir         string `yaml:"full_dir"`
	ConciseDir      string `yaml:"concise_dir"`
	MaxHeadingLevel int    `yaml:"max_heading_level"`
	MaxConciseLines int    `yaml:"max_concise_lines"`
}

// Validate validates the rules configuration.
func (c *RulesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.MaxHeadingLevel, validation.Min(1), validation.Max(6)),
		validation.Field(&c.MaxConciseLines, validation.Min(1)),
	)
}

// TokensConfig holds tokenizer and reduction-target configuration.
// CachePath may be empty to disable the on-disk count cache.
type TokensConfig struct {
	Encoding        string  `yaml:"encoding"`
	CachePath       string  `yaml:"cache_path"`
	ReductionTarget float64 `yaml:"reduction_target"`
}

// Validate validates the tokens configuration.
func (c *TokensConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Encoding, validation.Required),
		validation.Field(&c.ReductionTarget, validation.Min(1.0), validation.Max(100.0)),
	)
}

// LintConfig holds external markdownlint configuration.
type LintConfig struct {
	ConfigPath string `yaml:"config_path"`
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Rules: RulesConfig{
			Path:            ".",
			FullDir:         tokens.FullDirName,
			ConciseDir:      tokens.ConciseDirName,
			MaxHeadingLevel: 4,
			MaxConciseLines: 150,
		},
		Tokens: TokensConfig{
			Encoding:        tokens.DefaultEncoding,
			ReductionTarget: tokens.DefaultReductionTarget,
		},
		Lint: LintConfig{
			ConfigPath: mdlint.DefaultConfigFile,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
