// Package config provides configuration loading for the build-docs application.
// Settings come from built-in defaults, an optional YAML file, BUILD_DOCS_*
// environment variables and, when configured, a shared secret in HashiCorp Vault.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MyCarrier-DevOps/goLibMyCarrier/vault"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/MyCarrier-DevOps/build-docs/internal/domain"
)

// Environment variable names.
const (
	// EnvPrefix prefixes every environment variable bound to a config key,
	// e.g. BUILD_DOCS_CONTAINER_IMAGE for container.image.
	EnvPrefix = "BUILD_DOCS"

	// EnvConfigFile overrides the configuration file location.
	EnvConfigFile = "BUILD_DOCS_CONFIG"

	// EnvLogLevel is the log level read by the logger (debug, info, warn, error).
	EnvLogLevel = "LOG_LEVEL"

	// EnvLogAppName is the application name for log context.
	EnvLogAppName = "LOG_APP_NAME"

	// EnvVaultBuildConfigPath is the path in Vault KV where shared container settings are stored.
	EnvVaultBuildConfigPath = "VAULT_BUILD_CONFIG_PATH"

	// EnvVaultBuildConfigMount is the Vault KV mount point (defaults to "secret").
	EnvVaultBuildConfigMount = "VAULT_BUILD_CONFIG_MOUNT"
)

// Default values.
const (
	DefaultConfigDir     = ".config/build-docs"
	DefaultConfigFile    = "config.yaml"
	DefaultImage         = "samsrabin/escomp-base-ctsm-docs:latest-official-sphinx-rtd-theme"
	DefaultContainerRoot = "/home/user"
	DefaultLogLevel      = "info"
	DefaultLogAppName    = "build-docs"
	DefaultVaultMount    = "secret"
)

// Configuration errors.
var (
	// ErrConfigFileNotFound indicates an explicitly requested config file does not exist.
	ErrConfigFileNotFound = errors.New("configuration file not found")

	// ErrInvalidConfig indicates the merged configuration failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrVaultClientFailed indicates failure to create or authenticate with Vault.
	ErrVaultClientFailed = errors.New("failed to create Vault client")

	// ErrVaultSecretNotFound indicates the secret was not found in Vault.
	ErrVaultSecretNotFound = errors.New("build configuration not found in Vault")

	// ErrVaultSecretInvalid indicates the secret holds a value of the wrong type.
	ErrVaultSecretInvalid = errors.New("build configuration in Vault is invalid")
)

// vaultOverrideKeys maps secret keys to the config keys they replace.
var vaultOverrideKeys = map[string]string{
	"image":          "container.image",
	"root":           "container.root",
	"mount_strategy": "container.mount_strategy",
}

// validate is the shared validator instance.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	//nolint:errcheck // RegisterValidation only fails on an empty tag or nil func
	v.RegisterValidation("image_ref", func(fl validator.FieldLevel) bool {
		_, err := name.ParseReference(fl.Field().String())
		return err == nil
	})
	return v
}

// VaultClient defines the interface for Vault operations.
// This interface allows for dependency injection and testing.
type VaultClient interface {
	// GetKVSecret retrieves a secret from Vault's KV v2 secrets engine.
	GetKVSecret(ctx context.Context, path, mount string) (map[string]interface{}, error)
}

// VaultClientFactory creates a VaultClient using AppRole authentication.
type VaultClientFactory func(ctx context.Context) (VaultClient, error)

// DefaultVaultClientFactory creates a VaultClient using goLibMyCarrier/vault with AppRole auth.
func DefaultVaultClientFactory(ctx context.Context) (VaultClient, error) {
	// Uses: VAULT_ADDRESS, VAULT_ROLE_ID, VAULT_SECRET_ID
	vaultConfig, err := vault.VaultLoadConfig()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVaultClientFailed, err)
	}

	client, err := vault.CreateVaultClient(ctx, vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrVaultClientFailed, err)
	}

	return client, nil
}

// Config holds all application configuration.
type Config struct {
	Container ContainerConfig `mapstructure:"container" validate:"required"`
	Log       LogConfig       `mapstructure:"log" validate:"required"`
}

// ContainerConfig holds settings for isolated builds.
type ContainerConfig struct {
	Image         string `mapstructure:"image" validate:"required,image_ref"`
	Root          string `mapstructure:"root" validate:"required,startswith=/"`
	MountStrategy string `mapstructure:"mount_strategy" validate:"required,oneof=common-ancestor home"`
	TTY           string `mapstructure:"tty" validate:"required,oneof=auto always never"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level   string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	AppName string `mapstructure:"app_name" validate:"required"`
}

// Validate checks the configuration for errors using struct tags.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// ContainerSettings converts the container section into the domain form.
// isTerminal is consulted only when tty is "auto".
func (c *Config) ContainerSettings(isTerminal func() bool) domain.ContainerConfig {
	var tty bool
	switch domain.TTYMode(c.Container.TTY) {
	case domain.TTYAlways:
		tty = true
	case domain.TTYNever:
		tty = false
	default:
		tty = isTerminal != nil && isTerminal()
	}

	return domain.ContainerConfig{
		Image:         c.Container.Image,
		Root:          c.Container.Root,
		MountStrategy: domain.MountStrategy(c.Container.MountStrategy),
		TTY:           tty,
	}
}

// ApplyLogEnv exports the log settings to the environment read by the logger.
// verbose forces debug level.
func (c *Config) ApplyLogEnv(verbose bool) error {
	level := c.Log.Level
	if verbose {
		level = "debug"
	}
	if err := os.Setenv(EnvLogLevel, level); err != nil {
		return err
	}
	return os.Setenv(EnvLogAppName, c.Log.AppName)
}

// Load loads the application configuration.
//
// Sources, lowest precedence first:
//   - built-in defaults
//   - the YAML file named by BUILD_DOCS_CONFIG, or ~/.config/build-docs/config.yaml if present
//   - BUILD_DOCS_* environment variables (BUILD_DOCS_CONTAINER_IMAGE, ...)
//   - the Vault KV secret at VAULT_BUILD_CONFIG_PATH, when set
//     (requires VAULT_ADDRESS, VAULT_ROLE_ID, VAULT_SECRET_ID)
func Load() (*Config, error) {
	return LoadWithVaultClient(context.Background(), nil)
}

// LoadWithVaultClient loads configuration using the provided VaultClient factory.
// If vaultClientFactory is nil, DefaultVaultClientFactory is used.
func LoadWithVaultClient(ctx context.Context, vaultClientFactory VaultClientFactory) (*Config, error) {
	v := newViper()

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	if vaultPath := os.Getenv(EnvVaultBuildConfigPath); vaultPath != "" {
		if err := applyVaultOverrides(ctx, v, vaultClientFactory, vaultPath); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// newViper returns a viper instance with defaults and environment bindings.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// The logger reads LOG_LEVEL and LOG_APP_NAME directly, so honor them here too.
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("log.level", EnvPrefix+"_LOG_LEVEL", EnvLogLevel)
	//nolint:errcheck // BindEnv only fails with zero arguments
	v.BindEnv("log.app_name", EnvPrefix+"_LOG_APP_NAME", EnvLogAppName)

	v.SetDefault("container.image", DefaultImage)
	v.SetDefault("container.root", DefaultContainerRoot)
	v.SetDefault("container.mount_strategy", string(domain.MountCommonAncestor))
	v.SetDefault("container.tty", string(domain.TTYAuto))
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.app_name", DefaultLogAppName)

	return v
}

// readConfigFile merges the config file into v. An explicitly named file must
// exist; the default location is optional.
func readConfigFile(v *viper.Viper) error {
	path := os.Getenv(EnvConfigFile)
	explicit := path != ""
	if !explicit {
		home, err := homedir.Dir()
		if err != nil {
			// No home directory means no default file to read.
			return nil
		}
		path = filepath.Join(home, DefaultConfigDir, DefaultConfigFile)
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			if explicit {
				return fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
			}
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// applyVaultOverrides reads the shared build settings from Vault KV v2 and
// sets them on v, overriding file and environment values.
func applyVaultOverrides(
	ctx context.Context,
	v *viper.Viper,
	vaultClientFactory VaultClientFactory,
	path string,
) error {
	if vaultClientFactory == nil {
		vaultClientFactory = DefaultVaultClientFactory
	}

	client, err := vaultClientFactory(ctx)
	if err != nil {
		return err
	}

	mount := os.Getenv(EnvVaultBuildConfigMount)
	if mount == "" {
		mount = DefaultVaultMount
	}

	secretData, err := client.GetKVSecret(ctx, path, mount)
	if err != nil {
		return fmt.Errorf("%w at path %s: %w", ErrVaultSecretNotFound, path, err)
	}

	overrides, err := parseVaultOverrides(secretData)
	if err != nil {
		return err
	}
	for key, value := range overrides {
		v.Set(key, value)
	}
	return nil
}

// parseVaultOverrides extracts the recognised keys from secret data. Unknown
// keys are ignored; recognised keys must hold non-empty strings.
func parseVaultOverrides(secretData map[string]interface{}) (map[string]string, error) {
	overrides := make(map[string]string)
	for secretKey, configKey := range vaultOverrideKeys {
		raw, ok := secretData[secretKey]
		if !ok {
			continue
		}
		value, ok := raw.(string)
		if !ok || value == "" {
			return nil, fmt.Errorf("%w: %q must be a non-empty string", ErrVaultSecretInvalid, secretKey)
		}
		overrides[configKey] = value
	}
	return overrides, nil
}
