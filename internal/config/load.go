package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name, e.g. FORGEBATCH_WEBUI_URL.
const EnvPrefix = "FORGEBATCH"

// DefaultEnvFile is the dotenv file looked up in the working directory.
const DefaultEnvFile = ".env"

// LoadOptions selects the optional files Load reads.
type LoadOptions struct {
	// ConfigFile is an explicit YAML/TOML/JSON config file; empty skips it
	ConfigFile string

	// EnvFile is a dotenv file; empty means DefaultEnvFile. A missing
	// dotenv file is ignored, a missing ConfigFile is not.
	EnvFile string
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files; the
// dotenv file only fills variables that are not already set.
// Returns a populated Config struct or an error if loading/validation fails.
func Load(opts LoadOptions) (*Config, error) {
	if err := loadDotEnv(opts.EnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.ConfigFile, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The generation scripts this tool grew out of read MODELS_DIR unprefixed
	if err := v.BindEnv("models.dir", EnvPrefix+"_MODELS_DIR", "MODELS_DIR"); err != nil {
		return nil, fmt.Errorf("failed to bind models dir: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("webui.url", "http://127.0.0.1:7860")
	v.SetDefault("webui.timeout_seconds", 600)
	v.SetDefault("webui.max_retries", 2)
	v.SetDefault("webui.retry_delay_seconds", 2)
	v.SetDefault("webui.model_load_wait_seconds", -1)

	v.SetDefault("models.dir", "")

	v.SetDefault("batch.queue_file", "")
	v.SetDefault("batch.done_file", "")
	v.SetDefault("batch.log_dir_name", "task_logs")
	v.SetDefault("batch.dispatch_command", []string{})
	v.SetDefault("batch.work_dir", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
}

// loadDotEnv copies KEY=value pairs from a dotenv file into the process
// environment without overriding variables that are already set.
func loadDotEnv(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("failed to stat env file %s: %w", path, err)
	}

	dv := viper.New()
	dv.SetConfigFile(path)
	dv.SetConfigType("env")
	if err := dv.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read env file %s: %w", path, err)
	}

	for _, key := range dv.AllKeys() {
		name := strings.ToUpper(key)
		if _, set := os.LookupEnv(name); set {
			continue
		}
		if err := os.Setenv(name, dv.GetString(key)); err != nil {
			return fmt.Errorf("failed to set %s from env file: %w", name, err)
		}
	}
	return nil
}
