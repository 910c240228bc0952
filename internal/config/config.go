package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	WebUI  WebUIConfig  `mapstructure:"webui" validate:"required"`
	Models ModelsConfig `mapstructure:"models"`
	Batch  BatchConfig  `mapstructure:"batch" validate:"required"`
	Log    LogConfig    `mapstructure:"log" validate:"required"`
}

// WebUIConfig contains the settings for talking to the image-generation server.
type WebUIConfig struct {
	URL               string `mapstructure:"url" validate:"required,url"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds" validate:"gte=0"`
	MaxRetries        int    `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=0"`
	// ModelLoadWaitSeconds overrides the per-model wait after switching checkpoints.
	// A negative value keeps the model's own default.
	ModelLoadWaitSeconds int `mapstructure:"model_load_wait_seconds" validate:"gte=-1"`
}

// ModelsConfig locates checkpoint, VAE and text-encoder files on disk.
type ModelsConfig struct {
	// Dir is the WebUI models directory (MODELS_DIR); required by models that
	// reference files beyond the checkpoint name
	Dir string `mapstructure:"dir"`
}

// BatchConfig contains the queue runner settings.
type BatchConfig struct {
	QueueFile string `mapstructure:"queue_file"`
	DoneFile  string `mapstructure:"done_file"`
	// LogDirName is the per-task log directory created next to the done file
	LogDirName string `mapstructure:"log_dir_name" validate:"required,excludesall=/\\"`
	// DispatchCommand is the command every descriptor is appended to.
	// Empty means this binary's own generate command.
	DispatchCommand []string `mapstructure:"dispatch_command"`
	// WorkDir is the working directory of task processes; empty inherits ours
	WorkDir string `mapstructure:"work_dir"`
}

// LogConfig contains the structured logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	// File, when set, receives a copy of every record with size-based rotation
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
}
