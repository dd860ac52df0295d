package extract

import "time"

// Config contains configuration options that allow
// customization of how metadata extraction runs select and
// process files.
type Config struct {
	// Only files created within this many seconds of the start
	// of a run are considered. Zero disables the window entirely.
	LookbackSeconds int `yaml:"lookback_seconds" env:"EXTRACT_LOOKBACK_SECONDS" env-default:"0" validate:"min=0"`

	// Candidates are processed in chunks of this size. The
	// runtime budget is checked between each chunk.
	ChunkSize int `yaml:"chunk_size" env:"EXTRACT_CHUNK_SIZE" env-default:"100" validate:"min=1"`

	// The soft runtime budget given to each run.
	MaxRuntimeSeconds int `yaml:"max_runtime_seconds" env:"EXTRACT_MAX_RUNTIME_SECONDS" env-default:"300" validate:"min=0"`

	// The root of the host's content-addressed file directory.
	FileDirectory string `yaml:"file_directory" env:"EXTRACT_FILE_DIRECTORY" env-required:"true"`
}

func (config *Config) LookbackDuration() time.Duration {
	return time.Duration(config.LookbackSeconds) * time.Second
}

func (config *Config) MaxRuntimeDuration() time.Duration {
	return time.Duration(config.MaxRuntimeSeconds) * time.Second
}

func (config *Config) chunkSize() int {
	if config.ChunkSize < 1 {
		return defaultChunkSize
	}

	return config.ChunkSize
}
