package internal

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/hbomb79/smartmedia/internal/api"
	"github.com/hbomb79/smartmedia/internal/cost"
	"github.com/hbomb79/smartmedia/internal/database"
	"github.com/hbomb79/smartmedia/internal/extract"
	"github.com/hbomb79/smartmedia/internal/ffmpeg"
	"github.com/hbomb79/smartmedia/internal/pricing"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/mitchellh/go-homedir"
	"github.com/robfig/cron/v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the struct used to contain the
// various user config supplied by file, or
// by the environment.
type Config struct {
	Database   database.DatabaseConfig `yaml:"database" env-required:"true"`
	Extraction extract.Config          `yaml:"extraction"`
	Pricing    pricing.Config          `yaml:"pricing"`
	Cost       cost.Config             `yaml:"cost"`
	Probe      ffmpeg.Config           `yaml:"probe"`
	Schedule   ScheduleConfig          `yaml:"schedule"`
	RestConfig api.RestConfig          `yaml:"api"`
	LogLevel   string                  `yaml:"log_level" env:"LOG_LEVEL" env-default:"INFO"`
}

// ScheduleConfig contains the cron specs used when serving. Both
// accept the standard five-field syntax, as well as descriptors
// such as '@hourly'.
type ScheduleConfig struct {
	ExtractionSpec     string `yaml:"extraction" env:"SCHEDULE_EXTRACTION" env-default:"*/15 * * * *" validate:"required"`
	ReconciliationSpec string `yaml:"reconciliation" env:"SCHEDULE_RECONCILIATION" env-default:"@daily" validate:"required"`
}

// LoadFromFile loads a configuration file formatted in YAML in to
// the Config, with values from the environment taking precedence.
func (config *Config) LoadFromFile(configPath string) error {
	path, err := homedir.Expand(configPath)
	if err != nil {
		return fmt.Errorf("failed to expand config path %s: %w", configPath, err)
	}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return fmt.Errorf("failed to load configuration from %s - %w", path, err)
	}

	return config.finalise()
}

// LoadFromEnv populates the Config solely from the environment.
func (config *Config) LoadFromEnv() error {
	if err := cleanenv.ReadEnv(config); err != nil {
		return fmt.Errorf("failed to load configuration from environment - %w", err)
	}

	return config.finalise()
}

func (config *Config) finalise() error {
	for _, path := range []*string{&config.Extraction.FileDirectory, &config.Pricing.RegionTablePath, &config.Probe.FfprobeBinaryPath} {
		expanded, err := homedir.Expand(*path)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidConfig, err)
		}

		*path = expanded
	}

	if err := validator.New().Struct(config); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}

	for _, spec := range []string{config.Schedule.ExtractionSpec, config.Schedule.ReconciliationSpec} {
		if _, err := cron.ParseStandard(spec); err != nil {
			return fmt.Errorf("%w: schedule '%s' is not valid: %s", ErrInvalidConfig, spec, err)
		}
	}

	return nil
}
