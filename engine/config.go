package engine

import (
	"errors"
	"io/fs"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/prun/pkg"
)

// Config holds the host defaults applied to knobs that neither the process
// nor the pipeline set.
type Config struct {
	Outdir          string         `yaml:"outdir,omitempty"`
	Workdir         string         `yaml:"workdir"`
	Cache           bool           `yaml:"cache"`
	Dirsig          bool           `yaml:"dirsig"`
	ErrorStrategy   string         `yaml:"error_strategy"`
	NumRetries      int            `yaml:"num_retries"`
	Forks           int            `yaml:"forks"`
	SubmissionBatch int            `yaml:"submission_batch"`
	Scheduler       string         `yaml:"scheduler"`
	PluginOpts      map[string]any `yaml:"plugin_opts,omitempty"`
	SchedulerOpts   map[string]any `yaml:"scheduler_opts,omitempty"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Workdir:         ".prun",
		Cache:           true,
		Dirsig:          true,
		ErrorStrategy:   "ignore",
		NumRetries:      3,
		Forks:           1,
		SubmissionBatch: 8,
		Scheduler:       "local",
	}
}

// ParseConfig decodes the "defaults" section of a YAML configuration file
// over [DefaultConfig]. Other top-level keys are ignored.
func ParseConfig(data []byte) (Config, error) {
	file := struct {
		Defaults Config `yaml:"defaults"`
	}{Defaults: DefaultConfig()}

	if err := yaml.Unmarshal(data, &file); err != nil {
		return Config{}, pkg.ErrReadConfig.Wrap(err)
	}

	return file.Defaults, nil
}

// LoadConfig reads the configuration file at path. A missing file yields
// [DefaultConfig].
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}

	if err != nil {
		return Config{}, pkg.ErrReadConfig.Wrapf("%s", path).Wrap(err)
	}

	return ParseConfig(data)
}
