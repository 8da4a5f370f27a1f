package config

import (
	_ "embed"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/gur-shatz/filehash/pkg/algo"
)

// DefaultYAML is the commented template written by `filehash init`.
//
//go:embed default.yaml
var DefaultYAML []byte

// Settings is the decoded form of filehash.yaml.
type Settings struct {
	Algorithm string        `yaml:"algorithm" validate:"required,algorithm"`
	Workers   int           `yaml:"workers" validate:"gte=0"`
	ChunkSize int           `yaml:"chunk_size" validate:"gte=0"`
	Include   []string      `yaml:"include"`
	Exclude   []string      `yaml:"exclude"`
	SumFile   string        `yaml:"sum_file"`
	Watch     WatchSettings `yaml:"watch"`
	API       APISettings   `yaml:"api"`
}

type WatchSettings struct {
	Poll     time.Duration `yaml:"poll" validate:"gte=0"`
	Debounce time.Duration `yaml:"debounce" validate:"gte=0"`
}

type APISettings struct {
	// Addr is the listen address for the watch-mode HTTP API. Empty disables it.
	Addr string `yaml:"addr"`
}

// Defaults returns the settings used when no config file is found.
func Defaults() Settings {
	return Settings{
		Algorithm: algo.Default,
		Watch: WatchSettings{
			Poll:     500 * time.Millisecond,
			Debounce: 200 * time.Millisecond,
		},
	}
}

func init() {
	validate.RegisterValidation("algorithm", func(fl validator.FieldLevel) bool {
		return algo.IsSupported(fl.Field().String())
	})
}
