package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pushdeploy/pkg/domain/types"
	"github.com/m-mizutani/pushdeploy/pkg/usecase"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// Classifier holds change classification configuration
type Classifier struct {
	IgnoredSuffixes []string
	ConfigFile      string
}

type classifierFile struct {
	IgnoredSuffixes *[]string `toml:"ignored_suffixes"`
}

// Flags returns CLI flags for change classification
func (c *Classifier) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "ignored-suffix",
			Usage:       "Path suffix that never triggers a deployment; a trailing / ignores a directory (repeatable)",
			Value:       usecase.DefaultIgnoredSuffixes,
			Destination: &c.IgnoredSuffixes,
			Sources:     cli.EnvVars("PUSHDEPLOY_IGNORED_SUFFIXES"),
		},
		&cli.StringFlag{
			Name:        "classifier-config",
			Usage:       "TOML file with ignored_suffixes; replaces --ignored-suffix when set",
			Destination: &c.ConfigFile,
			Sources:     cli.EnvVars("PUSHDEPLOY_CLASSIFIER_CONFIG"),
		},
	}
}

// Build loads the TOML file when given and returns the classifier
func (c *Classifier) Build() (*usecase.Classifier, error) {
	ignored := c.IgnoredSuffixes

	if c.ConfigFile != "" {
		raw, err := os.ReadFile(c.ConfigFile) // #nosec G304 path comes from configuration
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read classifier config",
				goerr.V("path", c.ConfigFile),
				goerr.T(types.ErrTagConfig))
		}

		var file classifierFile
		if err := toml.Unmarshal(raw, &file); err != nil {
			return nil, goerr.Wrap(err, "failed to parse classifier config",
				goerr.V("path", c.ConfigFile),
				goerr.T(types.ErrTagConfig))
		}
		if file.IgnoredSuffixes != nil {
			ignored = *file.IgnoredSuffixes
		}
	}

	return usecase.NewClassifier(ignored), nil
}
