package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/pushdeploy/pkg/cli/config"
	"github.com/m-mizutani/pushdeploy/pkg/domain/model"
	"github.com/m-mizutani/pushdeploy/pkg/domain/types"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func commit(paths ...string) []model.CommitRecord {
	return []model.CommitRecord{{SHA: "c1", ModifiedPaths: paths}}
}

func TestClassifier_Build(t *testing.T) {
	t.Run("flag values only", func(t *testing.T) {
		cfg := &config.Classifier{IgnoredSuffixes: []string{".md", ".txt"}}
		c, err := cfg.Build()
		gt.NoError(t, err)
		gt.False(t, c.IsMeaningful(commit("README.md", "notes.txt")))
		gt.True(t, c.IsMeaningful(commit("main.go")))
	})

	t.Run("TOML file replaces flag values", func(t *testing.T) {
		path := writeFile(t, "classifier.toml", `ignored_suffixes = [".md", "docs/", ".png"]`)
		cfg := &config.Classifier{
			IgnoredSuffixes: []string{".go"},
			ConfigFile:      path,
		}

		c, err := cfg.Build()
		gt.NoError(t, err)
		gt.False(t, c.IsMeaningful(commit("docs/setup.sh", "logo.png")))
		gt.True(t, c.IsMeaningful(commit("main.go")))
	})

	t.Run("TOML file without the key keeps flag values", func(t *testing.T) {
		path := writeFile(t, "classifier.toml", "# nothing here\n")
		cfg := &config.Classifier{
			IgnoredSuffixes: []string{".md"},
			ConfigFile:      path,
		}

		c, err := cfg.Build()
		gt.NoError(t, err)
		gt.False(t, c.IsMeaningful(commit("README.md")))
	})

	t.Run("malformed TOML", func(t *testing.T) {
		path := writeFile(t, "classifier.toml", `ignored_suffixes = [".md"`)
		cfg := &config.Classifier{ConfigFile: path}

		_, err := cfg.Build()
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagConfig))
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := &config.Classifier{ConfigFile: filepath.Join(t.TempDir(), "none.toml")}

		_, err := cfg.Build()
		gt.Error(t, err)
	})
}
