package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/pushdeploy/pkg/cli/config"
	"github.com/m-mizutani/pushdeploy/pkg/domain/types"
)

func TestStore_Configure(t *testing.T) {
	ctx := context.Background()

	t.Run("file backend creates the base directory", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "state")
		cfg := &config.Store{Backend: "file"}

		store, err := cfg.Configure(ctx, base)
		gt.NoError(t, err)
		defer store.Close()

		_, err = os.Stat(filepath.Join(base, "webhook.log"))
		gt.NoError(t, err)
	})

	t.Run("memory backend", func(t *testing.T) {
		cfg := &config.Store{Backend: "memory"}
		store, err := cfg.Configure(ctx, "")
		gt.NoError(t, err)
		gt.NoError(t, store.Close())
	})

	t.Run("firestore backend requires a project", func(t *testing.T) {
		cfg := &config.Store{Backend: "firestore"}
		_, err := cfg.Configure(ctx, "")
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagConfig))
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := &config.Store{Backend: "redis"}
		_, err := cfg.Configure(ctx, "")
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagConfig))
	})
}
