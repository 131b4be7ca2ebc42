package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pushdeploy/pkg/domain/interfaces"
	"github.com/m-mizutani/pushdeploy/pkg/domain/types"
	"github.com/m-mizutani/pushdeploy/pkg/repository/file"
	"github.com/m-mizutani/pushdeploy/pkg/repository/firestore"
	"github.com/m-mizutani/pushdeploy/pkg/repository/memory"
	"github.com/urfave/cli/v3"
)

// Store holds event store configuration
type Store struct {
	Backend             string
	MaxLogBytes         int64
	FirestoreProjectID  string
	FirestoreDatabaseID string
	FirestorePrefix     string
}

// Flags returns CLI flags for event store configuration
func (c *Store) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "store",
			Usage:       "Event store backend (file, memory, firestore)",
			Value:       "file",
			Destination: &c.Backend,
			Sources:     cli.EnvVars("PUSHDEPLOY_STORE"),
		},
		&cli.Int64Flag{
			Name:        "log-max-bytes",
			Usage:       "Rotate the event log past this size, keeping one previous generation (0 disables)",
			Value:       10 << 20,
			Destination: &c.MaxLogBytes,
			Sources:     cli.EnvVars("PUSHDEPLOY_LOG_MAX_BYTES"),
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Google Cloud project of the Firestore database",
			Destination: &c.FirestoreProjectID,
			Sources:     cli.EnvVars("PUSHDEPLOY_FIRESTORE_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Destination: &c.FirestoreDatabaseID,
			Sources:     cli.EnvVars("PUSHDEPLOY_FIRESTORE_DATABASE_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix of the Firestore collection names",
			Value:       "pushdeploy_",
			Destination: &c.FirestorePrefix,
			Sources:     cli.EnvVars("PUSHDEPLOY_FIRESTORE_COLLECTION_PREFIX"),
		},
	}
}

// Configure opens the selected backend. baseDir is used by the file backend.
func (c *Store) Configure(ctx context.Context, baseDir string) (interfaces.EventStore, error) {
	switch c.Backend {
	case "", "file":
		store, err := file.New(baseDir, file.WithMaxLogBytes(c.MaxLogBytes))
		if err != nil {
			return nil, err
		}
		return store, nil

	case "memory":
		return memory.New(), nil

	case "firestore":
		if c.FirestoreProjectID == "" {
			return nil, goerr.New("--firestore-project-id is required for the firestore store",
				goerr.T(types.ErrTagConfig))
		}
		store, err := firestore.New(ctx, c.FirestoreProjectID, c.FirestoreDatabaseID,
			firestore.WithCollectionPrefix(c.FirestorePrefix))
		if err != nil {
			return nil, err
		}
		return store, nil

	default:
		return nil, goerr.New("unknown store backend",
			goerr.V("backend", c.Backend),
			goerr.T(types.ErrTagConfig))
	}
}
