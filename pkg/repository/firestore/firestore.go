// Package firestore implements EventStore on Cloud Firestore so that several
// receiver instances can share the deploy history.
package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pushdeploy/pkg/domain/interfaces"
	"github.com/m-mizutani/pushdeploy/pkg/domain/model"
	"github.com/m-mizutani/pushdeploy/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	collectionLogs        = "logs"
	collectionDeployments = "deployments"
	collectionState       = "state"
	stateDocID            = "last"
)

type Store struct {
	client *firestore.Client
	prefix string
}

var _ interfaces.EventStore = (*Store)(nil)

// Option is a functional option for Store
type Option func(*Store)

// WithCollectionPrefix namespaces the collections, e.g. per deployed service
func WithCollectionPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New connects to the Firestore database. An empty databaseID selects the
// default database.
func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Store, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project_id", projectID),
			goerr.V("database_id", databaseID),
			goerr.T(types.ErrTagStorage))
	}

	s := &Store{client: client, prefix: "pushdeploy_"}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) collection(name string) *firestore.CollectionRef {
	return s.client.Collection(s.prefix + name)
}

func (s *Store) AppendLog(ctx context.Context, entry model.LogEntry) error {
	entry.Timestamp = entry.Timestamp.UTC()
	if _, err := s.collection(collectionLogs).NewDoc().Set(ctx, entry); err != nil {
		return goerr.Wrap(err, "failed to append log entry", goerr.T(types.ErrTagStorage))
	}
	return nil
}

func (s *Store) RecentLogs(ctx context.Context, limit int) ([]model.LogEntry, error) {
	iter := s.collection(collectionLogs).
		OrderBy("timestamp", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	out := []model.LogEntry{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list log entries", goerr.T(types.ErrTagStorage))
		}

		var entry model.LogEntry
		if err := doc.DataTo(&entry); err != nil {
			return nil, goerr.Wrap(err, "failed to decode log entry",
				goerr.V("doc_id", doc.Ref.ID), goerr.T(types.ErrTagStorage))
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *Store) AppendDeployment(ctx context.Context, record *model.DeploymentRecord) error {
	if _, err := s.collection(collectionDeployments).NewDoc().Set(ctx, record); err != nil {
		return goerr.Wrap(err, "failed to append deployment record",
			goerr.V("id", record.ID), goerr.T(types.ErrTagStorage))
	}
	return nil
}

func (s *Store) RecentDeployments(ctx context.Context, limit int) ([]*model.DeploymentRecord, error) {
	iter := s.collection(collectionDeployments).
		OrderBy("triggered_at", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	out := []*model.DeploymentRecord{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list deployments", goerr.T(types.ErrTagStorage))
		}

		var rec model.DeploymentRecord
		if err := doc.DataTo(&rec); err != nil {
			return nil, goerr.Wrap(err, "failed to decode deployment record",
				goerr.V("doc_id", doc.Ref.ID), goerr.T(types.ErrTagStorage))
		}
		out = append(out, &rec)
	}
	return out, nil
}

func (s *Store) GetLastState(ctx context.Context) (*model.LastState, error) {
	doc, err := s.collection(collectionState).Doc(stateDocID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return &model.LastState{}, nil
		}
		return nil, goerr.Wrap(err, "failed to get last state", goerr.T(types.ErrTagStorage))
	}

	var state model.LastState
	if err := doc.DataTo(&state); err != nil {
		return nil, goerr.Wrap(err, "failed to decode last state", goerr.T(types.ErrTagStorage))
	}
	return &state, nil
}

func (s *Store) SetLastPushAt(ctx context.Context, at time.Time) error {
	return s.mergeState(ctx, map[string]any{"last_push_at": at.UTC()})
}

func (s *Store) SetLastDeployedCommit(ctx context.Context, sha string) error {
	return s.mergeState(ctx, map[string]any{"last_deployed_commit": sha})
}

func (s *Store) mergeState(ctx context.Context, fields map[string]any) error {
	if _, err := s.collection(collectionState).Doc(stateDocID).Set(ctx, fields, firestore.MergeAll); err != nil {
		return goerr.Wrap(err, "failed to update last state", goerr.T(types.ErrTagStorage))
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
