package firestore_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/pushdeploy/pkg/domain/interfaces"
	"github.com/m-mizutani/pushdeploy/pkg/repository/firestore"
	"github.com/m-mizutani/pushdeploy/pkg/repository/storetest"
)

func TestStore(t *testing.T) {
	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID is not set")
	}

	storetest.Run(t, func(t *testing.T) interfaces.EventStore {
		// A fresh prefix per subtest keeps every run on empty collections
		store, err := firestore.New(context.Background(), projectID, databaseID,
			firestore.WithCollectionPrefix("test_"+uuid.NewString()+"_"),
		)
		gt.NoError(t, err)
		t.Cleanup(func() {
			_ = store.Close()
		})
		return store
	})
}
