package mongo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/matzehuels/ivrflow/pkg/document"
	errs "github.com/matzehuels/ivrflow/pkg/errors"
	"github.com/matzehuels/ivrflow/pkg/store/mongo"
	"github.com/matzehuels/ivrflow/pkg/store/storetest"
)

func toD(t testing.TB, v any) bson.D {
	t.Helper()
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	var d bson.D
	require.NoError(t, bson.Unmarshal(raw, &d))
	return d
}

func ns(mt *mtest.T) string {
	return mt.DB.Name() + "." + mt.Coll.Name()
}

func TestMongoStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("SaveAssignsID", func(mt *mtest.T) {
		s := mongo.New(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		d := storetest.SampleDocument(mt, "Sales")
		require.NoError(mt, s.Save(ctx, d))
		assert.NotEmpty(mt, d.ID)
		assert.False(mt, d.UpdatedAt.IsZero())
	})

	mt.Run("SaveError", func(mt *mtest.T) {
		s := mongo.New(mt.Coll)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    91,
			Name:    "ShutdownInProgress",
			Message: "shutting down",
		}))

		err := s.Save(ctx, storetest.SampleDocument(mt, "Sales"))
		assert.True(mt, errs.Is(err, errs.ErrCodeNetwork), "got %v", err)
	})

	mt.Run("Load", func(mt *mtest.T) {
		s := mongo.New(mt.Coll)
		want := storetest.SampleDocument(mt, "Support")
		want.ID = "flow-1"
		want.UpdatedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch, toD(mt, want)))

		got, err := s.Load(ctx, "flow-1")
		require.NoError(mt, err)
		assert.Equal(mt, "flow-1", got.ID)
		assert.Equal(mt, "Support", got.Name)
		assert.True(mt, want.UpdatedAt.Equal(got.UpdatedAt))
		assert.Equal(mt, want.FlowDefinition, got.FlowDefinition)

		g, err := document.Hydrate(got)
		require.NoError(mt, err)
		assert.Equal(mt, 3, g.NodeCount())
	})

	mt.Run("LoadMissing", func(mt *mtest.T) {
		s := mongo.New(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch))

		_, err := s.Load(ctx, "flow-nope")
		assert.True(mt, errs.IsNotFound(err), "got %v", err)
	})

	mt.Run("List", func(mt *mtest.T) {
		s := mongo.New(mt.Coll)
		newer := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
		older := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "flow-b"}, {Key: "name", Value: "B"}, {Key: "status", Value: "draft"}, {Key: "updatedAt", Value: newer}},
			bson.D{{Key: "_id", Value: "flow-a"}, {Key: "name", Value: "A"}, {Key: "status", Value: "draft"}, {Key: "updatedAt", Value: older}},
		))

		list, err := s.List(ctx)
		require.NoError(mt, err)
		require.Len(mt, list, 2)
		assert.Equal(mt, "flow-b", list[0].ID)
		assert.Equal(mt, "A", list[1].Name)
		assert.True(mt, newer.Equal(list[0].UpdatedAt))
	})

	mt.Run("Delete", func(mt *mtest.T) {
		s := mongo.New(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		assert.NoError(mt, s.Delete(ctx, "flow-gone"))
	})
}
