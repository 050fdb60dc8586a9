// Package storetest holds the behavioral contract every store backend must
// satisfy.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/ivrflow/pkg/document"
	errs "github.com/matzehuels/ivrflow/pkg/errors"
	"github.com/matzehuels/ivrflow/pkg/flow"
	"github.com/matzehuels/ivrflow/pkg/store"
)

// SampleDocument returns a small valid flow: start → menu → play.
func SampleDocument(t testing.TB, name string) *document.Document {
	t.Helper()
	g := flow.New(flow.WithIDGenerator(flow.NewSequence()))
	menu, err := g.AddNode(flow.TypeMenu, flow.Position{X: 250, Y: 200})
	require.NoError(t, err)
	play, err := g.AddNode(flow.TypePlay, flow.Position{X: 250, Y: 350})
	require.NoError(t, err)
	_, err = g.AddConnection(g.StartID(), menu.ID, nil)
	require.NoError(t, err)
	_, err = g.AddConnection(menu.ID, play.ID, flow.StringPtr(""))
	require.NoError(t, err)

	d, err := document.Build(document.Meta{Name: name}, g)
	require.NoError(t, err)
	return d
}

// RunContract exercises s through the [store.Store] interface.
func RunContract(t *testing.T, s store.Store) {
	ctx := context.Background()

	t.Run("SaveAssignsID", func(t *testing.T) {
		d := SampleDocument(t, "Sales")
		require.NoError(t, s.Save(ctx, d))
		assert.NotEmpty(t, d.ID)
		assert.False(t, d.UpdatedAt.IsZero())
	})

	t.Run("SaveAndLoad", func(t *testing.T) {
		d := SampleDocument(t, "Support")
		require.NoError(t, s.Save(ctx, d))

		loaded, err := s.Load(ctx, d.ID)
		require.NoError(t, err)
		assert.Equal(t, d.ID, loaded.ID)
		assert.Equal(t, "Support", loaded.Name)
		assert.Equal(t, document.StatusDraft, loaded.Status)
		assert.True(t, d.UpdatedAt.Equal(loaded.UpdatedAt))
		assert.Equal(t, d.FlowDefinition, loaded.FlowDefinition)

		g, err := document.Hydrate(loaded)
		require.NoError(t, err)
		assert.Equal(t, 3, g.NodeCount())
	})

	t.Run("SaveOverwrites", func(t *testing.T) {
		d := SampleDocument(t, "Before")
		require.NoError(t, s.Save(ctx, d))
		id := d.ID

		d.Name = "After"
		require.NoError(t, s.Save(ctx, d))
		assert.Equal(t, id, d.ID)

		loaded, err := s.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "After", loaded.Name)
	})

	t.Run("LoadMissing", func(t *testing.T) {
		_, err := s.Load(ctx, "flow-does-not-exist")
		assert.True(t, errs.IsNotFound(err), "got %v", err)
	})

	t.Run("Delete", func(t *testing.T) {
		d := SampleDocument(t, "Doomed")
		require.NoError(t, s.Save(ctx, d))
		require.NoError(t, s.Delete(ctx, d.ID))

		_, err := s.Load(ctx, d.ID)
		assert.True(t, errs.IsNotFound(err), "got %v", err)
		assert.NoError(t, s.Delete(ctx, d.ID), "deleting twice")
	})

	t.Run("List", func(t *testing.T) {
		a := SampleDocument(t, "Listed A")
		b := SampleDocument(t, "Listed B")
		require.NoError(t, s.Save(ctx, a))
		require.NoError(t, s.Save(ctx, b))

		list, err := s.List(ctx)
		require.NoError(t, err)
		ids := make([]string, 0, len(list))
		for _, sum := range list {
			ids = append(ids, sum.ID)
		}
		assert.Contains(t, ids, a.ID)
		assert.Contains(t, ids, b.ID)

		for i := 1; i < len(list); i++ {
			assert.False(t, list[i].UpdatedAt.After(list[i-1].UpdatedAt), "list not sorted newest first")
		}
	})
}
