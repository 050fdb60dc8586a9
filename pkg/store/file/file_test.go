package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/matzehuels/ivrflow/pkg/errors"
	"github.com/matzehuels/ivrflow/pkg/store/file"
	"github.com/matzehuels/ivrflow/pkg/store/storetest"
)

func newStore(t *testing.T) *file.Store {
	t.Helper()
	s, err := file.New(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestFileStore_Contract(t *testing.T) {
	storetest.RunContract(t, newStore(t))
}

func TestFileStore_WritesJSON(t *testing.T) {
	s := newStore(t)
	d := storetest.SampleDocument(t, "On disk")
	require.NoError(t, s.Save(context.Background(), d))

	data, err := os.ReadFile(filepath.Join(s.Path(), d.ID+".json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "On disk"`)
	assert.Contains(t, string(data), `"flowDefinition"`)

	matches, err := filepath.Glob(filepath.Join(s.Path(), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches, "temp files left behind")
}

func TestFileStore_RejectsPathIDs(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	d := storetest.SampleDocument(t, "Escape")
	d.ID = "../outside"
	err := s.Save(ctx, d)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidInput), "got %v", err)

	_, err = s.Load(ctx, "../outside")
	assert.True(t, errs.IsNotFound(err))
}

func TestFileStore_ListSkipsGarbage(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.Path(), "junk.json"), []byte("{"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(s.Path(), "notes.txt"), []byte("hi"), 0o600))

	d := storetest.SampleDocument(t, "Real")
	require.NoError(t, s.Save(context.Background(), d))

	list, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, d.ID, list[0].ID)
}
