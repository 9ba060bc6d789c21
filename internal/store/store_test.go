package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jask/tviewer/internal/viewer"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "selections.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleSelection() viewer.Selection {
	return viewer.Selection{
		Object: "sphere",
		Cloud: []viewer.PointXYZL{
			{X: 1, Y: 2, Z: 3, Label: 0},
			{X: 4, Y: 5, Z: 6, Label: 0},
			{X: 7, Y: 8, Z: 9, Label: 1},
		},
		Indices: []viewer.PointIndices{{Indices: []int{3, 5}}, {Indices: []int{8}}},
	}
}

func TestSaveAndLoadSelection(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	id, err := s.Selections.Save(ctx, sampleSelection())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := s.Selections.Points(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, sampleSelection(), got)
}

func TestSaveRejectsEmptySelection(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Selections.Save(context.Background(), viewer.Selection{Object: "sphere"})
	require.ErrorIs(t, err, ErrEmptySelection)
}

func TestSaveMismatchedSelectionLeavesNothingBehind(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	short := viewer.Selection{
		Object:  "sphere",
		Cloud:   []viewer.PointXYZL{{X: 1}},
		Indices: []viewer.PointIndices{{Indices: []int{3, 5}}},
	}
	_, err := s.Selections.Save(ctx, short)
	require.ErrorContains(t, err, "1 points for more than 1 indices")

	long := sampleSelection()
	long.Indices = long.Indices[:1]
	_, err = s.Selections.Save(ctx, long)
	require.ErrorContains(t, err, "3 points for 2 indices")

	infos, err := s.Selections.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, infos)

	var points int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM selection_points`).Scan(&points))
	assert.Zero(t, points)
}

func TestListAndDeleteAll(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	first, err := s.Selections.Save(ctx, sampleSelection())
	require.NoError(t, err)
	second, err := s.Selections.Save(ctx, viewer.Selection{
		Object:  "grid",
		Cloud:   []viewer.PointXYZL{{X: 1}},
		Indices: []viewer.PointIndices{{Indices: []int{0}}},
	})
	require.NoError(t, err)

	list, err := s.Selections.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second, list[0].ID, "newest first")
	assert.Equal(t, first, list[1].ID)
	assert.Equal(t, SelectionInfo{ID: first, Object: "sphere", Points: 3, Labels: 2, CreatedAt: list[1].CreatedAt}, list[1])
	assert.False(t, list[1].CreatedAt.IsZero())

	n, err := s.Selections.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	list, err = s.Selections.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = s.Selections.Points(ctx, first)
	require.ErrorIs(t, err, ErrNotFound)

	var orphans int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM selection_points`).Scan(&orphans))
	assert.Zero(t, orphans)
}

func TestReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "selections.db")

	s, err := Open(path)
	require.NoError(t, err)
	id, err := s.Selections.Save(ctx, sampleSelection())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Selections.Points(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Len())
}
