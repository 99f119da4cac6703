package kb

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilberkman/chronicler/internal/core/models"
)

type fakeStore struct {
	locations []*models.Location
	threads   []*models.PlotThread
	err       error
}

func (f *fakeStore) FindLocationByName(name string) (*models.Location, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, l := range f.locations {
		if models.NameKey(l.Name) == models.NameKey(name) {
			return l, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) FindPlotThreadByName(name string) (*models.PlotThread, error) {
	for _, th := range f.threads {
		if models.NameKey(th.Name) == models.NameKey(name) {
			return th, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListLocations() ([]*models.Location, error) { return f.locations, f.err }

func (f *fakeStore) ListPlotThreads() ([]*models.PlotThread, error) { return f.threads, f.err }

func testStore() *fakeStore {
	return &fakeStore{
		locations: []*models.Location{
			{ID: "l1", Name: "Rusty Dragon", Type: "Tavern", RawContent: "# Rusty Dragon\nA tavern.\n\n---\n\n# Rusty Dragon\nStill a tavern."},
			{ID: "l2", Name: "Mill/Granary"},
		},
		threads: []*models.PlotThread{
			{ID: "t1", Name: "Goblin Raids", Status: "Active", RawContent: "# Goblin Raids\nSee [[Rusty Dragon]]."},
		},
	}
}

func TestResolve(t *testing.T) {
	links, err := Resolve(testStore(), []string{"rusty dragon", "Goblin Raids", "Thistletop"})
	require.NoError(t, err)

	assert.Equal(t, []Link{
		{Name: "rusty dragon", Kind: models.KindLocation, ID: "l1", Found: true},
		{Name: "Goblin Raids", Kind: models.KindPlotThread, ID: "t1", Found: true},
		{Name: "Thistletop"},
	}, links)
}

func TestResolve_StoreError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Resolve(&fakeStore{err: boom}, []string{"x"})
	assert.ErrorIs(t, err, boom)
}

func TestExportVault(t *testing.T) {
	dir := t.TempDir()
	result, err := ExportVault(testStore(), dir)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Locations)
	assert.Equal(t, 1, result.PlotThreads)
	assert.Len(t, result.Files, 4)

	data, err := os.ReadFile(filepath.Join(dir, "locations", "Rusty Dragon.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Still a tavern.")

	data, err = os.ReadFile(filepath.Join(dir, "locations", "Mill-Granary.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Mill/Granary\n", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "plot-threads", "Goblin Raids.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[[Rusty Dragon]]")

	index, err := os.ReadFile(filepath.Join(dir, "index.md"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "- [[Rusty Dragon]] (Tavern)")
	assert.Contains(t, string(index), "- [[Goblin Raids]] - Active")
}

func TestFileName(t *testing.T) {
	tests := map[string]string{
		"Rusty Dragon":  "Rusty Dragon",
		"Mill/Granary":  "Mill-Granary",
		"  What? ":      "What-",
		"...":           "untitled",
		"Tower: Part 2": "Tower- Part 2",
	}
	for in, want := range tests {
		assert.Equal(t, want, FileName(in), in)
	}
}

func TestUniqueName(t *testing.T) {
	used := map[string]bool{}
	assert.Equal(t, "A-B", uniqueName(used, "locations", "A-B"))
	assert.Equal(t, "a-b 2", uniqueName(used, "locations", "a-b"))
	assert.Equal(t, "A-B", uniqueName(used, "plot-threads", "A-B"))
}

func TestLookupAndDescribe(t *testing.T) {
	store := testStore()
	store.locations[0].Connections = []string{"Goblin Raids", "Thistletop"}
	store.locations[0].Sessions = models.Provenance{{ID: "s1", Title: "Session 1", Date: "2024-03-02"}}

	entry, err := Lookup(store, "RUSTY DRAGON")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, models.KindLocation, entry.Kind)
	assert.Equal(t, "Rusty Dragon", entry.Name())

	text, err := Describe(store, entry)
	require.NoError(t, err)
	assert.Contains(t, text, "**Type**: Tavern")
	assert.Contains(t, text, "- [[Goblin Raids]] (plot-thread)")
	assert.Contains(t, text, "- [[Thistletop]] (missing)")
	assert.Contains(t, text, "- Session 1 (2024-03-02)")
	assert.Contains(t, text, "Still a tavern.")

	entry, err = Lookup(store, "goblin raids")
	require.NoError(t, err)
	assert.Equal(t, models.KindPlotThread, entry.Kind)

	entry, err = Lookup(store, "nowhere")
	require.NoError(t, err)
	assert.Nil(t, entry)
}
