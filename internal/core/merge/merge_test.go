package merge

import (
	"errors"
	"strings"
	"testing"

	"github.com/neilberkman/chronicler/internal/core/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store keyed by lowercased name
type memStore struct {
	locations map[string]*models.Location
	threads   map[string]*models.PlotThread
	saves     int
	failSave  error
}

func newMemStore() *memStore {
	return &memStore{
		locations: make(map[string]*models.Location),
		threads:   make(map[string]*models.PlotThread),
	}
}

func (m *memStore) FindLocationByName(name string) (*models.Location, error) {
	loc, ok := m.locations[models.NameKey(name)]
	if !ok {
		return nil, nil
	}
	cp := *loc
	cp.Sessions = append(models.Provenance(nil), loc.Sessions...)
	return &cp, nil
}

func (m *memStore) SaveLocation(loc *models.Location) error {
	if m.failSave != nil {
		return m.failSave
	}
	m.saves++
	cp := *loc
	m.locations[models.NameKey(loc.Name)] = &cp
	return nil
}

func (m *memStore) FindPlotThreadByName(name string) (*models.PlotThread, error) {
	th, ok := m.threads[models.NameKey(name)]
	if !ok {
		return nil, nil
	}
	cp := *th
	cp.Sessions = append(models.Provenance(nil), th.Sessions...)
	return &cp, nil
}

func (m *memStore) SavePlotThread(th *models.PlotThread) error {
	if m.failSave != nil {
		return m.failSave
	}
	m.saves++
	cp := *th
	m.threads[models.NameKey(th.Name)] = &cp
	return nil
}

var (
	sessionA = models.SessionRef{ID: "1000-aaaaaaa", Title: "Session A", Date: "2025-03-01"}
	sessionB = models.SessionRef{ID: "2000-bbbbbbb", Title: "Session B", Date: "2025-03-08"}
)

func rustyDragon(ref models.SessionRef, raw string) models.Location {
	return models.Location{
		Name:       "The Rusty Dragon",
		Type:       "Building",
		Sessions:   models.Provenance{ref},
		RawContent: raw,
	}
}

func TestLocationsCreateThenMerge(t *testing.T) {
	store := newMemStore()

	c, err := Locations(store, []models.Location{rustyDragon(sessionA, "# The Rusty Dragon\nfirst visit")})
	require.NoError(t, err)
	assert.Equal(t, Counts{Created: 1}, c)

	second := rustyDragon(sessionB, "# The Rusty Dragon\nsecond visit")
	second.Type = "Tavern"
	c, err = Locations(store, []models.Location{second})
	require.NoError(t, err)
	assert.Equal(t, Counts{Updated: 1}, c)

	require.Len(t, store.locations, 1)
	stored := store.locations["the rusty dragon"]
	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, models.Provenance{sessionA, sessionB}, stored.Sessions)
	assert.Equal(t, "# The Rusty Dragon\nfirst visit"+models.BlockDelimiter+"# The Rusty Dragon\nsecond visit", stored.RawContent)
	assert.Equal(t, "Building", stored.Type, "location metadata keeps its first value")
}

func TestLocationsSameSessionIsIdempotent(t *testing.T) {
	store := newMemStore()

	for i := 0; i < 3; i++ {
		_, err := Locations(store, []models.Location{rustyDragon(sessionA, "block")})
		require.NoError(t, err)
	}

	stored := store.locations["the rusty dragon"]
	assert.Len(t, stored.Sessions, 1)
	assert.Equal(t, "block", stored.RawContent)
	assert.Equal(t, 1, store.saves)
}

func TestLocationsCaseInsensitiveKey(t *testing.T) {
	store := newMemStore()

	_, err := Locations(store, []models.Location{rustyDragon(sessionA, "a")})
	require.NoError(t, err)

	lower := rustyDragon(sessionB, "b")
	lower.Name = "the rusty DRAGON"
	c, err := Locations(store, []models.Location{lower})
	require.NoError(t, err)

	assert.Equal(t, 0, c.Created)
	require.Len(t, store.locations, 1)
	assert.Equal(t, "The Rusty Dragon", store.locations["the rusty dragon"].Name)
}

func TestLocationsDuplicateNameInOneDocument(t *testing.T) {
	store := newMemStore()

	c, err := Locations(store, []models.Location{
		rustyDragon(sessionA, "first"),
		rustyDragon(sessionA, "second"),
	})
	require.NoError(t, err)
	assert.Equal(t, Counts{Created: 1, Unchanged: 1}, c)
	assert.Equal(t, "first", store.locations["the rusty dragon"].RawContent)
}

func TestPlotThreadStatusLatestWins(t *testing.T) {
	store := newMemStore()

	active := models.PlotThread{Name: "Blood Moon Cult", Status: "Active", Priority: "High", Sessions: models.Provenance{sessionA}, RawContent: "a"}
	resolved := models.PlotThread{Name: "Blood Moon Cult", Status: "Resolved", Priority: "Low", Sessions: models.Provenance{sessionB}, RawContent: "b"}

	c, err := PlotThreads(store, []models.PlotThread{active})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Created)

	c, err = PlotThreads(store, []models.PlotThread{resolved})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Updated)

	stored := store.threads["blood moon cult"]
	assert.Equal(t, "Resolved", stored.Status)
	assert.Equal(t, "High", stored.Priority)
	assert.Equal(t, models.Provenance{sessionA, sessionB}, stored.Sessions)
}

func TestPlotThreadSameSessionKeepsStatus(t *testing.T) {
	store := newMemStore()

	_, err := PlotThreads(store, []models.PlotThread{{Name: "Heist", Status: "Active", Sessions: models.Provenance{sessionA}}})
	require.NoError(t, err)
	_, err = PlotThreads(store, []models.PlotThread{{Name: "Heist", Status: "Resolved", Sessions: models.Provenance{sessionA}}})
	require.NoError(t, err)

	assert.Equal(t, "Active", store.threads["heist"].Status)
}

func TestDocument(t *testing.T) {
	store := newMemStore()
	doc := strings.Join([]string{
		"# Sandpoint\n**Type**: Town | **Region**: Varisia\n\n## Connections\n[[Thistletop]]",
		"# Thistletop\n**Type**: Fortress",
		"# Goblin Raids\n**Status**: Active | **Priority**: High",
	}, "\n\n---\n\n")

	res, err := Document(store, doc, sessionA)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Locations.Created)
	assert.Equal(t, 1, res.PlotThreads.Created)

	res, err = Document(store, doc, sessionA)
	require.NoError(t, err)
	assert.Equal(t, Counts{Unchanged: 2}, res.Locations)
	assert.Equal(t, Counts{Unchanged: 1}, res.PlotThreads)
}

func TestStorageErrorPropagates(t *testing.T) {
	store := newMemStore()
	store.failSave = errors.New("disk full")

	_, err := Locations(store, []models.Location{rustyDragon(sessionA, "x")})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.failSave)
}
