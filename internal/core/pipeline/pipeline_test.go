package pipeline

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilberkman/chronicler/internal/core/db"
	"github.com/neilberkman/chronicler/internal/core/filter"
	"github.com/neilberkman/chronicler/internal/core/models"
	"github.com/neilberkman/chronicler/internal/core/workflow"
)

const finalPages = `# The Rusty Dragon
**Type**: Tavern | **Region**: Sandpoint

## Overview
A two-story tavern run by Ameiko Kaijitsu, the heart of Sandpoint nightlife.

## Connections
[[Sandpoint Cathedral]]

---

# Goblin Raids
**Status**: Active | **Priority**: High

## Summary
Goblins attacked the Swallowtail festival and fled north toward Thistletop.

## Related Locations
[[The Rusty Dragon]]
`

var longText = strings.Repeat("The party explored the town and met many people. ", 4)

func newService(t *testing.T) *Service {
	t.Helper()
	tmpfile, err := os.CreateTemp("", "test-*.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Remove(tmpfile.Name()) })
	_ = tmpfile.Close()

	database, err := db.New(tmpfile.Name())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	return New(database, workflow.New(workflow.DefaultPhases(), nil), nil)
}

// runToCompletion feeds responses for all three phases
func runToCompletion(t *testing.T, svc *Service, id, final string) *AdvanceResult {
	t.Helper()
	var result *AdvanceResult
	for _, response := range []string{longText, longText, final} {
		_, err := svc.SaveResponse(id, response)
		require.NoError(t, err)
		result, err = svc.Advance(id)
		require.NoError(t, err)
	}
	return result
}

func TestCreate(t *testing.T) {
	svc := newService(t)

	s, err := svc.Create("  Session 1 ", "2024-03-02", "GM: welcome", []string{"Sandpoint", "NPC", " sandpoint"})
	require.NoError(t, err)
	assert.Equal(t, "Session 1", s.Title)
	assert.Equal(t, 1, s.CurrentPhaseIndex)
	assert.Equal(t, []string{"sandpoint", "npc"}, s.Tags)

	got, err := svc.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Len(t, got.Phases, 3)
}

func TestCreate_InvalidInput(t *testing.T) {
	svc := newService(t)

	_, err := svc.Create("", "", "transcript", nil)
	assert.ErrorIs(t, err, workflow.ErrInvalidInput)

	_, err = svc.Create("Title", "", "   ", nil)
	assert.ErrorIs(t, err, workflow.ErrInvalidInput)

	list, err := svc.List(filter.Filters{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGet_NotFound(t *testing.T) {
	svc := newService(t)
	_, err := svc.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.ErrorIs(t, svc.Delete("missing"), ErrSessionNotFound)
}

func TestAdvance_ValidationLeavesSessionUntouched(t *testing.T) {
	svc := newService(t)
	s, err := svc.Create("Session 1", "2024-03-02", "GM: welcome", nil)
	require.NoError(t, err)

	_, err = svc.Advance(s.ID)
	var verr *workflow.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, 1, verr.Phase)
	assert.Contains(t, verr.Reason, "empty")

	_, err = svc.SaveResponse(s.ID, "too short")
	require.NoError(t, err)
	_, err = svc.Advance(s.ID)
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Reason, "too short")

	got, err := svc.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentPhaseIndex)
	assert.False(t, got.Phases[0].Completed)
	assert.Equal(t, "too short", got.Phases[0].Response)
}

func TestAdvance_PromptChainsResponses(t *testing.T) {
	svc := newService(t)
	s, err := svc.Create("Session 1", "2024-03-02", "GM: welcome", nil)
	require.NoError(t, err)

	_, err = svc.SaveResponse(s.ID, longText)
	require.NoError(t, err)
	result, err := svc.Advance(s.ID)
	require.NoError(t, err)
	assert.False(t, result.Completed)
	assert.Nil(t, result.Merge)
	assert.Equal(t, 2, result.Session.CurrentPhaseIndex)

	prompt, session, err := svc.Prompt(s.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, session.CurrentPhaseIndex)
	assert.Contains(t, prompt, longText)
}

func TestAdvance_CompletionMergesEntities(t *testing.T) {
	svc := newService(t)
	s, err := svc.Create("Session 1", "2024-03-02", "GM: welcome", nil)
	require.NoError(t, err)

	result := runToCompletion(t, svc, s.ID, finalPages)
	require.True(t, result.Completed)
	require.NotNil(t, result.Merge)
	assert.Equal(t, 1, result.Merge.Locations.Created)
	assert.Equal(t, 1, result.Merge.PlotThreads.Created)
	assert.Equal(t, 3, result.Session.CurrentPhaseIndex)

	loc, err := svc.db.FindLocationByName("the rusty dragon")
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, "Tavern", loc.Type)
	assert.Equal(t, models.Provenance{s.Ref()}, loc.Sessions)

	_, err = svc.Advance(s.ID)
	assert.ErrorIs(t, err, ErrSessionComplete)
}

func TestAdvance_SecondSessionAppendsProvenance(t *testing.T) {
	svc := newService(t)
	first, err := svc.Create("Session 1", "2024-03-02", "GM: welcome", nil)
	require.NoError(t, err)
	runToCompletion(t, svc, first.ID, finalPages)

	second, err := svc.Create("Session 2", "2024-03-09", "GM: welcome back", nil)
	require.NoError(t, err)
	resolved := strings.Replace(finalPages, "**Status**: Active", "**Status**: Resolved", 1)
	result := runToCompletion(t, svc, second.ID, resolved)
	assert.Equal(t, 1, result.Merge.Locations.Updated)
	assert.Equal(t, 1, result.Merge.PlotThreads.Updated)

	th, err := svc.db.FindPlotThreadByName("Goblin Raids")
	require.NoError(t, err)
	assert.Equal(t, "Resolved", th.Status)
	require.Len(t, th.Sessions, 2)
	assert.Equal(t, "Session 1", th.Sessions[0].Title)
	assert.Equal(t, "Session 2", th.Sessions[1].Title)
	assert.Equal(t, 1, strings.Count(th.RawContent, models.BlockDelimiter))
}

func TestAdvance_NoChangesUsesSummary(t *testing.T) {
	svc := newService(t)
	s, err := svc.Create("Session 1", "2024-03-02", "GM: welcome", nil)
	require.NoError(t, err)

	for _, response := range []string{longText, finalPages} {
		_, err := svc.SaveResponse(s.ID, response)
		require.NoError(t, err)
		_, err = svc.Advance(s.ID)
		require.NoError(t, err)
	}
	_, err = svc.SaveResponse(s.ID, "NO CHANGES NEEDED. "+longText)
	require.NoError(t, err)
	result, err := svc.Advance(s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Merge.Locations.Created)
}

func TestReprocess(t *testing.T) {
	svc := newService(t)
	s, err := svc.Create("Session 1", "2024-03-02", "GM: welcome", nil)
	require.NoError(t, err)

	_, err = svc.Reprocess(s.ID)
	assert.ErrorIs(t, err, ErrSessionIncomplete)

	runToCompletion(t, svc, s.ID, finalPages)
	result, err := svc.Reprocess(s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Locations.Unchanged)
	assert.Equal(t, 1, result.PlotThreads.Unchanged)

	loc, err := svc.db.FindLocationByName("The Rusty Dragon")
	require.NoError(t, err)
	assert.Len(t, loc.Sessions, 1)
}

func TestSetTagsAndList(t *testing.T) {
	svc := newService(t)
	a, err := svc.Create("Ameiko", "2024-01-10", "GM: tavern", nil)
	require.NoError(t, err)
	_, err = svc.Create("Goblins", "2024-02-20", "GM: raid", nil)
	require.NoError(t, err)

	updated, err := svc.SetTags(a.ID, []string{"NPC", "  Sandpoint "})
	require.NoError(t, err)
	assert.Equal(t, []string{"npc", "sandpoint"}, updated.Tags)

	list, err := svc.List(filter.ParseQuery("tag:npc"))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)

	all, err := svc.List(filter.Filters{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Goblins", all[0].Title)

	require.NoError(t, svc.Delete(a.ID))
	all, err = svc.List(filter.Filters{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
