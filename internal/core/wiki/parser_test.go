package wiki

import (
	"strings"
	"testing"

	"github.com/neilberkman/chronicler/internal/core/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ref = models.SessionRef{ID: "1710400000000-abc1234", Title: "Session 3: Blood Moon", Date: "2025-03-14"}

const twoBlocks = `# The Rusty Dragon
**Type**: Building | **Region**: Northern Marches

## Overview
A two-story tavern run by Ameiko Kaijitsu.

## Events in Session 3: Blood Moon
The party fought goblins in the common room.

## Notable NPCs
- Ameiko Kaijitsu, owner
- Bethana Corwin, cook

## Connections
[[Northern Marches]], [[ Blood Moon Cult ]]

## Plot Threads
[[Blood Moon Cult]]

---

# Blood Moon Cult
**Status**: Active | **Priority**: High

## Summary
A cult preparing a ritual under the next blood moon.

## Unresolved Hooks
Who is the cult leader?

## Related Locations
[[The Rusty Dragon]]
[[Thistletop]]

## Session History
- Session 3: first sighting
`

func TestParseLocations(t *testing.T) {
	locs := ParseLocations(twoBlocks, ref)
	require.Len(t, locs, 1)

	loc := locs[0]
	assert.Equal(t, "The Rusty Dragon", loc.Name)
	assert.Equal(t, "Building", loc.Type)
	assert.Equal(t, "Northern Marches", loc.Region)
	assert.Equal(t, "A two-story tavern run by Ameiko Kaijitsu.", loc.Overview)
	assert.Contains(t, loc.NPCs, "Ameiko Kaijitsu, owner")
	assert.Contains(t, loc.NPCs, "Bethana Corwin")
	assert.Equal(t, []string{"Northern Marches", "Blood Moon Cult"}, loc.Connections)
	assert.Equal(t, models.Provenance{ref}, loc.Sessions)
	assert.True(t, strings.HasPrefix(loc.RawContent, "# The Rusty Dragon"))
	assert.NotContains(t, loc.RawContent, "# Blood Moon Cult")
}

func TestParsePlotThreads(t *testing.T) {
	threads := ParsePlotThreads(twoBlocks, ref)
	require.Len(t, threads, 1)

	th := threads[0]
	assert.Equal(t, "Blood Moon Cult", th.Name)
	assert.Equal(t, "Active", th.Status)
	assert.Equal(t, "High", th.Priority)
	assert.Equal(t, "A cult preparing a ritual under the next blood moon.", th.Summary)
	assert.Equal(t, "Who is the cult leader?", th.Hooks)
	assert.Equal(t, []string{"The Rusty Dragon", "Thistletop"}, th.RelatedLocations)
	assert.Equal(t, models.Provenance{ref}, th.Sessions)
	assert.True(t, strings.HasPrefix(th.RawContent, "# Blood Moon Cult"))
}

func TestParseEmptyInput(t *testing.T) {
	for _, doc := range []string{"", "   \n\n  ", "---\n---"} {
		assert.Empty(t, ParseLocations(doc, ref))
		assert.Empty(t, ParsePlotThreads(doc, ref))
	}
}

func TestParseSkipsUnclassifiedBlocks(t *testing.T) {
	doc := `# Session Recap
Nothing structured here.

---

# Sandpoint
**Type**: Town

## Overview
A small coastal town.`

	locs := ParseLocations(doc, ref)
	require.Len(t, locs, 1)
	assert.Equal(t, "Sandpoint", locs[0].Name)
	assert.Equal(t, "Town", locs[0].Type)
	assert.Equal(t, "", locs[0].Region)
	assert.Empty(t, locs[0].Connections)
	assert.Empty(t, locs[0].NPCs)
	assert.Empty(t, ParsePlotThreads(doc, ref))
}

func TestParseMissingPriority(t *testing.T) {
	doc := "# The Missing Merchant\n**Status**: Dormant\n\n## Summary\nHe left town."

	threads := ParsePlotThreads(doc, ref)
	require.Len(t, threads, 1)
	assert.Equal(t, "Dormant", threads[0].Status)
	assert.Equal(t, "", threads[0].Priority)
	assert.Empty(t, threads[0].Hooks)
	assert.Empty(t, threads[0].RelatedLocations)
}

func TestParseClassificationIsExclusive(t *testing.T) {
	doc := "# Odd Page\n**Type**: Ruin | **Region**: Hinterlands\n**Status**: Active | **Priority**: Low\n"

	assert.Len(t, ParseLocations(doc, ref), 1)
	assert.Empty(t, ParsePlotThreads(doc, ref))
}

func TestParseMetadataBelowFirstSectionIgnored(t *testing.T) {
	doc := "# Late Metadata\n\n## Overview\n**Type**: Building | **Region**: Nowhere\n"

	assert.Empty(t, ParseLocations(doc, ref))
}

func TestParseTolerantFormatting(t *testing.T) {
	doc := "Here are the corrected pages:\r\n\r\n# **Thistletop**\r\n**Type:** Fortress | **Region:** Nettlewood\r\n\r\n## Connections\r\n[[Nettlewood]]\r\n"

	locs := ParseLocations(doc, ref)
	require.Len(t, locs, 1)
	assert.Equal(t, "Thistletop", locs[0].Name)
	assert.Equal(t, "Fortress", locs[0].Type)
	assert.Equal(t, "Nettlewood", locs[0].Region)
	assert.Equal(t, []string{"Nettlewood"}, locs[0].Connections)
	assert.True(t, strings.HasPrefix(locs[0].RawContent, "# **Thistletop**"))
}

func TestParseDocumentOrder(t *testing.T) {
	doc := "# B Place\n**Type**: Town\n---\n# A Place\n**Type**: Town\n---\n# C Place\n**Type**: Town"

	locs := ParseLocations(doc, ref)
	require.Len(t, locs, 3)
	assert.Equal(t, "B Place", locs[0].Name)
	assert.Equal(t, "A Place", locs[1].Name)
	assert.Equal(t, "C Place", locs[2].Name)
}

func TestParseSectionHeadingsMatchWholeNames(t *testing.T) {
	doc := `# Sandpoint
**Type**: Town | **Region**: Varisia

## Events in Session 4: Lost Connections
[[Ameiko]] met us at [[Sandpoint]] Cathedral.

## Events in The NPC Gala
Dancing.

## Notable NPCs
Ameiko

## Connections (updated)
[[Northern Marches]], [[Blood Moon Cult]]`

	locs := ParseLocations(doc, ref)
	require.Len(t, locs, 1)
	assert.Equal(t, "Ameiko", locs[0].NPCs)
	assert.Equal(t, []string{"Northern Marches", "Blood Moon Cult"}, locs[0].Connections)
	assert.Equal(t, "", locs[0].Overview)
}

func TestParseAlternateRuleDelimiters(t *testing.T) {
	for _, rule := range []string{"***", "___", "* * *", "- - -"} {
		t.Run(rule, func(t *testing.T) {
			doc := "# A\n**Type**: Town\n\n" + rule + "\n\n# B\n**Type**: Village"

			locs := ParseLocations(doc, ref)
			require.Len(t, locs, 2)
			assert.Equal(t, "A", locs[0].Name)
			assert.Equal(t, "B", locs[1].Name)
			assert.NotContains(t, locs[0].RawContent, "# B")
		})
	}
}

func TestParseFencedDocument(t *testing.T) {
	doc := "```markdown\n# Turtleback Ferry\n**Type**: Village\n\n## Overview\nx\n```\n"

	locs := ParseLocations(doc, ref)
	require.Len(t, locs, 1)
	assert.Equal(t, "x", locs[0].Overview)
	assert.NotContains(t, locs[0].RawContent, "```")
}

func TestLinks(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"no links here", nil},
		{"[[Northern Marches]] and [[Blood Moon Cult]]", []string{"Northern Marches", "Blood Moon Cult"}},
		{"[[  Spaced   Name  ]]", []string{"Spaced Name"}},
		{"[[Sandpoint|the town]]", []string{"Sandpoint"}},
		{"[[]] [[ ]] [[Valid]]", []string{"Valid"}},
		{"[[Dup]] [[Dup]]", []string{"Dup", "Dup"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Links(tt.text), tt.text)
	}
}
