package workflow

import (
	"fmt"

	"github.com/cbroglie/mustache"
)

// Section markers the Extract prompt requires in its response
const (
	LocationsMarker   = "## LOCATIONS"
	PlotThreadsMarker = "## PLOT THREADS"
)

// NoChangesPhrase is the Refine escape hatch for a response that needs no edits
const NoChangesPhrase = "NO CHANGES NEEDED"

// Templates holds one mustache template per phase number.
// Data keys: title, date, tags, transcript, previous_response.
type Templates map[int]string

// DefaultTemplates returns the built-in prompt templates
func DefaultTemplates() Templates {
	return Templates{
		PhaseExtract:   DefaultExtractTemplate,
		PhaseSummarize: DefaultSummarizeTemplate,
		PhaseRefine:    DefaultRefineTemplate,
	}
}

const DefaultExtractTemplate = `You are cataloguing a tabletop campaign session for a wiki.

Session: {{{title}}}
Date: {{{date}}}

Read the transcript below and extract every location and plot thread it mentions.

Respond using exactly this structure:

` + LocationsMarker + `

### <Location Name>
- Type: <building, town, region, dungeon, ...>
- Events: <what happened here this session>
- NPCs: <notable characters encountered here>
- Connections: <other locations or plot threads this one relates to>

` + PlotThreadsMarker + `

### <Thread Name>
- Status: <Active, Resolved or Dormant>
- Description: <what the thread is about and what changed this session>
- Hooks: <open questions the party has not answered>
- Related Locations: <locations involved>

Transcript:
{{{transcript}}}
`

const DefaultSummarizeTemplate = `Turn the extraction below into wiki pages for the session "{{{title}}}" ({{{date}}}).

Write one page per entity and separate pages with a line containing only ---

Location pages use this template:

# <Location Name>
**Type**: <type> | **Region**: <region>

## Overview
<what this place is>

## Events in {{{title}}}
<what happened here this session>

## Notable NPCs
<characters found here>

## Connections
[[<Other Location>]], [[<Plot Thread>]]

## Plot Threads
[[<Plot Thread>]]

Plot thread pages use this template:

# <Thread Name>
**Status**: <Active, Resolved or Dormant> | **Priority**: <High, Medium or Low>

## Summary
<the thread so far>

## Unresolved Hooks
<open questions>

## Related Locations
[[<Location Name>]]

## Session History
- {{{title}}}: <what changed>

Always link entity names with double brackets, e.g. [[The Rusty Dragon]].

Extraction:
{{{previous_response}}}
`

const DefaultRefineTemplate = `Review the wiki pages below for the session "{{{title}}}" ({{{date}}}).

1. Check every page follows its template and keeps the **Type**/**Region** or **Status**/**Priority** metadata line directly under the title.
2. Cross-check every [[link]] against the page titles and fix spelling so names match exactly.
3. Remove duplicate pages and merge their content.
4. Keep pages separated by a line containing only ---

Emit the final corrected pages in full. If nothing needs to change, reply with "` + NoChangesPhrase + `" followed by the pages unchanged. A bare "` + NoChangesPhrase + `" is too short to be accepted.

Pages:
{{{previous_response}}}
`

// render fills the template for a phase with session data
func (t Templates) render(phase int, data map[string]string) (string, error) {
	tmpl, ok := t[phase]
	if !ok {
		return "", fmt.Errorf("no prompt template for phase %d", phase)
	}
	out, err := mustache.Render(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("render phase %d prompt: %w", phase, err)
	}
	return out, nil
}
