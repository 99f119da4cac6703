// Package wiki parses the final pipeline output into knowledge base entities.
//
// The input is free-form Markdown produced by an external model, so parsing
// is best effort: malformed blocks are skipped or yield blank fields, never
// errors.
package wiki

import (
	"regexp"
	"strings"

	"github.com/neilberkman/chronicler/internal/core/models"
)

var (
	// ---, ***, ___ and their spaced forms
	delimiterPattern = regexp.MustCompile(`(?m)^[ \t]*(?:(?:-[ \t]*){3,}|(?:\*[ \t]*){3,}|(?:_[ \t]*){3,})$`)
	fencePattern     = regexp.MustCompile("(?m)^[ \t]*(?:```|~~~)[\\w-]*[ \t]*$\n?")
	titlePattern     = regexp.MustCompile(`(?m)^#[ \t]+(.+?)[ \t#]*$`)
	sectionPattern   = regexp.MustCompile(`(?m)^##[ \t]+(.+?)[ \t#]*$`)
	linkPattern      = regexp.MustCompile(`\[\[([^\[\]]+)\]\]`)

	// **Type**: Building | **Region**: Northern Marches
	locationMetaPattern = regexp.MustCompile(`(?mi)^[ \t]*\*\*Type:?\*\*:?[ \t]*([^|\n]*?)[ \t]*(?:\|[ \t]*\*\*Region:?\*\*:?[ \t]*([^|\n]*?)[ \t]*)?(?:\|.*)?$`)
	// **Status**: Active | **Priority**: High
	threadMetaPattern = regexp.MustCompile(`(?mi)^[ \t]*\*\*Status:?\*\*:?[ \t]*([^|\n]*?)[ \t]*(?:\|[ \t]*\*\*Priority:?\*\*:?[ \t]*([^|\n]*?)[ \t]*)?(?:\|.*)?$`)
)

// block is one entity-sized chunk of the document
type block struct {
	name   string
	header string // text between the title and the first section heading
	body   string
	raw    string
}

// ParseLocations returns every Location block in document order
func ParseLocations(doc string, ref models.SessionRef) []models.Location {
	var out []models.Location
	for _, b := range splitBlocks(doc) {
		m := locationMetaPattern.FindStringSubmatch(b.header)
		if m == nil {
			continue
		}
		out = append(out, models.Location{
			Name:        b.name,
			Type:        cleanValue(m[1]),
			Region:      cleanValue(m[2]),
			Overview:    section(b.body, "overview", "description"),
			NPCs:        section(b.body, "notable npcs", "npcs"),
			Connections: Links(section(b.body, "connections", "connection")),
			Sessions:    models.Provenance{ref},
			RawContent:  b.raw,
		})
	}
	return out
}

// ParsePlotThreads returns every Plot Thread block in document order.
// A block carrying Location metadata is never a plot thread.
func ParsePlotThreads(doc string, ref models.SessionRef) []models.PlotThread {
	var out []models.PlotThread
	for _, b := range splitBlocks(doc) {
		if locationMetaPattern.MatchString(b.header) {
			continue
		}
		m := threadMetaPattern.FindStringSubmatch(b.header)
		if m == nil {
			continue
		}
		out = append(out, models.PlotThread{
			Name:             b.name,
			Status:           cleanValue(m[1]),
			Priority:         cleanValue(m[2]),
			Summary:          section(b.body, "summary"),
			Hooks:            section(b.body, "unresolved hooks", "hooks"),
			RelatedLocations: Links(section(b.body, "related locations", "related location")),
			Sessions:         models.Provenance{ref},
			RawContent:       b.raw,
		})
	}
	return out
}

// Links returns every [[name]] in text, in order of appearance.
// Interior whitespace is trimmed and an Obsidian-style |alias is dropped.
func Links(text string) []string {
	var out []string
	for _, m := range linkPattern.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if i := strings.Index(name, "|"); i >= 0 {
			name = name[:i]
		}
		name = strings.Join(strings.Fields(name), " ")
		if name != "" {
			out = append(out, name)
		}
	}
	return out
}

// splitBlocks cuts the document on horizontal rules and keeps blocks that
// open with a top-level heading. Code fence lines are dropped first since
// models often wrap the whole reply in one.
func splitBlocks(doc string) []block {
	doc = strings.ReplaceAll(doc, "\r\n", "\n")
	doc = fencePattern.ReplaceAllString(doc, "")
	if strings.TrimSpace(doc) == "" {
		return nil
	}

	var blocks []block
	for _, chunk := range delimiterPattern.Split(doc, -1) {
		raw := strings.TrimSpace(chunk)
		if raw == "" {
			continue
		}
		loc := titlePattern.FindStringSubmatchIndex(raw)
		if loc == nil {
			continue
		}
		// Drop any chatter the model put before the title
		offset := loc[0]
		raw = raw[offset:]
		for i := range loc {
			loc[i] -= offset
		}
		name := cleanTitle(raw[loc[2]:loc[3]])
		if name == "" {
			continue
		}

		rest := raw[loc[1]:]
		header := rest
		if s := sectionPattern.FindStringIndex(rest); s != nil {
			header = rest[:s[0]]
		}
		blocks = append(blocks, block{name: name, header: header, body: rest, raw: raw})
	}
	return blocks
}

// section returns the trimmed body of the first ## section whose heading
// is one of names, ignoring case, emphasis and trailing qualifiers such as
// "Connections (updated)"
func section(body string, names ...string) string {
	headings := sectionPattern.FindAllStringSubmatchIndex(body, -1)
	for i, h := range headings {
		if !headingIs(body[h[2]:h[3]], names) {
			continue
		}
		end := len(body)
		if i+1 < len(headings) {
			end = headings[i+1][0]
		}
		return strings.TrimSpace(body[h[1]:end])
	}
	return ""
}

func headingIs(heading string, names []string) bool {
	title := strings.ToLower(strings.Trim(heading, "*_:# \t"))
	title = strings.Join(strings.Fields(title), " ")
	for _, name := range names {
		if title == name {
			return true
		}
		if rest, ok := strings.CutPrefix(title, name); ok && strings.ContainsAny(rest[:1], " :(") {
			return true
		}
	}
	return false
}

// cleanTitle strips link brackets and emphasis models like to wrap titles in
func cleanTitle(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[[")
	s = strings.TrimSuffix(s, "]]")
	s = strings.Trim(s, "*_ \t")
	return strings.Join(strings.Fields(s), " ")
}

func cleanValue(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "*_"))
}
