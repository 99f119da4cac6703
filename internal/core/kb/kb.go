// Package kb reads the merged knowledge base: resolving [[wiki links]]
// between entities and exporting the whole base as a Markdown vault.
package kb

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/neilberkman/chronicler/internal/core/models"
)

// Store is the read side of entity storage
type Store interface {
	FindLocationByName(name string) (*models.Location, error)
	FindPlotThreadByName(name string) (*models.PlotThread, error)
	ListLocations() ([]*models.Location, error)
	ListPlotThreads() ([]*models.PlotThread, error)
}

// Link is a name reference resolved against the knowledge base.
// Found is false for dangling links.
type Link struct {
	Name  string
	Kind  models.EntityKind
	ID    string
	Found bool
}

// Resolve looks up each name, locations first. Dangling names are kept
// with Found=false so callers can show them.
func Resolve(store Store, names []string) ([]Link, error) {
	links := make([]Link, 0, len(names))
	for _, name := range names {
		link := Link{Name: name}

		loc, err := store.FindLocationByName(name)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", name, err)
		}
		if loc != nil {
			link.Kind, link.ID, link.Found = models.KindLocation, loc.ID, true
			links = append(links, link)
			continue
		}

		th, err := store.FindPlotThreadByName(name)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", name, err)
		}
		if th != nil {
			link.Kind, link.ID, link.Found = models.KindPlotThread, th.ID, true
		}
		links = append(links, link)
	}
	return links, nil
}

// ExportResult summarizes a vault export
type ExportResult struct {
	Dir         string
	Locations   int
	PlotThreads int
	Files       []string
}

const (
	locationsDir   = "locations"
	plotThreadsDir = "plot-threads"
	indexFile      = "index.md"
)

// ExportVault writes every entity as <dir>/locations/<name>.md or
// <dir>/plot-threads/<name>.md plus an index.md linking them all.
// File names keep the entity name so [[Name]] links resolve in Obsidian.
func ExportVault(store Store, dir string) (*ExportResult, error) {
	locs, err := store.ListLocations()
	if err != nil {
		return nil, err
	}
	threads, err := store.ListPlotThreads()
	if err != nil {
		return nil, err
	}

	for _, sub := range []string{locationsDir, plotThreadsDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			return nil, fmt.Errorf("failed to create vault directory: %w", err)
		}
	}

	result := &ExportResult{Dir: dir}
	used := make(map[string]bool)
	write := func(sub, name, content string) error {
		path := filepath.Join(dir, sub, uniqueName(used, sub, FileName(name))+".md")
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		result.Files = append(result.Files, path)
		return nil
	}

	for _, loc := range locs {
		if err := write(locationsDir, loc.Name, pageContent(loc.Name, loc.RawContent)); err != nil {
			return nil, err
		}
		result.Locations++
	}
	for _, th := range threads {
		if err := write(plotThreadsDir, th.Name, pageContent(th.Name, th.RawContent)); err != nil {
			return nil, err
		}
		result.PlotThreads++
	}

	path := filepath.Join(dir, indexFile)
	if err := os.WriteFile(path, []byte(renderIndex(locs, threads)), 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	result.Files = append(result.Files, path)

	return result, nil
}

func pageContent(name, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = "# " + name
	}
	return raw + "\n"
}

func renderIndex(locs []*models.Location, threads []*models.PlotThread) string {
	var b strings.Builder
	b.WriteString("# Campaign Knowledge Base\n\n## Locations\n\n")
	for _, loc := range locs {
		fmt.Fprintf(&b, "- [[%s]]", loc.Name)
		if loc.Type != "" {
			fmt.Fprintf(&b, " (%s)", loc.Type)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n## Plot Threads\n\n")
	for _, th := range threads {
		fmt.Fprintf(&b, "- [[%s]]", th.Name)
		if th.Status != "" {
			fmt.Fprintf(&b, " - %s", th.Status)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FileName makes an entity name safe to use as a file name
func FileName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', '#', '^', '[', ']':
			return '-'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, strings.TrimSpace(name))
	name = strings.Trim(name, ". ")
	if name == "" {
		return "untitled"
	}
	return name
}

func uniqueName(used map[string]bool, sub, name string) string {
	candidate := name
	for i := 2; used[sub+"/"+strings.ToLower(candidate)]; i++ {
		candidate = fmt.Sprintf("%s %d", name, i)
	}
	used[sub+"/"+strings.ToLower(candidate)] = true
	return candidate
}
