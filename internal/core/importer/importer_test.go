package importer

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/neilberkman/chronicler/internal/core/db"
	"github.com/neilberkman/chronicler/internal/core/filter"
	"github.com/neilberkman/chronicler/internal/core/pipeline"
	"github.com/neilberkman/chronicler/internal/core/workflow"
)

func newTestImporter(t *testing.T) (*Importer, *pipeline.Service) {
	t.Helper()
	tmpfile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Remove(tmpfile.Name()) })
	_ = tmpfile.Close()

	database, err := db.New(tmpfile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = database.Close() })

	svc := pipeline.New(database, workflow.New(workflow.DefaultPhases(), nil), nil)
	return New(database, svc, nil), svc
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestImportFile(t *testing.T) {
	imp, svc := newTestImporter(t)
	imp.Tags = []string{"Imported"}

	path := filepath.Join(t.TempDir(), "2024-03-02_session-12.md")
	writeFile(t, path, "Title: Session 12\nTags: Sandpoint\n\nGM: The goblins attack the Old Light.\n")

	session, err := imp.ImportFile(path)
	if err != nil {
		t.Fatalf("ImportFile() error = %v", err)
	}
	if session == nil {
		t.Fatal("expected a session")
	}
	if session.Title != "Session 12" || session.Date != "2024-03-02" {
		t.Errorf("session = %q / %q", session.Title, session.Date)
	}
	if session.CurrentPhaseIndex != 1 {
		t.Errorf("CurrentPhaseIndex = %d, want 1", session.CurrentPhaseIndex)
	}
	if strings.Join(session.Tags, ",") != "sandpoint,imported" {
		t.Errorf("Tags = %v", session.Tags)
	}

	stored, err := svc.Get(session.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Transcript != "GM: The goblins attack the Old Light." {
		t.Errorf("Transcript = %q", stored.Transcript)
	}
}

func TestImportFile_SkipsSameContent(t *testing.T) {
	imp, svc := newTestImporter(t)
	dir := t.TempDir()

	first := filepath.Join(dir, "a.txt")
	writeFile(t, first, "GM: Welcome back.")
	session, err := imp.ImportFile(first)
	if err != nil || session == nil {
		t.Fatalf("first import = %v, %v", session, err)
	}

	// Same bytes under another name are still the same transcript
	copyPath := filepath.Join(dir, "b.txt")
	writeFile(t, copyPath, "GM: Welcome back.")
	again, err := imp.ImportFile(copyPath)
	if err != nil {
		t.Fatalf("second import error = %v", err)
	}
	if again != nil {
		t.Error("expected duplicate content to be skipped")
	}

	sessions, err := svc.List(filter.Filters{})
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 {
		t.Errorf("expected 1 session, got %d", len(sessions))
	}
}

func TestImportDirectory(t *testing.T) {
	imp, _ := newTestImporter(t)
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "2024-01-01_arrival.txt"), "GM: You arrive in Sandpoint.")
	writeFile(t, filepath.Join(dir, "nested", "chat.jsonl"), `{"speaker":"GM","text":"The festival begins."}`+"\n")
	writeFile(t, filepath.Join(dir, "broken.jsonl"), "not json\n")
	writeFile(t, filepath.Join(dir, "map.png"), "binary")

	files, err := FindFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 3 {
		t.Fatalf("FindFiles() = %v, want 3 transcript files", files)
	}

	var out bytes.Buffer
	progress := NewProgressReporter(&out, len(files))
	summary, err := imp.ImportDirectory(dir, progress)
	if err != nil {
		t.Fatalf("ImportDirectory() error = %v", err)
	}
	progress.Finish(summary)

	if summary.Imported != 2 || summary.Failed != 1 || summary.Skipped != 0 {
		t.Errorf("summary = %+v", summary)
	}
	if !strings.Contains(out.String(), "Imported 2, skipped 0, failed 1") {
		t.Errorf("progress output = %q", out.String())
	}

	// A second run finds nothing new
	summary, err = imp.ImportDirectory(dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Imported != 0 || summary.Skipped != 2 || summary.Failed != 1 {
		t.Errorf("rerun summary = %+v", summary)
	}
}

func TestProgressReporter_ZeroTotal(t *testing.T) {
	var out bytes.Buffer
	p := NewProgressReporter(&out, 0)
	p.Update("anything")
	p.Finish(nil)
	if !strings.Contains(out.String(), "Processed 1 files") {
		t.Errorf("output = %q", out.String())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("a much longer label", 10); got != "a much ..." {
		t.Errorf("truncate() = %q", got)
	}
}
