package transcripts

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestParseFile_MarkdownHeader(t *testing.T) {
	tr, err := ParseFile("testdata/2024-03-02_session-12.md")
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}

	if tr.Title != "Session 12 - The Old Light" {
		t.Errorf("Title = %q", tr.Title)
	}
	if tr.Date != "2024-03-02" {
		t.Errorf("Date = %q, want date from file name", tr.Date)
	}
	if !reflect.DeepEqual(tr.Tags, []string{"Sandpoint", "goblins"}) {
		t.Errorf("Tags = %v", tr.Tags)
	}
	if !strings.HasPrefix(tr.Body, "GM: You reach the Old Light") {
		t.Errorf("Body should start after the header, got %q", tr.Body)
	}
	if tr.Lines != 3 {
		t.Errorf("Lines = %d, want 3", tr.Lines)
	}
	if tr.FileSize == 0 {
		t.Error("FileSize should be set")
	}
}

func TestParseFile_Chat(t *testing.T) {
	tr, err := ParseFile("testdata/chat.jsonl")
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}

	want := "GM: The Rusty Dragon is packed tonight.\n" +
		"*Valeros orders another round*\n" +
		"Lee: Does Ameiko know about the glassworks?"
	if tr.Body != want {
		t.Errorf("Body = %q, want %q", tr.Body, want)
	}
	if tr.Lines != 3 {
		t.Errorf("Lines = %d, want 3 (rolls skipped)", tr.Lines)
	}
	if tr.Date != "2024-03-09" {
		t.Errorf("Date = %q, want first timestamp's date", tr.Date)
	}
	if tr.Title != "chat" {
		t.Errorf("Title = %q, want file name fallback", tr.Title)
	}
}

func TestParseFile_BadJSON(t *testing.T) {
	_, err := ParseFile("testdata/bad.jsonl")
	if err == nil {
		t.Fatal("expected error for malformed line")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error should name the line, got %v", err)
	}
}

func TestParseFile_Fallbacks(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name      string
		file      string
		content   string
		wantTitle string
		wantBody  string
	}{
		{
			name:      "no header",
			file:      "goblin_raid.txt",
			content:   "GM: The goblins attack at dawn.\n",
			wantTitle: "goblin raid",
			wantBody:  "GM: The goblins attack at dawn.",
		},
		{
			name:      "header without blank line is body",
			file:      "notes.txt",
			content:   "Title: not really\nGM: still talking\n",
			wantTitle: "notes",
			wantBody:  "Title: not really\nGM: still talking",
		},
		{
			name:      "date only name",
			file:      "2024-01-05.md",
			content:   "Tags: a\n\nbody",
			wantTitle: "Untitled session",
			wantBody:  "body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}

			tr, err := ParseFile(path)
			if err != nil {
				t.Fatalf("ParseFile() error = %v", err)
			}
			if tr.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", tr.Title, tt.wantTitle)
			}
			if tr.Body != tt.wantBody {
				t.Errorf("Body = %q, want %q", tr.Body, tt.wantBody)
			}
			if tr.Date == "" {
				t.Error("Date should fall back to the file name or mtime")
			}
		})
	}
}

func TestParseFile_MtimeDate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recap.txt")
	if err := os.WriteFile(path, []byte("GM: hello"), 0644); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}

	tr, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := info.ModTime().Format("2006-01-02"); tr.Date != want {
		t.Errorf("Date = %q, want %q", tr.Date, want)
	}
}

func TestParseFile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.md")
	if err := os.WriteFile(path, []byte("Title: Nothing\n\n   \n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ParseFile(path); err == nil {
		t.Error("expected error for transcript with no body")
	}
}

func TestSupported(t *testing.T) {
	for path, want := range map[string]bool{
		"a.txt":   true,
		"b.MD":    true,
		"c.jsonl": true,
		"d.pdf":   false,
		"e":       false,
	} {
		if got := Supported(path); got != want {
			t.Errorf("Supported(%q) = %v, want %v", path, got, want)
		}
	}
}
