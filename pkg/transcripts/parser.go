// Package transcripts reads session transcript files from disk.
//
// Plain text and Markdown files may start with a header block of
// "Key: value" lines (Title, Date, Tags) followed by a blank line.
// JSONL files hold one chat message per line, as exported by VTT chat
// loggers, and are flattened into "Speaker: text" lines.
package transcripts

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Transcript is a parsed transcript file
type Transcript struct {
	Title     string
	Date      string // YYYY-MM-DD, empty if unknown
	Tags      []string
	Body      string
	FilePath  string
	FileSize  int64
	FileMtime time.Time
	Lines     int // chat lines for JSONL, text lines otherwise
}

// chatEntry is one line of a JSONL chat export
type chatEntry struct {
	Speaker   string `json:"speaker"`
	Alias     string `json:"alias,omitempty"`
	Text      string `json:"text"`
	Type      string `json:"type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

var (
	headerPattern = regexp.MustCompile(`(?i)^(title|date|tags)\s*:\s*(.*)$`)
	datePattern   = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
)

// Extensions lists the file types ParseFile understands
var Extensions = []string{".txt", ".md", ".jsonl"}

// Supported reports whether path has a transcript extension
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ParseFile reads a transcript file. Missing title and date fall back to
// the file name, then to the file's modification time for the date.
func ParseFile(path string) (*Transcript, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	t := &Transcript{
		FilePath:  path,
		FileSize:  info.Size(),
		FileMtime: info.ModTime(),
	}

	if strings.EqualFold(filepath.Ext(path), ".jsonl") {
		if err := parseChat(t, data); err != nil {
			return nil, err
		}
	} else {
		parseText(t, string(data))
	}

	if strings.TrimSpace(t.Body) == "" {
		return nil, fmt.Errorf("%s: transcript is empty", filepath.Base(path))
	}

	if t.Title == "" {
		t.Title = titleFromName(path)
	}
	if t.Date == "" {
		t.Date = datePattern.FindString(filepath.Base(path))
	}
	if t.Date == "" {
		t.Date = t.FileMtime.Format("2006-01-02")
	}

	return t, nil
}

func parseText(t *Transcript, content string) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(content, "\n")

	// Header block: leading "Key: value" lines ended by a blank line
	i := 0
	for ; i < len(lines); i++ {
		m := headerPattern.FindStringSubmatch(strings.TrimSpace(lines[i]))
		if m == nil {
			break
		}
		value := strings.TrimSpace(m[2])
		switch strings.ToLower(m[1]) {
		case "title":
			t.Title = value
		case "date":
			t.Date = value
		case "tags":
			t.Tags = splitTags(value)
		}
	}
	if i > 0 && (i == len(lines) || strings.TrimSpace(lines[i]) != "") {
		// Not a header block after all
		t.Title, t.Date, t.Tags = "", "", nil
		i = 0
	}

	t.Body = strings.TrimSpace(strings.Join(lines[i:], "\n"))
	if t.Body != "" {
		t.Lines = strings.Count(t.Body, "\n") + 1
	}
}

func parseChat(t *Transcript, data []byte) error {
	// Configure scanner with larger buffer for long lines (10MB max)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 10*1024*1024)

	var body strings.Builder
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var entry chatEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return fmt.Errorf("line %d: failed to parse JSON: %w", lineNum, err)
		}

		if t.Date == "" && entry.Timestamp != "" {
			if ts, err := time.Parse(time.RFC3339, entry.Timestamp); err == nil {
				t.Date = ts.Format("2006-01-02")
			}
		}

		text := strings.TrimSpace(entry.Text)
		if text == "" {
			continue
		}

		switch entry.Type {
		case "roll":
			// Dice results carry no story content
			continue
		case "emote":
			fmt.Fprintf(&body, "*%s %s*\n", speakerName(entry), text)
		default:
			fmt.Fprintf(&body, "%s: %s\n", speakerName(entry), text)
		}
		t.Lines++
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading file: %w", err)
	}

	t.Body = strings.TrimSpace(body.String())
	return nil
}

func speakerName(e chatEntry) string {
	if e.Alias != "" {
		return e.Alias
	}
	if e.Speaker != "" {
		return e.Speaker
	}
	return "Unknown"
}

func splitTags(value string) []string {
	var out []string
	for _, tag := range strings.Split(value, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

// titleFromName turns "2024-03-02_session-12.md" into "session 12"
func titleFromName(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name = datePattern.ReplaceAllString(name, "")
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return "Untitled session"
	}
	return name
}
