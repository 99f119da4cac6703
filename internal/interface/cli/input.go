package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
)

// readInput returns text from a file, the clipboard, or stdin, in that order
func readInput(file string, fromClipboard bool) (string, error) {
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", file, err)
		}
		return string(data), nil
	case fromClipboard:
		text, err := clipboard.ReadAll()
		if err != nil {
			return "", fmt.Errorf("failed to read clipboard: %w", err)
		}
		return text, nil
	default:
		if stat, err := os.Stdin.Stat(); err == nil && stat.Mode()&os.ModeCharDevice != 0 {
			fmt.Fprintln(os.Stderr, "Reading from stdin, press Ctrl-D when done...")
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
}

// truncate collapses whitespace and shortens text for one-line display
func truncate(text string, maxLen int) string {
	text = strings.Join(strings.Fields(text), " ")
	if len([]rune(text)) <= maxLen {
		return text
	}

	runes := []rune(text)[:maxLen]
	truncated := string(runes)
	// Find a good break point (end of word)
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > len(truncated)-20 && lastSpace > 0 {
		truncated = truncated[:lastSpace]
	}
	return truncated + "..."
}
