// Package importer creates processing sessions from transcript files on disk.
package importer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/neilberkman/chronicler/internal/core/db"
	"github.com/neilberkman/chronicler/internal/core/models"
	"github.com/neilberkman/chronicler/internal/core/pipeline"
	"github.com/neilberkman/chronicler/internal/core/tags"
	"github.com/neilberkman/chronicler/internal/pkg/logger"
	"github.com/neilberkman/chronicler/pkg/transcripts"
)

const module = "importer"

// Importer handles importing transcripts into the database
type Importer struct {
	db   *db.DB
	svc  *pipeline.Service
	log  logger.Logger
	Tags []string // added to every imported session
}

// New creates a new importer
func New(database *db.DB, svc *pipeline.Service, log logger.Logger) *Importer {
	if log == nil {
		log = logger.Nop{}
	}
	return &Importer{db: database, svc: svc, log: log}
}

// Summary counts what ImportDirectory did
type Summary struct {
	Imported int
	Skipped  int // already imported, same content
	Failed   int
	Sessions []*models.ProcessingSession
}

// ImportFile imports a single transcript file. It returns nil and no
// error when the file's content was imported before.
func (i *Importer) ImportFile(path string) (*models.ProcessingSession, error) {
	hash, err := computeFileHash(path)
	if err != nil {
		return nil, fmt.Errorf("failed to hash file: %w", err)
	}

	prev, err := i.db.GetImport(hash)
	if err != nil {
		return nil, fmt.Errorf("failed to check import log: %w", err)
	}
	if prev != nil {
		i.log.Debug(module, "file already imported", map[string]interface{}{
			"file":       path,
			"session_id": prev.SessionID,
		})
		return nil, nil
	}

	transcript, err := transcripts.ParseFile(path)
	if err != nil {
		return nil, err
	}

	tagList := tags.NormalizeList(append(transcript.Tags, i.Tags...))
	session, err := i.svc.Create(transcript.Title, transcript.Date, transcript.Body, tagList)
	if err != nil {
		return nil, err
	}

	if err := i.db.RecordImport(hash, path, session.ID); err != nil {
		return nil, fmt.Errorf("failed to record import: %w", err)
	}

	i.log.Info(module, "transcript imported", map[string]interface{}{
		"file":       path,
		"session_id": session.ID,
		"lines":      transcript.Lines,
	})
	return session, nil
}

// ImportDirectory imports every transcript file under dirPath in path order.
// Files that fail to parse are counted and skipped.
func (i *Importer) ImportDirectory(dirPath string, progress ProgressCallback) (*Summary, error) {
	files, err := FindFiles(dirPath)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	for _, file := range files {
		session, err := i.ImportFile(file)
		switch {
		case err != nil:
			summary.Failed++
			i.log.Warn(module, "import failed", map[string]interface{}{
				"file":  file,
				"error": err.Error(),
			})
			fmt.Fprintf(os.Stderr, "\nWarning: failed to import %s: %v\n", file, err)
		case session == nil:
			summary.Skipped++
		default:
			summary.Imported++
			summary.Sessions = append(summary.Sessions, session)
		}

		if progress != nil {
			label := filepath.Base(file)
			if session != nil {
				label = session.Title
			}
			progress.Update(label)
		}
	}

	return summary, nil
}

// FindFiles returns the transcript files under dirPath, sorted
func FindFiles(dirPath string) ([]string, error) {
	var files []string
	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && transcripts.Supported(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

func computeFileHash(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = file.Close()
	}()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}
