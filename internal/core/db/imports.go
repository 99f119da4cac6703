package db

import (
	"database/sql"
	"time"
)

// ImportRecord is one row of the import log
type ImportRecord struct {
	FileHash   string
	FilePath   string
	SessionID  string
	ImportedAt time.Time
}

// GetImport returns the import record for a file hash, or nil if the file
// has not been imported
func (db *DB) GetImport(fileHash string) (*ImportRecord, error) {
	var r ImportRecord
	var importedAt string
	err := db.conn.QueryRow(`
		SELECT file_hash, file_path, session_id, imported_at
		FROM import_log WHERE file_hash = ?
	`, fileHash).Scan(&r.FileHash, &r.FilePath, &r.SessionID, &importedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.ImportedAt = parseTimestamp(importedAt)
	return &r, nil
}

// RecordImport remembers that a file produced a session
func (db *DB) RecordImport(fileHash, filePath, sessionID string) error {
	_, err := db.conn.Exec(`
		INSERT INTO import_log (file_hash, file_path, session_id, imported_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(file_hash) DO UPDATE SET
			file_path = excluded.file_path,
			session_id = excluded.session_id,
			imported_at = excluded.imported_at
	`, fileHash, filePath, sessionID, formatTimestamp(time.Now()))
	return err
}
