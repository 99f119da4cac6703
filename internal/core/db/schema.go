package db

func (db *DB) initSchema() error {
	schema := `
	-- Processing sessions: one transcript through the phase pipeline
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		date TEXT NOT NULL DEFAULT '',
		transcript TEXT NOT NULL,
		tags TEXT NOT NULL DEFAULT '[]',
		current_phase INTEGER NOT NULL DEFAULT 1,
		phases TEXT NOT NULL DEFAULT '[]',
		complete BOOLEAN NOT NULL DEFAULT 0,
		created TEXT NOT NULL,
		modified TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_date ON sessions(date);
	CREATE INDEX IF NOT EXISTS idx_sessions_modified ON sessions(modified);

	-- Knowledge base locations; name_key is the lowercased merge key
	CREATE TABLE IF NOT EXISTS locations (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		name_key TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL DEFAULT '',
		region TEXT NOT NULL DEFAULT '',
		overview TEXT NOT NULL DEFAULT '',
		npcs TEXT NOT NULL DEFAULT '',
		connections TEXT NOT NULL DEFAULT '[]',
		sessions TEXT NOT NULL DEFAULT '[]',
		raw_content TEXT NOT NULL DEFAULT '',
		modified TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_locations_region ON locations(region);

	-- Knowledge base plot threads
	CREATE TABLE IF NOT EXISTS plot_threads (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		name_key TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL DEFAULT '',
		priority TEXT NOT NULL DEFAULT '',
		summary TEXT NOT NULL DEFAULT '',
		hooks TEXT NOT NULL DEFAULT '',
		related_locations TEXT NOT NULL DEFAULT '[]',
		sessions TEXT NOT NULL DEFAULT '[]',
		raw_content TEXT NOT NULL DEFAULT '',
		modified TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_plot_threads_status ON plot_threads(status);

	-- Transcript files already imported, keyed by content hash
	CREATE TABLE IF NOT EXISTS import_log (
		file_hash TEXT PRIMARY KEY,
		file_path TEXT NOT NULL,
		session_id TEXT NOT NULL,
		imported_at TEXT NOT NULL
	);

	-- Full-text index over both entity collections
	CREATE VIRTUAL TABLE IF NOT EXISTS entities_fts USING fts5(
		kind UNINDEXED,
		entity_id UNINDEXED,
		name,
		content,
		tokenize='porter unicode61'
	);

	-- Triggers to keep FTS in sync
	CREATE TRIGGER IF NOT EXISTS locations_ai AFTER INSERT ON locations BEGIN
		INSERT INTO entities_fts(kind, entity_id, name, content) VALUES ('location', new.id, new.name, new.raw_content);
	END;

	CREATE TRIGGER IF NOT EXISTS locations_ad AFTER DELETE ON locations BEGIN
		DELETE FROM entities_fts WHERE kind = 'location' AND entity_id = old.id;
	END;

	CREATE TRIGGER IF NOT EXISTS locations_au AFTER UPDATE ON locations BEGIN
		DELETE FROM entities_fts WHERE kind = 'location' AND entity_id = old.id;
		INSERT INTO entities_fts(kind, entity_id, name, content) VALUES ('location', new.id, new.name, new.raw_content);
	END;

	CREATE TRIGGER IF NOT EXISTS plot_threads_ai AFTER INSERT ON plot_threads BEGIN
		INSERT INTO entities_fts(kind, entity_id, name, content) VALUES ('plot-thread', new.id, new.name, new.raw_content);
	END;

	CREATE TRIGGER IF NOT EXISTS plot_threads_ad AFTER DELETE ON plot_threads BEGIN
		DELETE FROM entities_fts WHERE kind = 'plot-thread' AND entity_id = old.id;
	END;

	CREATE TRIGGER IF NOT EXISTS plot_threads_au AFTER UPDATE ON plot_threads BEGIN
		DELETE FROM entities_fts WHERE kind = 'plot-thread' AND entity_id = old.id;
		INSERT INTO entities_fts(kind, entity_id, name, content) VALUES ('plot-thread', new.id, new.name, new.raw_content);
	END;
	`

	_, err := db.conn.Exec(schema)
	return err
}
