package cache

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ernestbuffington/embedkit/internal/shared/paths"
	"github.com/ernestbuffington/embedkit/internal/shared/types"
)

// Store mirrors response-cache inserts to SQLite so resolved responses
// survive process restarts. Writes are best-effort and asynchronous to
// the pipeline; a failed write loses persistence, never correctness.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the persistent response store.
func OpenStore(path string) (*Store, error) {
	if err := paths.EnsureParent(path); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open response store: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS responses (
		definition TEXT NOT NULL,
		url TEXT NOT NULL,
		payload BLOB NOT NULL,
		created TEXT NOT NULL,
		PRIMARY KEY (definition, url)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create responses table: %w", err)
	}

	return &Store{db: db}, nil
}

// Put records a response under (definition, url). The insert-once rule
// carries over: an existing row is kept, not replaced.
func (s *Store) Put(definition, url string, resp types.ProviderResponse) error {
	payload := resp.Raw
	if len(payload) == 0 {
		var err error
		payload, err = resp.MarshalJSON()
		if err != nil {
			return fmt.Errorf("encode response: %w", err)
		}
	}

	stmt, err := s.db.Prepare("INSERT OR IGNORE INTO responses VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(definition, url, payload, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Load reads every stored response for a definition into the visit
// function, for warm-loading an in-memory cache at session start.
func (s *Store) Load(definition string, visit func(url string, resp types.ProviderResponse)) error {
	rows, err := s.db.Query("SELECT url, payload FROM responses WHERE definition = ?", definition)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var url string
		var payload []byte
		if err := rows.Scan(&url, &payload); err != nil {
			return err
		}
		resp, err := types.DecodeResponse(payload)
		if err != nil {
			// A row that no longer decodes is skipped, not fatal
			continue
		}
		visit(url, resp)
	}
	return rows.Err()
}

// Erase removes every stored response for a definition.
func (s *Store) Erase(definition string) error {
	stmt, err := s.db.Prepare("DELETE FROM responses WHERE definition = ?")
	if err != nil {
		return err
	}
	defer stmt.Close()
	_, err = stmt.Exec(definition)
	return err
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
