package kvstore

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// sqliteStore runs the workload against a real embedded database so
// critical sections carry database-sized costs.
type sqliteStore struct {
	db     *sql.DB
	insert *sql.Stmt
	find   *sql.Stmt
	update *sql.Stmt
	count  *sql.Stmt
}

// OpenSQLite opens a sqlite-backed store at path, or an in-memory
// database when path is empty.
func OpenSQLite(path string) (Store, error) {
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// One connection only: an in-memory database exists per connection,
	// so a second connection would see a different empty database.
	db.SetMaxOpenConns(1)

	// The store runs under an external lock; synchronous writes would
	// make every critical section an fsync benchmark.
	if _, err := db.Exec("PRAGMA synchronous = OFF"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure sqlite: %w", err)
	}
	if _, err := db.Exec("CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value BLOB NOT NULL)"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	s := &sqliteStore{db: db}

	var prepErr error
	prepare := func(query string) *sql.Stmt {
		if prepErr != nil {
			return nil
		}
		st, err := db.Prepare(query)
		if err != nil {
			prepErr = err
		}
		return st
	}
	s.insert = prepare("INSERT OR IGNORE INTO kv (key, value) VALUES (?, ?)")
	s.find = prepare("SELECT value FROM kv WHERE key = ?")
	s.update = prepare("UPDATE kv SET value = ? WHERE key = ?")
	s.count = prepare("SELECT COUNT(*) FROM kv")
	if prepErr != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", prepErr)
	}

	return s, nil
}

func (s *sqliteStore) Insert(key string, value []byte) error {
	res, err := s.insert.Exec(key, value)
	if err != nil {
		return fmt.Errorf("insert %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert %s: %w", key, err)
	}
	if n == 0 {
		return ErrDuplicateKey
	}
	return nil
}

func (s *sqliteStore) Find(key string) ([]byte, error) {
	var value []byte
	err := s.find.QueryRow(key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", key, err)
	}
	return value, nil
}

func (s *sqliteStore) Update(key string, value []byte) error {
	res, err := s.update.Exec(value, key)
	if err != nil {
		return fmt.Errorf("update %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s: %w", key, err)
	}
	if n == 0 {
		return ErrKeyNotFound
	}
	return nil
}

func (s *sqliteStore) Len() (int, error) {
	var n int
	if err := s.count.QueryRow().Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

func (s *sqliteStore) Close() error {
	for _, stmt := range []*sql.Stmt{s.insert, s.find, s.update, s.count} {
		if stmt != nil {
			_ = stmt.Close()
		}
	}
	return s.db.Close()
}
