// Package store is the persistent collection manager beneath the repos: a
// keyed JSON-document store with secondary indexes, backed by the host's
// embedded sqlite engine.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"shopsim/internal/simerr"
)

type Index struct {
	Name  string
	Field string // top-level property of the stored document
}

type Collection struct {
	Name    string
	Indexes []Index
}

type Schema struct {
	Version     int
	Collections []Collection
}

type PutMode int

const (
	Insert PutMode = iota // fail with simerr.ErrConflict when the key exists
	Upsert
)

type Store struct {
	db      *sqlx.DB
	indexes map[string]map[string]string // collection -> index name -> field
}

// OpenOrCreate opens the engine at dsn and lazily defines every collection
// and index the schema requires. Idempotent: safe to run on every start and
// on schema-version bumps.
func OpenOrCreate(dsn string, schema Schema) (*Store, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	s := &Store{db: db, indexes: indexMap(schema)}
	if err := s.ensureSchema(schema); err != nil {
		return nil, err
	}
	return s, nil
}

// Detached returns a store with no engine behind it, for hosts without a
// live client context (e.g. pre-render). Every operation no-ops without
// error: reads come back absent or empty, writes are dropped.
func Detached(schema Schema) *Store {
	return &Store{indexes: indexMap(schema)}
}

func indexMap(schema Schema) map[string]map[string]string {
	m := make(map[string]map[string]string, len(schema.Collections))
	for _, c := range schema.Collections {
		idx := make(map[string]string, len(c.Indexes))
		for _, i := range c.Indexes {
			idx[i.Name] = i.Field
		}
		m[c.Name] = idx
	}
	return m
}

func (s *Store) ensureSchema(schema Schema) error {
	var b strings.Builder
	b.WriteString(`CREATE TABLE IF NOT EXISTS schema_info(version INTEGER NOT NULL);`)
	for _, c := range schema.Collections {
		tbl := tableName(c.Name)
		fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s(k TEXT PRIMARY KEY, v TEXT NOT NULL);\n", tbl)
		for _, idx := range c.Indexes {
			fmt.Fprintf(&b, "CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s(json_extract(v,'$.%s'));\n",
				c.Name, idx.Name, tbl, idx.Field)
		}
	}
	if _, err := s.db.Exec(b.String()); err != nil {
		return err
	}
	_, err := s.db.Exec(`
	  INSERT INTO schema_info(version)
	  SELECT ? WHERE NOT EXISTS (SELECT 1 FROM schema_info)`, schema.Version)
	return err
}

func tableName(collection string) string {
	return "c_" + collection
}

func (s *Store) field(collection, index string) (string, error) {
	f, ok := s.indexes[collection][index]
	if !ok {
		return "", fmt.Errorf("store: no index %q on collection %q", index, collection)
	}
	return f, nil
}

// Get returns the record for key, or ok=false when absent.
func (s *Store) Get(ctx context.Context, collection, key string) (json.RawMessage, bool, error) {
	if s.db == nil {
		return nil, false, nil
	}
	var v string
	err := s.db.GetContext(ctx, &v,
		fmt.Sprintf(`SELECT v FROM %s WHERE k = ?`, tableName(collection)), key)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return json.RawMessage(v), true, nil
}

func (s *Store) GetAll(ctx context.Context, collection string) ([]json.RawMessage, error) {
	if s.db == nil {
		return nil, nil
	}
	var rows []string
	err := s.db.SelectContext(ctx, &rows,
		fmt.Sprintf(`SELECT v FROM %s ORDER BY k`, tableName(collection)))
	if err != nil {
		return nil, err
	}
	out := make([]json.RawMessage, len(rows))
	for i, v := range rows {
		out[i] = json.RawMessage(v)
	}
	return out, nil
}

func (s *Store) GetByIndex(ctx context.Context, collection, index string, value any) ([]json.RawMessage, error) {
	if s.db == nil {
		return nil, nil
	}
	f, err := s.field(collection, index)
	if err != nil {
		return nil, err
	}
	var rows []string
	err = s.db.SelectContext(ctx, &rows,
		fmt.Sprintf(`SELECT v FROM %s WHERE json_extract(v,'$.%s') = ? ORDER BY k`, tableName(collection), f),
		value)
	if err != nil {
		return nil, err
	}
	out := make([]json.RawMessage, len(rows))
	for i, v := range rows {
		out[i] = json.RawMessage(v)
	}
	return out, nil
}

func (s *Store) GetOneByIndex(ctx context.Context, collection, index string, value any) (json.RawMessage, bool, error) {
	if s.db == nil {
		return nil, false, nil
	}
	f, err := s.field(collection, index)
	if err != nil {
		return nil, false, err
	}
	var v string
	err = s.db.GetContext(ctx, &v,
		fmt.Sprintf(`SELECT v FROM %s WHERE json_extract(v,'$.%s') = ? ORDER BY k LIMIT 1`, tableName(collection), f),
		value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return json.RawMessage(v), true, nil
}

// Put stores doc under key. Insert mode returns simerr.ErrConflict when the
// key already exists; Upsert replaces unconditionally.
func (s *Store) Put(ctx context.Context, collection, key string, doc any, mode PutMode) error {
	if s.db == nil {
		return nil
	}
	v, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	tbl := tableName(collection)
	if mode == Upsert {
		_, err = s.db.ExecContext(ctx, fmt.Sprintf(`
		  INSERT INTO %s(k,v) VALUES(?,?)
		  ON CONFLICT(k) DO UPDATE SET v = excluded.v`, tbl), key, string(v))
		return err
	}
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`
	  INSERT INTO %s(k,v) VALUES(?,?)
	  ON CONFLICT(k) DO NOTHING`, tbl), key, string(v))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return simerr.ErrConflict
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, key string) error {
	if s.db == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE k = ?`, tableName(collection)), key)
	return err
}

func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	if s.db == nil {
		return 0, nil
	}
	var n int
	err := s.db.GetContext(ctx, &n,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s`, tableName(collection)))
	return n, err
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
