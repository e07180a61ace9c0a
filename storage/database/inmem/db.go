package inmemdb

import (
	"context"
	"sync"

	"github.com/skillx/skillx/core"
)

type (
	DB struct {
		mu     sync.RWMutex // guards tables
		tables map[string]*table
	}

	table struct {
		sync.RWMutex
		rows  map[string][]byte
		order []string // insertion order of row ids
	}
)

var _ core.Store = (*DB)(nil) // interface compliance check

func Open() *DB {
	db := &DB{tables: make(map[string]*table, len(core.Collections))}
	for _, coll := range core.Collections {
		db.tables[coll] = newTable()
	}
	return db
}

func newTable() *table {
	return &table{rows: make(map[string][]byte)}
}

func (db *DB) table(coll string) *table {
	db.mu.RLock()
	t, ok := db.tables[coll]
	db.mu.RUnlock()
	if ok {
		return t
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	if t, ok = db.tables[coll]; !ok {
		t = newTable()
		db.tables[coll] = t
	}
	return t
}

func clone(data []byte) []byte {
	return append([]byte(nil), data...)
}

func (db *DB) Insert(_ context.Context, coll, id string, data []byte) error {
	t := db.table(coll)
	t.Lock()
	defer t.Unlock()

	if _, ok := t.rows[id]; ok {
		return core.ErrRecordExists
	}
	t.rows[id] = clone(data)
	t.order = append(t.order, id)
	return nil
}

func (db *DB) Get(_ context.Context, coll, id string) ([]byte, error) {
	t := db.table(coll)
	t.RLock()
	defer t.RUnlock()

	if data, ok := t.rows[id]; ok {
		return clone(data), nil
	}
	return nil, core.ErrRecordNotFound
}

func (db *DB) List(_ context.Context, coll string) ([][]byte, error) {
	t := db.table(coll)
	t.RLock()
	defer t.RUnlock()

	records := make([][]byte, 0, len(t.order))
	for _, id := range t.order {
		records = append(records, clone(t.rows[id]))
	}
	return records, nil
}

func (db *DB) Update(_ context.Context, coll, id string, fn func([]byte) ([]byte, error)) error {
	t := db.table(coll)
	t.Lock()
	defer t.Unlock()

	data, ok := t.rows[id]
	if !ok {
		return core.ErrRecordNotFound
	}
	newData, err := fn(clone(data))
	if err != nil {
		return err
	}
	t.rows[id] = clone(newData)
	return nil
}

func (db *DB) Delete(_ context.Context, coll, id string) error {
	t := db.table(coll)
	t.Lock()
	defer t.Unlock()

	if _, ok := t.rows[id]; !ok {
		return core.ErrRecordNotFound
	}
	delete(t.rows, id)
	for i, rid := range t.order {
		if rid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return nil
}

func (db *DB) Clear(_ context.Context) error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	for _, t := range db.tables {
		t.Lock()
		t.rows = make(map[string][]byte)
		t.order = nil
		t.Unlock()
	}
	return nil
}

func (db *DB) Close() error { return nil }

// Each calls fn for every record of coll in insertion order.
func (db *DB) Each(coll string, fn func(id string, data []byte)) {
	t := db.table(coll)
	t.RLock()
	defer t.RUnlock()
	for _, id := range t.order {
		fn(id, t.rows[id])
	}
}
