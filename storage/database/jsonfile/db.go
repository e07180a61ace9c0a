// Package filedb persists every collection as a JSON array in its own file,
// named after the browser storage keys of the first SkillX release: skillx_<collection>.json.
package filedb

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/skillx/skillx/core"
	"github.com/skillx/skillx/storage/database/inmem"
)

const keyPrefix = "skillx_"

type DB struct {
	mem     *inmemdb.DB
	dir     string
	writeMu sync.Mutex // serializes writes so a failed flush can be undone
}

var _ core.Store = (*DB)(nil) // interface compliance check

type record struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

// Open loads the collections found in dir, creating dir if needed.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating storage dir")
	}
	db := &DB{mem: inmemdb.Open(), dir: dir}
	for _, coll := range core.Collections {
		if err := db.load(coll); err != nil {
			return nil, errors.Wrapf(err, "loading %s", coll)
		}
	}
	return db, nil
}

func (db *DB) path(coll string) string {
	return filepath.Join(db.dir, keyPrefix+coll+".json")
}

func (db *DB) load(coll string) error {
	content, err := os.ReadFile(db.path(coll))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var records []record
	if err = json.Unmarshal(content, &records); err != nil {
		return err
	}
	for _, r := range records {
		if err = db.mem.Insert(context.Background(), coll, r.ID, r.Data); err != nil {
			return err
		}
	}
	return nil
}

// flush writes the current state of coll, leaving out the record with id skip if any.
// The caller must hold writeMu.
func (db *DB) flush(coll, skip string) error {
	var records []record
	db.mem.Each(coll, func(id string, data []byte) {
		if id != skip {
			records = append(records, record{ID: id, Data: append(json.RawMessage(nil), data...)})
		}
	})
	if records == nil {
		records = []record{}
	}
	content, err := json.Marshal(records)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(db.dir, keyPrefix+coll+".*.tmp")
	if err != nil {
		return err
	}
	if _, err = tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), db.path(coll))
}

// Insert, Update and Delete leave memory untouched when the file cannot be written.

func (db *DB) Insert(ctx context.Context, coll, id string, data []byte) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	if err := db.mem.Insert(ctx, coll, id, data); err != nil {
		return err
	}
	if err := db.flush(coll, ""); err != nil {
		_ = db.mem.Delete(ctx, coll, id)
		return errors.Wrap(err, "flushing "+coll)
	}
	return nil
}

func (db *DB) Get(ctx context.Context, coll, id string) ([]byte, error) {
	return db.mem.Get(ctx, coll, id)
}

func (db *DB) List(ctx context.Context, coll string) ([][]byte, error) {
	return db.mem.List(ctx, coll)
}

func (db *DB) Update(ctx context.Context, coll, id string, fn func([]byte) ([]byte, error)) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	prev, err := db.mem.Get(ctx, coll, id)
	if err != nil {
		return err
	}
	if err = db.mem.Update(ctx, coll, id, fn); err != nil {
		return err
	}
	if err = db.flush(coll, ""); err != nil {
		_ = db.mem.Update(ctx, coll, id, func([]byte) ([]byte, error) { return prev, nil })
		return errors.Wrap(err, "flushing "+coll)
	}
	return nil
}

func (db *DB) Delete(ctx context.Context, coll, id string) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	if _, err := db.mem.Get(ctx, coll, id); err != nil {
		return err
	}
	if err := db.flush(coll, id); err != nil {
		return errors.Wrap(err, "flushing "+coll)
	}
	return db.mem.Delete(ctx, coll, id)
}

// Clear empties every collection and removes their files.
func (db *DB) Clear(ctx context.Context) error {
	db.writeMu.Lock()
	defer db.writeMu.Unlock()

	if err := db.mem.Clear(ctx); err != nil {
		return err
	}
	for _, coll := range core.Collections {
		if err := os.Remove(db.path(coll)); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "removing %s", coll)
		}
	}
	return nil
}

func (db *DB) Close() error { return nil }
