package filedb

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillx/skillx/core"
)

var ctxBg = context.Background()

func TestDB_persistence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	db, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, db.Insert(ctxBg, core.CollUsers, "u1", []byte(`{"name":"Leo"}`)))
	require.NoError(t, db.Insert(ctxBg, core.CollUsers, "u2", []byte(`{"name":"Lia"}`)))
	require.NoError(t, db.Insert(ctxBg, core.CollSkills, "s1", []byte(`{"title":"Go"}`)))
	require.NoError(t, db.Update(ctxBg, core.CollUsers, "u1", func([]byte) ([]byte, error) {
		return []byte(`{"name":"Leon"}`), nil
	}))
	require.NoError(t, db.Delete(ctxBg, core.CollSkills, "s1"))
	assert.Equal(t, core.ErrRecordExists, db.Insert(ctxBg, core.CollUsers, "u1", []byte(`{}`)))

	content, err := os.ReadFile(filepath.Join(dir, "skillx_users.json"))
	require.NoError(t, err)
	var records []record
	require.NoError(t, json.Unmarshal(content, &records))
	require.Len(t, records, 2)
	assert.Equal(t, "u1", records[0].ID)
	assert.JSONEq(t, `{"name":"Leon"}`, string(records[0].Data))

	content, err = os.ReadFile(filepath.Join(dir, "skillx_skills.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(content))

	// reopen
	db, err = Open(dir)
	require.NoError(t, err)
	rows, err := db.List(ctxBg, core.CollUsers)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.JSONEq(t, `{"name":"Leon"}`, string(rows[0]))
	assert.JSONEq(t, `{"name":"Lia"}`, string(rows[1]))
	_, err = db.Get(ctxBg, core.CollSkills, "s1")
	assert.Equal(t, core.ErrRecordNotFound, err)

	require.NoError(t, db.Clear(ctxBg))
	_, err = os.Stat(filepath.Join(dir, "skillx_users.json"))
	assert.True(t, os.IsNotExist(err))
	db, err = Open(dir)
	require.NoError(t, err)
	rows, err = db.List(ctxBg, core.CollUsers)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestOpen_corrupted(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "skillx_videos.json"), []byte("{nope"), 0o644))
	_, err := Open(dir)
	assert.Error(t, err)
}

func TestDB_failedFlush(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	db, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, db.Insert(ctxBg, core.CollUsers, "u1", []byte(`{"email":"a@b.c"}`)))

	require.NoError(t, os.RemoveAll(dir))

	tests := []struct {
		name string
		op   func() error
	}{
		{
			name: "insert",
			op:   func() error { return db.Insert(ctxBg, core.CollUsers, "u2", []byte(`{"email":"d@e.f"}`)) },
		},
		{
			name: "update",
			op: func() error {
				return db.Update(ctxBg, core.CollUsers, "u1", func([]byte) ([]byte, error) {
					return []byte(`{"email":"x@y.z"}`), nil
				})
			},
		},
		{
			name: "delete",
			op:   func() error { return db.Delete(ctxBg, core.CollUsers, "u1") },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.op())

			rows, err := db.List(ctxBg, core.CollUsers)
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.JSONEq(t, `{"email":"a@b.c"}`, string(rows[0]))
		})
	}

	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, db.Insert(ctxBg, core.CollUsers, "u3", []byte(`{"email":"g@h.i"}`)))

	content, err := os.ReadFile(filepath.Join(dir, "skillx_users.json"))
	require.NoError(t, err)
	var records []record
	require.NoError(t, json.Unmarshal(content, &records))
	require.Len(t, records, 2)
	assert.Equal(t, "u1", records[0].ID)
	assert.JSONEq(t, `{"email":"a@b.c"}`, string(records[0].Data))
	assert.Equal(t, "u3", records[1].ID)
}
