package pgdb

import (
	"database/sql"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/skillx/skillx/core"
)

func TestDB_queries(t *testing.T) {
	s := &DB{sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
	data := []byte(`{"title":"Go"}`)

	tests := []struct {
		name     string
		query    sq.Sqlizer
		wantSQL  string
		wantArgs []interface{}
	}{
		{
			name:     "insert",
			query:    s.insertQuery(core.CollSkills, "s1", data),
			wantSQL:  "INSERT INTO records (collection,id,data) VALUES ($1,$2,$3) ON CONFLICT (collection, id) DO NOTHING",
			wantArgs: []interface{}{"skills", "s1", `{"title":"Go"}`},
		},
		{
			name:     "get",
			query:    s.selectQuery(core.CollSkills).Where(sq.Eq{"id": "s1"}),
			wantSQL:  "SELECT data FROM records WHERE collection = $1 AND id = $2",
			wantArgs: []interface{}{"skills", "s1"},
		},
		{
			name:     "list",
			query:    s.selectQuery(core.CollSkills).OrderBy("seq"),
			wantSQL:  "SELECT data FROM records WHERE collection = $1 ORDER BY seq",
			wantArgs: []interface{}{"skills"},
		},
		{
			name:     "update",
			query:    s.updateQuery(core.CollSkills, "s1", data),
			wantSQL:  "UPDATE records SET data = $1, updated_at = now() WHERE collection = $2 AND id = $3",
			wantArgs: []interface{}{`{"title":"Go"}`, "skills", "s1"},
		},
		{
			name:     "delete",
			query:    s.deleteQuery(core.CollSkills, "s1"),
			wantSQL:  "DELETE FROM records WHERE collection = $1 AND id = $2",
			wantArgs: []interface{}{"skills", "s1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, args, err := tt.query.ToSql()
			assert.NoError(t, err)
			assert.Equal(t, tt.wantSQL, q)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

type result int64

func (r result) LastInsertId() (int64, error) { return 0, nil }
func (r result) RowsAffected() (int64, error) { return int64(r), nil }

func TestCheckAffectedAndTrap(t *testing.T) {
	assert.NoError(t, checkAffected(result(1), core.ErrRecordExists))
	assert.Equal(t, core.ErrRecordExists, checkAffected(result(0), core.ErrRecordExists))

	assert.Equal(t, core.ErrRecordNotFound, trapNoRowsErr(sql.ErrNoRows, "getting record"))
	err := trapNoRowsErr(sql.ErrConnDone, "getting record")
	assert.Equal(t, sql.ErrConnDone, errors.Cause(err))
	assert.Equal(t, "getting record: sql: connection is already closed", err.Error())
}
