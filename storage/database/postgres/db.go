package pgdb

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/skillx/skillx/core"
)

const (
	recordsTable    = "records"
	uniqueViolation = "23505"
)

// DB stores every collection in the single `records` table.
type DB struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

var _ core.Store = (*DB)(nil) // interface compliance check

func New(db *sql.DB) *DB {
	return &DB{
		db: sqlx.NewDb(db, "postgres"),
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func key(coll, id string) sq.Eq {
	return sq.Eq{"collection": coll, "id": id}
}

func (s *DB) insertQuery(coll, id string, data []byte) sq.InsertBuilder {
	return s.sb.Insert(recordsTable).
		Columns("collection", "id", "data").
		Values(coll, id, string(data)).
		Suffix("ON CONFLICT (collection, id) DO NOTHING")
}

func (s *DB) selectQuery(coll string) sq.SelectBuilder {
	return s.sb.Select("data").From(recordsTable).Where(sq.Eq{"collection": coll})
}

func (s *DB) updateQuery(coll, id string, data []byte) sq.UpdateBuilder {
	return s.sb.Update(recordsTable).
		Set("data", string(data)).
		Set("updated_at", sq.Expr("now()")).
		Where(key(coll, id))
}

func (s *DB) deleteQuery(coll, id string) sq.DeleteBuilder {
	return s.sb.Delete(recordsTable).Where(key(coll, id))
}

func (s *DB) Insert(ctx context.Context, coll, id string, data []byte) error {
	q, args, err := s.insertQuery(coll, id, data).ToSql()
	if err != nil {
		return errors.Wrap(err, "building insert")
	}
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == uniqueViolation {
			return core.ErrRecordExists
		}
		return errors.Wrap(err, "inserting record")
	}
	return checkAffected(res, core.ErrRecordExists)
}

func (s *DB) Get(ctx context.Context, coll, id string) ([]byte, error) {
	q, args, err := s.selectQuery(coll).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building select")
	}
	var data []byte
	if err = s.db.GetContext(ctx, &data, q, args...); err != nil {
		return nil, trapNoRowsErr(err, "getting record")
	}
	return data, nil
}

func (s *DB) List(ctx context.Context, coll string) ([][]byte, error) {
	q, args, err := s.selectQuery(coll).OrderBy("seq").ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building select")
	}
	var rows [][]byte
	if err = s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "listing records")
	}
	return rows, nil
}

// Update locks the row for the duration of fn.
func (s *DB) Update(ctx context.Context, coll, id string, fn func([]byte) ([]byte, error)) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	q, args, err := s.selectQuery(coll).Where(sq.Eq{"id": id}).Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return errors.Wrap(err, "building select")
	}
	var data []byte
	if err = tx.GetContext(ctx, &data, q, args...); err != nil {
		return trapNoRowsErr(err, "locking record")
	}

	newData, err := fn(data)
	if err != nil {
		return err
	}

	q, args, err = s.updateQuery(coll, id, newData).ToSql()
	if err != nil {
		return errors.Wrap(err, "building update")
	}
	if _, err = tx.ExecContext(ctx, q, args...); err != nil {
		return errors.Wrap(err, "updating record")
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}
	return nil
}

func (s *DB) Delete(ctx context.Context, coll, id string) error {
	q, args, err := s.deleteQuery(coll, id).ToSql()
	if err != nil {
		return errors.Wrap(err, "building delete")
	}
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return errors.Wrap(err, "deleting record")
	}
	return checkAffected(res, core.ErrRecordNotFound)
}

func (s *DB) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "TRUNCATE "+recordsTable); err != nil {
		return errors.Wrap(err, "truncating records")
	}
	return nil
}

func (s *DB) Close() error {
	return s.db.Close()
}

func checkAffected(res sql.Result, errNone error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "counting affected rows")
	}
	if n == 0 {
		return errNone
	}
	return nil
}

func trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return core.ErrRecordNotFound
	}
	return errors.Wrap(err, msg)
}
