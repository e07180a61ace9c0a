package storerepos

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/skillx/skillx/core"
)

// collection maps the records of one core.Store collection to values of type T.
type collection[T any] struct {
	store    core.Store
	name     string
	notFound error // returned in place of core.ErrRecordNotFound
}

func newID() string {
	return uuid.New().String()
}

func (c collection[T]) trap(err error, msg string) error {
	switch errors.Cause(err) {
	case nil:
		return nil
	case core.ErrRecordNotFound:
		return c.notFound
	default:
		return errors.Wrap(err, msg)
	}
}

func (c collection[T]) insert(ctx context.Context, id string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encoding "+c.name)
	}
	if err = c.store.Insert(ctx, c.name, id, data); err != nil {
		if errors.Cause(err) == core.ErrRecordExists {
			return core.ErrRecordExists
		}
		return errors.Wrap(err, "inserting into "+c.name)
	}
	return nil
}

func (c collection[T]) get(ctx context.Context, id string) (T, error) {
	var v T
	data, err := c.store.Get(ctx, c.name, id)
	if err != nil {
		return v, c.trap(err, "getting from "+c.name)
	}
	if err = json.Unmarshal(data, &v); err != nil {
		return v, errors.Wrap(err, "decoding "+c.name)
	}
	return v, nil
}

func (c collection[T]) all(ctx context.Context) ([]T, error) {
	return c.filter(ctx, nil)
}

// filter returns the values matching keep (all values if keep is nil), in insertion order.
func (c collection[T]) filter(ctx context.Context, keep func(T) bool) ([]T, error) {
	rows, err := c.store.List(ctx, c.name)
	if err != nil {
		return nil, errors.Wrap(err, "listing "+c.name)
	}
	values := make([]T, 0, len(rows))
	for _, data := range rows {
		var v T
		if err = json.Unmarshal(data, &v); err != nil {
			return nil, errors.Wrap(err, "decoding "+c.name)
		}
		if keep == nil || keep(v) {
			values = append(values, v)
		}
	}
	return values, nil
}

// update applies fn atomically to the stored value and returns the new value.
func (c collection[T]) update(ctx context.Context, id string, fn func(*T) error) (T, error) {
	var updated T
	err := c.store.Update(ctx, c.name, id, func(data []byte) ([]byte, error) {
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, errors.Wrap(err, "decoding "+c.name)
		}
		if err := fn(&v); err != nil {
			return nil, err
		}
		updated = v
		return json.Marshal(v)
	})
	if err != nil {
		if errors.Cause(err) == core.ErrRecordNotFound {
			return updated, c.notFound
		}
		return updated, err
	}
	return updated, nil
}

func (c collection[T]) delete(ctx context.Context, id string) error {
	return c.trap(c.store.Delete(ctx, c.name, id), "deleting from "+c.name)
}
