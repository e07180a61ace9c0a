package database

import (
	"github.com/pkg/errors"

	"github.com/skillx/skillx/core"
	"github.com/skillx/skillx/storage/database/inmem"
	"github.com/skillx/skillx/storage/database/jsonfile"
	"github.com/skillx/skillx/storage/database/postgres"
)

// OpenStore opens the core.Store selected by conf.Storage.Driver.
// The postgres database is created and migrated if needed.
func OpenStore(conf *core.Config) (core.Store, error) {
	switch conf.Storage.Driver {
	case core.StorageMemory, "":
		return inmemdb.Open(), nil
	case core.StorageFile:
		return filedb.Open(conf.Storage.Dir)
	case core.StoragePostgres:
		if err := CreateIfNotExist(conf); err != nil {
			return nil, err
		}
		db, err := Open(conf)
		if err != nil {
			return nil, err
		}
		if err = Migrate(db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return pgdb.New(db), nil
	default:
		return nil, errors.Errorf("unknown storage driver %q", conf.Storage.Driver)
	}
}
