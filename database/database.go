package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"milk-backend/models"

	"cloud.google.com/go/firestore"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverFile      = "file"
	DriverPostgres  = "postgres"
	DriverSQLite    = "sqlite"
	DriverFirestore = "firestore"
)

// Options selects and configures the Store returned by Open.
type Options struct {
	Driver      string
	DataFile    string
	DatabaseURL string
	SQLitePath  string
	// Firestore is only called for the firestore driver.
	Firestore func(ctx context.Context) (*firestore.Client, error)
}

func Connect(driver, dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	switch driver {
	case DriverPostgres:
		if dsn == "" {
			dsn = "host=localhost user=postgres password=postgres dbname=milk port=5432 sslmode=disable"
		}
		return gorm.Open(postgres.Open(dsn), cfg)
	case DriverSQLite:
		if dsn == "" {
			dsn = "data/milk.db"
		}
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
			}
		}
		db, err := gorm.Open(sqlite.Open(dsn), cfg)
		if err != nil {
			return nil, err
		}
		// sqlite allows one writer at a time
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.PointsOperation{},
		&models.Reward{},
		&models.Order{},
		&models.PrepaidCard{},
		&models.Reservation{},
		&models.HappyMessage{},
	)
}

// Open builds the Store named by opts.Driver, migrating SQL schemas on the way.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", DriverFile:
		path := opts.DataFile
		if path == "" {
			path = filepath.Join("data", "db.json")
		}
		slog.Info("Using file store", "path", path)
		return OpenFile(path)

	case DriverPostgres, DriverSQLite:
		dsn := opts.DatabaseURL
		if opts.Driver == DriverSQLite {
			dsn = opts.SQLitePath
		}
		db, err := Connect(opts.Driver, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w", opts.Driver, err)
		}
		if err := Migrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate %s: %w", opts.Driver, err)
		}
		slog.Info("Using SQL store", "driver", opts.Driver)
		return NewGormStore(db), nil

	case DriverFirestore:
		if opts.Firestore == nil {
			return nil, errors.New("firestore driver selected but firebase is not initialised")
		}
		client, err := opts.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to open firestore: %w", err)
		}
		slog.Info("Using Firestore store")
		return NewFirestoreStore(client), nil
	}
	return nil, fmt.Errorf("unknown STORE_DRIVER %q", opts.Driver)
}
