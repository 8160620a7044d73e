package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"regional-pulse/models"
)

// ErrIncompatibleSchema is returned for a database whose news table lacks
// columns the record model needs.
var ErrIncompatibleSchema = errors.New("incompatible news schema")

// Open connects to the write database at path, creating the file, its
// directory and the news table when missing. An existing news table is only
// extended with missing columns and never retyped, so files created by the
// crawler scripts keep their schema.
func Open(path string, log zerolog.Logger) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: NewGormLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database %s: %w", path, err)
	}

	migrator := db.Migrator()
	if !migrator.HasTable(&models.NewsRecord{}) {
		if err := migrator.AutoMigrate(&models.NewsRecord{}); err != nil {
			closeDB(db)
			return nil, fmt.Errorf("failed to auto migrate %s: %w", path, err)
		}
	} else {
		missing, err := missingColumns(db)
		if err != nil {
			closeDB(db)
			return nil, err
		}
		for _, name := range missing {
			if err := migrator.AddColumn(&models.NewsRecord{}, name); err != nil {
				closeDB(db)
				return nil, fmt.Errorf("failed to add column %s to %s: %w", name, path, err)
			}
			log.Info().Str("path", path).Str("column", name).Msg("Added missing news column")
		}
	}

	log.Info().Str("path", path).Msg("Database connected successfully")
	return db, nil
}

// OpenSource connects read-only to a secondary database. Nothing is
// migrated; a file without a news table carrying every model column fails
// with ErrIncompatibleSchema.
func OpenSource(path string, log zerolog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open("file:"+path+"?mode=ro"), &gorm.Config{
		Logger: NewGormLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database %s: %w", path, err)
	}

	if !db.Migrator().HasTable(&models.NewsRecord{}) {
		closeDB(db)
		return nil, fmt.Errorf("%s: no news table: %w", path, ErrIncompatibleSchema)
	}
	missing, err := missingColumns(db)
	if err != nil {
		closeDB(db)
		return nil, err
	}
	if len(missing) > 0 {
		closeDB(db)
		return nil, fmt.Errorf("%s: missing columns %s: %w", path, strings.Join(missing, ", "), ErrIncompatibleSchema)
	}

	log.Info().Str("path", path).Msg("Read-only database connected")
	return db, nil
}

// OpenAll opens every configured file. The first path is the write store
// and is always opened (and created). Later paths are read-only sources,
// skipped with a warning when the file is missing or its schema does not
// fit.
func OpenAll(paths []string, log zerolog.Logger) (*Store, *Union, error) {
	if len(paths) == 0 {
		return nil, nil, fmt.Errorf("no database paths configured")
	}

	writeDB, err := Open(paths[0], log)
	if err != nil {
		return nil, nil, err
	}
	stores := []*Store{NewStore(writeDB, paths[0])}

	for _, path := range paths[1:] {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			log.Warn().Str("path", path).Msg("Database file not found, skipping")
			continue
		}
		db, err := OpenSource(path, log)
		if errors.Is(err, ErrIncompatibleSchema) {
			log.Warn().Err(err).Str("path", path).Msg("Database schema not readable, skipping")
			continue
		}
		if err != nil {
			_ = NewUnion(stores...).Close()
			return nil, nil, err
		}
		stores = append(stores, NewStore(db, path))
	}

	return stores[0], NewUnion(stores...), nil
}

// missingColumns lists the model columns absent from the news table.
func missingColumns(db *gorm.DB) ([]string, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(&models.NewsRecord{}); err != nil {
		return nil, fmt.Errorf("failed to parse news model: %w", err)
	}

	var missing []string
	for _, field := range stmt.Schema.Fields {
		if field.DBName == "" {
			continue
		}
		if !db.Migrator().HasColumn(&models.NewsRecord{}, field.DBName) {
			missing = append(missing, field.DBName)
		}
	}
	return missing, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
