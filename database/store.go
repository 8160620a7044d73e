package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"regional-pulse/apperrors"
	"regional-pulse/models"
)

const insertBatchSize = 200

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Store is one sqlite news database.
type Store struct {
	db   *gorm.DB
	name string
}

// NewStore wraps an open database. name identifies it in logs and errors.
func NewStore(db *gorm.DB, name string) *Store {
	return &Store{db: db, name: name}
}

func (s *Store) Name() string {
	return s.name
}

// DB exposes the underlying connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// publishedAt normalizes published_time so native and TEXT timestamps,
// date-only values included, compare as instants. It is NULL for values
// sqlite cannot read.
const publishedAt = "datetime(published_time)"

// Find returns the records matching q. Rows whose published_time is not a
// readable timestamp are left out.
func (s *Store) Find(ctx context.Context, q models.NewsQuery) ([]models.NewsRecord, error) {
	query := s.db.WithContext(ctx).Model(&models.NewsRecord{}).
		Where(publishedAt + " IS NOT NULL")

	if !q.From.IsZero() {
		query = query.Where(publishedAt+" >= datetime(?)", q.From)
	}
	if !q.To.IsZero() {
		query = query.Where(publishedAt+" < datetime(?)", q.To)
	}
	if q.RegionContains != "" {
		query = query.Where(`region LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(q.RegionContains)+"%")
	}
	if q.RequireKeyword {
		query = query.Where("keyword IS NOT NULL AND keyword != ''")
	}
	if q.OnlyScored {
		query = query.Where("sentiment_score IS NOT NULL")
	}

	if q.NewestFirst {
		query = query.Order(publishedAt + " DESC").Order("id DESC")
	} else {
		query = query.Order(publishedAt + " ASC").Order("id ASC")
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	var records []models.NewsRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, apperrors.NewDatabaseError(fmt.Sprintf("query news in %s", s.name), err)
	}
	return records, nil
}

// InsertIgnore inserts records in batches, skipping any whose url already
// exists. It returns the number of rows actually inserted.
func (s *Store) InsertIgnore(ctx context.Context, records []models.NewsRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "url"}}, DoNothing: true}).
		CreateInBatches(&records, insertBatchSize)
	if result.Error != nil {
		return 0, apperrors.NewDatabaseError(fmt.Sprintf("insert news into %s", s.name), result.Error)
	}
	return result.RowsAffected, nil
}

// ExistingURLs returns every stored url.
func (s *Store) ExistingURLs(ctx context.Context) (map[string]struct{}, error) {
	var urls []string
	if err := s.db.WithContext(ctx).Model(&models.NewsRecord{}).Pluck("url", &urls).Error; err != nil {
		return nil, apperrors.NewDatabaseError(fmt.Sprintf("list urls in %s", s.name), err)
	}
	set := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		set[u] = struct{}{}
	}
	return set, nil
}

// Unprocessed returns up to limit records awaiting scoring with an id
// greater than afterID, in id order.
func (s *Store) Unprocessed(ctx context.Context, afterID uint, limit int) ([]models.NewsRecord, error) {
	query := s.db.WithContext(ctx).
		Where("is_processed = ? AND id > ?", false, afterID).
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []models.NewsRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, apperrors.NewDatabaseError(fmt.Sprintf("query unprocessed news in %s", s.name), err)
	}
	return records, nil
}

// SetScore stores a sentiment score and marks the record processed. Only an
// unprocessed record can be scored; a scored record is never rewritten.
func (s *Store) SetScore(ctx context.Context, id uint, score float64) error {
	result := s.db.WithContext(ctx).
		Model(&models.NewsRecord{}).
		Where("id = ? AND is_processed = ?", id, false).
		Updates(map[string]interface{}{
			"sentiment_score": score,
			"is_processed":    true,
		})
	if result.Error != nil {
		return apperrors.NewDatabaseError(fmt.Sprintf("update score in %s", s.name), result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("unprocessed news %d not found", id))
	}
	return nil
}

// Purge deletes every record and restarts id numbering at 1. The table
// itself is kept.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	var deleted int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.NewsRecord{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected

		if tx.Migrator().HasTable("sqlite_sequence") {
			return tx.Exec("DELETE FROM sqlite_sequence WHERE name = ?", models.NewsRecord{}.TableName()).Error
		}
		return nil
	})
	if err != nil {
		return 0, apperrors.NewDatabaseError(fmt.Sprintf("purge news in %s", s.name), err)
	}
	return deleted, nil
}

// DeleteBefore removes records published before cutoff.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where(publishedAt+" < datetime(?)", cutoff).
		Delete(&models.NewsRecord{})
	if result.Error != nil {
		return 0, apperrors.NewDatabaseError(fmt.Sprintf("delete old news in %s", s.name), result.Error)
	}
	return result.RowsAffected, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
