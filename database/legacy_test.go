package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"regional-pulse/apperrors"
	"regional-pulse/models"
)

// crawlerSchema is the table the crawler import scripts create.
const crawlerSchema = `
	CREATE TABLE IF NOT EXISTS news (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		content TEXT,
		region TEXT,
		sentiment_score REAL,
		is_processed INTEGER DEFAULT 0,
		published_time TEXT,
		url TEXT UNIQUE,
		keyword TEXT,
		collected_at TEXT,
		created_at TEXT DEFAULT CURRENT_TIMESTAMP
	)`

func writeCrawlerDB(t *testing.T, path string, statements ...string) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: NewGormLogger(zerolog.Nop())})
	require.NoError(t, err)
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error, stmt)
	}
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func tableDDL(t *testing.T, path string) string {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: NewGormLogger(zerolog.Nop())})
	require.NoError(t, err)
	defer closeDB(db)
	var ddl string
	require.NoError(t, db.Raw("SELECT sql FROM sqlite_master WHERE type = 'table' AND name = 'news'").Scan(&ddl).Error)
	return ddl
}

var crawlerRows = []string{
	crawlerSchema,
	`INSERT INTO news (title, content, region, sentiment_score, is_processed, published_time, url, keyword, collected_at)
		VALUES ('금리 동결', '본문', '서울', 0.3, 1, '2025-01-06 09:30:00', 'https://news/1', '금리, 경제', '2025-01-06T10:00:00')`,
	`INSERT INTO news (title, content, region, is_processed, published_time, url)
		VALUES ('수출 증가', '본문', '부산', 0, '2025-01-07', 'https://news/2')`,
}

func TestOpenCrawlerDatabaseAsWriteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "news.db")
	writeCrawlerDB(t, path, crawlerRows...)
	before := tableDDL(t, path)

	db, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	s := NewStore(db, path)
	defer s.Close()

	got, err := s.Find(ctx, models.DayRange(mustDay(t, "2025-01-06"), mustDay(t, "2025-01-07")))
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "https://news/1", first.URL)
	assert.Equal(t, time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC), first.PublishedTime)
	assert.True(t, first.IsProcessed)
	score, ok := first.Score()
	require.True(t, ok)
	assert.Equal(t, 0.3, score)
	require.NotNil(t, first.CollectedAt)
	assert.Equal(t, time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC), *first.CollectedAt)
	assert.False(t, first.CreatedAt.IsZero())
	assert.Equal(t, "2025-01-07", got[1].Day())

	pending, err := s.Unprocessed(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.NoError(t, s.SetScore(ctx, pending[0].ID, -0.2))

	_, err = s.InsertIgnore(ctx, []models.NewsRecord{news("https://news/3", "대구", "2025-01-08", nil, "")})
	require.NoError(t, err)
	all, err := s.Find(ctx, models.NewsQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://news/1", "https://news/2", "https://news/3"}, urlsOf(all))

	assert.Equal(t, before, tableDDL(t, path), "an existing table is not retyped")
}

func TestOpenAllReadsCrawlerSources(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	primary := filepath.Join(dir, "news.db")
	scraped := filepath.Join(dir, "news_scraped.db")
	other := filepath.Join(dir, "other.db")

	writeCrawlerDB(t, scraped, crawlerRows...)
	before := tableDDL(t, scraped)
	writeCrawlerDB(t, other, `CREATE TABLE news (id INTEGER PRIMARY KEY AUTOINCREMENT, region TEXT, press TEXT, title TEXT, content TEXT, link TEXT)`)

	writer, union, err := OpenAll([]string{primary, scraped, other}, zerolog.Nop())
	require.NoError(t, err)
	defer union.Close()

	require.Len(t, union.stores, 2, "a source without the news columns is skipped")
	_, err = writer.InsertIgnore(ctx, []models.NewsRecord{news("https://news/1", "경남", "2025-01-06", nil, "")})
	require.NoError(t, err)

	got, err := union.Find(ctx, models.NewsQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://news/1", "https://news/2"}, urlsOf(got))
	region, _ := got[0].RegionLabel()
	assert.Equal(t, "경남", region, "the write store wins on duplicate url")

	err = union.stores[1].SetScore(ctx, 2, 0.5)
	assert.True(t, apperrors.IsDatabaseError(err), "read sources are opened read-only")
	assert.Equal(t, before, tableDDL(t, scraped))
}

func TestOpenSourceRejectsMissingTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	writeCrawlerDB(t, path, `CREATE TABLE articles (id INTEGER PRIMARY KEY)`)

	_, err := OpenSource(path, zerolog.Nop())
	assert.ErrorIs(t, err, ErrIncompatibleSchema)
}

func TestCrawlerDateOnlyRowsKeepTheirDay(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "news.db")
	writeCrawlerDB(t, path, crawlerRows...)

	db, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	s := NewStore(db, path)
	defer s.Close()

	day := mustDay(t, "2025-01-07")
	got, err := s.Find(ctx, models.DayRange(day, day))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://news/2"}, urlsOf(got), "a date-only timestamp belongs to its own day")

	deleted, err := s.DeleteBefore(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted, "only the row of the previous day is pruned")

	left, err := s.Find(ctx, models.NewsQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://news/2"}, urlsOf(left))
}

func TestFindSkipsUnreadableTimestamps(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "news.db")
	writeCrawlerDB(t, path, append(crawlerRows,
		`INSERT INTO news (title, region, published_time, url) VALUES ('빈 날짜', '서울', '', 'https://news/empty')`,
		`INSERT INTO news (title, region, published_time, url) VALUES ('잘못된 날짜', '서울', '어제', 'https://news/bad')`,
		`INSERT INTO news (title, region, url) VALUES ('날짜 없음', '서울', 'https://news/null')`,
	)...)

	db, err := Open(path, zerolog.Nop())
	require.NoError(t, err)
	s := NewStore(db, path)
	defer s.Close()

	all, err := s.Find(ctx, models.NewsQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://news/1", "https://news/2"}, urlsOf(all))

	newest, err := s.Find(ctx, models.NewsQuery{RegionContains: "서울", NewestFirst: true, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://news/1"}, urlsOf(newest))

	deleted, err := s.DeleteBefore(ctx, mustDay(t, "2030-01-01"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted, "rows without a readable timestamp are never pruned")
}
