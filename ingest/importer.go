package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"regional-pulse/models"
)

// Writer is the store an import writes into.
type Writer interface {
	ExistingURLs(ctx context.Context) (map[string]struct{}, error)
	InsertIgnore(ctx context.Context, records []models.NewsRecord) (int64, error)
}

// Options configure an Importer.
type Options struct {
	Workers   int
	RegionMap map[string]string
	Now       func() time.Time
}

// Result counts what an import did.
type Result struct {
	Files    int `json:"files"`
	Read     int `json:"read"`
	Invalid  int `json:"invalid"`
	Old      int `json:"old"`
	Existing int `json:"existing"`
	Inserted int `json:"inserted"`

	Failed []string `json:"failed,omitempty"`
}

// Skipped is the number of rows read but not inserted.
func (r Result) Skipped() int {
	return r.Read - r.Inserted
}

// Importer loads crawler CSV exports into a store.
type Importer struct {
	store     Writer
	keywords  *KeywordExtractor
	regionMap map[string]string
	workers   int
	now       func() time.Time
	logger    zerolog.Logger
}

func NewImporter(store Writer, keywords *KeywordExtractor, opts Options, logger zerolog.Logger) *Importer {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	regions := make(map[string]string, len(opts.RegionMap))
	for k, v := range opts.RegionMap {
		regions[strings.ToLower(k)] = v
	}
	return &Importer{
		store:     store,
		keywords:  keywords,
		regionMap: regions,
		workers:   opts.Workers,
		now:       opts.Now,
		logger:    logger,
	}
}

// Discover expands a glob into a sorted file list.
func Discover(pattern string) ([]string, error) {
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad ingest pattern %q: %w", pattern, err)
	}
	sort.Strings(files)
	return files, nil
}

// ImportFiles imports every file, keeping rows published on or after since
// (a zero since keeps all). A file that cannot be read is logged, listed in
// Result.Failed and skipped. Only store and context errors abort the run.
func (im *Importer) ImportFiles(ctx context.Context, paths []string, since time.Time) (Result, error) {
	var res Result
	if len(paths) == 0 {
		im.logger.Warn().Msg("No CSV files to import")
		return res, nil
	}

	existing, err := im.store.ExistingURLs(ctx)
	if err != nil {
		return res, err
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		rows, err := readFile(path)
		if err != nil {
			im.logger.Error().Err(err).Str("file", path).Msg("Skipping CSV file")
			res.Failed = append(res.Failed, path)
			continue
		}
		res.Files++

		fileRes, err := im.importRows(ctx, rows, since, existing)
		res.Read += fileRes.Read
		res.Invalid += fileRes.Invalid
		res.Old += fileRes.Old
		res.Existing += fileRes.Existing
		res.Inserted += fileRes.Inserted
		if err != nil {
			return res, err
		}

		im.logger.Info().
			Str("file", filepath.Base(path)).
			Int("read", fileRes.Read).
			Int("inserted", fileRes.Inserted).
			Int("skipped", fileRes.Skipped()).
			Msg("CSV file imported")
	}

	return res, nil
}

func readFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRows(f)
}

type candidate struct {
	row       Row
	published time.Time
}

func (im *Importer) importRows(ctx context.Context, rows []Row, since time.Time, existing map[string]struct{}) (Result, error) {
	res := Result{Read: len(rows)}

	var todo []candidate
	for _, row := range rows {
		if row.URL == "" {
			res.Invalid++
			continue
		}
		published, err := ParseDate(row.Date)
		if err != nil {
			im.logger.Debug().Int("line", row.Line).Str("date", row.Date).Msg("Unparsable date")
			res.Invalid++
			continue
		}
		if !since.IsZero() && published.Before(since) {
			res.Old++
			continue
		}
		if _, dup := existing[row.URL]; dup {
			res.Existing++
			continue
		}
		existing[row.URL] = struct{}{}
		todo = append(todo, candidate{row: row, published: published})
	}
	if len(todo) == 0 {
		return res, nil
	}

	collected := im.now()
	records := make([]models.NewsRecord, len(todo))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(im.workers)
	for i, c := range todo {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records[i] = im.buildRecord(c, collected)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, err
	}

	inserted, err := im.store.InsertIgnore(ctx, records)
	if err != nil {
		return res, err
	}
	res.Inserted = int(inserted)
	res.Existing += len(todo) - res.Inserted
	return res, nil
}

func (im *Importer) buildRecord(c candidate, collected time.Time) models.NewsRecord {
	rec := models.NewsRecord{
		Title:         c.row.Title,
		Content:       c.row.Content,
		PublishedTime: c.published,
		URL:           c.row.URL,
		CollectedAt:   &collected,
	}
	if region := im.mapRegion(c.row.Region); region != "" {
		rec.Region = &region
	}
	if kw := im.keywords.Extract(c.row.Content); kw != "" {
		rec.Keyword = &kw
	}
	return rec
}

// mapRegion translates crawler region keys; unknown labels pass through.
func (im *Importer) mapRegion(raw string) string {
	raw = strings.TrimSpace(raw)
	if mapped, ok := im.regionMap[strings.ToLower(raw)]; ok {
		return mapped
	}
	return raw
}
