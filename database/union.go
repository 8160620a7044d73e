package database

import (
	"context"
	"sort"

	"regional-pulse/models"
)

// Reader is the read side of a record store.
type Reader interface {
	Find(ctx context.Context, q models.NewsQuery) ([]models.NewsRecord, error)
}

// Union reads several stores as one, keeping the first record seen for
// each url. Any store failing fails the whole read.
type Union struct {
	stores []*Store
}

func NewUnion(stores ...*Store) *Union {
	return &Union{stores: stores}
}

func (u *Union) Find(ctx context.Context, q models.NewsQuery) ([]models.NewsRecord, error) {
	seen := make(map[string]struct{})
	var out []models.NewsRecord

	for _, s := range u.stores {
		records, err := s.Find(ctx, q)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			if _, dup := seen[rec.URL]; dup {
				continue
			}
			seen[rec.URL] = struct{}{}
			out = append(out, rec)
		}
	}

	if len(u.stores) > 1 {
		sort.SliceStable(out, func(i, j int) bool {
			if q.NewestFirst {
				return out[i].PublishedTime.After(out[j].PublishedTime)
			}
			return out[i].PublishedTime.Before(out[j].PublishedTime)
		})
		if q.Limit > 0 && len(out) > q.Limit {
			out = out[:q.Limit]
		}
	}
	return out, nil
}

// Close closes every store.
func (u *Union) Close() error {
	var first error
	for _, s := range u.stores {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
