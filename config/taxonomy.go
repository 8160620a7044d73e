package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"regional-pulse/analytics"
)

//go:embed taxonomy.toml
var defaultTaxonomy []byte

// Asset is a market index shown next to sentiment.
type Asset struct {
	Name   string `toml:"name" json:"name"`
	Symbol string `toml:"symbol" json:"symbol"`
	Label  string `toml:"label" json:"label"`
}

// Taxonomy is the static configuration of region consolidation and keyword
// handling. It is read once and treated as immutable.
type Taxonomy struct {
	Match                analytics.MatchPolicy       `toml:"match"`
	MinTokenLength       int                         `toml:"min_token_length"`
	EconomicKeywords     []string                    `toml:"economic_keywords"`
	Stopwords            []string                    `toml:"stopwords"`
	ExcludedKeywordParts []string                    `toml:"excluded_keyword_parts"`
	IngestRegions        map[string]string           `toml:"ingest_regions"`
	GeoRegions           map[string]string           `toml:"geo_regions"`
	Assets               []Asset                     `toml:"assets"`
	Regions              []analytics.CanonicalRegion `toml:"regions"`
}

// LoadTaxonomy reads path, or the embedded default when path is empty.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	data := defaultTaxonomy
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read taxonomy %s: %w", path, err)
		}
		data = raw
	}
	return ParseTaxonomy(data)
}

// ParseTaxonomy decodes and validates TOML taxonomy data.
func ParseTaxonomy(data []byte) (*Taxonomy, error) {
	var t Taxonomy
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse taxonomy: %w", err)
	}
	if len(t.Regions) == 0 {
		return nil, fmt.Errorf("taxonomy defines no regions")
	}
	if t.Match == "" {
		t.Match = analytics.MatchSubstring
	}
	if t.MinTokenLength <= 0 {
		t.MinTokenLength = 1
	}
	seen := make(map[string]bool, len(t.Assets))
	for i, a := range t.Assets {
		if a.Name == "" || a.Symbol == "" {
			return nil, fmt.Errorf("asset %d needs a name and a symbol", i)
		}
		key := strings.ToUpper(a.Name)
		if seen[key] {
			return nil, fmt.Errorf("asset %q listed twice", a.Name)
		}
		seen[key] = true
		if t.Assets[i].Label == "" {
			t.Assets[i].Label = a.Name
		}
	}
	if _, err := t.Normalizer(); err != nil {
		return nil, fmt.Errorf("invalid taxonomy: %w", err)
	}
	return &t, nil
}

// Normalizer builds the region normalizer described by the taxonomy.
func (t *Taxonomy) Normalizer() (*analytics.RegionNormalizer, error) {
	return analytics.NewRegionNormalizer(t.Regions, t.Match)
}

// AssetNames lists configured asset names in file order.
func (t *Taxonomy) AssetNames() []string {
	names := make([]string, len(t.Assets))
	for i, a := range t.Assets {
		names[i] = a.Name
	}
	return names
}

// Asset finds an asset by name, symbol or label, ignoring case. An empty
// key selects the default asset.
func (t *Taxonomy) Asset(key string) (Asset, bool) {
	if len(t.Assets) == 0 {
		return Asset{}, false
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return t.Assets[0], true
	}
	for _, a := range t.Assets {
		if strings.EqualFold(a.Name, key) || strings.EqualFold(a.Symbol, key) || a.Label == key {
			return a, true
		}
	}
	return Asset{}, false
}
