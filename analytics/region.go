package analytics

import (
	"fmt"
	"strings"
)

// MatchPolicy selects how a raw label is compared with an alias.
type MatchPolicy string

const (
	MatchExact     MatchPolicy = "exact"
	MatchSubstring MatchPolicy = "substring"
)

// CanonicalRegion is a consolidated region and the raw labels folded into it.
type CanonicalRegion struct {
	Name    string   `toml:"name" json:"name"`
	Aliases []string `toml:"aliases" json:"aliases"`
}

type alias struct {
	key       string
	canonical string
}

// RegionNormalizer maps raw region labels onto canonical regions.
// It is immutable after construction and safe for concurrent use.
type RegionNormalizer struct {
	policy  MatchPolicy
	order   []string
	aliases map[string][]string
	entries []alias
	exact   map[string]string
}

// NewRegionNormalizer validates the taxonomy and builds a normalizer. Each
// alias may belong to exactly one canonical region.
func NewRegionNormalizer(regions []CanonicalRegion, policy MatchPolicy) (*RegionNormalizer, error) {
	if policy == "" {
		policy = MatchSubstring
	}
	if policy != MatchExact && policy != MatchSubstring {
		return nil, fmt.Errorf("unknown region match policy %q", policy)
	}

	n := &RegionNormalizer{
		policy:  policy,
		aliases: make(map[string][]string, len(regions)),
		exact:   make(map[string]string),
	}

	for _, region := range regions {
		name := strings.TrimSpace(region.Name)
		if name == "" {
			return nil, fmt.Errorf("canonical region with empty name")
		}
		if _, dup := n.aliases[name]; dup {
			return nil, fmt.Errorf("canonical region %q listed twice", name)
		}
		n.order = append(n.order, name)
		n.aliases[name] = append([]string(nil), region.Aliases...)

		for _, a := range region.Aliases {
			key := foldLabel(a)
			if key == "" {
				continue
			}
			if owner, taken := n.exact[key]; taken && owner != name {
				return nil, fmt.Errorf("alias %q maps to both %q and %q", a, owner, name)
			}
			if _, taken := n.exact[key]; taken {
				continue
			}
			n.exact[key] = name
			n.entries = append(n.entries, alias{key: key, canonical: name})
		}
	}

	return n, nil
}

// Normalize returns the canonical region for raw. ok is false when no
// alias matches; such records belong to no region-scoped view.
func (n *RegionNormalizer) Normalize(raw string) (string, bool) {
	key := foldLabel(raw)
	if key == "" {
		return "", false
	}
	if name, ok := n.exact[key]; ok {
		return name, true
	}
	if n.policy == MatchExact {
		return "", false
	}

	best, bestLen := "", 0
	for _, e := range n.entries {
		if len(e.key) > bestLen && strings.Contains(key, e.key) {
			best, bestLen = e.canonical, len(e.key)
		}
	}
	return best, bestLen > 0
}

// Regions lists canonical region names in taxonomy order.
func (n *RegionNormalizer) Regions() []string {
	return append([]string(nil), n.order...)
}

// Aliases returns the configured aliases of a canonical region.
func (n *RegionNormalizer) Aliases(canonical string) []string {
	return append([]string(nil), n.aliases[canonical]...)
}

// IsCanonical reports whether name is a canonical region.
func (n *RegionNormalizer) IsCanonical(name string) bool {
	_, ok := n.aliases[name]
	return ok
}

// foldLabel lower-cases s and collapses runs of whitespace to one space.
func foldLabel(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
