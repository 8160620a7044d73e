package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionNormalizerSubstring(t *testing.T) {
	n, err := NewRegionNormalizer(testTaxonomy(), MatchSubstring)
	require.NoError(t, err)

	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"서울", "서울", true},
		{"  SEOUL ", "서울", true},
		{"경기도", "경기도", true},
		{"인천광역시", "경기도", true},
		{"경상남도", "경상도", true},
		{"부산", "경상도", true},
		{"전라 남도", "전라도", true},
		{"전국", "", false},
		{"", "", false},
		{"   ", "", false},
	}
	for _, tt := range tests {
		got, ok := n.Normalize(tt.raw)
		assert.Equal(t, tt.wantOK, ok, "Normalize(%q) ok", tt.raw)
		assert.Equal(t, tt.want, got, "Normalize(%q)", tt.raw)
	}
}

func TestRegionNormalizerExact(t *testing.T) {
	n, err := NewRegionNormalizer(testTaxonomy(), MatchExact)
	require.NoError(t, err)

	got, ok := n.Normalize("경남")
	assert.True(t, ok)
	assert.Equal(t, "경상도", got)

	_, ok = n.Normalize("경상남도")
	assert.False(t, ok, "exact policy must not match substrings")
}

func TestRegionNormalizerLongestAliasWins(t *testing.T) {
	n, err := NewRegionNormalizer([]CanonicalRegion{
		{Name: "A", Aliases: []string{"ab"}},
		{Name: "B", Aliases: []string{"abc"}},
	}, MatchSubstring)
	require.NoError(t, err)

	got, ok := n.Normalize("xabcx")
	assert.True(t, ok)
	assert.Equal(t, "B", got)
}

func TestRegionNormalizerRejectsOverlap(t *testing.T) {
	_, err := NewRegionNormalizer([]CanonicalRegion{
		{Name: "충청도", Aliases: []string{"대전"}},
		{Name: "경상도", Aliases: []string{"대전"}},
	}, MatchSubstring)
	assert.Error(t, err)

	_, err = NewRegionNormalizer([]CanonicalRegion{{Name: " "}}, MatchSubstring)
	assert.Error(t, err)

	_, err = NewRegionNormalizer(testTaxonomy(), MatchPolicy("fuzzy"))
	assert.Error(t, err)
}

func TestRegionNormalizerRegions(t *testing.T) {
	n, err := NewRegionNormalizer(testTaxonomy(), "")
	require.NoError(t, err)

	assert.Equal(t, []string{"서울", "경기도", "경상도", "전라도"}, n.Regions())
	assert.Equal(t, []string{"경기", "인천"}, n.Aliases("경기도"))
	assert.True(t, n.IsCanonical("전라도"))
	assert.False(t, n.IsCanonical("전남"))
}
