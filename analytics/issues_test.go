package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regional-pulse/models"
)

func TestRankAveragesSentiment(t *testing.T) {
	r := NewIssueRanker(UnitScale, 2)
	got := r.Rank([]models.NewsRecord{
		keywordRecord("경제", models.FloatPtr(0.8)),
		keywordRecord("경제", models.FloatPtr(0.2)),
	}, 10)

	require.Len(t, got, 1)
	assert.Equal(t, "경제", got[0].Token)
	assert.Equal(t, 2, got[0].MentionCount)
	assert.InDelta(t, 0.5, got[0].AverageSentiment, 1e-9)
	assert.Equal(t, 1, got[0].Rank)
	assert.Equal(t, Positive, got[0].Label)
}

func TestRankOrderAndTies(t *testing.T) {
	r := NewIssueRanker(SignedScale, 2)
	got := r.Rank([]models.NewsRecord{
		keywordRecord("금리, 물가", models.FloatPtr(-0.6)),
		keywordRecord("수출|금리", models.FloatPtr(0.4)),
		keywordRecord("물가 수출", nil),
		keywordRecord("", models.FloatPtr(1)),
		keywordRecord("a, 금리", models.FloatPtr(-0.1)),
	}, 10)

	require.Len(t, got, 3)
	assert.Equal(t, "금리", got[0].Token)
	assert.Equal(t, 3, got[0].MentionCount)
	assert.InDelta(t, -0.1, got[0].AverageSentiment, 1e-9)
	assert.Equal(t, Negative, got[0].Label)

	// 물가 and 수출 both have two mentions; 물가 was seen first.
	assert.Equal(t, "물가", got[1].Token)
	assert.Equal(t, "수출", got[2].Token)
	assert.InDelta(t, -0.3, got[1].AverageSentiment, 1e-9, "missing score counts as midpoint 0")
	assert.InDelta(t, 0.2, got[2].AverageSentiment, 1e-9)
	assert.Equal(t, []int{1, 2, 3}, []int{got[0].Rank, got[1].Rank, got[2].Rank})
}

func TestRankTruncates(t *testing.T) {
	r := NewIssueRanker(SignedScale, 1)
	got := r.Rank([]models.NewsRecord{
		keywordRecord("a b c d e f g h i j k l", models.FloatPtr(0.1)),
	}, 0)
	assert.Len(t, got, DefaultTopIssues)

	got = r.Rank([]models.NewsRecord{keywordRecord("a b c", nil)}, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[1].Token)
	assert.Equal(t, 2, got[1].Rank)
}

func TestRankEmpty(t *testing.T) {
	r := NewIssueRanker(SignedScale, 2)
	assert.Empty(t, r.Rank(nil, 10))
	assert.Empty(t, r.Rank([]models.NewsRecord{record("서울", models.FloatPtr(1))}, 10))
}
