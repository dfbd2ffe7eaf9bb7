package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		total     int
		want      int
	}{
		{"no lessons", 0, 0, 0},
		{"none done", 0, 4, 0},
		{"half", 2, 4, 50},
		{"one of three rounds down", 1, 3, 33},
		{"two of three rounds up", 2, 3, 67},
		{"all", 4, 4, 100},
		{"stale rows never exceed 100", 5, 4, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProgressPercent(tt.completed, tt.total))
		})
	}
}

func TestProgressPercentIsBounded(t *testing.T) {
	for total := 0; total <= 20; total++ {
		prev := 0
		for completed := 0; completed <= total; completed++ {
			p := ProgressPercent(completed, total)
			assert.GreaterOrEqual(t, p, 0)
			assert.LessOrEqual(t, p, 100)
			assert.GreaterOrEqual(t, p, prev, "monotone in completed count")
			prev = p
		}
	}
}

func TestSummarizeRatings(t *testing.T) {
	assert.Equal(t, RatingSummary{}, SummarizeRatings(nil))
	assert.Equal(t, RatingSummary{Average: 5, Count: 1}, SummarizeRatings([]int{5}))
	assert.Equal(t, RatingSummary{Average: 4.5, Count: 2}, SummarizeRatings([]int{5, 4}))
	assert.Equal(t, RatingSummary{Average: 4.3, Count: 3}, SummarizeRatings([]int{5, 4, 4}))
	assert.Equal(t, RatingSummary{Average: 3.7, Count: 3}, SummarizeRatings([]int{5, 5, 1}))
}

func TestRatingDistribution(t *testing.T) {
	dist := RatingDistribution([]int{5, 5, 3, 1})
	assert.Equal(t, map[int]int{5: 2, 4: 0, 3: 1, 2: 0, 1: 1}, dist)
	assert.Len(t, RatingDistribution(nil), 5)
}

func TestRevenue(t *testing.T) {
	assert.Equal(t, 59.97, Revenue(19.99, 3))
	assert.Equal(t, 0.0, Revenue(0, 100))
	assert.Equal(t, 0.0, Revenue(49.5, 0))
}

func TestCompletionRate(t *testing.T) {
	assert.Equal(t, 0.0, CompletionRate(nil, 4))
	assert.Equal(t, 0.0, CompletionRate([]int{0, 0}, 0), "courses without lessons are never completed")
	assert.Equal(t, 50.0, CompletionRate([]int{4, 2}, 4))
	assert.Equal(t, 33.3, CompletionRate([]int{4, 0, 1}, 4))
	assert.Equal(t, 100.0, CompletionRate([]int{4, 4}, 4))
}

func TestAverageProgress(t *testing.T) {
	assert.Equal(t, 0.0, AverageProgress(nil, 4))
	assert.Equal(t, 75.0, AverageProgress([]int{4, 2}, 4))
	assert.Equal(t, 50.0, AverageProgress([]int{1, 2}, 3)) // 33% and 67%
	assert.Equal(t, 0.0, AverageProgress([]int{0, 0}, 0))
}

func TestWeightedAverageRating(t *testing.T) {
	assert.Equal(t, 0.0, WeightedAverageRating(nil))
	assert.Equal(t, 0.0, WeightedAverageRating([]RatingSummary{{}, {}}))

	got := WeightedAverageRating([]RatingSummary{
		{Average: 5.0, Count: 1},
		{Average: 3.0, Count: 3},
		{Average: 0, Count: 0},
	})
	assert.Equal(t, 3.5, got)
}

func TestLessonCompletionRate(t *testing.T) {
	assert.Equal(t, 0.0, LessonCompletionRate(3, 0))
	assert.Equal(t, 66.7, LessonCompletionRate(2, 3))
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 4.3, RoundTo(4.333, 1))
	assert.Equal(t, 12.35, RoundTo(12.3456, 2))
	assert.Equal(t, 3.0, RoundTo(2.96, 1))
}
