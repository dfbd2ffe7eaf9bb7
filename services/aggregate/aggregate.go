// Package aggregate holds the pure arithmetic behind course statistics:
// completion percentages, rating rollups, revenue and instructor summaries.
// Nothing here touches the database.
package aggregate

import "math"

// RoundTo rounds x to the given number of decimal places, half away from zero.
func RoundTo(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

// ProgressPercent is the integer completion percentage of a course.
// A course with no lessons is 0% complete.
func ProgressPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	if completed > total {
		completed = total
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// RatingSummary is the rollup of a course's reviews.
type RatingSummary struct {
	Average float64 `json:"averageRating"`
	Count   int     `json:"totalReviews"`
}

// SummarizeRatings averages ratings to one decimal place.
// No ratings yields a zero summary.
func SummarizeRatings(ratings []int) RatingSummary {
	if len(ratings) == 0 {
		return RatingSummary{}
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return RatingSummary{
		Average: RoundTo(float64(sum)/float64(len(ratings)), 1),
		Count:   len(ratings),
	}
}

// RatingDistribution counts ratings per star. Keys 1 through 5 are always present.
func RatingDistribution(ratings []int) map[int]int {
	dist := map[int]int{5: 0, 4: 0, 3: 0, 2: 0, 1: 0}
	for _, r := range ratings {
		if _, ok := dist[r]; ok {
			dist[r]++
		}
	}
	return dist
}

// Revenue is price × enrollments rounded to cents.
func Revenue(price float64, enrolled int) float64 {
	return RoundTo(price*float64(enrolled), 2)
}

// CompletionRate is the percentage of students who completed every lesson,
// to one decimal place. completedCounts holds one entry per enrolled student.
func CompletionRate(completedCounts []int, totalLessons int) float64 {
	if len(completedCounts) == 0 || totalLessons <= 0 {
		return 0
	}
	finished := 0
	for _, n := range completedCounts {
		if n >= totalLessons {
			finished++
		}
	}
	return RoundTo(float64(finished)/float64(len(completedCounts))*100, 1)
}

// AverageProgress is the mean per-student progress percentage, one decimal place.
func AverageProgress(completedCounts []int, totalLessons int) float64 {
	if len(completedCounts) == 0 {
		return 0
	}
	sum := 0
	for _, n := range completedCounts {
		sum += ProgressPercent(n, totalLessons)
	}
	return RoundTo(float64(sum)/float64(len(completedCounts)), 1)
}

// WeightedAverageRating combines per-course rollups weighted by review count.
func WeightedAverageRating(summaries []RatingSummary) float64 {
	weighted := 0.0
	reviews := 0
	for _, s := range summaries {
		weighted += s.Average * float64(s.Count)
		reviews += s.Count
	}
	if reviews == 0 {
		return 0
	}
	return RoundTo(weighted/float64(reviews), 1)
}

// LessonCompletionRate is the share of enrolled students who completed a lesson.
func LessonCompletionRate(completed, enrolled int) float64 {
	if enrolled <= 0 {
		return 0
	}
	return RoundTo(float64(completed)/float64(enrolled)*100, 1)
}
