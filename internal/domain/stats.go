package domain

import "sort"

// RatingStats is the global summary over a set of ratings. All fields are
// zero when the set is empty; averages are never NaN.
type RatingStats struct {
	Average float64 `db:"average"`
	Min     int     `db:"min_score"`
	Max     int     `db:"max_score"`
	Count   int64   `db:"total"`
}

// UserStats summarizes one user's footprint across the relationship graph.
type UserStats struct {
	UserID          string  `db:"user_id"`
	Projects        int64   `db:"total_projects"`
	Tasks           int64   `db:"total_tasks"`
	Solutions       int64   `db:"total_solutions"`
	RatingsGiven    int64   `db:"total_ratings"`
	AverageReceived float64 `db:"average_received"`
}

// RankingEntry is one row of the solution ranking: a solution, its author
// and its rating aggregate.
type RankingEntry struct {
	SolutionID  string  `db:"solution_id"`
	Title       string  `db:"title"`
	AuthorName  string  `db:"author_name"`
	RatingCount int64   `db:"rating_count"`
	Average     float64 `db:"average"`
}

// AssigneePerformance summarizes one responsible user's task throughput.
type AssigneePerformance struct {
	UserID            string  `db:"user_id"`
	Name              string  `db:"name"`
	TotalTasks        int64   `db:"total_tasks"`
	ConcludedTasks    int64   `db:"concluded_tasks"`
	AvgDaysToConclude float64 `db:"avg_days_to_conclude"`
}

// AverageScores folds ratings into their mean score, 0.0 for an empty set.
func AverageScores(ratings []Rating) float64 {
	if len(ratings) == 0 {
		return 0.0
	}

	sum := 0
	for _, r := range ratings {
		sum += r.Score
	}

	return float64(sum) / float64(len(ratings))
}

// ProgressOf folds tasks into the percentage concluded, 0.0 for no tasks.
func ProgressOf(tasks []Task) float64 {
	if len(tasks) == 0 {
		return 0.0
	}

	concluded := 0
	for _, t := range tasks {
		if t.Concluded() {
			concluded++
		}
	}

	return float64(concluded) / float64(len(tasks)) * 100
}

// DistributionOf folds ratings into a count per distinct score value.
// Every score in [MinScore, MaxScore] appears in the result, zero included.
func DistributionOf(ratings []Rating) map[int]int64 {
	distribution := make(map[int]int64, MaxScore-MinScore+1)
	for score := MinScore; score <= MaxScore; score++ {
		distribution[score] = 0
	}

	for _, r := range ratings {
		distribution[r.Score]++
	}

	return distribution
}

// OverallOf folds ratings into their global summary. An empty set yields
// the zero RatingStats.
func OverallOf(ratings []Rating) RatingStats {
	if len(ratings) == 0 {
		return RatingStats{}
	}

	stats := RatingStats{
		Min:   ratings[0].Score,
		Max:   ratings[0].Score,
		Count: int64(len(ratings)),
	}

	sum := 0
	for _, r := range ratings {
		sum += r.Score
		if r.Score < stats.Min {
			stats.Min = r.Score
		}
		if r.Score > stats.Max {
			stats.Max = r.Score
		}
	}
	stats.Average = float64(sum) / float64(len(ratings))

	return stats
}

// RankEntries filters entries below minRatings, orders by descending
// average with ties broken by ascending solution identifier, and truncates
// to limit. The identifier tiebreak keeps equal averages deterministic.
func RankEntries(entries []RankingEntry, minRatings int64, limit int) []RankingEntry {
	ranked := make([]RankingEntry, 0, len(entries))
	for _, e := range entries {
		if e.RatingCount >= minRatings {
			ranked = append(ranked, e)
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Average != ranked[j].Average {
			return ranked[i].Average > ranked[j].Average
		}
		return ranked[i].SolutionID < ranked[j].SolutionID
	})

	if limit >= 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return ranked
}
