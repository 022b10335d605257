package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/colabhub/colabhub/internal/config"
	"github.com/colabhub/colabhub/internal/domain"
	"github.com/colabhub/colabhub/internal/repository"
)

// StatsService is the read side of the layer: averages, quality tiers,
// progress, rankings and distributions. Aggregates that fit one SQL query
// run in the store; quality derivation folds in memory over fetched ratings
// and must agree with the store-side averages.
type StatsService struct {
	log      *slog.Logger
	cfg      config.Ranking
	users    repository.UserRepository
	projects repository.ProjectRepository
	ratings  repository.RatingRepository
}

func NewStatsService(
	log *slog.Logger,
	cfg config.Ranking,
	users repository.UserRepository,
	projects repository.ProjectRepository,
	ratings repository.RatingRepository,
) *StatsService {
	return &StatsService{
		log:      log,
		cfg:      cfg,
		users:    users,
		projects: projects,
		ratings:  ratings,
	}
}

// SolutionAverage returns the mean score of the solution's ratings, 0.0 when
// it has none.
func (s *StatsService) SolutionAverage(ctx context.Context, solutionID string) (float64, error) {
	const op = "internal.service.stats.SolutionAverage"

	average, err := s.ratings.AverageForSolution(ctx, solutionID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return average, nil
}

// SolutionQuality derives the solution's quality tier under the named scheme
// by folding its ratings in memory.
func (s *StatsService) SolutionQuality(ctx context.Context, solutionID string, scheme domain.QualityScheme) (domain.QualityTier, error) {
	const op = "internal.service.stats.SolutionQuality"

	ratings, err := s.ratings.ListBySolution(ctx, solutionID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return domain.QualityFor(domain.AverageScores(ratings), scheme), nil
}

// ProjectProgress returns the percentage of the project's tasks concluded.
func (s *StatsService) ProjectProgress(ctx context.Context, projectID string) (float64, error) {
	const op = "internal.service.stats.ProjectProgress"

	progress, err := s.projects.Progress(ctx, projectID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return progress, nil
}

// Ranking returns up to limit solutions having at least the configured
// minimum number of ratings, best average first, ties broken by ascending
// solution id.
func (s *StatsService) Ranking(ctx context.Context, limit int) ([]domain.RankingEntry, error) {
	const op = "internal.service.stats.Ranking"

	entries, err := s.ratings.Ranking(ctx, limit, int64(s.cfg.MinRatings))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return entries, nil
}

// ScoreDistribution counts ratings per score value across all solutions.
// Every score in [MinScore, MaxScore] is present, zero included.
func (s *StatsService) ScoreDistribution(ctx context.Context) (map[int]int64, error) {
	const op = "internal.service.stats.ScoreDistribution"

	distribution, err := s.ratings.ScoreDistribution(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return distribution, nil
}

// Overall returns the global rating summary: mean, min, max and count. All
// zero when no ratings exist.
func (s *StatsService) Overall(ctx context.Context) (*domain.RatingStats, error) {
	const op = "internal.service.stats.Overall"

	stats, err := s.ratings.OverallStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return stats, nil
}

// UserStats summarizes one user's footprint: owned projects, assigned
// tasks, authored solutions, ratings given and the mean rating received.
func (s *StatsService) UserStats(ctx context.Context, userID string) (*domain.UserStats, error) {
	const op = "internal.service.stats.UserStats"

	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stats, err := s.users.Stats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return stats, nil
}
