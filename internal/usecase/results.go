package usecase

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/linegames-backend/internal/entity"
)

type ResultsUseCase interface {
	History(ctx context.Context, playerID string, limit int) ([]*entity.Result, error)
}

type resultHistoryRepo interface {
	ListByPlayer(ctx context.Context, playerID string, limit int) ([]*entity.Result, error)
}

type resultsUseCase struct {
	repo resultHistoryRepo
}

const defaultHistoryLimit = 20

func NewResultsUseCase(repo resultHistoryRepo) ResultsUseCase {
	return &resultsUseCase{
		repo: repo,
	}
}

func (that *resultsUseCase) History(ctx context.Context, playerID string, limit int) ([]*entity.Result, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	results, err := that.repo.ListByPlayer(ctx, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	return results, nil
}
