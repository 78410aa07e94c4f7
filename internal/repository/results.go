package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rocketscienceinc/linegames-backend/internal/entity"
)

type ResultRepository interface {
	Save(ctx context.Context, result *entity.Result) error
	ListByPlayer(ctx context.Context, playerID string, limit int) ([]*entity.Result, error)
}

type resultRepository struct {
	conn *sql.DB
}

func NewResultRepository(conn *sql.DB) ResultRepository {
	return &resultRepository{
		conn: conn,
	}
}

func (that *resultRepository) Save(ctx context.Context, result *entity.Result) error {
	query := `INSERT INTO results (game_id, variant, player_id, opponent_id, outcome, score, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := that.conn.ExecContext(ctx, query,
		result.GameID,
		string(result.Variant),
		result.PlayerID,
		result.OpponentID,
		result.Outcome,
		result.Score,
		result.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("can't save result: %w", err)
	}

	return nil
}

// ListByPlayer returns the most recent results first.
func (that *resultRepository) ListByPlayer(ctx context.Context, playerID string, limit int) ([]*entity.Result, error) {
	query := `SELECT game_id, variant, player_id, opponent_id, outcome, score, finished_at
		FROM results WHERE player_id = ? ORDER BY finished_at DESC, id DESC LIMIT ?`

	rows, err := that.conn.QueryContext(ctx, query, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("can't list results: %w", err)
	}
	defer rows.Close()

	var results []*entity.Result
	for rows.Next() {
		var (
			result     entity.Result
			variant    string
			finishedAt string
		)

		err = rows.Scan(&result.GameID, &variant, &result.PlayerID, &result.OpponentID, &result.Outcome, &result.Score, &finishedAt)
		if err != nil {
			return nil, fmt.Errorf("can't scan result: %w", err)
		}

		result.Variant = entity.Variant(variant)
		if result.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt); err != nil {
			return nil, fmt.Errorf("can't parse finished_at: %w", err)
		}

		results = append(results, &result)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't read results: %w", err)
	}

	return results, nil
}
