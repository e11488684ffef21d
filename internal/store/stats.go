package store

import (
	"context"
	"database/sql"

	"github.com/tudao164/KiemThuPhanMem/types"
)

// StatsRepository computes aggregate counts.
type StatsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) Stats(ctx context.Context) (types.Stats, error) {
	const query = `
		SELECT
			(SELECT COUNT(1) FROM users),
			(SELECT COUNT(1) FROM users WHERE is_active),
			(SELECT COUNT(1) FROM tasks),
			(SELECT COUNT(1) FROM tasks WHERE status = 'completed'),
			(SELECT COUNT(1) FROM tasks WHERE status = 'pending'),
			(SELECT COUNT(1) FROM tasks WHERE status = 'in_progress')`
	var stats types.Stats
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalUsers,
		&stats.ActiveUsers,
		&stats.TotalTasks,
		&stats.CompletedTasks,
		&stats.PendingTasks,
		&stats.InProgressTasks,
	)
	if err != nil {
		return types.Stats{}, err
	}
	return stats, nil
}
