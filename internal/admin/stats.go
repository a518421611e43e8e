// AngelaMos | 2026
// stats.go

package admin

import (
	"context"
	"fmt"

	"github.com/ayavrik/yamdb-final/internal/core"
)

type ContentStats struct {
	Users      int64 `json:"users"      db:"users"`
	Categories int64 `json:"categories" db:"categories"`
	Genres     int64 `json:"genres"     db:"genres"`
	Titles     int64 `json:"titles"     db:"titles"`
	Reviews    int64 `json:"reviews"    db:"reviews"`
	Comments   int64 `json:"comments"   db:"comments"`
}

type ContentStatsProvider interface {
	ContentStats(ctx context.Context) (*ContentStats, error)
}

type statsRepository struct {
	db core.DBTX
}

func NewStatsRepository(db core.DBTX) ContentStatsProvider {
	return &statsRepository{db: db}
}

func (r *statsRepository) ContentStats(
	ctx context.Context,
) (*ContentStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users)      AS users,
			(SELECT COUNT(*) FROM categories) AS categories,
			(SELECT COUNT(*) FROM genres)     AS genres,
			(SELECT COUNT(*) FROM titles)     AS titles,
			(SELECT COUNT(*) FROM reviews)    AS reviews,
			(SELECT COUNT(*) FROM comments)   AS comments`

	var stats ContentStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("content stats: %w", err)
	}

	return &stats, nil
}
