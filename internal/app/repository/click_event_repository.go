package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/linkhub-app/linkhub/internal/app/model"
)

// ClickEventRepository reads the append-only click-event log. Reads run on
// the pgx pool so analytics scans never contend with GORM's write path.
type ClickEventRepository interface {
	ListSince(ctx context.Context, accountID string, since time.Time) ([]model.ClickEvent, error)
}

type clickEventRepository struct {
	pool *pgxpool.Pool
}

// NewClickEventRepository returns a pgx-backed ClickEventRepository.
func NewClickEventRepository(pool *pgxpool.Pool) ClickEventRepository {
	return &clickEventRepository{pool: pool}
}

func (r *clickEventRepository) ListSince(ctx context.Context, accountID string, since time.Time) ([]model.ClickEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, account_id, link_id, visitor_id, country_code, device_class, clicked_at
		FROM click_events
		WHERE account_id = $1 AND clicked_at >= $2
		ORDER BY clicked_at ASC`,
		accountID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("list click events: %w", err)
	}
	defer rows.Close()

	var events []model.ClickEvent
	for rows.Next() {
		var ev model.ClickEvent
		if err := rows.Scan(
			&ev.ID,
			&ev.AccountID,
			&ev.LinkID,
			&ev.VisitorID,
			&ev.CountryCode,
			&ev.DeviceClass,
			&ev.ClickedAt,
		); err != nil {
			return nil, fmt.Errorf("scan click event: %w", err)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate click events: %w", err)
	}

	return events, nil
}
