package holidays

import (
	"context"
	"fmt"
	"time"

	"github.com/md-rashed-zaman/workdays/libs/db"
	"github.com/md-rashed-zaman/workdays/services/workdays-service/internal/businesstime"
)

// PostgresSource reads holidays from the holidays table (see migrations/).
type PostgresSource struct {
	pool *db.Pool
}

func NewPostgresSource(pool *db.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

func (s *PostgresSource) YearHolidays(ctx context.Context, year int) ([]businesstime.Date, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	rows, err := s.pool.Query(ctx, `
		SELECT day
		FROM holidays
		WHERE day >= $1 AND day < $2
		ORDER BY day
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: query holidays: %v", ErrSourceUnavailable, err)
	}
	defer rows.Close()

	var out []businesstime.Date
	for rows.Next() {
		var day time.Time
		if err := rows.Scan(&day); err != nil {
			return nil, fmt.Errorf("%w: scan holiday: %v", ErrSourceUnavailable, err)
		}
		out = append(out, businesstime.DateOf(day))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return out, nil
}
