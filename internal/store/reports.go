package store

import (
	"context"

	"orders-api/internal/models"
)

// GetReportTotals aggregates the whole order book for the admin report.
func (s *Store) GetReportTotals(ctx context.Context) (*models.ReportTotals, error) {
	var totals models.ReportTotals
	err := s.db.GetContext(ctx, &totals, `
		SELECT COUNT(*)                                                   AS total_orders,
		       COALESCE(SUM(total), 0)                                    AS revenue,
		       COALESCE(SUM(CASE WHEN status = 'delivered' THEN 1 END), 0)      AS delivered,
		       COALESCE(SUM(CASE WHEN status = 'cancelled' THEN 1 END), 0)      AS cancelled,
		       COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 END), 0)        AS pending,
		       COALESCE(SUM(CASE WHEN status = 'in_preparation' THEN 1 END), 0) AS in_preparation
		FROM orders`)
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

// GetReportByDay returns per-day order counts and revenue for the most
// recent days days.
func (s *Store) GetReportByDay(ctx context.Context, days int) ([]models.ReportDay, error) {
	var rows []models.ReportDay
	err := s.db.SelectContext(ctx, &rows, `
		SELECT TO_CHAR(DATE(created_at), 'YYYY-MM-DD') AS day,
		       COUNT(*)                                AS orders,
		       COALESCE(SUM(total), 0)                 AS revenue
		FROM orders
		GROUP BY DATE(created_at)
		ORDER BY day DESC
		LIMIT $1`, days)
	return rows, err
}
