package service

import (
	"context"

	"orders-api/internal/models"
)

// AdminStore is the persistence surface of the administrative panel.
type AdminStore interface {
	ListAllOrders(ctx context.Context) ([]models.OrderDetail, error)
	GetReportTotals(ctx context.Context) (*models.ReportTotals, error)
	GetReportByDay(ctx context.Context, days int) ([]models.ReportDay, error)
}

// Report is the admin dashboard aggregate.
type Report struct {
	Totals *models.ReportTotals `json:"totals"`
	ByDay  []models.ReportDay   `json:"byDay"`
}

// AdminService serves the order-management and reporting panel.
type AdminService struct {
	store      AdminStore
	reportDays int
}

// NewAdminService creates a new admin service
func NewAdminService(store AdminStore, reportDays int) *AdminService {
	return &AdminService{store: store, reportDays: reportDays}
}

// ListOrders returns every order with items, address, payment and owner
// contact, newest first.
func (s *AdminService) ListOrders(ctx context.Context) ([]models.OrderDetail, error) {
	return s.store.ListAllOrders(ctx)
}

// GetReport aggregates totals plus the recent per-day breakdown.
func (s *AdminService) GetReport(ctx context.Context) (*Report, error) {
	totals, err := s.store.GetReportTotals(ctx)
	if err != nil {
		return nil, err
	}
	byDay, err := s.store.GetReportByDay(ctx, s.reportDays)
	if err != nil {
		return nil, err
	}
	return &Report{Totals: totals, ByDay: byDay}, nil
}
