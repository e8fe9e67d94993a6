package service

import (
	"context"

	"go-handicraft-ops/internal/model"
	"go-handicraft-ops/internal/repository"
	"go-handicraft-ops/pkg/apperror"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type DashboardStats struct {
	RawMaterialCount    int64            `json:"rawMaterialCount"`
	LowStockCount       int64            `json:"lowStockCount"`
	LowStockThreshold   int              `json:"lowStockThreshold"`
	TransfersByStatus   map[string]int64 `json:"transfersByStatus"`
	OpenCreditNoteTotal decimal.Decimal  `json:"openCreditNoteTotal"`
}

type DashboardService interface {
	GetStats(ctx context.Context) (*DashboardStats, error)
}

type dashboardService struct {
	repo              repository.DashboardRepository
	lowStockThreshold int
}

func NewDashboardService(repo repository.DashboardRepository, lowStockThreshold int) DashboardService {
	return &dashboardService{repo: repo, lowStockThreshold: lowStockThreshold}
}

func (s *dashboardService) GetStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{
		LowStockThreshold: s.lowStockThreshold,
		TransfersByStatus: make(map[string]int64),
	}
	// every known status is reported, zero when absent
	stats.TransfersByStatus[string(model.TransferSent)] = 0
	for _, st := range model.UpdatableTransferStatuses {
		stats.TransfersByStatus[string(st)] = 0
	}

	var byStatus []repository.StatusCount
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats.RawMaterialCount, err = s.repo.CountRawMaterials(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.LowStockCount, err = s.repo.CountLowStock(gctx, s.lowStockThreshold)
		return err
	})
	g.Go(func() error {
		var err error
		byStatus, err = s.repo.CountTransfersByStatus(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stats.OpenCreditNoteTotal, err = s.repo.SumOpenCreditNotes(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperror.Internal(err, "failed to load dashboard stats")
	}

	for _, row := range byStatus {
		stats.TransfersByStatus[row.Status] = row.Count
	}
	return stats, nil
}
