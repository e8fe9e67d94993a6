package service

import (
	"context"
	"fmt"
	"testing"

	"go-handicraft-ops/internal/model"
	"go-handicraft-ops/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	f := newTransferFixture(t)
	seedMaterial(t, f.db, "Clay", 3)
	used := f.issue(t, 5)
	f.issue(t, 2)
	f.update(t, used.ID, UpdateTransferRequest{Status: "USED"})

	vendor := &model.Vendor{Name: "Bali Weavers"}
	require.NoError(t, f.db.Create(vendor).Error)
	notes := NewCreditNoteService(repository.NewCreditNoteRepo(f.db), repository.NewVendorRepo(f.db), nil, nil, nil)
	ctx := context.Background()
	for i, status := range []string{"DRAFT", "ISSUED", "CANCELLED"} {
		_, err := notes.Create(ctx, CreateCreditNoteRequest{
			VendorID:         vendor.ID,
			CreditNoteNumber: fmt.Sprintf("CN-D%d", i),
			Reason:           "short delivery",
			Amount:           decimal.NewFromInt(100),
			Status:           status,
		}, f.actor)
		require.NoError(t, err)
	}

	svc := NewDashboardService(repository.NewDashboardRepo(f.db), 10)
	stats, err := svc.GetStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.RawMaterialCount)
	assert.Equal(t, int64(1), stats.LowStockCount)
	assert.Equal(t, int64(1), stats.TransfersByStatus["USED"])
	assert.Equal(t, int64(1), stats.TransfersByStatus["SENT"])
	assert.Equal(t, int64(0), stats.TransfersByStatus["FINISHED"])
	assert.True(t, stats.OpenCreditNoteTotal.Equal(decimal.NewFromInt(200)), stats.OpenCreditNoteTotal.String())
}

func TestDashboardStatsOnEmptyDatabase(t *testing.T) {
	db := newTestDB(t)
	stats, err := NewDashboardService(repository.NewDashboardRepo(db), 10).GetStats(context.Background())

	require.NoError(t, err)
	assert.Zero(t, stats.RawMaterialCount)
	assert.True(t, stats.OpenCreditNoteTotal.IsZero())
	assert.Len(t, stats.TransfersByStatus, 7)
}
