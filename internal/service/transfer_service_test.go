package service

import (
	"context"
	"testing"

	"go-handicraft-ops/internal/model"
	"go-handicraft-ops/internal/repository"
	"go-handicraft-ops/pkg/apperror"
	"go-handicraft-ops/pkg/metrics"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTransferDecrementsStock(t *testing.T) {
	f := newTransferFixture(t)

	transfer := f.issue(t, 10)

	assert.Equal(t, model.TransferSent, transfer.Status)
	assert.Equal(t, 10, transfer.QuantityIssued)
	assert.Equal(t, 0, transfer.QuantityApproved)
	assert.Equal(t, 0, transfer.QuantityRejected)
	assert.Equal(t, 1, transfer.Version)
	assert.Empty(t, transfer.RejectionImages)
	require.NotNil(t, transfer.User)
	assert.Equal(t, f.user.Email, transfer.User.Email)
	require.NotNil(t, transfer.RawMaterial)
	assert.Equal(t, "Rattan", transfer.RawMaterial.Name)

	assert.Equal(t, 90, materialQty(t, f.db, f.material.ID))
	assert.Equal(t, []string{"transfer_created"}, f.events.actions())
}

func TestCreateTransferRejectsInsufficientStock(t *testing.T) {
	f := newTransferFixture(t)

	_, err := f.svc.Create(context.Background(), CreateTransferRequest{
		UserID:         f.user.ID,
		RawMaterialID:  f.material.ID,
		QuantityIssued: 101,
	}, f.actor)

	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
	assert.Contains(t, err.Error(), "only 100")
	assert.Equal(t, 100, materialQty(t, f.db, f.material.ID))

	var count int64
	require.NoError(t, f.db.Model(&model.RawMaterialTransfer{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateTransferValidation(t *testing.T) {
	f := newTransferFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateTransferRequest{UserID: f.user.ID, RawMaterialID: f.material.ID}, f.actor)
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))

	_, err = f.svc.Create(ctx, CreateTransferRequest{UserID: uuid.New(), RawMaterialID: f.material.ID, QuantityIssued: 1}, f.actor)
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))

	_, err = f.svc.Create(ctx, CreateTransferRequest{UserID: f.user.ID, RawMaterialID: uuid.New(), QuantityIssued: 1}, f.actor)
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))
}

func TestUsedCreditsUserInventory(t *testing.T) {
	f := newTransferFixture(t)
	transfer := f.issue(t, 5)

	updated := f.update(t, transfer.ID, UpdateTransferRequest{Status: "USED"})

	assert.Equal(t, model.TransferUsed, updated.Status)
	assert.Equal(t, 5, updated.QuantityApproved)
	assert.Equal(t, 0, updated.QuantityRejected)
	assert.Equal(t, updated.QuantityIssued, updated.QuantityApproved+updated.QuantityRejected)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, 5, inventoryQty(t, f.db, f.user.ID, f.material.ID))
	assert.Equal(t, 95, materialQty(t, f.db, f.material.ID))
}

func TestUsedAccumulatesAcrossTransfers(t *testing.T) {
	f := newTransferFixture(t)
	first := f.issue(t, 5)
	second := f.issue(t, 3)

	f.update(t, first.ID, UpdateTransferRequest{Status: "USED"})
	f.update(t, second.ID, UpdateTransferRequest{Status: "USED"})

	assert.Equal(t, 8, inventoryQty(t, f.db, f.user.ID, f.material.ID))
}

func TestReturnedPartialSplitsQuantities(t *testing.T) {
	f := newTransferFixture(t)
	transfer := f.issue(t, 10)
	stockBefore := materialQty(t, f.db, f.material.ID)

	updated := f.update(t, transfer.ID, UpdateTransferRequest{
		Status:           "RETURNED",
		QuantityReturned: intPtr(4),
		RejectionType:    strPtr("DAMAGED"),
		RejectionImages:  []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"},
	})

	assert.Equal(t, model.TransferReturned, updated.Status)
	assert.Equal(t, 4, updated.QuantityRejected)
	assert.Equal(t, 6, updated.QuantityApproved)
	assert.Equal(t, "DAMAGED", updated.RejectionReason)
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"}, []string(updated.RejectionImages))
	assert.Equal(t, stockBefore+4, materialQty(t, f.db, f.material.ID))
	assert.Equal(t, 6, inventoryQty(t, f.db, f.user.ID, f.material.ID))
}

func TestReturnedDefaultsToFullReturn(t *testing.T) {
	f := newTransferFixture(t)
	transfer := f.issue(t, 7)

	updated := f.update(t, transfer.ID, UpdateTransferRequest{Status: "RETURNED"})

	assert.Equal(t, 7, updated.QuantityRejected)
	assert.Equal(t, 0, updated.QuantityApproved)
	assert.Equal(t, 100, materialQty(t, f.db, f.material.ID))
	assert.Equal(t, -1, inventoryQty(t, f.db, f.user.ID, f.material.ID))
}

func TestReturnedAboveIssuedIsRejected(t *testing.T) {
	f := newTransferFixture(t)
	transfer := f.issue(t, 10)

	_, err := f.svc.UpdateStatus(context.Background(), transfer.ID, UpdateTransferRequest{
		Status:           "RETURNED",
		QuantityReturned: intPtr(11),
	}, f.actor)

	require.Error(t, err)
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
	assert.Contains(t, err.Error(), "max 10")

	stored, err := f.svc.Get(context.Background(), transfer.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TransferSent, stored.Status)
	assert.Equal(t, 1, stored.Version)
	assert.Equal(t, 90, materialQty(t, f.db, f.material.ID))
	assert.Equal(t, -1, inventoryQty(t, f.db, f.user.ID, f.material.ID))
}

func TestRepairCycleRestoresIssuedOnFinish(t *testing.T) {
	f := newTransferFixture(t)
	transfer := f.issue(t, 10)

	f.update(t, transfer.ID, UpdateTransferRequest{Status: "RETURNED", QuantityReturned: intPtr(4)})
	afterReturn := materialQty(t, f.db, f.material.ID)

	repairing := f.update(t, transfer.ID, UpdateTransferRequest{Status: "REPAIRING", Notes: strPtr("sent to workshop")})
	assert.Equal(t, model.TransferRepairing, repairing.Status)
	assert.Equal(t, "sent to workshop", repairing.Notes)
	assert.Equal(t, afterReturn, materialQty(t, f.db, f.material.ID))

	finished := f.update(t, transfer.ID, UpdateTransferRequest{Status: "FINISHED"})
	assert.Equal(t, model.TransferFinished, finished.Status)
	assert.Equal(t, "Repair finished", finished.Notes)
	assert.Equal(t, afterReturn+10, materialQty(t, f.db, f.material.ID))
	assert.Equal(t, 4, finished.Version)
}

func TestUnusedDiscardsWithoutRestoringStock(t *testing.T) {
	f := newTransferFixture(t)
	transfer := f.issue(t, 8)

	updated := f.update(t, transfer.ID, UpdateTransferRequest{
		Status:          "UNUSED",
		RejectionReason: strPtr("moisture damage"),
	})

	assert.Equal(t, model.TransferUnused, updated.Status)
	assert.Equal(t, 8, updated.QuantityRejected)
	assert.Equal(t, 0, updated.QuantityApproved)
	assert.Equal(t, "moisture damage", updated.RejectionReason)
	assert.Equal(t, 92, materialQty(t, f.db, f.material.ID))
	assert.Equal(t, -1, inventoryQty(t, f.db, f.user.ID, f.material.ID))
}

func TestCancelledZeroesCounters(t *testing.T) {
	f := newTransferFixture(t)
	transfer := f.issue(t, 3)

	updated := f.update(t, transfer.ID, UpdateTransferRequest{Status: "CANCELLED"})

	assert.Equal(t, model.TransferCancelled, updated.Status)
	assert.Equal(t, 0, updated.QuantityApproved)
	assert.Equal(t, 0, updated.QuantityRejected)
	assert.Empty(t, updated.RejectionImages)
	assert.Equal(t, 97, materialQty(t, f.db, f.material.ID))
}

func TestDisallowedTransitionsAreRejected(t *testing.T) {
	cases := []struct {
		name  string
		setup []string
		to    string
	}{
		{name: "sent to finished", to: "FINISHED"},
		{name: "sent to repairing", to: "REPAIRING"},
		{name: "used to returned", setup: []string{"USED"}, to: "RETURNED"},
		{name: "used to used", setup: []string{"USED"}, to: "USED"},
		{name: "returned to finished", setup: []string{"RETURNED"}, to: "FINISHED"},
		{name: "finished to finished", setup: []string{"RETURNED", "REPAIRING", "FINISHED"}, to: "FINISHED"},
		{name: "cancelled to used", setup: []string{"CANCELLED"}, to: "USED"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newTransferFixture(t)
			transfer := f.issue(t, 4)
			for _, step := range tc.setup {
				f.update(t, transfer.ID, UpdateTransferRequest{Status: step})
			}
			stockBefore := materialQty(t, f.db, f.material.ID)

			_, err := f.svc.UpdateStatus(context.Background(), transfer.ID, UpdateTransferRequest{Status: tc.to}, f.actor)

			require.Error(t, err)
			assert.Equal(t, apperror.CodeConflict, apperror.CodeOf(err))
			assert.Contains(t, err.Error(), "to "+tc.to)
			assert.Equal(t, stockBefore, materialQty(t, f.db, f.material.ID))
		})
	}
}

func TestInvalidTargetStatusListsAllowedSet(t *testing.T) {
	f := newTransferFixture(t)
	transfer := f.issue(t, 2)

	for _, status := range []string{"SENT", "LOST", ""} {
		_, err := f.svc.UpdateStatus(context.Background(), transfer.ID, UpdateTransferRequest{Status: status}, f.actor)
		require.Error(t, err, status)
		assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
		assert.Contains(t, err.Error(), "USED, RETURNED, CANCELLED, REPAIRING, FINISHED, UNUSED")
	}
}

func TestUpdateMissingTransfer(t *testing.T) {
	f := newTransferFixture(t)

	_, err := f.svc.UpdateStatus(context.Background(), uuid.New(), UpdateTransferRequest{Status: "USED"}, f.actor)

	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))
}

func TestStaleVersionIsRejected(t *testing.T) {
	f := newTransferFixture(t)
	transfer := f.issue(t, 5)
	f.update(t, transfer.ID, UpdateTransferRequest{Status: "RETURNED", Version: intPtr(1)})

	_, err := f.svc.UpdateStatus(context.Background(), transfer.ID, UpdateTransferRequest{
		Status:  "REPAIRING",
		Version: intPtr(1),
	}, f.actor)

	require.Error(t, err)
	assert.Equal(t, apperror.CodeStaleWrite, apperror.CodeOf(err))
	assert.Equal(t, 409, apperror.MetadataFor(apperror.CodeStaleWrite).HTTPStatus)

	stored, err := f.svc.Get(context.Background(), transfer.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TransferReturned, stored.Status)
	assert.Equal(t, 2, stored.Version)
}

func TestDeleteUsedTransferRemovesInventoryRow(t *testing.T) {
	f := newTransferFixture(t)
	transfer := f.issue(t, 5)
	f.update(t, transfer.ID, UpdateTransferRequest{Status: "USED"})
	require.Equal(t, 95, materialQty(t, f.db, f.material.ID))

	require.NoError(t, f.svc.Delete(context.Background(), transfer.ID, f.actor))

	assert.Equal(t, 100, materialQty(t, f.db, f.material.ID))
	assert.Equal(t, -1, inventoryQty(t, f.db, f.user.ID, f.material.ID))
	_, err := f.svc.Get(context.Background(), transfer.ID)
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))
}

func TestDeleteUsedTransferDecrementsLargerHolding(t *testing.T) {
	f := newTransferFixture(t)
	first := f.issue(t, 5)
	second := f.issue(t, 3)
	f.update(t, first.ID, UpdateTransferRequest{Status: "USED"})
	f.update(t, second.ID, UpdateTransferRequest{Status: "USED"})
	stockBefore := materialQty(t, f.db, f.material.ID)

	require.NoError(t, f.svc.Delete(context.Background(), first.ID, f.actor))

	assert.Equal(t, 3, inventoryQty(t, f.db, f.user.ID, f.material.ID))
	assert.Equal(t, stockBefore+5, materialQty(t, f.db, f.material.ID))
}

func TestDeleteOtherStatusesOnlyRemovesRow(t *testing.T) {
	for _, steps := range [][]string{
		nil,
		{"UNUSED"},
		{"CANCELLED"},
		{"RETURNED"},
		{"RETURNED", "REPAIRING", "FINISHED"},
	} {
		f := newTransferFixture(t)
		transfer := f.issue(t, 6)
		for _, step := range steps {
			f.update(t, transfer.ID, UpdateTransferRequest{Status: step})
		}
		stockBefore := materialQty(t, f.db, f.material.ID)
		invBefore := inventoryQty(t, f.db, f.user.ID, f.material.ID)

		require.NoError(t, f.svc.Delete(context.Background(), transfer.ID, f.actor))

		assert.Equal(t, stockBefore, materialQty(t, f.db, f.material.ID), "%v", steps)
		assert.Equal(t, invBefore, inventoryQty(t, f.db, f.user.ID, f.material.ID), "%v", steps)
	}
}

func TestDeleteSentTransferKeepsIssuedUnitsOut(t *testing.T) {
	f := newTransferFixture(t)
	transfer := f.issue(t, 7)

	require.NoError(t, f.svc.Delete(context.Background(), transfer.ID, f.actor))

	assert.Equal(t, 93, materialQty(t, f.db, f.material.ID))
}

func TestFullReturnThenRepairRestoresTwice(t *testing.T) {
	f := newTransferFixture(t)
	transfer := f.issue(t, 10)

	f.update(t, transfer.ID, UpdateTransferRequest{Status: "RETURNED"})
	assert.Equal(t, 100, materialQty(t, f.db, f.material.ID))
	f.update(t, transfer.ID, UpdateTransferRequest{Status: "REPAIRING"})
	f.update(t, transfer.ID, UpdateTransferRequest{Status: "FINISHED"})

	assert.Equal(t, 110, materialQty(t, f.db, f.material.ID))
}

func TestDeleteMissingTransfer(t *testing.T) {
	f := newTransferFixture(t)

	err := f.svc.Delete(context.Background(), uuid.New(), f.actor)

	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))
}

func TestListTransfersFilters(t *testing.T) {
	f := newTransferFixture(t)
	other := seedUser(t, f.db, "other@example.com")
	used := f.issue(t, 2)
	f.issue(t, 3)
	_, err := f.svc.Create(context.Background(), CreateTransferRequest{
		UserID: other.ID, RawMaterialID: f.material.ID, QuantityIssued: 1,
	}, f.actor)
	require.NoError(t, err)
	f.update(t, used.ID, UpdateTransferRequest{Status: "USED"})
	ctx := context.Background()

	all, err := f.svc.List(ctx, TransferListParams{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byStatus, err := f.svc.List(ctx, TransferListParams{Status: "USED"})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, used.ID, byStatus[0].ID)

	byUser, err := f.svc.List(ctx, TransferListParams{UserID: &other.ID})
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, other.ID, byUser[0].UserID)

	bySearch, err := f.svc.List(ctx, TransferListParams{Search: "rattan"})
	require.NoError(t, err)
	assert.Len(t, bySearch, 3)

	_, err = f.svc.List(ctx, TransferListParams{Status: "LOST"})
	assert.Equal(t, apperror.CodeValidation, apperror.CodeOf(err))
}

func TestTransitionMetricsAreRecorded(t *testing.T) {
	db := newTestDB(t)
	reg := prometheus.NewRegistry()
	svc := NewTransferService(
		db,
		repository.NewTransferRepo(db),
		repository.NewRawMaterialRepo(db),
		repository.NewUserInventoryRepo(db),
		repository.NewUserRepo(db),
		nil,
		metrics.NewWorkflow(reg),
		nil,
	)
	user := seedUser(t, db, "metrics@example.com")
	material := seedMaterial(t, db, "Bamboo", 20)
	ctx := context.Background()

	transfer, err := svc.Create(ctx, CreateTransferRequest{UserID: user.ID, RawMaterialID: material.ID, QuantityIssued: 4}, Actor{})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, transfer.ID, UpdateTransferRequest{Status: "UNUSED"}, Actor{})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, transfer.ID, UpdateTransferRequest{Status: "USED"}, Actor{})
	require.Error(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, fam := range families {
		for _, m := range fam.GetMetric() {
			if m.GetCounter() != nil {
				values[fam.GetName()] += m.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, float64(1), values["transfer_transitions_total"])
	assert.Equal(t, float64(1), values["transfer_transitions_rejected_total"])
	assert.Equal(t, float64(4), values["raw_material_units_discarded_total"])
}
