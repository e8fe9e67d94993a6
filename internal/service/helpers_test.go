package service

import (
	"context"
	"sync"
	"testing"

	"go-handicraft-ops/internal/model"
	"go-handicraft-ops/internal/repository"
	"go-handicraft-ops/internal/ws"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:service_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection keeps the in-memory database alive and serialises writers
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.Privilege{},
		&model.Role{},
		&model.User{},
		&model.RawMaterial{},
		&model.UserInventory{},
		&model.RawMaterialTransfer{},
		&model.Vendor{},
		&model.VendorCreditNote{},
	))
	return db
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []ws.Event
}

func (p *recordingPublisher) Publish(ev ws.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Action
	}
	return out
}

func seedUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, FullName: "Artisan " + email, IsActive: true}
	require.NoError(t, user.SetPassword("secret123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedMaterial(t *testing.T, db *gorm.DB, name string, qty int) *model.RawMaterial {
	t.Helper()
	material := &model.RawMaterial{Name: name, Quantity: qty, Unit: "pcs"}
	require.NoError(t, db.Create(material).Error)
	return material
}

func materialQty(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var material model.RawMaterial
	require.NoError(t, db.First(&material, "id = ?", id).Error)
	return material.Quantity
}

// inventoryQty returns the user's holding, or -1 when no row exists.
func inventoryQty(t *testing.T, db *gorm.DB, userID, materialID uuid.UUID) int {
	t.Helper()
	var rows []model.UserInventory
	require.NoError(t, db.Where("user_id = ? AND raw_material_id = ?", userID, materialID).Find(&rows).Error)
	if len(rows) == 0 {
		return -1
	}
	require.Len(t, rows, 1)
	return rows[0].Quantity
}

type transferFixture struct {
	db       *gorm.DB
	svc      TransferService
	events   *recordingPublisher
	user     *model.User
	material *model.RawMaterial
	actor    Actor
}

func newTransferFixture(t *testing.T) *transferFixture {
	t.Helper()
	db := newTestDB(t)
	events := &recordingPublisher{}
	svc := NewTransferService(
		db,
		repository.NewTransferRepo(db),
		repository.NewRawMaterialRepo(db),
		repository.NewUserInventoryRepo(db),
		repository.NewUserRepo(db),
		events,
		nil,
		nil,
	)
	admin := seedUser(t, db, "admin@example.com")
	return &transferFixture{
		db:       db,
		svc:      svc,
		events:   events,
		user:     seedUser(t, db, "artisan@example.com"),
		material: seedMaterial(t, db, "Rattan", 100),
		actor:    Actor{ID: admin.ID, Name: "Admin", Email: admin.Email},
	}
}

func (f *transferFixture) issue(t *testing.T, qty int) *model.RawMaterialTransfer {
	t.Helper()
	transfer, err := f.svc.Create(context.Background(), CreateTransferRequest{
		UserID:         f.user.ID,
		RawMaterialID:  f.material.ID,
		QuantityIssued: qty,
	}, f.actor)
	require.NoError(t, err)
	return transfer
}

func (f *transferFixture) update(t *testing.T, id uuid.UUID, req UpdateTransferRequest) *model.RawMaterialTransfer {
	t.Helper()
	transfer, err := f.svc.UpdateStatus(context.Background(), id, req, f.actor)
	require.NoError(t, err)
	return transfer
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }
