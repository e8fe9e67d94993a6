package handler

import (
	"go-handicraft-ops/internal/middleware"
	"go-handicraft-ops/internal/model"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Auth        *AuthHandler
	Transfer    *TransferHandler
	CreditNote  *CreditNoteHandler
	RawMaterial *RawMaterialHandler
	Vendor      *VendorHandler
	User        *UserHandler
	Dashboard   *DashboardHandler
}

// RegisterRoutes mounts the /api/v1 surface on api. requireAuth guards every
// route except login; idempotency wraps the transfer and credit-note writes.
func RegisterRoutes(api fiber.Router, requireAuth, idempotency fiber.Handler, h Handlers) {
	auth := api.Group("/auth")
	auth.Post("/login", h.Auth.Login)
	auth.Post("/heartbeat", requireAuth, h.Auth.Heartbeat)

	protected := api.Group("", requireAuth)
	priv := middleware.RequirePrivilege

	protected.Get("/dashboard/stats", priv(model.PrivDashboardView), h.Dashboard.GetDashboardStats)

	protected.Get("/raw-materials", priv(model.PrivRawMaterialView), h.RawMaterial.GetRawMaterials)
	protected.Get("/raw-materials/:id", priv(model.PrivRawMaterialView), h.RawMaterial.GetRawMaterial)
	protected.Post("/raw-materials", priv(model.PrivRawMaterialCreate), h.RawMaterial.CreateRawMaterial)
	protected.Put("/raw-materials/:id", priv(model.PrivRawMaterialUpdate), h.RawMaterial.UpdateRawMaterial)
	protected.Get("/user-inventories", priv(model.PrivRawMaterialView), h.RawMaterial.GetUserInventories)

	protected.Get("/transfers", priv(model.PrivTransferView), h.Transfer.GetTransfers)
	protected.Get("/transfers/:id", priv(model.PrivTransferView), h.Transfer.GetTransfer)
	protected.Post("/transfers", priv(model.PrivTransferCreate), idempotency, h.Transfer.CreateTransfer)
	protected.Put("/transfers/:id", priv(model.PrivTransferUpdate), idempotency, h.Transfer.UpdateTransfer)
	protected.Delete("/transfers/:id", priv(model.PrivTransferDelete), idempotency, h.Transfer.DeleteTransfer)

	protected.Get("/vendors", priv(model.PrivVendorView), h.Vendor.GetVendors)
	protected.Post("/vendors", priv(model.PrivVendorCreate), h.Vendor.CreateVendor)

	protected.Get("/vendor-credit-notes", priv(model.PrivCreditNoteView), h.CreditNote.GetCreditNotes)
	protected.Get("/vendor-credit-notes/:id", priv(model.PrivCreditNoteView), h.CreditNote.GetCreditNote)
	protected.Post("/vendor-credit-notes", priv(model.PrivCreditNoteCreate), idempotency, h.CreditNote.CreateCreditNote)
	protected.Put("/vendor-credit-notes", priv(model.PrivCreditNoteUpdate), idempotency, h.CreditNote.UpdateCreditNote)
	protected.Delete("/vendor-credit-notes", priv(model.PrivCreditNoteDelete), idempotency, h.CreditNote.DeleteCreditNote)

	protected.Get("/users", priv(model.PrivUserView), h.User.GetUsers)
	protected.Get("/roles", priv(model.PrivUserView), h.User.GetRoles)
}
