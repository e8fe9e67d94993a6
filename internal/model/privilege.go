package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "transfer:update"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

const (
	PrivUserView = "user:view"

	PrivRawMaterialView   = "raw_material:view"
	PrivRawMaterialCreate = "raw_material:create"
	PrivRawMaterialUpdate = "raw_material:update"

	PrivTransferView   = "transfer:view"
	PrivTransferCreate = "transfer:create"
	PrivTransferUpdate = "transfer:update"
	PrivTransferDelete = "transfer:delete"

	PrivVendorView   = "vendor:view"
	PrivVendorCreate = "vendor:create"

	PrivCreditNoteView   = "credit_note:view"
	PrivCreditNoteCreate = "credit_note:create"
	PrivCreditNoteUpdate = "credit_note:update"
	PrivCreditNoteDelete = "credit_note:delete"

	PrivDashboardView = "dashboard:view"
)

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	{Code: PrivUserView, Name: "View User"},
	// Central stock
	{Code: PrivRawMaterialView, Name: "View Raw Material"},
	{Code: PrivRawMaterialCreate, Name: "Create Raw Material"},
	{Code: PrivRawMaterialUpdate, Name: "Update Raw Material"},
	// Transfers
	{Code: PrivTransferView, Name: "View Transfer"},
	{Code: PrivTransferCreate, Name: "Issue Transfer"},
	{Code: PrivTransferUpdate, Name: "Reconcile Transfer"},
	{Code: PrivTransferDelete, Name: "Delete Transfer"},
	// Vendors and credit notes
	{Code: PrivVendorView, Name: "View Vendor"},
	{Code: PrivVendorCreate, Name: "Create Vendor"},
	{Code: PrivCreditNoteView, Name: "View Credit Note"},
	{Code: PrivCreditNoteCreate, Name: "Create Credit Note"},
	{Code: PrivCreditNoteUpdate, Name: "Update Credit Note"},
	{Code: PrivCreditNoteDelete, Name: "Delete Credit Note"},
	// Dashboard
	{Code: PrivDashboardView, Name: "View Dashboard"},
}

// IsDeletePrivilege marks privileges withheld from the ADMIN role.
func IsDeletePrivilege(code string) bool {
	return code == PrivTransferDelete || code == PrivCreditNoteDelete
}
