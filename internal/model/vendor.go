package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Vendor struct {
	BaseModel
	Name    string `gorm:"type:varchar(255);not null;index" json:"name"`
	Email   string `gorm:"type:varchar(255)" json:"email,omitempty"`
	Phone   string `gorm:"type:varchar(30)" json:"phone,omitempty"`
	Address string `gorm:"type:text" json:"address,omitempty"`
}

type CreditNoteStatus string

const (
	CreditNoteDraft     CreditNoteStatus = "DRAFT"
	CreditNoteIssued    CreditNoteStatus = "ISSUED"
	CreditNoteApplied   CreditNoteStatus = "APPLIED"
	CreditNoteCancelled CreditNoteStatus = "CANCELLED"
)

var validCreditNoteStatuses = []CreditNoteStatus{
	CreditNoteDraft,
	CreditNoteIssued,
	CreditNoteApplied,
	CreditNoteCancelled,
}

var creditNoteTransitions = map[CreditNoteStatus][]CreditNoteStatus{
	CreditNoteDraft:  {CreditNoteIssued, CreditNoteCancelled},
	CreditNoteIssued: {CreditNoteApplied, CreditNoteCancelled},
}

func (s CreditNoteStatus) IsValid() bool {
	for _, candidate := range validCreditNoteStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransitionTo allows staying in the same status so partial updates can resend it.
func (s CreditNoteStatus) CanTransitionTo(next CreditNoteStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range creditNoteTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func ParseCreditNoteStatus(value string) (CreditNoteStatus, error) {
	for _, candidate := range validCreditNoteStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid credit note status %q", value)
}

func CreditNoteStatusList() string {
	return fmt.Sprintf("%s, %s, %s, %s", CreditNoteDraft, CreditNoteIssued, CreditNoteApplied, CreditNoteCancelled)
}

// VendorCreditNote reduces the amount owed to a vendor. Posted notes are immutable.
type VendorCreditNote struct {
	BaseModel
	CreditNoteNumber string           `gorm:"type:varchar(50);not null;uniqueIndex:idx_vendor_credit_notes_number" json:"creditNoteNumber"`
	VendorID         uuid.UUID        `gorm:"type:uuid;not null;index" json:"vendorId"`
	Vendor           *Vendor          `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
	BillNumber       string           `gorm:"type:varchar(50)" json:"billNumber,omitempty"`
	Reason           string           `gorm:"type:text;not null" json:"reason"`
	Amount           decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"amount"`
	TaxAmount        decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"taxAmount"`
	TotalAmount      decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"totalAmount"`
	Status           CreditNoteStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Notes            string           `gorm:"type:text" json:"notes,omitempty"`
	AppliedToBill    bool             `gorm:"not null" json:"appliedToBill"`
	AppliedDate      *time.Time       `json:"appliedDate,omitempty"`
	AppliedBillID    *string          `gorm:"type:varchar(64)" json:"appliedBillId,omitempty"`
	IssuedDate       *time.Time       `json:"issuedDate,omitempty"`
}
