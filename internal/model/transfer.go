package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TransferStatus string

const (
	TransferSent      TransferStatus = "SENT"
	TransferUsed      TransferStatus = "USED"
	TransferReturned  TransferStatus = "RETURNED"
	TransferRepairing TransferStatus = "REPAIRING"
	TransferFinished  TransferStatus = "FINISHED"
	TransferUnused    TransferStatus = "UNUSED"
	TransferCancelled TransferStatus = "CANCELLED"
)

// UpdatableTransferStatuses are the targets accepted by a status update, in the
// order they are reported back to clients.
var UpdatableTransferStatuses = []TransferStatus{
	TransferUsed,
	TransferReturned,
	TransferCancelled,
	TransferRepairing,
	TransferFinished,
	TransferUnused,
}

var allTransferStatuses = append([]TransferStatus{TransferSent}, UpdatableTransferStatuses...)

// transferTransitions lists the legal next states; statuses absent from the map are terminal.
var transferTransitions = map[TransferStatus][]TransferStatus{
	TransferSent:      {TransferUsed, TransferReturned, TransferUnused, TransferCancelled},
	TransferReturned:  {TransferRepairing},
	TransferRepairing: {TransferFinished},
}

func (s TransferStatus) String() string {
	return string(s)
}

func (s TransferStatus) IsValid() bool {
	for _, candidate := range allTransferStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsUpdatable reports whether s may be requested through a status update.
func (s TransferStatus) IsUpdatable() bool {
	for _, candidate := range UpdatableTransferStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func (s TransferStatus) CanTransitionTo(next TransferStatus) bool {
	for _, allowed := range transferTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible from s.
func (s TransferStatus) IsTerminal() bool {
	return len(transferTransitions[s]) == 0
}

func ParseTransferStatus(value string) (TransferStatus, error) {
	for _, candidate := range allTransferStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transfer status %q", value)
}

// JoinTransferStatuses renders statuses as "A, B, C".
func JoinTransferStatuses(statuses []TransferStatus) string {
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

// RawMaterialTransfer records one issuance of raw material to a user.
type RawMaterialTransfer struct {
	BaseModel
	UserID           uuid.UUID                   `gorm:"type:uuid;not null;index" json:"userId"`
	User             *User                       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	RawMaterialID    uuid.UUID                   `gorm:"type:uuid;not null;index" json:"rawMaterialId"`
	RawMaterial      *RawMaterial                `gorm:"foreignKey:RawMaterialID" json:"rawMaterial,omitempty"`
	QuantityIssued   int                         `gorm:"not null;check:chk_raw_material_transfers_issued,quantity_issued > 0" json:"quantityIssued"`
	QuantityApproved int                         `gorm:"not null" json:"quantityApproved"`
	QuantityRejected int                         `gorm:"not null" json:"quantityRejected"`
	Status           TransferStatus              `gorm:"type:varchar(20);not null;index" json:"status"`
	Notes            string                      `gorm:"type:text" json:"notes"`
	RejectionReason  string                      `gorm:"type:text" json:"rejectionReason"`
	RejectionImages  datatypes.JSONSlice[string] `gorm:"not null" json:"rejectionImages"`
	Version          int                         `gorm:"not null" json:"version"`
}
