package model

import "github.com/google/uuid"

// RawMaterial is the central stock record.
type RawMaterial struct {
	BaseModel
	Name     string `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Quantity int    `gorm:"not null;check:chk_raw_materials_quantity,quantity >= 0" json:"quantity"`
	Unit     string `gorm:"type:varchar(20)" json:"unit"`
}

// UserInventory is the per-(user, raw material) holding of approved material.
type UserInventory struct {
	BaseModel
	UserID        uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_user_inventories_user_material" json:"userId"`
	User          *User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	RawMaterialID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_user_inventories_user_material" json:"rawMaterialId"`
	RawMaterial   *RawMaterial `gorm:"foreignKey:RawMaterialID" json:"rawMaterial,omitempty"`
	Quantity      int          `gorm:"not null" json:"quantity"`
	Unit          string       `gorm:"type:varchar(20)" json:"unit"`
}

func (UserInventory) TableName() string {
	return "user_inventories"
}
