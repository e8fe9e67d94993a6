package model

// Role bundles the privileges copied onto a user when the role is assigned.
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

const (
	RoleMasterAdmin = "MASTER_ADMIN"
	RoleAdmin       = "ADMIN"
)

var DefaultRoles = []Role{
	{
		Code:        RoleMasterAdmin,
		Name:        "Master Administrator",
		Description: "Full system access with all privileges",
	},
	{
		Code:        RoleAdmin,
		Name:        "Administrator",
		Description: "Day-to-day stock and credit note handling; cannot delete records",
	},
}

// GrantsByDefault reports whether seeding binds the privilege to this role.
// ADMIN never receives delete privileges; every other role receives all of them.
func (r Role) GrantsByDefault(privilegeCode string) bool {
	if r.Code == RoleAdmin {
		return !IsDeletePrivilege(privilegeCode)
	}
	return true
}
