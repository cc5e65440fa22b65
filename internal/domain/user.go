package domain

import "time"

// Capability names an action a user may perform. Capabilities are derived
// from role membership; callers never compare role strings directly.
type Capability string

const (
	CapabilitySupervise  Capability = "supervise"
	CapabilityTriage     Capability = "triage"
	CapabilityAdminister Capability = "administer"
)

// Well-known role names seeded by the reference data.
const (
	RoleTechnician    = "technicien"
	RoleSupervisor    = "superviseur"
	RoleAdministrator = "administrateur"
)

// CapabilitiesForRole maps a role name onto the capabilities it grants.
func CapabilitiesForRole(role string) []Capability {
	switch role {
	case RoleAdministrator:
		return []Capability{CapabilityAdminister, CapabilitySupervise, CapabilityTriage}
	case RoleSupervisor:
		return []Capability{CapabilitySupervise, CapabilityTriage}
	case RoleTechnician:
		return []Capability{CapabilityTriage}
	}
	return nil
}

// User models a staff member or a known client contact.
type User struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	PasswordHash string
	CompanyID    *int64
	Active       bool
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName joins first and last name for display and mail greetings.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// HasRole reports membership of a named role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
