package domain

import "time"

// CompanyKind distinguishes billed companies from internal projects.
type CompanyKind string

const (
	CompanyKindCompany CompanyKind = "COMPANY"
	CompanyKindProject CompanyKind = "PROJECT"
)

// Company represents a client organization tickets are opened against.
type Company struct {
	ID        int64
	Name      string
	Kind      CompanyKind
	CreatedAt time.Time
	UpdatedAt time.Time
}
