package domain

import "time"

// ServiceOffering is a service a company subscribes to; tickets reference
// the offering they concern.
type ServiceOffering struct {
	ID        int64
	Name      string
	CompanyID *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProblemCategory classifies the reported problem.
type ProblemCategory struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ContactRole describes the requester's function at the client, selected on
// the external ticket form.
type ContactRole struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SoftwareType groups catalog software entries.
type SoftwareType struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Software is a supported product from the catalog.
type Software struct {
	ID        int64
	Name      string
	TypeID    *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
