package dto

import (
	"time"

	"github.com/techexpert/helpdesk/internal/domain"
)

// CompanyRequest payload.
type CompanyRequest struct {
	Name string             `json:"name"`
	Kind domain.CompanyKind `json:"kind"`
}

// CompanyResponse response.
type CompanyResponse struct {
	ID        int64              `json:"id"`
	Name      string             `json:"name"`
	Kind      domain.CompanyKind `json:"kind"`
	CreatedAt time.Time          `json:"created_at"`
}

// OfferingRequest payload.
type OfferingRequest struct {
	Name      string `json:"name"`
	CompanyID *int64 `json:"company_id"`
}

// OfferingResponse response.
type OfferingResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CompanyID *int64    `json:"company_id"`
	CreatedAt time.Time `json:"created_at"`
}

// NamedItemRequest covers the simple name-only catalog entries.
type NamedItemRequest struct {
	Name string `json:"name"`
}

// NamedItemResponse response.
type NamedItemResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// SoftwareRequest payload.
type SoftwareRequest struct {
	Name   string `json:"name"`
	TypeID *int64 `json:"type_id"`
}

// SoftwareResponse response.
type SoftwareResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	TypeID    *int64    `json:"type_id"`
	CreatedAt time.Time `json:"created_at"`
}
