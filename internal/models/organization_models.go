package models

import "time"

// Organization is an aviation entity (operator, ATO, AMO, ...) that applicants may belong to.
type Organization struct {
	ID                  int64      `json:"id" db:"id"`
	Name                string     `json:"name" db:"name"`
	LegalName           *string    `json:"legal_name,omitempty" db:"legal_name"`
	RegistrationNumber  *string    `json:"registration_number,omitempty" db:"registration_number"`
	TaxID               *string    `json:"tax_id,omitempty" db:"tax_id"`
	OrganizationType    *string    `json:"organization_type,omitempty" db:"organization_type"`
	Email               *string    `json:"email,omitempty" db:"email"`
	PhoneNumber         *string    `json:"phone_number,omitempty" db:"phone_number"`
	Website             *string    `json:"website,omitempty" db:"website"`
	AddressLine1        *string    `json:"address_line_1,omitempty" db:"address_line_1"`
	City                *string    `json:"city,omitempty" db:"city"`
	Country             *string    `json:"country,omitempty" db:"country"`
	PrimaryContactName  *string    `json:"primary_contact_name,omitempty" db:"primary_contact_name"`
	PrimaryContactEmail *string    `json:"primary_contact_email,omitempty" db:"primary_contact_email"`
	Status              string     `json:"status" db:"status"`
	IsArchived          bool       `json:"is_archived" db:"is_archived"`
	ArchivedAt          *time.Time `json:"archived_at,omitempty" db:"archived_at"`
	ArchivedBy          *int64     `json:"archived_by,omitempty" db:"archived_by"`
	Metadata            JSONMap    `json:"metadata,omitempty" db:"metadata"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}

// ListFilters is shared by the paginated organization and user listings.
type ListFilters struct {
	Search          *string `form:"search"`
	IncludeArchived bool    `form:"include_archived"`
	OrganizationID  *int64  `form:"organization_id"` // users only
	Page            int     `form:"page"`
	PageSize        int     `form:"page_size"`
}
