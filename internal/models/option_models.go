package models

import "time"

// SystemOption is one entry of the grouped lookup table used to populate form dropdowns.
type SystemOption struct {
	ID        int64     `json:"id" db:"id"`
	Category  string    `json:"category" db:"category"`
	Key       *string   `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"`
	Label     string    `json:"label" db:"label"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	Metadata  JSONMap   `json:"metadata,omitempty" db:"metadata"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// OptionChoice is the trimmed-down shape returned to forms for a single category.
type OptionChoice struct {
	Value string  `json:"value"`
	Label string  `json:"label"`
	Key   *string `json:"key"`
}

// GroupedOptions maps category -> value -> label.
type GroupedOptions map[string]map[string]string

// Option categories referenced by server-side validation.
const (
	OptionCategoryGender           = "gender"
	OptionCategoryDocumentType     = "document_type"
	OptionCategoryOrganizationType = "organization_type"
	OptionCategoryNationality      = "nationality"
	OptionCategoryCountry          = "country"
	OptionCategoryCAADepartment    = "caa_department"
)

// OptionUpsert carries a create-or-update request for the (category, value) pair.
// Nil pointer fields leave the stored value untouched on update and fall back to
// column defaults on insert.
type OptionUpsert struct {
	Category  string
	Value     string
	Label     string
	Key       *string
	SortOrder *int
	IsActive  *bool
	Metadata  JSONMap
}
