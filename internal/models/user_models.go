package models

import (
	"strings"
	"time"
)

// User represents an applicant account on the portal
type User struct {
	ID                 int64      `json:"id" db:"id"`
	OrganizationID     *int64     `json:"organization_id,omitempty" db:"organization_id"`
	FirstName          string     `json:"first_name" db:"first_name"`
	MiddleName         *string    `json:"middle_name,omitempty" db:"middle_name"`
	LastName           string     `json:"last_name" db:"last_name"`
	FullName           string     `json:"full_name" db:"full_name"`
	Email              string     `json:"email" db:"email"`
	PasswordHash       string     `json:"-" db:"password_hash"`
	Gender             *string    `json:"gender,omitempty" db:"gender"`
	DateOfBirth        *time.Time `json:"date_of_birth,omitempty" db:"date_of_birth"`
	Nationality        *string    `json:"nationality,omitempty" db:"nationality"`
	CountryOfResidence *string    `json:"country_of_residence,omitempty" db:"country_of_residence"`
	PhoneNumber        *string    `json:"phone_number,omitempty" db:"phone_number"`
	IDType             *string    `json:"id_type,omitempty" db:"id_type"`
	IDNumber           *string    `json:"id_number,omitempty" db:"id_number"`
	PassportNumber     *string    `json:"passport_number,omitempty" db:"passport_number"`
	PassportExpiryDate *time.Time `json:"passport_expiry_date,omitempty" db:"passport_expiry_date"`
	Status             string     `json:"status" db:"status"`
	AccountType        *string    `json:"account_type,omitempty" db:"account_type"`
	IsArchived         bool       `json:"is_archived" db:"is_archived"`
	ArchivedAt         *time.Time `json:"archived_at,omitempty" db:"archived_at"`
	ArchivedBy         *int64     `json:"archived_by,omitempty" db:"archived_by"`
	CreatedAt          time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at" db:"updated_at"`
}

// ComposeFullName joins the non-empty name parts with single spaces.
func ComposeFullName(first string, middle *string, last string) string {
	parts := []string{strings.TrimSpace(first)}
	if middle != nil && strings.TrimSpace(*middle) != "" {
		parts = append(parts, strings.TrimSpace(*middle))
	}
	parts = append(parts, strings.TrimSpace(last))
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
