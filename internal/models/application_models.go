package models

import "time"

// ApplicationStatus is the lifecycle state of a licence application.
type ApplicationStatus string

const (
	ApplicationStatusDraft     ApplicationStatus = "draft"
	ApplicationStatusSubmitted ApplicationStatus = "submitted"
	ApplicationStatusApproved  ApplicationStatus = "approved"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
)

// IsValidApplicationStatus checks if the provided status string is a known ApplicationStatus.
func IsValidApplicationStatus(status string) bool {
	switch ApplicationStatus(status) {
	case ApplicationStatusDraft,
		ApplicationStatusSubmitted,
		ApplicationStatusApproved,
		ApplicationStatusRejected:
		return true
	default:
		return false
	}
}

// applicationTransitions lists the states reachable from each state.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusDraft:     {ApplicationStatusSubmitted},
	ApplicationStatusSubmitted: {ApplicationStatusApproved, ApplicationStatusRejected},
}

// CanTransitionTo reports whether an application in status s may move to next.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsFinal reports whether no further transitions are possible.
func (s ApplicationStatus) IsFinal() bool {
	return len(applicationTransitions[s]) == 0
}

// Application represents a licence application submitted through the portal
type Application struct {
	ID               int64     `json:"id" db:"id"`
	Reference        string    `json:"reference" db:"reference"`
	LicenceType      string    `json:"licence_type" db:"licence_type"`
	Status           string    `json:"status" db:"status"`
	ApplicantDetails JSONMap   `json:"applicant_details" db:"applicant_details"`
	Payload          JSONMap   `json:"payload" db:"payload"` // full form data, schema free
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// ApplicationFilters defines the available filters for listing applications.
type ApplicationFilters struct {
	Status      *string `form:"status"`
	LicenceType *string `form:"licence_type"`
}
