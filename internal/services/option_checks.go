package services

import (
	"context"
	"fmt"
	"strings"
)

// optionChecker is the part of OptionService the registries validate against.
type optionChecker interface {
	IsAllowed(ctx context.Context, category, value string) (bool, error)
}

// checkOption verifies that a provided value is an active option of category.
// Empty values pass; they are stored as NULL. invalid is the sentinel wrapped on rejection.
func checkOption(ctx context.Context, options optionChecker, invalid error, field, category string, value *string) error {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	ok, err := options.IsAllowed(ctx, category, strings.TrimSpace(*value))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s '%s' is not a valid %s option", invalid, field, *value, category)
	}
	return nil
}

// recordStatuses are the lifecycle values of organizations and users.
var recordStatuses = map[string]bool{
	"active":    true,
	"inactive":  true,
	"suspended": true,
}

func checkRecordStatus(invalid error, status *string) error {
	if status == nil {
		return nil
	}
	if !recordStatuses[strings.TrimSpace(*status)] {
		return fmt.Errorf("%w: status must be one of active, inactive, suspended", invalid)
	}
	return nil
}

// NormalizePage applies the listing defaults: page 1, 20 rows, at most 100.
func NormalizePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}

// ArchiveRequest optionally names the user performing an archive.
type ArchiveRequest struct {
	ArchivedBy *int64 `json:"archived_by"`
}
