package services

import (
	"strings"
	"time"

	"gearguard/utils"

	"gorm.io/datatypes"
)

const dateLayout = "2006-01-02"

// parseDate parses an optional YYYY-MM-DD value; blank input yields nil.
func parseDate(field string, value *string) (*datatypes.Date, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(*value))
	if err != nil {
		return nil, utils.NewValidationError(field + " must use the YYYY-MM-DD format")
	}
	d := datatypes.Date(t)
	return &d, nil
}

// optionalString trims s and maps blank input to nil.
func optionalString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
