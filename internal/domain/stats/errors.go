package stats

import "fmt"

// ValidationError flags a malformed period request before any I/O is
// attempted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateWeek checks a year/ISO-week pair from the query surface.
func ValidateWeek(year, week int) error {
	if year < 2000 || year > 2100 {
		return &ValidationError{Field: "year", Message: "must be between 2000 and 2100"}
	}
	if week < 1 || week > 53 {
		return &ValidationError{Field: "week", Message: "must be between 1 and 53"}
	}
	return nil
}

// ValidateMonth checks a year/month pair; months are one-indexed.
func ValidateMonth(year, month int) error {
	if year < 2000 || year > 2100 {
		return &ValidationError{Field: "year", Message: "must be between 2000 and 2100"}
	}
	if month < 1 || month > 12 {
		return &ValidationError{Field: "month", Message: "must be between 1 and 12"}
	}
	return nil
}
