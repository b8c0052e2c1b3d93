package shared

import "time"

const dateLayout = "2006-01-02"

// ParseDate accepts YYYY-MM-DD only. A blank value yields the zero time.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, value)
}
