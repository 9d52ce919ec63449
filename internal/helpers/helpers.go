package helpers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

var (
	hasLower   = regexp.MustCompile(`[a-z]`)
	hasUpper   = regexp.MustCompile(`[A-Z]`)
	hasNumber  = regexp.MustCompile(`\d`)
	hasSpecial = regexp.MustCompile(`[^A-Za-z0-9\s]`)
)

func IsPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}
	return hasLower.MatchString(password) &&
		hasUpper.MatchString(password) &&
		hasNumber.MatchString(password) &&
		hasSpecial.MatchString(password)
}

// StringTrim trims whitespace and any quotes clients wrap ids in.
func StringTrim(s string) string {
	return strings.Trim(strings.TrimSpace(s), "\"'")
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTime accepts RFC3339, the datetime-local form value, or a bare date (UTC).
func ParseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", value)
}

// ParsePagination reads limit/offset query values. Empty values take the
// defaults; limit is capped at MaxLimit.
func ParsePagination(limitStr, offsetStr string) (limit, offset int, err error) {
	limit, offset = DefaultLimit, 0
	if limitStr != "" {
		if limit, err = strconv.Atoi(limitStr); err != nil || limit <= 0 {
			return 0, 0, fmt.Errorf("invalid limit parameter")
		}
	}
	if offsetStr != "" {
		if offset, err = strconv.Atoi(offsetStr); err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("invalid offset parameter")
		}
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return limit, offset, nil
}

// Page converts an offset into a 1-based page number.
func Page(offset, limit int) int {
	if limit <= 0 {
		return 1
	}
	return offset/limit + 1
}
