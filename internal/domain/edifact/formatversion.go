// Package edifact provides EDIFACT format-version resolution.
//
// German market communication rolls over its EDIFACT format packages twice a
// year (April and October). transformer.bee expects the format version as a
// "FVyyMM" key, e.g. "FV2504" for the package that became valid in April 2025.
package edifact

import (
	"fmt"
	"time"
)

// FormatVersion identifies an EDIFACT format package, e.g. "FV2504".
type FormatVersion string

// Known format versions, newest last. CurrentFormatVersion picks the latest
// entry whose validity start is not after the given time.
const (
	FV2104 FormatVersion = "FV2104"
	FV2110 FormatVersion = "FV2110"
	FV2210 FormatVersion = "FV2210"
	FV2304 FormatVersion = "FV2304"
	FV2310 FormatVersion = "FV2310"
	FV2404 FormatVersion = "FV2404"
	FV2410 FormatVersion = "FV2410"
	FV2504 FormatVersion = "FV2504"
	FV2510 FormatVersion = "FV2510"
)

// validityStart maps each format version to the instant it became valid
// (German market rollovers happen at midnight German local time; UTC dates
// are close enough for version resolution since requests near the boundary
// can pass an explicit version).
var validityStarts = []struct {
	version FormatVersion
	start   time.Time
}{
	{FV2104, date(2021, time.April, 1)},
	{FV2110, date(2021, time.October, 1)},
	{FV2210, date(2022, time.October, 1)},
	{FV2304, date(2023, time.April, 1)},
	{FV2310, date(2023, time.October, 1)},
	{FV2404, date(2024, time.April, 1)},
	{FV2410, date(2024, time.October, 1)},
	// FV2504 was postponed from April to June 2025.
	{FV2504, date(2025, time.June, 6)},
	{FV2510, date(2025, time.October, 1)},
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CurrentFormatVersion returns the format version valid at time t.
func CurrentFormatVersion(t time.Time) FormatVersion {
	current := validityStarts[0].version
	for _, entry := range validityStarts {
		if entry.start.After(t) {
			break
		}
		current = entry.version
	}
	return current
}

// Parse validates a format-version string as supplied by API callers.
// The empty string is valid and means "use the current version".
func Parse(s string) (FormatVersion, error) {
	if s == "" {
		return "", nil
	}
	for _, entry := range validityStarts {
		if string(entry.version) == s {
			return entry.version, nil
		}
	}
	return "", fmt.Errorf("unknown edifact format version %q", s)
}
