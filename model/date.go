package model

import "strings"

// DateType is the DataCite dateType enumeration.
type DateType string

const (
	DateTypeAccepted    DateType = "Accepted"
	DateTypeAvailable   DateType = "Available"
	DateTypeCollected   DateType = "Collected"
	DateTypeCopyrighted DateType = "Copyrighted"
	DateTypeCreated     DateType = "Created"
	DateTypeIssued      DateType = "Issued"
	DateTypeSubmitted   DateType = "Submitted"
	DateTypeUpdated     DateType = "Updated"
	DateTypeValid       DateType = "Valid"
	DateTypeWithdrawn   DateType = "Withdrawn"
	DateTypeOther       DateType = "Other"
)

var dateTypes = []DateType{
	DateTypeAccepted,
	DateTypeAvailable,
	DateTypeCollected,
	DateTypeCopyrighted,
	DateTypeCreated,
	DateTypeIssued,
	DateTypeSubmitted,
	DateTypeUpdated,
	DateTypeValid,
	DateTypeWithdrawn,
	DateTypeOther,
}

// ParseDateType matches a dateType name case-insensitively.
func ParseDateType(s string) (DateType, bool) {
	s = strings.TrimSpace(s)
	for _, dt := range dateTypes {
		if strings.EqualFold(s, string(dt)) {
			return dt, true
		}
	}
	return "", false
}

// Date is a single date or a date range. Start and End hold partial ISO 8601
// values (year, year-month or full date) exactly as they were received.
type Date struct {
	Type        DateType
	Start       string
	End         string
	Information string
}

// IsEmpty reports whether both sides of the date are missing. Empty dates
// must be dropped, they have no encoding.
func (d Date) IsEmpty() bool {
	return strings.TrimSpace(d.Start) == "" && strings.TrimSpace(d.End) == ""
}

// IsRange reports whether the date has an end (open-start ranges included).
func (d Date) IsRange() bool {
	return d.End != ""
}
