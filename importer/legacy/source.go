package legacy

import (
	"context"
	"fmt"
)

// AgentRow is one agent of a dataset as stored in the legacy source.
type AgentRow struct {
	ID               int64
	Role             string
	AgentOrder       int
	NameType         string
	GivenName        string
	FamilyName       string
	CombinedName     string
	Identifier       string
	IdentifierScheme string
	Email            string
	Website          string
	Affiliations     []AffiliationRow
}

type AffiliationRow struct {
	Name  string
	RORID string
}

type DateRow struct {
	DateType    string
	Value       string
	Information string
}

// Source is the read interface of the legacy data source.
type Source interface {
	Agents(ctx context.Context, datasetKey string) ([]AgentRow, error)
	Dates(ctx context.Context, datasetKey string) ([]DateRow, error)
}

// SourceUnavailableError is returned when the legacy source cannot be read,
// including timeouts. It is recoverable: the caller may retry later or carry
// on without legacy data.
type SourceUnavailableError struct {
	Err error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("legacy source unavailable: %v", e.Err)
}

func (e *SourceUnavailableError) Temporary() bool { return true }

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

func (e *SourceUnavailableError) Cause() error { return e.Err }
