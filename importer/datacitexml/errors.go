package datacitexml

import "fmt"

// MalformedXMLError is returned when the document is not well-formed or
// holds no resource element. It aborts the whole import.
type MalformedXMLError struct {
	Line   int
	Reason string
	Err    error
}

func (e *MalformedXMLError) Error() string {
	msg := "malformed DataCite XML"
	if e.Line > 0 {
		msg = fmt.Sprintf("%s (line %d)", msg, e.Line)
	}
	if e.Reason != "" {
		msg = msg + ": " + e.Reason
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedXMLError) Unwrap() error { return e.Err }

func (e *MalformedXMLError) Cause() error { return e.Err }
