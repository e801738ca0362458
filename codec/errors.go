package codec

import "fmt"

// DateFormatError is returned when a date cannot be decoded or encoded. It is
// fatal to the date it refers to only, callers decide whether to drop it.
type DateFormatError struct {
	Raw    string
	Reason string
}

func (err *DateFormatError) Error() string {
	return fmt.Sprintf("invalid date %q: %s", err.Raw, err.Reason)
}

// UnrecognizedVocabularySchemeError reports a subject that is neither a free
// keyword nor a complete controlled term. It is a soft error: the subject is
// kept and tagged as incomplete.
type UnrecognizedVocabularySchemeError struct {
	Subject   string
	Scheme    string
	SchemeURI string
	ValueURI  string
}

func (err *UnrecognizedVocabularySchemeError) Error() string {
	switch {
	case err.Scheme == "":
		return fmt.Sprintf("subject %q has scheme attributes but no subjectScheme", err.Subject)
	case err.ValueURI == "":
		return fmt.Sprintf("subject %q of scheme %q has no valueURI", err.Subject, err.Scheme)
	default:
		return fmt.Sprintf("subject %q uses unknown vocabulary %q", err.Subject, err.Scheme)
	}
}
