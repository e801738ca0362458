package model

// SubjectKind is decided once, when the subject is parsed or imported, from
// the presence of the scheme attributes.
type SubjectKind int

const (
	SubjectUnclassified SubjectKind = iota
	SubjectFree
	SubjectControlled
	SubjectIncomplete
)

func (k SubjectKind) String() string {
	switch k {
	case SubjectFree:
		return "free"
	case SubjectControlled:
		return "controlled"
	case SubjectIncomplete:
		return "incomplete"
	default:
		return "unclassified"
	}
}

// Subject is a keyword. Path carries the full hierarchical path of controlled
// terms as received, e.g. "Science Keywords > EARTH SCIENCE > ATMOSPHERE".
type Subject struct {
	Value              string
	Path               string
	Language           string
	Scheme             string
	SchemeURI          string
	ValueURI           string
	ClassificationCode string
	Kind               SubjectKind
}

// HasSchemeAttributes reports whether any of the attributes that qualify a
// controlled term is set.
func (s Subject) HasSchemeAttributes() bool {
	return s.Scheme != "" || s.SchemeURI != "" || s.ValueURI != ""
}
