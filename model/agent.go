package model

import "strings"

type AgentKind int

const (
	AgentUnknown AgentKind = iota
	AgentPerson
	AgentInstitution
)

func (k AgentKind) String() string {
	switch k {
	case AgentPerson:
		return "person"
	case AgentInstitution:
		return "institution"
	default:
		return "unknown"
	}
}

// Agent is a creator or a contributor. It is a tagged variant: exactly one of
// Person or Institution is expected to be set. Both variants share the
// affiliations, which are kept one entry per source row.
type Agent struct {
	Person       *Person
	Institution  *Institution
	Affiliations []Affiliation
	Role         Role
	Position     int

	// Contact is set when the agent acts as the primary contact.
	Contact *Contact
}

// NewPerson returns an Agent holding a Person.
func NewPerson(p Person, role Role, position int) Agent {
	return Agent{Person: &p, Role: role, Position: position}
}

// NewInstitution returns an Agent holding an Institution.
func NewInstitution(i Institution, role Role, position int) Agent {
	return Agent{Institution: &i, Role: role, Position: position}
}

func (a Agent) Kind() AgentKind {
	switch {
	case a.Person != nil:
		return AgentPerson
	case a.Institution != nil:
		return AgentInstitution
	default:
		return AgentUnknown
	}
}

// Name returns the display name, "Family, Given" for people.
func (a Agent) Name() string {
	switch {
	case a.Person != nil:
		return a.Person.FullName()
	case a.Institution != nil:
		return a.Institution.Name
	default:
		return ""
	}
}

type Person struct {
	GivenName        string
	FamilyName       string
	Identifier       string
	IdentifierScheme string
	SchemeURI        string
}

func (p Person) FullName() string {
	family := strings.TrimSpace(p.FamilyName)
	given := strings.TrimSpace(p.GivenName)
	switch {
	case family != "" && given != "":
		return family + ", " + given
	case family != "":
		return family
	default:
		return given
	}
}

type Institution struct {
	Name             string
	Identifier       string
	IdentifierScheme string
	SchemeURI        string
}

type Affiliation struct {
	Name             string
	Identifier       string
	IdentifierScheme string
	SchemeURI        string
}

type Contact struct {
	Email   string
	Website string
}
