package model

import (
	"sort"

	"github.com/google/uuid"
)

// Resource is one curated work.
type Resource struct {
	ID                 uuid.UUID
	DOI                string
	PublicationYear    string
	Publisher          string
	ResourceType       ResourceType
	Version            string
	Language           string
	Titles             []Title
	Descriptions       []Description
	Dates              []Date
	Subjects           []Subject
	Creators           []Agent
	Contributors       []Agent
	RelatedIdentifiers []RelatedIdentifier
	FundingReferences  []FundingReference
	GeoLocations       []GeoLocation
	Licenses           []License
	Formats            []string
	Sizes              []string
}

// New returns an empty Resource with a new random identifier.
func New() *Resource {
	return &Resource{ID: uuid.New()}
}

type ResourceType struct {
	General string
	Text    string
}

type Title struct {
	Value    string
	Type     TitleType
	Language string
}

type Description struct {
	Value    string
	Type     DescriptionType
	Language string
}

type RelatedIdentifier struct {
	Identifier          string
	IdentifierType      string
	RelationType        string
	ResourceTypeGeneral string
}

type FundingReference struct {
	FunderName           string
	FunderIdentifier     string
	FunderIdentifierType string
	AwardNumber          string
	AwardURI             string
	AwardTitle           string
}

// License is a rights statement, usually pointing to a license document.
type License struct {
	Rights           string
	RightsURI        string
	Identifier       string
	IdentifierScheme string
	SchemeURI        string
	Language         string
}

// SortedCreators returns a copy of the creators ordered by position.
func (r *Resource) SortedCreators() []Agent {
	return sortAgents(r.Creators)
}

// SortedContributors returns a copy of the contributors ordered by position.
func (r *Resource) SortedContributors() []Agent {
	return sortAgents(r.Contributors)
}

func sortAgents(agents []Agent) []Agent {
	if len(agents) == 0 {
		return nil
	}
	sorted := make([]Agent, len(agents))
	copy(sorted, agents)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})
	return sorted
}
