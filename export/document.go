package export

// Document is the DataCite JSON envelope, as accepted by the DataCite REST
// API. Optional arrays are omitted when empty.
type Document struct {
	Data Data `json:"data"`
}

type Data struct {
	Type       string     `json:"type"`
	Attributes Attributes `json:"attributes"`
}

type Attributes struct {
	DOI                string              `json:"doi,omitempty"`
	Titles             []Title             `json:"titles,omitempty"`
	Creators           []Creator           `json:"creators,omitempty"`
	Contributors       []Contributor       `json:"contributors,omitempty"`
	Publisher          *Publisher          `json:"publisher,omitempty"`
	PublicationYear    string              `json:"publicationYear,omitempty"`
	Types              *Types              `json:"types,omitempty"`
	Subjects           []Subject           `json:"subjects,omitempty"`
	Dates              []Date              `json:"dates,omitempty"`
	Language           string              `json:"language,omitempty"`
	RelatedIdentifiers []RelatedIdentifier `json:"relatedIdentifiers,omitempty"`
	Sizes              []string            `json:"sizes,omitempty"`
	Formats            []string            `json:"formats,omitempty"`
	Version            string              `json:"version,omitempty"`
	RightsList         []Rights            `json:"rightsList,omitempty"`
	Descriptions       []Description       `json:"descriptions,omitempty"`
	GeoLocations       []GeoLocation       `json:"geoLocations,omitempty"`
	FundingReferences  []FundingReference  `json:"fundingReferences,omitempty"`
	SchemaVersion      string              `json:"schemaVersion"`
}

type Title struct {
	Title     string `json:"title"`
	TitleType string `json:"titleType,omitempty"`
	Lang      string `json:"lang,omitempty"`
}

type Description struct {
	Description     string `json:"description"`
	DescriptionType string `json:"descriptionType"`
	Lang            string `json:"lang,omitempty"`
}

type Creator struct {
	Name            string           `json:"name"`
	NameType        string           `json:"nameType,omitempty"`
	GivenName       string           `json:"givenName,omitempty"`
	FamilyName      string           `json:"familyName,omitempty"`
	NameIdentifiers []NameIdentifier `json:"nameIdentifiers,omitempty"`
	Affiliation     []Affiliation    `json:"affiliation,omitempty"`
}

type Contributor struct {
	Creator
	ContributorType string `json:"contributorType"`
}

type NameIdentifier struct {
	NameIdentifier       string `json:"nameIdentifier"`
	NameIdentifierScheme string `json:"nameIdentifierScheme"`
	SchemeURI            string `json:"schemeUri,omitempty"`
}

type Affiliation struct {
	Name                        string `json:"name"`
	AffiliationIdentifier       string `json:"affiliationIdentifier,omitempty"`
	AffiliationIdentifierScheme string `json:"affiliationIdentifierScheme,omitempty"`
	SchemeURI                   string `json:"schemeUri,omitempty"`
}

type Publisher struct {
	Name string `json:"name"`
}

type Types struct {
	ResourceTypeGeneral string `json:"resourceTypeGeneral"`
	ResourceType        string `json:"resourceType,omitempty"`
}

type Subject struct {
	Subject            string `json:"subject"`
	SubjectScheme      string `json:"subjectScheme,omitempty"`
	SchemeURI          string `json:"schemeUri,omitempty"`
	ValueURI           string `json:"valueUri,omitempty"`
	ClassificationCode string `json:"classificationCode,omitempty"`
	Lang               string `json:"lang,omitempty"`
}

type Date struct {
	Date            string `json:"date"`
	DateType        string `json:"dateType"`
	DateInformation string `json:"dateInformation,omitempty"`
}

type RelatedIdentifier struct {
	RelatedIdentifier     string `json:"relatedIdentifier"`
	RelatedIdentifierType string `json:"relatedIdentifierType"`
	RelationType          string `json:"relationType"`
	ResourceTypeGeneral   string `json:"resourceTypeGeneral,omitempty"`
}

type Rights struct {
	Rights                 string `json:"rights,omitempty"`
	RightsURI              string `json:"rightsUri,omitempty"`
	RightsIdentifier       string `json:"rightsIdentifier,omitempty"`
	RightsIdentifierScheme string `json:"rightsIdentifierScheme,omitempty"`
	SchemeURI              string `json:"schemeUri,omitempty"`
	Lang                   string `json:"lang,omitempty"`
}

type GeoLocation struct {
	GeoLocationPlace   string         `json:"geoLocationPlace,omitempty"`
	GeoLocationPoint   *Point         `json:"geoLocationPoint,omitempty"`
	GeoLocationBox     *Box           `json:"geoLocationBox,omitempty"`
	GeoLocationPolygon []PolygonPoint `json:"geoLocationPolygon,omitempty"`
}

type Point struct {
	PointLatitude  float64 `json:"pointLatitude"`
	PointLongitude float64 `json:"pointLongitude"`
}

type Box struct {
	WestBoundLongitude float64 `json:"westBoundLongitude"`
	EastBoundLongitude float64 `json:"eastBoundLongitude"`
	SouthBoundLatitude float64 `json:"southBoundLatitude"`
	NorthBoundLatitude float64 `json:"northBoundLatitude"`
}

type PolygonPoint struct {
	PolygonPoint Point `json:"polygonPoint"`
}

type FundingReference struct {
	FunderName           string `json:"funderName"`
	FunderIdentifier     string `json:"funderIdentifier,omitempty"`
	FunderIdentifierType string `json:"funderIdentifierType,omitempty"`
	AwardNumber          string `json:"awardNumber,omitempty"`
	AwardURI             string `json:"awardUri,omitempty"`
	AwardTitle           string `json:"awardTitle,omitempty"`
}
