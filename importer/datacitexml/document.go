package datacitexml

// Elements and attributes are matched by local name so that documents of any
// kernel namespace decode the same way.

type xmlResource struct {
	Identifier         xmlIdentifier          `xml:"identifier"`
	Creators           []xmlAgent             `xml:"creators>creator"`
	Titles             []xmlTitle             `xml:"titles>title"`
	Publisher          string                 `xml:"publisher"`
	PublicationYear    string                 `xml:"publicationYear"`
	ResourceType       xmlResourceType        `xml:"resourceType"`
	Subjects           []xmlSubject           `xml:"subjects>subject"`
	Contributors       []xmlAgent             `xml:"contributors>contributor"`
	Dates              []xmlDate              `xml:"dates>date"`
	Language           string                 `xml:"language"`
	RelatedIdentifiers []xmlRelatedIdentifier `xml:"relatedIdentifiers>relatedIdentifier"`
	Sizes              []string               `xml:"sizes>size"`
	Formats            []string               `xml:"formats>format"`
	Version            string                 `xml:"version"`
	RightsList         []xmlRights            `xml:"rightsList>rights"`
	Descriptions       []xmlDescription       `xml:"descriptions>description"`
	GeoLocations       []xmlGeoLocation       `xml:"geoLocations>geoLocation"`
	FundingReferences  []xmlFundingReference  `xml:"fundingReferences>fundingReference"`
}

type xmlIdentifier struct {
	Value          string `xml:",chardata"`
	IdentifierType string `xml:"identifierType,attr"`
}

type xmlTitle struct {
	Value     string `xml:",chardata"`
	TitleType string `xml:"titleType,attr"`
	Lang      string `xml:"lang,attr"`
}

type xmlDescription struct {
	Value           string `xml:",chardata"`
	DescriptionType string `xml:"descriptionType,attr"`
	Lang            string `xml:"lang,attr"`
}

type xmlResourceType struct {
	Value               string `xml:",chardata"`
	ResourceTypeGeneral string `xml:"resourceTypeGeneral,attr"`
}

// xmlAgent covers both creator and contributor elements.
type xmlAgent struct {
	CreatorName     *xmlName            `xml:"creatorName"`
	ContributorName *xmlName            `xml:"contributorName"`
	ContributorType string              `xml:"contributorType,attr"`
	GivenName       string              `xml:"givenName"`
	FamilyName      string              `xml:"familyName"`
	NameIdentifiers []xmlNameIdentifier `xml:"nameIdentifier"`
	Affiliations    []xmlAffiliation    `xml:"affiliation"`
}

func (a xmlAgent) name() xmlName {
	switch {
	case a.CreatorName != nil:
		return *a.CreatorName
	case a.ContributorName != nil:
		return *a.ContributorName
	default:
		return xmlName{}
	}
}

type xmlName struct {
	Value    string `xml:",chardata"`
	NameType string `xml:"nameType,attr"`
}

type xmlNameIdentifier struct {
	Value                string `xml:",chardata"`
	NameIdentifierScheme string `xml:"nameIdentifierScheme,attr"`
	SchemeURI            string `xml:"schemeURI,attr"`
}

type xmlAffiliation struct {
	Value                       string `xml:",chardata"`
	AffiliationIdentifier       string `xml:"affiliationIdentifier,attr"`
	AffiliationIdentifierScheme string `xml:"affiliationIdentifierScheme,attr"`
	SchemeURI                   string `xml:"schemeURI,attr"`
}

type xmlSubject struct {
	Value              string `xml:",chardata"`
	SubjectScheme      string `xml:"subjectScheme,attr"`
	SchemeURI          string `xml:"schemeURI,attr"`
	ValueURI           string `xml:"valueURI,attr"`
	ClassificationCode string `xml:"classificationCode,attr"`
	Lang               string `xml:"lang,attr"`
}

type xmlDate struct {
	Value           string `xml:",chardata"`
	DateType        string `xml:"dateType,attr"`
	DateInformation string `xml:"dateInformation,attr"`
}

type xmlRelatedIdentifier struct {
	Value                 string `xml:",chardata"`
	RelatedIdentifierType string `xml:"relatedIdentifierType,attr"`
	RelationType          string `xml:"relationType,attr"`
	ResourceTypeGeneral   string `xml:"resourceTypeGeneral,attr"`
}

type xmlRights struct {
	Value                  string `xml:",chardata"`
	RightsURI              string `xml:"rightsURI,attr"`
	RightsIdentifier       string `xml:"rightsIdentifier,attr"`
	RightsIdentifierScheme string `xml:"rightsIdentifierScheme,attr"`
	SchemeURI              string `xml:"schemeURI,attr"`
	Lang                   string `xml:"lang,attr"`
}

// Kernel 3 writes points and boxes as whitespace separated text, kernel 4 as
// child elements. Both are kept as text and parsed later.
type xmlGeoLocation struct {
	Place   string         `xml:"geoLocationPlace"`
	Point   *xmlPoint      `xml:"geoLocationPoint"`
	Box     *xmlBox        `xml:"geoLocationBox"`
	Polygon *xmlGeoPolygon `xml:"geoLocationPolygon"`
}

type xmlPoint struct {
	Text      string `xml:",chardata"`
	Latitude  string `xml:"pointLatitude"`
	Longitude string `xml:"pointLongitude"`
}

type xmlBox struct {
	Text               string `xml:",chardata"`
	WestBoundLongitude string `xml:"westBoundLongitude"`
	EastBoundLongitude string `xml:"eastBoundLongitude"`
	SouthBoundLatitude string `xml:"southBoundLatitude"`
	NorthBoundLatitude string `xml:"northBoundLatitude"`
}

type xmlGeoPolygon struct {
	Points []xmlPoint `xml:"polygonPoint"`
}

type xmlFundingReference struct {
	FunderName       string         `xml:"funderName"`
	FunderIdentifier xmlFunderID    `xml:"funderIdentifier"`
	AwardNumber      xmlAwardNumber `xml:"awardNumber"`
	AwardTitle       string         `xml:"awardTitle"`
}

type xmlFunderID struct {
	Value                string `xml:",chardata"`
	FunderIdentifierType string `xml:"funderIdentifierType,attr"`
}

type xmlAwardNumber struct {
	Value    string `xml:",chardata"`
	AwardURI string `xml:"awardURI,attr"`
}
