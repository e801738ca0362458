package export

import (
	"fmt"
	"strings"

	"github.com/JiscSD/rdss-datacite-transcoder/codec"
	"github.com/JiscSD/rdss-datacite-transcoder/model"
	"github.com/JiscSD/rdss-datacite-transcoder/schema"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

const (
	documentType  = "dois"
	schemaVersion = "http://datacite.org/schema/kernel-4"

	nameTypePersonal       = "Personal"
	nameTypeOrganizational = "Organizational"
)

// Well-known identifier schemes and the URI they are usually paired with.
var schemeURIs = map[string]string{
	"ORCID": "https://orcid.org",
	"ROR":   "https://ror.org",
	"ISNI":  "http://isni.org/isni/",
	"GRID":  "https://www.grid.ac/",
}

type UnsupportedVersionError struct {
	Version string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported DataCite schema version %q", e.Version)
}

func supported(version string) bool {
	for _, v := range schema.SupportedVersions {
		if v == version {
			return true
		}
	}
	return false
}

// Serialize builds the DataCite document of r for the given schema version.
// It never validates: a resource missing mandatory properties produces a
// document that the validator rejects.
func Serialize(r *model.Resource, version string) (*Document, error) {
	if !supported(version) {
		return nil, &UnsupportedVersionError{Version: version}
	}
	if r == nil {
		return nil, errors.New("resource is nil")
	}

	attrs := Attributes{
		DOI:                strings.TrimSpace(r.DOI),
		Titles:             titles(r.Titles),
		Descriptions:       descriptions(r.Descriptions),
		Dates:              dates(r.Dates),
		Subjects:           subjects(r.Subjects),
		Creators:           creators(r.SortedCreators()),
		RelatedIdentifiers: relatedIdentifiers(r.RelatedIdentifiers),
		FundingReferences:  fundingReferences(r.FundingReferences),
		GeoLocations:       geoLocations(r.GeoLocations),
		RightsList:         rightsList(r.Licenses),
		PublicationYear:    strings.TrimSpace(r.PublicationYear),
		Version:            r.Version,
		Language:           r.Language,
		Formats:            nonBlank(r.Formats),
		Sizes:              nonBlank(r.Sizes),
		SchemaVersion:      schemaVersion,
	}
	attrs.Contributors = append(contributors(r.SortedContributors()), contactPersons(r)...)
	if len(attrs.Contributors) == 0 {
		attrs.Contributors = nil
	}
	if name := strings.TrimSpace(r.Publisher); name != "" {
		attrs.Publisher = &Publisher{Name: name}
	}
	if general := strings.TrimSpace(r.ResourceType.General); general != "" {
		attrs.Types = &Types{ResourceTypeGeneral: general, ResourceType: r.ResourceType.Text}
	}

	return &Document{Data: Data{Type: documentType, Attributes: attrs}}, nil
}

// Marshal serializes r and encodes the document as JSON.
func Marshal(r *model.Resource, version string) ([]byte, error) {
	doc, err := Serialize(r, version)
	if err != nil {
		return nil, err
	}
	blob, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "error encoding document")
	}
	return blob, nil
}

// MarshalValid marshals r and validates the result. The document is returned
// along with a *schema.ValidationError when it is not publishable.
func MarshalValid(r *model.Resource, version string, validator schema.Validator) ([]byte, error) {
	blob, err := Marshal(r, version)
	if err != nil {
		return nil, err
	}
	return blob, validator.Validate(blob, version)
}

func titles(in []model.Title) []Title {
	var out []Title
	for _, t := range in {
		value := strings.TrimSpace(t.Value)
		if value == "" {
			continue
		}
		out = append(out, Title{Title: value, TitleType: string(t.Type), Lang: t.Language})
	}
	return out
}

func descriptions(in []model.Description) []Description {
	var out []Description
	for _, d := range in {
		value := strings.TrimSpace(d.Value)
		if value == "" {
			continue
		}
		dt := d.Type
		if dt == "" {
			dt = model.DescriptionTypeAbstract
		}
		out = append(out, Description{Description: value, DescriptionType: string(dt), Lang: d.Language})
	}
	return out
}

func dates(in []model.Date) []Date {
	var out []Date
	for _, d := range in {
		if d.IsEmpty() {
			continue
		}
		raw, err := codec.EncodeModelDate(d)
		if err != nil {
			continue
		}
		out = append(out, Date{Date: raw, DateType: string(d.Type), DateInformation: d.Information})
	}
	return out
}

func subjects(in []model.Subject) []Subject {
	var out []Subject
	for _, s := range in {
		enc := codec.EncodeSubject(s)
		text := enc.Value
		if text == "" {
			text = strings.TrimSpace(enc.Path)
		}
		if text == "" {
			continue
		}
		out = append(out, Subject{
			Subject:            text,
			SubjectScheme:      enc.Scheme,
			SchemeURI:          enc.SchemeURI,
			ValueURI:           enc.ValueURI,
			ClassificationCode: enc.ClassificationCode,
			Lang:               enc.Language,
		})
	}
	return out
}

func creator(a model.Agent) Creator {
	c := Creator{Name: a.Name(), Affiliation: affiliations(a.Affiliations)}
	switch {
	case a.Person != nil:
		c.NameType = nameTypePersonal
		c.GivenName = strings.TrimSpace(a.Person.GivenName)
		c.FamilyName = strings.TrimSpace(a.Person.FamilyName)
		c.NameIdentifiers = nameIdentifiers(a.Person.Identifier, a.Person.IdentifierScheme, a.Person.SchemeURI)
	case a.Institution != nil:
		c.NameType = nameTypeOrganizational
		c.NameIdentifiers = nameIdentifiers(a.Institution.Identifier, a.Institution.IdentifierScheme, a.Institution.SchemeURI)
	}
	return c
}

func creators(in []model.Agent) []Creator {
	var out []Creator
	for _, a := range in {
		out = append(out, creator(a))
	}
	return out
}

func contributors(in []model.Agent) []Contributor {
	var out []Contributor
	for _, a := range in {
		out = append(out, Contributor{Creator: creator(a), ContributorType: a.Role.ContributorType()})
	}
	return out
}

// contactPersons lists the creators acting as contact, unless the resource
// already names them as ContactPerson contributors.
func contactPersons(r *model.Resource) []Contributor {
	known := map[string]bool{}
	for _, a := range r.Contributors {
		if a.Role == model.RoleContactPerson {
			known[a.Name()] = true
		}
	}
	var out []Contributor
	for _, a := range r.SortedCreators() {
		if a.Contact == nil || known[a.Name()] {
			continue
		}
		known[a.Name()] = true
		out = append(out, Contributor{
			Creator:         creator(a),
			ContributorType: model.RoleContactPerson.ContributorType(),
		})
	}
	return out
}

func nameIdentifiers(identifier, scheme, schemeURI string) []NameIdentifier {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil
	}
	return []NameIdentifier{{
		NameIdentifier:       identifier,
		NameIdentifierScheme: scheme,
		SchemeURI:            defaultSchemeURI(scheme, schemeURI),
	}}
}

func affiliations(in []model.Affiliation) []Affiliation {
	var out []Affiliation
	for _, a := range in {
		name := strings.TrimSpace(a.Name)
		if name == "" {
			continue
		}
		aff := Affiliation{Name: name}
		if id := strings.TrimSpace(a.Identifier); id != "" {
			aff.AffiliationIdentifier = id
			aff.AffiliationIdentifierScheme = a.IdentifierScheme
			aff.SchemeURI = defaultSchemeURI(a.IdentifierScheme, a.SchemeURI)
		}
		out = append(out, aff)
	}
	return out
}

func defaultSchemeURI(scheme, schemeURI string) string {
	if schemeURI != "" {
		return schemeURI
	}
	for name, uri := range schemeURIs {
		if strings.EqualFold(name, scheme) {
			return uri
		}
	}
	return ""
}

func relatedIdentifiers(in []model.RelatedIdentifier) []RelatedIdentifier {
	var out []RelatedIdentifier
	for _, ri := range in {
		out = append(out, RelatedIdentifier{
			RelatedIdentifier:     strings.TrimSpace(ri.Identifier),
			RelatedIdentifierType: ri.IdentifierType,
			RelationType:          ri.RelationType,
			ResourceTypeGeneral:   ri.ResourceTypeGeneral,
		})
	}
	return out
}

func fundingReferences(in []model.FundingReference) []FundingReference {
	var out []FundingReference
	for _, fr := range in {
		out = append(out, FundingReference{
			FunderName:           strings.TrimSpace(fr.FunderName),
			FunderIdentifier:     fr.FunderIdentifier,
			FunderIdentifierType: fr.FunderIdentifierType,
			AwardNumber:          fr.AwardNumber,
			AwardURI:             fr.AwardURI,
			AwardTitle:           fr.AwardTitle,
		})
	}
	return out
}

func geoLocations(in []model.GeoLocation) []GeoLocation {
	var out []GeoLocation
	for _, g := range in {
		loc := GeoLocation{GeoLocationPlace: strings.TrimSpace(g.Place)}
		if g.Point != nil {
			loc.GeoLocationPoint = &Point{PointLatitude: g.Point.Latitude, PointLongitude: g.Point.Longitude}
		}
		if g.Box != nil {
			loc.GeoLocationBox = &Box{
				WestBoundLongitude: g.Box.WestLongitude,
				EastBoundLongitude: g.Box.EastLongitude,
				SouthBoundLatitude: g.Box.SouthLatitude,
				NorthBoundLatitude: g.Box.NorthLatitude,
			}
		}
		for _, p := range g.Polygon {
			loc.GeoLocationPolygon = append(loc.GeoLocationPolygon, PolygonPoint{
				PolygonPoint: Point{PointLatitude: p.Latitude, PointLongitude: p.Longitude},
			})
		}
		if loc.GeoLocationPlace == "" && loc.GeoLocationPoint == nil && loc.GeoLocationBox == nil && loc.GeoLocationPolygon == nil {
			continue
		}
		out = append(out, loc)
	}
	return out
}

func rightsList(in []model.License) []Rights {
	var out []Rights
	for _, l := range in {
		r := Rights{
			Rights:                 strings.TrimSpace(l.Rights),
			RightsURI:              strings.TrimSpace(l.RightsURI),
			RightsIdentifier:       l.Identifier,
			RightsIdentifierScheme: l.IdentifierScheme,
			SchemeURI:              l.SchemeURI,
			Lang:                   l.Language,
		}
		if r.Rights == "" && r.RightsURI == "" && r.RightsIdentifier == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

func nonBlank(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
