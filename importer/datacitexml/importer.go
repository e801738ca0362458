package datacitexml

import (
	"encoding/xml"
	"io"
	"strings"

	"github.com/JiscSD/rdss-datacite-transcoder/codec"
	"github.com/JiscSD/rdss-datacite-transcoder/model"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

const (
	nameTypeOrganizational = "Organizational"
	identifierTypeDOI      = "DOI"
)

// Result is the outcome of an import. Issues lists the elements that were
// skipped or kept in an incomplete state, the import itself succeeded.
type Result struct {
	Resource *model.Resource
	Issues   []error
}

type Importer struct {
	logger logrus.FieldLogger
}

func NewImporter(logger logrus.FieldLogger) *Importer {
	return &Importer{logger: logger}
}

// Import decodes the first resource element found in r.
func (i *Importer) Import(r io.Reader) (*Result, error) {
	doc, err := decodeResource(r)
	if err != nil {
		return nil, err
	}
	b := &builder{logger: i.logger, res: model.New()}
	b.build(doc)
	return &Result{Resource: b.res, Issues: b.issues}, nil
}

// decodeResource walks the token stream until it finds a resource element, so
// that OAI-PMH envelopes are accepted too.
func decodeResource(r io.Reader) (*xmlResource, error) {
	decoder := xml.NewDecoder(r)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return nil, &MalformedXMLError{Reason: "no resource element found"}
		}
		if err != nil {
			return nil, malformed(err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "resource" {
			continue
		}
		var doc xmlResource
		if err := decoder.DecodeElement(&doc, &start); err != nil {
			return nil, malformed(err)
		}
		if err := drain(decoder); err != nil {
			return nil, err
		}
		return &doc, nil
	}
}

// drain reads the remainder of the stream so that enclosing envelopes and
// trailing content are checked for well-formedness too.
func drain(decoder *xml.Decoder) error {
	for {
		if _, err := decoder.Token(); err != nil {
			if err == io.EOF {
				return nil
			}
			return malformed(err)
		}
	}
}

func malformed(err error) error {
	e := &MalformedXMLError{Err: err}
	if syntaxErr, ok := err.(*xml.SyntaxError); ok {
		e.Line = syntaxErr.Line
	}
	return e
}

type builder struct {
	logger logrus.FieldLogger
	res    *model.Resource
	issues []error
}

func (b *builder) issue(element string, err error) {
	b.logger.WithField("element", element).WithError(err).Warn("Incomplete element in DataCite XML")
	b.issues = append(b.issues, err)
}

func (b *builder) build(doc *xmlResource) {
	res := b.res

	idType := strings.TrimSpace(doc.Identifier.IdentifierType)
	if idType == "" || strings.EqualFold(idType, identifierTypeDOI) {
		res.DOI = strings.TrimSpace(doc.Identifier.Value)
	}
	res.Publisher = strings.TrimSpace(doc.Publisher)
	res.PublicationYear = strings.TrimSpace(doc.PublicationYear)
	res.ResourceType = model.ResourceType{
		General: strings.TrimSpace(doc.ResourceType.ResourceTypeGeneral),
		Text:    strings.TrimSpace(doc.ResourceType.Value),
	}
	res.Language = strings.TrimSpace(doc.Language)
	res.Version = strings.TrimSpace(doc.Version)
	res.Formats = trimAll(doc.Formats)
	res.Sizes = trimAll(doc.Sizes)

	for _, t := range doc.Titles {
		value := strings.TrimSpace(t.Value)
		if value == "" {
			continue
		}
		res.Titles = append(res.Titles, model.Title{
			Value:    value,
			Type:     model.ParseTitleType(t.TitleType),
			Language: strings.TrimSpace(t.Lang),
		})
	}

	for _, d := range doc.Descriptions {
		value := strings.TrimSpace(d.Value)
		if value == "" {
			continue
		}
		res.Descriptions = append(res.Descriptions, model.Description{
			Value:    value,
			Type:     model.ParseDescriptionType(d.DescriptionType),
			Language: strings.TrimSpace(d.Lang),
		})
	}

	for _, d := range doc.Dates {
		b.addDate(d)
	}

	for _, s := range doc.Subjects {
		b.addSubject(s)
	}

	for n, c := range doc.Creators {
		res.Creators = append(res.Creators, b.agent(c, model.RoleCreator, n+1))
	}
	for n, c := range doc.Contributors {
		res.Contributors = append(res.Contributors, b.agent(c, model.ParseContributorType(c.ContributorType), n+1))
	}

	for _, ri := range doc.RelatedIdentifiers {
		value := strings.TrimSpace(ri.Value)
		if value == "" {
			continue
		}
		res.RelatedIdentifiers = append(res.RelatedIdentifiers, model.RelatedIdentifier{
			Identifier:          value,
			IdentifierType:      strings.TrimSpace(ri.RelatedIdentifierType),
			RelationType:        strings.TrimSpace(ri.RelationType),
			ResourceTypeGeneral: strings.TrimSpace(ri.ResourceTypeGeneral),
		})
	}

	for _, fr := range doc.FundingReferences {
		name := strings.TrimSpace(fr.FunderName)
		if name == "" {
			continue
		}
		res.FundingReferences = append(res.FundingReferences, model.FundingReference{
			FunderName:           name,
			FunderIdentifier:     strings.TrimSpace(fr.FunderIdentifier.Value),
			FunderIdentifierType: strings.TrimSpace(fr.FunderIdentifier.FunderIdentifierType),
			AwardNumber:          strings.TrimSpace(fr.AwardNumber.Value),
			AwardURI:             strings.TrimSpace(fr.AwardNumber.AwardURI),
			AwardTitle:           strings.TrimSpace(fr.AwardTitle),
		})
	}

	for _, r := range doc.RightsList {
		l := model.License{
			Rights:           strings.TrimSpace(r.Value),
			RightsURI:        strings.TrimSpace(r.RightsURI),
			Identifier:       strings.TrimSpace(r.RightsIdentifier),
			IdentifierScheme: strings.TrimSpace(r.RightsIdentifierScheme),
			SchemeURI:        strings.TrimSpace(r.SchemeURI),
			Language:         strings.TrimSpace(r.Lang),
		}
		if l.Rights == "" && l.RightsURI == "" && l.Identifier == "" {
			continue
		}
		res.Licenses = append(res.Licenses, l)
	}

	for _, g := range doc.GeoLocations {
		b.addGeoLocation(g)
	}
}

func (b *builder) addDate(d xmlDate) {
	raw := strings.TrimSpace(d.Value)
	if raw == "" {
		return
	}
	dateType, ok := model.ParseDateType(d.DateType)
	if !ok {
		// Kept verbatim, the schema decides whether the type exists in the
		// target version.
		dateType = model.DateType(strings.TrimSpace(d.DateType))
	}
	date, err := codec.DecodeDateValue(raw, dateType, d.DateInformation)
	if err != nil {
		b.issue("date", err)
		return
	}
	b.res.Dates = append(b.res.Dates, date)
}

func (b *builder) addSubject(s xmlSubject) {
	text := strings.TrimSpace(s.Value)
	if text == "" {
		return
	}
	subject := model.Subject{
		Value:              text,
		Language:           strings.TrimSpace(s.Lang),
		Scheme:             strings.TrimSpace(s.SubjectScheme),
		SchemeURI:          strings.TrimSpace(s.SchemeURI),
		ValueURI:           strings.TrimSpace(s.ValueURI),
		ClassificationCode: strings.TrimSpace(s.ClassificationCode),
	}
	if subject.HasSchemeAttributes() {
		subject.Path = text
	}
	kind, err := codec.ClassifySubject(subject)
	subject.Kind = kind
	if err != nil {
		b.issue("subject", err)
	}
	b.res.Subjects = append(b.res.Subjects, subject)
}

func (b *builder) agent(a xmlAgent, role model.Role, position int) model.Agent {
	name := a.name()
	display := strings.TrimSpace(name.Value)
	identifier, scheme, schemeURI := nameIdentifier(a.NameIdentifiers)

	var ret model.Agent
	if strings.EqualFold(strings.TrimSpace(name.NameType), nameTypeOrganizational) {
		ret = model.NewInstitution(model.Institution{
			Name:             display,
			Identifier:       identifier,
			IdentifierScheme: scheme,
			SchemeURI:        schemeURI,
		}, role, position)
	} else {
		person := model.Person{
			GivenName:        strings.TrimSpace(a.GivenName),
			FamilyName:       strings.TrimSpace(a.FamilyName),
			Identifier:       identifier,
			IdentifierScheme: scheme,
			SchemeURI:        schemeURI,
		}
		if person.GivenName == "" && person.FamilyName == "" {
			person.FamilyName, person.GivenName = splitDisplayName(display)
		}
		ret = model.NewPerson(person, role, position)
	}

	for _, aff := range a.Affiliations {
		value := strings.TrimSpace(aff.Value)
		if value == "" {
			if id := strings.TrimSpace(aff.AffiliationIdentifier); id != "" {
				b.issue("affiliation", errors.Errorf("affiliation %q of %q has no name", id, display))
			}
			continue
		}
		ret.Affiliations = append(ret.Affiliations, model.Affiliation{
			Name:             value,
			Identifier:       strings.TrimSpace(aff.AffiliationIdentifier),
			IdentifierScheme: strings.TrimSpace(aff.AffiliationIdentifierScheme),
			SchemeURI:        strings.TrimSpace(aff.SchemeURI),
		})
	}
	return ret
}

// splitDisplayName reads a DataCite "Family, Given" name. Without a comma the
// whole name is the family name.
func splitDisplayName(name string) (family, given string) {
	if i := strings.Index(name, ","); i >= 0 {
		return strings.TrimSpace(name[:i]), strings.TrimSpace(name[i+1:])
	}
	return name, ""
}

func nameIdentifier(ids []xmlNameIdentifier) (identifier, scheme, schemeURI string) {
	for _, id := range ids {
		if value := strings.TrimSpace(id.Value); value != "" {
			return value, strings.TrimSpace(id.NameIdentifierScheme), strings.TrimSpace(id.SchemeURI)
		}
	}
	return "", "", ""
}

func (b *builder) addGeoLocation(g xmlGeoLocation) {
	loc := model.GeoLocation{Place: strings.TrimSpace(g.Place)}
	if g.Point != nil {
		p, err := point(*g.Point)
		if err != nil {
			b.issue("geoLocationPoint", err)
		} else {
			loc.Point = p
		}
	}
	if g.Box != nil {
		box, err := boundingBox(*g.Box)
		if err != nil {
			b.issue("geoLocationBox", err)
		} else {
			loc.Box = box
		}
	}
	if g.Polygon != nil {
		var polygon []model.Point
		for _, pp := range g.Polygon.Points {
			p, err := point(pp)
			if err != nil {
				b.issue("geoLocationPolygon", err)
				polygon = nil
				break
			}
			polygon = append(polygon, *p)
		}
		loc.Polygon = polygon
	}
	if loc.Place == "" && loc.Point == nil && loc.Box == nil && loc.Polygon == nil {
		return
	}
	b.res.GeoLocations = append(b.res.GeoLocations, loc)
}

// point reads kernel 4 child elements, or the kernel 3 "lat long" text.
func point(p xmlPoint) (*model.Point, error) {
	lat, long := p.Latitude, p.Longitude
	if strings.TrimSpace(lat) == "" && strings.TrimSpace(long) == "" {
		fields := strings.Fields(p.Text)
		if len(fields) != 2 {
			return nil, errors.Errorf("invalid point %q", strings.TrimSpace(p.Text))
		}
		lat, long = fields[0], fields[1]
	}
	coords, err := floats(lat, long)
	if err != nil {
		return nil, err
	}
	return &model.Point{Latitude: coords[0], Longitude: coords[1]}, nil
}

// boundingBox reads kernel 4 child elements, or the kernel 3
// "south west north east" text.
func boundingBox(b xmlBox) (*model.Box, error) {
	west, east, south, north := b.WestBoundLongitude, b.EastBoundLongitude, b.SouthBoundLatitude, b.NorthBoundLatitude
	if strings.TrimSpace(west+east+south+north) == "" {
		fields := strings.Fields(b.Text)
		if len(fields) != 4 {
			return nil, errors.Errorf("invalid box %q", strings.TrimSpace(b.Text))
		}
		south, west, north, east = fields[0], fields[1], fields[2], fields[3]
	}
	coords, err := floats(west, east, south, north)
	if err != nil {
		return nil, err
	}
	return &model.Box{
		WestLongitude: coords[0],
		EastLongitude: coords[1],
		SouthLatitude: coords[2],
		NorthLatitude: coords[3],
	}, nil
}

func floats(values ...string) ([]float64, error) {
	ret := make([]float64, len(values))
	for n, v := range values {
		f, err := cast.ToFloat64E(strings.TrimSpace(v))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid coordinate %q", v)
		}
		ret[n] = f
	}
	return ret, nil
}

func trimAll(values []string) []string {
	var ret []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			ret = append(ret, v)
		}
	}
	return ret
}
