package datacitexml_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/JiscSD/rdss-datacite-transcoder/codec"
	"github.com/JiscSD/rdss-datacite-transcoder/importer/datacitexml"
	"github.com/JiscSD/rdss-datacite-transcoder/internal/testutil"
	"github.com/JiscSD/rdss-datacite-transcoder/model"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func importFixture(t *testing.T, name string) *datacitexml.Result {
	t.Helper()
	logger, _ := test.NewNullLogger()
	res, err := datacitexml.NewImporter(logger).Import(bytes.NewReader(testutil.Fixture(t, name)))
	require.NoError(t, err)
	return res
}

func importString(t *testing.T, doc string) (*datacitexml.Result, error) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	return datacitexml.NewImporter(logger).Import(strings.NewReader(doc))
}

func TestImport_Kernel4(t *testing.T) {
	res := importFixture(t, "datacite/kernel4.xml")
	r := res.Resource

	assert.Equal(t, "10.5880/GFZ.4.8.2023.001", r.DOI)
	assert.Equal(t, "GFZ Data Services", r.Publisher)
	assert.Equal(t, "2023", r.PublicationYear)
	assert.Equal(t, model.ResourceType{General: "Dataset", Text: "Dataset"}, r.ResourceType)
	assert.Equal(t, "en", r.Language)
	assert.Equal(t, "1.0", r.Version)
	assert.Equal(t, []string{"12 MB"}, r.Sizes)
	assert.Equal(t, []string{"text/csv"}, r.Formats)
	assert.Equal(t, []model.Title{
		{Value: "Triaxial deformation of coal", Type: model.TitleTypeMain, Language: "en"},
		{Value: "Raw data", Type: model.TitleTypeSubtitle, Language: "en"},
	}, r.Titles)
	assert.Equal(t, []model.Description{
		{Value: "Stress-strain curves of coal samples.", Type: model.DescriptionTypeAbstract, Language: "en"},
		{Value: "Triaxial press.", Type: model.DescriptionTypeMethods},
	}, r.Descriptions)
	assert.Equal(t, []model.RelatedIdentifier{{
		Identifier:     "10.1029/2019JB018000",
		IdentifierType: "DOI",
		RelationType:   "IsSupplementTo",
	}}, r.RelatedIdentifiers)
	assert.Equal(t, []model.FundingReference{{
		FunderName:           "European Commission",
		FunderIdentifier:     "https://doi.org/10.13039/501100000780",
		FunderIdentifierType: "Crossref Funder ID",
		AwardNumber:          "871121",
		AwardURI:             "https://cordis.europa.eu/project/id/871121",
		AwardTitle:           "EPOS Sustainability Phase",
	}}, r.FundingReferences)
	assert.Equal(t, []model.License{{
		Rights:           "Creative Commons Attribution 4.0 International",
		RightsURI:        "https://creativecommons.org/licenses/by/4.0/",
		Identifier:       "CC-BY-4.0",
		IdentifierScheme: "SPDX",
		SchemeURI:        "https://spdx.org/licenses/",
		Language:         "en",
	}}, r.Licenses)
	assert.Equal(t, []model.GeoLocation{
		{Place: "Utrecht", Point: &model.Point{Latitude: 52.08, Longitude: 5.17}},
		{Box: &model.Box{WestLongitude: 5.0, EastLongitude: 5.5, SouthLatitude: 51.9, NorthLatitude: 52.2}},
	}, r.GeoLocations)
}

func TestImport_Dates(t *testing.T) {
	res := importFixture(t, "datacite/kernel4.xml")

	assert.Equal(t, []model.Date{
		{Type: model.DateTypeCollected, Start: "2010", End: "2020"},
		{Type: model.DateTypeAvailable, End: "2017-03-01"},
		{Type: model.DateTypeOther, Start: "2015-06", Information: "Coverage"},
	}, res.Resource.Dates)

	var dateErr *codec.DateFormatError
	var found bool
	for _, issue := range res.Issues {
		if errors.As(issue, &dateErr) {
			found = true
			assert.Equal(t, "sometime in 2019", dateErr.Raw)
		}
	}
	assert.True(t, found)

	raw, err := codec.EncodeModelDate(res.Resource.Dates[0])
	require.NoError(t, err)
	assert.Equal(t, "2010/2020", raw)
}

func TestImport_Subjects(t *testing.T) {
	res := importFixture(t, "datacite/kernel4.xml")
	subjects := res.Resource.Subjects

	require.Len(t, subjects, 4)
	assert.Equal(t, model.Subject{Value: "Seismology", Kind: model.SubjectFree}, subjects[0])

	assert.Equal(t, model.SubjectControlled, subjects[1].Kind)
	assert.Equal(t, "Science Keywords > EARTH SCIENCE > ATMOSPHERE > CLOUDS", subjects[1].Path)
	assert.Equal(t, "en", subjects[1].Language)

	assert.Equal(t, model.SubjectControlled, subjects[2].Kind)
	assert.Equal(t, "https://epos-msl.uu.nl/voc/materials/1.3/coal", subjects[2].ValueURI)

	assert.Equal(t, model.SubjectIncomplete, subjects[3].Kind)
	var schemeErr *codec.UnrecognizedVocabularySchemeError
	var found bool
	for _, issue := range res.Issues {
		if errors.As(issue, &schemeErr) {
			found = true
			assert.Equal(t, "Science Keywords", schemeErr.Scheme)
		}
	}
	assert.True(t, found)

	assert.Equal(t, []string{"Seismology"}, codec.ExtractFreeKeywords(subjects))
	gcmd := codec.ExtractControlledKeywords(subjects, "Science Keywords")
	require.Len(t, gcmd, 1)
	assert.Equal(t, "CLOUDS", gcmd[0].Text)
	assert.Equal(t, "EARTH SCIENCE > ATMOSPHERE > CLOUDS", gcmd[0].Path)
	msl := codec.ExtractControlledKeywords(subjects, "EPOS MSL vocabulary")
	require.Len(t, msl, 1)
	assert.Equal(t, "coal", msl[0].Text)
}

func TestImport_Agents(t *testing.T) {
	r := importFixture(t, "datacite/kernel4.xml").Resource

	require.Len(t, r.Creators, 3)
	curie := r.Creators[0]
	assert.Equal(t, model.AgentPerson, curie.Kind())
	assert.Equal(t, model.RoleCreator, curie.Role)
	assert.Equal(t, 1, curie.Position)
	assert.Equal(t, &model.Person{
		GivenName:        "Marie",
		FamilyName:       "Curie",
		Identifier:       "0000-0002-1825-0097",
		IdentifierScheme: "ORCID",
		SchemeURI:        "https://orcid.org",
	}, curie.Person)
	assert.Equal(t, []model.Affiliation{
		{
			Name:             "GFZ German Research Centre for Geosciences",
			Identifier:       "https://ror.org/04z8jg394",
			IdentifierScheme: "ROR",
			SchemeURI:        "https://ror.org",
		},
		{
			Name:             "OGS National Institute of Oceanography",
			Identifier:       "https://ror.org/04y4t7k95",
			IdentifierScheme: "ROR",
			SchemeURI:        "https://ror.org",
		},
	}, curie.Affiliations)

	assert.Equal(t, &model.Person{GivenName: "Ada", FamilyName: "Lovelace"}, r.Creators[1].Person)
	assert.Equal(t, 2, r.Creators[1].Position)
	assert.Equal(t, &model.Institution{Name: "EPOS Multi-scale Laboratories"}, r.Creators[2].Institution)

	require.Len(t, r.Contributors, 3)
	assert.Equal(t, model.RoleContactPerson, r.Contributors[0].Role)
	assert.Equal(t, model.RoleHostingInstitution, r.Contributors[1].Role)
	assert.Equal(t, &model.Institution{
		Name:             "GFZ German Research Centre for Geosciences",
		Identifier:       "https://ror.org/04z8jg394",
		IdentifierScheme: "ROR",
	}, r.Contributors[1].Institution)
	assert.Equal(t, model.RoleOther, r.Contributors[2].Role)
	assert.Equal(t, 3, r.Contributors[2].Position)
}

func TestImport_OAIKernel3(t *testing.T) {
	r := importFixture(t, "datacite/oai_kernel3.xml").Resource

	assert.Equal(t, "10.1594/PANGAEA.000001", r.DOI)
	assert.Equal(t, []model.Title{{Value: "Polar observations"}}, r.Titles)
	require.Len(t, r.Creators, 1)
	assert.Equal(t, "Wegener, Alfred", r.Creators[0].Name())
	assert.Equal(t, []model.Affiliation{{Name: "Alfred Wegener Institute"}}, r.Creators[0].Affiliations)
	assert.Equal(t, []model.GeoLocation{{
		Point: &model.Point{Latitude: 71.5, Longitude: -42.0},
		Box:   &model.Box{SouthLatitude: 60.0, WestLongitude: -73.0, NorthLatitude: 84.0, EastLongitude: -11.0},
	}}, r.GeoLocations)
}

func TestImport_FreeKeywordScenario(t *testing.T) {
	res, err := importString(t, `<resource><subjects><subject>Seismology</subject></subjects></resource>`)
	require.NoError(t, err)
	assert.Empty(t, res.Issues)

	subjects := res.Resource.Subjects
	assert.Equal(t, []string{"Seismology"}, codec.ExtractFreeKeywords(subjects))
	for _, v := range codec.Vocabularies() {
		assert.Empty(t, codec.ExtractControlledKeywords(subjects, v.ID), v.ID)
	}
}

func TestImport_BestEffort(t *testing.T) {
	doc := `<resource xmlns="http://datacite.org/schema/kernel-4">
  <titles><title>  </title><title titleType="MainTitle">Kept</title></titles>
  <creators><creator><creatorName/></creator></creators>
  <dates><date>2020</date></dates>
  <geoLocations>
    <geoLocation><geoLocationPlace>Nowhere</geoLocationPlace><geoLocationPoint>north</geoLocationPoint></geoLocation>
  </geoLocations>
</resource>`

	res, err := importString(t, doc)
	require.NoError(t, err)

	r := res.Resource
	assert.Equal(t, []model.Title{{Value: "Kept"}}, r.Titles)
	require.Len(t, r.Creators, 1)
	assert.Equal(t, "", r.Creators[0].Name())
	assert.Equal(t, []model.Date{{Start: "2020"}}, r.Dates)
	assert.Equal(t, []model.GeoLocation{{Place: "Nowhere"}}, r.GeoLocations)
	assert.Len(t, res.Issues, 1)
}

func TestImport_UnnamedAffiliation(t *testing.T) {
	doc := `<resource xmlns="http://datacite.org/schema/kernel-4">
  <creators><creator>
    <creatorName nameType="Personal">Curie, Marie</creatorName>
    <affiliation affiliationIdentifier="https://ror.org/04y4t7k95" affiliationIdentifierScheme="ROR"/>
    <affiliation/>
    <affiliation>GFZ</affiliation>
  </creator></creators>
</resource>`

	res, err := importString(t, doc)
	require.NoError(t, err)

	require.Len(t, res.Resource.Creators, 1)
	assert.Equal(t, []model.Affiliation{{Name: "GFZ"}}, res.Resource.Creators[0].Affiliations)
	require.Len(t, res.Issues, 1)
	assert.EqualError(t, res.Issues[0], `affiliation "https://ror.org/04y4t7k95" of "Curie, Marie" has no name`)
}

func TestImport_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unclosed element", string(testutil.Fixture(t, "datacite/malformed.xml"))},
		{"no resource", `<?xml version="1.0"?><record><title>x</title></record>`},
		{"empty", ``},
		{"garbage", `this is not xml`},
		{"trailing garbage", `<resource><titles><title>T</title></titles></resource><broken attr=</oops`},
		{"unclosed envelope", `<OAI-PMH><GetRecord><record><metadata><resource><titles><title>T</title></titles></resource>`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := importString(t, tc.doc)
			assert.Nil(t, res)
			var malformed *datacitexml.MalformedXMLError
			require.True(t, errors.As(err, &malformed), "%v", err)
		})
	}
}

func TestMalformedXMLError(t *testing.T) {
	_, err := importString(t, string(testutil.Fixture(t, "datacite/malformed.xml")))
	var malformed *datacitexml.MalformedXMLError
	require.True(t, errors.As(err, &malformed))
	assert.True(t, malformed.Line > 0)
	assert.Contains(t, err.Error(), "malformed DataCite XML (line ")
}
