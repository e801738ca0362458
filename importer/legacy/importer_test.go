package legacy_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/JiscSD/rdss-datacite-transcoder/importer/legacy"
	"github.com/JiscSD/rdss-datacite-transcoder/model"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	agents []legacy.AgentRow
	dates  []legacy.DateRow
	err    error
}

func (s *fakeSource) Agents(ctx context.Context, datasetKey string) ([]legacy.AgentRow, error) {
	return s.agents, s.err
}

func (s *fakeSource) Dates(ctx context.Context, datasetKey string) ([]legacy.DateRow, error) {
	return s.dates, s.err
}

// blockingSource waits for the context to expire.
type blockingSource struct{}

func (blockingSource) Agents(ctx context.Context, datasetKey string) ([]legacy.AgentRow, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingSource) Dates(ctx context.Context, datasetKey string) ([]legacy.DateRow, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func newImporter(source legacy.Source, opts ...legacy.Option) *legacy.Importer {
	logger, _ := test.NewNullLogger()
	return legacy.NewImporter(logger, source, opts...)
}

func TestImporter_AffiliationsAreNeverMerged(t *testing.T) {
	source := &fakeSource{agents: []legacy.AgentRow{{
		ID:         1,
		Role:       "author",
		AgentOrder: 1,
		GivenName:  "Marie",
		FamilyName: "Curie",
		Affiliations: []legacy.AffiliationRow{
			{Name: "GFZ", RORID: "https://ror.org/04z8jg394"},
			{Name: "OGS", RORID: "https://ror.org/04y4t7k95"},
		},
	}}}

	res, err := newImporter(source).Import(context.Background(), "key")
	require.NoError(t, err)
	require.Len(t, res.Creators, 1)
	assert.Equal(t, []model.Affiliation{
		{Name: "GFZ", Identifier: "https://ror.org/04z8jg394", IdentifierScheme: "ROR", SchemeURI: "https://ror.org"},
		{Name: "OGS", Identifier: "https://ror.org/04y4t7k95", IdentifierScheme: "ROR", SchemeURI: "https://ror.org"},
	}, res.Creators[0].Affiliations)
}

func TestImporter_AffiliationCount(t *testing.T) {
	for n := 0; n <= 5; n++ {
		t.Run(fmt.Sprintf("%d rows", n), func(t *testing.T) {
			row := legacy.AgentRow{ID: 1, Role: "author", GivenName: "Ada", FamilyName: "Lovelace"}
			for i := 0; i < n; i++ {
				row.Affiliations = append(row.Affiliations, legacy.AffiliationRow{
					Name:  fmt.Sprintf("Institute %d", i),
					RORID: fmt.Sprintf("https://ror.org/%02d", i),
				})
			}

			res, err := newImporter(&fakeSource{agents: []legacy.AgentRow{row}}).Import(context.Background(), "key")
			require.NoError(t, err)
			require.Len(t, res.Creators, 1)
			affiliations := res.Creators[0].Affiliations
			require.Len(t, affiliations, n)
			for i, aff := range affiliations {
				assert.Equal(t, fmt.Sprintf("https://ror.org/%02d", i), aff.Identifier)
			}
		})
	}
}

func TestImporter_UnnamedAffiliationIsReported(t *testing.T) {
	source := &fakeSource{agents: []legacy.AgentRow{{
		ID:         7,
		Role:       "author",
		GivenName:  "Marie",
		FamilyName: "Curie",
		Affiliations: []legacy.AffiliationRow{
			{Name: "GFZ"},
			{RORID: "https://ror.org/04y4t7k95"},
		},
	}}}

	res, err := newImporter(source).Import(context.Background(), "key")
	require.NoError(t, err)
	require.Len(t, res.Creators, 1)
	assert.Len(t, res.Creators[0].Affiliations, 2)
	require.Len(t, res.Issues, 1)
	assert.EqualError(t, res.Issues[0], "affiliation 2 of agent 7 has no name")
}

func TestImporter_OrdersByAgentOrder(t *testing.T) {
	source := &fakeSource{agents: []legacy.AgentRow{
		{ID: 1, Role: "author", AgentOrder: 3, CombinedName: "Third Author"},
		{ID: 2, Role: "author", AgentOrder: 1, CombinedName: "First Author"},
		{ID: 3, Role: "curator", AgentOrder: 1, CombinedName: "Curator, Carl"},
		{ID: 4, Role: "author", AgentOrder: 2, CombinedName: "Second Author"},
	}}

	res, err := newImporter(source).Import(context.Background(), "key")
	require.NoError(t, err)

	var names []string
	for _, a := range res.Creators {
		names = append(names, a.Name())
	}
	assert.Equal(t, []string{"Author, First", "Author, Second", "Author, Third"}, names)
	assert.Equal(t, 1, res.Creators[0].Position)
	assert.Equal(t, 3, res.Creators[2].Position)

	require.Len(t, res.Contributors, 1)
	assert.Equal(t, model.RoleDataCurator, res.Contributors[0].Role)
	assert.Equal(t, "Curator, Carl", res.Contributors[0].Name())
}

func TestImporter_EmptyDataset(t *testing.T) {
	res, err := newImporter(&fakeSource{}).Import(context.Background(), "missing")
	require.NoError(t, err)
	assert.NotNil(t, res.Creators)
	assert.Empty(t, res.Creators)
	assert.NotNil(t, res.Contributors)
	assert.Empty(t, res.Contributors)
	assert.Empty(t, res.Dates)
}

func TestImporter_SourceUnavailable(t *testing.T) {
	_, err := newImporter(&fakeSource{err: errors.New("connection refused")}).Import(context.Background(), "key")

	var sue *legacy.SourceUnavailableError
	require.True(t, errors.As(err, &sue))
	assert.True(t, sue.Temporary())
	assert.EqualError(t, err, "legacy source unavailable: connection refused")
}

func TestImporter_Timeout(t *testing.T) {
	imp := newImporter(blockingSource{}, legacy.WithTimeout(10*time.Millisecond))

	_, err := imp.Import(context.Background(), "key")

	var sue *legacy.SourceUnavailableError
	require.True(t, errors.As(err, &sue))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestImporter_Dates(t *testing.T) {
	source := &fakeSource{dates: []legacy.DateRow{
		{DateType: "collected", Value: "2010/2020"},
		{DateType: "Available", Value: "/2017-03-01", Information: " embargo "},
		{DateType: "Issued", Value: "2019-13"},
		{DateType: "Issued", Value: ""},
	}}

	res, err := newImporter(source).Import(context.Background(), "key")
	require.NoError(t, err)
	assert.Equal(t, []model.Date{
		{Type: model.DateTypeCollected, Start: "2010", End: "2020"},
		{Type: model.DateTypeAvailable, End: "2017-03-01", Information: "embargo"},
	}, res.Dates)
	require.Len(t, res.Issues, 1)
}

func TestImporter_InstitutionsAndContacts(t *testing.T) {
	source := &fakeSource{agents: []legacy.AgentRow{
		{ID: 1, Role: "hostingInstitution", CombinedName: "GFZ Data Services", Website: "https://dataservices.gfz-potsdam.de"},
		{ID: 2, Role: "author", NameType: "Organization", CombinedName: "EPOS", Identifier: "https://ror.org/0xyz", IdentifierScheme: "ROR"},
		{ID: 3, Role: "author", GivenName: "Marie", FamilyName: "Curie", Email: "curie@example.org"},
		{ID: 4, Role: "unknown-code", CombinedName: "Jane Q. Public"},
		{ID: 5, Role: "author"},
	}}

	res, err := newImporter(source).Import(context.Background(), "key")
	require.NoError(t, err)

	require.Len(t, res.Contributors, 2)
	host := res.Contributors[0]
	assert.Equal(t, model.AgentInstitution, host.Kind())
	assert.Equal(t, model.RoleHostingInstitution, host.Role)
	assert.Equal(t, &model.Contact{Website: "https://dataservices.gfz-potsdam.de"}, host.Contact)

	other := res.Contributors[1]
	assert.Equal(t, model.RoleOther, other.Role)
	assert.Equal(t, &model.Person{GivenName: "Jane Q.", FamilyName: "Public"}, other.Person)

	require.Len(t, res.Creators, 2)
	assert.Equal(t, &model.Institution{Name: "EPOS", Identifier: "https://ror.org/0xyz", IdentifierScheme: "ROR"}, res.Creators[0].Institution)
	assert.Equal(t, &model.Contact{Email: "curie@example.org"}, res.Creators[1].Contact)

	require.Len(t, res.Issues, 1)
}

func TestImporter_CustomRoleMapping(t *testing.T) {
	m, err := legacy.LoadRoleMapping([]byte("roles:\n  owner: rights-holder\n"))
	require.NoError(t, err)
	source := &fakeSource{agents: []legacy.AgentRow{
		{ID: 1, Role: "OWNER", CombinedName: "Doe, Jane"},
		{ID: 2, Role: "author", CombinedName: "Roe, Richard"},
	}}

	res, err := newImporter(source, legacy.WithRoleMapping(m)).Import(context.Background(), "key")
	require.NoError(t, err)
	require.Len(t, res.Contributors, 2)
	assert.Equal(t, model.RoleRightsHolder, res.Contributors[0].Role)
	assert.Equal(t, model.RoleOther, res.Contributors[1].Role)
}

func TestResult_Apply(t *testing.T) {
	res, err := newImporter(&fakeSource{
		agents: []legacy.AgentRow{{ID: 1, Role: "author", CombinedName: "Doe, Jane"}},
		dates:  []legacy.DateRow{{DateType: "Issued", Value: "2020"}},
	}).Import(context.Background(), "key")
	require.NoError(t, err)

	r := model.New()
	editor := model.NewPerson(model.Person{FamilyName: "Roe"}, model.RoleEditor, 1)
	r.Contributors = []model.Agent{editor}
	res.Apply(r)
	assert.Len(t, r.Creators, 1)
	assert.Equal(t, []model.Agent{editor}, r.Contributors)
	assert.Equal(t, []model.Date{{Type: model.DateTypeIssued, Start: "2020"}}, r.Dates)
}
