package legacy_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/JiscSD/rdss-datacite-transcoder/importer/legacy"
	"github.com/JiscSD/rdss-datacite-transcoder/internal/testutil"
	"github.com/JiscSD/rdss-datacite-transcoder/model"

	"github.com/cenkalti/backoff/v3"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteSource(path string) *legacy.SQLiteSource {
	logger, _ := test.NewNullLogger()
	return legacy.NewSQLiteSource(logger, path, legacy.WithBackOff(func() backoff.BackOff {
		return &backoff.StopBackOff{}
	}))
}

func TestSQLiteSource_Agents(t *testing.T) {
	source := newSQLiteSource(testutil.LegacyDatabase(t, "legacy/dataset.sql"))

	agents, err := source.Agents(context.Background(), "gfz-2019-001")
	require.NoError(t, err)
	require.Len(t, agents, 4)

	curie := agents[1]
	assert.Equal(t, legacy.AgentRow{
		ID:               11,
		Role:             "Author",
		AgentOrder:       1,
		NameType:         "person",
		GivenName:        "Marie",
		FamilyName:       "Curie",
		Identifier:       "0000-0002-1825-0097",
		IdentifierScheme: "ORCID",
		Email:            "curie@example.org",
		Affiliations: []legacy.AffiliationRow{
			{Name: "GFZ", RORID: "https://ror.org/04z8jg394"},
			{Name: "OGS", RORID: "https://ror.org/04y4t7k95"},
		},
	}, curie)
	assert.Empty(t, agents[0].Affiliations)

	agents, err = source.Agents(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Empty(t, agents)
}

func TestSQLiteSource_Dates(t *testing.T) {
	source := newSQLiteSource(testutil.LegacyDatabase(t, "legacy/dataset.sql"))

	dates, err := source.Dates(context.Background(), "gfz-2019-001")
	require.NoError(t, err)
	assert.Equal(t, []legacy.DateRow{
		{DateType: "Collected", Value: "2010/2020"},
		{DateType: "available", Value: "/2017-03-01", Information: "embargo end"},
		{DateType: "Issued", Value: "not a date"},
	}, dates)
}

func TestSQLiteSource_Unavailable(t *testing.T) {
	source := newSQLiteSource(filepath.Join(t.TempDir(), "missing.db"))

	_, err := source.Agents(context.Background(), "gfz-2019-001")

	var sue *legacy.SourceUnavailableError
	require.True(t, errors.As(err, &sue))
	assert.True(t, sue.Temporary())
}

func TestSQLiteSource_CanceledContext(t *testing.T) {
	source := newSQLiteSource(testutil.LegacyDatabase(t, "legacy/dataset.sql"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := source.Dates(ctx, "gfz-2019-001")

	var sue *legacy.SourceUnavailableError
	require.True(t, errors.As(err, &sue))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestImporter_SQLite(t *testing.T) {
	logger, _ := test.NewNullLogger()
	source := newSQLiteSource(testutil.LegacyDatabase(t, "legacy/dataset.sql"))

	res, err := legacy.NewImporter(logger, source).Import(context.Background(), "gfz-2019-001")
	require.NoError(t, err)

	require.Len(t, res.Creators, 2)
	assert.Equal(t, "Curie, Marie", res.Creators[0].Name())
	assert.Len(t, res.Creators[0].Affiliations, 2)
	assert.Equal(t, "Lovelace, Ada", res.Creators[1].Name())

	require.Len(t, res.Contributors, 2)
	assert.Equal(t, model.RoleDataCurator, res.Contributors[0].Role)
	assert.Equal(t, &model.Person{GivenName: "Alfred", FamilyName: "Wegener"}, res.Contributors[0].Person)
	assert.Equal(t, model.AgentInstitution, res.Contributors[1].Kind())

	assert.Len(t, res.Dates, 2)
	assert.Len(t, res.Issues, 1)
}
