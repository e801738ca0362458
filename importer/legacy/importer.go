package legacy

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/JiscSD/rdss-datacite-transcoder/codec"
	"github.com/JiscSD/rdss-datacite-transcoder/model"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	rorScheme    = "ROR"
	rorSchemeURI = "https://ror.org"
)

var (
	institutionNameTypes = []string{"institution", "organization", "organisation", "organizational", "organisational"}
	personNameTypes      = []string{"person", "personal"}
	institutionRoles     = []string{
		"hostingInstitution",
		"distributor",
		"sponsor",
		"funder",
		"researchGroup",
		"registrationAgency",
		"registrationAuthority",
	}
)

// Result holds the agents and dates of a legacy dataset. Creators and
// contributors are ordered by agent_order.
type Result struct {
	Creators     []model.Agent
	Contributors []model.Agent
	Dates        []model.Date
	Issues       []error
}

// Apply replaces the agents and dates of r with the imported ones. Lists
// that came back empty leave r untouched.
func (res *Result) Apply(r *model.Resource) {
	if len(res.Creators) > 0 {
		r.Creators = res.Creators
	}
	if len(res.Contributors) > 0 {
		r.Contributors = res.Contributors
	}
	if len(res.Dates) > 0 {
		r.Dates = res.Dates
	}
}

type Importer struct {
	logger  logrus.FieldLogger
	source  Source
	roles   RoleMapping
	timeout time.Duration
}

type Option func(*Importer)

func WithRoleMapping(m RoleMapping) Option {
	return func(i *Importer) {
		i.roles = m
	}
}

// WithTimeout bounds every import, zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(i *Importer) {
		i.timeout = d
	}
}

func NewImporter(logger logrus.FieldLogger, source Source, opts ...Option) *Importer {
	i := &Importer{
		logger: logger,
		source: source,
		roles:  defaultRoles,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Import reads the dataset identified by datasetKey. Source failures are
// always reported as *SourceUnavailableError. A key without agents yields
// empty lists.
func (i *Importer) Import(ctx context.Context, datasetKey string) (*Result, error) {
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}
	logger := i.logger.WithField("dataset", datasetKey)

	agents, err := i.source.Agents(ctx, datasetKey)
	if err != nil {
		return nil, unavailable(err)
	}
	dates, err := i.source.Dates(ctx, datasetKey)
	if err != nil {
		return nil, unavailable(err)
	}

	res := &Result{
		Creators:     []model.Agent{},
		Contributors: []model.Agent{},
	}

	sort.SliceStable(agents, func(a, b int) bool {
		return agents[a].AgentOrder < agents[b].AgentOrder
	})
	for _, row := range agents {
		agent, ok := i.agent(row)
		if !ok {
			err := errors.Errorf("agent %d has no name", row.ID)
			logger.WithError(err).Warn("Skipping legacy agent")
			res.Issues = append(res.Issues, err)
			continue
		}
		for n, aff := range agent.Affiliations {
			if aff.Name == "" {
				err := errors.Errorf("affiliation %d of agent %d has no name", n+1, row.ID)
				logger.WithError(err).Warn("Unnamed legacy affiliation")
				res.Issues = append(res.Issues, err)
			}
		}
		if agent.Role == model.RoleCreator {
			agent.Position = len(res.Creators) + 1
			res.Creators = append(res.Creators, agent)
		} else {
			agent.Position = len(res.Contributors) + 1
			res.Contributors = append(res.Contributors, agent)
		}
	}

	for _, row := range dates {
		if strings.TrimSpace(row.Value) == "" {
			continue
		}
		dateType, ok := model.ParseDateType(row.DateType)
		if !ok {
			dateType = model.DateType(strings.TrimSpace(row.DateType))
		}
		date, err := codec.DecodeDateValue(row.Value, dateType, row.Information)
		if err != nil {
			logger.WithError(err).WithField("dateType", row.DateType).Warn("Skipping legacy date")
			res.Issues = append(res.Issues, err)
			continue
		}
		res.Dates = append(res.Dates, date)
	}

	logger.WithFields(logrus.Fields{
		"creators":     len(res.Creators),
		"contributors": len(res.Contributors),
		"dates":        len(res.Dates),
	}).Debug("Legacy dataset imported")

	return res, nil
}

func unavailable(err error) error {
	var sue *SourceUnavailableError
	if errors.As(err, &sue) {
		return sue
	}
	return &SourceUnavailableError{Err: err}
}

func (i *Importer) agent(row AgentRow) (model.Agent, bool) {
	role := i.roles.Map(row.Role)

	var agent model.Agent
	switch ClassifyAgent(row) {
	case model.AgentInstitution:
		name := strings.TrimSpace(row.CombinedName)
		if name == "" {
			name = strings.TrimSpace(strings.TrimSpace(row.GivenName) + " " + strings.TrimSpace(row.FamilyName))
		}
		agent = model.NewInstitution(model.Institution{
			Name:             name,
			Identifier:       strings.TrimSpace(row.Identifier),
			IdentifierScheme: strings.TrimSpace(row.IdentifierScheme),
		}, role, 0)
	case model.AgentPerson:
		person := model.Person{
			GivenName:        strings.TrimSpace(row.GivenName),
			FamilyName:       strings.TrimSpace(row.FamilyName),
			Identifier:       strings.TrimSpace(row.Identifier),
			IdentifierScheme: strings.TrimSpace(row.IdentifierScheme),
		}
		if person.GivenName == "" && person.FamilyName == "" {
			person.FamilyName, person.GivenName = SplitName(row.CombinedName)
		}
		agent = model.NewPerson(person, role, 0)
	default:
		return model.Agent{}, false
	}

	agent.Affiliations = make([]model.Affiliation, 0, len(row.Affiliations))
	for _, aff := range row.Affiliations {
		a := model.Affiliation{Name: strings.TrimSpace(aff.Name)}
		if ror := strings.TrimSpace(aff.RORID); ror != "" {
			a.Identifier = ror
			a.IdentifierScheme = rorScheme
			a.SchemeURI = rorSchemeURI
		}
		agent.Affiliations = append(agent.Affiliations, a)
	}

	email, website := strings.TrimSpace(row.Email), strings.TrimSpace(row.Website)
	if email != "" || website != "" {
		agent.Contact = &model.Contact{Email: email, Website: website}
	}
	return agent, true
}

// ClassifyAgent decides whether row describes a person or an institution.
// An explicit name type wins; structured given or family names mean a
// person; a bare combined name is an institution only for institutional
// roles. Rows without any name are AgentUnknown.
func ClassifyAgent(row AgentRow) model.AgentKind {
	given, family := strings.TrimSpace(row.GivenName), strings.TrimSpace(row.FamilyName)
	combined := strings.TrimSpace(row.CombinedName)
	if given == "" && family == "" && combined == "" {
		return model.AgentUnknown
	}
	switch {
	case matchesAny(row.NameType, institutionNameTypes):
		return model.AgentInstitution
	case matchesAny(row.NameType, personNameTypes):
		return model.AgentPerson
	case given != "" || family != "":
		return model.AgentPerson
	case matchesAny(row.Role, institutionRoles):
		return model.AgentInstitution
	default:
		return model.AgentPerson
	}
}

// SplitName splits a free-text personal name. The first comma separates
// "family, given"; without a comma the last word is the family name and the
// words before it the given names. A single word is a family name.
func SplitName(combined string) (family, given string) {
	combined = strings.TrimSpace(combined)
	if i := strings.Index(combined, ","); i >= 0 {
		return strings.TrimSpace(combined[:i]), strings.TrimSpace(combined[i+1:])
	}
	words := strings.Fields(combined)
	switch len(words) {
	case 0:
		return "", ""
	case 1:
		return words[0], ""
	default:
		return words[len(words)-1], strings.Join(words[:len(words)-1], " ")
	}
}

func matchesAny(value string, candidates []string) bool {
	value = strings.TrimSpace(value)
	for _, c := range candidates {
		if strings.EqualFold(value, c) {
			return true
		}
	}
	return false
}
