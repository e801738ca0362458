package legacy

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const (
	agentsQuery = `SELECT id, role, agent_order, name_type, given_name, family_name,
       combined_name, name_identifier, name_identifier_scheme, email, website
FROM agent
WHERE dataset_key = ?
ORDER BY id`

	affiliationsQuery = `SELECT aa.agent_id, aa.name, aa.ror_id
FROM agent_affiliation aa
JOIN agent a ON a.id = aa.agent_id
WHERE a.dataset_key = ?
ORDER BY aa.agent_id, aa.position`

	datesQuery = `SELECT date_type, date_value, date_information
FROM dataset_date
WHERE dataset_key = ?
ORDER BY rowid`
)

// SQLiteSource reads a legacy SQLite database. Every call opens its own
// read-only connection, so the source is safe for concurrent use.
type SQLiteSource struct {
	logger  logrus.FieldLogger
	path    string
	backOff func() backoff.BackOff
}

var _ Source = (*SQLiteSource)(nil)

type SQLiteOption func(*SQLiteSource)

// WithBackOff sets the retry policy used when opening the database.
func WithBackOff(f func() backoff.BackOff) SQLiteOption {
	return func(s *SQLiteSource) {
		s.backOff = f
	}
}

// WithMaxElapsedTime bounds the time spent retrying to open the database.
func WithMaxElapsedTime(d time.Duration) SQLiteOption {
	return WithBackOff(func() backoff.BackOff {
		return &backoff.ExponentialBackOff{
			InitialInterval:     100 * time.Millisecond,
			RandomizationFactor: 0.5,
			Multiplier:          1.5,
			MaxInterval:         2 * time.Second,
			MaxElapsedTime:      d,
			Clock:               backoff.SystemClock,
		}
	})
}

func NewSQLiteSource(logger logrus.FieldLogger, path string, opts ...SQLiteOption) *SQLiteSource {
	s := &SQLiteSource{logger: logger, path: path}
	WithMaxElapsedTime(10 * time.Second)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SQLiteSource) Agents(ctx context.Context, datasetKey string) ([]AgentRow, error) {
	var (
		agents []AgentRow
		index  = map[int64]int{}
	)
	err := s.query(ctx, agentsQuery, datasetKey, func(row map[string]interface{}) error {
		agent, err := agentRow(row)
		if err != nil {
			return err
		}
		index[agent.ID] = len(agents)
		agents = append(agents, agent)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(agents) == 0 {
		return nil, nil
	}

	err = s.query(ctx, affiliationsQuery, datasetKey, func(row map[string]interface{}) error {
		id, err := cast.ToInt64E(row["agent_id"])
		if err != nil {
			return errors.Wrap(err, "invalid agent_id")
		}
		n, ok := index[id]
		if !ok {
			return nil
		}
		agents[n].Affiliations = append(agents[n].Affiliations, AffiliationRow{
			Name:  cast.ToString(row["name"]),
			RORID: cast.ToString(row["ror_id"]),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return agents, nil
}

func (s *SQLiteSource) Dates(ctx context.Context, datasetKey string) ([]DateRow, error) {
	var dates []DateRow
	err := s.query(ctx, datesQuery, datasetKey, func(row map[string]interface{}) error {
		dates = append(dates, DateRow{
			DateType:    cast.ToString(row["date_type"]),
			Value:       cast.ToString(row["date_value"]),
			Information: cast.ToString(row["date_information"]),
		})
		return nil
	})
	return dates, err
}

func agentRow(row map[string]interface{}) (AgentRow, error) {
	id, err := cast.ToInt64E(row["id"])
	if err != nil {
		return AgentRow{}, errors.Wrap(err, "invalid agent id")
	}
	order, err := cast.ToIntE(row["agent_order"])
	if err != nil {
		return AgentRow{}, errors.Wrapf(err, "invalid agent_order of agent %d", id)
	}
	return AgentRow{
		ID:               id,
		Role:             cast.ToString(row["role"]),
		AgentOrder:       order,
		NameType:         cast.ToString(row["name_type"]),
		GivenName:        cast.ToString(row["given_name"]),
		FamilyName:       cast.ToString(row["family_name"]),
		CombinedName:     cast.ToString(row["combined_name"]),
		Identifier:       cast.ToString(row["name_identifier"]),
		IdentifierScheme: cast.ToString(row["name_identifier_scheme"]),
		Email:            cast.ToString(row["email"]),
		Website:          cast.ToString(row["website"]),
	}, nil
}

// open retries until the database can be opened, the policy gives up or ctx
// is done.
func (s *SQLiteSource) open(ctx context.Context) (*sqlite.Conn, error) {
	var conn *sqlite.Conn
	op := func() error {
		var err error
		conn, err = sqlite.OpenConn(s.path, sqlite.OpenReadOnly)
		if err != nil {
			s.logger.WithError(err).WithField("path", s.path).Debug("Opening legacy database failed")
		}
		return err
	}
	if err := backoff.Retry(op, backoff.WithContext(s.backOff(), ctx)); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	return conn, nil
}

func (s *SQLiteSource) query(ctx context.Context, query string, datasetKey string, fn func(map[string]interface{}) error) error {
	conn, err := s.open(ctx)
	if err != nil {
		return &SourceUnavailableError{Err: err}
	}
	defer conn.Close()

	if err := ctx.Err(); err != nil {
		return &SourceUnavailableError{Err: err}
	}
	conn.SetInterrupt(ctx.Done())
	err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
		Args: []interface{}{datasetKey},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			return fn(scan(stmt))
		},
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return &SourceUnavailableError{Err: errors.Wrap(err, "error querying legacy database")}
	}
	return nil
}

// scan reads the current row into loosely typed values keyed by column name.
func scan(stmt *sqlite.Stmt) map[string]interface{} {
	row := make(map[string]interface{}, stmt.ColumnCount())
	for i := 0; i < stmt.ColumnCount(); i++ {
		var v interface{}
		switch stmt.ColumnType(i) {
		case sqlite.TypeInteger:
			v = stmt.ColumnInt64(i)
		case sqlite.TypeFloat:
			v = stmt.ColumnFloat(i)
		case sqlite.TypeNull:
			v = nil
		default:
			v = stmt.ColumnText(i)
		}
		row[stmt.ColumnName(i)] = v
	}
	return row
}
