package app

import (
	"context"
	"io"
	"os"
	"strconv"

	"github.com/JiscSD/rdss-datacite-transcoder/export"
	"github.com/JiscSD/rdss-datacite-transcoder/importer/datacitexml"
	"github.com/JiscSD/rdss-datacite-transcoder/importer/legacy"
	"github.com/JiscSD/rdss-datacite-transcoder/model"
	"github.com/JiscSD/rdss-datacite-transcoder/s3"
	"github.com/JiscSD/rdss-datacite-transcoder/schema"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// appFs is the filesystem used to read inputs and write outputs.
var appFs = afero.NewOsFs()

const (
	ValidationModeStrict   = "strict"
	ValidationModeWarnings = "warnings"
	ValidationModeDisabled = "disabled"
)

var errLegacyDisabled = errors.New("legacy database is not configured")

// conversion is the outcome of a transcoding run. Validation is set when the
// document is not publishable.
type conversion struct {
	Document   []byte
	Issues     []error
	Validation *schema.ValidationError
}

func (c *conversion) issueMessages() []string {
	var ret []string
	for _, issue := range c.Issues {
		ret = append(ret, issue.Error())
	}
	return ret
}

// transcoder runs the import, export and validation pipeline.
type transcoder struct {
	logger         logrus.FieldLogger
	validator      schema.Validator
	validationMode string
	defaultVersion string
	xml            *datacitexml.Importer
	legacy         *legacy.Importer
}

func newTranscoder(logger logrus.FieldLogger, config *Config) (*transcoder, error) {
	t := &transcoder{
		logger:         logger,
		validationMode: config.Schema.ValidationMode,
		defaultVersion: config.Schema.DefaultVersion,
		xml:            datacitexml.NewImporter(logger.WithField("component", "xml")),
	}

	if t.validationMode == ValidationModeDisabled {
		t.validator = schema.NewNoOpValidator()
	} else {
		v, err := schema.NewValidator(logger.WithField("component", "validator"))
		if err != nil {
			return nil, err
		}
		t.validator = v
	}

	if config.Legacy.Database != "" {
		opts := []legacy.Option{legacy.WithTimeout(config.Legacy.Timeout)}
		if config.Legacy.RolesFile != "" {
			blob, err := afero.ReadFile(appFs, config.Legacy.RolesFile)
			if err != nil {
				return nil, errors.Wrap(err, "cannot read legacy roles file")
			}
			roles, err := legacy.LoadRoleMapping(blob)
			if err != nil {
				return nil, err
			}
			opts = append(opts, legacy.WithRoleMapping(roles))
		}
		logger := logger.WithField("component", "legacy")
		source := legacy.NewSQLiteSource(logger, config.Legacy.Database, legacy.WithMaxElapsedTime(config.Legacy.MaxElapsedTime))
		t.legacy = legacy.NewImporter(logger, source, opts...)
	}

	return t, nil
}

func (t *transcoder) version(v string) string {
	if v == "" {
		return t.defaultVersion
	}
	return v
}

// convertXML imports a DataCite XML document and, when legacyKey is set,
// replaces its agents and dates with the ones held by the legacy database.
// An unavailable legacy source is recorded as an issue and the document is
// exported from the XML alone.
func (t *transcoder) convertXML(ctx context.Context, r io.Reader, version, legacyKey string) (*conversion, error) {
	res, err := t.xml.Import(r)
	if err != nil {
		return nil, err
	}
	conv := &conversion{Issues: res.Issues}
	if legacyKey != "" {
		lres, err := t.importLegacy(ctx, legacyKey)
		var unavailable *legacy.SourceUnavailableError
		switch {
		case errors.As(err, &unavailable):
			t.logger.WithError(err).WithField("key", legacyKey).Warn("Converting without legacy data")
			conv.Issues = append(conv.Issues, err)
		case err != nil:
			return nil, err
		default:
			lres.Apply(res.Resource)
			conv.Issues = append(conv.Issues, lres.Issues...)
		}
	}
	return t.export(res.Resource, version, conv)
}

func (t *transcoder) importLegacy(ctx context.Context, key string) (*legacy.Result, error) {
	if t.legacy == nil {
		return nil, errLegacyDisabled
	}
	return t.legacy.Import(ctx, key)
}

func (t *transcoder) export(r *model.Resource, version string, conv *conversion) (*conversion, error) {
	version = t.version(version)
	blob, err := export.Marshal(r, version)
	if err != nil {
		return nil, err
	}
	conv.Document = blob
	if err := t.validate(blob, version); err != nil {
		var verr *schema.ValidationError
		if !errors.As(err, &verr) {
			return nil, err
		}
		conv.Validation = verr
	}
	return conv, nil
}

// validate applies the validation mode: in warnings mode violations are only
// logged.
func (t *transcoder) validate(document []byte, version string) error {
	version = t.version(version)
	err := t.validator.Validate(document, version)
	if err == nil {
		return nil
	}
	var verr *schema.ValidationError
	if errors.As(err, &verr) && t.validationMode == ValidationModeWarnings {
		for _, detail := range verr.Errors {
			t.logger.WithFields(logrus.Fields{
				"path":    detail.Path,
				"keyword": detail.Keyword,
			}).Warn(detail.Message)
		}
		return nil
	}
	return err
}

type logrusProxy struct {
	logger logrus.FieldLogger
}

func (l logrusProxy) Log(args ...interface{}) {
	l.logger.WithField("client", "aws").Debug(args...)
}

// awsSession returns a session using NewSessionWithOptions meaning that it
// relies on the SDK defaults but also the user config files and environment.
//
// AWS_S3_FORCE_PATH_STYLE is a made-up environment string that the SDK does
// not look up.
func awsSession(logger logrus.FieldLogger, profile, endpoint string) (*session.Session, error) {
	options := session.Options{}
	if profile != "" {
		options.Profile = profile
	}
	if endpoint != "" {
		options.Config.WithEndpoint(endpoint)
	}
	if res, ok := os.LookupEnv("AWS_S3_FORCE_PATH_STYLE"); ok {
		enabled, _ := strconv.ParseBool(res)
		options.Config.WithS3ForcePathStyle(enabled)
	}
	if logrus.GetLevel() == logrus.DebugLevel {
		options.Config.WithCredentialsChainVerboseErrors(true)
	}
	options.Config.WithLogger(logrusProxy{logger: logger})
	return session.NewSessionWithOptions(options)
}

func objectStorage(logger logrus.FieldLogger, config *Config) (s3.ObjectStorage, error) {
	sess, err := awsSession(logger, config.AWS.S3Profile, config.AWS.S3Endpoint)
	if err != nil {
		return nil, err
	}
	return s3.New(sess), nil
}

// readInput reads a local file or an s3:// object.
func readInput(ctx context.Context, logger logrus.FieldLogger, config *Config, location string) ([]byte, error) {
	if !s3.IsObjectURI(location) {
		blob, err := afero.ReadFile(appFs, location)
		return blob, errors.Wrap(err, "cannot read file")
	}
	storage, err := objectStorage(logger, config)
	if err != nil {
		return nil, err
	}
	return storage.Fetch(ctx, location)
}
