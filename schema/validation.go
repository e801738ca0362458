package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/JiscSD/rdss-datacite-transcoder/schema/specdata"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonreference"
	"github.com/xeipuuv/gojsonschema"
)

// SupportedVersions lists the DataCite versions with a bundled schema.
var SupportedVersions = []string{"4.5", "4.6"}

// Validator performs validation of outgoing documents.
//
// A nil error means that the document is publishable. ValidationError is
// returned to share every validation issue precisely, other errors mean that
// validation could not be performed at all.
type Validator interface {
	Validate(document []byte, version string) error
}

type ValidationError struct {
	Errors []ValidationErrorDetail
}

type ValidationErrorDetail struct {
	Path    string                 `json:"path"`
	Message string                 `json:"message"`
	Keyword string                 `json:"keyword"`
	Context ValidationErrorContext `json:"context"`
}

type ValidationErrorContext struct {
	RawMessage string `json:"raw_message"`
}

func (err *ValidationError) Error() string {
	return fmt.Sprintf("validation issues: %+v", err.Errors)
}

type UnsupportedVersionError struct {
	Version string
}

func (err *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported DataCite schema version %q", err.Version)
}

// NoOpValidatorImpl is a no-op validator.
type NoOpValidatorImpl struct{}

var _ Validator = (*NoOpValidatorImpl)(nil)

func NewNoOpValidator() *NoOpValidatorImpl {
	return &NoOpValidatorImpl{}
}

func (v *NoOpValidatorImpl) Validate(document []byte, version string) error {
	return nil
}

// jsonSchemaValidatorImpl is an implementation of Validator backed by the
// schemas bundled in specdata. The compiled schemas are immutable so the
// validator is safe for concurrent use.
type jsonSchemaValidatorImpl struct {
	logger  logrus.FieldLogger
	schemas map[string]*gojsonschema.Schema
}

var _ Validator = (*jsonSchemaValidatorImpl)(nil)

// NewValidator compiles the schema of every supported version.
func NewValidator(logger logrus.FieldLogger) (*jsonSchemaValidatorImpl, error) {
	v := &jsonSchemaValidatorImpl{
		logger:  logger,
		schemas: make(map[string]*gojsonschema.Schema, len(SupportedVersions)),
	}
	for _, version := range SupportedVersions {
		s, err := compile(version)
		if err != nil {
			return nil, errors.Wrapf(err, "error compiling schema %s", version)
		}
		v.schemas[version] = s
	}
	return v, nil
}

func compile(version string) (*gojsonschema.Schema, error) {
	blob, err := specdata.Asset(specdata.SchemaAssetName(version))
	if err != nil {
		return nil, err
	}

	// The schema must identify itself as the kernel it is bundled for.
	head := struct {
		ID string `json:"$id"`
	}{}
	if err := json.Unmarshal(blob, &head); err != nil {
		return nil, errors.Wrap(err, "error decoding schema")
	}
	ref, err := gojsonreference.NewJsonReference(head.ID)
	if err != nil {
		return nil, errors.Wrap(err, "error parsing schema id")
	}
	if !ref.IsCanonical() || !strings.Contains(ref.GetUrl().Path, "/kernel-"+version+"/") {
		return nil, errors.Errorf("unexpected schema id %q", head.ID)
	}

	loader := gojsonschema.NewSchemaLoader()
	loader.Draft = gojsonschema.Draft7
	return loader.Compile(gojsonschema.NewBytesLoader(blob))
}

// Validate implements the Validator interface.
func (v *jsonSchemaValidatorImpl) Validate(document []byte, version string) error {
	s, ok := v.schemas[version]
	if !ok {
		return &UnsupportedVersionError{Version: version}
	}

	res, err := s.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return errors.Wrap(err, "error decoding document")
	}
	details := make([]ValidationErrorDetail, 0, len(res.Errors()))
	for _, re := range res.Errors() {
		details = append(details, newDetail(re))
	}
	details = append(details, subjectDetails(document, details)...)
	if len(details) == 0 {
		return nil
	}
	sort.SliceStable(details, func(i, j int) bool {
		a, b := details[i], details[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Keyword != b.Keyword {
			return a.Keyword < b.Keyword
		}
		return a.Message < b.Message
	})

	v.logger.WithFields(logrus.Fields{
		"version": version,
		"issues":  len(details),
	}).Debug("Document did not pass validation")

	return &ValidationError{Errors: details}
}
