package app

import (
	"fmt"
	"io"

	"github.com/JiscSD/rdss-datacite-transcoder/schema"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type validateOptions struct {
	file          string
	schemaVersion string
}

func NewCmdValidate(out io.Writer, logger logrus.FieldLogger, config *Config) *cobra.Command {
	opts := &validateOptions{}
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate DataCite JSON documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			return doValidate(out, logger, config, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "File")
	cmd.Flags().StringVarP(&opts.schemaVersion, "schema-version", "s", "", "DataCite schema version (default: schema.default_version)")

	return cmd
}

func doValidate(out io.Writer, logger logrus.FieldLogger, config *Config, opts *validateOptions) error {
	if opts.file == "" {
		return errors.New("parameter empty")
	}
	data, err := afero.ReadFile(appFs, opts.file)
	if err != nil {
		return errors.Wrap(err, "cannot read file")
	}
	version := opts.schemaVersion
	if version == "" {
		version = config.Schema.DefaultVersion
	}
	validator, err := schema.NewValidator(logger)
	if err != nil {
		return err
	}
	err = validator.Validate(data, version)
	var verr *schema.ValidationError
	switch {
	case err == nil:
		_, err = fmt.Fprintln(out, "The document is valid!")
		return err
	case errors.As(err, &verr):
		fmt.Fprintln(out, "The document is invalid!")
		if err := printValidationErrors(out, verr.Errors); err != nil {
			return err
		}
		return errors.Errorf("%d validation error(s)", len(verr.Errors))
	default:
		return err
	}
}
