package app

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/JiscSD/rdss-datacite-transcoder/s3"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const mediaTypeJSON = "application/json"

type convertOptions struct {
	file          string
	output        string
	schemaVersion string
	legacyKey     string
}

func NewCmdConvert(out, stderr io.Writer, logger logrus.FieldLogger, config *Config) *cobra.Command {
	opts := &convertOptions{}
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a DataCite XML document into a DataCite JSON document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return doConvert(context.Background(), out, stderr, logger, config, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "DataCite XML file or s3://bucket/key")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file or s3://bucket/key (default: standard output)")
	cmd.Flags().StringVarP(&opts.schemaVersion, "schema-version", "s", "", "DataCite schema version (default: schema.default_version)")
	cmd.Flags().StringVarP(&opts.legacyKey, "legacy-key", "k", "", "Take agents and dates from this legacy dataset")

	return cmd
}

func doConvert(ctx context.Context, out, stderr io.Writer, logger logrus.FieldLogger, config *Config, opts *convertOptions) error {
	if opts.file == "" {
		return errors.New("parameter empty")
	}
	blob, err := readInput(ctx, logger, config, opts.file)
	if err != nil {
		return err
	}

	t, err := newTranscoder(logger, config)
	if err != nil {
		return err
	}
	conv, err := t.convertXML(ctx, bytes.NewReader(blob), opts.schemaVersion, opts.legacyKey)
	if err != nil {
		return err
	}
	for _, issue := range conv.Issues {
		logger.WithError(issue).Warn("Incomplete metadata")
	}
	if conv.Validation != nil {
		if err := printValidationErrors(stderr, conv.Validation.Errors); err != nil {
			return err
		}
		return errors.Errorf("document is not publishable: %d validation error(s)", len(conv.Validation.Errors))
	}

	return writeOutput(ctx, out, logger, config, opts.output, conv.Document)
}

func writeOutput(ctx context.Context, out io.Writer, logger logrus.FieldLogger, config *Config, location string, document []byte) error {
	switch {
	case location == "":
		_, err := fmt.Fprintln(out, string(document))
		return err
	case s3.IsObjectURI(location):
		storage, err := objectStorage(logger, config)
		if err != nil {
			return err
		}
		return storage.Upload(ctx, bytes.NewReader(document), location, mediaTypeJSON)
	default:
		return errors.Wrap(afero.WriteFile(appFs, location, document, 0644), "cannot write file")
	}
}

func printValidationErrors(w io.Writer, details interface{}) error {
	blob, err := json.MarshalIndent(details, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(blob))
	return err
}
