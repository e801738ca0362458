package app

import (
	"context"
	"fmt"
	"io"

	"github.com/JiscSD/rdss-datacite-transcoder/export"
	"github.com/JiscSD/rdss-datacite-transcoder/importer/legacy"
	"github.com/JiscSD/rdss-datacite-transcoder/model"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// legacyDocument is the DataCite rendering of the agents and dates of a
// legacy dataset.
type legacyDocument struct {
	Creators     []export.Creator     `json:"creators"`
	Contributors []export.Contributor `json:"contributors"`
	Dates        []export.Date        `json:"dates"`
	Issues       []string             `json:"issues,omitempty"`
}

func newLegacyDocument(res *legacy.Result, version string) (*legacyDocument, error) {
	r := model.New()
	res.Apply(r)
	doc, err := export.Serialize(r, version)
	if err != nil {
		return nil, err
	}
	ret := &legacyDocument{
		Creators:     doc.Data.Attributes.Creators,
		Contributors: doc.Data.Attributes.Contributors,
		Dates:        doc.Data.Attributes.Dates,
	}
	if ret.Creators == nil {
		ret.Creators = []export.Creator{}
	}
	if ret.Contributors == nil {
		ret.Contributors = []export.Contributor{}
	}
	if ret.Dates == nil {
		ret.Dates = []export.Date{}
	}
	for _, issue := range res.Issues {
		ret.Issues = append(ret.Issues, issue.Error())
	}
	return ret, nil
}

type legacyOptions struct {
	key           string
	schemaVersion string
}

func NewCmdLegacy(out io.Writer, logger logrus.FieldLogger, config *Config) *cobra.Command {
	opts := &legacyOptions{}
	cmd := &cobra.Command{
		Use:   "legacy",
		Short: "Print the creators, contributors and dates of a legacy dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return doLegacy(context.Background(), out, logger, config, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.key, "key", "k", "", "Legacy dataset key")
	cmd.Flags().StringVarP(&opts.schemaVersion, "schema-version", "s", "", "DataCite schema version (default: schema.default_version)")

	return cmd
}

func doLegacy(ctx context.Context, out io.Writer, logger logrus.FieldLogger, config *Config, opts *legacyOptions) error {
	if opts.key == "" {
		return errors.New("parameter empty")
	}
	t, err := newTranscoder(logger, config)
	if err != nil {
		return err
	}
	res, err := t.importLegacy(ctx, opts.key)
	if err != nil {
		return err
	}
	doc, err := newLegacyDocument(res, t.version(opts.schemaVersion))
	if err != nil {
		return err
	}
	blob, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(blob))
	return err
}
