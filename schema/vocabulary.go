package schema

import (
	"fmt"
	"strings"

	"github.com/JiscSD/rdss-datacite-transcoder/codec"
	"github.com/JiscSD/rdss-datacite-transcoder/model"

	json "github.com/goccy/go-json"
)

const (
	subjectsPointer   = "/data/attributes/subjects"
	vocabularyKeyword = "vocabulary"
)

type subjectsDocument struct {
	Data struct {
		Attributes struct {
			Subjects []struct {
				Subject       string `json:"subject"`
				SubjectScheme string `json:"subjectScheme"`
				SchemeURI     string `json:"schemeUri"`
				ValueURI      string `json:"valueUri"`
			} `json:"subjects"`
		} `json:"attributes"`
	} `json:"data"`
}

// subjectDetails reports scheme-qualified subjects that do not belong to a
// known controlled vocabulary. Subjects with a violation in reported are
// skipped. Documents with an unexpected shape yield nothing, the schema
// reports those.
func subjectDetails(document []byte, reported []ValidationErrorDetail) []ValidationErrorDetail {
	var doc subjectsDocument
	if err := json.Unmarshal(document, &doc); err != nil {
		return nil
	}
	var details []ValidationErrorDetail
	for i, s := range doc.Data.Attributes.Subjects {
		_, err := codec.ClassifySubject(model.Subject{
			Value:     s.Subject,
			Scheme:    s.SubjectScheme,
			SchemeURI: s.SchemeURI,
			ValueURI:  s.ValueURI,
		})
		if err == nil {
			continue
		}
		path := fmt.Sprintf("%s/%d", subjectsPointer, i)
		if hasDetailUnder(reported, path) {
			continue
		}
		details = append(details, ValidationErrorDetail{
			Path:    path + "/subjectScheme",
			Message: fmt.Sprintf("%q is not a known controlled vocabulary", s.SubjectScheme),
			Keyword: vocabularyKeyword,
			Context: ValidationErrorContext{RawMessage: err.Error()},
		})
	}
	return details
}

func hasDetailUnder(details []ValidationErrorDetail, path string) bool {
	for _, d := range details {
		if d.Path == path || strings.HasPrefix(d.Path, path+"/") {
			return true
		}
	}
	return false
}
