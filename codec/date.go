package codec

import (
	"regexp"
	"strings"

	"github.com/JiscSD/rdss-datacite-transcoder/model"
)

const rangeSeparator = "/"

var dateTokenPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{4}$`),
	regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`),
	regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])$`),
	regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])T([01]\d|2[0-3]):[0-5]\d(:[0-5]\d(\.\d+)?)?(Z|[+-]\d{2}:\d{2})?$`),
}

func validDateToken(token string) bool {
	for _, re := range dateTokenPatterns {
		if re.MatchString(token) {
			return true
		}
	}
	return false
}

// DecodeDate splits a DataCite date into its start and end. A single token
// has no end, "A/B" is a full range and "A/" or "/B" are open-ended ranges.
func DecodeDate(raw string) (start, end string, err error) {
	value := strings.TrimSpace(raw)
	parts := strings.Split(value, rangeSeparator)
	switch len(parts) {
	case 1:
		start = parts[0]
	case 2:
		start, end = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	default:
		return "", "", &DateFormatError{Raw: raw, Reason: "more than one range separator"}
	}
	if start == "" && end == "" {
		return "", "", &DateFormatError{Raw: raw, Reason: "empty date"}
	}
	for _, token := range []string{start, end} {
		if token != "" && !validDateToken(token) {
			return "", "", &DateFormatError{Raw: raw, Reason: "unsupported date format " + strings.TrimSpace(token)}
		}
	}
	return start, end, nil
}

// EncodeDate is the inverse of DecodeDate. An empty end produces the start
// alone, an empty start with an end produces an open-start range.
func EncodeDate(start, end string) (string, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	switch {
	case start == "" && end == "":
		return "", &DateFormatError{Raw: rangeSeparator, Reason: "start and end are both empty"}
	case end == "":
		return start, nil
	default:
		return start + rangeSeparator + end, nil
	}
}

// DecodeDateValue decodes raw into a model.Date carrying the date type and
// the free text information alongside.
func DecodeDateValue(raw string, dateType model.DateType, information string) (model.Date, error) {
	start, end, err := DecodeDate(raw)
	if err != nil {
		return model.Date{}, err
	}
	return model.Date{
		Type:        dateType,
		Start:       start,
		End:         end,
		Information: strings.TrimSpace(information),
	}, nil
}

// EncodeModelDate encodes the start and end of d.
func EncodeModelDate(d model.Date) (string, error) {
	return EncodeDate(d.Start, d.End)
}
