package schema

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const rootContext = "(root)"

// keywords maps gojsonschema error types to the schema keyword violated.
var keywords = map[string]string{
	"required":                        "required",
	"invalid_type":                    "type",
	"number_any_of":                   "anyOf",
	"number_one_of":                   "oneOf",
	"number_all_of":                   "allOf",
	"number_not":                      "not",
	"missing_dependency":              "dependencies",
	"const":                           "const",
	"enum":                            "enum",
	"array_no_additional_items":       "additionalItems",
	"array_min_items":                 "minItems",
	"array_max_items":                 "maxItems",
	"unique":                          "uniqueItems",
	"contains":                        "contains",
	"array_min_properties":            "minProperties",
	"array_max_properties":            "maxProperties",
	"additional_property_not_allowed": "additionalProperties",
	"invalid_property_pattern":        "patternProperties",
	"invalid_property_name":           "propertyNames",
	"string_gte":                      "minLength",
	"string_lte":                      "maxLength",
	"pattern":                         "pattern",
	"does_not_match_pattern":          "pattern",
	"format":                          "format",
	"multiple_of":                     "multipleOf",
	"number_gte":                      "minimum",
	"number_gt":                       "exclusiveMinimum",
	"number_lte":                      "maximum",
	"number_lt":                       "exclusiveMaximum",
	"condition_then":                  "then",
	"condition_else":                  "else",
}

func keyword(errorType string) string {
	if kw, ok := keywords[errorType]; ok {
		return kw
	}
	return errorType
}

func newDetail(re gojsonschema.ResultError) ValidationErrorDetail {
	kw := keyword(re.Type())
	details := re.Details()
	path := pointer(re.Context())

	// Missing members are reported on their parent object, point at the
	// member instead.
	var missing string
	switch kw {
	case "required":
		missing = detail(details, "property")
	case "dependencies":
		missing = detail(details, "dependency")
	}
	if missing != "" {
		path = path + "/" + escapePointerToken(missing)
	}

	return ValidationErrorDetail{
		Path:    path,
		Message: message(kw, missing, details, re.Description()),
		Keyword: kw,
		Context: ValidationErrorContext{RawMessage: re.String()},
	}
}

// pointer converts a gojsonschema context, e.g. "(root).data.attributes",
// into a JSON pointer, e.g. "/data/attributes".
func pointer(ctx *gojsonschema.JsonContext) string {
	if ctx == nil {
		return ""
	}
	return strings.TrimPrefix(ctx.String("/"), rootContext)
}

func escapePointerToken(token string) string {
	return strings.NewReplacer("~", "~0", "/", "~1").Replace(token)
}

func detail(details gojsonschema.ErrorDetails, key string) string {
	v, ok := details[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func message(kw, missing string, details gojsonschema.ErrorDetails, description string) string {
	switch kw {
	case "required":
		return fmt.Sprintf("%s is required", missing)
	case "dependencies":
		return fmt.Sprintf("%s is required by a sibling property", missing)
	case "enum":
		return fmt.Sprintf("must be one of: %s", detail(details, "allowed"))
	case "type":
		return fmt.Sprintf("must be of type %s, %s given", detail(details, "expected"), detail(details, "given"))
	case "minItems":
		return fmt.Sprintf("must contain at least %s item(s)", detail(details, "min"))
	case "minLength":
		return fmt.Sprintf("must be at least %s character(s) long", detail(details, "min"))
	case "pattern":
		return fmt.Sprintf("does not match the pattern %s", detail(details, "pattern"))
	case "format":
		return fmt.Sprintf("is not a valid %s", detail(details, "format"))
	case "additionalProperties":
		return fmt.Sprintf("property %s is not allowed", detail(details, "property"))
	default:
		return description
	}
}
