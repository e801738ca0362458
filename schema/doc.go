/*
Package schema validates DataCite JSON documents against the JSON Schema of
their declared DataCite version.

Validation is exhaustive: every violation is collected in a single pass and
returned as a *ValidationError whose details carry a JSON pointer into the
document, a human readable message, the violated schema keyword and the raw
text of the underlying evaluator. Mapping pointers back to form fields is left
to the caller.

To support a new DataCite version add its schema to specdata/schemas using
the datacite-v<version>.json naming convention and list the version in
SupportedVersions.
*/
package schema
