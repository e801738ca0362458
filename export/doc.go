// Package export turns a model.Resource into the DataCite JSON document that
// is submitted to the DataCite REST API.
package export
