/*
Package model is the normalized representation of one curated work.

The types in this package carry no behaviour beyond small accessors. They are
populated by the importers (DataCite XML and the legacy relational source),
mutated by the editing surface and consumed read-only by the export serializer.
Incomplete intermediate states are tolerated: a Resource without titles or
creators is a valid value here, it is the schema validator that rejects it
before publication.
*/
package model
