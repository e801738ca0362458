/*
Package codec implements the two encodings shared by the importers and the
export serializer.

The date codec converts between a (start, end) pair and the DataCite textual
date, e.g. "2010/2020", "/2017-03-01" or "2004-08". Partial precision is kept
verbatim.

The vocabulary codec classifies subjects as free keywords or controlled terms
of a known hierarchical vocabulary (the GCMD family and the EPOS MSL
vocabulary) and converts hierarchical paths between their textual and
segmented forms. The known vocabularies are described in vocabularies.yaml.
*/
package codec
