// Package datacitexml imports DataCite XML documents (kernel 3 and 4, bare or
// wrapped in an OAI-PMH response) into the resource model.
package datacitexml
