// Package legacy imports creators, contributors and dates of a dataset from
// the legacy relational database. The database is only ever read.
package legacy
