// Package report renders an analysis view as terminal tables.
package report
