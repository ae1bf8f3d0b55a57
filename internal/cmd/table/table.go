// Package table provides common table formatting utilities for CLI commands.
package table

import (
	"encoding/json"
	"fmt"

	"github.com/canonical/awsmp/pkg/differ"
	"github.com/canonical/awsmp/pkg/errors"
	"github.com/canonical/awsmp/pkg/listing"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// DiffToTableData converts a diff report to table format, one row per
// entry, grouped added then removed then changed.
func DiffToTableData(report *differ.Report) Data {
	rows := make([][]string, 0, len(report.Added)+len(report.Removed)+len(report.Changed))
	for _, e := range report.Added {
		rows = append(rows, []string{"added", e.Name, "", cell(e.Value)})
	}
	for _, e := range report.Removed {
		rows = append(rows, []string{"removed", e.Name, cell(e.Value), ""})
	}
	for _, e := range report.Changed {
		rows = append(rows, []string{"changed", e.Name, cell(e.OldValue), cell(e.NewValue)})
	}

	return Data{
		Headers: []string{"Change", "Field", "Current", "Desired"},
		Rows:    rows,
	}
}

// PricingToTableData converts a desired pricing list to table format.
func PricingToTableData(pricing []listing.InstanceTypePricing) Data {
	rows := make([][]string, 0, len(pricing))
	for _, p := range pricing {
		annual := "-"
		if p.Annual != nil {
			annual = p.Annual.String()
		}
		rows = append(rows, []string{p.Name, p.Hourly.String(), annual})
	}

	return Data{
		Headers:         []string{"Instance Type", "Hourly", "Annual"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignRight},
	}
}

// PriceDiffsToTableData converts guard price diffs to table format.
func PriceDiffsToTableData(cadence string, diffs []errors.PriceDiff) Data {
	rows := make([][]string, 0, len(diffs))
	for _, d := range diffs {
		rows = append(rows, []string{d.Dimension, cadence, d.Old, d.New})
	}

	return Data{
		Headers:         []string{"Dimension", "Cadence", "Current", "Desired"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight, AlignRight},
	}
}

// VersionsToTableData converts product versions to table format.
func VersionsToTableData(versions []listing.Version) Data {
	rows := make([][]string, 0, len(versions))
	for _, v := range versions {
		rows = append(rows, []string{v.ID, v.VersionTitle, v.CreationDate})
	}

	return Data{
		Headers: []string{"Id", "Title", "Created"},
		Rows:    rows,
	}
}

// cell renders an arbitrary diff value for a table cell. Structured
// values render as compact JSON.
func cell(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
