// Package differ compares two entity snapshots field by field and reports
// every difference as an added, removed, or changed entry.
package differ

import "encoding/json"

// Entry records a field present on only one side of a comparison.
type Entry struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// ChangedEntry records a field present on both sides with different values.
type ChangedEntry struct {
	Name     string `json:"name"`
	OldValue any    `json:"old_value"`
	NewValue any    `json:"new_value"`
}

// Report is the ordered outcome of one snapshot comparison. Entries appear
// in field-walk order, so repeated runs on unchanged input produce
// byte-identical reports.
type Report struct {
	Added   []Entry        `json:"added"`
	Removed []Entry        `json:"removed"`
	Changed []ChangedEntry `json:"changed"`
}

// Empty reports whether the two snapshots were identical.
func (r *Report) Empty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0 && len(r.Changed) == 0
}

// String renders the report as indented JSON.
func (r *Report) String() string {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err.Error()
	}
	return string(out)
}

func (r *Report) add(name string, value any) {
	r.Added = append(r.Added, Entry{Name: name, Value: value})
}

func (r *Report) remove(name string, value any) {
	r.Removed = append(r.Removed, Entry{Name: name, Value: value})
}

func (r *Report) change(name string, oldValue, newValue any) {
	r.Changed = append(r.Changed, ChangedEntry{Name: name, OldValue: oldValue, NewValue: newValue})
}
