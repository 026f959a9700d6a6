package complaint

import (
	"fmt"
	"strings"
)

// Record holds the validator-accepted values collected so far, keyed by field
// name. A key is present only after its validator accepted a value.
type Record map[string]string

// Set stores a normalized value for a field.
func (r Record) Set(field, value string) {
	r[field] = value
}

// Has reports whether the field already holds an accepted value.
func (r Record) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// Complete reports whether every schema field holds an accepted value.
func (r Record) Complete(schema []Field) bool {
	for _, f := range schema {
		if !r.Has(f.Name) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Summary renders the record in schema order for user confirmation.
func (r Record) Summary(schema []Field) string {
	var sb strings.Builder
	sb.WriteString("Complaint Summary:\n")
	for _, f := range schema {
		label, ok := fieldLabels[f.Name]
		if !ok {
			label = f.Name
		}
		value, ok := r[f.Name]
		if !ok {
			value = "N/A"
		}
		fmt.Fprintf(&sb, "%s: %s\n", label, value)
	}
	return sb.String()
}
