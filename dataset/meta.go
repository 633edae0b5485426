package dataset

import "fmt"

// MetaTable holds auxiliary per-observation metadata as named string
// columns. Stacked datasets carry the column-join of their operands'
// tables.
type MetaTable struct {
	names   []string
	columns map[string][]string
}

// NewMetaTable creates an empty table.
func NewMetaTable() *MetaTable {
	return &MetaTable{columns: map[string][]string{}}
}

// AddColumn appends a named column. A duplicate name gets a numeric suffix.
func (t *MetaTable) AddColumn(name string, values []string) {
	unique := name
	for i := 2; ; i++ {
		if _, exists := t.columns[unique]; !exists {
			break
		}
		unique = fmt.Sprintf("%s_%d", name, i)
	}
	v := make([]string, len(values))
	copy(v, values)
	t.names = append(t.names, unique)
	t.columns[unique] = v
}

// Names returns the column names in insertion order.
func (t *MetaTable) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Column returns the values of a named column, or nil if absent.
func (t *MetaTable) Column(name string) []string {
	v, ok := t.columns[name]
	if !ok {
		return nil
	}
	out := make([]string, len(v))
	copy(out, v)
	return out
}

// Copy returns a deep copy of the table.
func (t *MetaTable) Copy() *MetaTable {
	out := NewMetaTable()
	for _, name := range t.names {
		out.AddColumn(name, t.columns[name])
	}
	return out
}

// Join appends other's columns to t in place.
func (t *MetaTable) Join(other *MetaTable) {
	for _, name := range other.names {
		t.AddColumn(name, other.columns[name])
	}
}
