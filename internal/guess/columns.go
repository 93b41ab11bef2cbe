package guess

import (
	"strconv"
	"strings"

	"csvguess/internal/schema"
)

// AssembleColumns pairs column names with types by position. With a header
// row the names are its trimmed values, otherwise c0, c1, ... Pairs missing a
// name (nil header cell, short header) or a type are skipped.
func AssembleColumns(header []*string, types []schema.ColumnType) []ColumnSpec {
	var names []*string
	if header != nil {
		names = make([]*string, len(header))
		for i, h := range header {
			if h != nil {
				n := strings.TrimSpace(*h)
				names[i] = &n
			}
		}
	} else {
		names = make([]*string, len(types))
		for i := range names {
			n := "c" + strconv.Itoa(i)
			names[i] = &n
		}
	}

	cols := make([]ColumnSpec, 0, len(types))
	for i, name := range names {
		if name == nil || i >= len(types) {
			continue
		}
		t := types[i]
		c := ColumnSpec{Name: *name, Type: string(t.Type)}
		if t.Type == schema.Timestamp {
			c.Format = t.Format
		}
		cols = append(cols, c)
	}
	return cols
}
