// Package schema classifies sample values into column types.
//
// The type set is closed: string, boolean, long, double, timestamp and json.
// Timestamp columns carry a strftime-style format that a downstream parser can
// use directly.
package schema

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/ncruces/go-strftime"
)

// Type is a column type name.
type Type string

const (
	String    Type = "string"
	Boolean   Type = "boolean"
	Long      Type = "long"
	Double    Type = "double"
	Timestamp Type = "timestamp"
	JSON      Type = "json"
)

// ColumnType is the classification of one column. Format is only set for
// Timestamp.
type ColumnType struct {
	Type   Type
	Format string
}

func (c ColumnType) String() string {
	if c.Format != "" {
		return string(c.Type) + "(" + c.Format + ")"
	}
	return string(c.Type)
}

// Classifier is the default type classifier. The zero value is ready to use.
type Classifier struct{}

// Classify returns one ColumnType per column. The column count is the width of
// the widest row; nil values and empty strings carry no type information, and
// a column with no typed value is String.
func (Classifier) Classify(rows [][]*string) []ColumnType {
	width := 0
	for _, r := range rows {
		if len(r) > width {
			width = len(r)
		}
	}

	out := make([]ColumnType, width)
	for col := 0; col < width; col++ {
		var (
			acc  ColumnType
			seen bool
		)
		for _, r := range rows {
			if col >= len(r) || r[col] == nil || *r[col] == "" {
				continue
			}
			t := ClassifyValue(*r[col])
			if !seen {
				acc, seen = t, true
				continue
			}
			acc = Merge(acc, t)
		}
		if !seen {
			acc = ColumnType{Type: String}
		}
		out[col] = acc
	}
	return out
}

// ClassifyValue returns the most specific type of a single raw value. Values
// are not trimmed: " 1" is a string.
func ClassifyValue(v string) ColumnType {
	switch {
	case isJSON(v):
		return ColumnType{Type: JSON}
	case isBool(v):
		return ColumnType{Type: Boolean}
	case isLong(v):
		return ColumnType{Type: Long}
	case isDouble(v):
		return ColumnType{Type: Double}
	}
	if f, ok := TimestampFormat(v); ok {
		return ColumnType{Type: Timestamp, Format: f}
	}
	return ColumnType{Type: String}
}

// Merge combines two column classifications.
func Merge(a, b ColumnType) ColumnType {
	if a == b {
		return a
	}
	if numeric(a.Type) && numeric(b.Type) {
		return ColumnType{Type: Double}
	}
	return ColumnType{Type: String}
}

func numeric(t Type) bool { return t == Long || t == Double }

func isJSON(v string) bool {
	if v == "" || (v[0] != '{' && v[0] != '[') {
		return false
	}
	return json.Valid([]byte(v))
}

var boolWords = func() map[string]struct{} {
	m := map[string]struct{}{}
	for _, w := range []string{"true", "false", "yes", "no", "on", "off", "t", "f", "y", "n"} {
		m[w] = struct{}{}
		m[strings.ToUpper(w)] = struct{}{}
		m[strings.ToUpper(w[:1])+w[1:]] = struct{}{}
	}
	return m
}()

func isBool(v string) bool {
	_, ok := boolWords[v]
	return ok
}

func isLong(v string) bool {
	_, err := strconv.ParseInt(v, 10, 64)
	return err == nil
}

func isDouble(v string) bool {
	if strings.ContainsAny(v, "xX_") {
		return false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return false
	}
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

// timestampLayouts pairs a Go layout with the equivalent strftime format.
// Order matters: the first layout that round-trips wins, so day-first dates
// only match when month-first fails.
var timestampLayouts = []struct {
	layout   string
	strftime string
}{
	{"2006-01-02 15:04:05 -0700", "%Y-%m-%d %H:%M:%S %z"},
	{"2006-01-02T15:04:05-0700", "%Y-%m-%dT%H:%M:%S%z"},
	{"2006-01-02T15:04:05Z", "%Y-%m-%dT%H:%M:%SZ"},
	{"2006-01-02 15:04:05", "%Y-%m-%d %H:%M:%S"},
	{"2006-01-02T15:04:05", "%Y-%m-%dT%H:%M:%S"},
	{"2006/01/02 15:04:05", "%Y/%m/%d %H:%M:%S"},
	{"02.01.2006 15:04:05", "%d.%m.%Y %H:%M:%S"},
	{"2006-01-02", "%Y-%m-%d"},
	{"2006/01/02", "%Y/%m/%d"},
	{"02.01.2006", "%d.%m.%Y"},
	{"01/02/2006", "%m/%d/%Y"},
	{"02/01/2006", "%d/%m/%Y"},
}

// TimestampFormat returns the strftime format of v, if v is a timestamp in one
// of the known layouts. A layout only matches when rendering the parsed time
// through its strftime format reproduces v exactly.
func TimestampFormat(v string) (string, bool) {
	if len(v) < len("2006/01/02") {
		return "", false
	}
	for _, l := range timestampLayouts {
		t, err := time.Parse(l.layout, v)
		if err != nil {
			continue
		}
		if strftime.Format(l.strftime, t) != v {
			continue
		}
		return l.strftime, true
	}
	return "", false
}
