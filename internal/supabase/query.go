package supabase

import (
	"strconv"
	"strings"
)

// Param is a single PostgREST query parameter.
type Param struct {
	Key   string
	Value string
}

// Query is an ordered list of parameters. Values are written verbatim, so
// callers must pass URL-safe values.
type Query []Param

// Eq filters rows where column equals value.
func Eq(column, value string) Param {
	return Param{Key: column, Value: "eq." + value}
}

// OrderDesc sorts rows by column, newest or largest first.
func OrderDesc(column string) Param {
	return Param{Key: "order", Value: column + ".desc"}
}

// Limit caps the number of rows returned.
func Limit(n int) Param {
	return Param{Key: "limit", Value: strconv.Itoa(n)}
}

// Encode renders the query in the order the parameters were given.
func (q Query) Encode() string {
	var b strings.Builder
	for i, p := range q {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}
	return b.String()
}
