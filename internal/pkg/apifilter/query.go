package apifilter

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

type cond struct {
	sql  string // '?' marks a positional argument
	args []any
}

type order struct {
	expr string
	desc bool
}

// Query is an immutable description of a read. The zero value is unusable; start from New.
type Query struct {
	schema *Schema
	where  []cond
	order  []order
	fields []string
	limit  int
	offset int
	paged  bool
}

func New(schema *Schema) Query {
	return Query{schema: schema}
}

func (q Query) Schema() *Schema {
	return q.schema
}

// Where adds a predicate. '?' placeholders are bound to args in order.
func (q Query) Where(sql string, args ...any) Query {
	if strings.Count(sql, "?") != len(args) {
		panic(fmt.Sprintf("apifilter: %d placeholders, %d args in %q", strings.Count(sql, "?"), len(args), sql))
	}
	out := q.clone()
	out.where = append(out.where, cond{sql: sql, args: args})
	return out
}

// Include adds fields (typically hidden ones) to the current projection.
func (q Query) Include(names ...string) Query {
	fields := q.Fields()
	for _, n := range names {
		if _, ok := q.schema.Field(n); !ok {
			panic("apifilter: unknown field " + n)
		}
		if !slices.Contains(fields, n) {
			fields = append(fields, n)
		}
	}
	return q.project(fields)
}

func (q Query) orderBy(expr string, desc bool) Query {
	out := q.clone()
	out.order = append(out.order, order{expr: expr, desc: desc})
	return out
}

func (q Query) project(fields []string) Query {
	out := q.clone()
	out.fields = append([]string(nil), fields...)
	return out
}

func (q Query) page(limit, offset int) Query {
	out := q.clone()
	out.limit, out.offset, out.paged = limit, offset, true
	return out
}

func (q Query) clone() Query {
	out := q
	out.where = append([]cond(nil), q.where...)
	out.order = append([]order(nil), q.order...)
	out.fields = append([]string(nil), q.fields...)
	return out
}

// Conditions returns the WHERE predicates with '?' placeholders, for inspection.
func (q Query) Conditions() []string {
	out := make([]string, 0, len(q.where))
	for _, c := range q.where {
		out = append(out, c.sql)
	}
	return out
}

func (q Query) Args() []any {
	var out []any
	for _, c := range q.where {
		out = append(out, c.args...)
	}
	return out
}

// OrderBy returns the ORDER BY terms, e.g. "posting_date DESC".
func (q Query) OrderBy() []string {
	out := make([]string, 0, len(q.order))
	for _, o := range q.order {
		if o.desc {
			out = append(out, o.expr+" DESC")
		} else {
			out = append(out, o.expr+" ASC")
		}
	}
	return out
}

// Fields is the projection; the schema default applies when none was chosen.
func (q Query) Fields() []string {
	if len(q.fields) > 0 {
		return append([]string(nil), q.fields...)
	}
	return q.schema.defaultProjection()
}

func (q Query) Limit() int  { return q.limit }
func (q Query) Offset() int { return q.offset }

// SQL renders the statement. Each row is one JSON object holding the projected fields.
func (q Query) SQL() (string, []any) {
	var b strings.Builder
	var args []any

	b.WriteString("SELECT jsonb_build_object(")
	for i, name := range q.projection() {
		f, _ := q.schema.Field(name)
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quoteLiteral(f.Name))
		b.WriteString(", ")
		b.WriteString(f.Expr)
	}
	b.WriteString(") FROM ")
	b.WriteString(q.schema.Table)

	if len(q.where) > 0 {
		b.WriteString(" WHERE ")
		for i, c := range q.where {
			if i > 0 {
				b.WriteString(" AND ")
			}
			b.WriteString("(")
			b.WriteString(bindPlaceholders(c.sql, len(args)))
			b.WriteString(")")
			args = append(args, c.args...)
		}
	}

	if terms := q.OrderBy(); len(terms) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(terms, ", "))
	}

	if q.paged {
		args = append(args, q.limit, q.offset)
		b.WriteString(" LIMIT $" + strconv.Itoa(len(args)-1))
		b.WriteString(" OFFSET $" + strconv.Itoa(len(args)))
	}

	return b.String(), args
}

// projection always leads with the id field.
func (q Query) projection() []string {
	fields := q.Fields()
	out := make([]string, 0, len(fields)+1)
	out = append(out, q.schema.IDField)
	for _, f := range fields {
		if f == q.schema.IDField {
			continue
		}
		out = append(out, f)
	}
	return out
}

func bindPlaceholders(sql string, offset int) string {
	var b strings.Builder
	n := offset
	for _, r := range sql {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
