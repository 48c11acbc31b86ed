// Package apifilter turns HTTP query parameters into a composed, not yet executed,
// read query over one table: filter, sort, projection, text search and pagination.
//
// Every stage is a pure function from Query to Query. The result renders to a single
// parameterized SQL statement; executing it is the caller's business.
package apifilter

import "strings"

type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindTime
	KindUUID
	// KindTextArray is a text[] column. Equality means "contains".
	KindTextArray
	// KindJSON is a computed document (location, application list): projectable only.
	KindJSON
)

type Field struct {
	// Name is the public (query-string and JSON) name.
	Name string
	// Expr is the SQL expression producing the value, relative to Schema.Table.
	Expr string
	Kind Kind

	Filterable bool
	Sortable   bool
	// Hidden fields are left out of the default projection and must be asked for via `fields`.
	Hidden bool
}

type Schema struct {
	Table string
	// IDField is always projected and is the pagination tiebreaker.
	IDField string
	Fields  []Field

	// DefaultSort uses the `sort` parameter syntax, e.g. "-postingDate".
	DefaultSort string

	// SearchVector is a tsvector expression; empty disables `q`.
	SearchVector string
	SearchConfig string

	DefaultLimit int
	MaxLimit     int

	byName map[string]*Field
}

// Reserved query keys never become filter predicates.
const (
	ParamSort   = "sort"
	ParamFields = "fields"
	ParamSearch = "q"
	ParamPage   = "page"
	ParamLimit  = "limit"
)

var reserved = map[string]bool{
	ParamSort:   true,
	ParamFields: true,
	ParamSearch: true,
	ParamPage:   true,
	ParamLimit:  true,
}

func IsReserved(key string) bool {
	return reserved[strings.ToLower(key)]
}

// NewSchema indexes fields by name. It panics on programmer errors (duplicate field, missing
// id field) since schemas are package-level values built at init.
func NewSchema(s Schema) *Schema {
	if s.DefaultLimit <= 0 {
		s.DefaultLimit = 10
	}
	if s.MaxLimit <= 0 {
		s.MaxLimit = 100
	}
	if s.SearchConfig == "" {
		s.SearchConfig = "english"
	}
	s.byName = make(map[string]*Field, len(s.Fields))
	for i := range s.Fields {
		f := &s.Fields[i]
		if _, dup := s.byName[f.Name]; dup {
			panic("apifilter: duplicate field " + f.Name)
		}
		s.byName[f.Name] = f
	}
	if _, ok := s.byName[s.IDField]; !ok {
		panic("apifilter: id field " + s.IDField + " not declared")
	}
	return &s
}

func (s *Schema) Field(name string) (*Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}

func (s *Schema) defaultProjection() []string {
	out := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.Hidden {
			continue
		}
		out = append(out, f.Name)
	}
	return out
}
