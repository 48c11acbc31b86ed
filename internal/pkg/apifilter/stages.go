package apifilter

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobboard/internal/apperror"
)

type Operator string

const (
	OpEq  Operator = ""
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
	OpIn  Operator = "in"
)

var comparisons = map[Operator]string{
	OpGt:  ">",
	OpGte: ">=",
	OpLt:  "<",
	OpLte: "<=",
}

func knownOperator(op string) (Operator, bool) {
	switch o := Operator(strings.ToLower(op)); o {
	case OpGt, OpGte, OpLt, OpLte, OpIn:
		return o, true
	}
	return OpEq, false
}

// Apply runs the whole pipeline in its fixed order and reports every invalid parameter at once.
func Apply(q Query, params url.Values) (Query, error) {
	errs := &apperror.ValidationErrors{}
	collect := func(next Query, err error) Query {
		if err != nil {
			if ve, ok := err.(*apperror.ValidationErrors); ok {
				errs.Messages = append(errs.Messages, ve.Messages...)
			} else {
				errs.Add(err.Error())
			}
		}
		return next
	}

	q = collect(Filter(q, params))
	q = collect(Sort(q, params))
	q = collect(LimitFields(q, params))
	q = SearchByQuery(q, params)
	q = Paginate(q, params)

	if err := errs.OrNil(); err != nil {
		return Query{}, err
	}
	return q, nil
}

// Filter turns every non-reserved parameter into a predicate. The operator is taken from a key
// suffix (salary[gte]=50000) or a value prefix (salary=[gte]50000). A value prefix naming an
// unknown operator is kept as part of the literal value.
func Filter(q Query, params url.Values) (Query, error) {
	keys := make([]string, 0, len(params))
	for k := range params {
		if !IsReserved(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	errs := &apperror.ValidationErrors{}
	for _, key := range keys {
		name, op := splitKey(key)
		f, ok := q.schema.Field(name)
		if !ok || !f.Filterable {
			errs.Add(fmt.Sprintf("Invalid filter field: %s", key))
			continue
		}

		for _, raw := range params[key] {
			fop, value := op, raw
			if fop == OpEq {
				fop, value = splitValue(raw)
			}
			next, err := predicate(q, f, fop, value)
			if err != nil {
				errs.Add(err.Error())
				continue
			}
			q = next
		}
	}
	return q, errs.OrNil()
}

// splitKey reads "field[op]". Unknown operators leave the key untouched so it fails lookup.
func splitKey(key string) (string, Operator) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return key, OpEq
	}
	op, ok := knownOperator(key[open+1 : len(key)-1])
	if !ok {
		return key, OpEq
	}
	return key[:open], op
}

func splitValue(raw string) (Operator, string) {
	if !strings.HasPrefix(raw, "[") {
		return OpEq, raw
	}
	end := strings.IndexByte(raw, ']')
	if end < 0 {
		return OpEq, raw
	}
	op, ok := knownOperator(raw[1:end])
	if !ok {
		return OpEq, raw
	}
	return op, raw[end+1:]
}

func predicate(q Query, f *Field, op Operator, raw string) (Query, error) {
	if op == OpIn {
		parts := splitList(raw)
		if len(parts) == 0 {
			return q, fmt.Errorf("Invalid value for %s", f.Name)
		}
		if f.Kind == KindTextArray {
			return q.Where(f.Expr+" && ?", parts), nil
		}
		values, err := convertList(f, parts)
		if err != nil {
			return q, err
		}
		return q.Where(f.Expr+" = ANY(?"+castSuffix(f, true)+")", values), nil
	}

	if f.Kind == KindTextArray {
		if op != OpEq {
			return q, fmt.Errorf("Invalid operator for %s", f.Name)
		}
		return q.Where("? = ANY("+f.Expr+")", raw), nil
	}

	v, err := convert(f, raw)
	if err != nil {
		return q, err
	}
	if op == OpEq {
		return q.Where(f.Expr+" = ?"+castSuffix(f, false), v), nil
	}
	if f.Kind == KindText || f.Kind == KindUUID {
		return q, fmt.Errorf("Invalid operator for %s", f.Name)
	}
	return q.Where(f.Expr+" "+comparisons[op]+" ?"+castSuffix(f, false), v), nil
}

// castSuffix pins numeric parameters to float8 so integer columns compare against
// fractional input without an encoding error.
func castSuffix(f *Field, array bool) string {
	if f.Kind != KindNumber {
		return ""
	}
	if array {
		return "::float8[]"
	}
	return "::float8"
}

func convert(f *Field, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	switch f.Kind {
	case KindNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("Invalid value for %s", f.Name)
		}
		return n, nil
	case KindTime:
		t, err := parseTime(raw)
		if err != nil {
			return nil, fmt.Errorf("Invalid value for %s", f.Name)
		}
		return t, nil
	case KindUUID:
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("Invalid value for %s", f.Name)
		}
		return id, nil
	case KindText:
		return raw, nil
	default:
		return nil, fmt.Errorf("Invalid filter field: %s", f.Name)
	}
}

// convertList returns a typed slice so the driver encodes it as a Postgres array.
func convertList(f *Field, parts []string) (any, error) {
	switch f.Kind {
	case KindNumber:
		out := make([]float64, 0, len(parts))
		for _, p := range parts {
			v, err := convert(f, p)
			if err != nil {
				return nil, err
			}
			out = append(out, v.(float64))
		}
		return out, nil
	case KindTime:
		out := make([]time.Time, 0, len(parts))
		for _, p := range parts {
			v, err := convert(f, p)
			if err != nil {
				return nil, err
			}
			out = append(out, v.(time.Time))
		}
		return out, nil
	case KindUUID:
		out := make([]uuid.UUID, 0, len(parts))
		for _, p := range parts {
			v, err := convert(f, p)
			if err != nil {
				return nil, err
			}
			out = append(out, v.(uuid.UUID))
		}
		return out, nil
	case KindText:
		return parts, nil
	default:
		return nil, fmt.Errorf("Invalid filter field: %s", f.Name)
	}
}

func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

// Sort orders by a comma-separated list of fields, "-" meaning descending. The id field is
// always appended last so equal keys page deterministically.
func Sort(q Query, params url.Values) (Query, error) {
	spec := strings.Join(params[ParamSort], ",")
	if strings.TrimSpace(spec) == "" {
		spec = q.schema.DefaultSort
	}

	errs := &apperror.ValidationErrors{}
	seenID := false
	for _, term := range splitList(spec) {
		desc := strings.HasPrefix(term, "-")
		name := strings.TrimPrefix(term, "-")
		f, ok := q.schema.Field(name)
		if !ok || !f.Sortable {
			errs.Add(fmt.Sprintf("Invalid sort field: %s", name))
			continue
		}
		if name == q.schema.IDField {
			seenID = true
		}
		q = q.orderBy(f.Expr, desc)
	}
	if !seenID {
		id, _ := q.schema.Field(q.schema.IDField)
		q = q.orderBy(id.Expr, true)
	}
	return q, errs.OrNil()
}

// LimitFields sets the projection. Without a `fields` parameter hidden fields stay out.
func LimitFields(q Query, params url.Values) (Query, error) {
	names := splitList(strings.Join(params[ParamFields], ","))
	if len(names) == 0 {
		return q, nil
	}

	errs := &apperror.ValidationErrors{}
	fields := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := q.schema.Field(name); !ok {
			errs.Add(fmt.Sprintf("Invalid field: %s", name))
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		fields = append(fields, name)
	}
	if err := errs.OrNil(); err != nil {
		return q, err
	}
	return q.project(fields), nil
}

// SearchByQuery matches `q` as a phrase against the schema's text vector; dashes in the
// parameter read as spaces so slugs can be searched directly.
func SearchByQuery(q Query, params url.Values) Query {
	text := strings.TrimSpace(strings.ReplaceAll(params.Get(ParamSearch), "-", " "))
	if text == "" || q.schema.SearchVector == "" {
		return q
	}
	return q.Where(q.schema.SearchVector+" @@ phraseto_tsquery('"+q.schema.SearchConfig+"', ?)", text)
}

// Paginate clamps page and limit to at least 1, caps limit at the schema maximum, and sets
// offset = (page-1)*limit. Page is capped so the offset never overflows. Unparseable values
// fall back to the defaults.
func Paginate(q Query, params url.Values) Query {
	page := atoiDefault(params.Get(ParamPage), 1)
	limit := atoiDefault(params.Get(ParamLimit), q.schema.DefaultLimit)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	if limit > q.schema.MaxLimit {
		limit = q.schema.MaxLimit
	}
	if page > math.MaxInt/limit {
		page = math.MaxInt / limit
	}
	return q.page(limit, (page-1)*limit)
}

func atoiDefault(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
