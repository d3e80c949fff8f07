// Package query builds equality queries for the store's runQuery endpoint.
package query

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/medstore/internal/domain/field"
)

// Limits for Equality.
const (
	// Unbounded returns every matching document.
	Unbounded = 0
	// SingleMatch caps a lookup that expects exactly one document.
	SingleMatch = 1
)

// MaxConditions is the maximum number of equality conditions per query.
const MaxConditions = 30

// Conditions is a conjunction of field == value filters.
type Conditions map[string]string

// Request is the runQuery body.
type Request struct {
	StructuredQuery Structured `json:"structuredQuery"`
}

// Structured is a structured query against one collection.
type Structured struct {
	From  []Selector `json:"from"`
	Where *Filter    `json:"where,omitempty"`
	Limit int        `json:"limit,omitempty"`
}

// Selector names the collection to query.
type Selector struct {
	CollectionID string `json:"collectionId"`
}

// Filter is either a single field filter or an AND of field filters.
type Filter struct {
	FieldFilter     *FieldFilter     `json:"fieldFilter,omitempty"`
	CompositeFilter *CompositeFilter `json:"compositeFilter,omitempty"`
}

// CompositeFilter combines filters with Op.
type CompositeFilter struct {
	Op      string   `json:"op"`
	Filters []Filter `json:"filters"`
}

// FieldFilter compares one field against a value.
type FieldFilter struct {
	Field FieldRef    `json:"field"`
	Op    string      `json:"op"`
	Value StringValue `json:"value"`
}

// FieldRef references a field path.
type FieldRef struct {
	FieldPath string `json:"fieldPath"`
}

// StringValue is the wire form of a string comparison operand.
type StringValue struct {
	StringValue string `json:"stringValue"`
}

// Filter operators.
const (
	OpAnd   = "AND"
	OpEqual = "EQUAL"
)

// Equality builds a query matching documents of collection whose fields
// equal every value in conds. Filters are ordered by field path so the body
// does not depend on map iteration order. limit <= 0 means unbounded.
func Equality(collection string, conds Conditions, limit int) (Request, error) {
	if collection == "" {
		return Request{}, fmt.Errorf("collection is required")
	}
	if len(conds) > MaxConditions {
		return Request{}, fmt.Errorf("too many conditions (max %d)", MaxConditions)
	}

	keys := make([]string, 0, len(conds))
	for k := range conds {
		if k == "" {
			return Request{}, fmt.Errorf("condition field is required")
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	filters := make([]Filter, len(keys))
	for i, k := range keys {
		filters[i] = Filter{FieldFilter: &FieldFilter{
			Field: FieldRef{FieldPath: k},
			Op:    OpEqual,
			Value: StringValue{StringValue: conds[k]},
		}}
	}

	sq := Structured{From: []Selector{{CollectionID: collection}}}
	switch len(filters) {
	case 0:
	case 1:
		sq.Where = &filters[0]
	default:
		sq.Where = &Filter{CompositeFilter: &CompositeFilter{Op: OpAnd, Filters: filters}}
	}
	if limit > 0 {
		sq.Limit = limit
	}
	return Request{StructuredQuery: sq}, nil
}

// Collection returns the queried collection.
func (r Request) Collection() string {
	if len(r.StructuredQuery.From) == 0 {
		return ""
	}
	return r.StructuredQuery.From[0].CollectionID
}

// Conditions flattens the where clause back into equality conditions.
// Non-equality filters are ignored.
func (r Request) Conditions() Conditions {
	out := Conditions{}
	var walk func(f *Filter)
	walk = func(f *Filter) {
		if f == nil {
			return
		}
		if ff := f.FieldFilter; ff != nil && ff.Op == OpEqual {
			out[ff.Field.FieldPath] = ff.Value.StringValue
		}
		if cf := f.CompositeFilter; cf != nil && cf.Op == OpAnd {
			for i := range cf.Filters {
				walk(&cf.Filters[i])
			}
		}
	}
	walk(r.StructuredQuery.Where)
	return out
}

// Matches reports whether fields satisfy every condition.
func (c Conditions) Matches(fields field.Fields) bool {
	for k, want := range c {
		s, ok := fields[k].(field.String)
		if !ok || string(s) != want {
			return false
		}
	}
	return true
}
