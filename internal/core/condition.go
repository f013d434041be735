package core

import (
	"fmt"
	"reflect"
	"strings"
)

// Condition guards a single edge: it compares one context field against a
// value with a small operator set. The wire key for the operator is "op".
type Condition struct {
	Field string      `json:"field"`
	Op    string      `json:"op"`
	Value interface{} `json:"value,omitempty"`
}

// Condition operators.
const (
	OpEq       = "eq"
	OpNe       = "ne"
	OpContains = "contains"
	OpExists   = "exists"
	OpTrue     = "true"
	OpFalse    = "false"
)

// IsZero reports whether the condition is empty (treated as absent).
func (c *Condition) IsZero() bool {
	return c == nil || (c.Field == "" && c.Op == "" && c.Value == nil)
}

// Evaluate applies the condition to a context map. An empty operator means
// "eq". Unknown operators evaluate to true: routing fails open rather than
// stranding a run on a typo.
func (c *Condition) Evaluate(context map[string]interface{}) bool {
	if c.IsZero() {
		return true
	}
	op := c.Op
	if op == "" {
		op = OpEq
	}
	actual, present := context[c.Field]

	switch op {
	case OpEq:
		return reflect.DeepEqual(actual, c.Value)
	case OpNe:
		return !reflect.DeepEqual(actual, c.Value)
	case OpContains:
		if !Truthy(actual) {
			return false
		}
		return strings.Contains(fmt.Sprint(actual), fmt.Sprint(c.Value))
	case OpExists:
		return present
	case OpTrue:
		return Truthy(actual)
	case OpFalse:
		return !Truthy(actual)
	}
	return true
}

// Truthy mirrors dynamic-language truthiness for context values: nil, false,
// zero numbers, empty strings and empty collections are false.
func Truthy(v interface{}) bool {
	if v == nil {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case string:
		return val != ""
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Ptr, reflect.Interface:
		return !rv.IsNil()
	}
	return !rv.IsZero()
}
