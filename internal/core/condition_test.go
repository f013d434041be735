package core

import "testing"

func TestCondition_Evaluate(t *testing.T) {
	ctx := map[string]interface{}{
		"approved": true,
		"count":    3,
		"branch":   "feature/login",
		"empty":    "",
	}

	cases := []struct {
		name string
		cond Condition
		want bool
	}{
		{"eq match", Condition{Field: "count", Op: OpEq, Value: 3}, true},
		{"eq mismatch", Condition{Field: "count", Op: OpEq, Value: 4}, false},
		{"eq missing field", Condition{Field: "nope", Op: OpEq, Value: 3}, false},
		{"empty op means eq", Condition{Field: "count", Value: 3}, true},
		{"ne", Condition{Field: "count", Op: OpNe, Value: 4}, true},
		{"contains match", Condition{Field: "branch", Op: OpContains, Value: "login"}, true},
		{"contains mismatch", Condition{Field: "branch", Op: OpContains, Value: "payments"}, false},
		{"contains on falsy actual", Condition{Field: "empty", Op: OpContains, Value: ""}, false},
		{"contains on missing field", Condition{Field: "nope", Op: OpContains, Value: "x"}, false},
		{"exists present", Condition{Field: "empty", Op: OpExists}, true},
		{"exists absent", Condition{Field: "nope", Op: OpExists}, false},
		{"true truthy", Condition{Field: "approved", Op: OpTrue}, true},
		{"true falsy", Condition{Field: "empty", Op: OpTrue}, false},
		{"false falsy", Condition{Field: "empty", Op: OpFalse}, true},
		{"false truthy", Condition{Field: "count", Op: OpFalse}, false},
		// Routing fails open on operators nobody taught it.
		{"unknown op", Condition{Field: "count", Op: "gte", Value: 99}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cond := tc.cond
			if got := cond.Evaluate(ctx); got != tc.want {
				t.Fatalf("Evaluate(%+v) = %v, want %v", tc.cond, got, tc.want)
			}
		})
	}
}

func TestCondition_ZeroIsAbsent(t *testing.T) {
	var nilCond *Condition
	if !nilCond.Evaluate(map[string]interface{}{}) {
		t.Fatalf("nil condition should pass")
	}
	empty := &Condition{}
	if !empty.Evaluate(nil) {
		t.Fatalf("empty condition should pass")
	}
}

func TestTruthy(t *testing.T) {
	truthy := []interface{}{true, "x", 1, int64(2), 3.5, []string{"a"}, map[string]int{"a": 1}}
	for _, v := range truthy {
		if !Truthy(v) {
			t.Errorf("Truthy(%v) = false, want true", v)
		}
	}
	falsy := []interface{}{nil, false, "", 0, int64(0), 0.0, []string{}, map[string]int{}}
	for _, v := range falsy {
		if Truthy(v) {
			t.Errorf("Truthy(%v) = true, want false", v)
		}
	}
}
