package sanitize

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestSanitizeScalars(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want any
	}{
		{"nil", nil, nil},
		{"string", "hello", "hello"},
		{"bool", true, true},
		{"int", 42, int64(42)},
		{"int32", int32(-7), int64(-7)},
		{"uint16", uint16(9), int64(9)},
		{"float32", float32(1.5), float64(1.5)},
		{"float64", 3.14, 3.14},
		{"bytes", []byte("raw"), "raw"},
		{"duration", 90 * time.Second, "1m30s"},
		{"error", errors.New("boom"), "boom"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Sanitize(c.in)
			if !reflect.DeepEqual(got, c.want) {
				t.Fatalf("Sanitize(%v) = %#v, want %#v", c.in, got, c.want)
			}
		})
	}
}

func TestSanitizeTime(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC)
	got := Sanitize(ts)
	want := "2026-03-14T09:26:53.589793Z"
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSanitizeNestedContainers(t *testing.T) {
	in := map[string]any{
		"list": []any{1, "two", map[string]any{"three": 3.0}},
		"meta": map[int]string{7: "seven"},
	}
	got, ok := Sanitize(in).(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", Sanitize(in))
	}
	list, ok := got["list"].([]any)
	if !ok || len(list) != 3 {
		t.Fatalf("unexpected list: %#v", got["list"])
	}
	if list[0] != int64(1) || list[1] != "two" {
		t.Fatalf("unexpected list values: %#v", list)
	}
	inner := list[2].(map[string]any)
	if inner["three"] != 3.0 {
		t.Fatalf("unexpected inner map: %#v", inner)
	}
	meta := got["meta"].(map[string]any)
	if meta["7"] != "seven" {
		t.Fatalf("non-string map keys should stringify: %#v", meta)
	}
}

func TestSanitizeCircularReference(t *testing.T) {
	m := map[string]any{"name": "loop"}
	m["self"] = m
	got := Sanitize(m).(map[string]any)
	if got["name"] != "loop" {
		t.Fatalf("lost sibling value: %#v", got)
	}
	if got["self"] != SentinelCircular {
		t.Fatalf("cycle should degrade to sentinel, got %#v", got["self"])
	}
}

func TestSanitizeSharedSiblingIsNotACycle(t *testing.T) {
	shared := map[string]any{"v": 1}
	in := map[string]any{"a": shared, "b": shared}
	got := Sanitize(in).(map[string]any)
	for _, key := range []string{"a", "b"} {
		sub, ok := got[key].(map[string]any)
		if !ok || sub["v"] != int64(1) {
			t.Fatalf("sibling reuse of %q should sanitize normally, got %#v", key, got[key])
		}
	}
}

func TestSanitizeMaxDepth(t *testing.T) {
	deep := map[string]any{"leaf": "bottom"}
	for i := 0; i < MaxDepth+3; i++ {
		deep = map[string]any{"next": deep}
	}
	got := Sanitize(deep)
	for i := 0; i <= MaxDepth; i++ {
		m, ok := got.(map[string]any)
		if !ok {
			if got == SentinelMaxDepth {
				return
			}
			t.Fatalf("unexpected value at depth %d: %#v", i, got)
		}
		got = m["next"]
	}
	if got != SentinelMaxDepth {
		t.Fatalf("expected depth sentinel, got %#v", got)
	}
}

func TestSanitizeNonSerializable(t *testing.T) {
	in := map[string]any{
		"fn": func() {},
		"ch": make(chan int),
	}
	got := Sanitize(in).(map[string]any)
	if got["fn"] != SentinelNonSerializable {
		t.Fatalf("func should degrade, got %#v", got["fn"])
	}
	if got["ch"] != SentinelNonSerializable {
		t.Fatalf("chan should degrade, got %#v", got["ch"])
	}
}

func TestSanitizeStruct(t *testing.T) {
	type inner struct {
		Count int
	}
	type outer struct {
		Name   string
		Nested inner
		hidden string
	}
	got := Sanitize(outer{Name: "n", Nested: inner{Count: 2}, hidden: "x"}).(map[string]any)
	if got["Name"] != "n" {
		t.Fatalf("unexpected Name: %#v", got)
	}
	nested := got["Nested"].(map[string]any)
	if nested["Count"] != int64(2) {
		t.Fatalf("unexpected Nested: %#v", nested)
	}
	if _, ok := got["hidden"]; ok {
		t.Fatalf("unexported fields must be skipped: %#v", got)
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	in := map[string]any{
		"s":    "str",
		"n":    12,
		"list": []any{true, nil, map[string]any{"k": 0.5}},
	}
	once := Sanitize(in)
	twice := Sanitize(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("sanitize not idempotent:\nonce:  %#v\ntwice: %#v", once, twice)
	}
}

func TestSanitizeMapNilInput(t *testing.T) {
	got := SanitizeMap(nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("nil map should become empty map, got %#v", got)
	}
}
