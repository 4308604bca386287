package form

import (
	"net/url"
	"reflect"
	"testing"
)

func testSchema() Schema {
	return Schema{Fields: []Field{
		{Name: "a"},
		{Name: "b"},
		{Name: "c", Multi: true},
	}}
}

// 空値フィールドの省略と複数選択の順序保持を検証
func TestFilter_DropsEmptyAndKeepsOrderedMulti(t *testing.T) {
	values := url.Values{
		"a": {""},
		"b": {"x"},
		"c": {"1", "2"},
	}

	got := Filter(values, testSchema())

	want := map[string]any{
		"b": "x",
		"c": []string{"1", "2"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Filter() = %#v, want %#v", got, want)
	}
}

func TestFilter_AllEmpty_ReturnsEmptyPayload(t *testing.T) {
	values := url.Values{
		"a": {""},
		"b": {""},
	}

	got := Filter(values, testSchema())

	if len(got) != 0 {
		t.Errorf("Filter() = %#v, want empty payload", got)
	}
}

func TestFilter_MissingFields_Omitted(t *testing.T) {
	values := url.Values{
		"b": {"x"},
	}

	got := Filter(values, testSchema())

	if _, ok := got["a"]; ok {
		t.Error("missing field 'a' must not appear in payload")
	}
	if _, ok := got["c"]; ok {
		t.Error("missing field 'c' must not appear in payload")
	}
	if got["b"] != "x" {
		t.Errorf("b = %v, want x", got["b"])
	}
}

// スキーマにないフィールドは無視されることを検証
func TestFilter_IgnoresUnknownFields(t *testing.T) {
	values := url.Values{
		"b":       {"x"},
		"unknown": {"y"},
		"id":      {"42"},
	}

	got := Filter(values, testSchema())

	if _, ok := got["unknown"]; ok {
		t.Error("unknown field must not appear in payload")
	}
	if _, ok := got["id"]; ok {
		t.Error("field outside the schema must not appear in payload")
	}
}

func TestFilter_MultiSelect_PreservesSubmissionOrder(t *testing.T) {
	values := url.Values{
		"c": {"roles.edit", "all", "profiles.edit"},
	}

	got := Filter(values, testSchema())

	want := []string{"roles.edit", "all", "profiles.edit"}
	if !reflect.DeepEqual(got["c"], want) {
		t.Errorf("c = %v, want %v", got["c"], want)
	}
}

func TestFilter_MultiSelect_DropsEmptyOptions(t *testing.T) {
	values := url.Values{
		"c": {"", "all", ""},
	}

	got := Filter(values, testSchema())

	want := []string{"all"}
	if !reflect.DeepEqual(got["c"], want) {
		t.Errorf("c = %v, want %v", got["c"], want)
	}
}

func TestFilter_MultiSelect_AllEmpty_Omitted(t *testing.T) {
	values := url.Values{
		"c": {"", ""},
	}

	got := Filter(values, testSchema())

	if _, ok := got["c"]; ok {
		t.Error("multi-select with no selected values must be omitted")
	}
}

// 単一値フィールドは最初の送信値のみ採用することを検証
func TestFilter_SingleField_TakesFirstValue(t *testing.T) {
	values := url.Values{
		"b": {"first", "second"},
	}

	got := Filter(values, testSchema())

	if got["b"] != "first" {
		t.Errorf("b = %v, want first", got["b"])
	}
}
