package form

import (
	"net/url"
	"reflect"
	"testing"
)

type TestStruct struct {
	StringField string   `form:"string_field"`
	BoolField   bool     `form:"bool_field"`
	IntField    int      `form:"int_field"`
	SliceField  []string `form:"slice_field"`
	Ignored     string   `form:"-"`
}

func TestUnmarshal(t *testing.T) {
	testCases := []struct {
		name        string
		input       url.Values
		expected    TestStruct
		expectedErr bool
	}{
		{
			name: "valid input data",
			input: url.Values{
				"string_field": {"test_string"},
				"bool_field":   {"true"},
				"int_field":    {"42"},
				"slice_field":  {"morning", "afternoon"},
			},
			expected: TestStruct{
				StringField: "test_string",
				BoolField:   true,
				IntField:    42,
				SliceField:  []string{"morning", "afternoon"},
			},
		},
		{
			name:     "empty input",
			input:    url.Values{},
			expected: TestStruct{},
		},
		{
			name: "missing fields",
			input: url.Values{
				"string_field": {"test_string"},
			},
			expected: TestStruct{
				StringField: "test_string",
			},
		},
		{
			name: "slice drops blank entries",
			input: url.Values{
				"slice_field": {"morning", "  ", ""},
			},
			expected: TestStruct{
				SliceField: []string{"morning"},
			},
		},
		{
			name: "invalid int",
			input: url.Values{
				"int_field": {"not-a-number"},
			},
			expectedErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var got TestStruct
			err := Unmarshal(tc.input, &got)
			if (err != nil) != tc.expectedErr {
				t.Fatalf("unexpected error state: %v", err)
			}
			if err != nil {
				return
			}
			if !reflect.DeepEqual(got, tc.expected) {
				t.Fatalf("got %+v, want %+v", got, tc.expected)
			}
		})
	}
}

func TestUnmarshalInvalidTarget(t *testing.T) {
	if err := Unmarshal(url.Values{}, nil); err == nil {
		t.Fatal("expected error for nil target")
	}
	var target TestStruct
	if err := Unmarshal(url.Values{}, target); err == nil {
		t.Fatal("expected error for non-pointer target")
	}
}
