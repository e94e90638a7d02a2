package placeholder

import (
	"reflect"
	"testing"
)

func testValues() map[string]interface{} {
	return map[string]interface{}{
		"price": int64(1400),
		"user": map[string]interface{}{
			"name": "homer simpson",
		},
		"tags":     []interface{}{"a", "b"},
		"keyboard": []interface{}{[]interface{}{"yes", "no"}, []interface{}{"maybe"}},
		"field":    "inner",
		"inner":    "resolved",
		"state":    "active",
	}
}

func TestProcessTextTyped(t *testing.T) {
	p := NewProcessor(nil)
	values := testValues()

	tests := []struct {
		description string
		text        string
		expected    interface{}
	}{
		{"arithmetic keeps number", "{price|*0.9}", int64(1260)},
		{"entire span keeps list", "{tags}", []interface{}{"a", "b"}},
		{"mixed text stringifies", "total: {price|*0.9}", "total: 1260"},
		{"fallback on missing", "{x|fallback:Guest}", "Guest"},
		{"fallback after modifier", "{x|upper|fallback:GUEST}", "GUEST"},
		{"quoted literal", "{'hello'|upper}", "HELLO"},
		{"unresolved stays literal", "{nope.nothing}", "{nope.nothing}"},
		{"conditional chain", "{state|equals:active|value:Active|fallback:Inactive}", "Active"},
		{"conditional chain miss", "{state|equals:archived|value:Old|fallback:Current}", "Current"},
		{"nested span as path", "{{field}}", "resolved"},
		{"division by zero falls back", "{price|/0|fallback:none}", "none"},
	}

	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			got := p.processString(test.text, values, 0)
			if !reflect.DeepEqual(got, test.expected) {
				t.Fatalf("%q resolved to %#v, wanted %#v", test.text, got, test.expected)
			}
		})
	}
}

func TestProcessParams(t *testing.T) {
	p := NewProcessor(nil)
	values := testValues()

	params := map[string]interface{}{
		"text":   "Hello, {user.name|title}!",
		"amount": "{price|*0.9}",
		"static": 42,
		"nested": map[string]interface{}{
			"joined": "{tags|comma}",
		},
	}

	got := p.Process(params, values)

	expected := map[string]interface{}{
		"text":   "Hello, Homer Simpson!",
		"amount": int64(1260),
		"static": 42,
		"nested": map[string]interface{}{
			"joined": "a, b",
		},
	}
	if !reflect.DeepEqual(got, expected) {
		t.Fatalf("got %#v, wanted %#v", got, expected)
	}

	// The input tree must not be touched.
	if params["amount"] != "{price|*0.9}" {
		t.Fatal("input params were modified")
	}
}

func TestListExpansion(t *testing.T) {
	p := NewProcessor(nil)
	values := testValues()

	t.Run("entire span list splices", func(t *testing.T) {
		got := p.processList([]interface{}{"{tags}", "c"}, values)
		expected := []interface{}{"a", "b", "c"}
		if !reflect.DeepEqual(got, expected) {
			t.Fatalf("got %#v", got)
		}
	})

	t.Run("expand flattens one level", func(t *testing.T) {
		got := p.processList([]interface{}{"{keyboard|expand}"}, values)
		expected := []interface{}{
			[]interface{}{"yes", "no"},
			[]interface{}{"maybe"},
		}
		if !reflect.DeepEqual(got, expected) {
			t.Fatalf("got %#v", got)
		}
	})
}

func TestDepthLimit(t *testing.T) {
	var warnings []string
	p := NewProcessor(nil)
	p.MaxDepth = 2
	p.Warnf = func(format string, args ...interface{}) {
		warnings = append(warnings, format)
	}

	// Three levels of nesting against a limit of two.
	got := p.processString("{{{field}}}", testValues(), 0)
	if s, is := got.(string); !is || s == "" {
		t.Fatalf("got %#v", got)
	}
	if len(warnings) == 0 {
		t.Fatal("expected a depth warning")
	}
}

func TestUnknownModifierIsSkipped(t *testing.T) {
	var warned bool
	p := NewProcessor(nil)
	p.Warnf = func(string, ...interface{}) { warned = true }

	got := p.processString("{price|frobnicate|*2}", testValues(), 0)
	if got != int64(2800) {
		t.Fatalf("got %#v", got)
	}
	if !warned {
		t.Fatal("expected a warning for the unknown modifier")
	}
}

func TestIsEntirePlaceholder(t *testing.T) {
	tests := []struct {
		text     string
		expected bool
	}{
		{"{a}", true},
		{"{a|upper}", true},
		{"{a{b}c}", true},
		{"x{a}", false},
		{"{a}x", false},
		{"{a}{b}", false},
		{"{a", false},
		{"", false},
	}
	for _, test := range tests {
		if got := isEntirePlaceholder(test.text); got != test.expected {
			t.Errorf("isEntirePlaceholder(%q) = %v", test.text, got)
		}
	}
}
