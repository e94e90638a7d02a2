package placeholder

import (
	"reflect"
	"testing"
)

func strp(s string) *string { return &s }

func TestArithmetic(t *testing.T) {
	tests := []struct {
		description string
		f           Func
		v           interface{}
		arg         string
		expected    interface{}
	}{
		{"add", modAdd, int64(10), "5", int64(15)},
		{"subtract", modSubtract, int64(10), "2.5", 7.5},
		{"multiply", modMultiply, "6", "7", int64(42)},
		{"divide integral", modDivide, int64(10), "4", 2.5},
		{"divide to int", modDivide, int64(10), "5", int64(2)},
		{"modulo", modModulo, int64(10), "3", int64(1)},
		{"non numeric passes through", modAdd, "soon", "1", "soon"},
	}
	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			got, _ := test.f(test.v, strp(test.arg))
			if !reflect.DeepEqual(got, test.expected) {
				t.Fatalf("got %#v, wanted %#v", got, test.expected)
			}
		})
	}

	t.Run("division by zero is not found", func(t *testing.T) {
		got, err := modDivide(int64(10), strp("0"))
		if got != nil || err == nil {
			t.Fatalf("got %#v, %v", got, err)
		}
	})
}

func TestTextModifiers(t *testing.T) {
	if got, _ := modTruncate("abcdefghij", strp("8")); got != "abcde..." {
		t.Fatalf("truncate: %#v", got)
	}
	if got, _ := modTruncate("short", strp("10")); got != "short" {
		t.Fatalf("truncate no-op: %#v", got)
	}
	if got, _ := modRegex("order #4217 shipped", strp(`#(\d+)`)); got != "4217" {
		t.Fatalf("regex group: %#v", got)
	}
	if got, _ := modRegex("nothing here", strp(`#(\d+)`)); got != nil {
		t.Fatalf("regex miss: %#v", got)
	}
	if got, _ := modCase("mixed", strp("upper")); got != "MIXED" {
		t.Fatalf("case: %#v", got)
	}
	if got, _ := modCode("x", nil); got != "<code>x</code>" {
		t.Fatalf("code: %#v", got)
	}
}

func TestListModifiers(t *testing.T) {
	xs := []interface{}{"a", "b", "c"}

	if got, _ := modLength(xs, nil); got != int64(3) {
		t.Fatalf("length of list: %#v", got)
	}
	if got, _ := modLength("hello", nil); got != int64(5) {
		t.Fatalf("length of string: %#v", got)
	}
	if got, _ := modTags(xs, nil); got != "@a @b @c" {
		t.Fatalf("tags: %#v", got)
	}
	if got, _ := modList(xs, nil); got != "• a\n• b\n• c" {
		t.Fatalf("list: %#v", got)
	}
	m := map[string]interface{}{"b": 1, "a": 2}
	got, _ := modKeys(m, nil)
	if !reflect.DeepEqual(got, []interface{}{"a", "b"}) {
		t.Fatalf("keys: %#v", got)
	}
}

func TestConditionalModifiers(t *testing.T) {
	if got, _ := modEquals("active", strp("active")); got != true {
		t.Fatal("equals")
	}
	if got, _ := modInList("b", strp("a, b, c")); got != true {
		t.Fatal("in_list")
	}
	if got, _ := modTrue("false", nil); got != false {
		t.Fatal("true on string false")
	}
	if got, _ := modExists("", nil); got != false {
		t.Fatal("exists on empty")
	}
	if got, _ := modExists(false, nil); got != true {
		t.Fatal("exists on false")
	}
	if got, _ := modIsNull("NULL", nil); got != true {
		t.Fatal("is_null on null string")
	}
	if got, _ := modValue(true, strp("yes")); got != "yes" {
		t.Fatal("value on true")
	}
	if got, _ := modValue(false, strp("yes")); got != "" {
		t.Fatal("value on false")
	}
}

func TestFallback(t *testing.T) {
	if got, _ := modFallback(nil, strp("Guest")); got != "Guest" {
		t.Fatal("fallback on nil")
	}
	if got, _ := modFallback("", strp("Guest")); got != "Guest" {
		t.Fatal("fallback on empty")
	}
	if got, _ := modFallback(false, strp("Guest")); got != false {
		t.Fatal("false is a real value")
	}
	if got, _ := modFallback(nil, strp("42")); got != int64(42) {
		t.Fatal("fallback narrows types")
	}
}

func TestDatetimeModifiers(t *testing.T) {
	t.Run("shift clamps month ends", func(t *testing.T) {
		got, err := modShift("2024-01-31", strp("+1 month"))
		if err != nil {
			t.Fatal(err)
		}
		if got != "2024-02-29" {
			t.Fatalf("got %#v", got)
		}
	})

	t.Run("shift keeps time component", func(t *testing.T) {
		got, _ := modShift("2024-12-25 15:30:45", strp("-2 hours"))
		if got != "2024-12-25 13:30:45" {
			t.Fatalf("got %#v", got)
		}
	})

	t.Run("shift requires sign", func(t *testing.T) {
		got, err := modShift("2024-12-25", strp("1 day"))
		if got != "2024-12-25" || err == nil {
			t.Fatalf("got %#v, %v", got, err)
		}
	})

	t.Run("seconds", func(t *testing.T) {
		got, _ := modSeconds("2h 30m", nil)
		if got != int64(9000) {
			t.Fatalf("got %#v", got)
		}
	})

	t.Run("seconds on junk", func(t *testing.T) {
		got, _ := modSeconds("whenever", nil)
		if got != nil {
			t.Fatalf("got %#v", got)
		}
	})

	t.Run("to_week lands on Monday", func(t *testing.T) {
		f := periodModifier("week")
		got, _ := f("2024-12-25 15:30:45", nil) // a Wednesday
		if got != "2024-12-23 00:00:00" {
			t.Fatalf("got %#v", got)
		}
	})

	t.Run("to_month", func(t *testing.T) {
		f := periodModifier("month")
		got, _ := f("2024-12-25", nil)
		if got != "2024-12-01 00:00:00" {
			t.Fatalf("got %#v", got)
		}
	})

	t.Run("format pg_date", func(t *testing.T) {
		got, _ := modFormat("25.12.2024 15:30", strp("pg_date"))
		if got != "2024-12-25" {
			t.Fatalf("got %#v", got)
		}
	})

	t.Run("format percent", func(t *testing.T) {
		got, _ := modFormat(12.345, strp("percent"))
		if got != "12.3%" {
			t.Fatalf("got %#v", got)
		}
	})
}

type fakeHandle struct{ done bool }

func (h fakeHandle) Done() bool { return h.done }

func TestReadiness(t *testing.T) {
	if got, _ := modReady(fakeHandle{done: true}, nil); got != true {
		t.Fatal("ready")
	}
	if got, _ := modNotReady(fakeHandle{done: false}, nil); got != true {
		t.Fatal("not_ready")
	}
	// Anything that isn't a handle is simply not ready.
	if got, _ := modReady("a1", nil); got != false {
		t.Fatal("ready on non-handle")
	}
}

func TestTyped(t *testing.T) {
	tests := []struct {
		in       string
		expected interface{}
	}{
		{"123", int64(123)},
		{"123.0", 123.0},
		{"-7", int64(-7)},
		{"true", true},
		{"False", false},
		{`["a","b"]`, []interface{}{"a", "b"}},
		{"user_name", "user_name"},
		{"1_000", "1_000"},
		{"12.5%", "12.5%"},
		{"plain", "plain"},
	}
	for _, test := range tests {
		if got := Typed(test.in); !reflect.DeepEqual(got, test.expected) {
			t.Errorf("Typed(%q) = %#v, wanted %#v", test.in, got, test.expected)
		}
	}
}
