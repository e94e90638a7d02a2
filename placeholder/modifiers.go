/* Copyright 2023 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package placeholder

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Arithmetic modifiers coerce both operands to numbers.  A value
// that won't coerce passes through unchanged; division or modulo by
// zero yields nil so a chained fallback can take over.

func arith(op func(a, b float64) (float64, error)) Func {
	return func(v interface{}, arg *string) (interface{}, error) {
		if v == nil {
			return nil, nil
		}
		if arg == nil {
			return v, errors.New("missing operand")
		}
		a, ok := toFloat(v)
		if !ok {
			return v, nil
		}
		b, ok := toFloat(*arg)
		if !ok {
			return v, nil
		}
		f, err := op(a, b)
		if err != nil {
			return nil, err
		}
		return numeric(f), nil
	}
}

var (
	modAdd      = arith(func(a, b float64) (float64, error) { return a + b, nil })
	modSubtract = arith(func(a, b float64) (float64, error) { return a - b, nil })
	modMultiply = arith(func(a, b float64) (float64, error) { return a * b, nil })

	modDivide = arith(func(a, b float64) (float64, error) {
		if b == 0 {
			return 0, errors.New("division by zero")
		}
		return a / b, nil
	})

	modModulo = arith(func(a, b float64) (float64, error) {
		if b == 0 {
			return 0, errors.New("modulo by zero")
		}
		return float64(int64(a) % int64(b)), nil
	})
)

func modUpper(v interface{}, arg *string) (interface{}, error) {
	if v == nil {
		return "", nil
	}
	return strings.ToUpper(Stringify(v)), nil
}

func modLower(v interface{}, arg *string) (interface{}, error) {
	if v == nil {
		return "", nil
	}
	return strings.ToLower(Stringify(v)), nil
}

func modTitle(v interface{}, arg *string) (interface{}, error) {
	if v == nil {
		return "", nil
	}
	return titleCase(Stringify(v)), nil
}

func modCapitalize(v interface{}, arg *string) (interface{}, error) {
	if v == nil {
		return "", nil
	}
	return capitalize(Stringify(v)), nil
}

// modTruncate cuts a string to at most N characters, spending the
// last three on an ellipsis when it does cut.
func modTruncate(v interface{}, arg *string) (interface{}, error) {
	if v == nil {
		return "", nil
	}
	s := Stringify(v)
	if arg == nil {
		return s, errors.New("missing length")
	}
	n, err := strconv.Atoi(strings.TrimSpace(*arg))
	if err != nil {
		return s, err
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s, nil
	}
	if n <= 3 {
		return "...", nil
	}
	return string(runes[:n-3]) + "...", nil
}

func modCase(v interface{}, arg *string) (interface{}, error) {
	if v == nil {
		return "", nil
	}
	s := Stringify(v)
	if arg == nil {
		return s, errors.New("missing case kind")
	}
	switch *arg {
	case "upper":
		return strings.ToUpper(s), nil
	case "lower":
		return strings.ToLower(s), nil
	case "title":
		return titleCase(s), nil
	case "capitalize":
		return capitalize(s), nil
	}
	return s, fmt.Errorf("unknown case kind %q", *arg)
}

// modRegex extracts the first capture group, or the whole match when
// the pattern has no groups.  No match yields nil.
func modRegex(v interface{}, arg *string) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	if arg == nil {
		return v, errors.New("missing pattern")
	}
	re, err := regexp.Compile(*arg)
	if err != nil {
		return v, err
	}
	m := re.FindStringSubmatch(Stringify(v))
	if m == nil {
		return nil, nil
	}
	if 1 < len(m) {
		return m[1], nil
	}
	return m[0], nil
}

// modCode wraps the value in <code> markup.  Lists get one wrapped
// line per element, so ordering against the list modifier matters.
func modCode(v interface{}, arg *string) (interface{}, error) {
	if v == nil {
		return "<code></code>", nil
	}
	if xs, is := v.([]interface{}); is {
		lines := make([]string, len(xs))
		for i, x := range xs {
			lines[i] = "<code>" + Stringify(x) + "</code>"
		}
		return strings.Join(lines, "\n"), nil
	}
	return "<code>" + Stringify(v) + "</code>", nil
}

// modLength counts elements for sequences and characters for
// everything else.
func modLength(v interface{}, arg *string) (interface{}, error) {
	switch x := v.(type) {
	case nil:
		return int64(0), nil
	case []interface{}:
		return int64(len(x)), nil
	default:
		return int64(len([]rune(Stringify(v)))), nil
	}
}

func modTags(v interface{}, arg *string) (interface{}, error) {
	if v == nil {
		return "", nil
	}
	tag := func(x interface{}) string {
		return "@" + strings.TrimLeft(Stringify(x), "@")
	}
	if xs, is := v.([]interface{}); is {
		parts := make([]string, len(xs))
		for i, x := range xs {
			parts[i] = tag(x)
		}
		return strings.Join(parts, " "), nil
	}
	return tag(v), nil
}

func modList(v interface{}, arg *string) (interface{}, error) {
	if v == nil {
		return "", nil
	}
	if xs, is := v.([]interface{}); is {
		parts := make([]string, len(xs))
		for i, x := range xs {
			parts[i] = "• " + Stringify(x)
		}
		return strings.Join(parts, "\n"), nil
	}
	return "• " + Stringify(v), nil
}

func modComma(v interface{}, arg *string) (interface{}, error) {
	if v == nil {
		return "", nil
	}
	if xs, is := v.([]interface{}); is {
		parts := make([]string, len(xs))
		for i, x := range xs {
			parts[i] = Stringify(x)
		}
		return strings.Join(parts, ", "), nil
	}
	return Stringify(v), nil
}

// modExpand is an identity function.  The flattening it requests
// happens in the Processor when the modified value lands inside a
// sequence-typed parameter; anywhere else it's a no-op.
func modExpand(v interface{}, arg *string) (interface{}, error) {
	return v, nil
}

func modKeys(v interface{}, arg *string) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	if m, is := v.(map[string]interface{}); is {
		keys := make([]interface{}, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sortStrings(keys)
		return keys, nil
	}
	return []interface{}{}, nil
}

// Conditional modifiers yield booleans that a following "value"
// modifier turns into a chosen result.

func modEquals(v interface{}, arg *string) (interface{}, error) {
	if arg == nil {
		return false, errors.New("missing comparand")
	}
	return Stringify(v) == *arg, nil
}

func modInList(v interface{}, arg *string) (interface{}, error) {
	if arg == nil || *arg == "" {
		return false, nil
	}
	s := Stringify(v)
	for _, item := range strings.Split(*arg, ",") {
		if s == strings.TrimSpace(item) {
			return true, nil
		}
	}
	return false, nil
}

func modTrue(v interface{}, arg *string) (interface{}, error) {
	return truthy(v), nil
}

// modValue yields its argument when the preceding stage was truthy
// and an empty string otherwise, so chains read
// {state|equals:active|value:Active|fallback:Inactive}.
func modValue(v interface{}, arg *string) (interface{}, error) {
	if arg == nil {
		return "", errors.New("missing result")
	}
	if truthy(v) {
		return *arg, nil
	}
	return "", nil
}

func modExists(v interface{}, arg *string) (interface{}, error) {
	return v != nil && v != "", nil
}

func modIsNull(v interface{}, arg *string) (interface{}, error) {
	if v == nil || v == "" {
		return true, nil
	}
	if s, is := v.(string); is && strings.EqualFold(s, "null") {
		return true, nil
	}
	return false, nil
}

// modFallback replaces a missing or empty value with a literal
// default, ending not-found propagation.  False, zero, and empty
// composites are real values and pass through.
func modFallback(v interface{}, arg *string) (interface{}, error) {
	if v != nil && v != "" {
		return v, nil
	}
	if arg == nil {
		return nil, nil
	}
	return Typed(strings.TrimSpace(*arg)), nil
}

// readiness is what the ready/not_ready modifiers ask of a value
// resolved from the async registry.
type readiness interface {
	Done() bool
}

func modReady(v interface{}, arg *string) (interface{}, error) {
	if h, is := v.(readiness); is {
		return h.Done(), nil
	}
	return false, nil
}

func modNotReady(v interface{}, arg *string) (interface{}, error) {
	if h, is := v.(readiness); is {
		return !h.Done(), nil
	}
	return false, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	startOfWord := true
	for _, r := range s {
		switch {
		case r == ' ' || r == '\t' || r == '-' || r == '_':
			startOfWord = true
			b.WriteRune(r)
		case startOfWord:
			b.WriteString(strings.ToUpper(string(r)))
			startOfWord = false
		default:
			b.WriteString(strings.ToLower(string(r)))
		}
	}
	return b.String()
}

func sortStrings(xs []interface{}) {
	for i := 1; i < len(xs); i++ {
		for j := i; 0 < j; j-- {
			a, _ := xs[j-1].(string)
			b, _ := xs[j].(string)
			if a <= b {
				break
			}
			xs[j-1], xs[j] = xs[j], xs[j-1]
		}
	}
}
