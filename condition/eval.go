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

package condition

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// asNumber accepts actual numeric types only.
func asNumber(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	case float32:
		return float64(x), true
	}
	return 0, false
}

// coerceNumber additionally accepts numeric strings.
func coerceNumber(v interface{}) (float64, bool) {
	if f, ok := asNumber(v); ok {
		return f, true
	}
	if s, is := v.(string); is {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// Equal compares two values under the language's == semantics.
// Trigger field matching uses it directly.
func Equal(l, r interface{}) bool {
	return safeEq(l, r)
}

// safeEq compares with automatic numeric coercion: a numeric string
// equals the number it denotes when the other side is a real number.
// Two strings compare as strings.  Nil equals only nil.
func safeEq(l, r interface{}) bool {
	if l == nil || r == nil {
		return l == nil && r == nil
	}
	lf, lNum := asNumber(l)
	rf, rNum := asNumber(r)
	switch {
	case lNum && rNum:
		return lf == rf
	case lNum:
		if f, ok := coerceNumber(r); ok {
			return lf == f
		}
		return false
	case rNum:
		if f, ok := coerceNumber(l); ok {
			return f == rf
		}
		return false
	}
	return reflect.DeepEqual(l, r)
}

// safeCmp orders two values numerically.  Anything that won't coerce
// to a number makes the comparison false, never a panic.
func safeCmp(l, r interface{}, cmp func(a, b float64) bool) bool {
	lf, ok := coerceNumber(l)
	if !ok {
		return false
	}
	rf, ok := coerceNumber(r)
	if !ok {
		return false
	}
	return cmp(lf, rf)
}

// contains reports whether the needle occurs as a substring of the
// value's string form.
func contains(v, needle interface{}) bool {
	if v == nil || needle == nil {
		return false
	}
	return strings.Contains(str(v), str(needle))
}

func regexMatch(v, pattern interface{}) bool {
	if v == nil || pattern == nil {
		return false
	}
	re, err := regexp.Compile(str(pattern))
	if err != nil {
		return false
	}
	return re.MatchString(str(v))
}

// member answers "l in r" when the right side is a sequence or a
// string rather than a bracketed literal list.
func member(l, r interface{}) bool {
	switch x := r.(type) {
	case []interface{}:
		for _, item := range x {
			if safeEq(l, item) {
				return true
			}
		}
	case string:
		return l != nil && strings.Contains(x, str(l))
	}
	return false
}

// isNull treats nil, the empty string, and the literal word "null" as
// null.
func isNull(v interface{}) bool {
	if v == nil || v == "" {
		return true
	}
	if s, is := v.(string); is && strings.EqualFold(s, "null") {
		return true
	}
	return false
}

func truthy(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case []interface{}:
		return 0 < len(x)
	case map[string]interface{}:
		return 0 < len(x)
	}
	if f, ok := asNumber(v); ok {
		return f != 0
	}
	return true
}

func str(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return fmt.Sprintf("%v", v)
}
