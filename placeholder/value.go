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
	"encoding/json"
	"strconv"
	"strings"
)

// Typed narrows a string to its most natural representation: a JSON
// array, a bool, an int64, a float64, or the string itself.
//
// A string containing an underscore is never treated as a number
// because underscores show up in identifiers far more often than in
// numeric literals.  Formatted currency and percent strings also stay
// strings.
func Typed(x interface{}) interface{} {
	s, is := x.(string)
	if !is {
		return x
	}

	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}

	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		var parsed interface{}
		if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
			switch parsed.(type) {
			case []interface{}, map[string]interface{}:
				return parsed
			}
		}
	}

	switch strings.ToLower(trimmed) {
	case "true":
		return true
	case "false":
		return false
	}

	if strings.ContainsAny(s, "_₽%") {
		return s
	}

	if strings.Contains(trimmed, ".") {
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return f
		}
	} else if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return n
	}

	return s
}

// Stringify renders a value the way it should appear when spliced
// into surrounding text.  Integral floats drop the trailing ".0";
// composites render as JSON.
func Stringify(x interface{}) string {
	switch v := x.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		js, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(js)
	}
}

// toFloat coerces numbers and numeric strings.
func toFloat(x interface{}) (float64, bool) {
	switch v := x.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// numeric returns an int64 when the float is integral, matching the
// arithmetic modifiers' habit of not reporting "1260.0" for a price.
func numeric(f float64) interface{} {
	if f == float64(int64(f)) {
		return int64(f)
	}
	return f
}

// truthy is the "true" modifier's notion of truth.  Strings "true"
// and "false" convert; other strings are true when non-blank; numbers
// are true when nonzero.
func truthy(x interface{}) bool {
	switch v := x.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true":
			return true
		case "false":
			return false
		}
		return strings.TrimSpace(v) != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case []interface{}:
		return 0 < len(v)
	case map[string]interface{}:
		return 0 < len(v)
	default:
		return true
	}
}

// stripQuotes removes one layer of matching single or double quotes.
func stripQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	first, last := s[0], s[len(s)-1]
	if (first == '\'' && last == '\'') || (first == '"' && last == '"') {
		return s[1 : len(s)-1]
	}
	return s
}
