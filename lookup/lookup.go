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

// Package lookup resolves dotted, bracketed paths against nested
// maps and slices.
//
// A path looks like "user.name", "attachments[0].id", or
// "rows[-1][2].label".  Negative indexes count from the end of a
// slice.  A path that cannot be resolved yields nil rather than an
// error; callers deal in fallbacks, not panics.
package lookup

import (
	"strconv"
)

// Seg is one segment of a parsed path: either a map key or a slice
// index.
type Seg struct {
	Key     string
	Index   int
	IsIndex bool
}

// ParsePath splits a path into segments.
//
// "a.b[0].c" becomes ["a", 0, "b"... you get the idea].  A bracket
// whose content isn't an integer is treated as a string key, so
// "predictions[home]" addresses a map.  An unclosed bracket makes
// the whole path invalid, and ParsePath returns nil.
func ParsePath(path string) []Seg {
	segs := make([]Seg, 0, 4)
	var current []byte
	for i := 0; i < len(path); {
		switch path[i] {
		case '.':
			if 0 < len(current) {
				segs = append(segs, Seg{Key: string(current)})
				current = current[:0]
			}
			i++
		case '[':
			if 0 < len(current) {
				segs = append(segs, Seg{Key: string(current)})
				current = current[:0]
			}
			i++
			start := i
			for i < len(path) && path[i] != ']' {
				i++
			}
			if len(path) <= i {
				// No closing bracket.
				return nil
			}
			inner := path[start:i]
			if n, err := strconv.Atoi(inner); err == nil {
				segs = append(segs, Seg{Index: n, IsIndex: true})
			} else {
				segs = append(segs, Seg{Key: inner})
			}
			i++
		default:
			current = append(current, path[i])
			i++
		}
	}
	if 0 < len(current) {
		segs = append(segs, Seg{Key: string(current)})
	}
	return segs
}

// Get resolves a path against the given data.
//
// Returns nil when any segment is missing, the index is out of
// range, or the path is malformed.  nil doubles as the not-found
// sentinel throughout this module, which mirrors how absent values
// flow through modifier chains.
func Get(data map[string]interface{}, path string) interface{} {
	segs := ParsePath(path)
	if len(segs) == 0 {
		return nil
	}
	var x interface{} = data
	for _, seg := range segs {
		if x == nil {
			return nil
		}
		if seg.IsIndex {
			switch v := x.(type) {
			case []interface{}:
				i := seg.Index
				if i < 0 {
					i += len(v)
				}
				if i < 0 || len(v) <= i {
					return nil
				}
				x = v[i]
			case map[string]interface{}:
				// A numeric bracket against a map falls
				// back to string-key access.
				x = v[strconv.Itoa(seg.Index)]
			default:
				return nil
			}
		} else {
			m, is := x.(map[string]interface{})
			if !is {
				return nil
			}
			y, have := m[seg.Key]
			if !have {
				return nil
			}
			x = y
		}
	}
	return x
}
