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

// Func is a modifier: one stage in a pipe-separated chain.
//
// The arg pointer is nil when the modifier was written without a
// colon ("upper") and non-nil otherwise ("truncate:10", "fallback:").
// A returned error does not fail the chain; the Processor records a
// warning and continues with whatever value the modifier returned
// (most modifiers return the incoming value unchanged on failure;
// division by zero deliberately returns nil so a chained fallback
// can take over).
type Func func(v interface{}, arg *string) (interface{}, error)

// Registry maps modifier names to their implementations.
//
// Registries are explicit values handed to a Processor.  There is no
// ambient global registry; see DefaultRegistry for the standard
// catalogue.
type Registry struct {
	funcs map[string]Func
}

// NewRegistry makes an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		funcs: make(map[string]Func, 64),
	}
}

// Register adds (or replaces) a modifier.
func (r *Registry) Register(name string, f Func) {
	r.funcs[name] = f
}

// Get looks up a modifier by name.
func (r *Registry) Get(name string) (Func, bool) {
	f, have := r.funcs[name]
	return f, have
}

// DefaultRegistry returns a Registry with the full standard
// catalogue: arithmetic, text, list, conditional, date/time,
// formatting, async-readiness, and utility modifiers.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	// Arithmetic.
	r.Register("+", modAdd)
	r.Register("-", modSubtract)
	r.Register("*", modMultiply)
	r.Register("/", modDivide)
	r.Register("%", modModulo)

	// Text.
	r.Register("upper", modUpper)
	r.Register("lower", modLower)
	r.Register("title", modTitle)
	r.Register("capitalize", modCapitalize)
	r.Register("truncate", modTruncate)
	r.Register("case", modCase)
	r.Register("regex", modRegex)
	r.Register("code", modCode)

	// Lists and maps.
	r.Register("length", modLength)
	r.Register("tags", modTags)
	r.Register("list", modList)
	r.Register("comma", modComma)
	r.Register("expand", modExpand)
	r.Register("keys", modKeys)

	// Conditionals.
	r.Register("equals", modEquals)
	r.Register("in_list", modInList)
	r.Register("true", modTrue)
	r.Register("value", modValue)
	r.Register("exists", modExists)
	r.Register("is_null", modIsNull)

	// Dates and times.
	r.Register("format", modFormat)
	r.Register("shift", modShift)
	r.Register("seconds", modSeconds)
	r.Register("to_date", periodModifier("date"))
	r.Register("to_hour", periodModifier("hour"))
	r.Register("to_minute", periodModifier("minute"))
	r.Register("to_second", periodModifier("second"))
	r.Register("to_week", periodModifier("week"))
	r.Register("to_month", periodModifier("month"))
	r.Register("to_year", periodModifier("year"))

	// Async readiness.
	r.Register("ready", modReady)
	r.Register("not_ready", modNotReady)

	// Utility.
	r.Register("fallback", modFallback)

	return r
}
