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

// Package placeholder resolves {path|mod1:arg|mod2} template spans
// inside arbitrarily nested parameter trees.
//
// A span names either a path into a context map or a quoted literal,
// followed by a pipe-separated modifier chain applied left to right.
// Spans can nest: a modifier argument or a fallback default may
// itself be a span, resolved depth-first up to a configurable limit.
// A span that cannot be resolved stays in the output as literal text,
// which makes broken templates easy to spot in the wild.
package placeholder

import (
	"log"
	"regexp"
	"strings"

	"github.com/Comcast/scenery/lookup"
)

// DefaultMaxDepth bounds nested span resolution.
var DefaultMaxDepth = 3

// placeholderPattern matches one span, allowing one level of nested
// braces inside it.  Deeper nesting is handled by recursive
// substitution over the captured content.
var placeholderPattern = regexp.MustCompile(`\{((?:[^{}]|\{[^{}]*\})+)\}`)

// Processor materializes template spans against a context map.
type Processor struct {
	// Modifiers is the catalogue this Processor consults.
	Modifiers *Registry

	// MaxDepth bounds nested span resolution.  Zero means
	// DefaultMaxDepth.
	MaxDepth int

	// Warnf, if not nil, receives non-fatal complaints: unknown
	// modifiers, bad arguments, depth limits.  Defaults to
	// log.Printf.
	Warnf func(format string, args ...interface{})
}

// NewProcessor makes a Processor backed by the given Registry (or
// DefaultRegistry when nil).
func NewProcessor(r *Registry) *Processor {
	if r == nil {
		r = DefaultRegistry()
	}
	return &Processor{
		Modifiers: r,
		MaxDepth:  DefaultMaxDepth,
	}
}

func (p *Processor) warnf(format string, args ...interface{}) {
	if p.Warnf != nil {
		p.Warnf(format, args...)
		return
	}
	log.Printf("placeholder "+format, args...)
}

func (p *Processor) maxDepth() int {
	if p.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return p.MaxDepth
}

// Process materializes every span in the given parameter tree and
// returns the fully resolved copy.  The input is not modified.
func (p *Processor) Process(params map[string]interface{}, values map[string]interface{}) map[string]interface{} {
	return p.processMap(params, values)
}

// ProcessText resolves spans in a single string, always returning a
// string.
func (p *Processor) ProcessText(text string, values map[string]interface{}) string {
	if !hasPlaceholders(text) {
		return text
	}
	return Stringify(p.processString(text, values, 0))
}

func (p *Processor) processValue(v interface{}, values map[string]interface{}) interface{} {
	switch x := v.(type) {
	case map[string]interface{}:
		return p.processMap(x, values)
	case []interface{}:
		return p.processList(x, values)
	case string:
		if !hasPlaceholders(x) {
			return x
		}
		return p.processString(x, values, 0)
	default:
		// Numbers, bools, and nil carry no spans.
		return v
	}
}

func (p *Processor) processMap(m map[string]interface{}, values map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = p.processValue(v, values)
	}
	return out
}

// processList handles the sequence-context expansions: a list element
// that was a single span and resolved to a sequence is spliced in,
// and an element carrying the expand modifier splices a sequence of
// sequences one level flat.
func (p *Processor) processList(xs []interface{}, values map[string]interface{}) []interface{} {
	out := make([]interface{}, 0, len(xs))
	for _, item := range xs {
		s, isString := item.(string)
		if !isString || !hasPlaceholders(s) {
			out = append(out, p.processValue(item, values))
			continue
		}

		hasExpand := strings.Contains(s, "|expand")
		processed := p.processString(s, values, 0)

		seq, isSeq := processed.([]interface{})
		switch {
		case isSeq && hasExpand && allSequences(seq):
			out = append(out, seq...)
		case isSeq && isEntirePlaceholder(s):
			out = append(out, seq...)
		default:
			out = append(out, processed)
		}
	}
	return out
}

func allSequences(xs []interface{}) bool {
	if len(xs) == 0 {
		return false
	}
	for _, x := range xs {
		if _, is := x.([]interface{}); !is {
			return false
		}
	}
	return true
}

// processString resolves spans in one string.  When the whole string
// is a single span, the resolved value keeps its type; spans embedded
// in surrounding text are stringified in place.
func (p *Processor) processString(text string, values map[string]interface{}, depth int) interface{} {
	if isEntirePlaceholder(text) {
		content := strings.TrimSpace(text[1 : len(text)-1])
		v := p.chain(content, values, depth)
		if v == nil {
			// Unresolved spans stay literal.
			return text
		}
		return v
	}

	// Mixed text.  Substitute iteratively so outer spans revealed
	// by inner substitution get resolved too.
	for i := 0; i < p.maxDepth(); i++ {
		if !placeholderPattern.MatchString(text) {
			return text
		}
		next := placeholderPattern.ReplaceAllStringFunc(text, func(span string) string {
			content := strings.TrimSpace(span[1 : len(span)-1])
			v := p.chain(content, values, depth)
			if v == nil {
				return span
			}
			return Stringify(v)
		})
		if next == text {
			return text
		}
		text = next
	}
	return text
}

// chain resolves one span body: nested spans first, then the path or
// literal, then the modifier pipeline.  Returns nil when the value
// stayed unresolved.
func (p *Processor) chain(content string, values map[string]interface{}, depth int) interface{} {
	if p.maxDepth() <= depth {
		p.warnf("max nesting depth %d reached at {%s}", p.maxDepth(), content)
		return nil
	}

	if hasPlaceholders(content) {
		content = placeholderPattern.ReplaceAllStringFunc(content, func(span string) string {
			inner := strings.TrimSpace(span[1 : len(span)-1])
			v := p.chain(inner, values, depth+1)
			if v == nil {
				return span
			}
			return Stringify(v)
		})
	}

	parts := strings.Split(content, "|")
	field := strings.TrimSpace(parts[0])

	var value interface{}
	if lit, is := literal(field); is {
		value = lit
	} else {
		value = lookup.Get(values, field)
	}

	// A looked-up value may itself carry spans.
	if s, is := value.(string); is && hasPlaceholders(s) {
		value = p.processString(s, values, depth+1)
	}

	for _, mod := range parts[1:] {
		value = p.applyModifier(value, strings.TrimSpace(mod))
	}

	if value == nil {
		return nil
	}
	return Typed(value)
}

// applyModifier runs a single stage.  Failures never fail the chain:
// the modifier's returned value is used and a warning is recorded.
func (p *Processor) applyModifier(value interface{}, spec string) interface{} {
	if spec == "" {
		return value
	}

	var (
		name string
		arg  *string
	)
	if strings.ContainsRune("+-*/%", rune(spec[0])) {
		name = spec[:1]
		if 1 < len(spec) {
			a := stripQuotes(spec[1:])
			arg = &a
		}
	} else if i := strings.IndexByte(spec, ':'); 0 <= i {
		name = spec[:i]
		a := stripQuotes(spec[i+1:])
		arg = &a
	} else {
		name = spec
	}

	f, have := p.Modifiers.Get(name)
	if !have {
		p.warnf("unknown modifier %q", name)
		return value
	}

	out, err := f(value, arg)
	if err != nil {
		p.warnf("modifier %q: %s", name, err)
	}
	return out
}

// literal recognizes quoted span heads: {'Guest'|upper}.  Escaped
// quotes inside the literal are unescaped.
func literal(field string) (string, bool) {
	if len(field) < 2 {
		return "", false
	}
	first, last := field[0], field[len(field)-1]
	if first == '\'' && last == '\'' {
		return strings.ReplaceAll(field[1:len(field)-1], `\'`, `'`), true
	}
	if first == '"' && last == '"' {
		return strings.ReplaceAll(field[1:len(field)-1], `\"`, `"`), true
	}
	return "", false
}

func hasPlaceholders(s string) bool {
	return strings.Contains(s, "{") && strings.Contains(s, "}")
}

// isEntirePlaceholder reports whether the whole string is exactly one
// balanced span.
func isEntirePlaceholder(s string) bool {
	if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
		return false
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
			if depth == 1 && i != 0 {
				return false
			}
		case '}':
			depth--
			if depth < 0 {
				return false
			}
			if depth == 0 && i != len(s)-1 {
				return false
			}
		}
	}
	return depth == 0
}
