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
	"regexp"
	"strings"
)

type tokenType int

const (
	tokenField   tokenType = iota // $user_id, $message.text, $items[0].id
	tokenString                   // "text", 'text', bare words, dotted dates
	tokenNumber                   // 123, -4, 45.67
	tokenBoolean                  // true, false, True, False
	tokenNull                     // None
	tokenOp                       // == != > < >= <= ~ !~ regex in "not in" is_null "not is_null"
	tokenLogical                  // and or not
	tokenBracket                  // ( ) [ ]
	tokenComma
)

type token struct {
	typ tokenType
	val string
	pos int
}

func (t token) String() string {
	return fmt.Sprintf("%q at %d", t.val, t.pos)
}

// The patterns are tried in order at each position, so the ordering
// encodes lexing priority: keywords before bare words, multi-word
// operators before their prefixes, dotted date-like strings before
// numbers.
var lexPatterns = []struct {
	re  *regexp.Regexp
	typ tokenType
}{
	{regexp.MustCompile(`^(?:True|true|False|false)\b`), tokenBoolean},
	{regexp.MustCompile(`^None\b`), tokenNull},

	{regexp.MustCompile(`^\$[\w.]+(?:\[[^\]]+\])+(?:\.\w+|\[[^\]]+\])*`), tokenField},
	{regexp.MustCompile(`^\$[\w.]+`), tokenField},

	{regexp.MustCompile(`^"[^"]*"`), tokenString},
	{regexp.MustCompile(`^'[^']*'`), tokenString},

	// Date-like and address-like strings: 02.12.2012, 192.168.1.1,
	// 25.12.2024 15:30.  Must come before plain numbers.
	{regexp.MustCompile(`^\d+\.\d+\.\d+[.\d:]*(?:[ \t]+[\d:]+)*`), tokenString},
	// Digit-led identifiers: 123:abc, 550e8400-e29b-...
	{regexp.MustCompile(`^\d+[a-zA-Z\-:][a-zA-Z0-9_\-:.]*`), tokenString},

	{regexp.MustCompile(`^-?\d+\.\d+`), tokenNumber},
	{regexp.MustCompile(`^-?\d+`), tokenNumber},

	{regexp.MustCompile(`^not\s+is_null\b`), tokenOp},
	{regexp.MustCompile(`^not\s+in\b`), tokenOp},

	{regexp.MustCompile(`^and\b`), tokenLogical},
	{regexp.MustCompile(`^or\b`), tokenLogical},
	{regexp.MustCompile(`^not\b`), tokenLogical},

	{regexp.MustCompile(`^(?:>=|<=|!=|==|!~|~|>|<)`), tokenOp},

	{regexp.MustCompile(`^regex\b`), tokenOp},
	{regexp.MustCompile(`^is_null\b`), tokenOp},
	{regexp.MustCompile(`^in\b`), tokenOp},

	{regexp.MustCompile(`^[a-zA-Z0-9_][a-zA-Z0-9_\-:.]*`), tokenString},

	{regexp.MustCompile(`^[()\[\]]`), tokenBracket},
	{regexp.MustCompile(`^,`), tokenComma},
}

// tokenize splits a condition expression into tokens.  Multi-word
// operators ("not in", "not is_null") come back as single tokens with
// their whitespace normalized.
func tokenize(src string) ([]token, error) {
	var toks []token
	pos := 0
	for pos < len(src) {
		if src[pos] == ' ' || src[pos] == '\t' || src[pos] == '\n' || src[pos] == '\r' {
			pos++
			continue
		}
		rest := src[pos:]
		matched := false
		for _, p := range lexPatterns {
			loc := p.re.FindStringIndex(rest)
			if loc == nil {
				continue
			}
			val := strings.TrimRight(rest[:loc[1]], " \t")
			if p.typ == tokenOp {
				val = strings.Join(strings.Fields(val), " ")
			}
			toks = append(toks, token{typ: p.typ, val: val, pos: pos})
			pos += loc[1]
			matched = true
			break
		}
		if !matched {
			return nil, fmt.Errorf("unexpected character %q at %d", src[pos], pos)
		}
	}
	return toks, nil
}
