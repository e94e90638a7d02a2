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

// Package condition parses and evaluates the boolean expressions
// that gate triggers and steps.
//
// The grammar is small: comparisons (==, !=, >, <, >=, <=), substring
// match (~, !~), regular-expression match (regex), nullability
// (is_null, not is_null), list membership (in, not in), and the
// connectives and/or/not with conventional precedence and
// parentheses.  Field references carry a leading $ marker and resolve
// against a context map with dot and bracket notation:
//
//	$type == "message" and ($user.age >= 18 or $user.vip == true)
//	$status in ["active", "pending"] and $text ~ "help"
//
// A missing field never panics.  It resolves to nil, which compares
// unequal to everything, is not greater or less than anything, and is
// null.
package condition

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Comcast/scenery/lookup"
)

// Expr is a parsed condition, safe for concurrent evaluation.
type Expr interface {
	Eval(data map[string]interface{}) bool
}

// Parse compiles a condition expression.  The whole input must be
// consumed; trailing tokens are an error.
func Parse(src string) (Expr, error) {
	switch strings.ToLower(strings.TrimSpace(src)) {
	case "true":
		return constExpr(true), nil
	case "false":
		return constExpr(false), nil
	case "":
		return nil, fmt.Errorf("empty condition")
	}

	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.toks) {
		return nil, fmt.Errorf("unexpected token %s", p.toks[p.pos])
	}
	return e, nil
}

// Match parses and evaluates in one step.  An empty condition is no
// constraint at all and matches; an unparseable one never matches.
func Match(src string, data map[string]interface{}) bool {
	if strings.TrimSpace(src) == "" {
		return true
	}
	e, err := Parse(src)
	if err != nil {
		return false
	}
	return e.Eval(data)
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() (token, bool) {
	if p.pos < len(p.toks) {
		return p.toks[p.pos], true
	}
	return token{}, false
}

func (p *parser) next() (token, bool) {
	t, ok := p.peek()
	if ok {
		p.pos++
	}
	return t, ok
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.peek()
		if !ok || t.typ != tokenLogical || t.val != "or" {
			return left, nil
		}
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orExpr{left, right}
	}
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.peek()
		if !ok || t.typ != tokenLogical || t.val != "and" {
			return left, nil
		}
		p.pos++
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = andExpr{left, right}
	}
}

func (p *parser) parseNot() (Expr, error) {
	if t, ok := p.peek(); ok && t.typ == tokenLogical && t.val == "not" {
		p.pos++
		e, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return notExpr{e}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (Expr, error) {
	if t, ok := p.peek(); ok && t.typ == tokenBracket && t.val == "(" {
		p.pos++
		e, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		t, ok := p.next()
		if !ok || t.val != ")" {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		return e, nil
	}

	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	t, ok := p.peek()
	if !ok || t.typ != tokenOp {
		// A bare operand is tested for truthiness.
		return truthyExpr{left}, nil
	}
	p.pos++

	switch t.val {
	case "==", "!=", ">", "<", ">=", "<=", "~", "!~", "regex":
		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		return cmpExpr{op: t.val, left: left, right: right}, nil
	case "is_null":
		return nullExpr{operand: left}, nil
	case "not is_null":
		return nullExpr{operand: left, negate: true}, nil
	case "in", "not in":
		return p.parseIn(left, t.val == "not in")
	}
	return nil, fmt.Errorf("unexpected operator %s", t)
}

func (p *parser) parseIn(left operand, negate bool) (Expr, error) {
	if t, ok := p.peek(); ok && t.typ == tokenBracket && t.val == "[" {
		p.pos++
		var items []operand
		for {
			t, ok := p.peek()
			if !ok {
				return nil, fmt.Errorf("unterminated list")
			}
			if t.typ == tokenBracket && t.val == "]" {
				p.pos++
				return inExpr{left: left, items: items, negate: negate}, nil
			}
			if t.typ == tokenComma {
				p.pos++
				continue
			}
			item, err := p.parseOperand()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
	}
	// The right side may also be a field holding a sequence or a
	// string to probe for membership.
	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return inExpr{left: left, right: right, negate: negate}, nil
}

func (p *parser) parseOperand() (operand, error) {
	t, ok := p.next()
	if !ok {
		return nil, fmt.Errorf("unexpected end of condition")
	}
	switch t.typ {
	case tokenField:
		return fieldOperand{path: t.val[1:]}, nil
	case tokenString:
		s := t.val
		if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') {
			s = s[1 : len(s)-1]
		}
		return literal{s}, nil
	case tokenNumber:
		if strings.Contains(t.val, ".") {
			f, err := strconv.ParseFloat(t.val, 64)
			if err != nil {
				return nil, fmt.Errorf("bad number %s", t)
			}
			return literal{f}, nil
		}
		n, err := strconv.ParseInt(t.val, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %s", t)
		}
		return literal{n}, nil
	case tokenBoolean:
		return literal{strings.EqualFold(t.val, "true")}, nil
	case tokenNull:
		return literal{nil}, nil
	}
	return nil, fmt.Errorf("unexpected token %s", t)
}

// operand is one side of a comparison.
type operand interface {
	value(data map[string]interface{}) interface{}
}

type literal struct {
	v interface{}
}

func (l literal) value(map[string]interface{}) interface{} {
	return l.v
}

type fieldOperand struct {
	path string
}

func (f fieldOperand) value(data map[string]interface{}) interface{} {
	return lookup.Get(data, f.path)
}

type constExpr bool

func (c constExpr) Eval(map[string]interface{}) bool { return bool(c) }

type orExpr struct{ left, right Expr }

func (e orExpr) Eval(data map[string]interface{}) bool {
	return e.left.Eval(data) || e.right.Eval(data)
}

type andExpr struct{ left, right Expr }

func (e andExpr) Eval(data map[string]interface{}) bool {
	return e.left.Eval(data) && e.right.Eval(data)
}

type notExpr struct{ expr Expr }

func (e notExpr) Eval(data map[string]interface{}) bool {
	return !e.expr.Eval(data)
}

type truthyExpr struct{ operand operand }

func (e truthyExpr) Eval(data map[string]interface{}) bool {
	return truthy(e.operand.value(data))
}

type nullExpr struct {
	operand operand
	negate  bool
}

func (e nullExpr) Eval(data map[string]interface{}) bool {
	null := isNull(e.operand.value(data))
	if e.negate {
		return !null
	}
	return null
}

type cmpExpr struct {
	op          string
	left, right operand
}

func (e cmpExpr) Eval(data map[string]interface{}) bool {
	l := e.left.value(data)
	r := e.right.value(data)
	switch e.op {
	case "==":
		return safeEq(l, r)
	case "!=":
		return !safeEq(l, r)
	case ">":
		return safeCmp(l, r, func(a, b float64) bool { return a > b })
	case "<":
		return safeCmp(l, r, func(a, b float64) bool { return a < b })
	case ">=":
		return safeCmp(l, r, func(a, b float64) bool { return a >= b })
	case "<=":
		return safeCmp(l, r, func(a, b float64) bool { return a <= b })
	case "~":
		return contains(l, r)
	case "!~":
		return !contains(l, r)
	case "regex":
		return regexMatch(l, r)
	}
	return false
}

type inExpr struct {
	left   operand
	items  []operand
	right  operand
	negate bool
}

func (e inExpr) Eval(data map[string]interface{}) bool {
	l := e.left.value(data)
	var found bool
	if e.right != nil {
		found = member(l, e.right.value(data))
	} else {
		for _, item := range e.items {
			if safeEq(l, item.value(data)) {
				found = true
				break
			}
		}
	}
	if e.negate {
		return !found
	}
	return found
}
