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
	"testing"
)

func TestEval(t *testing.T) {
	data := map[string]interface{}{
		"type":    "message",
		"text":    "/start now",
		"user_id": int64(4217),
		"score":   88.5,
		"vip":     true,
		"status":  "active",
		"empty":   "",
		"ip":      "192.168.1.1",
		"user": map[string]interface{}{
			"name": "Ramona",
			"age":  int64(33),
			"tags": []interface{}{"admin", "beta"},
		},
		"items": []interface{}{
			map[string]interface{}{"id": int64(1), "state": "done"},
			map[string]interface{}{"id": int64(2), "state": "open"},
		},
	}

	tests := []struct {
		description string
		src         string
		expected    bool
	}{
		{"string equality", `$type == "message"`, true},
		{"string inequality", `$type != "callback"`, true},
		{"bare word equality", `$status == active`, true},
		{"number equality", `$user_id == 4217`, true},
		{"numeric string coercion", `$user_id == "4217"`, true},
		{"float comparison", `$score > 80`, true},
		{"float comparison false", `$score >= 90`, false},
		{"lte", `$user.age <= 33`, true},
		{"boolean literal", `$vip == true`, true},
		{"bare truthiness", `$vip`, true},
		{"bare truthiness of empty", `$empty`, false},

		{"and", `$type == "message" and $vip == true`, true},
		{"and short-circuits false", `$type == "callback" and $vip == true`, false},
		{"or", `$type == "callback" or $type == "message"`, true},
		{"not", `not $type == "callback"`, true},
		{"precedence not before and", `not $vip and $type == "message"`, false},
		{"parentheses", `$type == "callback" or ($vip == true and $score > 80)`, true},
		{"parentheses rebind or", `($type == "callback" or $vip == true) and $score > 80`, true},

		{"nested field", `$user.name == "Ramona"`, true},
		{"array index", `$items[0].state == "done"`, true},
		{"negative array index", `$items[-1].state == "open"`, true},
		{"index out of range is nil", `$items[5].state is_null`, true},
		{"missing field is nil", `$nope.nothing is_null`, true},
		{"missing field never greater", `$nope > 0`, false},
		{"missing field never equal", `$nope == 0`, false},

		{"substring", `$text ~ "start"`, true},
		{"substring miss", `$text ~ "stop"`, false},
		{"not substring", `$text !~ "stop"`, true},
		{"regex", `$text regex "^/start"`, true},
		{"regex miss", `$text regex "^/help"`, false},

		{"in literal list", `$status in ["active", "pending"]`, true},
		{"in literal list miss", `$status in ["closed", "pending"]`, false},
		{"not in literal list", `$status not in ["closed", "pending"]`, true},
		{"in number list", `$user_id in [1, 4217, 9]`, true},
		{"in field sequence", `"admin" in $user.tags`, true},
		{"not in field sequence", `"root" not in $user.tags`, true},
		{"in string", `"start" in $text`, true},

		{"is_null on empty string", `$empty is_null`, true},
		{"not is_null", `$status not is_null`, true},
		{"null literal", `$nope == None`, true},

		{"dotted date string", `$ip == 192.168.1.1`, true},
		{"constant true", `true`, true},
		{"constant false", `false`, false},
	}

	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			e, err := Parse(test.src)
			if err != nil {
				t.Fatalf("Parse(%q): %v", test.src, err)
			}
			if got := e.Eval(data); got != test.expected {
				t.Fatalf("Eval(%q) = %v, wanted %v", test.src, got, test.expected)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{
		"",
		"$a ==",
		"($a == 1",
		"$a in [1, 2",
		"== 1",
		"$a == 1 extra garbage ==",
	} {
		if _, err := Parse(src); err == nil {
			t.Errorf("Parse(%q) should have failed", src)
		}
	}
}

func TestMatch(t *testing.T) {
	data := map[string]interface{}{"type": "message"}

	if !Match("", data) {
		t.Fatal("empty condition constrains nothing")
	}
	if Match("$a ==", data) {
		t.Fatal("unparseable condition never matches")
	}
	if !Match(`$type == "message"`, data) {
		t.Fatal("match")
	}
}
