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

package core

import (
	"testing"
)

func TestTriggerMatches(t *testing.T) {
	event := map[string]interface{}{
		"type": "message",
		"text": "hello there",
		"user": map[string]interface{}{
			"role":  "admin",
			"score": 42,
		},
	}

	tests := []struct {
		description string
		trigger     *Trigger
		want        bool
	}{
		{
			description: "single field equality",
			trigger:     &Trigger{Match: map[string]interface{}{"type": "message"}},
			want:        true,
		},
		{
			description: "fields AND together",
			trigger: &Trigger{Match: map[string]interface{}{
				"type":      "message",
				"user.role": "admin",
			}},
			want: true,
		},
		{
			description: "one mismatched field fails the trigger",
			trigger: &Trigger{Match: map[string]interface{}{
				"type":      "message",
				"user.role": "guest",
			}},
			want: false,
		},
		{
			description: "numeric equality tolerates int vs float",
			trigger:     &Trigger{Match: map[string]interface{}{"user.score": 42.0}},
			want:        true,
		},
		{
			description: "condition ANDs with fields",
			trigger: &Trigger{
				Match:     map[string]interface{}{"type": "message"},
				Condition: `$text ~ "hello"`,
			},
			want: true,
		},
		{
			description: "false condition fails a matching field set",
			trigger: &Trigger{
				Match:     map[string]interface{}{"type": "message"},
				Condition: `$user.score > 100`,
			},
			want: false,
		},
		{
			description: "condition alone is a valid trigger",
			trigger:     &Trigger{Condition: `$user.role == "admin" and $user.score >= 40`},
			want:        true,
		},
		{
			description: "empty trigger matches everything",
			trigger:     &Trigger{},
			want:        true,
		},
		{
			description: "missing field never equals a value",
			trigger:     &Trigger{Match: map[string]interface{}{"nope": "x"}},
			want:        false,
		},
	}

	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			if got := test.trigger.Matches(event); got != test.want {
				t.Fatalf("got %v, wanted %v", got, test.want)
			}
		})
	}
}

func TestTriggersOR(t *testing.T) {
	s := &Scenario{
		Name: "start",
		Triggers: []*Trigger{
			{Match: map[string]interface{}{"type": "message", "text": "/start"}},
			{Match: map[string]interface{}{"type": "callback", "data": "start"}},
		},
	}
	set := NewSet([]*Scenario{s}, nil)

	tests := []struct {
		description string
		event       map[string]interface{}
		want        bool
	}{
		{
			description: "first trigger",
			event:       map[string]interface{}{"type": "message", "text": "/start"},
			want:        true,
		},
		{
			description: "second trigger",
			event:       map[string]interface{}{"type": "callback", "data": "start"},
			want:        true,
		},
		{
			description: "neither",
			event:       map[string]interface{}{"type": "message", "text": "/help"},
			want:        false,
		},
	}

	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			matched := set.Match(test.event)
			if got := 0 < len(matched); got != test.want {
				t.Fatalf("got %v, wanted %v", got, test.want)
			}
		})
	}
}

func TestScenarioCompile(t *testing.T) {
	tests := []struct {
		description string
		scenario    *Scenario
		ok          bool
	}{
		{
			description: "minimal valid scenario",
			scenario: &Scenario{
				Name:  "greet",
				Steps: []*Step{{Action: "echo"}},
			},
			ok: true,
		},
		{
			description: "no name",
			scenario:    &Scenario{Steps: []*Step{{Action: "echo"}}},
			ok:          false,
		},
		{
			description: "bad trigger condition",
			scenario: &Scenario{
				Name:     "broken",
				Triggers: []*Trigger{{Condition: `$x == and`}},
			},
			ok: false,
		},
		{
			description: "bad schedule",
			scenario: &Scenario{
				Name:     "cronish",
				Schedule: "not a cron line at all no sir",
			},
			ok: false,
		},
		{
			description: "step without action",
			scenario: &Scenario{
				Name:  "stuck",
				Steps: []*Step{{}},
			},
			ok: false,
		},
		{
			description: "async step without action_id",
			scenario: &Scenario{
				Name:  "bg",
				Steps: []*Step{{Action: "echo", Async: true}},
			},
			ok: false,
		},
		{
			description: "unknown transition kind",
			scenario: &Scenario{
				Name: "weird",
				Steps: []*Step{{
					Action: "echo",
					Transitions: []*TransitionRule{
						{Match: "any", Kind: "teleport"},
					},
				}},
			},
			ok: false,
		},
		{
			description: "move_steps without a value",
			scenario: &Scenario{
				Name: "drift",
				Steps: []*Step{{
					Action: "echo",
					Transitions: []*TransitionRule{
						{Match: "any", Kind: TransitionMoveSteps},
					},
				}},
			},
			ok: false,
		},
		{
			description: "move_steps with a non-numeric value",
			scenario: &Scenario{
				Name: "drift",
				Steps: []*Step{{
					Action: "echo",
					Transitions: []*TransitionRule{
						{Match: "any", Kind: TransitionMoveSteps, Value: "two"},
					},
				}},
			},
			ok: false,
		},
		{
			description: "jump_to_step with a fractional value",
			scenario: &Scenario{
				Name: "half",
				Steps: []*Step{{
					Action: "echo",
					Transitions: []*TransitionRule{
						{Match: "any", Kind: TransitionJumpToStep, Value: 1.5},
					},
				}},
			},
			ok: false,
		},
		{
			description: "jump_to_scenario without a value",
			scenario: &Scenario{
				Name: "nowhere",
				Steps: []*Step{{
					Action: "echo",
					Transitions: []*TransitionRule{
						{Match: "any", Kind: TransitionJumpToScenario},
					},
				}},
			},
			ok: false,
		},
		{
			description: "jump_to_scenario with an empty name",
			scenario: &Scenario{
				Name: "blank",
				Steps: []*Step{{
					Action: "echo",
					Transitions: []*TransitionRule{
						{Match: "any", Kind: TransitionJumpToScenario, Value: ""},
					},
				}},
			},
			ok: false,
		},
		{
			description: "jump_to_scenario with an empty list",
			scenario: &Scenario{
				Name: "empties",
				Steps: []*Step{{
					Action: "echo",
					Transitions: []*TransitionRule{
						{Match: "any", Kind: TransitionJumpToScenario, Value: []interface{}{}},
					},
				}},
			},
			ok: false,
		},
		{
			description: "move_steps with an integer is fine",
			scenario: &Scenario{
				Name: "hop",
				Steps: []*Step{{
					Action: "echo",
					Transitions: []*TransitionRule{
						{Match: "any", Kind: TransitionMoveSteps, Value: 2},
					},
				}},
			},
			ok: true,
		},
		{
			description: "jump_to_scenario with a map value",
			scenario: &Scenario{
				Name: "mapjump",
				Steps: []*Step{{
					Action: "echo",
					Transitions: []*TransitionRule{
						{
							Match: "any",
							Kind:  TransitionJumpToScenario,
							Value: map[string]interface{}{"no": "good"},
						},
					},
				}},
			},
			ok: false,
		},
		{
			description: "empty transition kind defaults to continue",
			scenario: &Scenario{
				Name: "lazy",
				Steps: []*Step{{
					Action:      "echo",
					Transitions: []*TransitionRule{{Match: "success"}},
				}},
			},
			ok: true,
		},
	}

	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			err := test.scenario.Compile()
			if test.ok && err != nil {
				t.Fatal(err)
			}
			if !test.ok && err == nil {
				t.Fatal("expected a compile error")
			}
			if !test.ok {
				if _, is := err.(*ValidationError); !is {
					t.Fatalf("wanted a ValidationError; got %T", err)
				}
			}
		})
	}
}

func TestSetExcludesBroken(t *testing.T) {
	var warnings int
	set := NewSet([]*Scenario{
		{Name: "good", Steps: []*Step{{Action: "echo"}}},
		{Name: "", Steps: []*Step{{Action: "echo"}}},
		{Name: "good", Steps: []*Step{{Action: "echo"}}},
		{Name: "fine", Steps: []*Step{{Action: "echo"}}},
	}, func(format string, args ...interface{}) {
		warnings++
	})

	if set.Len() != 2 {
		t.Fatalf("wanted 2 scenarios; got %d (%v)", set.Len(), set.Names())
	}
	if warnings != 2 {
		t.Fatalf("wanted 2 warnings; got %d", warnings)
	}
	if _, have := set.Find("good"); !have {
		t.Fatal("lost the good scenario")
	}
}

func TestSetMatchOrder(t *testing.T) {
	anyMessage := []*Trigger{{Match: map[string]interface{}{"type": "message"}}}
	set := NewSet([]*Scenario{
		{Name: "c", Triggers: anyMessage},
		{Name: "a", Triggers: anyMessage},
		{Name: "b", Triggers: []*Trigger{{Match: map[string]interface{}{"type": "other"}}}},
	}, nil)

	matched := set.Match(map[string]interface{}{"type": "message"})
	if len(matched) != 2 {
		t.Fatalf("wanted 2 matches; got %d", len(matched))
	}
	// Definition order, not name order.
	if matched[0].Name != "c" || matched[1].Name != "a" {
		t.Fatalf("wrong order: %s, %s", matched[0].Name, matched[1].Name)
	}
}

func TestSetScheduled(t *testing.T) {
	set := NewSet([]*Scenario{
		{Name: "nightly", Schedule: "0 3 * * *"},
		{Name: "reactive", Triggers: []*Trigger{{}}},
	}, nil)
	ss := set.Scheduled()
	if len(ss) != 1 || ss[0].Name != "nightly" {
		t.Fatalf("got %v", ss)
	}
}
