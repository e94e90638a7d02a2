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
	"fmt"

	"github.com/Comcast/scenery/condition"
	"github.com/Comcast/scenery/lookup"
	"github.com/Comcast/scenery/schedule"
)

// Scenario is one declarative workflow: what launches it and the
// ordered steps to walk.  A Scenario with no triggers and no schedule
// is reachable only by jump or call from another scenario.
//
// A Scenario should be Compile()d before use.
type Scenario struct {
	// Name is unique within a tenant's Set.
	Name string `json:"name" yaml:"name"`

	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Triggers launch this scenario from live events.  Multiple
	// triggers combine with OR.
	Triggers []*Trigger `json:"trigger,omitempty" yaml:"trigger,omitempty"`

	// Schedule is an optional cron expression.
	Schedule string `json:"schedule,omitempty" yaml:"schedule,omitempty"`

	Steps []*Step `json:"step,omitempty" yaml:"step,omitempty"`

	compiled bool
}

// Trigger is a set of field-equality constraints (implicit AND) plus
// an optional condition expression, also ANDed.
type Trigger struct {
	// Match maps event field paths to required values.
	Match map[string]interface{} `json:"match,omitempty" yaml:",inline"`

	// Condition is a free-form expression in the condition
	// language.
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty"`

	cond condition.Expr
}

// Matches reports whether an event satisfies this trigger: every
// Match field equal and the condition (if any) true.
func (t *Trigger) Matches(event map[string]interface{}) bool {
	for path, expected := range t.Match {
		if !condition.Equal(lookup.Get(event, path), expected) {
			return false
		}
	}
	if t.Condition == "" {
		return true
	}
	if t.cond != nil {
		return t.cond.Eval(event)
	}
	return condition.Match(t.Condition, event)
}

// Step is one action invocation with its transition rules.
type Step struct {
	Action string `json:"action" yaml:"action"`

	// Params may contain template spans anywhere in the tree.
	Params map[string]interface{} `json:"params,omitempty" yaml:"params,omitempty"`

	// Async hands the action to the chain's orchestrator instead
	// of awaiting it; ActionID is then required.
	Async    bool   `json:"async,omitempty" yaml:"async,omitempty"`
	ActionID string `json:"action_id,omitempty" yaml:"action_id,omitempty"`

	Transitions []*TransitionRule `json:"transition,omitempty" yaml:"transition,omitempty"`
}

// TransitionRule maps a step's result tag to a control-flow effect.
type TransitionRule struct {
	// Match is a literal result tag or the wildcard "any".  An
	// "any" rule pre-empts every result-specific rule.
	Match string `json:"action_result" yaml:"action_result"`

	// Kind is one of the transition kinds below.
	Kind string `json:"transition_action" yaml:"transition_action"`

	// Value carries the step delta, target index, or target
	// scenario name(s), depending on Kind.
	Value interface{} `json:"transition_value,omitempty" yaml:"transition_value,omitempty"`
}

const (
	TransitionContinue       = "continue"
	TransitionBreak          = "break"
	TransitionAbort          = "abort"
	TransitionStop           = "stop"
	TransitionMoveSteps      = "move_steps"
	TransitionJumpToStep     = "jump_to_step"
	TransitionJumpToScenario = "jump_to_scenario"
)

func knownTransition(kind string) bool {
	switch kind {
	case TransitionContinue, TransitionBreak, TransitionAbort, TransitionStop,
		TransitionMoveSteps, TransitionJumpToStep, TransitionJumpToScenario:
		return true
	}
	return false
}

// Compile validates the definition and parses its trigger conditions
// and schedule.  A scenario that fails to compile must not enter a
// Set.
func (s *Scenario) Compile() error {
	if s.Name == "" {
		return &ValidationError{Reason: "scenario has no name"}
	}
	for _, t := range s.Triggers {
		if t.Condition == "" {
			continue
		}
		cond, err := condition.Parse(t.Condition)
		if err != nil {
			return &ValidationError{
				Scenario: s.Name,
				Reason:   fmt.Sprintf("bad trigger condition %q: %v", t.Condition, err),
			}
		}
		t.cond = cond
	}
	if s.Schedule != "" {
		if err := schedule.Valid(s.Schedule); err != nil {
			return &ValidationError{
				Scenario: s.Name,
				Reason:   fmt.Sprintf("bad schedule %q: %v", s.Schedule, err),
			}
		}
	}
	for i, step := range s.Steps {
		if step.Action == "" {
			return &ValidationError{
				Scenario: s.Name,
				Reason:   fmt.Sprintf("step %d has no action", i),
			}
		}
		if step.Async && step.ActionID == "" {
			return &ValidationError{
				Scenario: s.Name,
				Reason:   fmt.Sprintf("async step %d has no action_id", i),
			}
		}
		for _, rule := range step.Transitions {
			if rule.Kind == "" {
				rule.Kind = TransitionContinue
			}
			if !knownTransition(rule.Kind) {
				return &ValidationError{
					Scenario: s.Name,
					Reason:   fmt.Sprintf("step %d: unknown transition %q", i, rule.Kind),
				}
			}
			switch rule.Kind {
			case TransitionMoveSteps, TransitionJumpToStep:
				if _, ok := asIntStrict(rule.Value); !ok {
					return &ValidationError{
						Scenario: s.Name,
						Reason:   fmt.Sprintf("step %d: %s needs an integer transition_value", i, rule.Kind),
					}
				}
			case TransitionJumpToScenario:
				switch target := rule.Value.(type) {
				case string:
					if target == "" {
						return &ValidationError{
							Scenario: s.Name,
							Reason:   fmt.Sprintf("step %d: jump_to_scenario needs a scenario name", i),
						}
					}
				case []interface{}:
					if len(target) == 0 {
						return &ValidationError{
							Scenario: s.Name,
							Reason:   fmt.Sprintf("step %d: jump_to_scenario list is empty", i),
						}
					}
					for _, x := range target {
						if name, is := x.(string); !is || name == "" {
							return &ValidationError{
								Scenario: s.Name,
								Reason:   fmt.Sprintf("step %d: jump_to_scenario list entries must be names", i),
							}
						}
					}
				default:
					return &ValidationError{
						Scenario: s.Name,
						Reason:   fmt.Sprintf("step %d: jump_to_scenario value must be a name or list", i),
					}
				}
			}
		}
	}
	s.compiled = true
	return nil
}

// Set is a tenant's collection of compiled scenarios.  Read-only
// after NewSet, so any number of chains can consult it concurrently.
type Set struct {
	scenarios map[string]*Scenario
	order     []string
}

// NewSet compiles the given scenarios into a Set.  A scenario that
// fails compilation -- or that duplicates an earlier name -- is
// excluded and reported through warnf, and the rest stay operable.
func NewSet(scenarios []*Scenario, warnf func(format string, args ...interface{})) *Set {
	if warnf == nil {
		warnf = func(string, ...interface{}) {}
	}
	set := &Set{
		scenarios: make(map[string]*Scenario, len(scenarios)),
	}
	for _, s := range scenarios {
		if err := s.Compile(); err != nil {
			warnf("excluding scenario: %v", err)
			continue
		}
		if _, have := set.scenarios[s.Name]; have {
			warnf("excluding scenario: %v", &ValidationError{
				Scenario: s.Name,
				Reason:   "duplicate name",
			})
			continue
		}
		set.scenarios[s.Name] = s
		set.order = append(set.order, s.Name)
	}
	return set
}

// Find looks a scenario up by name.
func (set *Set) Find(name string) (*Scenario, bool) {
	s, have := set.scenarios[name]
	return s, have
}

// Len reports how many scenarios survived compilation.
func (set *Set) Len() int {
	return len(set.order)
}

// Names returns the scenario names in definition order.
func (set *Set) Names() []string {
	names := make([]string, len(set.order))
	copy(names, set.order)
	return names
}

// Match returns every scenario with a trigger satisfied by the
// event, in definition order.
func (set *Set) Match(event map[string]interface{}) []*Scenario {
	var matched []*Scenario
	for _, name := range set.order {
		s := set.scenarios[name]
		for _, t := range s.Triggers {
			if t.Matches(event) {
				matched = append(matched, s)
				break
			}
		}
	}
	return matched
}

// Scheduled returns the scenarios carrying cron expressions.
func (set *Set) Scheduled() []*Scenario {
	var ss []*Scenario
	for _, name := range set.order {
		if s := set.scenarios[name]; s.Schedule != "" {
			ss = append(ss, s)
		}
	}
	return ss
}
