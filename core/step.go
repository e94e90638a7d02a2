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
	"context"
	"log"
	"strconv"
	"time"

	"github.com/Comcast/scenery/async"
	"github.com/Comcast/scenery/placeholder"
)

// Control limits how much work a chain may do.
type Control struct {
	// Limit bounds step executions across the whole chain,
	// including frames entered by jumps and calls.  Exceeding it
	// ends the chain with an error; it's almost always a
	// transition loop with no exit.
	Limit int
}

// DefaultControl is the default Control.
var DefaultControl = &Control{
	Limit: 100,
}

// ChainResult is a chain's terminal state.
type ChainResult struct {
	// Id is the chain's id.
	Id string

	// Result is success, error, abort, break, or stop.
	Result string

	// Cache is the chain's final cache.
	Cache map[string]interface{}

	// Path lists the scenario names the chain entered, in order.
	Path []string

	// Err carries the fatal error when Result is "error".
	Err error
}

// Chain is one isolated run of a scenario and whatever scenarios it
// jumps or calls into.  Its cache and async registry belong to it
// alone; no other chain ever sees them.
type Chain struct {
	// Id names this chain in logs.
	Id string

	Tenant     string
	Set        *Set
	Dispatcher Dispatcher
	Processor  *placeholder.Processor
	Control    *Control

	// Warnf records non-fatal trouble.  Defaults to log.Printf.
	Warnf func(format string, args ...interface{})

	// StopEvent, when not nil, is called when a step fires a stop
	// transition, so the engine can keep sibling chains from the
	// same event from starting.
	StopEvent func()

	event        map[string]interface{}
	cache        map[string]interface{}
	orchestrator *async.Orchestrator
	path         []string
	lastResult   interface{}
	lastError    map[string]interface{}
	steps        int
}

// NewChain prepares a chain for the given event context.  The event
// map is treated as read-only.
func NewChain(set *Set, d Dispatcher, p *placeholder.Processor, event map[string]interface{}) *Chain {
	return &Chain{
		Id:           Gensym(8),
		Set:          set,
		Dispatcher:   d,
		Processor:    p,
		Control:      DefaultControl,
		event:        event,
		cache:        make(map[string]interface{}),
		orchestrator: async.NewOrchestrator(),
	}
}

func (c *Chain) warnf(format string, args ...interface{}) {
	if c.Warnf != nil {
		c.Warnf(format, args...)
		return
	}
	log.Printf("Chain "+c.Id+" "+format, args...)
}

// Context assembles the lookup context for the next step's templates
// and conditions: the event fields, the cache under "cache", the
// async registry under "_async", and the chain's bookkeeping fields.
func (c *Chain) Context() map[string]interface{} {
	data := make(map[string]interface{}, len(c.event)+6)
	for k, v := range c.event {
		data[k] = v
	}
	if c.Tenant != "" {
		data["tenant_id"] = c.Tenant
	}
	data["cache"] = c.cache
	data["_async"] = c.orchestrator.Snapshot()
	chain := make([]interface{}, len(c.path))
	for i, name := range c.path {
		chain[i] = name
	}
	data["scenario_chain"] = chain
	if c.lastResult != nil {
		data["last_result"] = c.lastResult
	}
	if c.lastError != nil {
		data["last_error"] = c.lastError
	}
	return data
}

// Run walks the named scenario to a terminal state.
func (c *Chain) Run(ctx context.Context, scenario string) *ChainResult {
	sc, have := c.Set.Find(scenario)
	if !have {
		err := &NotFoundError{Kind: "scenario", Name: scenario}
		return &ChainResult{Id: c.Id, Result: "error", Cache: c.cache, Err: err}
	}
	result, err := c.run(ctx, sc)
	if err != nil {
		result = "error"
	}
	return &ChainResult{
		Id:     c.Id,
		Result: result,
		Cache:  c.cache,
		Path:   c.path,
		Err:    err,
	}
}

// run executes one frame.  jump_to_scenario replaces the frame (a
// tail call); execute_scenario steps go through executeScenario
// instead, which pushes a sub-chain and resumes here.
func (c *Chain) run(ctx context.Context, sc *Scenario) (string, error) {
	c.path = append(c.path, sc.Name)

	i := 0
	for i < len(sc.Steps) {
		if err := ctx.Err(); err != nil {
			return "error", err
		}
		if c.Control != nil && 0 < c.Control.Limit && c.Control.Limit <= c.steps {
			return "error", LimitExceeded
		}
		c.steps++

		step := sc.Steps[i]
		out := c.execStep(ctx, step)

		c.mergeResponse(out.Response, step.Action, step.Params)
		if out.Err != nil {
			c.lastError = out.Err.asMap()
		}
		if out.Result != "" {
			c.lastResult = out.Result
		}

		// A sub-chain's abort or stop surfaces through its
		// scenario_result and cuts this frame too.
		switch out.Response["scenario_result"] {
		case "abort":
			return "abort", nil
		case "stop":
			return "stop", nil
		}

		// An async start has no synchronous result: control
		// falls through to the next step without transition
		// evaluation.
		if step.Async {
			i++
			continue
		}

		rule := pickRule(out.Result, step.Transitions)
		if rule == nil {
			i++
			continue
		}

		switch rule.Kind {
		case TransitionContinue:
			i++

		case TransitionBreak:
			return "break", nil

		case TransitionAbort:
			return "abort", nil

		case TransitionStop:
			if c.StopEvent != nil {
				c.StopEvent()
			}
			return "stop", nil

		case TransitionMoveSteps:
			// Compile guarantees an integer value.
			n, _ := asIntStrict(rule.Value)
			i += n
			if i < 0 || len(sc.Steps) <= i {
				// Walking off either end is a normal
				// end-of-steps.
				return "success", nil
			}

		case TransitionJumpToStep:
			n, _ := asIntStrict(rule.Value)
			if n < 0 || len(sc.Steps) <= n {
				return "error", &InvalidStepIndexError{
					Scenario: sc.Name,
					Index:    n,
					Steps:    len(sc.Steps),
				}
			}
			i = n

		case TransitionJumpToScenario:
			switch target := rule.Value.(type) {
			case string:
				if target == "" {
					i++
					continue
				}
				next, have := c.Set.Find(target)
				if !have {
					return "error", &NotFoundError{Kind: "scenario", Name: target}
				}
				// Frame replacement: same chain, cache
				// and registry carry over.
				return c.run(ctx, next)
			case []interface{}:
				return c.jumpSequence(ctx, target)
			default:
				c.warnf("scenario %q: unusable jump_to_scenario value %v", sc.Name, rule.Value)
				i++
			}
		}
	}

	return "success", nil
}

// jumpSequence runs a jump_to_scenario list: each named scenario in
// order as a frame of this same chain, after which the jumping frame
// is complete.
func (c *Chain) jumpSequence(ctx context.Context, names []interface{}) (string, error) {
	for _, x := range names {
		name, is := x.(string)
		if !is || name == "" {
			c.warnf("skipping unusable jump target %v", x)
			continue
		}
		next, have := c.Set.Find(name)
		if !have {
			return "error", &NotFoundError{Kind: "scenario", Name: name}
		}
		result, err := c.run(ctx, next)
		if err != nil {
			return result, err
		}
		if result == "abort" || result == "stop" {
			return result, nil
		}
	}
	return "success", nil
}

// execStep materializes the step's params and runs its action.
// Engine-level failures come back as error outcomes, never as
// panics, so transition rules always get something to route on.
func (c *Chain) execStep(ctx context.Context, step *Step) *Outcome {
	params := c.Processor.Process(step.Params, c.Context())

	switch step.Action {
	case "execute_scenario":
		return c.executeScenario(ctx, params)
	case "wait_for_action":
		return c.waitForAction(ctx, params)
	}

	if step.Async {
		if step.ActionID == "" {
			return ErrorOutcome("VALIDATION_ERROR", "async step has no action_id")
		}
		name := step.Action
		c.orchestrator.Start(step.ActionID, func() async.Result {
			out, err := c.Dispatcher.Dispatch(ctx, name, params)
			if err != nil {
				return async.Result{Tag: "error", Err: err}
			}
			r := async.Result{Tag: out.Result, Data: out.Response}
			if out.Err != nil {
				r.Err = out.Err
			}
			return r
		})
		return &Outcome{Result: "pending"}
	}

	out, err := c.Dispatcher.Dispatch(ctx, step.Action, params)
	if err != nil {
		return ErrorOutcome("EXECUTION_ERROR", err.Error())
	}
	if out == nil {
		out = &Outcome{}
	}
	if out.Result == "" {
		out.Result = "success"
	}
	return out
}

// executeScenario is the built-in sub-call action: push a frame (a
// sub-chain seeded with this chain's cache), run it, resume here
// with its terminal cache in the response.  Params: scenario (name
// or list of names), return_cache (default true; always off for
// lists).
func (c *Chain) executeScenario(ctx context.Context, params map[string]interface{}) *Outcome {
	returnCache := true
	if b, is := params["return_cache"].(bool); is {
		returnCache = b
	}

	switch scenario := params["scenario"].(type) {
	case string:
		result, cache := c.subRun(ctx, scenario)
		response := map[string]interface{}{}
		if returnCache {
			for k, v := range cache {
				response[k] = v
			}
		}
		response["scenario_result"] = result
		tag := "success"
		if result == "error" {
			tag = "error"
		}
		return &Outcome{Result: tag, Response: response}

	case []interface{}:
		// Sequential sub-calls; cache return is off to keep
		// the members isolated from each other's namespaces.
		last := "success"
		for _, x := range scenario {
			name, is := x.(string)
			if !is || name == "" {
				return ErrorOutcome("VALIDATION_ERROR", "scenario list entries must be names")
			}
			result, _ := c.subRun(ctx, name)
			if result == "error" {
				return ErrorOutcome("EXECUTION_ERROR", `sub-scenario "`+name+`" failed`)
			}
			if result == "abort" || result == "stop" {
				return &Outcome{
					Result:   "success",
					Response: map[string]interface{}{"scenario_result": result},
				}
			}
			last = result
		}
		return &Outcome{
			Result:   "success",
			Response: map[string]interface{}{"scenario_result": last},
		}
	}

	return ErrorOutcome("VALIDATION_ERROR", "scenario must be a name or a list of names")
}

// subRun executes one sub-scenario frame.  The sub-chain sees a copy
// of the caller's cache and shares its async registry and stop
// signal; its own fatal errors degrade to an error result rather
// than killing the caller.
func (c *Chain) subRun(ctx context.Context, name string) (string, map[string]interface{}) {
	sc, have := c.Set.Find(name)
	if !have {
		c.warnf("sub-scenario %q not found", name)
		return "error", nil
	}

	sub := &Chain{
		Id:           c.Id,
		Tenant:       c.Tenant,
		Set:          c.Set,
		Dispatcher:   c.Dispatcher,
		Processor:    c.Processor,
		Control:      c.Control,
		Warnf:        c.Warnf,
		StopEvent:    c.StopEvent,
		event:        c.event,
		cache:        DeepMerge(c.cache, nil),
		orchestrator: c.orchestrator,
		path:         append([]string{}, c.path...),
		lastResult:   c.lastResult,
		lastError:    c.lastError,
		steps:        c.steps,
	}
	result, err := sub.run(ctx, sc)
	c.steps = sub.steps
	if err != nil {
		c.warnf("sub-scenario %q: %v", name, err)
		return "error", sub.cache
	}
	return result, sub.cache
}

// waitForAction is the built-in blocking wait: params action_id and
// optional timeout (seconds).  No timeout param waits forever; a
// zero timeout is a non-blocking poll.  The settled result comes
// back as-is; a timeout yields result "timeout" and leaves the task
// running for a later wait to collect.
func (c *Chain) waitForAction(ctx context.Context, params map[string]interface{}) *Outcome {
	id, _ := params["action_id"].(string)
	if id == "" {
		return ErrorOutcome("VALIDATION_ERROR", "wait_for_action requires action_id")
	}

	timeout := time.Duration(-1)
	if v, have := params["timeout"]; have {
		secs, ok := asFloat(v)
		if !ok || secs < 0 {
			return ErrorOutcome("VALIDATION_ERROR", "timeout must be a non-negative number of seconds")
		}
		timeout = time.Duration(secs * float64(time.Second))
	}

	r, err := c.orchestrator.Wait(ctx, id, timeout)
	switch err {
	case nil:
		out := &Outcome{Result: r.Tag, Response: r.Data}
		if r.Err != nil {
			out.Err = toActionError(r.Err)
		}
		return out
	case async.NotFound:
		return &Outcome{
			Result: "error",
			Err: &ActionError{
				ErrCode: "NOT_FOUND",
				Message: `no async action "` + id + `"`,
			},
		}
	case async.Timeout:
		return &Outcome{
			Result: "timeout",
			Err: &ActionError{
				ErrCode: "TIMEOUT",
				Message: (&TimeoutError{ActionID: id}).Error(),
			},
		}
	}
	return ErrorOutcome("EXECUTION_ERROR", err.Error())
}

// pickRule resolves which transition rule fires: an "any" rule wins
// unconditionally, otherwise the first rule matching the result tag.
// Nil means the default, continue.
func pickRule(result string, rules []*TransitionRule) *TransitionRule {
	var matched *TransitionRule
	for _, rule := range rules {
		if rule.Match == "any" {
			return rule
		}
		if matched == nil && rule.Match == result {
			matched = rule
		}
	}
	return matched
}

func toActionError(err error) *ActionError {
	if ae, is := err.(*ActionError); is {
		return ae
	}
	return &ActionError{ErrCode: "EXECUTION_ERROR", Message: err.Error()}
}

func asFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	}
	return 0, false
}

func asIntStrict(v interface{}) (int, bool) {
	f, ok := asFloat(v)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}
