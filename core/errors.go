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

// These errors are user errors, not internal errors.  Each carries a
// stable code that callers and run logs can key on.

import (
	"errors"
	"fmt"
)

// Coded is implemented by every error in this package's taxonomy.
type Coded interface {
	error
	Code() string
}

// LimitExceeded occurs when a chain makes more step executions than
// its Control allows.  Usually means a transition loop with no exit.
var LimitExceeded = errors.New("step limit exceeded")

// NotFoundError occurs when a jump or call names a scenario (or an
// async action) that doesn't exist.
type NotFoundError struct {
	Kind string // "scenario" or "action"
	Name string
}

func (e *NotFoundError) Error() string {
	return e.Kind + ` "` + e.Name + `" not found`
}

func (e *NotFoundError) Code() string { return "NOT_FOUND" }

// InvalidStepIndexError occurs when jump_to_step targets an index
// outside the scenario's steps.  Always fatal to the chain.
type InvalidStepIndexError struct {
	Scenario string
	Index    int
	Steps    int
}

func (e *InvalidStepIndexError) Error() string {
	return fmt.Sprintf(`step index %d out of range in scenario "%s" (%d steps)`,
		e.Index, e.Scenario, e.Steps)
}

func (e *InvalidStepIndexError) Code() string { return "INVALID_STEP_INDEX" }

// ValidationError occurs when a scenario definition is structurally
// wrong.  Caught at Set compile time, which excludes the scenario
// from the active set so the rest keep working.
type ValidationError struct {
	Scenario string
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.Scenario == "" {
		return e.Reason
	}
	return `scenario "` + e.Scenario + `": ` + e.Reason
}

func (e *ValidationError) Code() string { return "VALIDATION_ERROR" }

// TimeoutError occurs when wait_for_action's deadline passes with
// the background task still running.
type TimeoutError struct {
	ActionID string
}

func (e *TimeoutError) Error() string {
	return `timeout waiting for action "` + e.ActionID + `"`
}

func (e *TimeoutError) Code() string { return "TIMEOUT" }

// ActionError is how an action reports its own failure through the
// dispatch contract.  It rides inside an Outcome rather than
// short-circuiting the step, so transition rules get to see it.
type ActionError struct {
	ErrCode string                 `json:"code" yaml:"code"`
	Message string                 `json:"message" yaml:"message"`
	Details map[string]interface{} `json:"details,omitempty" yaml:"details,omitempty"`
}

func (e *ActionError) Error() string {
	return e.ErrCode + ": " + e.Message
}

func (e *ActionError) Code() string {
	if e.ErrCode == "" {
		return "EXECUTION_ERROR"
	}
	return e.ErrCode
}

// asMap renders the error the way templates see it under last_error.
func (e *ActionError) asMap() map[string]interface{} {
	m := map[string]interface{}{
		"code":    e.Code(),
		"message": e.Message,
	}
	if e.Details != nil {
		m["details"] = e.Details
	}
	return m
}
