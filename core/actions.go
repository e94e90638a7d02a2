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
)

// Outcome is what an action produces: a result tag for transition
// matching, response data for the cache, and the action's own error,
// if any.
type Outcome struct {
	Result   string                 `json:"result"`
	Response map[string]interface{} `json:"response_data,omitempty"`
	Err      *ActionError           `json:"error,omitempty"`
}

// ErrorOutcome wraps an engine-level failure as a step outcome with
// result tag "error", so transition rules can still route on it.
func ErrorOutcome(code, message string) *Outcome {
	return &Outcome{
		Result: "error",
		Err:    &ActionError{ErrCode: code, Message: message},
	}
}

// Dispatcher executes actions by name.  The catalogue behind it is a
// collaborator; the engine only relies on this contract.
type Dispatcher interface {
	// Dispatch runs the named action with fully materialized
	// params.  A non-nil error means the dispatch itself failed
	// (unknown action, panic); an action's business failure
	// travels inside the Outcome instead.
	Dispatch(ctx context.Context, name string, params map[string]interface{}) (*Outcome, error)

	// Replaceable names the action's primary response field, for
	// the _response_key rename directive.  False means the action
	// doesn't support renaming.
	Replaceable(name string) (string, bool)
}

// DispatcherFunc adapts a function to the Dispatcher contract, with
// no renameable fields.
type DispatcherFunc func(ctx context.Context, name string, params map[string]interface{}) (*Outcome, error)

func (f DispatcherFunc) Dispatch(ctx context.Context, name string, params map[string]interface{}) (*Outcome, error) {
	return f(ctx, name, params)
}

func (f DispatcherFunc) Replaceable(string) (string, bool) {
	return "", false
}
