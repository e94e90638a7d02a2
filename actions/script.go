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

package actions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Comcast/scenery/core"

	"github.com/dop251/goja"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: timeout"

	// Interrupted is returned when a script is cut off by its
	// deadline or the chain's context.
	Interrupted = errors.New(InterruptedMessage)

	// DefaultScriptTimeout bounds a script that provides no
	// timeout param.
	DefaultScriptTimeout = 5 * time.Second
)

func wrapSrc(src string) string {
	return fmt.Sprintf("(function() {\n%s\n}());\n", src)
}

// scriptAction evaluates ECMAScript over the step params.
//
// The code sees its params at _.params.  Its return value becomes
// the response: a returned map is the response as-is; anything else
// lands under "value".  Params: code (required), timeout (seconds).
func scriptAction(ctx context.Context, params map[string]interface{}) (*core.Outcome, error) {
	code, _ := params["code"].(string)
	if code == "" {
		return core.ErrorOutcome("VALIDATION_ERROR", "script needs code"), nil
	}

	timeout := DefaultScriptTimeout
	if secs, ok := asFloat(params["timeout"]); ok && 0 < secs {
		timeout = time.Duration(secs * float64(time.Second))
	}

	p, err := goja.Compile("", wrapSrc(code), true)
	if err != nil {
		return core.ErrorOutcome("VALIDATION_ERROR", err.Error()), nil
	}

	// Scripts should only ever see plain JSON shapes.
	scrubbed, err := core.Canonicalize(params)
	if err != nil {
		return core.ErrorOutcome("VALIDATION_ERROR", err.Error()), nil
	}
	env := map[string]interface{}{
		"params": scrubbed,
	}

	o := goja.New()
	o.Set("_", env)

	// Interrupt the runtime when the deadline or the chain's
	// context gives out; cancel() after RunProgram returns makes
	// the interrupt a no-op.
	ictx, cancel := context.WithTimeout(ctx, timeout)
	go func() {
		<-ictx.Done()
		o.Interrupt(InterruptedMessage)
	}()

	v, err := o.RunProgram(p)
	cancel()

	if err != nil {
		if _, is := err.(*goja.InterruptedError); is {
			return &core.Outcome{
				Result: "timeout",
				Err: &core.ActionError{
					ErrCode: "TIMEOUT",
					Message: Interrupted.Error(),
				},
			}, nil
		}
		return core.ErrorOutcome("EXECUTION_ERROR", err.Error()), nil
	}

	switch x := v.Export().(type) {
	case nil:
		return &core.Outcome{}, nil
	case map[string]interface{}:
		return &core.Outcome{Response: x}, nil
	default:
		return &core.Outcome{
			Response: map[string]interface{}{"value": x},
		}, nil
	}
}
