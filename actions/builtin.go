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
	"math/rand"
	"time"

	"github.com/Comcast/scenery/core"
)

// echoAction returns its params as the response.  The test and debug
// workhorse.
func echoAction(ctx context.Context, params map[string]interface{}) (*core.Outcome, error) {
	response := make(map[string]interface{}, len(params))
	for k, v := range params {
		response[k] = v
	}
	if _, have := response["value"]; !have {
		response["value"] = params
	}
	return &core.Outcome{Response: response}, nil
}

// sleepAction pauses for params.duration (a Go duration string like
// "250ms") or params.seconds.
func sleepAction(ctx context.Context, params map[string]interface{}) (*core.Outcome, error) {
	var d time.Duration
	switch {
	case params["duration"] != nil:
		s, is := params["duration"].(string)
		if !is {
			return core.ErrorOutcome("VALIDATION_ERROR", "duration must be a string"), nil
		}
		var err error
		if d, err = time.ParseDuration(s); err != nil {
			return core.ErrorOutcome("VALIDATION_ERROR", err.Error()), nil
		}
	case params["seconds"] != nil:
		secs, ok := asFloat(params["seconds"])
		if !ok {
			return core.ErrorOutcome("VALIDATION_ERROR", "seconds must be a number"), nil
		}
		d = time.Duration(secs * float64(time.Second))
	default:
		return core.ErrorOutcome("VALIDATION_ERROR", "sleep needs duration or seconds"), nil
	}

	select {
	case <-time.After(d):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &core.Outcome{
		Response: map[string]interface{}{"slept": d.String()},
	}, nil
}

// randomAction picks an integer in [min, max] (defaults 0..100).
func randomAction(ctx context.Context, params map[string]interface{}) (*core.Outcome, error) {
	lo, hi := int64(0), int64(100)
	if v, have := params["min"]; have {
		f, ok := asFloat(v)
		if !ok {
			return core.ErrorOutcome("VALIDATION_ERROR", "min must be a number"), nil
		}
		lo = int64(f)
	}
	if v, have := params["max"]; have {
		f, ok := asFloat(v)
		if !ok {
			return core.ErrorOutcome("VALIDATION_ERROR", "max must be a number"), nil
		}
		hi = int64(f)
	}
	if hi < lo {
		return core.ErrorOutcome("VALIDATION_ERROR", "max is below min"), nil
	}
	return &core.Outcome{
		Response: map[string]interface{}{
			"value": lo + rand.Int63n(hi-lo+1),
		},
	}, nil
}

func asFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}
