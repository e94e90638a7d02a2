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

// Package actions is the built-in action catalogue.  A Registry
// satisfies the engine's Dispatcher contract; applications register
// their own actions alongside the built-ins.
package actions

import (
	"context"
	"fmt"
	"sync"

	"github.com/Comcast/scenery/core"
)

// Action is one entry in the catalogue.
type Action struct {
	// Run does the work.  Params arrive fully materialized.
	Run func(ctx context.Context, params map[string]interface{}) (*core.Outcome, error)

	// Primary names the response field that the _response_key
	// directive may rename.  Empty means no renaming.
	Primary string

	// Doc is a one-line description for catalogue listings.
	Doc string
}

type Registry struct {
	sync.RWMutex

	actions map[string]*Action
}

// NewRegistry makes a Registry preloaded with the built-in actions.
func NewRegistry() *Registry {
	r := &Registry{
		actions: make(map[string]*Action, 8),
	}
	r.Register("echo", &Action{Run: echoAction, Primary: "value",
		Doc: "returns its own params"})
	r.Register("sleep", &Action{Run: sleepAction,
		Doc: "pauses for a duration"})
	r.Register("random", &Action{Run: randomAction, Primary: "value",
		Doc: "picks a random integer in a range"})
	r.Register("script", &Action{Run: scriptAction, Primary: "value",
		Doc: "evaluates an ECMAScript expression over the params"})
	r.Register("http_request", &Action{Run: httpAction, Primary: "body",
		Doc: "makes an HTTP request"})
	return r
}

// Register installs (or replaces) an action.
func (r *Registry) Register(name string, a *Action) {
	r.Lock()
	r.actions[name] = a
	r.Unlock()
}

func (r *Registry) find(name string) (*Action, bool) {
	r.RLock()
	a, have := r.actions[name]
	r.RUnlock()
	return a, have
}

// Names returns the catalogue's action names, in no particular order.
func (r *Registry) Names() []string {
	r.RLock()
	defer r.RUnlock()
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	return names
}

// Dispatch implements core.Dispatcher.  A panicking action is a
// dispatch failure, not a crashed chain.
func (r *Registry) Dispatch(ctx context.Context, name string, params map[string]interface{}) (out *core.Outcome, err error) {
	a, have := r.find(name)
	if !have {
		return nil, fmt.Errorf("unknown action %q", name)
	}
	defer func() {
		if x := recover(); x != nil {
			out, err = nil, fmt.Errorf("action %q panic: %v", name, x)
		}
	}()
	return a.Run(ctx, params)
}

// Replaceable implements core.Dispatcher.
func (r *Registry) Replaceable(name string) (string, bool) {
	a, have := r.find(name)
	if !have || a.Primary == "" {
		return "", false
	}
	return a.Primary, true
}
