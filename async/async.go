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

// Package async tracks background action executions by
// caller-chosen id, with non-blocking readiness queries and blocking
// waits with a deadline.
//
// An Orchestrator belongs to exactly one execution chain.  The chain
// starts tasks and waits on them; the tasks themselves settle their
// handles from their own goroutines, which is the only concurrency an
// Orchestrator has to mediate.
package async

import (
	"context"
	"errors"
	"sync"
	"time"
)

// NotFound means no task was ever started under the given id.
var NotFound = errors.New("action not found")

// Timeout means the deadline passed with the task still running.
// The task is not cancelled; a later Wait can still collect it.
var Timeout = errors.New("wait timed out")

type Status string

const (
	StatusPending Status = "pending"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// Result is what a settled action produced, carried through
// unmodified to whoever waits.
type Result struct {
	Tag  string
	Data map[string]interface{}
	Err  error
}

// Handle is the registry entry for one background task.
type Handle struct {
	ActionID string
	Created  time.Time

	done   chan struct{}
	result Result // write-once before done closes
}

// Done reports whether the task has settled.  Safe from any
// goroutine; this is what the ready/not_ready template modifiers
// call.
func (h *Handle) Done() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

func (h *Handle) Status() Status {
	if !h.Done() {
		return StatusPending
	}
	if h.result.Err != nil {
		return StatusError
	}
	return StatusReady
}

// Result returns the settled result.  The second value is false
// while the task is still pending.
func (h *Handle) Result() (Result, bool) {
	if !h.Done() {
		return Result{}, false
	}
	return h.result, true
}

func (h *Handle) settle(r Result) {
	h.result = r
	close(h.done)
}

// Orchestrator is a chain-scoped registry of background tasks.
type Orchestrator struct {
	sync.Mutex
	handles map[string]*Handle
}

func NewOrchestrator() *Orchestrator {
	return &Orchestrator{
		handles: make(map[string]*Handle),
	}
}

// Start registers a pending handle under the id and runs the task in
// its own goroutine.  Reusing an id replaces the registry entry; the
// superseded task keeps running but nothing can collect it.
func (o *Orchestrator) Start(id string, run func() Result) *Handle {
	h := &Handle{
		ActionID: id,
		Created:  time.Now().UTC(),
		done:     make(chan struct{}),
	}
	o.Lock()
	o.handles[id] = h
	o.Unlock()

	go func() {
		h.settle(run())
	}()

	return h
}

// Get returns the handle for an id, if any.
func (o *Orchestrator) Get(id string) (*Handle, bool) {
	o.Lock()
	h, have := o.handles[id]
	o.Unlock()
	return h, have
}

// Snapshot returns the current registry as a plain map, for exposing
// handles inside a template context.
func (o *Orchestrator) Snapshot() map[string]interface{} {
	o.Lock()
	m := make(map[string]interface{}, len(o.handles))
	for id, h := range o.handles {
		m[id] = h
	}
	o.Unlock()
	return m
}

// Ready reports whether the task has settled.  An unknown id is
// simply not ready.
func (o *Orchestrator) Ready(id string) bool {
	h, have := o.Get(id)
	return have && h.Done()
}

// NotReady reports whether the task is known and still running.
func (o *Orchestrator) NotReady(id string) bool {
	h, have := o.Get(id)
	return have && !h.Done()
}

// Wait blocks until the task under the id settles, then returns its
// result as-is.  A negative timeout waits forever (subject to ctx);
// a zero timeout is a non-blocking poll, returning Timeout when the
// task is still pending.  Waiting out the deadline returns Timeout
// and leaves the handle pending, so a later Wait on the same id can
// still succeed; waits after settlement return the stored result
// immediately without re-running anything.
func (o *Orchestrator) Wait(ctx context.Context, id string, timeout time.Duration) (Result, error) {
	h, have := o.Get(id)
	if !have {
		return Result{}, NotFound
	}

	if timeout == 0 {
		select {
		case <-h.done:
			return h.result, nil
		default:
			return Result{}, Timeout
		}
	}

	var deadline <-chan time.Time
	if 0 < timeout {
		t := time.NewTimer(timeout)
		defer t.Stop()
		deadline = t.C
	}

	select {
	case <-h.done:
		return h.result, nil
	case <-deadline:
		return Result{}, Timeout
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
