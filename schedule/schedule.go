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

// Package schedule runs cron-driven scenario firings.
//
// A Scheduler manages one entry per scheduled scenario.  At any point
// only one time.Timer exists: the backlog is kept sorted by next
// firing time, and the internal timer waits for the head.  After an
// entry fires, its next occurrence is computed and the entry is
// reinserted, so a valid cron expression keeps firing forever.  The
// work itself runs in a new goroutine, so it's okay for Emit to
// block.
package schedule

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorhill/cronexpr"
)

var (
	NotFound       = errors.New("not found")
	NotRunning     = errors.New("not running")
	AlreadyRunning = errors.New("already running")
)

// Valid reports whether the cron expression parses.
func Valid(expr string) error {
	_, err := cronexpr.Parse(expr)
	return err
}

// Next computes the first firing of the expression strictly after
// the given time.  A zero result means the expression never fires
// again.
func Next(expr string, after time.Time) (time.Time, error) {
	c, err := cronexpr.Parse(expr)
	if err != nil {
		return time.Time{}, err
	}
	return c.Next(after), nil
}

type entry struct {
	scenario string
	expr     *cronexpr.Expression
	at       time.Time
}

// Scheduler fires scheduled scenarios.
//
// You need to Run the Scheduler before calling Add.
type Scheduler struct {
	// Emit receives each firing, in its own goroutine.
	Emit func(ctx context.Context, scenario string, at time.Time)

	sync.Mutex
	backlog []*entry // ascending at
	wake    chan struct{}
	running int64
}

func NewScheduler(emit func(ctx context.Context, scenario string, at time.Time)) *Scheduler {
	return &Scheduler{
		Emit: emit,
		wake: make(chan struct{}, 1),
	}
}

func (s *Scheduler) IsRunning() bool {
	return atomic.LoadInt64(&s.running) == 1
}

// Add registers a scenario's cron expression.  Re-adding a scenario
// replaces its expression.
func (s *Scheduler) Add(scenario, expr string) error {
	if !s.IsRunning() {
		return NotRunning
	}
	c, err := cronexpr.Parse(expr)
	if err != nil {
		return err
	}

	s.Lock()
	s.remove(scenario)
	s.insert(&entry{
		scenario: scenario,
		expr:     c,
		at:       c.Next(time.Now()),
	})
	s.Unlock()

	s.poke()
	return nil
}

// Rem removes a scenario's schedule.
func (s *Scheduler) Rem(scenario string) error {
	if !s.IsRunning() {
		return NotRunning
	}
	s.Lock()
	found := s.remove(scenario)
	s.Unlock()
	if !found {
		return NotFound
	}
	s.poke()
	return nil
}

// Run executes the scheduling loop in the current goroutine until
// the context is done.
func (s *Scheduler) Run(ctx context.Context) error {
	if !atomic.CompareAndSwapInt64(&s.running, 0, 1) {
		return AlreadyRunning
	}
	defer atomic.StoreInt64(&s.running, 0)

	for {
		s.Lock()
		var next *entry
		if 0 < len(s.backlog) {
			next = s.backlog[0]
		}
		s.Unlock()

		var deadline <-chan time.Time
		if next != nil {
			t := time.NewTimer(time.Until(next.at))
			deadline = t.C
			select {
			case <-ctx.Done():
				t.Stop()
				return nil
			case <-s.wake:
				t.Stop()
				continue
			case now := <-deadline:
				s.fire(ctx, now)
			}
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case <-s.wake:
		}
	}
}

// fire pops and emits everything due, then re-arms each popped entry
// at its next occurrence.
func (s *Scheduler) fire(ctx context.Context, now time.Time) {
	s.Lock()
	var due []*entry
	for 0 < len(s.backlog) && !s.backlog[0].at.After(now) {
		due = append(due, s.backlog[0])
		s.backlog = s.backlog[1:]
	}
	for _, e := range due {
		if next := e.expr.Next(now); !next.IsZero() {
			s.insert(&entry{scenario: e.scenario, expr: e.expr, at: next})
		}
	}
	s.Unlock()

	for _, e := range due {
		go s.Emit(ctx, e.scenario, e.at)
	}
}

// insert keeps the backlog sorted.  Callers hold the lock.
func (s *Scheduler) insert(e *entry) {
	i := sort.Search(len(s.backlog), func(i int) bool {
		return s.backlog[i].at.After(e.at)
	})
	s.backlog = append(s.backlog, nil)
	copy(s.backlog[i+1:], s.backlog[i:])
	s.backlog[i] = e
}

// remove reports whether the scenario had an entry.  Callers hold
// the lock.
func (s *Scheduler) remove(scenario string) bool {
	for i, e := range s.backlog {
		if e.scenario == scenario {
			s.backlog = append(s.backlog[:i], s.backlog[i+1:]...)
			return true
		}
	}
	return false
}

// poke nudges the Run loop to reconsider the backlog head.
func (s *Scheduler) poke() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}
