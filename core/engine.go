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
	"sync"
	"sync/atomic"
	"time"

	"github.com/Comcast/scenery/placeholder"
)

// Engine dispatches events to scenario chains.
type Engine struct {
	Dispatcher Dispatcher
	Processor  *placeholder.Processor
	Control    *Control

	// Warnf is handed to every chain.  Optional.
	Warnf func(format string, args ...interface{})

	// OnChain, when not nil, is called after each chain
	// completes.  Panics here are the caller's own problem.
	OnChain func(tenant, scenario string, result *ChainResult, elapsed time.Duration)
}

// NewEngine makes an Engine with the default control and template
// processor.
func NewEngine(d Dispatcher) *Engine {
	return &Engine{
		Dispatcher: d,
		Processor:  placeholder.NewProcessor(nil),
		Control:    DefaultControl,
	}
}

func (e *Engine) newChain(tenant string, set *Set, event map[string]interface{}) *Chain {
	chain := NewChain(set, e.Dispatcher, e.Processor, event)
	chain.Tenant = tenant
	if e.Control != nil {
		chain.Control = e.Control
	}
	chain.Warnf = e.Warnf
	return chain
}

// ProcessEvent runs a chain for every scenario in the set whose
// trigger matches the event, concurrently, and returns their results
// in the scenarios' definition order.  A stop transition in any
// chain keeps chains that haven't started yet from starting; chains
// already under way run to completion.
func (e *Engine) ProcessEvent(ctx context.Context, tenant string, set *Set, event map[string]interface{}) []*ChainResult {
	matched := set.Match(event)
	if len(matched) == 0 {
		return nil
	}

	var stopped int32
	results := make([]*ChainResult, len(matched))
	var wg sync.WaitGroup
	for i, sc := range matched {
		wg.Add(1)
		go func(i int, sc *Scenario) {
			defer wg.Done()
			if atomic.LoadInt32(&stopped) != 0 {
				return
			}
			chain := e.newChain(tenant, set, event)
			chain.StopEvent = func() {
				atomic.StoreInt32(&stopped, 1)
			}
			then := time.Now()
			result := chain.Run(ctx, sc.Name)
			if e.OnChain != nil {
				e.OnChain(tenant, sc.Name, result, time.Since(then))
			}
			results[i] = result
		}(i, sc)
	}
	wg.Wait()

	collected := make([]*ChainResult, 0, len(results))
	for _, r := range results {
		if r != nil {
			collected = append(collected, r)
		}
	}
	return collected
}

// RunScenario runs one named scenario directly, bypassing trigger
// matching.  Scheduled firings come through here.
func (e *Engine) RunScenario(ctx context.Context, tenant string, set *Set, name string, event map[string]interface{}) *ChainResult {
	chain := e.newChain(tenant, set, event)
	then := time.Now()
	result := chain.Run(ctx, name)
	if e.OnChain != nil {
		e.OnChain(tenant, name, result, time.Since(then))
	}
	return result
}
