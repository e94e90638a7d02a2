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

// Package core provides the core gear for event-driven scenario
// execution.  A Scenario declares triggers, which match incoming
// events, and an ordered list of steps, each of which runs an action
// and then consults transition rules keyed by the action's result
// tag.
//
// The primary types are Scenario and Engine.  An Engine takes an
// event, matches it against a Set of scenarios, and runs one Chain
// per matched scenario.  A Chain is an isolated execution: it owns a
// cache, which accumulates action responses, and an async registry
// for actions started in the background.  Jumping to another
// scenario replaces the chain's current frame, carrying the cache
// along; calling another scenario via execute_scenario pushes a
// frame whose cache changes merge back on return.
//
// Actions themselves live behind the Dispatcher interface.  The core
// only knows two actions natively: execute_scenario and
// wait_for_action, since those manipulate the chain itself.
// Everything else, including whatever IO an action performs, is the
// Dispatcher's business.
//
// Step parameters are templates; see package placeholder.  Trigger
// conditions are expressions; see package condition.
package core
