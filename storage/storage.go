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

// Package storage defines run-log persistence.  Only execution
// records are stored; a chain's cache and async registry are
// in-memory things that die with the chain.
package storage

import (
	"context"
	"time"

	"github.com/Comcast/scenery/core"
)

// Run is one chain execution as stored.
type Run struct {
	// Id is assigned by the log.
	Id string `json:"id,omitempty"`

	Tenant   string    `json:"tenant"`
	Scenario string    `json:"scenario"`
	Result   string    `json:"result"`
	Error    string    `json:"error,omitempty"`
	Path     []string  `json:"path,omitempty"`
	Started  time.Time `json:"started"`
	Elapsed  string    `json:"elapsed"`
}

// AsRun flattens a chain result into a storable record.
func AsRun(tenant, scenario string, result *core.ChainResult, started time.Time, elapsed time.Duration) *Run {
	r := &Run{
		Tenant:   tenant,
		Scenario: scenario,
		Result:   result.Result,
		Path:     result.Path,
		Started:  started,
		Elapsed:  elapsed.String(),
	}
	if result.Err != nil {
		r.Error = result.Err.Error()
	}
	return r
}

// RunLog is a persistence interface for execution records.
type RunLog interface {
	// Append stores a run and fills in its Id.
	Append(ctx context.Context, run *Run) error

	// Recent returns up to limit of the tenant's runs, newest
	// first.
	Recent(ctx context.Context, tenant string, limit int) ([]*Run, error)
}
