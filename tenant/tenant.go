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

// Package tenant holds each tenant's scenario set.  Sets are
// immutable after compilation, so the registry only guards the map
// itself; a reload swaps the whole set.
package tenant

import (
	"errors"
	"sync"

	"github.com/Comcast/scenery/core"
)

// NotFound occurs on a lookup of an unknown tenant.
var NotFound = errors.New("tenant not found")

type Registry struct {
	sync.RWMutex

	sets map[string]*core.Set
}

func NewRegistry() *Registry {
	return &Registry{
		sets: make(map[string]*core.Set),
	}
}

// Set installs (or replaces) a tenant's scenario set.
func (r *Registry) Set(tenant string, set *core.Set) {
	r.Lock()
	r.sets[tenant] = set
	r.Unlock()
}

// Get returns the tenant's current set.
func (r *Registry) Get(tenant string) (*core.Set, error) {
	r.RLock()
	set, have := r.sets[tenant]
	r.RUnlock()
	if !have {
		return nil, NotFound
	}
	return set, nil
}

// Rem removes a tenant.
func (r *Registry) Rem(tenant string) error {
	r.Lock()
	defer r.Unlock()
	if _, have := r.sets[tenant]; !have {
		return NotFound
	}
	delete(r.sets, tenant)
	return nil
}

// Tenants returns the known tenant ids, in no particular order.
func (r *Registry) Tenants() []string {
	r.RLock()
	defer r.RUnlock()
	ids := make([]string, 0, len(r.sets))
	for id := range r.sets {
		ids = append(ids, id)
	}
	return ids
}
