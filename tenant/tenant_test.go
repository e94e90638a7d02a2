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

package tenant

import (
	"testing"

	"github.com/Comcast/scenery/core"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Get("acme"); err != NotFound {
		t.Fatalf("got %v", err)
	}

	set := core.NewSet([]*core.Scenario{
		{Name: "greet", Steps: []*core.Step{{Action: "echo"}}},
	}, nil)
	r.Set("acme", set)

	got, err := r.Get("acme")
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 1 {
		t.Fatalf("got %d scenarios", got.Len())
	}

	// Reload swaps the whole set.
	r.Set("acme", core.NewSet(nil, nil))
	got, err = r.Get("acme")
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 0 {
		t.Fatalf("got %d scenarios after reload", got.Len())
	}

	if err := r.Rem("acme"); err != nil {
		t.Fatal(err)
	}
	if err := r.Rem("acme"); err != NotFound {
		t.Fatalf("got %v", err)
	}
	if ids := r.Tenants(); len(ids) != 0 {
		t.Fatalf("got %v", ids)
	}
}
