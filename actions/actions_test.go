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
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Comcast/scenery/core"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	t.Run("unknown action", func(t *testing.T) {
		if _, err := r.Dispatch(ctx, "teleport", nil); err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("panic is a dispatch failure", func(t *testing.T) {
		r.Register("grenade", &Action{
			Run: func(context.Context, map[string]interface{}) (*core.Outcome, error) {
				panic("pulled the pin")
			},
		})
		if _, err := r.Dispatch(ctx, "grenade", nil); err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("replaceable", func(t *testing.T) {
		field, ok := r.Replaceable("echo")
		if !ok || field != "value" {
			t.Fatalf("got %q, %v", field, ok)
		}
		if _, ok := r.Replaceable("sleep"); ok {
			t.Fatal("sleep shouldn't be replaceable")
		}
	})
}

func TestEcho(t *testing.T) {
	out, err := echoAction(context.Background(), map[string]interface{}{"value": "hi", "extra": 1})
	if err != nil {
		t.Fatal(err)
	}
	if out.Response["value"] != "hi" || out.Response["extra"] != 1 {
		t.Fatalf("got %v", out.Response)
	}
}

func TestSleep(t *testing.T) {
	tests := []struct {
		description string
		params      map[string]interface{}
		ok          bool
	}{
		{
			description: "duration string",
			params:      map[string]interface{}{"duration": "1ms"},
			ok:          true,
		},
		{
			description: "seconds number",
			params:      map[string]interface{}{"seconds": 0.001},
			ok:          true,
		},
		{
			description: "no duration at all",
			params:      map[string]interface{}{},
			ok:          false,
		},
		{
			description: "unparseable duration",
			params:      map[string]interface{}{"duration": "a while"},
			ok:          false,
		},
	}

	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			out, err := sleepAction(context.Background(), test.params)
			if err != nil {
				t.Fatal(err)
			}
			if test.ok && out.Err != nil {
				t.Fatalf("got %v", out.Err)
			}
			if !test.ok && out.Err == nil {
				t.Fatal("expected an error outcome")
			}
		})
	}

	t.Run("context cancels the nap", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
		defer cancel()
		if _, err := sleepAction(ctx, map[string]interface{}{"duration": "10s"}); err == nil {
			t.Fatal("expected a context error")
		}
	})
}

func TestRandom(t *testing.T) {
	out, err := randomAction(context.Background(), map[string]interface{}{
		"min": 5, "max": 7,
	})
	if err != nil {
		t.Fatal(err)
	}
	n, is := out.Response["value"].(int64)
	if !is || n < 5 || 7 < n {
		t.Fatalf("got %v", out.Response["value"])
	}

	out, err = randomAction(context.Background(), map[string]interface{}{
		"min": 7, "max": 5,
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Err == nil {
		t.Fatal("expected an error outcome")
	}
}

func TestScript(t *testing.T) {
	ctx := context.Background()

	t.Run("expression result lands under value", func(t *testing.T) {
		out, err := scriptAction(ctx, map[string]interface{}{
			"code": "return 6 * 7;",
		})
		if err != nil {
			t.Fatal(err)
		}
		n, ok := asFloat(out.Response["value"])
		if !ok || n != 42 {
			t.Fatalf("got %v", out.Response["value"])
		}
	})

	t.Run("returned map is the response", func(t *testing.T) {
		out, err := scriptAction(ctx, map[string]interface{}{
			"code": `return {greeting: "hello " + _.params.who};`,
			"who":  "world",
		})
		if err != nil {
			t.Fatal(err)
		}
		if got := out.Response["greeting"]; got != "hello world" {
			t.Fatalf("got %v", got)
		}
	})

	t.Run("syntax error is a validation outcome", func(t *testing.T) {
		out, err := scriptAction(ctx, map[string]interface{}{
			"code": "return ((",
		})
		if err != nil {
			t.Fatal(err)
		}
		if out.Err == nil || out.Err.Code() != "VALIDATION_ERROR" {
			t.Fatalf("got %v", out.Err)
		}
	})

	t.Run("runaway script times out", func(t *testing.T) {
		out, err := scriptAction(ctx, map[string]interface{}{
			"code":    "while (true) {}",
			"timeout": 0.05,
		})
		if err != nil {
			t.Fatal(err)
		}
		if out.Result != "timeout" {
			t.Fatalf("got %q (%v)", out.Result, out.Err)
		}
	})
}

func TestHTTPRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch req.URL.Path {
		case "/json":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"ok": true}`))
		case "/boom":
			http.Error(w, "no", http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	ctx := context.Background()

	t.Run("json body gets parsed", func(t *testing.T) {
		out, err := httpAction(ctx, map[string]interface{}{
			"url": server.URL + "/json",
		})
		if err != nil {
			t.Fatal(err)
		}
		if out.Err != nil {
			t.Fatal(out.Err)
		}
		parsed, is := out.Response["parsed"].(map[string]interface{})
		if !is || parsed["ok"] != true {
			t.Fatalf("got %v", out.Response)
		}
	})

	t.Run("5xx is an error outcome with the body kept", func(t *testing.T) {
		out, err := httpAction(ctx, map[string]interface{}{
			"url": server.URL + "/boom",
		})
		if err != nil {
			t.Fatal(err)
		}
		if out.Result != "error" || out.Err == nil {
			t.Fatalf("got %q, %v", out.Result, out.Err)
		}
		if out.Response["status_code"] != http.StatusInternalServerError {
			t.Fatalf("got %v", out.Response["status_code"])
		}
	})

	t.Run("missing url", func(t *testing.T) {
		out, err := httpAction(ctx, nil)
		if err != nil {
			t.Fatal(err)
		}
		if out.Err == nil || out.Err.Code() != "VALIDATION_ERROR" {
			t.Fatalf("got %v", out.Err)
		}
	})
}
