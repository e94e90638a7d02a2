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
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/Comcast/scenery/core"

	"golang.org/x/net/publicsuffix"
)

// DefaultHTTPTimeout bounds a request that provides no timeout
// param.
var DefaultHTTPTimeout = 30 * time.Second

// httpClient is shared so TCP connections get reused; cookies live
// in one jar per process, which is fine for a built-in.
var httpClient = newHTTPClient()

func newHTTPClient() *http.Client {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		// cookiejar.New can't actually fail with these options.
		return &http.Client{}
	}
	return &http.Client{Jar: jar}
}

// httpAction makes an HTTP request.
//
// Params: url (required), method (default GET), body, headers (map of
// string to string), timeout (seconds).  The response lands under
// "status_code", "body", and, when the body parses as JSON, "parsed".
func httpAction(ctx context.Context, params map[string]interface{}) (*core.Outcome, error) {
	rawURL, _ := params["url"].(string)
	if rawURL == "" {
		return core.ErrorOutcome("VALIDATION_ERROR", "http_request needs url"), nil
	}
	method, _ := params["method"].(string)
	if method == "" {
		method = "GET"
	}
	method = strings.ToUpper(method)

	var body string
	switch b := params["body"].(type) {
	case string:
		body = b
	case nil:
	default:
		js, err := json.Marshal(b)
		if err != nil {
			return core.ErrorOutcome("VALIDATION_ERROR", err.Error()), nil
		}
		body = string(js)
	}

	timeout := DefaultHTTPTimeout
	if secs, ok := asFloat(params["timeout"]); ok && 0 < secs {
		timeout = time.Duration(secs * float64(time.Second))
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequest(method, rawURL, strings.NewReader(body))
	if err != nil {
		return core.ErrorOutcome("VALIDATION_ERROR", err.Error()), nil
	}
	req = req.WithContext(ctx)

	if hs, is := params["headers"].(map[string]interface{}); is {
		for k, v := range hs {
			if s, is := v.(string); is {
				req.Header.Set(k, s)
			}
		}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return core.ErrorOutcome("EXECUTION_ERROR", err.Error()), nil
	}
	defer resp.Body.Close()

	bs, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return core.ErrorOutcome("EXECUTION_ERROR", err.Error()), nil
	}

	response := map[string]interface{}{
		"status_code": resp.StatusCode,
		"body":        string(bs),
	}
	var parsed interface{}
	if err := json.Unmarshal(bs, &parsed); err == nil {
		response["parsed"] = parsed
	}

	out := &core.Outcome{Response: response}
	if 400 <= resp.StatusCode {
		out.Result = "error"
		out.Err = &core.ActionError{
			ErrCode: "EXECUTION_ERROR",
			Message: resp.Status,
			Details: map[string]interface{}{"status_code": resp.StatusCode},
		}
	}
	return out, nil
}
