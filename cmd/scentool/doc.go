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

package main

import (
	"encoding/json"
	"fmt"
	"html"
	"io"

	"github.com/Comcast/scenery/core"

	md "github.com/russross/blackfriday/v2"
)

func js(x interface{}) string {
	bs, err := json.Marshal(&x)
	if err != nil {
		return fmt.Sprintf("%v", x)
	}
	return string(bs)
}

// RenderScenarioHTML writes one scenario's documentation: its
// markdown description rendered, then triggers, schedule, and the
// step table with transitions.
func RenderScenarioHTML(s *core.Scenario, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	f(`<h2 id="%s">%s</h2>`, html.EscapeString(s.Name), html.EscapeString(s.Name))

	if s.Description != "" {
		f(`<div class="scenarioDoc doc">%s</div>`, md.Run([]byte(s.Description)))
	}

	if s.Schedule != "" {
		f(`<div class="schedule">schedule: <code>%s</code></div>`, html.EscapeString(s.Schedule))
	}

	if 0 < len(s.Triggers) {
		f(`<div class="triggers"><table>`)
		for i, t := range s.Triggers {
			f(`<tr><td class="triggerNum">%d</td><td>`, i)
			if 0 < len(t.Match) {
				f(`<code>%s</code>`, html.EscapeString(js(t.Match)))
			}
			if t.Condition != "" {
				f(`<div class="condition"><code>%s</code></div>`, html.EscapeString(t.Condition))
			}
			f(`</td></tr>`)
		}
		f(`</table></div>`)
	}

	f(`<div class="steps"><table>`)
	for i, step := range s.Steps {
		f(`<tr class="step"><td><div class="stepNum">%d</div></td><td>`, i)
		f(`<code class="action">%s</code>`, html.EscapeString(step.Action))
		if step.Async {
			f(`<span class="async">async as <code>%s</code></span>`, html.EscapeString(step.ActionID))
		}
		if 0 < len(step.Params) {
			f(`<div class="code"><pre>%s</pre></div>`, html.EscapeString(js(step.Params)))
		}
		if 0 < len(step.Transitions) {
			f(`<table class="transitions">`)
			for _, rule := range step.Transitions {
				f(`<tr><td><code>%s</code></td><td>%s</td><td>`,
					html.EscapeString(rule.Match), html.EscapeString(rule.Kind))
				if rule.Value != nil {
					f(`<code>%s</code>`, html.EscapeString(js(rule.Value)))
				}
				f(`</td></tr>`)
			}
			f(`</table>`)
		}
		f(`</td></tr>`)
	}
	f(`</table></div>`)

	return nil
}

// RenderPage wraps the scenarios' docs in a complete HTML page.
func RenderPage(scenarios []*core.Scenario, out io.Writer) error {
	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>scenarios</title>
  </head>
  <body>
`)
	for _, s := range scenarios {
		if err := RenderScenarioHTML(s, out); err != nil {
			return err
		}
	}
	fmt.Fprintf(out, `
  </body>
</html>
`)
	return nil
}
