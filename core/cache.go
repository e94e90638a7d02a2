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

// DeepMerge merges override into base without mutating either: when
// both sides hold maps under a key, merge recursively; otherwise the
// override wins.
func DeepMerge(base, override map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		bm, bIs := merged[k].(map[string]interface{})
		om, oIs := v.(map[string]interface{})
		if bIs && oIs {
			merged[k] = DeepMerge(bm, om)
			continue
		}
		merged[k] = v
	}
	return merged
}

// mergeResponse folds a step's response data into the chain cache.
// This is the only place the cache is written.
//
// The params may carry two engine-level directives: _response_key
// renames the action's replaceable primary field before the merge,
// and _namespace nests the merge under cache[namespace] instead of
// the cache root.
func (c *Chain) mergeResponse(response map[string]interface{}, action string, params map[string]interface{}) {
	if len(response) == 0 {
		return
	}

	if key, _ := params["_response_key"].(string); key != "" {
		if field, ok := c.Dispatcher.Replaceable(action); ok {
			if v, have := response[field]; have {
				renamed := make(map[string]interface{}, len(response))
				for k, val := range response {
					if k != field {
						renamed[k] = val
					}
				}
				renamed[key] = v
				response = renamed
			} else {
				c.warnf("action %q: replaceable field %q missing from response", action, field)
			}
		}
		// An action without a replaceable field just ignores
		// _response_key.
	}

	if ns, _ := params["_namespace"].(string); ns != "" {
		if existing, is := c.cache[ns].(map[string]interface{}); is {
			c.cache[ns] = DeepMerge(existing, response)
		} else {
			c.cache[ns] = response
		}
		return
	}
	c.cache = DeepMerge(c.cache, response)
}
