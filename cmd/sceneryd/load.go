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
	"fmt"
	"io/ioutil"
	"log"
	"path/filepath"
	"strings"

	"github.com/Comcast/scenery/core"

	"github.com/jsccast/yaml"
)

// LoadDir reads every .yaml file in dir as one tenant's scenario
// list; the filename minus its extension is the tenant id.  A broken
// scenario is excluded with a warning; a broken file is an error.
func (s *Service) LoadDir(dir string) error {
	filenames, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return err
	}
	if more, err := filepath.Glob(filepath.Join(dir, "*.yml")); err == nil {
		filenames = append(filenames, more...)
	}
	if len(filenames) == 0 {
		return fmt.Errorf("no scenario files in %s", dir)
	}

	for _, filename := range filenames {
		tenantId := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
		set, err := LoadFile(filename)
		if err != nil {
			return err
		}
		s.Tenants.Set(tenantId, set)
		log.Printf("sceneryd loaded tenant %q: %d scenarios %v",
			tenantId, set.Len(), set.Names())
	}
	return nil
}

// LoadFile parses one YAML scenario file into a compiled Set.
//
// This repo uses the YAML fork at github.com/jsccast/yaml because it
// returns map[string]interface{} rather than
// map[interface{}]interface{}, which is what step params and trigger
// matchers need to be.
func LoadFile(filename string) (*core.Set, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	scenarios, err := ParseScenarios(bs)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", filename, err)
	}
	return core.NewSet(scenarios, func(format string, args ...interface{}) {
		log.Printf("sceneryd %s "+format, append([]interface{}{filename}, args...)...)
	}), nil
}

// ParseScenarios parses YAML source: either a bare list of scenarios
// or a map with a "scenarios" key.
func ParseScenarios(bs []byte) ([]*core.Scenario, error) {
	var doc struct {
		Scenarios []*core.Scenario `yaml:"scenarios"`
	}
	if err := yaml.Unmarshal(bs, &doc); err == nil && doc.Scenarios != nil {
		return doc.Scenarios, nil
	}
	var scenarios []*core.Scenario
	if err := yaml.Unmarshal(bs, &scenarios); err != nil {
		return nil, err
	}
	return scenarios, nil
}
