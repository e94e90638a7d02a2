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

// scentool works with scenario definition files offline.
//
//	scentool validate FILE...   check definitions, report problems
//	scentool show FILE          print definitions as canonical YAML
//	scentool doc FILE           render definitions as an HTML page
package main

import (
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"

	"github.com/Comcast/scenery/core"

	"github.com/jsccast/yaml"
	yamlv2 "gopkg.in/yaml.v2"
)

func main() {
	log.SetFlags(0)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: scentool (validate|doc) FILE...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) < 2 {
		flag.Usage()
		os.Exit(1)
	}

	switch args[0] {
	case "validate":
		os.Exit(validate(args[1:]))
	case "show":
		scenarios, err := readScenarios(args[1])
		if err != nil {
			log.Fatal(err)
		}
		if err := show(scenarios, os.Stdout); err != nil {
			log.Fatal(err)
		}
	case "doc":
		scenarios, err := readScenarios(args[1])
		if err != nil {
			log.Fatal(err)
		}
		if err := RenderPage(scenarios, os.Stdout); err != nil {
			log.Fatal(err)
		}
	default:
		flag.Usage()
		os.Exit(1)
	}
}

func readScenarios(filename string) ([]*core.Scenario, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Scenarios []*core.Scenario `yaml:"scenarios"`
	}
	if err := yaml.Unmarshal(bs, &doc); err == nil && doc.Scenarios != nil {
		return doc.Scenarios, nil
	}
	var scenarios []*core.Scenario
	if err := yaml.Unmarshal(bs, &scenarios); err != nil {
		return nil, fmt.Errorf("%s: %v", filename, err)
	}
	return scenarios, nil
}

// show re-emits definitions as canonical YAML: parsed, compiled, and
// marshaled back out with stable field order.
func show(scenarios []*core.Scenario, out io.Writer) error {
	for _, s := range scenarios {
		if err := s.Compile(); err != nil {
			return err
		}
	}
	bs, err := yamlv2.Marshal(map[string]interface{}{"scenarios": scenarios})
	if err != nil {
		return err
	}
	_, err = out.Write(bs)
	return err
}

func validate(filenames []string) int {
	problems := 0
	for _, filename := range filenames {
		scenarios, err := readScenarios(filename)
		if err != nil {
			log.Printf("%s: %v", filename, err)
			problems++
			continue
		}
		seen := make(map[string]bool, len(scenarios))
		for _, s := range scenarios {
			if err := s.Compile(); err != nil {
				log.Printf("%s: %v", filename, err)
				problems++
				continue
			}
			if seen[s.Name] {
				log.Printf("%s: duplicate scenario %q", filename, s.Name)
				problems++
				continue
			}
			seen[s.Name] = true
			fmt.Printf("%s: %s ok (%d steps)\n", filename, s.Name, len(s.Steps))
		}
	}
	if 0 < problems {
		log.Printf("%d problems", problems)
		return 1
	}
	return 0
}
