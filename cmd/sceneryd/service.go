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
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Comcast/scenery/actions"
	"github.com/Comcast/scenery/core"
	"github.com/Comcast/scenery/schedule"
	"github.com/Comcast/scenery/storage"
	"github.com/Comcast/scenery/tenant"
)

type Service struct {
	Engine  *core.Engine
	Tenants *tenant.Registry
	RunLog  storage.RunLog
}

func NewService(runLog storage.RunLog) *Service {
	s := &Service{
		Engine:  core.NewEngine(actions.NewRegistry()),
		Tenants: tenant.NewRegistry(),
		RunLog:  runLog,
	}
	s.Engine.Warnf = func(format string, args ...interface{}) {
		log.Printf("engine "+format, args...)
	}
	if runLog != nil {
		s.Engine.OnChain = func(tenantId, scenario string, result *core.ChainResult, elapsed time.Duration) {
			run := storage.AsRun(tenantId, scenario, result, time.Now().Add(-elapsed), elapsed)
			if err := s.RunLog.Append(context.Background(), run); err != nil {
				log.Printf("run log append error %v", err)
			}
		}
	}
	return s
}

// ProcessEvent routes one event to a tenant's scenarios.
func (s *Service) ProcessEvent(ctx context.Context, tenantId string, event map[string]interface{}) ([]*core.ChainResult, error) {
	set, err := s.Tenants.Get(tenantId)
	if err != nil {
		return nil, err
	}
	return s.Engine.ProcessEvent(ctx, tenantId, set, event), nil
}

// Schedule registers every scheduled scenario across tenants under a
// "tenant/scenario" key.
func (s *Service) Schedule(scheduler *schedule.Scheduler) error {
	for _, tenantId := range s.Tenants.Tenants() {
		set, err := s.Tenants.Get(tenantId)
		if err != nil {
			continue
		}
		for _, sc := range set.Scheduled() {
			if err := scheduler.Add(tenantId+"/"+sc.Name, sc.Schedule); err != nil {
				return err
			}
			log.Printf("sceneryd scheduled %s/%s (%s)", tenantId, sc.Name, sc.Schedule)
		}
	}
	return nil
}

// Fire handles one scheduler emission; key is "tenant/scenario".
func (s *Service) Fire(ctx context.Context, key string, at time.Time) {
	parts := strings.SplitN(key, "/", 2)
	if len(parts) != 2 {
		log.Printf("sceneryd bad schedule key %q", key)
		return
	}
	tenantId, name := parts[0], parts[1]
	set, err := s.Tenants.Get(tenantId)
	if err != nil {
		log.Printf("sceneryd schedule fire for unknown tenant %q", tenantId)
		return
	}
	event := map[string]interface{}{
		"type":     "schedule",
		"scenario": name,
		"time":     at.UTC().Format(time.RFC3339),
	}
	result := s.Engine.RunScenario(ctx, tenantId, set, name, event)
	log.Printf("sceneryd schedule %s: %s", key, result.Result)
}

// HandleEvent is POST /api/event?tenant=ID with a JSON event body.
func (s *Service) HandleEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	tenantId := r.URL.Query().Get("tenant")
	if tenantId == "" {
		tenantId = "default"
	}

	var event map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	results, err := s.ProcessEvent(r.Context(), tenantId, event)
	if err == tenant.NotFound {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	respond(w, map[string]interface{}{
		"chains":  len(results),
		"results": summarize(results),
	})
}

// HandleRuns is GET /api/runs?tenant=ID&limit=N.
func (s *Service) HandleRuns(w http.ResponseWriter, r *http.Request) {
	if s.RunLog == nil {
		http.Error(w, "no run log", http.StatusNotFound)
		return
	}
	tenantId := r.URL.Query().Get("tenant")
	if tenantId == "" {
		tenantId = "default"
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := s.RunLog.Recent(r.Context(), tenantId, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respond(w, runs)
}

// HandleScenarios is GET /api/scenarios?tenant=ID.
func (s *Service) HandleScenarios(w http.ResponseWriter, r *http.Request) {
	tenantId := r.URL.Query().Get("tenant")
	if tenantId == "" {
		tenantId = "default"
	}
	set, err := s.Tenants.Get(tenantId)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	respond(w, set.Names())
}

func summarize(results []*core.ChainResult) []map[string]interface{} {
	acc := make([]map[string]interface{}, len(results))
	for i, result := range results {
		m := map[string]interface{}{
			"result": result.Result,
			"path":   result.Path,
		}
		if result.Err != nil {
			m["error"] = result.Err.Error()
		}
		acc[i] = m
	}
	return acc
}

func respond(w http.ResponseWriter, x interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(x); err != nil {
		log.Printf("sceneryd response encoding error %v", err)
	}
}
