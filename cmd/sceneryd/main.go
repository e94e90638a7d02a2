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

// sceneryd is the scenario execution service.
//
// Scenario definitions are YAML files in a directory, one file per
// tenant (the filename minus its extension is the tenant id).
// Events arrive over HTTP, WebSockets, or MQTT; scenarios with cron
// schedules also fire on their own.  Chain executions are recorded
// in a bbolt run log.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/Comcast/scenery/schedule"
	"github.com/Comcast/scenery/storage"
	boltstore "github.com/Comcast/scenery/storage/bolt"
)

func main() {
	var (
		specsDir = flag.String("s", "scenarios", "scenario definitions directory")
		dbFile   = flag.String("d", "runs.db", "run-log filename (empty to disable)")
		httpPort = flag.String("h", ":8080", "HTTP (and WebSocket) port")

		mqttBroker = flag.String("mqtt", "", "optional MQTT broker (e.g. tcp://localhost:1883)")
		mqttTopics = flag.String("mqtt-topics", "events/#", "MQTT subscription topic(s), comma-separated")
		mqttTenant = flag.String("mqtt-tenant", "default", "tenant for MQTT events")
	)
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var runLog storage.RunLog
	if *dbFile != "" {
		store := boltstore.NewRunLog(*dbFile)
		if err := store.Open(); err != nil {
			log.Fatal(err)
		}
		defer store.Close() // ToDo: Check error.
		runLog = store
	}

	s := NewService(runLog)

	if err := s.LoadDir(*specsDir); err != nil {
		log.Fatal(err)
	}

	// Cron firings run through the same engine as live events.
	scheduler := schedule.NewScheduler(func(ctx context.Context, key string, at time.Time) {
		s.Fire(ctx, key, at)
	})
	go func() {
		if err := scheduler.Run(ctx); err != nil && err != context.Canceled {
			log.Printf("sceneryd scheduler error %v", err)
		}
	}()
	if err := s.Schedule(scheduler); err != nil {
		log.Fatal(err)
	}

	if *mqttBroker != "" {
		if err := s.MQTTListen(ctx, *mqttBroker, *mqttTopics, *mqttTenant); err != nil {
			log.Fatal(err)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/event", s.HandleEvent)
	mux.HandleFunc("/api/runs", s.HandleRuns)
	mux.HandleFunc("/api/scenarios", s.HandleScenarios)
	mux.HandleFunc("/api/websocket", s.HandleWebSocket(ctx))

	log.Printf("sceneryd listening on %s", *httpPort)
	log.Fatal(http.ListenAndServe(*httpPort, mux))
}
