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
	"os"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// MQTTListen subscribes to the given topics and processes each
// message as an event for the configured tenant.  A JSON object
// payload is the event itself (with the topic injected under
// "topic"); any other payload is wrapped as {"topic": ..., "payload":
// ...}.
func (s *Service) MQTTListen(ctx context.Context, broker, topics, tenantId string) error {
	mqtt.ERROR = log.New(os.Stderr, "mqtt.error", 0)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID("sceneryd")
	opts.SetKeepAlive(10 * time.Second)
	opts.AutoReconnect = true
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Printf("sceneryd MQTT connection lost: %v", err)
	}

	opts.DefaultPublishHandler = func(client mqtt.Client, msg mqtt.Message) {
		event := asEvent(msg)
		results, err := s.ProcessEvent(ctx, tenantId, event)
		if err != nil {
			log.Printf("sceneryd MQTT event error %v", err)
			return
		}
		log.Printf("sceneryd MQTT %s: %d chains", msg.Topic(), len(results))
	}

	client := mqtt.NewClient(opts)
	if t := client.Connect(); t.Wait() && t.Error() != nil {
		return t.Error()
	}

	for _, topic := range strings.Split(topics, ",") {
		topic = strings.TrimSpace(topic)
		if topic == "" {
			continue
		}
		if t := client.Subscribe(topic, 0, nil); t.Wait() && t.Error() != nil {
			return t.Error()
		}
		log.Printf("sceneryd MQTT subscribed to %q", topic)
	}

	go func() {
		<-ctx.Done()
		client.Disconnect(100)
	}()

	return nil
}

func asEvent(msg mqtt.Message) map[string]interface{} {
	var event map[string]interface{}
	if err := json.Unmarshal(msg.Payload(), &event); err == nil && event != nil {
		if _, have := event["topic"]; !have {
			event["topic"] = msg.Topic()
		}
		return event
	}
	return map[string]interface{}{
		"topic":   msg.Topic(),
		"payload": string(msg.Payload()),
	}
}
