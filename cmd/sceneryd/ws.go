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

	"github.com/gorilla/websocket"
)

// HandleWebSocket upgrades to a WebSocket session: each inbound text
// message is a JSON event processed for the connection's tenant
// (?tenant=ID), and the chain summaries go back down the same
// socket.
func (s *Service) HandleWebSocket(ctx context.Context) http.HandlerFunc {
	var upgrader = websocket.Upgrader{} // use default options

	return func(w http.ResponseWriter, r *http.Request) {
		tenantId := r.URL.Query().Get("tenant")
		if tenantId == "" {
			tenantId = "default"
		}

		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("sceneryd websocket upgrade error", err)
			return
		}
		defer c.Close()
		log.Printf("sceneryd websocket session for tenant %q", tenantId)

		for {
			if ctx.Err() != nil {
				return
			}
			_, bs, err := c.ReadMessage()
			if err != nil {
				log.Printf("sceneryd websocket read error %v", err)
				return
			}

			var event map[string]interface{}
			if err := json.Unmarshal(bs, &event); err != nil {
				s.wsWrite(c, map[string]interface{}{"error": err.Error()})
				continue
			}

			results, err := s.ProcessEvent(ctx, tenantId, event)
			if err != nil {
				s.wsWrite(c, map[string]interface{}{"error": err.Error()})
				continue
			}
			s.wsWrite(c, map[string]interface{}{
				"chains":  len(results),
				"results": summarize(results),
			})
		}
	}
}

func (s *Service) wsWrite(c *websocket.Conn, x interface{}) {
	js, err := json.Marshal(&x)
	if err != nil {
		log.Printf("sceneryd websocket encoding error %v", err)
		return
	}
	if err := c.WriteMessage(websocket.TextMessage, js); err != nil {
		log.Printf("sceneryd websocket write error %v", err)
	}
}
