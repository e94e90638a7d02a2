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

package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/Comcast/scenery/storage"

	bolt "go.etcd.io/bbolt"
)

// RunLog stores execution records in a bbolt file, one bucket per
// tenant, keyed by a monotonic sequence so a reverse cursor walk is
// newest-first.
type RunLog struct {
	Debug    bool
	filename string
	db       *bolt.DB
}

func NewRunLog(filename string) *RunLog {
	return &RunLog{
		filename: filename,
	}
}

func (s *RunLog) Open() error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}
	db, err := bolt.Open(s.filename, 0644, opts)
	if err != nil {
		return err
	}
	s.db = db
	return nil
}

func (s *RunLog) Close() error {
	return s.db.Close()
}

func (s *RunLog) logf(format string, args ...interface{}) {
	if s.Debug {
		log.Printf("bolt RunLog."+format, args...)
	}
}

func (s *RunLog) Append(ctx context.Context, run *storage.Run) error {
	s.logf("Append %s/%s %s", run.Tenant, run.Scenario, run.Result)
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(run.Tenant))
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		run.Id = fmt.Sprintf("%d", seq)
		js, err := json.Marshal(run)
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)
		return b.Put(key, js)
	})
}

func (s *RunLog) Recent(ctx context.Context, tenant string, limit int) ([]*storage.Run, error) {
	s.logf("Recent %s %d", tenant, limit)
	if limit <= 0 {
		limit = 32
	}
	runs := make([]*storage.Run, 0, limit)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(tenant))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, bs := c.Last(); k != nil && len(runs) < limit; k, bs = c.Prev() {
			var run storage.Run
			if err := json.Unmarshal(bs, &run); err != nil {
				return err
			}
			runs = append(runs, &run)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return runs, nil
}
