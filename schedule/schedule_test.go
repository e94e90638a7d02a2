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

package schedule

import (
	"context"
	"testing"
	"time"
)

func TestValid(t *testing.T) {
	if err := Valid("0 9 * * *"); err != nil {
		t.Fatal(err)
	}
	if err := Valid("not a cron line"); err == nil {
		t.Fatal("should have failed")
	}
}

func TestNext(t *testing.T) {
	after := time.Date(2024, 12, 25, 8, 0, 0, 0, time.UTC)
	got, err := Next("0 9 * * *", after)
	if err != nil {
		t.Fatal(err)
	}
	expected := time.Date(2024, 12, 25, 9, 0, 0, 0, time.UTC)
	if !got.Equal(expected) {
		t.Fatalf("got %v, wanted %v", got, expected)
	}

	if _, err = Next("junk", after); err == nil {
		t.Fatal("should have failed")
	}
}

func TestSchedulerFires(t *testing.T) {
	fired := make(chan string, 8)
	s := NewScheduler(func(ctx context.Context, scenario string, at time.Time) {
		fired <- scenario
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	if !waitRunning(s) {
		t.Fatal("scheduler never started")
	}

	// Every second: the soonest a cron expression can fire.
	if err := s.Add("daily-report", "* * * * * * *"); err != nil {
		t.Fatal(err)
	}

	select {
	case scenario := <-fired:
		if scenario != "daily-report" {
			t.Fatalf("got %q", scenario)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("never fired")
	}

	// The entry re-arms: a second firing arrives without another Add.
	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("did not re-arm")
	}

	if err := s.Rem("daily-report"); err != nil {
		t.Fatal(err)
	}
	if err := s.Rem("daily-report"); err != NotFound {
		t.Fatalf("wanted NotFound, got %v", err)
	}
}

func TestSchedulerNotRunning(t *testing.T) {
	s := NewScheduler(nil)
	if err := s.Add("x", "* * * * *"); err != NotRunning {
		t.Fatalf("wanted NotRunning, got %v", err)
	}
	if err := s.Rem("x"); err != NotRunning {
		t.Fatalf("wanted NotRunning, got %v", err)
	}
}

func TestSchedulerRejectsBadCron(t *testing.T) {
	s := NewScheduler(func(context.Context, string, time.Time) {})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)
	if !waitRunning(s) {
		t.Fatal("scheduler never started")
	}
	if err := s.Add("broken", "every other blue moon"); err == nil {
		t.Fatal("should have failed")
	}
}

func waitRunning(s *Scheduler) bool {
	for i := 0; i < 100; i++ {
		if s.IsRunning() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}
