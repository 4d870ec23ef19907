package store

import (
	"sync"
	"testing"
	"time"
)

func TestNewMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	if store == nil {
		t.Fatal("NewMemoryStore() = nil")
	}

	// should start empty
	if _, ok := store.Latest(); ok {
		t.Error("Latest() ok = true on empty store, want false")
	}
}

func TestMemoryStore_Update(t *testing.T) {
	store := NewMemoryStore()

	errMsg := "request failed"
	now := time.Now()
	record := Record{
		Target:     "https://example.com",
		Status:     StatusDown,
		StatusCode: 0,
		DurationMs: 12.5,
		CheckedAt:  now,
		Error:      &errMsg,
	}

	store.Update(record)

	snap, ok := store.Latest()
	if !ok {
		t.Fatal("Latest() ok = false after Update")
	}
	if snap.Latest.Target != "https://example.com" {
		t.Errorf("Latest.Target = %v, want %v", snap.Latest.Target, "https://example.com")
	}
	if snap.Latest.Status != StatusDown {
		t.Errorf("Latest.Status = %v, want %v", snap.Latest.Status, StatusDown)
	}
	if snap.Latest.Error == nil || *snap.Latest.Error != errMsg {
		t.Errorf("Latest.Error = %v, want %q", snap.Latest.Error, errMsg)
	}
	if !snap.StatusSince.Equal(now) {
		t.Errorf("StatusSince = %v, want %v", snap.StatusSince, now)
	}
}

func TestMemoryStore_Counters(t *testing.T) {
	store := NewMemoryStore()

	store.Update(Record{Status: StatusUp})
	store.Update(Record{Status: StatusUp})
	store.Update(Record{Status: StatusDown})

	snap, _ := store.Latest()
	if snap.Checks != 3 {
		t.Errorf("Checks = %d, want 3", snap.Checks)
	}
	if snap.Ups != 2 {
		t.Errorf("Ups = %d, want 2", snap.Ups)
	}
	if snap.Downs != 1 {
		t.Errorf("Downs = %d, want 1", snap.Downs)
	}
}

func TestMemoryStore_StatusSinceTracksTransitions(t *testing.T) {
	store := NewMemoryStore()

	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.Update(Record{Status: StatusUp, CheckedAt: t0})
	store.Update(Record{Status: StatusUp, CheckedAt: t0.Add(time.Minute)})

	snap, _ := store.Latest()
	if !snap.StatusSince.Equal(t0) {
		t.Errorf("StatusSince = %v, want %v (unchanged while status holds)", snap.StatusSince, t0)
	}

	t2 := t0.Add(2 * time.Minute)
	store.Update(Record{Status: StatusDown, CheckedAt: t2})

	snap, _ = store.Latest()
	if !snap.StatusSince.Equal(t2) {
		t.Errorf("StatusSince = %v, want %v after transition", snap.StatusSince, t2)
	}
}

func TestMemoryStore_LatestReturnsLatest(t *testing.T) {
	store := NewMemoryStore()

	store.Update(Record{Status: StatusUp, DurationMs: 100})
	store.Update(Record{Status: StatusUp, DurationMs: 200})
	store.Update(Record{Status: StatusDown, DurationMs: 300})

	snap, _ := store.Latest()
	if snap.Latest.Status != StatusDown {
		t.Errorf("Latest.Status = %v, want %v", snap.Latest.Status, StatusDown)
	}
	if snap.Latest.DurationMs != 300 {
		t.Errorf("Latest.DurationMs = %v, want %v", snap.Latest.DurationMs, 300)
	}
}

func TestMemoryStore_Subscribe(t *testing.T) {
	store := NewMemoryStore()

	ch := store.Subscribe()
	if ch == nil {
		t.Fatal("Subscribe() = nil")
	}

	// update should send to subscriber
	go func() {
		store.Update(Record{Target: "http://example.com", Status: StatusUp})
	}()

	select {
	case record := <-ch:
		if record.Target != "http://example.com" {
			t.Errorf("received Target = %v, want %v", record.Target, "http://example.com")
		}
	case <-time.After(1 * time.Second):
		t.Error("Subscribe() channel did not receive update")
	}
}

func TestMemoryStore_MultipleSubscribers(t *testing.T) {
	store := NewMemoryStore()

	ch1 := store.Subscribe()
	ch2 := store.Subscribe()
	ch3 := store.Subscribe()

	// update should fanout to all subscribers
	go func() {
		store.Update(Record{Status: StatusUp})
	}()

	received := 0
	timeout := time.After(1 * time.Second)

	for received < 3 {
		select {
		case <-ch1:
			received++
		case <-ch2:
			received++
		case <-ch3:
			received++
		case <-timeout:
			t.Fatalf("Only received %d/3 updates", received)
		}
	}
}

func TestMemoryStore_Unsubscribe(t *testing.T) {
	store := NewMemoryStore()

	ch := store.Subscribe()
	store.Unsubscribe(ch)
	store.Unsubscribe(ch) // second call is a no-op

	// channel should be closed
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("Unsubscribe() channel should be closed")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Unsubscribe() channel should be closed immediately")
	}
}

func TestMemoryStore_UnsubscribeStopsDelivery(t *testing.T) {
	store := NewMemoryStore()

	ch1 := store.Subscribe()
	ch2 := store.Subscribe()

	store.Unsubscribe(ch1)

	// update should only go to ch2
	go func() {
		store.Update(Record{Status: StatusUp})
	}()

	select {
	case <-ch2:
		// expected
	case <-time.After(1 * time.Second):
		t.Error("ch2 should still receive updates")
	}
}

func TestMemoryStore_SlowSubscriberDoesNotBlock(t *testing.T) {
	store := NewMemoryStore()

	// create a subscriber but don't read from it
	_ = store.Subscribe()

	// create another subscriber that reads
	ch2 := store.Subscribe()

	done := make(chan bool)

	go func() {
		// this should not block even though ch1 is not being read
		for i := 0; i < 200; i++ {
			store.Update(Record{Status: StatusUp})
		}
		done <- true
	}()

	// drain ch2
	go func() {
		for range ch2 {
		}
	}()

	select {
	case <-done:
		// expected - updates completed without blocking
	case <-time.After(2 * time.Second):
		t.Error("Update() blocked on slow subscriber")
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()

	var wg sync.WaitGroup
	numGoroutines := 10
	numUpdates := 100

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < numUpdates; j++ {
				store.Update(Record{Status: StatusUp})
			}
		}()
	}

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < numUpdates; j++ {
				_, _ = store.Latest()
			}
		}()
	}

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ch := store.Subscribe()
			time.Sleep(10 * time.Millisecond)
			store.Unsubscribe(ch)
		}()
	}

	wg.Wait()

	snap, _ := store.Latest()
	if snap.Checks != int64(numGoroutines*numUpdates) {
		t.Errorf("Checks = %d, want %d", snap.Checks, numGoroutines*numUpdates)
	}
}
