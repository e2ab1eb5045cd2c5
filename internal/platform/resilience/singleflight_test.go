package resilience

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_DeduplicatesConcurrentCalls(t *testing.T) {
	t.Parallel()

	var flight SingleFlight
	var secondRan atomic.Bool
	entered := make(chan struct{})
	release := make(chan struct{})

	primaryDone := make(chan struct{})
	go func() {
		defer close(primaryDone)
		val, err, _ := flight.Do("key", func() (any, error) {
			close(entered)
			<-release
			return "value", nil
		})
		if err != nil || val != "value" {
			t.Errorf("primary call val=%v err=%v", val, err)
		}
	}()

	<-entered

	secondDone := make(chan struct{})
	secondStarted := make(chan struct{})
	var sharedResult any
	var shared bool
	go func() {
		defer close(secondDone)
		close(secondStarted)
		sharedResult, _, shared = flight.Do("key", func() (any, error) {
			secondRan.Store(true)
			return "other", nil
		})
	}()

	<-secondStarted
	time.Sleep(10 * time.Millisecond)
	close(release)
	<-primaryDone
	<-secondDone

	if secondRan.Load() {
		t.Fatal("second fn executed despite in-flight call for same key")
	}
	if !shared || sharedResult != "value" {
		t.Fatalf("expected shared primary result, got shared=%v val=%v", shared, sharedResult)
	}
}

func TestSingleFlight_DistinctKeysRunIndependently(t *testing.T) {
	t.Parallel()

	var flight SingleFlight
	a, err, _ := flight.Do("a", func() (any, error) { return 1, nil })
	if err != nil || a != 1 {
		t.Fatalf("unexpected result a=%v err=%v", a, err)
	}
	b, err, shared := flight.Do("b", func() (any, error) { return 2, nil })
	if err != nil || b != 2 || shared {
		t.Fatalf("unexpected result b=%v err=%v shared=%v", b, err, shared)
	}
}
