// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package driver

import "testing"

func TestSubscribersSubUnsubEach(t *testing.T) {
	s := newSubscribers[func(int)]()
	var calls []int
	tk1 := s.Sub(func(n int) { calls = append(calls, n) })
	tk2 := s.Sub(func(n int) { calls = append(calls, n*10) })
	if tk1 == tk2 {
		t.Fatal("subscribers.Sub: expected distinct tokens")
	}

	s.Each(func(fn func(int)) { fn(1) })
	if len(calls) != 2 {
		t.Fatalf("subscribers.Each: got %d calls, want 2", len(calls))
	}

	s.Unsub(tk2)
	calls = nil
	s.Each(func(fn func(int)) { fn(2) })
	if len(calls) != 1 || calls[0] != 2 {
		t.Fatalf("subscribers.Each after Unsub: got %v, want [2]", calls)
	}

	s.Unsub(tk1)
	calls = nil
	s.Each(func(fn func(int)) { fn(3) })
	if len(calls) != 0 {
		t.Fatalf("subscribers.Each after removing all subscribers: got %v, want none", calls)
	}
}

func TestSubscribersUnsubUnknownTokenIsNoop(t *testing.T) {
	s := newSubscribers[func()]()
	tk := s.Sub(func() {})
	s.Unsub(tk + 1000)
	n := 0
	s.Each(func(fn func()) { n++; fn() })
	if n != 1 {
		t.Fatalf("subscribers.Unsub on unknown token removed a live subscription: got %d calls, want 1", n)
	}
}

func TestSubscribersReentrantSub(t *testing.T) {
	s := newSubscribers[func()]()
	var added bool
	s.Sub(func() {
		if !added {
			added = true
			s.Sub(func() {})
		}
	})
	// Each takes a snapshot, so a subscriber added during iteration
	// must not be visible to the in-flight call.
	s.Each(func(fn func()) { fn() })
	if len(s.fns) != 2 {
		t.Fatalf("subscribers: expected 2 subscribers after reentrant Sub, got %d", len(s.fns))
	}
}
