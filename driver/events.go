// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

import "sync"

// Token identifies a subscription created by an On* method.
// It is returned so that the caller can later remove the
// subscription by passing it to the matching Off* method.
type Token int

// subscribers is a generic token-keyed list of callbacks; no exported
// type of this package uses it (the backends keep their own maps).
// Each publisher owns one instance; tokens are not comparable across
// publishers (spec.md §9, "each publisher owns a vector of subscriber
// callbacks keyed by a token").
type subscribers[F any] struct {
	mu   sync.Mutex
	next Token
	fns  map[Token]F
}

func newSubscribers[F any]() *subscribers[F] {
	return &subscribers[F]{fns: make(map[Token]F)}
}

// Sub adds fn to the set of subscribers and returns a token that
// identifies it.
func (s *subscribers[F]) Sub(fn F) Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	tk := s.next
	s.next++
	s.fns[tk] = fn
	return tk
}

// Unsub removes the subscription identified by tk, if any.
func (s *subscribers[F]) Unsub(tk Token) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.fns, tk)
}

// Each calls fn once for every currently subscribed callback, in
// unspecified order. It takes a snapshot under lock and invokes
// callbacks outside of it, so a subscriber may safely call Sub or
// Unsub on the same subscribers from within its own callback.
func (s *subscribers[F]) Each(fn func(F)) {
	s.mu.Lock()
	snap := make([]F, 0, len(s.fns))
	for _, f := range s.fns {
		snap = append(snap, f)
	}
	s.mu.Unlock()
	for _, f := range snap {
		fn(f)
	}
}

// ResizeFunc is called when a Swapchain's backbuffers are recreated
// at a new size.
type ResizeFunc func(width, height int)

// ReleaseFunc is called when a resource is about to be destroyed,
// giving dependents (e.g. descriptor tables referencing a view) a
// chance to invalidate their own cached state first.
type ReleaseFunc func()
