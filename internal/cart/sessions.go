package cart

import (
	"sync"
	"time"

	"shopmart/internal/domain"
)

// Sessions owns one Store per session id. It replaces the process-wide cart
// the handlers would otherwise share. Empty stores are forgotten, so the
// registry only holds carts that have something in them.
type Sessions struct {
	mu     sync.Mutex
	stores map[string]*Store
	now    func() time.Time
}

func NewSessions() *Sessions {
	return &Sessions{stores: make(map[string]*Store), now: time.Now}
}

// For returns the session's store, creating an empty one on first use.
func (s *Sessions) For(sid string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stores[sid]
	if !ok {
		st = NewStore()
		s.stores[sid] = st
	}
	st.touched = s.now()
	return st
}

// Peek returns the session's store without creating one.
func (s *Sessions) Peek(sid string) (*Store, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stores[sid]
	return st, ok
}

// Update runs fn on the session's store with the registry locked. When create
// is false an absent session stays absent and fn is not called. A store left
// empty is dropped unless an order from it is in flight.
func (s *Sessions) Update(sid string, create bool, fn func(*Store)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.stores[sid]
	if !ok {
		if !create {
			return
		}
		st = NewStore()
		s.stores[sid] = st
	}
	fn(st)
	st.touched = s.now()
	if st.Len() == 0 && !st.checkingOut() {
		delete(s.stores, sid)
	}
}

// Settle takes the ordered lines out of st and forgets the session once its
// cart is empty.
func (s *Sessions) Settle(sid string, st *Store, ordered []domain.CartLineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.Take(ordered)
	st.touched = s.now()
	if cur, ok := s.stores[sid]; ok && cur == st && st.Len() == 0 {
		delete(s.stores, sid)
	}
}

// Sweep drops carts untouched for at least idle and reports how many went.
func (s *Sessions) Sweep(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for sid, st := range s.stores {
		if st.checkingOut() || now.Sub(st.touched) < idle {
			continue
		}
		delete(s.stores, sid)
		n++
	}
	return n
}

func (s *Sessions) Drop(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stores, sid)
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stores)
}
