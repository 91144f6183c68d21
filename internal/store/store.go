// Package store holds per-session shared state (cart, addresses) with
// explicit mutation entry points. Header badge, cart drawer, and
// checkout all observe the same state, so every change goes through
// here rather than through ad hoc copies.
package store

import (
	"sync"

	"southhorizon/internal/domain"
)

type Store struct {
	mu       sync.Mutex
	sessions map[string]*sessionState
}

type sessionState struct {
	mu sync.Mutex // serializes cart mutations for this session

	cartSeq uint64 // monotonic fetch token; stale responses are discarded
	cart    domain.Cart
	hasCart bool

	addresses    []domain.Address
	hasAddresses bool
}

func New() *Store {
	return &Store{sessions: make(map[string]*sessionState)}
}

func (s *Store) state(sid string) *sessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.sessions[sid]
	if !ok {
		st = &sessionState{}
		s.sessions[sid] = st
	}
	return st
}

// LockCart acquires the per-session cart mutation lock. Quantity
// changes, item removal, and coupon apply/remove hold it so concurrent
// mutations cannot interleave and lose updates.
func (s *Store) LockCart(sid string) (unlock func()) {
	st := s.state(sid)
	st.mu.Lock()
	return st.mu.Unlock
}

// BeginCartFetch issues the token for an in-flight cart load.
func (s *Store) BeginCartFetch(sid string) uint64 {
	st := s.state(sid)
	s.mu.Lock()
	defer s.mu.Unlock()
	st.cartSeq++
	return st.cartSeq
}

// CompleteCartFetch installs a fetched cart if its token is still the
// latest. Reports whether the result was applied; a superseded fetch
// is dropped on the floor.
func (s *Store) CompleteCartFetch(sid string, token uint64, cart domain.Cart) bool {
	st := s.state(sid)
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != st.cartSeq {
		return false
	}
	st.cart = cart
	st.hasCart = true
	return true
}

// Cart returns the last applied cart.
func (s *Store) Cart(sid string) (domain.Cart, bool) {
	st := s.state(sid)
	s.mu.Lock()
	defer s.mu.Unlock()
	return st.cart, st.hasCart
}

// PatchCart applies a server-confirmed adjustment (coupon totals)
// atomically with respect to all observers.
func (s *Store) PatchCart(sid string, fn func(*domain.Cart)) {
	st := s.state(sid)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !st.hasCart {
		st.cart = domain.EmptyCart()
		st.hasCart = true
	}
	fn(&st.cart)
}

// Addresses returns the last loaded address list.
func (s *Store) Addresses(sid string) ([]domain.Address, bool) {
	st := s.state(sid)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !st.hasAddresses {
		return nil, false
	}
	out := make([]domain.Address, len(st.addresses))
	copy(out, st.addresses)
	return out, true
}

// SetAddresses replaces the address list after a confirmed fetch or
// mutation re-fetch.
func (s *Store) SetAddresses(sid string, list []domain.Address) {
	st := s.state(sid)
	s.mu.Lock()
	defer s.mu.Unlock()
	st.addresses = make([]domain.Address, len(list))
	copy(st.addresses, list)
	st.hasAddresses = true
}

// PatchAddresses edits the list in place under the lock, so observers
// never see a partial update (used for the default-address flip).
func (s *Store) PatchAddresses(sid string, fn func([]domain.Address) []domain.Address) {
	st := s.state(sid)
	s.mu.Lock()
	defer s.mu.Unlock()
	st.addresses = fn(st.addresses)
	st.hasAddresses = true
}

// Drop forgets all state for a session (logout, invalidation).
func (s *Store) Drop(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sid)
}
