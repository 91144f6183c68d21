package store_test

import (
	"sync"
	"testing"

	"southhorizon/internal/domain"
	"southhorizon/internal/store"
)

func TestCartFetchTokenDiscardsStale(t *testing.T) {
	s := store.New()
	sid := "s1"

	old := s.BeginCartFetch(sid)
	newer := s.BeginCartFetch(sid)

	// the newer fetch lands first
	if !s.CompleteCartFetch(sid, newer, domain.Cart{Total: 200}) {
		t.Fatal("latest fetch rejected")
	}
	// the older one arrives late and must be dropped
	if s.CompleteCartFetch(sid, old, domain.Cart{Total: 100}) {
		t.Fatal("stale fetch applied")
	}

	cart, ok := s.Cart(sid)
	if !ok || cart.Total != 200 {
		t.Fatalf("cart = %+v ok=%v, want total 200", cart, ok)
	}
}

func TestCartFetchTokensIndependentPerSession(t *testing.T) {
	s := store.New()
	a := s.BeginCartFetch("a")
	s.BeginCartFetch("b") // other session must not invalidate a's token
	if !s.CompleteCartFetch("a", a, domain.Cart{Total: 10}) {
		t.Fatal("token invalidated by another session")
	}
}

func TestLockCartSerializesMutations(t *testing.T) {
	s := store.New()
	sid := "s1"
	s.CompleteCartFetch(sid, s.BeginCartFetch(sid), domain.Cart{})

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := s.LockCart(sid)
			defer unlock()
			// read-modify-write that would lose updates without the lock
			cart, _ := s.Cart(sid)
			cart.Total++
			s.PatchCart(sid, func(c *domain.Cart) { c.Total = cart.Total })
		}()
	}
	wg.Wait()

	cart, _ := s.Cart(sid)
	if cart.Total != n {
		t.Fatalf("total = %v, want %v (lost updates)", cart.Total, n)
	}
}

func TestPatchCartStartsFromEmpty(t *testing.T) {
	s := store.New()
	s.PatchCart("fresh", func(c *domain.Cart) { c.Discount = 5 })
	cart, ok := s.Cart("fresh")
	if !ok || cart.Discount != 5 || cart.Items == nil {
		t.Fatalf("cart = %+v ok=%v", cart, ok)
	}
}

func TestAddressesCopyOut(t *testing.T) {
	s := store.New()
	s.SetAddresses("s1", []domain.Address{{ID: "a1"}, {ID: "a2"}})

	list, ok := s.Addresses("s1")
	if !ok || len(list) != 2 {
		t.Fatalf("list = %+v ok=%v", list, ok)
	}
	list[0].ID = "mutated"

	again, _ := s.Addresses("s1")
	if again[0].ID != "a1" {
		t.Fatal("caller mutation leaked into the store")
	}
}

func TestPatchAddressesDefaultFlip(t *testing.T) {
	s := store.New()
	// two defaults at once: a pre-existing anomaly the flip must clear
	s.SetAddresses("s1", []domain.Address{
		{ID: "a1", IsDefault: true},
		{ID: "a2", IsDefault: true},
		{ID: "a3"},
	})
	s.PatchAddresses("s1", func(list []domain.Address) []domain.Address {
		for i := range list {
			list[i].IsDefault = list[i].ID == "a3"
		}
		return list
	})

	list, _ := s.Addresses("s1")
	var defaults int
	for _, a := range list {
		if a.IsDefault {
			defaults++
			if a.ID != "a3" {
				t.Fatalf("wrong default: %s", a.ID)
			}
		}
	}
	if defaults != 1 {
		t.Fatalf("defaults = %d, want 1", defaults)
	}
}

func TestDropForgetsSession(t *testing.T) {
	s := store.New()
	s.CompleteCartFetch("s1", s.BeginCartFetch("s1"), domain.Cart{Total: 1})
	s.SetAddresses("s1", []domain.Address{{ID: "a1"}})

	s.Drop("s1")

	if _, ok := s.Cart("s1"); ok {
		t.Fatal("cart survived drop")
	}
	if _, ok := s.Addresses("s1"); ok {
		t.Fatal("addresses survived drop")
	}
}
