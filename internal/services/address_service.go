package services

import (
	"context"
	"fmt"

	"southhorizon/internal/domain"
	"southhorizon/internal/store"
	"southhorizon/internal/upstream"
)

// AddressService is CRUD over the user's saved addresses plus the
// single-default invariant. Local state only moves after the server
// confirms, so a failed mutation never leaves a half-edited list.
type AddressService struct {
	API   *upstream.Client
	State *store.Store
}

func NewAddressService(api *upstream.Client, state *store.Store) *AddressService {
	return &AddressService{API: api, State: state}
}

func (s *AddressService) List(ctx context.Context, sess domain.Session) ([]domain.Address, error) {
	list, err := s.API.Addresses(ctx, sess.Token)
	if err != nil {
		return nil, fmt.Errorf("load addresses: %w", err)
	}
	s.State.SetAddresses(sess.SID, list)
	return list, nil
}

// Create adds an address and re-fetches the authoritative list.
func (s *AddressService) Create(ctx context.Context, sess domain.Session, a domain.Address) (domain.Address, error) {
	created, err := s.API.CreateAddress(ctx, sess.Token, a)
	if err != nil {
		return domain.Address{}, fmt.Errorf("create address: %w", err)
	}
	if _, err := s.List(ctx, sess); err != nil {
		// the create itself succeeded; the stale list heals on next load
		return created, nil
	}
	return created, nil
}

func (s *AddressService) Update(ctx context.Context, sess domain.Session, a domain.Address) (domain.Address, error) {
	updated, err := s.API.UpdateAddress(ctx, sess.Token, a)
	if err != nil {
		return domain.Address{}, fmt.Errorf("update address: %w", err)
	}
	_, _ = s.List(ctx, sess)
	return updated, nil
}

func (s *AddressService) Delete(ctx context.Context, sess domain.Session, id string) error {
	if err := s.API.DeleteAddress(ctx, sess.Token, id); err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	_, _ = s.List(ctx, sess)
	return nil
}

// SetDefault marks one address default. After server confirmation the
// flip happens in a single state update: the target becomes default
// and every other address is cleared, including any pre-existing
// duplicate defaults.
func (s *AddressService) SetDefault(ctx context.Context, sess domain.Session, id string) error {
	if _, err := s.API.SetDefaultAddress(ctx, sess.Token, id); err != nil {
		return fmt.Errorf("set default address: %w", err)
	}
	s.State.PatchAddresses(sess.SID, func(list []domain.Address) []domain.Address {
		for i := range list {
			list[i].IsDefault = list[i].ID == id
		}
		return list
	})
	return nil
}

// DefaultOf picks the default address from a list, if any.
func DefaultOf(list []domain.Address) *domain.Address {
	for i := range list {
		if list[i].IsDefault {
			return &list[i]
		}
	}
	return nil
}
