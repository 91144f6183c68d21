package services

import (
	"context"
	"errors"

	"southhorizon/internal/domain"
	"southhorizon/internal/repos"
	"southhorizon/internal/store"
	"southhorizon/internal/upstream"
)

// AuthService gates everything that needs an upstream bearer token.
// It binds tokens to browser sids in the session store so a login
// survives process restarts until explicitly cleared.
type AuthService struct {
	API      *upstream.Client
	Sessions *repos.SessionRepo
	State    *store.Store
}

func NewAuthService(api *upstream.Client, sessions *repos.SessionRepo, state *store.Store) *AuthService {
	return &AuthService{API: api, Sessions: sessions, State: state}
}

func (s *AuthService) Login(ctx context.Context, sid, email, password string) (*domain.User, error) {
	res, err := s.API.Login(ctx, email, password)
	if err != nil {
		return nil, credErr(err)
	}
	if err := s.Sessions.Bind(sid, res.Token, res.User); err != nil {
		return nil, err
	}
	return &res.User, nil
}

func (s *AuthService) Register(ctx context.Context, sid string, req upstream.RegisterRequest) (*domain.User, error) {
	res, err := s.API.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.Sessions.Bind(sid, res.Token, res.User); err != nil {
		return nil, err
	}
	return &res.User, nil
}

// PhoneLogin only triggers the OTP send; the session stays
// unauthenticated until the OTP verifies.
func (s *AuthService) PhoneLogin(ctx context.Context, phone string) error {
	return s.API.PhoneLogin(ctx, phone)
}

func (s *AuthService) VerifyPhoneOtp(ctx context.Context, sid, phone, otp string) (*domain.User, error) {
	res, err := s.API.VerifyPhoneOtp(ctx, phone, otp)
	if err != nil {
		return nil, credErr(err)
	}
	if err := s.Sessions.Bind(sid, res.Token, res.User); err != nil {
		return nil, err
	}
	return &res.User, nil
}

func (s *AuthService) GoogleOAuth(ctx context.Context, sid, credential string) (*domain.User, error) {
	res, err := s.API.GoogleOAuth(ctx, credential)
	if err != nil {
		return nil, credErr(err)
	}
	if err := s.Sessions.Bind(sid, res.Token, res.User); err != nil {
		return nil, err
	}
	return &res.User, nil
}

// Logout clears the token binding and drops all cached session state.
func (s *AuthService) Logout(sid string) error {
	if s.State != nil {
		s.State.Drop(sid)
	}
	return s.Sessions.Unbind(sid)
}

// Current resolves the sid into a session; unknown sids come back
// unauthenticated, never as errors.
func (s *AuthService) Current(sid string) (domain.Session, error) {
	return s.Sessions.Get(sid)
}

// Touch records the sid in the session store so anonymous sessions
// have a parent row before any cached state is written against them.
func (s *AuthService) Touch(sid string) error {
	return s.Sessions.Touch(sid)
}

func credErr(err error) error {
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) && (apiErr.Status == 400 || apiErr.Status == 401 || apiErr.Status == 403) {
		return ErrBadCreds
	}
	return err
}
