package upstream

import (
	"context"
	"net/http"

	"southhorizon/internal/domain"
)

type AuthResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	var res AuthResponse
	if err := c.send(ctx, http.MethodPost, "", "/api/auth/register", req, &res); err != nil {
		return AuthResponse{}, err
	}
	return res, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	var res AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.send(ctx, http.MethodPost, "", "/api/auth/login", body, &res); err != nil {
		return AuthResponse{}, err
	}
	return res, nil
}

// PhoneLogin asks the API to send an OTP to the phone.
func (c *Client) PhoneLogin(ctx context.Context, phone string) error {
	return c.send(ctx, http.MethodPost, "", "/api/auth/phone-login", map[string]string{"phone": phone}, nil)
}

func (c *Client) VerifyPhoneOtp(ctx context.Context, phone, otp string) (AuthResponse, error) {
	var res AuthResponse
	body := map[string]string{"phone": phone, "otp": otp}
	if err := c.send(ctx, http.MethodPost, "", "/api/auth/verify-otp", body, &res); err != nil {
		return AuthResponse{}, err
	}
	return res, nil
}

// GoogleOAuth exchanges a Google credential for a session token.
func (c *Client) GoogleOAuth(ctx context.Context, credential string) (AuthResponse, error) {
	var res AuthResponse
	body := map[string]string{"credential": credential}
	if err := c.send(ctx, http.MethodPost, "", "/api/auth/google", body, &res); err != nil {
		return AuthResponse{}, err
	}
	return res, nil
}
