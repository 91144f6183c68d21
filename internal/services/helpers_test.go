package services_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"southhorizon/internal/domain"
	"southhorizon/internal/payment"
	"southhorizon/internal/upstream"
)

func fakeAPI(t *testing.T, h http.Handler) *upstream.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return upstream.New(srv.URL, 2*time.Second)
}

func authedSession() domain.Session {
	return domain.Session{
		SID:           "sid-test",
		Token:         "tok-test",
		Authenticated: true,
		User: &domain.User{
			ID:    "u1",
			Name:  "Asha Rao",
			Email: "asha@example.com",
			Phone: "9876543210",
		},
	}
}

// fakeGateway records the intent and holds the callbacks like the real
// widget boundary does.
type fakeGateway struct {
	mu      sync.Mutex
	initErr error
	intent  payment.Intent
	cb      payment.Callbacks
	calls   int
}

func (g *fakeGateway) Initiate(_ context.Context, in payment.Intent, cb payment.Callbacks) (payment.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.initErr != nil {
		return payment.CheckoutSession{}, g.initErr
	}
	g.intent = in
	g.cb = cb
	return payment.CheckoutSession{
		GatewayOrderID: "rzp_order_1",
		KeyID:          "key_test",
		AmountMinor:    in.AmountMinor,
		Currency:       "INR",
		Description:    in.Description,
	}, nil
}
