package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Razorpay creates gateway orders over the Orders API and holds the
// callbacks until the client widget reports an outcome through the
// payment-result endpoint.
type Razorpay struct {
	keyID  string
	secret string
	base   string
	hc     *http.Client

	mu      sync.Mutex
	pending map[string]Callbacks // gateway order id -> callbacks
}

func NewRazorpay(keyID, secret, baseURL string) *Razorpay {
	return &Razorpay{
		keyID:   keyID,
		secret:  secret,
		base:    strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: 15 * time.Second},
		pending: make(map[string]Callbacks),
	}
}

type rzpOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

func (r *Razorpay) Initiate(ctx context.Context, in Intent, cb Callbacks) (CheckoutSession, error) {
	if in.AmountMinor <= 0 {
		return CheckoutSession{}, errors.New("payment: non-positive amount")
	}
	body, err := json.Marshal(map[string]any{
		"amount":   in.AmountMinor,
		"currency": "INR",
		"receipt":  in.OrderID,
		"notes":    map[string]string{"description": in.Description},
	})
	if err != nil {
		return CheckoutSession{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.base+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return CheckoutSession{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(r.keyID, r.secret)

	resp, err := r.hc.Do(req)
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("payment: create order: %w", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= 400 {
		return CheckoutSession{}, fmt.Errorf("payment: create order: status %d", resp.StatusCode)
	}
	var o rzpOrder
	if err := json.Unmarshal(raw, &o); err != nil || o.ID == "" {
		return CheckoutSession{}, errors.New("payment: create order: bad reply")
	}

	r.mu.Lock()
	r.pending[o.ID] = cb
	r.mu.Unlock()

	return CheckoutSession{
		GatewayOrderID: o.ID,
		KeyID:          r.keyID,
		AmountMinor:    in.AmountMinor,
		Currency:       "INR",
		Description:    in.Description,
	}, nil
}

func (r *Razorpay) take(id string) (Callbacks, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cb, ok := r.pending[id]
	if ok {
		delete(r.pending, id)
	}
	return cb, ok
}

func (r *Razorpay) NotifySuccess(id string, conf Confirmation) bool {
	cb, ok := r.take(id)
	if !ok {
		return false
	}
	if cb.OnSuccess != nil {
		cb.OnSuccess(conf)
	}
	return true
}

func (r *Razorpay) NotifyCancel(id string) bool {
	cb, ok := r.take(id)
	if !ok {
		return false
	}
	if cb.OnCancel != nil {
		cb.OnCancel()
	}
	return true
}

func (r *Razorpay) NotifyError(id, msg string) bool {
	cb, ok := r.take(id)
	if !ok {
		return false
	}
	if cb.OnError != nil {
		cb.OnError(errors.New(msg))
	}
	return true
}
