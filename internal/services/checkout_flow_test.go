package services_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"southhorizon/internal/payment"
	"southhorizon/internal/services"
	"southhorizon/internal/store"
)

type checkoutFixture struct {
	svc *services.CheckoutService
	gw  *fakeGateway

	cartEmpty     atomic.Bool
	addressesDown atomic.Bool
	placeFail     atomic.Bool
	placeOrders   atomic.Int32

	mu        sync.Mutex
	placeKeys []string
}

func (f *checkoutFixture) keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.placeKeys...)
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	f := &checkoutFixture{gw: &fakeGateway{}}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/cart", func(w http.ResponseWriter, r *http.Request) {
		if f.cartEmpty.Load() {
			w.Write([]byte(`{"items":[],"total":0}`))
			return
		}
		w.Write([]byte(`{"items":[{"id":"l1","productId":"p1","quantity":2,"price":50}],"total":100}`))
	})
	mux.HandleFunc("/api/products/p1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"p1","name":"Linen Tee","price":50}`))
	})
	mux.HandleFunc("/api/profile/addresses", func(w http.ResponseWriter, r *http.Request) {
		if f.addressesDown.Load() {
			http.Error(w, `{"error":"down"}`, http.StatusBadGateway)
			return
		}
		w.Write([]byte(`[
			{"id":"a1","name":"Asha Rao","phone":"9876543210","addressLine1":"Flat 4B","addressLine2":"Indiranagar",
			 "city":"Bengaluru","state":"Karnataka","pincode":"560038","isDefault":true,"type":"home"},
			{"id":"a2","name":"Asha Rao","phone":"9876543210","addressLine1":"Office Park",
			 "city":"Bengaluru","state":"Karnataka","pincode":"560001","type":"work"}
		]`))
	})
	mux.HandleFunc("/api/coupons/available", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":"c1","code":"SAVE20","discountType":"fixed","discountValue":20,"isActive":true}]}`))
	})
	mux.HandleFunc("/api/cart/apply-coupon", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"discount":20,"newTotal":80}`))
	})
	mux.HandleFunc("/api/orders/place", func(w http.ResponseWriter, r *http.Request) {
		f.placeOrders.Add(1)
		f.mu.Lock()
		f.placeKeys = append(f.placeKeys, r.Header.Get("X-Idempotency-Key"))
		f.mu.Unlock()
		if f.placeFail.Load() {
			http.Error(w, `{"error":"upstream unavailable"}`, http.StatusBadGateway)
			return
		}
		var req struct {
			ShippingAddress struct {
				Street  string `json:"street"`
				Country string `json:"country"`
			} `json:"shippingAddress"`
			PaymentMethod string `json:"paymentMethod"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.ShippingAddress.Street != "Flat 4B, Indiranagar" {
			t.Errorf("street = %q", req.ShippingAddress.Street)
		}
		if req.ShippingAddress.Country != "India" || req.PaymentMethod != "razorpay" {
			t.Errorf("request = %+v", req)
		}
		if r.Header.Get("X-Idempotency-Key") == "" {
			t.Error("missing idempotency key")
		}
		w.Write([]byte(`{"data":{"id":"ord_1","status":"processing"}}`))
	})

	api := fakeAPI(t, mux)
	state := store.New()
	cart := services.NewCartService(api, state, nil)
	coupons := services.NewCouponService(api, state)
	addresses := services.NewAddressService(api, state)
	f.svc = services.NewCheckoutService(api, cart, coupons, addresses, f.gw)
	return f
}

func TestCheckoutRequiresAuth(t *testing.T) {
	f := newCheckoutFixture(t)
	sess := authedSession()
	sess.Authenticated = false
	sess.Token = ""

	if _, err := f.svc.Begin(context.Background(), sess); !errors.Is(err, services.ErrNotAuthenticated) {
		t.Fatalf("err = %v, want ErrNotAuthenticated", err)
	}
}

func TestCheckoutBeginReachesReady(t *testing.T) {
	f := newCheckoutFixture(t)
	co, err := f.svc.Begin(context.Background(), authedSession())
	if err != nil {
		t.Fatal(err)
	}

	snap := co.Snapshot()
	if snap.State != "ready" {
		t.Fatalf("state = %s", snap.State)
	}
	if len(snap.Addresses) != 2 || len(snap.Coupons) != 1 || len(snap.Cart.Items) != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
	// the default address is pre-selected
	if snap.Selected == nil || snap.Selected.ID != "a1" {
		t.Fatalf("selected = %+v", snap.Selected)
	}

	if _, ok := f.svc.Active(authedSession().SID); !ok {
		t.Fatal("checkout not registered as active")
	}
}

func TestCheckoutSourcesDegradeIndependently(t *testing.T) {
	f := newCheckoutFixture(t)
	f.addressesDown.Store(true)

	co, err := f.svc.Begin(context.Background(), authedSession())
	if err != nil {
		t.Fatalf("one failing source must not fail Begin: %v", err)
	}
	snap := co.Snapshot()
	if snap.State != "ready" {
		t.Fatalf("state = %s", snap.State)
	}
	// addresses degraded empty; cart and coupons still loaded
	if len(snap.Addresses) != 0 || snap.Selected != nil {
		t.Fatalf("addresses = %+v selected = %+v", snap.Addresses, snap.Selected)
	}
	if len(snap.Cart.Items) != 1 || len(snap.Coupons) != 1 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestPlaceOrderGuards(t *testing.T) {
	t.Run("no address", func(t *testing.T) {
		f := newCheckoutFixture(t)
		f.addressesDown.Store(true)
		co, _ := f.svc.Begin(context.Background(), authedSession())

		_, err := f.svc.PlaceOrder(context.Background(), co)
		if !errors.Is(err, services.ErrNoAddress) {
			t.Fatalf("err = %v, want ErrNoAddress", err)
		}
		if co.State() != services.StateReady {
			t.Fatalf("state = %v, want Ready", co.State())
		}
		if f.placeOrders.Load() != 0 {
			t.Fatal("guard failure reached the network")
		}
	})

	t.Run("empty cart", func(t *testing.T) {
		f := newCheckoutFixture(t)
		f.cartEmpty.Store(true)
		co, _ := f.svc.Begin(context.Background(), authedSession())

		_, err := f.svc.PlaceOrder(context.Background(), co)
		if !errors.Is(err, services.ErrEmptyCart) {
			t.Fatalf("err = %v, want ErrEmptyCart", err)
		}
		if f.placeOrders.Load() != 0 {
			t.Fatal("guard failure reached the network")
		}
	})
}

func TestPlaceOrderToPaymentSuccess(t *testing.T) {
	f := newCheckoutFixture(t)
	co, _ := f.svc.Begin(context.Background(), authedSession())

	cs, err := f.svc.PlaceOrder(context.Background(), co)
	if err != nil {
		t.Fatal(err)
	}
	if co.State() != services.StateAwaitingPayment {
		t.Fatalf("state = %v, want AwaitingPayment", co.State())
	}
	if cs.GatewayOrderID != "rzp_order_1" || cs.Currency != "INR" {
		t.Fatalf("session = %+v", cs)
	}
	// 100.00 rupees -> 10000 paise
	if f.gw.intent.AmountMinor != 10000 {
		t.Fatalf("amount = %d paise, want 10000", f.gw.intent.AmountMinor)
	}
	if f.gw.intent.OrderID != "ord_1" {
		t.Fatalf("order = %q", f.gw.intent.OrderID)
	}
	// customer comes from the session profile
	if f.gw.intent.Customer.Email != "asha@example.com" {
		t.Fatalf("customer = %+v", f.gw.intent.Customer)
	}

	// a second place while awaiting payment is refused
	if _, err := f.svc.PlaceOrder(context.Background(), co); !errors.Is(err, services.ErrNotReady) {
		t.Fatalf("err = %v, want ErrNotReady", err)
	}

	f.gw.cb.OnSuccess(payment.Confirmation{
		PaymentID: "pay_1", OrderID: "rzp_order_1", Signature: "sig",
	})
	if co.State() != services.StateCompleted {
		t.Fatalf("state = %v, want Completed", co.State())
	}
	snap := co.Snapshot()
	if snap.PaymentID != "pay_1" || snap.OrderID != "ord_1" {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestPaymentCancelReturnsToReady(t *testing.T) {
	f := newCheckoutFixture(t)
	co, _ := f.svc.Begin(context.Background(), authedSession())
	if _, err := f.svc.PlaceOrder(context.Background(), co); err != nil {
		t.Fatal(err)
	}

	var logged bytes.Buffer
	log.SetOutput(&logged)
	defer log.SetOutput(os.Stderr)

	f.gw.cb.OnCancel()
	if co.State() != services.StateReady {
		t.Fatalf("state = %v, want Ready", co.State())
	}
	if snap := co.Snapshot(); snap.LastError != "payment cancelled" {
		t.Fatalf("lastError = %q", snap.LastError)
	}
	// the dangling upstream order is made visible as an audit entry
	if !strings.Contains(logged.String(), `"action":"payment.cancelled"`) {
		t.Fatalf("audit log missing cancellation entry: %s", logged.String())
	}
}

func TestPaymentErrorReturnsToReady(t *testing.T) {
	f := newCheckoutFixture(t)
	co, _ := f.svc.Begin(context.Background(), authedSession())
	if _, err := f.svc.PlaceOrder(context.Background(), co); err != nil {
		t.Fatal(err)
	}

	f.gw.cb.OnError(errors.New("card declined"))
	if co.State() != services.StateReady {
		t.Fatalf("state = %v, want Ready", co.State())
	}
	snap := co.Snapshot()
	if snap.LastError == "" {
		t.Fatal("lastError empty after payment failure")
	}
}

func TestGatewayInitFailureIsRecoverable(t *testing.T) {
	f := newCheckoutFixture(t)
	f.gw.initErr = errors.New("gateway unreachable")
	co, _ := f.svc.Begin(context.Background(), authedSession())

	if _, err := f.svc.PlaceOrder(context.Background(), co); err == nil {
		t.Fatal("expected error")
	}
	// the upstream order was placed; the checkout records it and
	// returns to Ready instead of wedging
	if co.State() != services.StateReady {
		t.Fatalf("state = %v, want Ready", co.State())
	}
	if co.OrderID() != "ord_1" {
		t.Fatalf("orderID = %q, want ord_1", co.OrderID())
	}
	if snap := co.Snapshot(); snap.LastError == "" {
		t.Fatal("lastError empty")
	}
}

// A placement retry after a recoverable failure must replay the same
// idempotency key, so the upstream dedupes instead of double-ordering.
// Once an order exists the next distinct submission gets a fresh key.
func TestPlaceOrderRetryReusesIdempotencyKey(t *testing.T) {
	f := newCheckoutFixture(t)
	co, _ := f.svc.Begin(context.Background(), authedSession())

	f.placeFail.Store(true)
	if _, err := f.svc.PlaceOrder(context.Background(), co); err == nil {
		t.Fatal("expected placement failure")
	}
	if co.State() != services.StateReady {
		t.Fatalf("state = %v, want Ready", co.State())
	}

	f.placeFail.Store(false)
	if _, err := f.svc.PlaceOrder(context.Background(), co); err != nil {
		t.Fatal(err)
	}

	keys := f.keys()
	if len(keys) != 2 {
		t.Fatalf("placements = %d, want 2", len(keys))
	}
	if keys[0] == "" || keys[0] != keys[1] {
		t.Fatalf("keys = %v, want the retry to replay the first key", keys)
	}

	// order placed; cancel the payment and place again
	f.gw.cb.OnCancel()
	if _, err := f.svc.PlaceOrder(context.Background(), co); err != nil {
		t.Fatal(err)
	}
	keys = f.keys()
	if len(keys) != 3 || keys[2] == keys[1] {
		t.Fatalf("keys = %v, want a fresh key for the new submission", keys)
	}
}

func TestCheckoutCouponFoldsTotals(t *testing.T) {
	f := newCheckoutFixture(t)
	co, _ := f.svc.Begin(context.Background(), authedSession())

	if err := f.svc.ApplyCoupon(context.Background(), co, "SAVE20"); err != nil {
		t.Fatal(err)
	}
	snap := co.Snapshot()
	if snap.Cart.Discount != 20 || snap.Cart.FinalTotal != 80 || snap.Cart.Coupon != "SAVE20" {
		t.Fatalf("cart = %+v", snap.Cart)
	}

	// payment collects the discounted amount
	if _, err := f.svc.PlaceOrder(context.Background(), co); err != nil {
		t.Fatal(err)
	}
	if f.gw.intent.AmountMinor != 8000 {
		t.Fatalf("amount = %d paise, want 8000", f.gw.intent.AmountMinor)
	}
}

func TestSelectAddress(t *testing.T) {
	f := newCheckoutFixture(t)
	co, _ := f.svc.Begin(context.Background(), authedSession())

	if err := co.SelectAddress("a2"); err != nil {
		t.Fatal(err)
	}
	if snap := co.Snapshot(); snap.Selected == nil || snap.Selected.ID != "a2" {
		t.Fatalf("selected = %+v", snap.Selected)
	}
	if err := co.SelectAddress("nope"); !errors.Is(err, services.ErrAddressGone) {
		t.Fatalf("err = %v, want ErrAddressGone", err)
	}
}
