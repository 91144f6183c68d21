package services

import (
	"context"
	"math"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"southhorizon/internal/domain"
	applog "southhorizon/internal/log"
	"southhorizon/internal/payment"
	"southhorizon/internal/upstream"
)

// CheckoutState is the orchestrator's position in the flow. Error is
// not a state of its own: recoverable failures return to Ready with
// LastError set.
type CheckoutState int

const (
	StateLoading CheckoutState = iota
	StateReady
	StatePlacingOrder
	StateAwaitingPayment
	StateCompleted
)

func (s CheckoutState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StatePlacingOrder:
		return "placing_order"
	case StateAwaitingPayment:
		return "awaiting_payment"
	case StateCompleted:
		return "completed"
	}
	return "unknown"
}

// Checkout is one session's flow from address selection to payment
// confirmation.
type Checkout struct {
	mu   sync.Mutex
	sess domain.Session

	state     CheckoutState
	cart      CartView
	addresses []domain.Address
	coupons   []AvailableCoupon
	selected  *domain.Address

	orderID        string
	gatewayOrderID string
	paymentID      string
	lastError      string
	idemKey        string // survives recoverable failures so retries dedupe
}

// Snapshot is the JSON view of a checkout for the UI.
type Snapshot struct {
	State     string            `json:"state"`
	Cart      CartView          `json:"cart"`
	Addresses []domain.Address  `json:"addresses"`
	Coupons   []AvailableCoupon `json:"coupons"`
	Selected  *domain.Address   `json:"selectedAddress,omitempty"`
	OrderID   string            `json:"orderId,omitempty"`
	PaymentID string            `json:"paymentId,omitempty"`
	LastError string            `json:"lastError,omitempty"`
}

func (co *Checkout) Snapshot() Snapshot {
	co.mu.Lock()
	defer co.mu.Unlock()
	return Snapshot{
		State:     co.state.String(),
		Cart:      co.cart,
		Addresses: co.addresses,
		Coupons:   co.coupons,
		Selected:  co.selected,
		OrderID:   co.orderID,
		PaymentID: co.paymentID,
		LastError: co.lastError,
	}
}

func (co *Checkout) State() CheckoutState {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.state
}

func (co *Checkout) OrderID() string {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.orderID
}

// GatewayOrderID identifies the payment this checkout initiated, empty
// until an order is placed. Payment outcomes are only accepted for it.
func (co *Checkout) GatewayOrderID() string {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.gatewayOrderID
}

// SelectAddress picks a delivery address out of the loaded list.
func (co *Checkout) SelectAddress(id string) error {
	co.mu.Lock()
	defer co.mu.Unlock()
	for i := range co.addresses {
		if co.addresses[i].ID == id {
			a := co.addresses[i]
			co.selected = &a
			return nil
		}
	}
	return ErrAddressGone
}

// RefreshAddresses re-reads the address list (after an add from the
// checkout page) and follows a newly defaulted address.
func (co *Checkout) refreshAddresses(list []domain.Address) {
	co.mu.Lock()
	defer co.mu.Unlock()
	co.addresses = list
	if d := DefaultOf(list); d != nil {
		if co.selected == nil || co.selected.ID != d.ID {
			co.selected = d
		}
	}
}

// CheckoutService sequences address selection, coupon state, order
// placement, and payment collection behind explicit guards.
type CheckoutService struct {
	API       *upstream.Client
	Cart      *CartService
	Coupons   *CouponService
	Addresses *AddressService
	Gateway   payment.Gateway

	mu     sync.Mutex
	active map[string]*Checkout // sid -> in-flight checkout
}

func NewCheckoutService(api *upstream.Client, cart *CartService, coupons *CouponService, addresses *AddressService, gw payment.Gateway) *CheckoutService {
	return &CheckoutService{
		API:       api,
		Cart:      cart,
		Coupons:   coupons,
		Addresses: addresses,
		Gateway:   gw,
		active:    make(map[string]*Checkout),
	}
}

// Begin loads checkout data. Entry is hard-gated on authentication;
// each secondary source degrades on its own so one failing endpoint
// never blanks the page. Only the cart fetch bounds the loading
// phase, and the cart itself degrades to the safe empty view.
func (s *CheckoutService) Begin(ctx context.Context, sess domain.Session) (*Checkout, error) {
	if !sess.Authenticated {
		return nil, ErrNotAuthenticated
	}

	co := &Checkout{sess: sess, state: StateLoading}

	co.cart = s.Cart.View(ctx, sess) // never fails; empty cart on outage

	if list, err := s.Addresses.List(ctx, sess); err == nil {
		co.addresses = list
		co.selected = DefaultOf(list)
	} else {
		applog.Error(nil, "checkout.addresses.degraded", err, nil)
		co.addresses = []domain.Address{}
	}

	if cps, err := s.Coupons.Available(ctx, sess, co.cart.Total); err == nil {
		co.coupons = cps
	} else {
		applog.Error(nil, "checkout.coupons.degraded", err, nil)
		co.coupons = []AvailableCoupon{}
	}

	co.state = StateReady

	s.mu.Lock()
	s.active[sess.SID] = co
	s.mu.Unlock()
	return co, nil
}

// Active returns the session's in-flight checkout, if any.
func (s *CheckoutService) Active(sid string) (*Checkout, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	co, ok := s.active[sid]
	return co, ok
}

// ApplyCoupon runs a coupon apply and folds the confirmed totals into
// the checkout's cart view.
func (s *CheckoutService) ApplyCoupon(ctx context.Context, co *Checkout, code string) error {
	cart, err := s.Coupons.Apply(ctx, co.sess, code)
	if err != nil {
		return err
	}
	co.mu.Lock()
	co.cart.Discount = cart.Discount
	co.cart.FinalTotal = cart.FinalTotal
	co.cart.Coupon = cart.Coupon
	co.mu.Unlock()
	return nil
}

func (s *CheckoutService) RemoveCoupon(ctx context.Context, co *Checkout) error {
	cart, err := s.Coupons.Remove(ctx, co.sess)
	if err != nil {
		return err
	}
	co.mu.Lock()
	co.cart.Discount = cart.Discount
	co.cart.FinalTotal = cart.FinalTotal
	co.cart.Coupon = cart.Coupon
	co.mu.Unlock()
	return nil
}

// AddAddress creates an address from the checkout page and keeps the
// selection in step.
func (s *CheckoutService) AddAddress(ctx context.Context, co *Checkout, a domain.Address) error {
	if _, err := s.Addresses.Create(ctx, co.sess, a); err != nil {
		return err
	}
	if list, err := s.Addresses.List(ctx, co.sess); err == nil {
		co.refreshAddresses(list)
	}
	return nil
}

// PlaceOrder is the Ready -> PlacingOrder -> AwaitingPayment leg.
// Guards run before any network call: a missing address and an empty
// cart each report their own message. On success the gateway holds
// the three completion callbacks.
func (s *CheckoutService) PlaceOrder(ctx context.Context, co *Checkout) (payment.CheckoutSession, error) {
	co.mu.Lock()
	if co.state != StateReady {
		co.mu.Unlock()
		return payment.CheckoutSession{}, ErrNotReady
	}
	if co.selected == nil {
		co.lastError = ErrNoAddress.Error()
		co.mu.Unlock()
		return payment.CheckoutSession{}, ErrNoAddress
	}
	if len(co.cart.Items) == 0 {
		co.lastError = ErrEmptyCart.Error()
		co.mu.Unlock()
		return payment.CheckoutSession{}, ErrEmptyCart
	}
	co.state = StatePlacingOrder
	co.lastError = ""
	if co.idemKey == "" {
		co.idemKey = uuid.NewString()
	}
	idemKey := co.idemKey
	addr := *co.selected
	cart := co.cart
	sess := co.sess
	co.mu.Unlock()

	if total, ok := verifyTotals(cart); !ok {
		applog.Error(nil, "checkout.totals.mismatch", nil, map[string]any{
			"total": cart.Total, "discount": cart.Discount,
			"final_total": cart.FinalTotal, "expected": total.String(),
		})
	}

	street := addr.AddressLine1
	if addr.AddressLine2 != "" {
		street += ", " + addr.AddressLine2
	}
	req := domain.PlaceOrderRequest{
		ShippingAddress: domain.ShippingAddress{
			Street:  street,
			City:    addr.City,
			State:   addr.State,
			ZipCode: addr.Pincode,
			Country: "India",
		},
		PaymentMethod: "razorpay",
	}

	order, err := s.API.PlaceOrder(ctx, sess.Token, req, idemKey)
	if err != nil {
		// the key is kept so a retry of this submission dedupes upstream
		co.fail("failed to place order: " + err.Error())
		return payment.CheckoutSession{}, err
	}

	co.mu.Lock()
	co.orderID = order.ID
	co.idemKey = "" // order exists; a future placement is a new submission
	co.mu.Unlock()

	intent := payment.Intent{
		AmountMinor: int64(math.Round(cart.FinalTotal * 100)),
		OrderID:     order.ID,
		Customer:    customerFor(sess, addr),
		Description: "Order Payment - " + order.ID,
	}
	cs, err := s.Gateway.Initiate(ctx, intent, payment.Callbacks{
		OnSuccess: co.completePayment,
		OnCancel:  co.cancelPayment,
		OnError:   co.failPayment,
	})
	if err != nil {
		// the upstream order stays placed; recoverable
		co.fail("failed to start payment: " + err.Error())
		return payment.CheckoutSession{}, err
	}

	co.mu.Lock()
	co.gatewayOrderID = cs.GatewayOrderID
	co.state = StateAwaitingPayment
	co.mu.Unlock()
	return cs, nil
}

// customerFor prefers the session profile and falls back to the
// delivery address contact fields.
func customerFor(sess domain.Session, addr domain.Address) payment.Customer {
	cust := payment.Customer{Name: addr.Name, Phone: addr.Phone}
	if sess.User != nil {
		if sess.User.Name != "" {
			cust.Name = sess.User.Name
		}
		cust.Email = sess.User.Email
		if sess.User.Phone != "" {
			cust.Phone = sess.User.Phone
		}
	}
	return cust
}

// verifyTotals cross-checks the discount arithmetic in exact decimal.
func verifyTotals(cart CartView) (decimal.Decimal, bool) {
	want := decimal.NewFromFloat(cart.Total).Sub(decimal.NewFromFloat(cart.Discount))
	got := decimal.NewFromFloat(cart.FinalTotal)
	return want, want.Round(2).Equal(got.Round(2))
}

func (co *Checkout) completePayment(conf payment.Confirmation) {
	co.mu.Lock()
	defer co.mu.Unlock()
	co.paymentID = conf.PaymentID
	co.state = StateCompleted
}

// cancelPayment returns to Ready. The order placed upstream is left
// as-is; whether the backend expires it is unresolved with the
// contract owner, so the gap is made visible in the log.
func (co *Checkout) cancelPayment() {
	co.mu.Lock()
	defer co.mu.Unlock()
	co.state = StateReady
	co.lastError = "payment cancelled"
	applog.Audit(nil, "payment.cancelled", map[string]any{"order_id": co.orderID})
}

func (co *Checkout) failPayment(err error) {
	co.mu.Lock()
	defer co.mu.Unlock()
	co.state = StateReady
	co.lastError = "payment failed: " + err.Error()
	applog.Error(nil, "payment.failed", err, map[string]any{"order_id": co.orderID})
}

// fail is the recoverable error transition back to Ready.
func (co *Checkout) fail(msg string) {
	co.mu.Lock()
	defer co.mu.Unlock()
	co.state = StateReady
	co.lastError = msg
}
