// Package payment models the external checkout widget boundary. The
// orchestrator hands it an intent plus three callbacks; the gateway
// drives its own UI and reports back through exactly one of them.
package payment

import "context"

// Intent describes one payment to collect. Amount is in minor
// currency units (paise).
type Intent struct {
	AmountMinor int64
	OrderID     string
	Customer    Customer
	Description string
}

type Customer struct {
	Name  string
	Email string
	Phone string
}

// Confirmation is the gateway's proof of a captured payment.
type Confirmation struct {
	PaymentID string `json:"razorpay_payment_id"`
	OrderID   string `json:"razorpay_order_id"`
	Signature string `json:"razorpay_signature"`
}

// Callbacks are the three completion paths. The gateway invokes
// exactly one per initiated payment: success, user dismissal, or
// gateway rejection.
type Callbacks struct {
	OnSuccess func(Confirmation)
	OnCancel  func()
	OnError   func(error)
}

// CheckoutSession is what the widget on the client needs to open.
type CheckoutSession struct {
	GatewayOrderID string `json:"gatewayOrderId"`
	KeyID          string `json:"keyId"`
	AmountMinor    int64  `json:"amount"`
	Currency       string `json:"currency"`
	Description    string `json:"description"`
}

// Gateway creates the gateway-side order and registers the callbacks
// for its eventual outcome.
type Gateway interface {
	Initiate(ctx context.Context, in Intent, cb Callbacks) (CheckoutSession, error)
}

// Notifier dispatches a widget outcome to the callbacks registered at
// Initiate. Implemented by gateways that complete asynchronously.
type Notifier interface {
	NotifySuccess(gatewayOrderID string, conf Confirmation) bool
	NotifyCancel(gatewayOrderID string) bool
	NotifyError(gatewayOrderID string, msg string) bool
}
