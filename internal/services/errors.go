package services

import "errors"

var (
	// ErrNotAuthenticated is the hard checkout precondition: the
	// caller must redirect to login, not retry in place.
	ErrNotAuthenticated = errors.New("please login to continue")

	// ErrBadCreds covers every upstream credential rejection so the
	// response never reveals which part was wrong.
	ErrBadCreds = errors.New("invalid email or password")

	ErrNoAddress   = errors.New("please select a delivery address")
	ErrEmptyCart   = errors.New("your cart is empty")
	ErrNotReady    = errors.New("checkout is not ready")
	ErrBadCoupon   = errors.New("coupon code is not valid")
	ErrAddressGone = errors.New("address not found")
)
