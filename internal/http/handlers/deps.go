package handlers

import (
	"github.com/jmoiron/sqlx"

	"southhorizon/internal/config"
	"southhorizon/internal/payment"
	"southhorizon/internal/repos"
	"southhorizon/internal/services"
	"southhorizon/internal/store"
	"southhorizon/internal/upstream"
)

type Deps struct {
	Auth     *services.AuthService
	Gateway  *payment.Razorpay
	Upstream *upstream.Client

	AuthHandler     *AuthHandler
	ProductHandler  *ProductHandler
	CartHandler     *CartHandler
	CouponHandler   *CouponHandler
	AddressHandler  *AddressHandler
	CheckoutHandler *CheckoutHandler
	OrderHandler    *OrderHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config) *Deps {
	api := upstream.New(cfg.UpstreamBaseURL, cfg.UpstreamTimeout)
	state := store.New()
	sessionRepo := repos.NewSessionRepo(db)
	badge := repos.NewCartCache(db)
	gw := payment.NewRazorpay(cfg.RazorpayKeyID, cfg.RazorpaySecret, cfg.RazorpayKeyURL)

	authSvc := services.NewAuthService(api, sessionRepo, state)
	catalogSvc := services.NewCatalogService(api)
	cartSvc := services.NewCartService(api, state, badge)
	couponSvc := services.NewCouponService(api, state)
	addressSvc := services.NewAddressService(api, state)
	checkoutSvc := services.NewCheckoutService(api, cartSvc, couponSvc, addressSvc, gw)
	orderSvc := services.NewOrderService(api)

	return &Deps{
		Auth:     authSvc,
		Gateway:  gw,
		Upstream: api,

		AuthHandler:     &AuthHandler{Auth: authSvc},
		ProductHandler:  &ProductHandler{Catalog: catalogSvc},
		CartHandler:     &CartHandler{Cart: cartSvc},
		CouponHandler:   &CouponHandler{Coupons: couponSvc, Cart: cartSvc},
		AddressHandler:  &AddressHandler{Addresses: addressSvc},
		CheckoutHandler: &CheckoutHandler{Checkout: checkoutSvc, Payments: gw},
		OrderHandler:    &OrderHandler{Orders: orderSvc},
	}
}
