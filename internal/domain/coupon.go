package domain

import "time"

// ExpiringSoonWindow is how close to validTo a coupon is flagged as
// expiring soon.
const ExpiringSoonWindow = 72 * time.Hour

type Coupon struct {
	ID                string   `json:"id"`
	Code              string   `json:"code"`
	Description       string   `json:"description"`
	DiscountType      string   `json:"discountType"` // percentage | fixed
	DiscountValue     float64  `json:"discountValue"`
	MinOrderAmount    float64  `json:"minOrderAmount"`
	MaxDiscountAmount *float64 `json:"maxDiscountAmount,omitempty"`
	ValidFrom         time.Time `json:"validFrom"`
	ValidTo           time.Time `json:"validTo"`
	IsActive          bool     `json:"isActive"`
	UsageLimit        *int     `json:"usageLimit,omitempty"`
	UsedCount         int      `json:"usedCount"`
}

func (c Coupon) ExpiringSoon(now time.Time) bool {
	if !c.ValidTo.After(now) {
		return false
	}
	return c.ValidTo.Sub(now) <= ExpiringSoonWindow
}

type CouponValidation struct {
	Valid    bool    `json:"valid"`
	Discount float64 `json:"discount"`
	Message  string  `json:"message"`
}
