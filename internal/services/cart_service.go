package services

import (
	"context"
	"sync"

	"southhorizon/internal/domain"
	"southhorizon/internal/repos"
	"southhorizon/internal/store"
	"southhorizon/internal/upstream"
)

// FallbackImage is shown for lines whose product lookup failed.
const FallbackImage = "/static/img/placeholder.png"

// CartService turns the raw upstream cart (lines holding only a
// productId) into the display-ready view the drawer and checkout
// render. All cart mutations funnel through it so they serialize per
// session and are always followed by an authoritative re-fetch.
type CartService struct {
	API   *upstream.Client
	State *store.Store
	Badge *repos.CartCache // optional; header count survives cart outages
}

func NewCartService(api *upstream.Client, state *store.Store, badge *repos.CartCache) *CartService {
	return &CartService{API: api, State: state, Badge: badge}
}

type CartViewItem struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Color     string  `json:"color"`
	Size      string  `json:"size"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	LineTotal float64 `json:"lineTotal"`
}

type CartView struct {
	Items      []CartViewItem `json:"items"`
	Total      float64        `json:"total"`
	Discount   float64        `json:"discount"`
	FinalTotal float64        `json:"finalTotal"`
	Coupon     string         `json:"coupon"`
}

func emptyCartView() CartView {
	return CartView{Items: []CartViewItem{}}
}

// View fetches the cart and builds the view model. It never returns
// an error: a failed cart fetch degrades to the safe empty cart so
// chrome depending on cart state keeps rendering.
func (s *CartService) View(ctx context.Context, sess domain.Session) CartView {
	cart, err := s.refresh(ctx, sess)
	if err != nil {
		return emptyCartView()
	}
	return s.buildView(ctx, cart)
}

// refresh loads the authoritative cart into the store, discarding the
// result if a newer fetch completed first.
func (s *CartService) refresh(ctx context.Context, sess domain.Session) (domain.Cart, error) {
	seq := s.State.BeginCartFetch(sess.SID)
	cart, err := s.API.Cart(ctx, sess.Token)
	if err != nil {
		return domain.Cart{}, err
	}
	if s.State.CompleteCartFetch(sess.SID, seq, cart) && s.Badge != nil {
		_ = s.Badge.Put(sess.SID, len(cart.Items))
	}
	return cart, nil
}

// buildView joins cart lines with product detail, one concurrent
// lookup per distinct product. A line whose lookup fails is kept with
// placeholder fields and a line-local price; it is never dropped.
func (s *CartService) buildView(ctx context.Context, cart domain.Cart) CartView {
	distinct := make(map[string]struct{}, len(cart.Items))
	for _, it := range cart.Items {
		distinct[it.ProductID] = struct{}{}
	}

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		prods = make(map[string]*domain.Product, len(distinct))
	)
	for id := range distinct {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			p, err := s.API.ProductByID(ctx, id)
			if err != nil {
				return // this line degrades; the others continue
			}
			mu.Lock()
			prods[id] = p
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	view := CartView{
		Items:      make([]CartViewItem, 0, len(cart.Items)),
		Total:      cart.Total,
		Discount:   cart.Discount,
		FinalTotal: cart.FinalTotal,
		Coupon:     cart.Coupon,
	}
	for _, it := range cart.Items {
		view.Items = append(view.Items, buildRow(it, prods[it.ProductID]))
	}
	return view
}

func buildRow(it domain.CartItem, p *domain.Product) CartViewItem {
	row := CartViewItem{
		ID:        it.ID,
		ProductID: it.ProductID,
		Name:      "Product " + it.ProductID,
		Image:     FallbackImage,
		Color:     "N/A",
		Size:      "N/A",
		Quantity:  it.Quantity,
	}
	if p != nil {
		if p.Name != "" {
			row.Name = p.Name
		}
		if len(p.Images) > 0 {
			row.Image = p.Images[0]
		}
		if len(p.Color) > 0 {
			row.Color = p.Color[0]
		}
		if len(p.Size) > 0 {
			row.Size = p.Size[0]
		}
	}
	row.Price = resolvePrice(it, p)
	row.LineTotal = it.Total
	if row.LineTotal == 0 {
		row.LineTotal = row.Price * float64(it.Quantity)
	}
	return row
}

// resolvePrice picks the first non-zero of item price, item line
// total, then resolved product price. A line with no product data
// only ever uses its own fields.
func resolvePrice(it domain.CartItem, p *domain.Product) float64 {
	if it.Price > 0 {
		return it.Price
	}
	if it.Total > 0 {
		return it.Total
	}
	if p != nil && p.Price > 0 {
		return p.Price
	}
	return 0
}

// Add puts qty of a product in the cart and re-fetches the
// authoritative cart.
func (s *CartService) Add(ctx context.Context, sess domain.Session, productID string, qty int) (domain.Cart, error) {
	if qty < 1 {
		qty = 1
	}
	unlock := s.State.LockCart(sess.SID)
	defer unlock()
	if err := s.API.AddToCart(ctx, sess.Token, productID, qty); err != nil {
		return domain.Cart{}, err
	}
	return s.refresh(ctx, sess)
}

func (s *CartService) UpdateQty(ctx context.Context, sess domain.Session, itemID string, qty int) (domain.Cart, error) {
	if qty < 1 {
		qty = 1
	}
	unlock := s.State.LockCart(sess.SID)
	defer unlock()
	if err := s.API.UpdateCartItem(ctx, sess.Token, itemID, qty); err != nil {
		return domain.Cart{}, err
	}
	return s.refresh(ctx, sess)
}

func (s *CartService) RemoveItem(ctx context.Context, sess domain.Session, itemID string) (domain.Cart, error) {
	unlock := s.State.LockCart(sess.SID)
	defer unlock()
	if err := s.API.RemoveCartItem(ctx, sess.Token, itemID); err != nil {
		return domain.Cart{}, err
	}
	return s.refresh(ctx, sess)
}

// Count is the header badge: live count when the cart is reachable,
// last known count otherwise.
func (s *CartService) Count(ctx context.Context, sess domain.Session) int {
	if cart, err := s.refresh(ctx, sess); err == nil {
		return len(cart.Items)
	}
	if s.Badge != nil {
		if n, err := s.Badge.Count(sess.SID); err == nil {
			return n
		}
	}
	return 0
}
