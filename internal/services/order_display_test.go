package services_test

import (
	"context"
	"net/http"
	"testing"

	"southhorizon/internal/domain"
	"southhorizon/internal/services"
)

func TestOrdersCarryDisplayAddress(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/orders", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"orders":[
			{"id":"o1","total":100,"status":"delivered",
			 "shippingAddress":"{\"street\":\"12 MG Road\",\"city\":\"Bengaluru\",\"zipCode\":\"560001\"}"},
			{"id":"o2","total":50,"status":"processing",
			 "shippingAddress":"12 MG Road|Bengaluru|560001"},
			{"id":"o3","total":25,"status":"shipped"}
		]}`))
	})
	svc := services.NewOrderService(fakeAPI(t, mux))

	orders, err := svc.List(context.Background(), authedSession())
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 3 {
		t.Fatalf("orders = %d", len(orders))
	}
	if orders[0].ShippingAddressDisplay != "12 MG Road, Bengaluru, 560001" {
		t.Fatalf("o1 display = %q", orders[0].ShippingAddressDisplay)
	}
	if orders[1].ShippingAddressDisplay != "12 MG Road, Bengaluru, 560001" {
		t.Fatalf("o2 display = %q", orders[1].ShippingAddressDisplay)
	}
	// no stored address: no display field
	if orders[2].ShippingAddressDisplay != "" {
		t.Fatalf("o3 display = %q", orders[2].ShippingAddressDisplay)
	}
}

func TestOrderSearchNeverReturnsNilList(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/orders/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("status") != "delivered" {
			t.Errorf("status filter not forwarded: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"total":0,"page":1,"limit":10}`))
	})
	svc := services.NewOrderService(fakeAPI(t, mux))

	res, err := svc.Search(context.Background(), authedSession(), domain.OrderSearchFilters{Status: "delivered"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Orders == nil {
		t.Fatal("orders slice is nil")
	}
}
