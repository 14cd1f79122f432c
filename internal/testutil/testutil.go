// Package testutil provides test doubles shared across packages.
package testutil

import (
	"context"
	"errors"
	"sync"

	"shopvoice/internal/upstream"
)

// FakeShop is an in-memory stand-in for the shop API, satisfying
// handlers.ShopAPI. Zero-value maps behave as empty catalogs.
type FakeShop struct {
	mu sync.Mutex

	Products       map[int]upstream.Product
	SearchResults  map[string][]int
	Orders         map[string]upstream.Order
	Rows           map[int][]upstream.OrderRow
	Customers      map[string]upstream.Customer
	CustomerOrders map[int][]upstream.Order
	Stock          map[int]int
	Carriers       map[int]string
	Tracking       map[int]upstream.Tracking

	// FailAll makes every call fail with the given error.
	FailAll error

	searchCalls  []string
	productCalls int
	ticketSeq    int
}

// Product builds an upstream.Product from literal values.
func Product(id int, name, price string) upstream.Product {
	var p upstream.Product
	p.ID = upstream.FlexInt(id)
	p.Name = name
	_ = p.Price.UnmarshalJSON([]byte(`"` + price + `"`))
	return p
}

// Order builds an upstream.Order from literal values.
func Order(id int, reference string, state int, total string) upstream.Order {
	var o upstream.Order
	o.ID = upstream.FlexInt(id)
	o.Reference = reference
	o.CurrentState = upstream.FlexInt(state)
	_ = o.TotalPaid.UnmarshalJSON([]byte(`"` + total + `"`))
	return o
}

// SearchCalls returns how many text searches were issued.
func (f *FakeShop) SearchCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searchCalls)
}

// Searched reports whether the given query was ever issued.
func (f *FakeShop) Searched(query string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, q := range f.searchCalls {
		if q == query {
			return true
		}
	}
	return false
}

// ProductCalls returns how many single-product detail fetches were made.
func (f *FakeShop) ProductCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.productCalls
}

func (f *FakeShop) SearchProducts(_ context.Context, query string) ([]int, error) {
	f.mu.Lock()
	f.searchCalls = append(f.searchCalls, query)
	f.mu.Unlock()
	if f.FailAll != nil {
		return nil, f.FailAll
	}
	return f.SearchResults[query], nil
}

func (f *FakeShop) GetProducts(_ context.Context, ids []int) ([]upstream.Product, error) {
	if f.FailAll != nil {
		return nil, f.FailAll
	}
	var out []upstream.Product
	for _, id := range ids {
		if p, ok := f.Products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *FakeShop) GetProduct(_ context.Context, id int) (*upstream.Product, error) {
	f.mu.Lock()
	f.productCalls++
	f.mu.Unlock()
	if f.FailAll != nil {
		return nil, f.FailAll
	}
	if p, ok := f.Products[id]; ok {
		return &p, nil
	}
	return nil, upstream.ErrNotFound
}

func (f *FakeShop) GetOrderByReference(_ context.Context, reference string) (*upstream.Order, error) {
	if f.FailAll != nil {
		return nil, f.FailAll
	}
	if o, ok := f.Orders[reference]; ok {
		return &o, nil
	}
	return nil, upstream.ErrNotFound
}

func (f *FakeShop) GetOrdersForCustomer(_ context.Context, customerID int) ([]upstream.Order, error) {
	if f.FailAll != nil {
		return nil, f.FailAll
	}
	return f.CustomerOrders[customerID], nil
}

func (f *FakeShop) GetOrderRows(_ context.Context, orderID int) ([]upstream.OrderRow, error) {
	if f.FailAll != nil {
		return nil, f.FailAll
	}
	return f.Rows[orderID], nil
}

func (f *FakeShop) GetCustomerByEmail(_ context.Context, email string) (*upstream.Customer, error) {
	if f.FailAll != nil {
		return nil, f.FailAll
	}
	if c, ok := f.Customers[email]; ok {
		return &c, nil
	}
	return nil, upstream.ErrNotFound
}

func (f *FakeShop) GetCustomersByPhone(_ context.Context, _ string) ([]upstream.Customer, error) {
	if f.FailAll != nil {
		return nil, f.FailAll
	}
	return nil, upstream.ErrNotFound
}

func (f *FakeShop) GetStockQuantity(_ context.Context, productID int) (int, error) {
	if f.FailAll != nil {
		return 0, f.FailAll
	}
	if q, ok := f.Stock[productID]; ok {
		return q, nil
	}
	return 0, upstream.ErrNotFound
}

func (f *FakeShop) GetCarriers(_ context.Context) (map[int]string, error) {
	if f.FailAll != nil {
		return nil, f.FailAll
	}
	if f.Carriers == nil {
		return nil, errors.New("carriers unavailable")
	}
	return f.Carriers, nil
}

func (f *FakeShop) GetOrderTracking(_ context.Context, orderID int) (*upstream.Tracking, error) {
	if f.FailAll != nil {
		return nil, f.FailAll
	}
	if t, ok := f.Tracking[orderID]; ok {
		return &t, nil
	}
	return nil, upstream.ErrNotFound
}

func (f *FakeShop) CreateTicket(_ context.Context, _, _ string) (int, error) {
	if f.FailAll != nil {
		return 0, f.FailAll
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ticketSeq++
	return f.ticketSeq + 100, nil
}
