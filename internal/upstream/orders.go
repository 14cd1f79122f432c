package upstream

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"sync"
)

// Order is the subset of order fields the order-status and tracking tools
// read.
type Order struct {
	ID           FlexInt   `json:"id"`
	Reference    string    `json:"reference"`
	CurrentState FlexInt   `json:"current_state"`
	TotalPaid    FlexFloat `json:"total_paid"`
	DateAdd      string    `json:"date_add"`
	CustomerID   FlexInt   `json:"id_customer"`
}

// OrderRow is one line item of an order.
type OrderRow struct {
	ProductID FlexInt `json:"product_id"`
	Quantity  FlexInt `json:"product_quantity"`
	Name      string  `json:"product_name"`
}

// Customer identifies a shop customer for order lookups.
type Customer struct {
	ID        FlexInt `json:"id"`
	Email     string  `json:"email"`
	Firstname string  `json:"firstname"`
	Lastname  string  `json:"lastname"`
}

const orderDisplay = "[id,reference,current_state,total_paid,date_add,id_customer]"

// GetOrderByReference looks an order up by its public reference code.
func (c *Client) GetOrderByReference(ctx context.Context, reference string) (*Order, error) {
	params := url.Values{}
	listFilter(params, "reference", reference)
	params.Set("display", orderDisplay)

	orders, err := c.listOrders(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrNotFound
	}
	return &orders[0], nil
}

// GetOrdersForCustomer returns the customer's orders, newest first.
func (c *Client) GetOrdersForCustomer(ctx context.Context, customerID int) ([]Order, error) {
	params := url.Values{}
	listFilter(params, "id_customer", strconv.Itoa(customerID))
	params.Set("display", orderDisplay)
	params.Set("sort", "[date_add_DESC]")

	return c.listOrders(ctx, params)
}

func (c *Client) listOrders(ctx context.Context, params url.Values) ([]Order, error) {
	var resp struct {
		Orders []Order `json:"orders"`
	}
	if err := c.getJSON(ctx, "orders", "", params, &resp); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return resp.Orders, nil
}

// GetOrderRows fetches the line items of an order.
func (c *Client) GetOrderRows(ctx context.Context, orderID int) ([]OrderRow, error) {
	var resp struct {
		Order struct {
			Associations struct {
				OrderRows []OrderRow `json:"order_rows"`
			} `json:"associations"`
		} `json:"order"`
	}
	if err := c.getJSON(ctx, "orders", strconv.Itoa(orderID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Order.Associations.OrderRows, nil
}

// GetCustomerByEmail looks a customer up by exact email address.
func (c *Client) GetCustomerByEmail(ctx context.Context, email string) (*Customer, error) {
	params := url.Values{}
	listFilter(params, "email", email)
	params.Set("display", "[id,email,firstname,lastname]")

	var resp struct {
		Customers []Customer `json:"customers"`
	}
	if err := c.getJSON(ctx, "customers", "", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Customers) == 0 {
		return nil, ErrNotFound
	}
	return &resp.Customers[0], nil
}

// GetCustomersByPhone searches both phone fields of the customer addresses
// concurrently and merges the results. The API stores landline and mobile
// separately and callers never know which field their number landed in.
func (c *Client) GetCustomersByPhone(ctx context.Context, phone string) ([]Customer, error) {
	fields := []string{"phone", "phone_mobile"}
	results := make([][]Customer, len(fields))
	errs := make([]error, len(fields))

	var wg sync.WaitGroup
	for i, field := range fields {
		wg.Add(1)
		go func(i int, field string) {
			defer wg.Done()
			results[i], errs[i] = c.customersByAddressPhone(ctx, field, phone)
		}(i, field)
	}
	wg.Wait()

	seen := make(map[int]bool)
	var merged []Customer
	for i, batch := range results {
		if errs[i] != nil && !errors.Is(errs[i], ErrNotFound) {
			return nil, errs[i]
		}
		for _, cust := range batch {
			if seen[int(cust.ID)] {
				continue
			}
			seen[int(cust.ID)] = true
			merged = append(merged, cust)
		}
	}
	if len(merged) == 0 {
		return nil, ErrNotFound
	}
	return merged, nil
}

func (c *Client) customersByAddressPhone(ctx context.Context, field, phone string) ([]Customer, error) {
	// Addresses carry the phone numbers; resolve to customer ids first.
	params := url.Values{}
	listFilter(params, field, phone)
	params.Set("display", "[id_customer]")

	var addrResp struct {
		Addresses []struct {
			CustomerID FlexInt `json:"id_customer"`
		} `json:"addresses"`
	}
	if err := c.getJSON(ctx, "addresses", "", params, &addrResp); err != nil {
		return nil, err
	}

	var customers []Customer
	for _, a := range addrResp.Addresses {
		cust, err := c.getCustomerByID(ctx, int(a.CustomerID))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			return nil, err
		}
		customers = append(customers, *cust)
	}
	if len(customers) == 0 {
		return nil, ErrNotFound
	}
	return customers, nil
}

func (c *Client) getCustomerByID(ctx context.Context, id int) (*Customer, error) {
	params := url.Values{}
	listFilter(params, "id", strconv.Itoa(id))
	params.Set("display", "[id,email,firstname,lastname]")

	var resp struct {
		Customers []Customer `json:"customers"`
	}
	if err := c.getJSON(ctx, "customers", "", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Customers) == 0 {
		return nil, ErrNotFound
	}
	return &resp.Customers[0], nil
}
