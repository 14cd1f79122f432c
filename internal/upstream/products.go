package upstream

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
)

// Product is the subset of product fields the voice tools need. Full
// representations are never requested; display=[...] keeps payloads small.
type Product struct {
	ID    FlexInt   `json:"id"`
	Name  string    `json:"name"`
	Price FlexFloat `json:"price"`
}

// SearchProducts runs the free-text search endpoint and returns matching
// product ids. An empty result is (nil, nil), not an error.
func (c *Client) SearchProducts(ctx context.Context, query string) ([]int, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("language", "1")

	var resp struct {
		Products []struct {
			ID FlexInt `json:"id"`
		} `json:"products"`
	}
	if err := c.getJSON(ctx, "search", "", params, &resp); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	ids := make([]int, 0, len(resp.Products))
	for _, p := range resp.Products {
		ids = append(ids, int(p.ID))
	}
	return ids, nil
}

// GetProducts fetches name and price for all ids in one call. Order of the
// returned slice follows the upstream response, which is not guaranteed to
// match the requested order.
func (c *Client) GetProducts(ctx context.Context, ids []int) ([]Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}

	params := url.Values{}
	listFilter(params, "id", strings.Join(parts, "|"))
	params.Set("display", "[id,name,price]")

	var resp struct {
		Products []Product `json:"products"`
	}
	if err := c.getJSON(ctx, "products", "", params, &resp); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return resp.Products, nil
}

// GetProduct fetches a single product by id.
func (c *Client) GetProduct(ctx context.Context, id int) (*Product, error) {
	products, err := c.GetProducts(ctx, []int{id})
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return nil, ErrNotFound
	}
	return &products[0], nil
}
