package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"shopvoice/internal/models"
	"shopvoice/internal/search"
)

const defaultSearchLimit = 5

// ProductSearch resolves a spoken product query to a short list of catalog
// matches.
func (h *Handlers) ProductSearch(ctx context.Context, args json.RawMessage) (models.ToolResponse, error) {
	var req struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}
	if err := models.DecodeArguments(args, &req); err != nil {
		return models.Fail("I didn't catch which product you're looking for. Could you repeat it?"), nil
	}
	if strings.TrimSpace(req.Query) == "" {
		return models.Fail("Please tell me which product you're looking for."), nil
	}
	if req.Limit <= 0 {
		req.Limit = defaultSearchLimit
	}

	results, err := h.engine.Search(ctx, req.Query, req.Limit)
	if err != nil {
		var noTerms *search.NoTermsError
		var noResults *search.NoResultsError
		var brandErr *search.BrandFilteredError
		switch {
		case errors.As(err, &noTerms):
			return models.Fail("Please tell me which product you're looking for."), nil
		case errors.As(err, &noResults):
			// A query of pure filler words ("do you have any") leaves no
			// terms to echo back.
			if len(noResults.Terms) == 0 {
				return models.Fail("I couldn't find anything matching that. Could you try different words?"), nil
			}
			return models.Fail(fmt.Sprintf(
				"I couldn't find anything matching %s. Could you try different words?",
				strings.Join(noResults.Terms, " "))), nil
		case errors.As(err, &brandErr):
			return models.Fail(fmt.Sprintf(
				"I couldn't find any %s products matching that. Would you like me to search without the brand?",
				strings.Join(brandErr.Brands, " or "))), nil
		}
		return models.ToolResponse{}, err
	}

	data := models.SearchData{Count: len(results)}
	for _, r := range results {
		data.Products = append(data.Products, models.ProductResult{
			Name:  r.Name,
			Price: r.Price,
			URL:   r.URL,
		})
	}

	var message string
	if len(results) == 1 {
		message = fmt.Sprintf("I found %s for %s.", results[0].Name, spokenPrice(results[0].Price))
	} else {
		names := make([]string, len(results))
		for i, r := range results {
			names[i] = r.Name
		}
		message = fmt.Sprintf("I found %d products: %s.", len(results), strings.Join(names, ", "))
	}
	return models.Ok(message, data), nil
}

// spokenPrice turns "649.99" into "649.99 euros"; the synthesizer handles
// the number itself fine.
func spokenPrice(price string) string {
	return price + " euros"
}
