package search

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"shopvoice/internal/cache"
	"shopvoice/internal/config"
	"shopvoice/internal/metrics"
	"shopvoice/internal/upstream"
	"shopvoice/internal/voice"
)

// Catalog is the slice of the upstream client the engine needs. Satisfied
// by *upstream.Client; tests substitute a fake.
type Catalog interface {
	SearchProducts(ctx context.Context, query string) ([]int, error)
	GetProducts(ctx context.Context, ids []int) ([]upstream.Product, error)
	GetProduct(ctx context.Context, id int) (*upstream.Product, error)
}

// Result is one product shaped for voice output.
type Result struct {
	ProductID int    `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	URL       string `json:"url"`
	// Score is the number of distinct variations that matched this
	// product. Higher means more phrasings agreed on it.
	Score int `json:"-"`
}

// NoTermsError means the query contained nothing searchable.
type NoTermsError struct{}

func (e *NoTermsError) Error() string { return "no searchable terms in query" }

// NoResultsError means every variation came back empty. Terms carries the
// top normalized terms for a speakable "nothing found for X" message.
type NoResultsError struct {
	Terms []string
}

func (e *NoResultsError) Error() string {
	if len(e.Terms) == 0 {
		return "no products found"
	}
	return fmt.Sprintf("no products found for %s", strings.Join(e.Terms, ", "))
}

// BrandFilteredError means matches existed but none carried the requested
// brand in its name. Surfaced explicitly rather than silently returning the
// unfiltered accessories.
type BrandFilteredError struct {
	Brands []string
}

func (e *BrandFilteredError) Error() string {
	return fmt.Sprintf("no products from %s matched", strings.Join(e.Brands, ", "))
}

const (
	searchCacheTTL  = 30 * time.Second
	searchCacheSize = 50

	// Result-count thresholds deciding whether to fan out beyond the
	// first variation. Brand queries fan out sooner: the post-filter
	// discards candidates, so more raw recall is needed.
	needMoreWithBrand = 10
	needMoreDefault   = 5
)

// Engine orchestrates the normalizer's variations into scored upstream
// searches. One Engine per process; its search cache is shared across
// requests.
type Engine struct {
	catalog     Catalog
	normalizer  *Normalizer
	searchCache *cache.TTLCache[string, []int]
	brandWindow int
	shopURL     string
	log         *slog.Logger
}

// NewEngine creates a search engine over the given catalog.
func NewEngine(catalog Catalog, h *config.Heuristics, shopURL string, log *slog.Logger) *Engine {
	return &Engine{
		catalog:     catalog,
		normalizer:  NewNormalizer(h),
		searchCache: cache.NewTTLCache[string, []int](searchCacheTTL, searchCacheSize),
		brandWindow: h.BrandMatchWindow,
		shopURL:     strings.TrimRight(shopURL, "/"),
		log:         log,
	}
}

// Search resolves a raw utterance to at most limit products shaped for
// voice. Individual variation searches degrade recall on failure but never
// abort the whole search; the typed errors above describe empty outcomes,
// while a failed detail fetch propagates as a plain error.
func (e *Engine) Search(ctx context.Context, raw string, limit int) ([]Result, error) {
	raw = strings.TrimSpace(raw)

	// Numeric fast path: the caller may have read a product id off an
	// invoice. A miss falls through to text search, never fails outright.
	if raw != "" && isNumeric(raw) {
		if id, err := strconv.Atoi(raw); err == nil {
			if product, err := e.catalog.GetProduct(ctx, id); err == nil {
				return []Result{e.shape(*product, 1, true)}, nil
			}
		}
	}

	q := e.normalizer.Normalize(raw)
	if len(q.Variations) == 0 {
		return nil, &NoTermsError{}
	}

	scores := make(map[int]int)
	var firstSeen []int
	record := func(ids []int) {
		for _, id := range ids {
			if _, known := scores[id]; !known {
				firstSeen = append(firstSeen, id)
			}
			scores[id]++
		}
	}

	record(e.searchVariation(ctx, q.Variations[0]))

	threshold := needMoreDefault
	if q.HasBrand() {
		threshold = needMoreWithBrand
	}
	if len(scores) < threshold && len(q.Variations) > 1 {
		e.searchBatch(ctx, q.Variations[1:min(4, len(q.Variations))], record)
	}
	if len(scores) == 0 && len(q.Variations) > 4 {
		// Last resort: the heuristic expansions may hit where the user's
		// own phrasing did not.
		e.searchBatch(ctx, q.Variations[4:min(7, len(q.Variations))], record)
	}

	if len(scores) == 0 {
		return nil, &NoResultsError{Terms: q.Terms[:min(3, len(q.Terms))]}
	}

	ranked := rankByScore(firstSeen, scores)

	fetchLimit := limit
	if q.HasBrand() {
		// Over-fetch so the brand post-filter still leaves enough.
		fetchLimit = max(limit*3, 15)
	}
	if fetchLimit > len(ranked) {
		fetchLimit = len(ranked)
	}
	ids := ranked[:fetchLimit]

	// A failed detail fetch is a system failure, not an empty catalog;
	// it must never masquerade as "found nothing".
	products, err := e.catalog.GetProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch product details: %w", err)
	}
	products = reorder(products, ids)

	if q.HasBrand() {
		filtered := e.filterByBrand(products, q.Brands)
		if len(filtered) == 0 {
			return nil, &BrandFilteredError{Brands: q.Brands}
		}
		products = filtered
	}

	if len(products) > limit {
		products = products[:limit]
	}

	results := make([]Result, len(products))
	single := len(products) == 1
	for i, p := range products {
		results[i] = e.shape(p, scores[int(p.ID)], single)
	}
	return results, nil
}

// searchVariation resolves one variation to product ids, consulting the
// search cache first. Upstream failures are logged and count as zero
// results.
func (e *Engine) searchVariation(ctx context.Context, variation string) []int {
	key := strings.ToLower(variation)

	if ids, ok := e.searchCache.Get(key); ok {
		metrics.CacheHits.WithLabelValues("search").Inc()
		metrics.SearchVariations.WithLabelValues("cache").Inc()
		return ids
	}
	metrics.CacheMisses.WithLabelValues("search").Inc()

	ids, err := e.catalog.SearchProducts(ctx, variation)
	if err != nil {
		metrics.SearchVariations.WithLabelValues("failed").Inc()
		e.log.Warn("variation search failed", "variation", variation, "error", err)
		return nil
	}
	metrics.SearchVariations.WithLabelValues("upstream").Inc()

	e.searchCache.Set(key, ids)
	return ids
}

// searchBatch runs up to three variations concurrently and feeds each
// result set through record under a lock.
func (e *Engine) searchBatch(ctx context.Context, variations []string, record func([]int)) {
	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, variation := range variations {
		wg.Add(1)
		go func(v string) {
			defer wg.Done()
			ids := e.searchVariation(ctx, v)
			mu.Lock()
			record(ids)
			mu.Unlock()
		}(variation)
	}
	wg.Wait()
}

// filterByBrand keeps products whose name mentions one of the query's brand
// terms within the first brandWindow characters. Upstream search is OR-based
// and loves to surface "compatible with Brand X" accessories; a genuine
// Brand X product names the brand up front.
func (e *Engine) filterByBrand(products []upstream.Product, brands []string) []upstream.Product {
	var kept []upstream.Product
	for _, p := range products {
		head := strings.ToLower(p.Name)
		if len(head) > e.brandWindow {
			head = head[:e.brandWindow]
		}
		for _, brand := range brands {
			if strings.Contains(head, brand) {
				kept = append(kept, p)
				break
			}
		}
	}
	return kept
}

func (e *Engine) shape(p upstream.Product, score int, single bool) Result {
	name := p.Name
	if single {
		name = voice.SpeechFriendly(name)
	} else {
		name = voice.SpeechFriendly(voice.ShortenForListing(name))
	}
	return Result{
		ProductID: int(p.ID),
		Name:      name,
		Price:     p.Price.String(),
		URL:       fmt.Sprintf("%s/index.php?controller=product&id_product=%d", e.shopURL, int(p.ID)),
		Score:     score,
	}
}

// rankByScore orders ids by descending score; ties keep first-seen order.
func rankByScore(firstSeen []int, scores map[int]int) []int {
	ranked := make([]int, len(firstSeen))
	copy(ranked, firstSeen)
	// Insertion sort keeps the sort stable without pulling in sort.SliceStable
	// index juggling; candidate sets are small (a few dozen at most).
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && scores[ranked[j]] > scores[ranked[j-1]]; j-- {
			ranked[j], ranked[j-1] = ranked[j-1], ranked[j]
		}
	}
	return ranked
}

// reorder arranges products to match the requested id order; the upstream
// batch endpoint answers in its own order.
func reorder(products []upstream.Product, ids []int) []upstream.Product {
	byID := make(map[int]upstream.Product, len(products))
	for _, p := range products {
		byID[int(p.ID)] = p
	}
	ordered := make([]upstream.Product, 0, len(products))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
