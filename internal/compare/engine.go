// Package compare computes multi-store totals for a shopping list
// snapshot. The engine is a pure function over an injected price
// resolver; it performs no authorization and no persistence.
package compare

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/cenovnik-bg/backend-cenovnik/internal/list"
	"github.com/cenovnik-bg/backend-cenovnik/internal/money"
	"github.com/cenovnik-bg/backend-cenovnik/internal/price"
)

const (
	// MinStores and MaxStores bound how many stores one comparison may cover.
	MinStores = 2
	MaxStores = 3
)

var (
	ErrInsufficientStores = errors.New("compare: at least two stores are required")
	ErrTooManyStores      = errors.New("compare: too many stores requested")
	ErrEmptyList          = errors.New("compare: the list has no items")
)

// ItemPrice is one cell of the comparison grid: a list item as seen at
// one store. Custom items are excluded up front and never priced.
type ItemPrice struct {
	ItemID       uuid.UUID       `json:"item_id"`
	ProductID    *uuid.UUID      `json:"product_id,omitempty"`
	CustomName   *string         `json:"custom_name,omitempty"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	Excluded     bool            `json:"excluded"`
	Available    bool            `json:"available"`
	InCommonSet  bool            `json:"in_common_set"`
	UnitPriceEUR decimal.Decimal `json:"unit_price_eur"`
	LineTotalEUR decimal.Decimal `json:"line_total_eur"`
}

// StoreResult is the outcome for one requested store.
type StoreResult struct {
	StoreID         uuid.UUID       `json:"store_id"`
	TotalEUR        decimal.Decimal `json:"total_eur"`
	TotalBGN        decimal.Decimal `json:"total_bgn"`
	Rank            int             `json:"rank"`
	IsCheapest      bool            `json:"is_cheapest"`
	IsMostExpensive bool            `json:"is_most_expensive"`
	PricedItems     int             `json:"priced_items"`
	TotalItems      int             `json:"total_items"`
	CoveragePercent decimal.Decimal `json:"coverage_percent"`
	SavingsEUR      decimal.Decimal `json:"savings_eur"`
	SavingsPercent  decimal.Decimal `json:"savings_percent"`
	Items           []ItemPrice     `json:"items"`
}

// Result is a full comparison. Stores appear in request order; the
// ranking is carried in the Rank field.
type Result struct {
	ListID        uuid.UUID     `json:"list_id"`
	Stores        []StoreResult `json:"stores"`
	CommonItems   int           `json:"common_items"`
	NoCommonItems bool          `json:"no_common_items"`
}

// Engine wires the resolver into comparisons.
type Engine struct {
	Resolver price.Resolver
}

// Compare prices the snapshot at every requested store and ranks the
// stores by the total over the common item set. Identical inputs yield
// identical results.
func (e *Engine) Compare(ctx context.Context, snapshot list.Snapshot, storeIDs []uuid.UUID) (Result, error) {
	storeIDs = dedupe(storeIDs)
	if len(storeIDs) < MinStores {
		return Result{}, ErrInsufficientStores
	}
	if len(storeIDs) > MaxStores {
		return Result{}, ErrTooManyStores
	}
	if len(snapshot.Items) == 0 {
		return Result{}, ErrEmptyList
	}

	productIDs := make([]uuid.UUID, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		if item.ProductID != nil {
			productIDs = append(productIDs, *item.ProductID)
		}
	}

	// One resolver call per store, fanned out concurrently. Each
	// goroutine writes only its own slot.
	quotes := make([]map[uuid.UUID]price.Quote, len(storeIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, storeID := range storeIDs {
		g.Go(func() error {
			resolved, err := e.Resolver.QuotesForStore(gctx, storeID, productIDs)
			if err != nil {
				return fmt.Errorf("store %s: %w", storeID, err)
			}
			quotes[i] = resolved
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	// Common set: product items priced at every requested store.
	common := make(map[uuid.UUID]bool, len(productIDs))
	for _, productID := range productIDs {
		everywhere := true
		for i := range storeIDs {
			if q, ok := quotes[i][productID]; !ok || !q.Available {
				everywhere = false
				break
			}
		}
		common[productID] = everywhere
	}
	commonCount := 0
	for _, ok := range common {
		if ok {
			commonCount++
		}
	}

	results := make([]StoreResult, len(storeIDs))
	for i, storeID := range storeIDs {
		r := StoreResult{
			StoreID:    storeID,
			TotalItems: len(productIDs),
			Items:      make([]ItemPrice, 0, len(snapshot.Items)),
		}
		total := decimal.Zero
		for _, item := range snapshot.Items {
			cell := ItemPrice{
				ItemID:     item.ID,
				ProductID:  item.ProductID,
				CustomName: item.CustomName,
				Name:       itemName(item),
				Quantity:   item.Quantity,
			}
			if item.ProductID == nil {
				cell.Excluded = true
				r.Items = append(r.Items, cell)
				continue
			}
			q := quotes[i][*item.ProductID]
			if q.Available {
				r.PricedItems++
				cell.Available = true
				cell.UnitPriceEUR = q.PriceEUR
				cell.LineTotalEUR = money.Round(q.PriceEUR.Mul(decimal.NewFromInt(int64(item.Quantity))))
			}
			if common[*item.ProductID] {
				cell.InCommonSet = true
				total = total.Add(cell.LineTotalEUR)
			}
			r.Items = append(r.Items, cell)
		}
		r.TotalEUR = money.Round(total)
		bgn, err := money.FromEUR(r.TotalEUR, money.CurrencyBGN)
		if err != nil {
			return Result{}, err
		}
		r.TotalBGN = bgn
		r.CoveragePercent = coveragePercent(r.PricedItems, r.TotalItems)
		results[i] = r
	}

	rankAndSavings(results)

	return Result{
		ListID:        snapshot.List.ID,
		Stores:        results,
		CommonItems:   commonCount,
		NoCommonItems: commonCount == 0,
	}, nil
}

// rankAndSavings assigns ranks ascending by total (stable w.r.t. request
// order), flags the cheapest and most expensive stores, and computes
// savings against the most expensive total. Ties share a rank and
// compare by decimal equality.
func rankAndSavings(results []StoreResult) {
	order := make([]int, len(results))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return results[order[a]].TotalEUR.LessThan(results[order[b]].TotalEUR)
	})

	maxTotal := results[order[len(order)-1]].TotalEUR
	minTotal := results[order[0]].TotalEUR

	for pos, idx := range order {
		if pos > 0 && results[idx].TotalEUR.Equal(results[order[pos-1]].TotalEUR) {
			results[idx].Rank = results[order[pos-1]].Rank
		} else {
			results[idx].Rank = pos + 1
		}
	}

	for i := range results {
		results[i].IsCheapest = results[i].TotalEUR.Equal(minTotal)
		results[i].IsMostExpensive = results[i].TotalEUR.Equal(maxTotal)
		savings := maxTotal.Sub(results[i].TotalEUR)
		results[i].SavingsEUR = money.Round(savings)
		if maxTotal.IsZero() {
			results[i].SavingsPercent = decimal.Zero
		} else {
			results[i].SavingsPercent = savings.Mul(decimal.NewFromInt(100)).Div(maxTotal).RoundBank(2)
		}
	}
}

func coveragePercent(priced, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(priced)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(total))).
		RoundBank(1)
}

func itemName(item list.Item) string {
	if item.CustomName != nil {
		return *item.CustomName
	}
	return item.ProductName
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
