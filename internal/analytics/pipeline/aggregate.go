package pipeline

import (
	"context"
	"sort"

	"github.com/rajesh196rsh/e-commerce/internal/analytics/domain"
	"github.com/shopspring/decimal"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"
)

// cancelCheckEvery bounds how many tuples a shard folds between context checks.
const cancelCheckEvery = 4096

// AggregateLineItems sums quantity × price_per_unit per (customer, product,
// category). Tuples are partitioned by customer hash so each shard owns a
// disjoint set of customers; shard results are merged by addition.
func AggregateLineItems(ctx context.Context, tuples []domain.LineTuple, workers int) ([]domain.LineAggregate, error) {
	if workers <= 0 {
		workers = 1
	}
	if workers > len(tuples) {
		workers = max(len(tuples), 1)
	}

	shards := make([][]int, workers)
	for i, t := range tuples {
		s := shardOf(t.CustomerID, workers)
		shards[s] = append(shards[s], i)
	}

	partials := make([]map[domain.LineKey]decimal.Decimal, workers)
	g, gctx := errgroup.WithContext(ctx)
	for s := range shards {
		s := s
		g.Go(func() error {
			sums := make(map[domain.LineKey]decimal.Decimal, len(shards[s]))
			for n, idx := range shards[s] {
				if n%cancelCheckEvery == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				t := tuples[idx]
				key := domain.LineKey{CustomerID: t.CustomerID, ProductID: t.ProductID, Category: t.Category}
				sums[key] = sums[key].Add(t.Amount())
			}
			partials[s] = sums
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[domain.LineKey]decimal.Decimal)
	for _, partial := range partials {
		for key, sum := range partial {
			merged[key] = merged[key].Add(sum)
		}
	}

	out := make([]domain.LineAggregate, 0, len(merged))
	for key, sum := range merged {
		out = append(out, domain.LineAggregate{
			CustomerID: key.CustomerID,
			ProductID:  key.ProductID,
			Category:   key.Category,
			TotalSpent: sum,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.CustomerID != b.CustomerID {
			return a.CustomerID < b.CustomerID
		}
		if a.ProductID != b.ProductID {
			return a.ProductID < b.ProductID
		}
		return a.Category < b.Category
	})
	return out, nil
}

// AggregateCustomerTotals sums line aggregates per customer. Customers with no
// aggregates, or whose aggregates sum to zero, are absent from the result.
func AggregateCustomerTotals(aggs []domain.LineAggregate) []domain.CustomerTotal {
	sums := make(map[string]decimal.Decimal)
	for _, a := range aggs {
		sums[a.CustomerID] = sums[a.CustomerID].Add(a.TotalSpent)
	}

	out := make([]domain.CustomerTotal, 0, len(sums))
	for customerID, total := range sums {
		if total.IsZero() {
			continue
		}
		out = append(out, domain.CustomerTotal{CustomerID: customerID, TotalSpent: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerID < out[j].CustomerID })
	return out
}

func shardOf(customerID string, shards int) int {
	if shards <= 1 {
		return 0
	}
	return int(xxh3.HashString(customerID) % uint64(shards))
}
