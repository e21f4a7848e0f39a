// Package comparison joins dealer inventory against collected market
// listings and derives per-source price statistics.
package comparison

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"watchmarket/models"
)

const noMarketDataNote = "no market data found"

// Matcher finds the market listings comparable to an inventory item.
type Matcher interface {
	Match(ctx context.Context, item models.InventoryItem) ([]models.NormalizedListing, error)
}

// InventoryReader pages through a dealer's inventory.
type InventoryReader interface {
	ListInventory(ctx context.Context, dealerID uuid.UUID, f models.InventoryFilters, limit, offset int) ([]models.InventoryItem, int, error)
}

// ReferenceReader pages through the distinct references seen on the market.
type ReferenceReader interface {
	DistinctReferences(ctx context.Context, limit, offset int) ([]string, int, error)
	ListingsByReference(ctx context.Context, ref string) ([]models.NormalizedListing, error)
}

type Service struct {
	matcher       Matcher
	inventory     InventoryReader
	references    ReferenceReader
	trendDeadband float64
}

func NewService(matcher Matcher, inventory InventoryReader, references ReferenceReader, trendDeadband float64) *Service {
	if trendDeadband <= 0 {
		trendDeadband = 0.05
	}
	return &Service{
		matcher:       matcher,
		inventory:     inventory,
		references:    references,
		trendDeadband: trendDeadband,
	}
}

// Compare produces one page of market comparisons for a dealer's inventory.
// Every inventory item on the page appears in the result; items with no
// market match carry a note instead of statistics.
func (s *Service) Compare(ctx context.Context, dealerID uuid.UUID, f models.InventoryFilters, page, pageSize int) (*models.PaginatedComparison, error) {
	page, pageSize = normalizePage(page, pageSize)

	items, total, err := s.inventory.ListInventory(ctx, dealerID, f, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	results := make([]*models.ComparisonResult, 0, len(items))
	for i := range items {
		r, err := s.compareItem(ctx, &items[i])
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}

	return &models.PaginatedComparison{
		Page:    buildPage(page, pageSize, total),
		Results: results,
	}, nil
}

func (s *Service) compareItem(ctx context.Context, item *models.InventoryItem) (*models.ComparisonResult, error) {
	r := &models.ComparisonResult{
		InventoryID:     item.ID,
		ReferenceNumber: item.ReferenceNumber,
		ModelName:       item.ModelName,
		Brand:           item.Brand,
		BuyingPrice:     item.BuyingPrice,
		ImageURL:        item.ImageURL,
	}

	matches, err := s.matcher.Match(ctx, *item)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		r.Note = noMarketDataNote
		return r, nil
	}

	r.MarketMatchesCount = len(matches)
	r.Sources = s.sourceStats(matches, &item.BuyingPrice)
	r.MarketData = summarize(matches)
	r.LastUpdated = humanize.Time(latestScrape(matches))

	profit := r.MarketData.AvgPrice - item.BuyingPrice
	r.PotentialProfit = &profit
	if item.BuyingPrice > 0 {
		margin := profit / item.BuyingPrice * 100
		r.ProfitMarginPct = &margin
	}

	return r, nil
}

// GroupByReference produces one page of market statistics keyed by reference
// number, independent of any dealer's inventory. No buying price exists here,
// so source stats carry no trend.
func (s *Service) GroupByReference(ctx context.Context, page, pageSize int) (*models.PaginatedReferences, error) {
	page, pageSize = normalizePage(page, pageSize)

	refs, total, err := s.references.DistinctReferences(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	results := make([]*models.ReferenceGroup, 0, len(refs))
	for _, ref := range refs {
		listings, err := s.references.ListingsByReference(ctx, ref)
		if err != nil {
			return nil, err
		}
		if len(listings) == 0 {
			continue
		}

		results = append(results, &models.ReferenceGroup{
			ReferenceNumber: ref,
			Brand:           listings[0].Brand,
			MatchCount:      len(listings),
			Sources:         s.sourceStats(listings, nil),
			MarketData:      summarize(listings),
			LastUpdated:     humanize.Time(latestScrape(listings)),
		})
	}

	return &models.PaginatedReferences{
		Page:    buildPage(page, pageSize, total),
		Results: results,
	}, nil
}

// sourceStats buckets listings per source and derives the price statistics.
// buyingPrice is nil in the reference-grouped view, which leaves trends unset.
func (s *Service) sourceStats(listings []models.NormalizedListing, buyingPrice *float64) map[string]*models.SourceStat {
	stats := make(map[string]*models.SourceStat)
	sums := make(map[string]float64)

	for i := range listings {
		l := &listings[i]
		st, ok := stats[l.Source]
		if !ok {
			st = &models.SourceStat{
				Source:   l.Source,
				MinPrice: l.Price,
				MaxPrice: l.Price,
			}
			stats[l.Source] = st
		}
		if l.Price < st.MinPrice {
			st.MinPrice = l.Price
		}
		if l.Price > st.MaxPrice {
			st.MaxPrice = l.Price
		}
		st.Count++
		sums[l.Source] += l.Price
	}

	for source, st := range stats {
		st.AvgPrice = sums[source] / float64(st.Count)
		if buyingPrice != nil && *buyingPrice > 0 {
			diff := st.AvgPrice - *buyingPrice
			pct := diff / *buyingPrice * 100
			trend := s.classifyTrend(diff, *buyingPrice)
			st.PriceDiffAbs = &diff
			st.PriceDiffPct = &pct
			st.Trend = &trend
		}
	}

	return stats
}

// classifyTrend compares a source's average against the buying price. A
// difference of exactly the deadband still reads as stable; only strictly
// beyond it counts as movement.
func (s *Service) classifyTrend(diff, buyingPrice float64) string {
	deadband := buyingPrice * s.trendDeadband
	switch {
	case diff > deadband:
		return models.TrendUp
	case diff < -deadband:
		return models.TrendDown
	default:
		return models.TrendStable
	}
}

func summarize(listings []models.NormalizedListing) *models.MarketSummary {
	sum := &models.MarketSummary{
		MinPrice: listings[0].Price,
		MaxPrice: listings[0].Price,
	}
	var total float64
	for i := range listings {
		p := listings[i].Price
		if p < sum.MinPrice {
			sum.MinPrice = p
		}
		if p > sum.MaxPrice {
			sum.MaxPrice = p
		}
		total += p
		sum.Count++
	}
	sum.AvgPrice = total / float64(sum.Count)
	return sum
}

func latestScrape(listings []models.NormalizedListing) time.Time {
	var latest time.Time
	for i := range listings {
		if listings[i].ScrapedAt.After(latest) {
			latest = listings[i].ScrapedAt
		}
	}
	return latest
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return page, pageSize
}

func buildPage(page, pageSize, total int) models.Page {
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}

	p := models.Page{
		Count:       total,
		TotalPages:  totalPages,
		CurrentPage: page,
		PageSize:    pageSize,
	}
	if page < totalPages {
		next := page + 1
		p.Next = &next
	}
	if page > 1 {
		prev := page - 1
		p.Previous = &prev
	}
	return p
}
