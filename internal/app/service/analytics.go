package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/linkhub-app/linkhub/internal/app/model"
	"github.com/linkhub-app/linkhub/internal/app/repository"
)

const (
	// DefaultWindowDays is the trailing range used when the caller does not
	// ask for one.
	DefaultWindowDays = 7

	topCountryLimit = 5
)

// AnalyticsService computes windowed aggregate statistics from the
// click-event log. For fixed events and a fixed clock the snapshot is fully
// reproducible.
type AnalyticsService struct {
	accounts repository.AccountRepository
	events   repository.ClickEventRepository
	window   int
	now      func() time.Time
}

// NewAnalyticsService builds the aggregator. defaultWindowDays falls back to
// DefaultWindowDays when non-positive.
func NewAnalyticsService(accounts repository.AccountRepository, events repository.ClickEventRepository, defaultWindowDays int) *AnalyticsService {
	if defaultWindowDays <= 0 {
		defaultWindowDays = DefaultWindowDays
	}
	return &AnalyticsService{
		accounts: accounts,
		events:   events,
		window:   defaultWindowDays,
		now:      time.Now,
	}
}

// Compute builds the snapshot for the trailing windowDays window. The
// preceding window of equal length feeds the growth rates.
func (s *AnalyticsService) Compute(ctx context.Context, accountID string, windowDays int) (*model.AnalyticsSnapshot, error) {
	if windowDays <= 0 {
		windowDays = s.window
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	end := s.now()
	start := end.AddDate(0, 0, -windowDays)
	prevStart := start.AddDate(0, 0, -windowDays)

	rows, err := s.events.ListSince(ctx, accountID, prevStart)
	if err != nil {
		return nil, fmt.Errorf("load click history: %w", err)
	}

	var current, previous []model.ClickEvent
	for _, ev := range rows {
		ts := ev.ClickedAt
		switch {
		case !ts.Before(start) && !ts.After(end):
			current = append(current, ev)
		case !ts.Before(prevStart) && ts.Before(start):
			previous = append(previous, ev)
		}
	}

	curVisitors := distinctVisitors(current)
	prevVisitors := distinctVisitors(previous)

	return &model.AnalyticsSnapshot{
		TotalClicks:    len(current),
		UniqueVisitors: curVisitors,
		ClickGrowth:    growthRate(len(current), len(previous)),
		VisitorGrowth:  growthRate(curVisitors, prevVisitors),
		DailyClicks:    dailyClicks(current),
		TopCountries:   topCountries(current),
		Devices:        deviceShares(current),
		LinkClicks:     linkClicks(account.Links, current),
	}, nil
}

// growthRate is the percentage change between windows. An empty previous
// window reports exactly 100 regardless of the current count.
func growthRate(current, previous int) float64 {
	if previous == 0 {
		return 100
	}
	return float64(current-previous) / float64(previous) * 100
}

func dailyClicks(events []model.ClickEvent) []model.DailyClicks {
	counts := make(map[string]int)
	for _, ev := range events {
		date := ev.ClickedAt.UTC().Format("2006-01-02")
		counts[date]++
	}

	out := make([]model.DailyClicks, 0, len(counts))
	for date, clicks := range counts {
		out = append(out, model.DailyClicks{Date: date, Clicks: clicks})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func topCountries(events []model.ClickEvent) []model.CountryCount {
	counts := make(map[string]int)
	var order []string
	for _, ev := range events {
		if _, seen := counts[ev.CountryCode]; !seen {
			order = append(order, ev.CountryCode)
		}
		counts[ev.CountryCode]++
	}

	out := make([]model.CountryCount, 0, len(order))
	for _, country := range order {
		out = append(out, model.CountryCount{Country: country, Clicks: counts[country]})
	}
	// Ties keep first-seen order; SliceStable preserves it.
	sort.SliceStable(out, func(i, j int) bool { return out[i].Clicks > out[j].Clicks })

	if len(out) > topCountryLimit {
		out = out[:topCountryLimit]
	}
	return out
}

func deviceShares(events []model.ClickEvent) []model.DeviceShare {
	total := len(events)
	if total == 0 {
		return []model.DeviceShare{}
	}

	counts := make(map[string]int)
	var order []string
	for _, ev := range events {
		if _, seen := counts[ev.DeviceClass]; !seen {
			order = append(order, ev.DeviceClass)
		}
		counts[ev.DeviceClass]++
	}

	out := make([]model.DeviceShare, 0, len(order))
	for _, device := range order {
		out = append(out, model.DeviceShare{
			Device:     device,
			Percentage: float64(counts[device]) / float64(total) * 100,
		})
	}
	return out
}

func linkClicks(links []model.Link, events []model.ClickEvent) []model.LinkClicks {
	counts := make(map[string]int)
	for _, ev := range events {
		counts[ev.LinkID]++
	}

	out := make([]model.LinkClicks, 0, len(links))
	for _, link := range links {
		out = append(out, model.LinkClicks{
			LinkID: link.ID,
			Title:  link.Title,
			Clicks: counts[link.ID],
		})
	}
	return out
}

func distinctVisitors(events []model.ClickEvent) int {
	seen := make(map[string]struct{}, len(events))
	for _, ev := range events {
		seen[ev.VisitorID] = struct{}{}
	}
	return len(seen)
}
