package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/linkhub-app/linkhub/internal/app/model"
	"github.com/linkhub-app/linkhub/internal/app/repository"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// newAnalytics wires the aggregator against a fixed clock and an in-memory
// event set. The event mock applies the same since-filter the SQL does.
func newAnalytics(account *model.Account, events []model.ClickEvent) *AnalyticsService {
	accounts := &mockAccountRepository{
		getByIDFn: func(ctx context.Context, id string) (*model.Account, error) {
			if account == nil || account.ID != id {
				return nil, repository.ErrAccountNotFound
			}
			return account, nil
		},
	}
	eventRepo := &mockClickEventRepository{
		listSinceFn: func(ctx context.Context, accountID string, since time.Time) ([]model.ClickEvent, error) {
			var out []model.ClickEvent
			for _, ev := range events {
				if !ev.ClickedAt.Before(since) {
					out = append(out, ev)
				}
			}
			return out, nil
		},
	}

	svc := NewAnalyticsService(accounts, eventRepo, 0)
	svc.now = func() time.Time { return testNow }
	return svc
}

func daysAgo(n int) time.Time {
	return testNow.AddDate(0, 0, -n)
}

func event(linkID, visitorID, country, device string, at time.Time) model.ClickEvent {
	return model.ClickEvent{
		ID:          visitorID + at.Format(time.RFC3339Nano),
		AccountID:   "acct-1",
		LinkID:      linkID,
		VisitorID:   visitorID,
		CountryCode: country,
		DeviceClass: device,
		ClickedAt:   at,
	}
}

func TestAnalytics_WindowCorrectness(t *testing.T) {
	account := &model.Account{ID: "acct-1"}
	events := []model.ClickEvent{
		event("l1", "v1", "US", "Mobile", daysAgo(10)),
		event("l1", "v2", "US", "Mobile", daysAgo(5)),
		event("l1", "v3", "US", "Mobile", daysAgo(1)),
	}

	snap, err := newAnalytics(account, events).Compute(context.Background(), "acct-1", 7)
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}

	if snap.TotalClicks != 2 {
		t.Fatalf("TotalClicks = %d, want 2 (events at -5 and -1 days)", snap.TotalClicks)
	}
}

func TestAnalytics_GrowthEdgeCases(t *testing.T) {
	account := &model.Account{ID: "acct-1"}

	// Empty previous window: growth is pinned at 100 regardless of current.
	for _, current := range []int{0, 3} {
		var events []model.ClickEvent
		for i := 0; i < current; i++ {
			events = append(events, event("l1", fmt.Sprintf("v%d", i), "US", "Mobile", daysAgo(1)))
		}

		snap, err := newAnalytics(account, events).Compute(context.Background(), "acct-1", 7)
		if err != nil {
			t.Fatalf("Compute error: %v", err)
		}
		if snap.ClickGrowth != 100 {
			t.Fatalf("ClickGrowth = %v with %d current events, want 100", snap.ClickGrowth, current)
		}
		if snap.VisitorGrowth != 100 {
			t.Fatalf("VisitorGrowth = %v, want 100", snap.VisitorGrowth)
		}
	}
}

func TestAnalytics_GrowthComputed(t *testing.T) {
	account := &model.Account{ID: "acct-1"}
	events := []model.ClickEvent{
		// Previous window: 4 clicks, 2 visitors.
		event("l1", "p1", "US", "Mobile", daysAgo(10)),
		event("l1", "p1", "US", "Mobile", daysAgo(9)),
		event("l1", "p2", "US", "Mobile", daysAgo(9)),
		event("l1", "p2", "US", "Mobile", daysAgo(8)),
		// Current window: 2 clicks, 1 visitor.
		event("l1", "c1", "US", "Mobile", daysAgo(2)),
		event("l1", "c1", "US", "Mobile", daysAgo(1)),
	}

	snap, err := newAnalytics(account, events).Compute(context.Background(), "acct-1", 7)
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}

	if snap.ClickGrowth != -50 {
		t.Fatalf("ClickGrowth = %v, want -50", snap.ClickGrowth)
	}
	if snap.VisitorGrowth != -50 {
		t.Fatalf("VisitorGrowth = %v, want -50", snap.VisitorGrowth)
	}
}

func TestAnalytics_EmptyWindowDeviceSafety(t *testing.T) {
	account := &model.Account{ID: "acct-1"}

	snap, err := newAnalytics(account, nil).Compute(context.Background(), "acct-1", 7)
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}

	if snap.Devices == nil || len(snap.Devices) != 0 {
		t.Fatalf("Devices = %#v, want empty slice", snap.Devices)
	}
	if snap.UniqueVisitors != 0 {
		t.Fatalf("UniqueVisitors = %d, want 0", snap.UniqueVisitors)
	}
}

func TestAnalytics_DeviceShares(t *testing.T) {
	account := &model.Account{ID: "acct-1"}
	events := []model.ClickEvent{
		event("l1", "v1", "US", "Mobile", daysAgo(1)),
		event("l1", "v2", "US", "Mobile", daysAgo(1)),
		event("l1", "v3", "US", "Mobile", daysAgo(1)),
		event("l1", "v4", "US", "Windows", daysAgo(1)),
	}

	snap, err := newAnalytics(account, events).Compute(context.Background(), "acct-1", 7)
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}

	if len(snap.Devices) != 2 {
		t.Fatalf("len(Devices) = %d, want 2", len(snap.Devices))
	}
	if snap.Devices[0].Device != "Mobile" || snap.Devices[0].Percentage != 75 {
		t.Fatalf("Devices[0] = %+v, want Mobile at 75%%", snap.Devices[0])
	}
	if snap.Devices[1].Device != "Windows" || snap.Devices[1].Percentage != 25 {
		t.Fatalf("Devices[1] = %+v, want Windows at 25%%", snap.Devices[1])
	}
}

func TestAnalytics_TopCountriesBound(t *testing.T) {
	account := &model.Account{ID: "acct-1"}

	countries := []string{"US", "DE", "FR", "BR", "JP", "IN", "GB"}
	var events []model.ClickEvent
	for i, country := range countries {
		// Earlier countries get more clicks.
		for n := 0; n <= len(countries)-i; n++ {
			events = append(events, event("l1", fmt.Sprintf("v-%s-%d", country, n), country, "Mobile", daysAgo(1)))
		}
	}

	snap, err := newAnalytics(account, events).Compute(context.Background(), "acct-1", 7)
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}

	if len(snap.TopCountries) != 5 {
		t.Fatalf("len(TopCountries) = %d, want 5", len(snap.TopCountries))
	}
	if snap.TopCountries[0].Country != "US" {
		t.Fatalf("TopCountries[0] = %+v, want US first", snap.TopCountries[0])
	}
	for i := 1; i < len(snap.TopCountries); i++ {
		if snap.TopCountries[i].Clicks > snap.TopCountries[i-1].Clicks {
			t.Fatalf("TopCountries not sorted descending: %+v", snap.TopCountries)
		}
	}
}

func TestAnalytics_DailyClicksSparseAscending(t *testing.T) {
	account := &model.Account{ID: "acct-1"}
	events := []model.ClickEvent{
		event("l1", "v1", "US", "Mobile", daysAgo(1)),
		event("l1", "v2", "US", "Mobile", daysAgo(1)),
		event("l1", "v3", "US", "Mobile", daysAgo(4)),
	}

	snap, err := newAnalytics(account, events).Compute(context.Background(), "acct-1", 7)
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}

	// Two distinct dates only; days without events are absent.
	if len(snap.DailyClicks) != 2 {
		t.Fatalf("len(DailyClicks) = %d, want 2", len(snap.DailyClicks))
	}
	if snap.DailyClicks[0].Date != daysAgo(4).Format("2006-01-02") || snap.DailyClicks[0].Clicks != 1 {
		t.Fatalf("DailyClicks[0] = %+v", snap.DailyClicks[0])
	}
	if snap.DailyClicks[1].Date != daysAgo(1).Format("2006-01-02") || snap.DailyClicks[1].Clicks != 2 {
		t.Fatalf("DailyClicks[1] = %+v", snap.DailyClicks[1])
	}
}

func TestAnalytics_LinkClicksZeroFilled(t *testing.T) {
	account := &model.Account{
		ID: "acct-1",
		Links: []model.Link{
			{ID: "l1", Title: "Blog", Position: 0},
			{ID: "l2", Title: "Shop", Position: 1},
		},
	}
	events := []model.ClickEvent{
		event("l2", "v1", "US", "Mobile", daysAgo(1)),
		event("l2", "v2", "US", "Mobile", daysAgo(2)),
	}

	snap, err := newAnalytics(account, events).Compute(context.Background(), "acct-1", 7)
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}

	if len(snap.LinkClicks) != 2 {
		t.Fatalf("len(LinkClicks) = %d, want 2 (every link reported)", len(snap.LinkClicks))
	}
	if snap.LinkClicks[0].LinkID != "l1" || snap.LinkClicks[0].Clicks != 0 {
		t.Fatalf("LinkClicks[0] = %+v, want l1 with 0 clicks", snap.LinkClicks[0])
	}
	if snap.LinkClicks[1].LinkID != "l2" || snap.LinkClicks[1].Clicks != 2 {
		t.Fatalf("LinkClicks[1] = %+v, want l2 with 2 clicks", snap.LinkClicks[1])
	}
}

func TestAnalytics_UniqueVisitorsWindowed(t *testing.T) {
	account := &model.Account{ID: "acct-1"}
	events := []model.ClickEvent{
		event("l1", "v1", "US", "Mobile", daysAgo(1)),
		event("l1", "v1", "US", "Mobile", daysAgo(2)),
		event("l1", "v2", "US", "Mobile", daysAgo(3)),
	}

	snap, err := newAnalytics(account, events).Compute(context.Background(), "acct-1", 7)
	if err != nil {
		t.Fatalf("Compute error: %v", err)
	}

	if snap.UniqueVisitors != 2 {
		t.Fatalf("UniqueVisitors = %d, want 2 distinct tokens", snap.UniqueVisitors)
	}
}

func TestAnalytics_DefaultWindow(t *testing.T) {
	var gotSince time.Time
	accounts := &mockAccountRepository{
		getByIDFn: func(ctx context.Context, id string) (*model.Account, error) {
			return &model.Account{ID: id}, nil
		},
	}
	eventRepo := &mockClickEventRepository{
		listSinceFn: func(ctx context.Context, accountID string, since time.Time) ([]model.ClickEvent, error) {
			gotSince = since
			return nil, nil
		},
	}

	svc := NewAnalyticsService(accounts, eventRepo, 0)
	svc.now = func() time.Time { return testNow }

	if _, err := svc.Compute(context.Background(), "acct-1", 0); err != nil {
		t.Fatalf("Compute error: %v", err)
	}

	// Default window is 7 days; the fetch covers both windows (14 days).
	want := testNow.AddDate(0, 0, -14)
	if !gotSince.Equal(want) {
		t.Fatalf("fetch since = %v, want %v", gotSince, want)
	}
}

func TestAnalytics_AccountNotFound(t *testing.T) {
	svc := newAnalytics(nil, nil)

	_, err := svc.Compute(context.Background(), "missing", 7)
	if !errors.Is(err, repository.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}
