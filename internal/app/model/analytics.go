package model

// AnalyticsSnapshot is the derived payload served to dashboards. It is never
// stored; every request recomputes it from the click-event log.
//
// TotalClicks and UniqueVisitors here are windowed numbers, unlike the
// all-time counters on Account.
type AnalyticsSnapshot struct {
	TotalClicks    int            `json:"totalClicks"`
	UniqueVisitors int            `json:"uniqueVisitors"`
	ClickGrowth    float64        `json:"clickGrowth"`
	VisitorGrowth  float64        `json:"visitorGrowth"`
	DailyClicks    []DailyClicks  `json:"dailyClicks"`
	TopCountries   []CountryCount `json:"topCountries"`
	Devices        []DeviceShare  `json:"devices"`
	LinkClicks     []LinkClicks   `json:"linkClicks"`
}

// DailyClicks is a sparse per-calendar-date count; Date is the UTC date in
// YYYY-MM-DD form. Dates without events are omitted.
type DailyClicks struct {
	Date   string `json:"date"`
	Clicks int    `json:"clicks"`
}

type CountryCount struct {
	Country string `json:"country"`
	Clicks  int    `json:"clicks"`
}

type DeviceShare struct {
	Device     string  `json:"device"`
	Percentage float64 `json:"percentage"`
}

// LinkClicks reports clicks inside the window for one link; links with no
// matching events still appear with Clicks == 0, in account insertion order.
type LinkClicks struct {
	LinkID string `json:"linkId"`
	Title  string `json:"title"`
	Clicks int    `json:"clicks"`
}
