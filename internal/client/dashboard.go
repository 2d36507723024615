package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/evcraddock/gatepass/internal/visit"
)

// DashboardMetric is one tile on the role dashboard.
type DashboardMetric struct {
	Label string `json:"label"`
	Value int    `json:"value"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// DashboardMetrics returns the role-specific dashboard tiles.
func (c *Client) DashboardMetrics(ctx context.Context) ([]DashboardMetric, error) {
	var metrics []DashboardMetric
	if err := c.cachedGet(ctx, "/api/dashboard-metrics/", &metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}

// Activity is one entry of the recent activity feed.
type Activity struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Message     string          `json:"message"`
	Details     string          `json:"details"`
	Time        visit.Timestamp `json:"time"`
	TimeDisplay string          `json:"time_display,omitempty"`
	Icon        string          `json:"icon,omitempty"`
	Color       string          `json:"color,omitempty"`
}

// ActivityPage is a page of the recent activity feed.
type ActivityPage struct {
	Count      int        `json:"count"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
	Results    []Activity `json:"results"`
}

// RecentActivities returns one page of the activity feed.
func (c *Client) RecentActivities(ctx context.Context, page, pageSize int) (*ActivityPage, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}
	path := "/api/recent-activities/"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out ActivityPage
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func reportQuery(f visit.ReportFilter) url.Values {
	q := url.Values{}
	if !f.Start.IsZero() {
		q.Set("start_date", f.Start.Format("2006-01-02"))
	}
	if !f.End.IsZero() {
		q.Set("end_date", f.End.Format("2006-01-02"))
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Employee != "" {
		q.Set("employee", f.Employee)
	}
	if f.Type != "" {
		q.Set("visit_type", f.Type)
	}
	return q
}

// Report returns the server-side visitor report for the filter.
func (c *Client) Report(ctx context.Context, f visit.ReportFilter) (*visit.Report, error) {
	path := "/api/reports/"
	if q := reportQuery(f); len(q) > 0 {
		path += "?" + q.Encode()
	}

	var r visit.Report
	if err := c.cachedGet(ctx, path, &r); err != nil {
		return nil, err
	}
	visit.Normalize(r.Visitors)
	return &r, nil
}

// DownloadReport streams the server-rendered report in format (csv, excel
// or pdf) to w.
func (c *Client) DownloadReport(ctx context.Context, format string, f visit.ReportFilter, w io.Writer) error {
	q := reportQuery(f)
	q.Set("format", format)

	status, body, err := c.exchange(ctx, http.MethodGet, "/api/reports/download/?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	if err := decode(status, body, nil); err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
