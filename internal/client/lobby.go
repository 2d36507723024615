package client

import (
	"context"
	"net/url"
	"time"

	"github.com/evcraddock/gatepass/internal/visit"
)

// TodayVisitors returns today's approved visits for the lobby.
func (c *Client) TodayVisitors(ctx context.Context) ([]*visit.Visit, error) {
	var visits []*visit.Visit
	if err := c.cachedGet(ctx, "/api/lobby/today-visitors/", &visits); err != nil {
		return nil, err
	}
	return visits, nil
}

// TodayAllVisits returns every visit in a date range, defaulting server-side
// to the current week when start and end are zero.
func (c *Client) TodayAllVisits(ctx context.Context, start, end time.Time) ([]*visit.Visit, error) {
	path := "/api/lobby/today-all-visits/"
	q := url.Values{}
	if !start.IsZero() {
		q.Set("start_date", start.Format("2006-01-02"))
	}
	if !end.IsZero() {
		q.Set("end_date", end.Format("2006-01-02"))
	}
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var visits []*visit.Visit
	if err := c.cachedGet(ctx, path, &visits); err != nil {
		return nil, err
	}
	return visits, nil
}

// MyVisitors returns the caller's approved visitors. The endpoint omits the
// host and status, so they are filled in from what it guarantees.
func (c *Client) MyVisitors(ctx context.Context, username string) ([]*visit.Visit, error) {
	var visits []*visit.Visit
	if err := c.get(ctx, "/api/my-visitors/", &visits); err != nil {
		return nil, err
	}
	for _, v := range visits {
		if v.EmployeeName == "" {
			v.EmployeeName = username
		}
		if v.Status == "" {
			v.Status = visit.Approved
		}
	}
	return visits, nil
}

// LobbyResponse is the body of the lobby check-in and check-out actions.
type LobbyResponse struct {
	Message      string `json:"message"`
	CheckInTime  string `json:"check_in_time,omitempty"`
	CheckOutTime string `json:"check_out_time,omitempty"`
	Visitor      struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"visitor"`
}

// CheckIn checks in the visitor's approved visit for today.
func (c *Client) CheckIn(ctx context.Context, visitorID int64) (*LobbyResponse, error) {
	var resp LobbyResponse
	if err := c.post(ctx, "/api/lobby/checkin/", map[string]int64{"visitor_id": visitorID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CheckOut checks out the visitor's active visit.
func (c *Client) CheckOut(ctx context.Context, visitorID int64) (*LobbyResponse, error) {
	var resp LobbyResponse
	if err := c.post(ctx, "/api/lobby/checkout/", map[string]int64{"visitor_id": visitorID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// WalkInResponse is the body returned for a created walk-in.
type WalkInResponse struct {
	Message     string          `json:"message"`
	VisitID     int64           `json:"visit_id"`
	VisitorID   int64           `json:"visitor_id"`
	VisitorName string          `json:"visitor_name"`
	Purpose     string          `json:"purpose"`
	Scheduled   visit.Timestamp `json:"scheduled_time"`
}

// DefaultWalkInPurpose is used when the desk leaves the purpose blank.
const DefaultWalkInPurpose = "Walk-in visit"

// CreateWalkIn registers an unscheduled visitor. A blank purpose becomes
// DefaultWalkInPurpose and a blank time becomes now.
func (c *Client) CreateWalkIn(ctx context.Context, w visit.WalkInRequest) (*WalkInResponse, error) {
	if w.Purpose == "" {
		w.Purpose = DefaultWalkInPurpose
	}
	if w.Scheduled == "" {
		w.Scheduled = time.Now().UTC().Format(time.RFC3339)
	}
	var resp WalkInResponse
	if err := c.post(ctx, "/api/lobby/walkin/", w, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ConvertToWalkIn turns a scheduled visit that has not checked in into a
// walk-in so it is no longer subject to no-show marking.
func (c *Client) ConvertToWalkIn(ctx context.Context, visitID int64, w visit.WalkInRequest) (*WalkInResponse, error) {
	w.ConvertVisit = visitID
	return c.CreateWalkIn(ctx, w)
}
