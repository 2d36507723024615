package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/evcraddock/gatepass/internal/visit"
)

// ListVisitRequests returns the caller's visit requests. The endpoint may
// answer with a bare list or a paginated envelope.
func (c *Client) ListVisitRequests(ctx context.Context) ([]*visit.Request, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/visit-requests/", &raw); err != nil {
		return nil, err
	}
	return decodeRequests(raw)
}

// PendingVisitRequests returns requests awaiting approval.
func (c *Client) PendingVisitRequests(ctx context.Context) ([]*visit.Request, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "/api/visit-requests/pending/", &raw); err != nil {
		return nil, err
	}
	return decodeRequests(raw)
}

func decodeRequests(raw json.RawMessage) ([]*visit.Request, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var reqs []*visit.Request
		if err := json.Unmarshal(trimmed, &reqs); err != nil {
			return nil, fmt.Errorf("decoding visit requests: %w", err)
		}
		return reqs, nil
	}
	var page struct {
		Results []*visit.Request `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, fmt.Errorf("decoding visit requests: %w", err)
	}
	return page.Results, nil
}

// CreateVisitRequest invites a visitor.
func (c *Client) CreateVisitRequest(ctx context.Context, req visit.NewRequest) (*visit.Request, error) {
	if req.Type == "" {
		req.Type = visit.Scheduled
	}
	var out visit.Request
	if err := c.post(ctx, "/api/visit-requests/", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateVisitRequest reschedules or edits a request.
func (c *Client) UpdateVisitRequest(ctx context.Context, id int64, fields map[string]interface{}) (*visit.Request, error) {
	var out visit.Request
	if err := c.patch(ctx, fmt.Sprintf("/api/visit-requests/%d/", id), fields, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MessageResponse is the {"message": ...} body most actions return.
type MessageResponse struct {
	Message string `json:"message"`
}

func (c *Client) action(ctx context.Context, id int64, name string) (string, error) {
	var resp MessageResponse
	if err := c.post(ctx, fmt.Sprintf("/api/visit-requests/%d/%s/", id, name), struct{}{}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Approve approves a pending visit request.
func (c *Client) Approve(ctx context.Context, id int64) (string, error) {
	return c.action(ctx, id, "approve")
}

// Reject rejects a pending visit request.
func (c *Client) Reject(ctx context.Context, id int64) (string, error) {
	return c.action(ctx, id, "reject")
}

// Cancel cancels an approved visit.
func (c *Client) Cancel(ctx context.Context, id int64) (string, error) {
	return c.action(ctx, id, "cancel")
}

// MarkNoShow marks an approved visit as a no-show.
func (c *Client) MarkNoShow(ctx context.Context, id int64) (string, error) {
	return c.action(ctx, id, "no-show")
}

// CheckInVisit checks a visitor in by visit id.
func (c *Client) CheckInVisit(ctx context.Context, id int64) (string, error) {
	return c.action(ctx, id, "check-in")
}

// CheckOutVisit checks a visitor out by visit id.
func (c *Client) CheckOutVisit(ctx context.Context, id int64) (string, error) {
	return c.action(ctx, id, "check-out")
}
