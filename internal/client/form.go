package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/evcraddock/gatepass/internal/visit"
)

// FormDetails is what the public registration link shows the visitor.
type FormDetails struct {
	VisitDetails struct {
		Purpose      string          `json:"purpose"`
		Scheduled    visit.Timestamp `json:"scheduled_time"`
		EmployeeName string          `json:"employee_name"`
		Type         visit.Type      `json:"visit_type"`
	} `json:"visit_details"`
	Message string `json:"message"`
}

// FormResult is returned once the visitor has submitted their details.
type FormResult struct {
	Message     string          `json:"message"`
	VisitID     int64           `json:"visit_id"`
	Scheduled   visit.Timestamp `json:"scheduled_time"`
	VisitorName string          `json:"visitor_name"`
}

// ParseFormToken validates a registration link token.
func ParseFormToken(token string) (uuid.UUID, error) {
	id, err := uuid.Parse(token)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidToken, token)
	}
	return id, nil
}

// VisitorForm loads the registration form for token.
func (c *Client) VisitorForm(ctx context.Context, token string) (*FormDetails, error) {
	id, err := ParseFormToken(token)
	if err != nil {
		return nil, err
	}
	var out FormDetails
	if err := c.send(ctx, http.MethodGet, "/api/visitor-form/"+id.String()+"/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitVisitorForm sends the visitor's details for token.
func (c *Client) SubmitVisitorForm(ctx context.Context, token string, v visit.Visitor) (*FormResult, error) {
	id, err := ParseFormToken(token)
	if err != nil {
		return nil, err
	}
	var out FormResult
	if err := c.post(ctx, "/api/visitor-form/"+id.String()+"/", v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
