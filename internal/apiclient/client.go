// Package apiclient wraps the external BillKhata REST API. All durable logic
// (balance computation, approval workflows, persistence) lives behind this
// API; the client fetches room-scoped collections and issues status
// mutations, translating failures into typed application errors.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/Xantonozar/billkhata-go/errors"
	"github.com/Xantonozar/billkhata-go/types"
)

// Client is an HTTP client for the BillKhata API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a new BillKhata API client.
func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// apiError is the error envelope the API returns on failure.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (e apiError) detail() string {
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

// do issues one request and decodes the response into out (when non-nil).
// Non-2xx responses become typed API errors carrying the upstream status.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body interface{}, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	// Request IDs let a failed call be matched against server logs.
	httpReq.Header.Set("x-request-id", uuid.NewString())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return errors.Wrap(err, errors.APIError, fmt.Sprintf("%s %s", method, path))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope apiError
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		return errors.APIFailed(resp.StatusCode, fmt.Sprintf("%s %s", method, path), envelope.detail())
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Wrap(err, errors.APIError, "failed to decode response")
		}
	}
	return nil
}

// --- Read operations ---

// ListBills fetches all bills for a room, optionally filtered by share status.
func (c *Client) ListBills(ctx context.Context, khataID string, status types.ShareStatus) ([]types.Bill, error) {
	q := url.Values{"khataId": {khataID}}
	if status != "" {
		q.Set("status", string(status))
	}
	var bills []types.Bill
	if err := c.do(ctx, http.MethodGet, "/bills", q, nil, &bills); err != nil {
		return nil, err
	}
	return bills, nil
}

// ListDeposits fetches deposits for a room, optionally filtered by status.
func (c *Client) ListDeposits(ctx context.Context, khataID string, status types.ApprovalStatus) ([]types.Deposit, error) {
	q := url.Values{"khataId": {khataID}}
	if status != "" {
		q.Set("status", string(status))
	}
	var deposits []types.Deposit
	if err := c.do(ctx, http.MethodGet, "/deposits", q, nil, &deposits); err != nil {
		return nil, err
	}
	return deposits, nil
}

// ListExpenses fetches expenses for a room, optionally filtered by status.
func (c *Client) ListExpenses(ctx context.Context, khataID string, status types.ApprovalStatus) ([]types.Expense, error) {
	q := url.Values{"khataId": {khataID}}
	if status != "" {
		q.Set("status", string(status))
	}
	var expenses []types.Expense
	if err := c.do(ctx, http.MethodGet, "/expenses", q, nil, &expenses); err != nil {
		return nil, err
	}
	return expenses, nil
}

// ListMeals fetches meal records for a room within a date range. The range is
// passed to the API so a whole room's meal history is never pulled client
// side.
func (c *Client) ListMeals(ctx context.Context, khataID string, start, end time.Time) ([]types.MealRecord, error) {
	q := url.Values{
		"khataId":   {khataID},
		"startDate": {start.Format(time.RFC3339)},
		"endDate":   {end.Format(time.RFC3339)},
	}
	var meals []types.MealRecord
	if err := c.do(ctx, http.MethodGet, "/meals", q, nil, &meals); err != nil {
		return nil, err
	}
	return meals, nil
}

// ListMembers fetches the members of a room.
func (c *Client) ListMembers(ctx context.Context, khataID string) ([]types.Member, error) {
	q := url.Values{"khataId": {khataID}}
	var members []types.Member
	if err := c.do(ctx, http.MethodGet, "/members", q, nil, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// --- Bill mutations ---

// CreateBill creates a bill with its shares.
func (c *Client) CreateBill(ctx context.Context, params types.CreateBillParams) (*types.Bill, error) {
	var bill types.Bill
	if err := c.do(ctx, http.MethodPost, "/bills", nil, params, &bill); err != nil {
		return nil, err
	}
	return &bill, nil
}

// UpdateBill replaces a bill's mutable fields and shares.
func (c *Client) UpdateBill(ctx context.Context, billID string, params types.CreateBillParams) (*types.Bill, error) {
	var bill types.Bill
	if err := c.do(ctx, http.MethodPut, "/bills/"+billID, nil, params, &bill); err != nil {
		return nil, err
	}
	return &bill, nil
}

// DeleteBill deletes a bill. Bills are never deleted implicitly.
func (c *Client) DeleteBill(ctx context.Context, billID string) error {
	return c.do(ctx, http.MethodDelete, "/bills/"+billID, nil, nil, nil)
}

// UpdateShareStatus mutates one member's share status on a bill: a member
// marking paid moves Unpaid to Pending Approval; a manager approving moves it
// to Paid, denying moves it back to Unpaid.
func (c *Client) UpdateShareStatus(ctx context.Context, billID, userID string, status types.ShareStatus) error {
	body := map[string]string{
		"userId": userID,
		"status": string(status),
	}
	return c.do(ctx, http.MethodPatch, "/bills/"+billID+"/shares", nil, body, nil)
}

// --- Approval mutations ---

// ApproveDeposit approves a pending deposit so it counts toward the fund.
func (c *Client) ApproveDeposit(ctx context.Context, depositID string) error {
	return c.do(ctx, http.MethodPost, "/deposits/"+depositID+"/approve", nil, nil, nil)
}

// RejectDeposit rejects a pending deposit.
func (c *Client) RejectDeposit(ctx context.Context, depositID string) error {
	return c.do(ctx, http.MethodPost, "/deposits/"+depositID+"/reject", nil, nil, nil)
}

// ApproveExpense approves a pending expense so it counts toward meal cost.
func (c *Client) ApproveExpense(ctx context.Context, expenseID string) error {
	return c.do(ctx, http.MethodPost, "/expenses/"+expenseID+"/approve", nil, nil, nil)
}

// RejectExpense rejects a pending expense.
func (c *Client) RejectExpense(ctx context.Context, expenseID string) error {
	return c.do(ctx, http.MethodPost, "/expenses/"+expenseID+"/reject", nil, nil, nil)
}

// ApproveMember approves a member whose room status is pending.
func (c *Client) ApproveMember(ctx context.Context, memberID string) error {
	return c.do(ctx, http.MethodPost, "/members/"+memberID+"/approve", nil, nil, nil)
}

// --- Meal mutations ---

// SubmitMeal upserts one member's meals for a day. The server rejects member
// edits once the day is finalized; manager edits remain allowed.
func (c *Client) SubmitMeal(ctx context.Context, params types.SubmitMealParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/meals", nil, params, nil)
}

// FinalizeDay sets the manager's per-day lock on meal edits.
func (c *Client) FinalizeDay(ctx context.Context, khataID string, date time.Time) error {
	body := map[string]string{
		"khataId": khataID,
		"date":    date.Format("2006-01-02"),
	}
	return c.do(ctx, http.MethodPost, "/meals/finalize", nil, body, nil)
}
