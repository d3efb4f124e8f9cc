package apiclient

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xantonozar/billkhata-go/errors"
	"github.com/Xantonozar/billkhata-go/types"
)

func TestListBillsDecodesWireVariants(t *testing.T) {
	// Documents mix `_id` with `id`, and userId arrives as either a bare
	// string or an embedded object.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bills", r.URL.Path)
		assert.Equal(t, "khata-1", r.URL.Query().Get("khataId"))
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.NotEmpty(t, r.Header.Get("x-request-id"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{
				"_id": "b1",
				"khataId": "khata-1",
				"title": "Electricity",
				"totalAmount": 900,
				"dueDate": "2026-09-20T00:00:00Z",
				"shares": [
					{"userId": "alice", "amount": 450, "status": "Paid"},
					{"userId": {"_id": "bob", "name": "Bob"}, "amount": 450, "status": "Unpaid"}
				]
			},
			{
				"id": "b2",
				"khataId": "khata-1",
				"title": "Internet",
				"totalAmount": 600,
				"shares": []
			}
		]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	bills, err := client.ListBills(context.Background(), "khata-1", "")
	require.NoError(t, err)
	require.Len(t, bills, 2)

	assert.Equal(t, "b1", bills[0].ID)
	assert.Equal(t, "alice", bills[0].Shares[0].UserID())
	assert.Equal(t, "bob", bills[0].Shares[1].UserID())
	assert.Equal(t, "Bob", bills[0].Shares[1].DisplayName())

	assert.Equal(t, "b2", bills[1].ID)
}

func TestListBillsStatusFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Unpaid", r.URL.Query().Get("status"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	bills, err := client.ListBills(context.Background(), "khata-1", types.ShareUnpaid)
	require.NoError(t, err)
	assert.Empty(t, bills)
}

func TestListMealsSendsDateRange(t *testing.T) {
	start := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.September, 30, 23, 59, 59, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, start.Format(time.RFC3339), r.URL.Query().Get("startDate"))
		assert.Equal(t, end.Format(time.RFC3339), r.URL.Query().Get("endDate"))
		_, _ = w.Write([]byte(`[{"_id": "m1", "userId": "alice", "totalMeals": 2.5}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	meals, err := client.ListMeals(context.Background(), "khata-1", start, end)
	require.NoError(t, err)
	require.Len(t, meals, 1)
	assert.Equal(t, "m1", meals[0].ID)
	assert.Equal(t, "alice", meals[0].UserID())
	assert.InDelta(t, 2.5, meals[0].TotalMeals, 0.001)
}

func TestErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": "manager role required"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	err := client.ApproveDeposit(context.Background(), "d1")
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, errors.APIError, appErr.Type)
	assert.Equal(t, http.StatusForbidden, appErr.HTTPStatus)
	assert.Contains(t, appErr.Detail, "manager role required")
}

func TestUpdateShareStatusPayload(t *testing.T) {
	var gotMethod, gotPath, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	err := client.UpdateShareStatus(context.Background(), "b1", "alice", types.SharePendingApproval)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/bills/b1/shares", gotPath)
	assert.Contains(t, gotBody, `"status":"Pending Approval"`)
	assert.Contains(t, gotBody, `"userId":"alice"`)
}

func TestSubmitMealRejectsBadQuantityBeforeCall(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	err := client.SubmitMeal(context.Background(), types.SubmitMealParams{
		KhataID: "khata-1",
		UserID:  "alice",
		Lunch:   0.3,
	})
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, errors.ValidationError, appErr.Type)
	assert.Zero(t, requests, "invalid quantities must not reach the server")

	err = client.SubmitMeal(context.Background(), types.SubmitMealParams{
		KhataID:   "khata-1",
		UserID:    "alice",
		Breakfast: 1,
		Lunch:     0.75,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, requests)
}

func TestCreateBill(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"_id": "b9", "title": "Gas", "totalAmount": 300}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret")
	bill, err := client.CreateBill(context.Background(), types.CreateBillParams{
		KhataID:     "khata-1",
		Title:       "Gas",
		TotalAmount: 300,
	})
	require.NoError(t, err)
	assert.Equal(t, "b9", bill.ID)
}

func TestContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	client := NewClient(server.URL, "secret")
	_, err := client.ListMembers(ctx, "khata-1")
	assert.Error(t, err)
}
