package api_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightkite/tfc-engine/api"
	"github.com/brightkite/tfc-engine/tfc"
	"github.com/brightkite/tfc-engine/tfc/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// newTestServer pins "now" to 2024-07-15 so quarter windows are stable.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	h := api.NewHandler(store.NewMemory())
	h.Now = func() time.Time { return tfc.NewDate(2024, time.July, 15) }

	srv := httptest.NewServer(api.NewRouter(h))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, buf
}

func createChild(t *testing.T, srv *httptest.Server) api.ChildDTO {
	t.Helper()
	resp, body := do(t, http.MethodPost, srv.URL+"/api/children",
		`{"name":"Alice","date_of_birth":"2021-06-05","reconfirmation_date":"2024-01-01"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var dto api.ChildDTO
	require.NoError(t, json.Unmarshal(body, &dto))
	return dto
}

// =============================================================================
// CHILD ENDPOINTS
// =============================================================================

func TestCreateChild_ReturnsDerivedQuarter(t *testing.T) {
	srv := newTestServer(t)

	dto := createChild(t, srv)

	assert.NotEmpty(t, dto.ID)
	assert.Equal(t, "Alice", dto.Name)
	// Anchor 2024-01-01 as of 2024-07-15: two quarters elapsed.
	assert.Equal(t, "2024-07-01", dto.QuarterStart)
	assert.Equal(t, "2024-10-01", dto.QuarterEnd)
	assert.Equal(t, 78, dto.DaysRemaining)
	assert.Equal(t, 500.0, dto.RemainingAllowance)
	assert.False(t, dto.IsAtLimit)
	assert.Equal(t, 3, dto.Age)
}

func TestCreateChild_InvalidDate(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := do(t, http.MethodPost, srv.URL+"/api/children",
		`{"name":"Bob","reconfirmation_date":"not-a-date"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetChild_NotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := do(t, http.MethodGet, srv.URL+"/api/children/chd-ghost", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateChild_MoveReconfirmationDate(t *testing.T) {
	srv := newTestServer(t)
	child := createChild(t, srv)

	resp, body := do(t, http.MethodPut, srv.URL+"/api/children/"+child.ID,
		`{"reconfirmation_date":"2024-06-01"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var dto api.ChildDTO
	require.NoError(t, json.Unmarshal(body, &dto))
	assert.Equal(t, "2024-06-01", dto.QuarterStart)
	assert.Equal(t, "2024-09-01", dto.QuarterEnd)
}

// =============================================================================
// CALCULATION + CONFIRMATION FLOW
// =============================================================================

func TestCalculate_NoPriorPayments(t *testing.T) {
	srv := newTestServer(t)
	child := createChild(t, srv)

	resp, body := do(t, http.MethodPost, srv.URL+"/api/children/"+child.ID+"/calculate",
		`{"cost":"400"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var dto api.CalculationDTO
	require.NoError(t, json.Unmarshal(body, &dto))
	assert.Equal(t, 80.0, dto.GovernmentTopUp)
	assert.Equal(t, 320.0, dto.ParentPayment)
	assert.Equal(t, 420.0, dto.RemainingAfterPayment)
	assert.False(t, dto.ExceedsLimit)
	assert.False(t, dto.IsAtLimit)
}

func TestCalculate_RejectsBadCost(t *testing.T) {
	srv := newTestServer(t)
	child := createChild(t, srv)

	for _, cost := range []string{`"abc"`, `"-50"`, `""`, `"NaN"`} {
		resp, _ := do(t, http.MethodPost, srv.URL+"/api/children/"+child.ID+"/calculate",
			`{"cost":`+cost+`}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "cost=%s", cost)
	}
}

func TestConfirmPayment_ThenAtLimit(t *testing.T) {
	srv := newTestServer(t)
	child := createChild(t, srv)

	// Confirm 2300: top-up 460.
	resp, body := do(t, http.MethodPost, srv.URL+"/api/children/"+child.ID+"/payments",
		`{"cost":"2300","date":"2024-07-16","description":"summer club"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var p1 api.PaymentDTO
	require.NoError(t, json.Unmarshal(body, &p1))
	assert.Equal(t, 460.0, p1.GovernmentTopUp)
	assert.Equal(t, 1840.0, p1.ParentPaid)

	// Confirm 3000: throttled to the remaining 40.
	resp, body = do(t, http.MethodPost, srv.URL+"/api/children/"+child.ID+"/payments",
		`{"cost":"3000","date":"2024-08-01"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var p2 api.PaymentDTO
	require.NoError(t, json.Unmarshal(body, &p2))
	assert.Equal(t, 40.0, p2.GovernmentTopUp)
	assert.Equal(t, 2960.0, p2.ParentPaid)

	// Child view now shows the cap exhausted.
	resp, body = do(t, http.MethodGet, srv.URL+"/api/children/"+child.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var dto api.ChildDTO
	require.NoError(t, json.Unmarshal(body, &dto))
	assert.Equal(t, 500.0, dto.ConfirmedTopUp)
	assert.True(t, dto.IsAtLimit)
}

func TestDeletePayment_AllowanceRestored(t *testing.T) {
	srv := newTestServer(t)
	child := createChild(t, srv)

	resp, body := do(t, http.MethodPost, srv.URL+"/api/children/"+child.ID+"/payments",
		`{"cost":"400","date":"2024-07-16"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var p api.PaymentDTO
	require.NoError(t, json.Unmarshal(body, &p))

	resp, _ = do(t, http.MethodDelete, srv.URL+"/api/children/"+child.ID+"/payments/"+p.ID, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = do(t, http.MethodGet, srv.URL+"/api/children/"+child.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var dto api.ChildDTO
	require.NoError(t, json.Unmarshal(body, &dto))
	assert.Equal(t, 0.0, dto.ConfirmedTopUp)
	assert.Equal(t, 500.0, dto.RemainingAllowance)

	resp, _ = do(t, http.MethodDelete, srv.URL+"/api/children/"+child.ID+"/payments/"+p.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// HISTORY + EXPORT
// =============================================================================

func TestListPayments_QuarterFilterAndSummary(t *testing.T) {
	srv := newTestServer(t)
	child := createChild(t, srv)

	// One payment in the previous quarter, one in the active one.
	resp, _ := do(t, http.MethodPost, srv.URL+"/api/children/"+child.ID+"/payments",
		`{"cost":"100","date":"2024-05-10"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = do(t, http.MethodPost, srv.URL+"/api/children/"+child.ID+"/payments",
		`{"cost":"400","date":"2024-07-16"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := do(t, http.MethodGet, srv.URL+"/api/children/"+child.ID+"/payments", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var all api.PaymentListDTO
	require.NoError(t, json.Unmarshal(body, &all))
	assert.Len(t, all.Payments, 2)
	assert.Equal(t, 500.0, all.Summary.Amount)
	assert.Equal(t, 100.0, all.Summary.GovernmentTopUp)

	resp, body = do(t, http.MethodGet, srv.URL+"/api/children/"+child.ID+"/payments?quarter=current", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var current api.PaymentListDTO
	require.NoError(t, json.Unmarshal(body, &current))
	assert.Len(t, current.Payments, 1)
	assert.Equal(t, 80.0, current.Summary.GovernmentTopUp)
}

func TestExportPayments_CSV(t *testing.T) {
	srv := newTestServer(t)
	child := createChild(t, srv)

	resp, _ := do(t, http.MethodPost, srv.URL+"/api/children/"+child.ID+"/payments",
		`{"cost":"400","date":"2024-07-16","description":"nursery"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := do(t, http.MethodGet, srv.URL+"/api/children/"+child.ID+"/export", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))

	csv := string(body)
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	require.Len(t, lines, 3) // header, one payment, totals

	assert.Equal(t, "date,description,amount,parent_paid,government_top_up", lines[0])
	assert.Equal(t, "2024-07-16,nursery,400.00,320.00,80.00", lines[1])
	assert.Contains(t, lines[2], "total (1 payments)")
	assert.Contains(t, lines[2], "80.00")
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/api/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "ok")
}
