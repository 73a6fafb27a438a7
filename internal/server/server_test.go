// internal/server/server_test.go
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lending-backend/internal/common/dynamo"
	"lending-backend/internal/common/logger"
	"lending-backend/internal/lending"
	"lending-backend/internal/notify"
)

type stubAccess struct {
	result lending.AccessResult

	gotClientID   string
	gotCustomerID string
}

func (s *stubAccess) ValidateAccess(_ context.Context, clientID, customerID string) lending.AccessResult {
	s.gotClientID = clientID
	s.gotCustomerID = customerID
	return s.result
}

type stubReconcile struct {
	result lending.ReconcileResult

	gotData     string
	gotIsMsisdn bool
	gotProcess  string
}

func (s *stubReconcile) Reconcile(_ context.Context, raw string, isMsisdn bool, process string) lending.ReconcileResult {
	s.gotData = raw
	s.gotIsMsisdn = isMsisdn
	s.gotProcess = process
	return s.result
}

type stubSMS struct {
	ok  bool
	got []notify.SMSRequest
}

func (s *stubSMS) RegisterClientSMS(_ context.Context, req notify.SMSRequest) bool {
	s.got = append(s.got, req)
	return s.ok
}

type stubMovements struct {
	rows []dynamo.Record
	err  error
}

func (s *stubMovements) MovementsByClient(context.Context, string, ...dynamo.QueryOption) ([]dynamo.Record, error) {
	return s.rows, s.err
}

func newTestServer(access *stubAccess, reconcile *stubReconcile, sms *stubSMS, movements *stubMovements) *Server {
	if access == nil {
		access = &stubAccess{}
	}
	if reconcile == nil {
		reconcile = &stubReconcile{}
	}
	if sms == nil {
		sms = &stubSMS{}
	}
	if movements == nil {
		movements = &stubMovements{}
	}
	return New(access, reconcile, sms, movements, logger.NewNoOpLogger())
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestValidateAccessEndpoint(t *testing.T) {
	access := &stubAccess{result: lending.AccessResult{
		Success:   true,
		Access:    true,
		Flow:      lending.FlowDashboard,
		StatusApp: "A",
	}}
	srv := newTestServer(access, nil, nil, nil)

	rec := doJSON(t, srv, http.MethodPost, "/v1/lending/access/validate",
		`{"client_id":"uuid-1","customer_id":"210045"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "uuid-1", access.gotClientID)
	assert.Equal(t, "210045", access.gotCustomerID)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "dashboard", body["flow"])
	assert.Contains(t, body, "current_loan")
	assert.Contains(t, body, "is_recurrent")
	assert.Contains(t, body, "status_preapproved")
}

func TestValidateAccessEndpoint_RejectsMalformedPayload(t *testing.T) {
	srv := newTestServer(nil, nil, nil, nil)

	rec := doJSON(t, srv, http.MethodPost, "/v1/lending/access/validate",
		`{"client_id":"uuid-1"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompareClientEndpoint_PhoneHeuristic(t *testing.T) {
	reconcile := &stubReconcile{result: lending.ReconcileResult{Success: true}}
	srv := newTestServer(nil, reconcile, nil, nil)

	rec := doJSON(t, srv, http.MethodPost, "/v1/clients/compare", `{"data":"0984807373"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0984807373", reconcile.gotData)
	assert.True(t, reconcile.gotIsMsisdn, "ten digits read as a phone number")
	assert.Equal(t, "Login", reconcile.gotProcess)
}

func TestCompareClientEndpoint_ShortIdentifierIsExternalID(t *testing.T) {
	reconcile := &stubReconcile{}
	srv := newTestServer(nil, reconcile, nil, nil)

	rec := doJSON(t, srv, http.MethodPost, "/v1/clients/compare",
		`{"data":"2147","process":"PreApproved"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, reconcile.gotIsMsisdn)
	assert.Equal(t, "PreApproved", reconcile.gotProcess)
}

func TestCompareClientEndpoint_ExplicitFlagOverridesHeuristic(t *testing.T) {
	reconcile := &stubReconcile{}
	srv := newTestServer(nil, reconcile, nil, nil)

	rec := doJSON(t, srv, http.MethodPost, "/v1/clients/compare",
		`{"data":"0984807373","is_msisdn":false}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, reconcile.gotIsMsisdn)
}

func TestRegisterSMSEndpoint(t *testing.T) {
	sms := &stubSMS{ok: true}
	srv := newTestServer(nil, nil, sms, nil)

	rec := doJSON(t, srv, http.MethodPost, "/v1/notifications/sms",
		`{"client_id":"uuid-1","phone_number":"595961316361","sms_template_id":"1"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, sms.got, 1)
	assert.Equal(t, "1", sms.got[0].TemplateID)
}

func TestRegisterSMSEndpoint_FailureMapsToBadGateway(t *testing.T) {
	srv := newTestServer(nil, nil, &stubSMS{ok: false}, nil)

	rec := doJSON(t, srv, http.MethodPost, "/v1/notifications/sms",
		`{"client_id":"uuid-1","phone_number":"595961316361","sms_template_id":"1"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestMovementsEndpoint(t *testing.T) {
	movements := &stubMovements{rows: []dynamo.Record{
		{"ClientId": "uuid-1", "Movement": "OFFER_CREATED"},
	}}
	srv := newTestServer(nil, nil, nil, movements)

	req := httptest.NewRequest(http.MethodGet, "/v1/clients/uuid-1/movements", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(1), body["count"])
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
