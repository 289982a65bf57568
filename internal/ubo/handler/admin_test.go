package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consciencex/lhb-ubo/internal/audit"
	"github.com/consciencex/lhb-ubo/internal/platform/logger"
	"github.com/consciencex/lhb-ubo/pkg/testutil"
)

const adminToken = "admin-secret"

func newAdminRouter(t *testing.T, store audit.Store) chi.Router {
	t.Helper()

	r := chi.NewRouter()
	NewAdmin(audit.NewPublisher(store), adminToken, logger.New()).Register(r)
	return r
}

func TestAuditTrailEndpoint(t *testing.T) {
	store := audit.NewInMemoryStore()
	require.NoError(t, store.Append(context.Background(), audit.Event{
		Timestamp:      time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Action:         audit.ActionScreeningStarted,
		RunID:          "run-1",
		RegistrationID: "0105561234567",
	}))
	require.NoError(t, store.Append(context.Background(), audit.Event{
		Timestamp:      time.Date(2026, 3, 1, 9, 30, 2, 0, time.UTC),
		Action:         audit.ActionScreeningCompleted,
		RunID:          "run-1",
		RegistrationID: "0105561234567",
		Outcome:        "COMPLIANT",
	}))
	router := newAdminRouter(t, store)

	req := testutil.NewRequest(t, http.MethodGet, "/admin/companies/0105561234567/audit")
	req.Header.Set("X-Admin-Token", adminToken)
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusOK(t, rr)
	resp := testutil.DecodeResponse[map[string][]audit.Event](t, rr)
	events := (*resp)["events"]
	require.Len(t, events, 2)
	assert.Equal(t, audit.ActionScreeningStarted, events[0].Action)
	assert.Equal(t, "COMPLIANT", events[1].Outcome)
}

func TestAuditTrailEndpoint_EmptyTrailIsEmptyList(t *testing.T) {
	router := newAdminRouter(t, audit.NewInMemoryStore())

	req := testutil.NewRequest(t, http.MethodGet, "/admin/companies/unknown/audit")
	req.Header.Set("X-Admin-Token", adminToken)
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusOK(t, rr)
	resp := testutil.DecodeResponse[map[string][]audit.Event](t, rr)
	assert.Empty(t, (*resp)["events"])
}

func TestAuditTrailEndpoint_RequiresAdminToken(t *testing.T) {
	router := newAdminRouter(t, audit.NewInMemoryStore())

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/admin/companies/x/audit"))

	testutil.AssertErrorEnvelope(t, rr, http.StatusForbidden, "forbidden")
}
