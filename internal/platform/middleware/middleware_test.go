package middleware

import (
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consciencex/lhb-ubo/pkg/requestcontext"
	"github.com/consciencex/lhb-ubo/pkg/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func okHandler(onRequest func(r *http.Request)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if onRequest != nil {
			onRequest(r)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	var seen string
	handler := RequestID(okHandler(func(r *http.Request) {
		seen = requestcontext.RequestID(r.Context())
	}))

	rr := testutil.DoRequest(handler, testutil.NewRequest(t, http.MethodGet, "/screenings/x"))

	testutil.AssertStatusOK(t, rr)
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get("X-Request-ID"))
}

func TestRequestID_HonorsUpstreamHeader(t *testing.T) {
	var seen string
	handler := RequestID(okHandler(func(r *http.Request) {
		seen = requestcontext.RequestID(r.Context())
	}))

	req := testutil.NewRequest(t, http.MethodGet, "/screenings/x")
	req.Header.Set("X-Request-ID", "upstream-id")
	rr := testutil.DoRequest(handler, req)

	testutil.AssertStatusOK(t, rr)
	assert.Equal(t, "upstream-id", seen)
}

func TestRequestTime_StampsContext(t *testing.T) {
	var first, second time.Time
	handler := RequestTime(okHandler(func(r *http.Request) {
		first = requestcontext.Now(r.Context())
		time.Sleep(time.Millisecond)
		second = requestcontext.Now(r.Context())
	}))

	testutil.DoRequest(handler, testutil.NewRequest(t, http.MethodGet, "/"))

	require.False(t, first.IsZero())
	assert.Equal(t, first, second, "every read within a request should see the same time")
}

type staticValidator struct {
	callerID string
	err      error
}

func (v staticValidator) ValidateCaller(string) (string, error) {
	return v.callerID, v.err
}

func TestRequireAuth_MissingToken(t *testing.T) {
	handler := RequireAuth(staticValidator{callerID: "svc"}, discardLogger())(okHandler(nil))

	rr := testutil.DoRequest(handler, testutil.NewRequest(t, http.MethodPost, "/screenings"))

	testutil.AssertErrorEnvelope(t, rr, http.StatusUnauthorized, "unauthorized")
}

func TestRequireAuth_ValidTokenSetsCaller(t *testing.T) {
	var caller string
	handler := RequireAuth(staticValidator{callerID: "onboarding-service"}, discardLogger())(
		okHandler(func(r *http.Request) {
			caller = requestcontext.CallerID(r.Context())
		}))

	req := testutil.NewRequest(t, http.MethodPost, "/screenings")
	req.Header.Set("Authorization", "Bearer any-token")
	rr := testutil.DoRequest(handler, req)

	testutil.AssertStatusOK(t, rr)
	assert.Equal(t, "onboarding-service", caller)
}

func TestRequireAdminToken(t *testing.T) {
	cases := []struct {
		name     string
		expected string
		sent     string
		status   int
	}{
		{"matching token passes", "secret", "secret", http.StatusOK},
		{"wrong token rejected", "secret", "wrong", http.StatusForbidden},
		{"unconfigured token always rejects", "", "", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := RequireAdminToken(tc.expected, discardLogger())(okHandler(nil))

			req := testutil.NewRequest(t, http.MethodGet, "/admin/companies/x/audit")
			if tc.sent != "" {
				req.Header.Set("X-Admin-Token", tc.sent)
			}
			rr := testutil.DoRequest(handler, req)

			require.Equal(t, tc.status, rr.Code)
		})
	}
}
