package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/consciencex/lhb-ubo/internal/audit"
	"github.com/consciencex/lhb-ubo/internal/registry"
	"github.com/consciencex/lhb-ubo/internal/registry/mocks"
	"github.com/consciencex/lhb-ubo/internal/registry/registrytest"
	"github.com/consciencex/lhb-ubo/internal/ubo/models"
	"github.com/consciencex/lhb-ubo/internal/ubo/store"
	dErrors "github.com/consciencex/lhb-ubo/pkg/domain-errors"
)

const rootID = "0105500000011"

func newService(lookup registry.Lookup, opts ...Option) (*Service, *store.MemoryStore) {
	runs := store.NewMemory()
	return New(lookup, runs, Defaults{MaxDepth: 7, Threshold: 15.0}, opts...), runs
}

func TestScreen_EndToEnd(t *testing.T) {
	// Root owns a chain of fully-owned intermediates; at the fifth tier an
	// individual holds 95% directly.
	chain := []string{rootID, "0105500000022", "0105500000033", "0105500000044", "0105500000055", "0105500000066"}
	stub := registrytest.NewStub()
	for i := 0; i < len(chain)-1; i++ {
		stub.Add(registrytest.Company(chain[i], "TIER",
			registrytest.Corporate("NEXT TIER", chain[i+1], 100)))
	}
	stub.Add(registrytest.Company(chain[len(chain)-1], "BOTTOM TIER",
		registrytest.Person("Richard Zhang", "Singaporean", 95)))

	svc, runs := newService(stub)

	result, err := svc.Screen(context.Background(), ScreenRequest{RegistrationID: rootID})
	require.NoError(t, err)

	require.Len(t, result.FinalUBOs, 1)
	owner := result.FinalUBOs[0]
	assert.Equal(t, "Richard Zhang", owner.Name)
	assert.InDelta(t, 95.0, owner.TotalPercentage, 1e-6)
	assert.Equal(t, "Singaporean", owner.Nationality)

	assert.Equal(t, models.ComplianceCompliant, result.ComplianceStatus)
	assert.Equal(t, models.RiskHigh, result.RiskLevel)
	assert.Equal(t, 6, result.Stats.CompaniesChecked)
	assert.Equal(t, 5, result.Stats.MaxDepthReached)
	assert.Equal(t, "Screen against AMLO watchlist", result.Checklist.FinalResult.NextStep)

	// The run is persisted under its id.
	stored, err := runs.FindByID(context.Background(), result.RunID)
	require.NoError(t, err)
	assert.Equal(t, result.RegistrationID, stored.RegistrationID)
}

func TestScreen_NoOwnersIsValidNonCompliantRun(t *testing.T) {
	stub := registrytest.NewStub().
		Add(registrytest.Company(rootID, "DISPERSED HOLDINGS",
			registrytest.Person("SMALL HOLDER A", "", 5),
			registrytest.Person("SMALL HOLDER B", "", 5)))

	svc, _ := newService(stub)

	result, err := svc.Screen(context.Background(), ScreenRequest{RegistrationID: rootID})
	require.NoError(t, err)

	assert.Empty(t, result.FinalUBOs)
	assert.Len(t, result.AllCandidates, 2)
	assert.Equal(t, models.ComplianceNonCompliant, result.ComplianceStatus)
	assert.Equal(t, "Reject onboarding", result.Checklist.FinalResult.NextStep)
	assert.Equal(t, "DISPERSED HOLDINGS", result.CompanyDisplayName)
}

func TestScreen_ValidatesRegistrationID(t *testing.T) {
	svc, _ := newService(registrytest.NewStub())

	_, err := svc.Screen(context.Background(), ScreenRequest{})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestScreen_FatalLookupAbortsAndAudits(t *testing.T) {
	ctrl := gomock.NewController(t)
	lookup := mocks.NewMockLookup(ctrl)
	lookup.EXPECT().
		Lookup(gomock.Any(), rootID).
		Return(nil, registry.NewLookupError(registry.ErrorAuthentication, rootID,
			"api key not configured", registry.ErrFatalConfig))

	trail := audit.NewInMemoryStore()
	svc, runs := newService(lookup, WithAuditPublisher(audit.NewPublisher(trail)))

	_, err := svc.Screen(context.Background(), ScreenRequest{RegistrationID: rootID})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))

	count, err := runs.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)

	events, err := trail.ListByCompany(context.Background(), rootID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, audit.ActionScreeningStarted, events[0].Action)
	assert.Equal(t, audit.ActionScreeningFailed, events[1].Action)
}

func TestScreen_SoftFailureStillCompletes(t *testing.T) {
	stub := registrytest.NewStub().
		Add(registrytest.Company(rootID, "ROOT",
			registrytest.Corporate("BROKEN", "0105500000022", 50),
			registrytest.Person("DIRECT OWNER", "Thai", 40))).
		FailWith("0105500000022", registry.NewLookupError(registry.ErrorTimeout, "0105500000022", "upstream timeout", nil))

	trail := audit.NewInMemoryStore()
	svc, _ := newService(stub, WithAuditPublisher(audit.NewPublisher(trail)))

	result, err := svc.Screen(context.Background(), ScreenRequest{RegistrationID: rootID})
	require.NoError(t, err)

	require.Len(t, result.FinalUBOs, 1)
	assert.Equal(t, "DIRECT OWNER", result.FinalUBOs[0].Name)
	assert.Equal(t, 1, result.Stats.FailedLookups)

	events, err := trail.ListByCompany(context.Background(), rootID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, audit.ActionScreeningCompleted, events[1].Action)
	assert.Equal(t, string(models.ComplianceCompliant), events[1].Outcome)
}

func TestRun_NotFound(t *testing.T) {
	svc, _ := newService(registrytest.NewStub())

	_, err := svc.Run(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestCompanyRecord_MapsLookupErrors(t *testing.T) {
	cases := []struct {
		name     string
		category registry.ErrorCategory
		want     dErrors.Code
	}{
		{"not found", registry.ErrorNotFound, dErrors.CodeNotFound},
		{"timeout", registry.ErrorTimeout, dErrors.CodeUnavailable},
		{"outage", registry.ErrorProviderOutage, dErrors.CodeUnavailable},
		{"bad data", registry.ErrorBadData, dErrors.CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := registrytest.NewStub().
				FailWith(rootID, registry.NewLookupError(tc.category, rootID, "scripted", nil))
			svc, _ := newService(stub)

			_, err := svc.CompanyRecord(context.Background(), rootID)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, tc.want))
		})
	}
}

func TestCompanyRecord_PassesThrough(t *testing.T) {
	stub := registrytest.NewStub().
		Add(registrytest.Company(rootID, "ACME HOLDINGS",
			registrytest.Person("SOMCHAI RATANAKORN", "Thai", 100)))
	svc, _ := newService(stub)

	record, err := svc.CompanyRecord(context.Background(), rootID)
	require.NoError(t, err)
	assert.Equal(t, "ACME HOLDINGS", record.NameEN)
	require.Len(t, record.Shareholders, 1)
}
