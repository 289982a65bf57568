package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/consciencex/lhb-ubo/internal/ubo/models"
	"github.com/consciencex/lhb-ubo/pkg/platform/sentinel"
)

func run(id, registrationID string, startedAt time.Time) *models.ScreeningResult {
	return &models.ScreeningResult{
		RunID:            id,
		RegistrationID:   registrationID,
		RiskLevel:        models.RiskHigh,
		ComplianceStatus: models.ComplianceCompliant,
		StartedAt:        startedAt,
		CompletedAt:      startedAt.Add(time.Second),
	}
}

func TestMemoryStore_SaveAndFind(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	saved := run("run-1", "0105500000011", time.Now())
	require.NoError(t, s.Save(ctx, saved))

	found, err := s.FindByID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, saved, found)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMemoryStore_FindUnknownRun(t *testing.T) {
	s := NewMemory()

	_, err := s.FindByID(context.Background(), "missing")
	require.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestMemoryStore_ListByCompanyNewestFirst(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	base := time.Now()

	require.NoError(t, s.Save(ctx, run("run-old", "0105500000011", base.Add(-time.Hour))))
	require.NoError(t, s.Save(ctx, run("run-new", "0105500000011", base)))
	require.NoError(t, s.Save(ctx, run("run-other", "0105500000099", base)))

	results, err := s.ListByCompany(ctx, "0105500000011")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "run-new", results[0].RunID)
	assert.Equal(t, "run-old", results[1].RunID)
}
