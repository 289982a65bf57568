package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/consciencex/lhb-ubo/internal/ubo/models"
	"github.com/consciencex/lhb-ubo/pkg/platform/sentinel"
)

// PostgresStore persists screening runs in PostgreSQL. The full result is
// stored as a JSONB payload; the columns queried on are broken out.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed run store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the screening_runs table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS screening_runs (
			run_id            TEXT PRIMARY KEY,
			registration_id   TEXT NOT NULL,
			compliance_status TEXT NOT NULL,
			risk_level        TEXT NOT NULL,
			result            JSONB NOT NULL,
			started_at        TIMESTAMPTZ NOT NULL,
			completed_at      TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS screening_runs_registration_id_idx
			ON screening_runs (registration_id, started_at DESC)
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("migrate screening_runs: %w", err)
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, result *models.ScreeningResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal screening result: %w", err)
	}

	query := `
		INSERT INTO screening_runs (
			run_id, registration_id, compliance_status, risk_level,
			result, started_at, completed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (run_id) DO UPDATE SET
			compliance_status = EXCLUDED.compliance_status,
			risk_level        = EXCLUDED.risk_level,
			result            = EXCLUDED.result,
			completed_at      = EXCLUDED.completed_at
	`
	_, err = s.db.ExecContext(ctx, query,
		result.RunID,
		result.RegistrationID,
		string(result.ComplianceStatus),
		string(result.RiskLevel),
		payload,
		result.StartedAt,
		result.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert screening run: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, runID string) (*models.ScreeningResult, error) {
	query := `SELECT result FROM screening_runs WHERE run_id = $1`

	var payload []byte
	err := s.db.QueryRowContext(ctx, query, runID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query screening run: %w", err)
	}

	var result models.ScreeningResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("unmarshal screening result: %w", err)
	}
	return &result, nil
}

func (s *PostgresStore) ListByCompany(ctx context.Context, registrationID string) ([]*models.ScreeningResult, error) {
	query := `
		SELECT result FROM screening_runs
		WHERE registration_id = $1
		ORDER BY started_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, registrationID)
	if err != nil {
		return nil, fmt.Errorf("query screening runs: %w", err)
	}
	defer rows.Close()

	var results []*models.ScreeningResult
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan screening run: %w", err)
		}
		var result models.ScreeningResult
		if err := json.Unmarshal(payload, &result); err != nil {
			return nil, fmt.Errorf("unmarshal screening result: %w", err)
		}
		results = append(results, &result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate screening runs: %w", err)
	}
	return results, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM screening_runs`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count screening runs: %w", err)
	}
	return count, nil
}
