// Package service orchestrates screening runs: walk the ownership graph,
// aggregate individual shareholders into candidates, classify against the
// regulatory threshold, persist the run and emit the audit trail.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/consciencex/lhb-ubo/internal/audit"
	"github.com/consciencex/lhb-ubo/internal/registry"
	"github.com/consciencex/lhb-ubo/internal/ubo/aggregate"
	"github.com/consciencex/lhb-ubo/internal/ubo/classify"
	"github.com/consciencex/lhb-ubo/internal/ubo/metrics"
	"github.com/consciencex/lhb-ubo/internal/ubo/models"
	"github.com/consciencex/lhb-ubo/internal/ubo/store"
	"github.com/consciencex/lhb-ubo/internal/ubo/walker"
	dErrors "github.com/consciencex/lhb-ubo/pkg/domain-errors"
	"github.com/consciencex/lhb-ubo/pkg/platform/sentinel"
	"github.com/consciencex/lhb-ubo/pkg/requestcontext"
)

// Defaults tune screening runs when a request does not override them.
type Defaults struct {
	MaxDepth     int
	Threshold    float64
	LookupBudget int
	Concurrency  int
}

// ScreenRequest is one screening order. Zero-valued fields fall back to the
// service defaults.
type ScreenRequest struct {
	RegistrationID string
	MaxDepth       int
	Threshold      float64
}

// Service runs UBO screenings.
type Service struct {
	lookup   registry.Lookup
	runs     store.RunStore
	defaults Defaults

	logger  *slog.Logger
	metrics *metrics.Metrics
	audit   *audit.Publisher
	tracer  trace.Tracer
}

// Option configures optional service collaborators.
type Option func(*Service)

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithAuditPublisher attaches an audit publisher.
func WithAuditPublisher(p *audit.Publisher) Option {
	return func(s *Service) {
		s.audit = p
	}
}

// WithTracer attaches an OpenTelemetry tracer.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// New builds a screening service over the lookup port and run store.
func New(lookup registry.Lookup, runs store.RunStore, defaults Defaults, opts ...Option) *Service {
	if defaults.MaxDepth <= 0 {
		defaults.MaxDepth = walker.DefaultMaxDepth
	}
	if defaults.Threshold <= 0 {
		defaults.Threshold = classify.DefaultThreshold
	}

	s := &Service{
		lookup:   lookup,
		runs:     runs,
		defaults: defaults,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("lhb-ubo/screening")
	}
	return s
}

// Screen runs one full screening for a company and persists the result.
// Soft registry failures leave gaps in the hierarchy but still produce a
// valid result; fatal registry errors abort the run.
func (s *Service) Screen(ctx context.Context, req ScreenRequest) (*models.ScreeningResult, error) {
	if req.RegistrationID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "registration id is required")
	}
	maxDepth := req.MaxDepth
	if maxDepth <= 0 {
		maxDepth = s.defaults.MaxDepth
	}
	threshold := req.Threshold
	if threshold <= 0 {
		threshold = s.defaults.Threshold
	}

	runID := uuid.New().String()
	startedAt := requestcontext.Now(ctx)
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "ubo.screen",
		trace.WithAttributes(
			attribute.String("registration_id", req.RegistrationID),
			attribute.String("run_id", runID),
			attribute.Int("max_depth", maxDepth),
		))
	defer span.End()

	s.emitAudit(ctx, audit.Event{
		Action:         audit.ActionScreeningStarted,
		RunID:          runID,
		RegistrationID: req.RegistrationID,
		CallerID:       requestcontext.CallerID(ctx),
	})

	walkResult, err := walker.New(s.lookup, s.logger).Walk(ctx, req.RegistrationID, walker.Options{
		MaxDepth:     maxDepth,
		LookupBudget: s.defaults.LookupBudget,
		Concurrency:  s.defaults.Concurrency,
	})
	if err != nil {
		s.metrics.RecordFailure()
		s.emitAudit(ctx, audit.Event{
			Action:         audit.ActionScreeningFailed,
			RunID:          runID,
			RegistrationID: req.RegistrationID,
			CallerID:       requestcontext.CallerID(ctx),
			Detail:         err.Error(),
		})
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if registry.IsFatal(err) {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "registry credentials missing or rejected")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "traversal failed")
	}

	candidates := aggregate.Merge(walkResult.Occurrences)
	classified := classify.Classify(classify.Input{
		Candidates: candidates,
		Hierarchy:  walkResult.Hierarchy,
		Stats:      walkResult.Stats,
		Threshold:  threshold,
	})

	displayName := req.RegistrationID
	if node, ok := walkResult.Hierarchy[req.RegistrationID]; ok && node.Name != "" {
		displayName = node.Name
	}

	result := &models.ScreeningResult{
		RunID:              runID,
		RegistrationID:     req.RegistrationID,
		CompanyDisplayName: displayName,
		FinalUBOs:          classified.FinalUBOs,
		AllCandidates:      classified.AllCandidates,
		Hierarchy:          walkResult.Hierarchy,
		Checklist:          classified.Checklist,
		RiskLevel:          classified.RiskLevel,
		ComplianceStatus:   classified.ComplianceStatus,
		Threshold:          threshold,
		MaxDepth:           maxDepth,
		Stats:              walkResult.Stats,
		StartedAt:          startedAt,
		CompletedAt:        startedAt.Add(time.Since(start)),
	}

	if err := s.runs.Save(ctx, result); err != nil {
		s.metrics.RecordFailure()
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persist screening run")
	}

	for category, count := range walkResult.Stats.FailureCategories {
		s.metrics.RecordLookupFailures(category, count)
	}
	s.metrics.RecordRun(string(result.ComplianceStatus), result.Stats.CompaniesChecked, len(result.FinalUBOs), time.Since(start))

	s.emitAudit(ctx, audit.Event{
		Action:         audit.ActionScreeningCompleted,
		RunID:          runID,
		RegistrationID: req.RegistrationID,
		CallerID:       requestcontext.CallerID(ctx),
		Outcome:        string(result.ComplianceStatus),
	})

	s.logger.InfoContext(ctx, "screening run completed",
		"run_id", runID,
		"registration_id", req.RegistrationID,
		"compliance_status", string(result.ComplianceStatus),
		"final_ubos", len(result.FinalUBOs),
		"companies_checked", result.Stats.CompaniesChecked,
		"failed_lookups", result.Stats.FailedLookups,
	)

	return result, nil
}

// Run fetches one stored screening run.
func (s *Service) Run(ctx context.Context, runID string) (*models.ScreeningResult, error) {
	result, err := s.runs.FindByID(ctx, runID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "screening run not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load screening run")
	}
	return result, nil
}

// RunsForCompany lists stored runs for one company, newest first.
func (s *Service) RunsForCompany(ctx context.Context, registrationID string) ([]*models.ScreeningResult, error) {
	if registrationID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "registration id is required")
	}
	results, err := s.runs.ListByCompany(ctx, registrationID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list screening runs")
	}
	return results, nil
}

// CompanyRecord proxies a single registry lookup, mapping the lookup error
// taxonomy onto transport codes.
func (s *Service) CompanyRecord(ctx context.Context, registrationID string) (*registry.CompanyRecord, error) {
	if registrationID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "registration id is required")
	}
	record, err := s.lookup.Lookup(ctx, registrationID)
	if err != nil {
		switch registry.CategoryOf(err) {
		case registry.ErrorNotFound:
			return nil, dErrors.New(dErrors.CodeNotFound, "company not found")
		case registry.ErrorTimeout, registry.ErrorProviderOutage, registry.ErrorRateLimited:
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "registry unavailable")
		case registry.ErrorAuthentication:
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "registry credentials missing or rejected")
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "registry lookup failed")
		}
	}
	return record, nil
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			"action", string(event.Action), "run_id", event.RunID, "error", err)
	}
}
