// Package walker implements the bounded breadth-first traversal of the
// shareholding graph. It expands corporate holders into further registry
// lookups, accumulates multiplicative effective percentages along each chain,
// and emits an occurrence event for every individual shareholder it finds.
package walker

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/consciencex/lhb-ubo/internal/registry"
	"github.com/consciencex/lhb-ubo/internal/ubo/models"
)

// DefaultMaxDepth bounds traversals when the caller does not choose one.
const DefaultMaxDepth = 4

// Options tune one traversal run.
type Options struct {
	// MaxDepth bounds how many company tiers are expanded. Depth counts
	// companies, so a chain of N nested holding companies needs MaxDepth >= N+1
	// to reach the individuals at the bottom.
	MaxDepth int
	// LookupBudget caps total registry lookups across the run. Zero means
	// unlimited. Exhausting the budget ends the walk like depth exhaustion
	// does; it is not an error.
	LookupBudget int
	// Concurrency > 1 runs lookups for tasks of the same generation in
	// parallel. Aggregation is commutative, so result totals are unaffected.
	Concurrency int
}

// Result is everything one traversal produced.
type Result struct {
	Hierarchy   map[string]*models.HierarchyNode
	Occurrences []models.PersonOccurrence
	Stats       models.WalkStats
}

// Walker traverses ownership graphs through a registry lookup port.
type Walker struct {
	lookup registry.Lookup
	logger *slog.Logger
}

// New builds a Walker over the given lookup port.
func New(lookup registry.Lookup, logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Walker{lookup: lookup, logger: logger}
}

type walkState struct {
	mu          sync.Mutex
	visited     map[string]struct{}
	hierarchy   map[string]*models.HierarchyNode
	occurrences []models.PersonOccurrence
	stats       models.WalkStats
}

// Walk runs one bounded BFS from rootID. Soft lookup failures abandon only
// the subtree below the failed company and are counted in the stats; a fatal
// lookup error (missing credentials, rejected key) aborts the whole walk.
func (w *Walker) Walk(ctx context.Context, rootID string, opts Options) (*Result, error) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}

	st := &walkState{
		visited:   make(map[string]struct{}),
		hierarchy: make(map[string]*models.HierarchyNode),
	}

	queue := []models.TraversalTask{{CompanyID: rootID, CumulativePercent: 100.0, Depth: 0}}

	// Children always land one tier below every task currently queued, so the
	// queue holds exactly one generation at a time and each generation can be
	// expanded in parallel without reordering the BFS.
	for len(queue) > 0 {
		generation := queue
		queue = nil

		if opts.Concurrency <= 1 {
			for _, task := range generation {
				children, err := w.expand(ctx, task, opts, st)
				if err != nil {
					return nil, err
				}
				queue = append(queue, children...)
			}
			continue
		}

		var nextMu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Concurrency)
		for _, task := range generation {
			g.Go(func() error {
				children, err := w.expand(gctx, task, opts, st)
				if err != nil {
					return err
				}
				nextMu.Lock()
				queue = append(queue, children...)
				nextMu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	return &Result{
		Hierarchy:   st.hierarchy,
		Occurrences: st.occurrences,
		Stats:       st.stats,
	}, nil
}

// expand processes one task: the visited check-and-mark happens here, at pop
// time, so two tasks for the same company enqueued before either runs still
// expand only once.
func (w *Walker) expand(ctx context.Context, task models.TraversalTask, opts Options, st *walkState) ([]models.TraversalTask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if task.Depth >= opts.MaxDepth {
		w.logger.DebugContext(ctx, "max depth reached, not expanding",
			"company_id", task.CompanyID, "depth", task.Depth)
		return nil, nil
	}

	st.mu.Lock()
	if _, seen := st.visited[task.CompanyID]; seen {
		st.mu.Unlock()
		return nil, nil
	}
	st.visited[task.CompanyID] = struct{}{}
	if opts.LookupBudget > 0 && st.stats.LookupCount >= opts.LookupBudget {
		st.mu.Unlock()
		w.logger.WarnContext(ctx, "lookup budget exhausted, not expanding",
			"company_id", task.CompanyID, "budget", opts.LookupBudget)
		return nil, nil
	}
	st.stats.LookupCount++
	st.mu.Unlock()

	record, err := w.lookup.Lookup(ctx, task.CompanyID)
	if err != nil {
		if registry.IsFatal(err) {
			return nil, err
		}
		category := string(registry.CategoryOf(err))
		st.mu.Lock()
		st.stats.FailedLookups++
		st.stats.FailedCompanyIDs = append(st.stats.FailedCompanyIDs, task.CompanyID)
		if st.stats.FailureCategories == nil {
			st.stats.FailureCategories = make(map[string]int)
		}
		st.stats.FailureCategories[category]++
		st.mu.Unlock()
		w.logger.WarnContext(ctx, "lookup failed, abandoning subtree",
			"company_id", task.CompanyID,
			"category", category,
			"error", err,
		)
		return nil, nil
	}

	node := &models.HierarchyNode{
		RegistrationID:    task.CompanyID,
		Name:              record.DisplayName(),
		NameLocal:         record.NameTH,
		BusinessType:      record.BusinessType,
		Status:            record.Status,
		Capital:           record.Capital,
		RegisteredDate:    record.RegisteredDate,
		Depth:             task.Depth,
		CumulativePercent: task.CumulativePercent,
		Directors:         record.Directors,
	}

	var (
		children    []models.TraversalTask
		occurrences []models.PersonOccurrence
	)
	for _, sh := range record.Shareholders {
		effective := task.CumulativePercent / 100.0 * sh.Percent
		node.Shareholders = append(node.Shareholders, models.AnnotatedShareholder{
			Shareholder:      sh,
			EffectivePercent: effective,
		})

		step := models.PathStep{
			EntityID:     sh.CorporateID,
			EntityName:   sh.DisplayName,
			SharePercent: sh.Percent,
		}
		if step.EntityID == "" {
			step.EntityID = sh.DisplayName
		}

		switch {
		case sh.Kind == registry.HolderPerson && sh.DisplayName != "":
			// Individuals are leaves; they never cause further traversal.
			occurrences = append(occurrences, models.PersonOccurrence{
				Name:             sh.DisplayName,
				EffectivePercent: effective,
				Path:             appendStep(task.PathChain, step),
				Nationality:      sh.Nationality,
				IsDirector:       sh.IsDirector(),
			})
		case sh.Kind == registry.HolderCorporate && sh.CorporateID != "":
			// Enqueued regardless of the visited set: the check happens at pop
			// time, and every path still contributes its percentage to person
			// occurrences recorded along the way.
			children = append(children, models.TraversalTask{
				CompanyID:         sh.CorporateID,
				CumulativePercent: effective,
				Depth:             task.Depth + 1,
				PathChain:         appendStep(task.PathChain, step),
			})
		case sh.Kind == registry.HolderCorporate:
			// No registration id to follow: recorded for display, not expanded.
			w.logger.DebugContext(ctx, "corporate holder without registration id",
				"company_id", task.CompanyID, "holder", sh.DisplayName)
		}
	}

	st.mu.Lock()
	st.stats.CompaniesChecked++
	if task.Depth > st.stats.MaxDepthReached {
		st.stats.MaxDepthReached = task.Depth
	}
	if _, exists := st.hierarchy[task.CompanyID]; !exists {
		st.hierarchy[task.CompanyID] = node
	}
	st.occurrences = append(st.occurrences, occurrences...)
	st.mu.Unlock()

	return children, nil
}

// appendStep extends a path chain without aliasing the parent task's slice.
func appendStep(chain []models.PathStep, step models.PathStep) []models.PathStep {
	out := make([]models.PathStep, 0, len(chain)+1)
	out = append(out, chain...)
	return append(out, step)
}
