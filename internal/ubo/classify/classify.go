// Package classify filters aggregated candidates against the regulatory
// ownership threshold and assembles the reported screening outcome.
package classify

import (
	"sort"
	"strings"

	"github.com/consciencex/lhb-ubo/internal/ubo/models"
)

// DefaultThreshold is the shareholding percentage at and above which an
// individual is a beneficial owner (Method 1).
const DefaultThreshold = 15.0

// Input carries everything the classifier needs from a finished traversal.
type Input struct {
	Candidates map[string]*models.Candidate
	Hierarchy  map[string]*models.HierarchyNode
	Stats      models.WalkStats
	Threshold  float64
}

// Output is the classified slice of a screening result: the final owners,
// the full pre-threshold candidate list for audit, the checklist and the
// risk/compliance labels. The hierarchy passes through untouched.
type Output struct {
	FinalUBOs        []models.Candidate
	AllCandidates    []models.Candidate
	Checklist        models.Checklist
	RiskLevel        models.RiskLevel
	ComplianceStatus models.ComplianceStatus
}

// Classify applies the inclusive threshold filter and derives the fixed risk
// policy: risk is always HIGH, and the run is COMPLIANT exactly when at least
// one beneficial owner was identified.
func Classify(in Input) Output {
	threshold := in.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	all := make([]models.Candidate, 0, len(in.Candidates))
	var final []models.Candidate
	for _, candidate := range in.Candidates {
		all = append(all, *candidate)
		if candidate.TotalPercentage >= threshold {
			owner := *candidate
			owner.Name = Sanitize(owner.Name, "Individual Shareholder")
			final = append(final, owner)
		}
	}

	// Deterministic output: descending total, name as tiebreaker.
	byStake := func(list []models.Candidate) func(i, j int) bool {
		return func(i, j int) bool {
			if list[i].TotalPercentage != list[j].TotalPercentage {
				return list[i].TotalPercentage > list[j].TotalPercentage
			}
			return list[i].Name < list[j].Name
		}
	}
	sort.Slice(all, byStake(all))
	sort.Slice(final, byStake(final))

	found := len(final) > 0

	status := models.ComplianceNonCompliant
	if found {
		status = models.ComplianceCompliant
	}

	return Output{
		FinalUBOs:        final,
		AllCandidates:    all,
		Checklist:        buildChecklist(found, in.Hierarchy, in.Stats),
		RiskLevel:        models.RiskHigh,
		ComplianceStatus: status,
	}
}

func buildChecklist(found bool, hierarchy map[string]*models.HierarchyNode, stats models.WalkStats) models.Checklist {
	directors := 0
	for _, node := range hierarchy {
		directors += len(node.Directors)
	}

	action, nextStep := "Proceed", "Screen against AMLO watchlist"
	if !found {
		action, nextStep = "Reject customer", "Reject onboarding"
	}

	return models.Checklist{
		Method1Check: models.Method1Check{
			Checked:          true,
			FoundUBO:         found,
			CompaniesChecked: stats.CompaniesChecked,
			MaxLevelReached:  stats.MaxDepthReached,
		},
		Method2Check: models.Method2Check{
			Checked:  true,
			Required: !found,
			Note:     "Manual control check required if no UBO is identified",
		},
		Method3Check: models.Method3Check{
			Checked:        false,
			DirectorsFound: directors,
			Note:           "Consider senior management (MD/CEO) if escalation is needed",
		},
		ExemptionCheck: models.ExemptionCheck{
			Checked:  true,
			IsExempt: false,
		},
		FinalResult: models.FinalResult{
			UBOIdentified: found,
			Action:        action,
			NextStep:      nextStep,
		},
	}
}

// Sanitize strips a label down to printable ASCII, falling back when nothing
// survives.
func Sanitize(text, fallback string) string {
	var b strings.Builder
	for _, r := range text {
		if r > 127 || r == '\n' || r == '\r' || r == '\t' {
			continue
		}
		b.WriteRune(r)
	}
	cleaned := strings.TrimSpace(b.String())
	if cleaned == "" {
		return fallback
	}
	return cleaned
}
