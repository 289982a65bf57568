// Package aggregate merges person occurrences from a traversal into
// beneficial-owner candidates.
package aggregate

import (
	"github.com/consciencex/lhb-ubo/internal/ubo/models"
)

// Merge folds occurrences into candidates keyed by exact display-name
// equality. Totals are plain sums over every contributing path: no
// deduplication and no cap at 100%, even when source data would push a sum
// past it. Applying business meaning to the numbers is the classifier's job.
func Merge(occurrences []models.PersonOccurrence) map[string]*models.Candidate {
	candidates := make(map[string]*models.Candidate)

	for _, occ := range occurrences {
		candidate, ok := candidates[occ.Name]
		if !ok {
			candidate = &models.Candidate{Name: occ.Name}
			candidates[occ.Name] = candidate
		}

		candidate.TotalPercentage += occ.EffectivePercent

		ids := make([]string, len(occ.Path))
		factors := make([]float64, len(occ.Path))
		names := make([]string, len(occ.Path))
		for i, step := range occ.Path {
			ids[i] = step.EntityID
			factors[i] = step.SharePercent
			names[i] = step.EntityName
		}
		candidate.Paths = append(candidate.Paths, ids)
		candidate.PathDetails = append(candidate.PathDetails, models.PathDetail{
			Factors:     factors,
			Names:       names,
			Result:      occ.EffectivePercent,
			Calculation: models.FormatCalculation(factors, occ.EffectivePercent),
		})

		if occ.IsDirector {
			candidate.IsDirector = true
		}
		// First non-empty nationality wins; later sightings never overwrite.
		if candidate.Nationality == "" && occ.Nationality != "" {
			candidate.Nationality = occ.Nationality
		}
	}

	return candidates
}
