// Package models defines the domain types for UBO screening: traversal
// state, ownership hierarchy snapshots, beneficial-owner candidates and the
// final screening result.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/consciencex/lhb-ubo/internal/registry"
)

// RiskLevel is the screening risk classification.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// ComplianceStatus is the outcome of a screening run.
type ComplianceStatus string

const (
	ComplianceCompliant      ComplianceStatus = "COMPLIANT"
	ComplianceNonCompliant   ComplianceStatus = "NON_COMPLIANT"
	ComplianceReviewRequired ComplianceStatus = "REVIEW_REQUIRED"
)

// PathStep is one hop in an ownership chain: the entity at that tier and the
// direct share it holds in its parent.
type PathStep struct {
	EntityID     string  `json:"entity_id"`
	EntityName   string  `json:"entity_name"`
	SharePercent float64 `json:"share_percent"`
}

// TraversalTask is one pending unit of walk work. CumulativePercent is the
// effective ownership the root holds in this company through the chain that
// enqueued it (100.0 at the root).
type TraversalTask struct {
	CompanyID         string
	CumulativePercent float64
	Depth             int
	PathChain         []PathStep
}

// AnnotatedShareholder is a direct holding annotated with the effective
// percentage it represents of the root company.
type AnnotatedShareholder struct {
	registry.Shareholder
	EffectivePercent float64 `json:"effective_percent"`
}

// HierarchyNode is the per-company snapshot persisted for each visited
// company. A company appears at most once in the hierarchy; the first visit
// wins and later encounters are skipped.
type HierarchyNode struct {
	RegistrationID    string                 `json:"registration_id"`
	Name              string                 `json:"name"`
	NameLocal         string                 `json:"name_local,omitempty"`
	BusinessType      string                 `json:"business_type,omitempty"`
	Status            string                 `json:"status,omitempty"`
	Capital           string                 `json:"capital,omitempty"`
	RegisteredDate    string                 `json:"registered_date,omitempty"`
	Depth             int                    `json:"depth"`
	CumulativePercent float64                `json:"cumulative_percent"`
	Shareholders      []AnnotatedShareholder `json:"shareholders"`
	Directors         []registry.Director    `json:"directors,omitempty"`
}

// PersonOccurrence is one sighting of an individual shareholder anywhere in
// the traversal, carrying the full chain that led to it.
type PersonOccurrence struct {
	Name             string     `json:"name"`
	EffectivePercent float64    `json:"effective_percent"`
	Path             []PathStep `json:"path"`
	Nationality      string     `json:"nationality,omitempty"`
	IsDirector       bool       `json:"is_director"`
}

// PathDetail explains one contributing chain of a candidate: the per-hop
// direct percentages, the entity names, and the multiplicative result.
type PathDetail struct {
	Factors     []float64 `json:"factors"`
	Names       []string  `json:"names"`
	Result      float64   `json:"result"`
	Calculation string    `json:"calculation"`
}

// FormatCalculation renders the audit string for one chain, e.g.
// "50.00% × 40.00% = 6.000%".
func FormatCalculation(factors []float64, result float64) string {
	parts := make([]string, len(factors))
	for i, f := range factors {
		parts[i] = fmt.Sprintf("%.2f%%", f)
	}
	return strings.Join(parts, " × ") + fmt.Sprintf(" = %.3f%%", result)
}

// Candidate is a beneficial-owner candidate aggregated across every path in
// which the same display name appears as an individual shareholder.
type Candidate struct {
	Name            string       `json:"name"`
	TotalPercentage float64      `json:"total_percentage"`
	Paths           [][]string   `json:"paths"`
	PathDetails     []PathDetail `json:"path_details"`
	Nationality     string       `json:"nationality,omitempty"`
	IsDirector      bool         `json:"is_director"`
}

// WalkStats summarizes one traversal for observability.
type WalkStats struct {
	CompaniesChecked  int            `json:"companies_checked"`
	MaxDepthReached   int            `json:"max_depth_reached"`
	LookupCount       int            `json:"lookup_count"`
	FailedLookups     int            `json:"failed_lookups"`
	FailedCompanyIDs  []string       `json:"failed_company_ids,omitempty"`
	FailureCategories map[string]int `json:"failure_categories,omitempty"`
}

// Checklist is the compliance summary assembled alongside the classification.
type Checklist struct {
	Method1Check   Method1Check   `json:"method_1_check"`
	Method2Check   Method2Check   `json:"method_2_check"`
	Method3Check   Method3Check   `json:"method_3_check"`
	ExemptionCheck ExemptionCheck `json:"exemption_check"`
	FinalResult    FinalResult    `json:"final_result"`
}

// Method1Check reports the shareholding-threshold method.
type Method1Check struct {
	Checked          bool `json:"checked"`
	FoundUBO         bool `json:"found_ubo"`
	CompaniesChecked int  `json:"companies_checked"`
	MaxLevelReached  int  `json:"max_level_reached"`
}

// Method2Check reports whether a manual control check is required.
type Method2Check struct {
	Checked  bool   `json:"checked"`
	Required bool   `json:"required"`
	Note     string `json:"note"`
}

// Method3Check reports the senior-officer escalation path.
type Method3Check struct {
	Checked        bool   `json:"checked"`
	DirectorsFound int    `json:"directors_found"`
	Note           string `json:"note"`
}

// ExemptionCheck reports regulatory exemptions (none apply today).
type ExemptionCheck struct {
	Checked  bool   `json:"checked"`
	IsExempt bool   `json:"is_exempt"`
	Reason   string `json:"reason"`
}

// FinalResult is the recommended next action.
type FinalResult struct {
	UBOIdentified bool   `json:"ubo_identified"`
	Action        string `json:"action"`
	NextStep      string `json:"next_step"`
}

// ScreeningResult is the full outcome of one screening run.
type ScreeningResult struct {
	RunID              string                    `json:"run_id"`
	RegistrationID     string                    `json:"registration_id"`
	CompanyDisplayName string                    `json:"company_display_name"`
	FinalUBOs          []Candidate               `json:"final_ubos"`
	AllCandidates      []Candidate               `json:"all_candidates"`
	Hierarchy          map[string]*HierarchyNode `json:"hierarchy"`
	Checklist          Checklist                 `json:"checklist"`
	RiskLevel          RiskLevel                 `json:"risk_level"`
	ComplianceStatus   ComplianceStatus          `json:"compliance_status"`
	Threshold          float64                   `json:"threshold"`
	MaxDepth           int                       `json:"max_depth"`
	Stats              WalkStats                 `json:"stats"`
	StartedAt          time.Time                 `json:"started_at"`
	CompletedAt        time.Time                 `json:"completed_at"`
}
