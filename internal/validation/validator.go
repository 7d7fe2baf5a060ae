// =============================================================================
// FIDJI Converter - Validation Engine
// =============================================================================
//
// This module inspects a model.Container after a read (or before a write) and
// reports cross-reference problems the converter tolerates but a user should
// hear about:
//   - company -> property references with no matching asset
//   - leased units whose hash matches no unit of their property
//   - assets owned by no company (the writer cannot reach them)
//   - containers that do not hold exactly one period
//
// ERROR HANDLING:
//   - Issues are collected, not returned as errors
//   - Each issue carries a severity, a rule code and the entity path
//   - Only "error" issues make the result invalid
//
// =============================================================================

package validation

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ginjaninja78/fidji-converter/internal/model"
)

// =============================================================================
// VALIDATION ISSUE TYPES
// =============================================================================

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Rule codes.
const (
	RuleUnresolvedProperty   = "unresolved_property_reference"
	RuleUnresolvedLeasedUnit = "unresolved_leased_unit"
	RuleOrphanProperty       = "orphan_property"
	RulePeriodCount          = "period_count"
)

// Issue represents a single validation finding.
type Issue struct {
	Severity string
	Rule     string

	// Entity is a slash path locating the offending entity, for example
	// "company:C1/property:P9".
	Entity string

	Message string
}

// Error implements the error interface.
func (i *Issue) Error() string {
	return fmt.Sprintf("[%s] %s %s: %s", strings.ToUpper(i.Severity), i.Rule, i.Entity, i.Message)
}

// Result contains the results of validation.
type Result struct {
	// IsValid is true if there are no error issues.
	IsValid bool

	Issues       []*Issue
	ErrorCount   int
	WarningCount int
}

func (r *Result) add(severity, rule, entity, msg string) {
	r.Issues = append(r.Issues, &Issue{
		Severity: severity,
		Rule:     rule,
		Entity:   entity,
		Message:  msg,
	})
	if severity == SeverityError {
		r.ErrorCount++
		r.IsValid = false
	} else {
		r.WarningCount++
	}
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// Check validates a container.
//
// PARAMETERS:
//   - c: The container to inspect. It is not modified.
//   - assets: Every asset the reader accumulated, in document order. Assets
//     are only reachable through companies, so orphans can only be found
//     from this list. Pass nil to skip the orphan check.
//
// RETURNS:
//   - A Result listing every issue in a stable order.
func Check(c *model.Container, assets []*model.Property) *Result {
	result := &Result{IsValid: true}

	n := 0
	if c != nil {
		n = len(c.Periods)
	}
	if n != 1 {
		result.add(SeverityError, RulePeriodCount, "container",
			fmt.Sprintf("expected exactly one period, found %d", n))
		if n == 0 {
			return result
		}
	}

	owned := make(map[*model.Property]bool)
	for _, pid := range model.SortedKeys(c.Periods) {
		period := c.Periods[pid]
		if period == nil || period.Data == nil {
			continue
		}
		checkData(result, "period:"+pid, period.Data, owned)
	}

	for _, prop := range assets {
		if prop != nil && !owned[prop] {
			result.add(SeverityWarning, RuleOrphanProperty, "property:"+prop.ObjectIDSender,
				"asset is not referenced by any company and will not be written")
		}
	}

	return result
}

func checkData(result *Result, prefix string, data *model.Data, owned map[*model.Property]bool) {
	for _, cid := range model.SortedKeys(data.Companies) {
		company := data.Companies[cid]
		if company == nil {
			continue
		}
		companyPath := prefix + "/company:" + cid

		for _, pid := range model.SortedKeys(company.Properties) {
			prop := company.Properties[pid]
			if prop == nil {
				result.add(SeverityWarning, RuleUnresolvedProperty, companyPath+"/property:"+pid,
					"no asset with this id in the document")
				continue
			}
			owned[prop] = true
			checkLeases(result, companyPath+"/property:"+pid, prop)
		}
	}
}

func checkLeases(result *Result, prefix string, prop *model.Property) {
	for _, lid := range model.SortedKeys(prop.Leases) {
		lease := prop.Leases[lid]
		if lease == nil {
			continue
		}
		for _, hash := range model.SortedKeys(lease.LeasedUnits) {
			if _, ok := prop.UnitIDByHash(hash); !ok {
				result.add(SeverityWarning, RuleUnresolvedLeasedUnit, prefix+"/lease:"+lid,
					"leased unit "+hash+" matches no unit of the property")
			}
		}
	}
}

// FormatIssues renders issues one per line.
func FormatIssues(issues []*Issue) string {
	var b strings.Builder
	for _, i := range issues {
		b.WriteString(i.Error())
		b.WriteString("\n")
	}
	return b.String()
}

// WriteIssueLog writes the issues found in source to filePath.
//
// PARAMETERS:
//   - issues: The issues to write. An empty list still produces a log.
//   - source: The document the issues belong to.
//   - filePath: The path to the log file.
//
// RETURNS:
//   - An error if writing fails.
func WriteIssueLog(issues []*Issue, source, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create issue log: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "Validation issues for %s\n", source)
	fmt.Fprintf(w, "Generated: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Total Issues: %d\n\n", len(issues))
	if len(issues) == 0 {
		w.WriteString("No validation issues.\n")
	} else {
		w.WriteString(FormatIssues(issues))
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write issue log: %w", err)
	}
	return file.Close()
}
