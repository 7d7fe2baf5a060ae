// =============================================================================
// FIDJI Converter - Inspect Command
// =============================================================================
//
// This file defines the 'inspect' command, which prints a YAML summary of a
// FIDJI document and its validation issues.
//
// COMMAND USAGE:
//   fidjiconv inspect --in portfolio.xml
//
// OUTPUT:
//   period: 2021-7
//   from: "2021-07-01"
//   to: "2021-07-31"
//   meta:
//     format: XML
//     ...
//   companies:
//     - id: C1
//       label: Holding
//       properties:
//         - id: P1
//           resolved: true
//           buildings: 1
//           units: 2
//           leases: 1
//   issues: []
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/fidji-converter/internal/converter"
	"github.com/ginjaninja78/fidji-converter/internal/fidji"
	"github.com/ginjaninja78/fidji-converter/internal/model"
	"github.com/ginjaninja78/fidji-converter/internal/validation"
)

var inspectIn string

// inspectCmd represents the 'inspect' command.
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Summarize and validate a FIDJI document",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, check, err := newConverter().Inspect(inspectIn)
		if err != nil {
			return err
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(summarize(c, check)); err != nil {
			return fmt.Errorf("failed to encode summary: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to encode summary: %w", err)
		}

		if !check.IsValid {
			return fmt.Errorf("%w: %d error(s)", converter.ErrInvalidContainer, check.ErrorCount)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVar(&inspectIn, "in", "", "Input FIDJI file")
	inspectCmd.MarkFlagRequired("in")
}

// =============================================================================
// SUMMARY DOCUMENT
// =============================================================================

type documentSummary struct {
	Period    string           `yaml:"period"`
	From      string           `yaml:"from"`
	To        string           `yaml:"to"`
	Meta      metaSummary      `yaml:"meta"`
	Totals    totalsSummary    `yaml:"totals"`
	Companies []companySummary `yaml:"companies"`
	Issues    []issueSummary   `yaml:"issues"`
}

type metaSummary struct {
	Format  string `yaml:"format"`
	Version string `yaml:"version"`
	Creator string `yaml:"creator"`
}

type totalsSummary struct {
	Companies   int `yaml:"companies"`
	Properties  int `yaml:"properties"`
	Buildings   int `yaml:"buildings"`
	Units       int `yaml:"units"`
	Leases      int `yaml:"leases"`
	LeasedUnits int `yaml:"leased_units"`
}

type companySummary struct {
	ID         string            `yaml:"id"`
	Label      string            `yaml:"label,omitempty"`
	Properties []propertySummary `yaml:"properties"`
}

type propertySummary struct {
	ID        string `yaml:"id"`
	Resolved  bool   `yaml:"resolved"`
	Label     string `yaml:"label,omitempty"`
	City      string `yaml:"city,omitempty"`
	Buildings int    `yaml:"buildings"`
	Units     int    `yaml:"units"`
	Leases    int    `yaml:"leases"`
}

type issueSummary struct {
	Severity string `yaml:"severity"`
	Rule     string `yaml:"rule"`
	Entity   string `yaml:"entity"`
	Message  string `yaml:"message"`
}

func summarize(c *model.Container, check *validation.Result) documentSummary {
	stats := converter.CountEntities(c)
	s := documentSummary{
		Period: stats.Period,
		Meta: metaSummary{
			Format:  c.Meta.Format,
			Version: c.Meta.Version,
			Creator: c.Meta.Creator,
		},
		Totals: totalsSummary{
			Companies:   stats.Companies,
			Properties:  stats.Properties,
			Buildings:   stats.Buildings,
			Units:       stats.Units,
			Leases:      stats.Leases,
			LeasedUnits: stats.LeasedUnits,
		},
		Companies: []companySummary{},
		Issues:    []issueSummary{},
	}

	period := c.FirstPeriod()
	if period != nil {
		s.From = fidji.FormatDate(period.From)
		s.To = fidji.FormatDate(period.To)
	}
	if period != nil && period.Data != nil {
		for _, cid := range model.SortedKeys(period.Data.Companies) {
			company := period.Data.Companies[cid]
			cs := companySummary{ID: cid, Label: company.Label, Properties: []propertySummary{}}
			for _, pid := range model.SortedKeys(company.Properties) {
				cs.Properties = append(cs.Properties, summarizeProperty(pid, company.Properties[pid]))
			}
			s.Companies = append(s.Companies, cs)
		}
	}

	for _, issue := range check.Issues {
		s.Issues = append(s.Issues, issueSummary{
			Severity: issue.Severity,
			Rule:     issue.Rule,
			Entity:   issue.Entity,
			Message:  issue.Message,
		})
	}
	return s
}

func summarizeProperty(id string, p *model.Property) propertySummary {
	ps := propertySummary{ID: id}
	if p == nil {
		return ps
	}
	ps.Resolved = true
	ps.Label = p.Label
	if p.Address != nil {
		ps.City = p.Address.City
	}
	ps.Buildings = len(p.Buildings)
	for _, b := range p.Buildings {
		ps.Units += len(b.Units)
	}
	ps.Leases = len(p.Leases)
	return ps
}
