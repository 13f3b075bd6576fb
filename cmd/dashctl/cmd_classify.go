package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/leadops/lead-dashboard/internal/dashboard"
	"github.com/leadops/lead-dashboard/internal/domain"
	"github.com/leadops/lead-dashboard/internal/repository"
)

type classifiedLead struct {
	ID       domain.LeadID      `json:"id"`
	Name     string             `json:"name,omitempty"`
	Owner    string             `json:"owner,omitempty"`
	Status   domain.LeadStatus  `json:"status"`
	AgeDays  int                `json:"age_days"`
	Category dashboard.Category `json:"category"`
}

type delayReport struct {
	GeneratedAt   time.Time                  `json:"generated_at"`
	ThresholdDays int                        `json:"threshold_days"`
	Total         int                        `json:"total"`
	Delayed       int                        `json:"delayed"`
	Categories    map[dashboard.Category]int `json:"categories"`
	Leads         []classifiedLead           `json:"leads"`
}

func newClassifyCmd() *cobra.Command {
	var (
		file      string
		threshold int
		nowFlag   string
		timezone  string
	)
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Print the delayed-lead report for a lead file",
		Long: `Classify every lead in a JSON file and print the delayed ones.

Malformed entries are skipped. Dates without a zone are read in --tz.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			payload, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read leads: %w", err)
			}
			leads, ok := repository.DecodeLeads(payload)
			if !ok {
				return fmt.Errorf("%s is not a JSON array of leads", file)
			}
			loc, err := time.LoadLocation(timezone)
			if err != nil {
				return fmt.Errorf("invalid --tz: %w", err)
			}
			now := time.Now().In(loc)
			if nowFlag != "" {
				parsed, ok := dashboard.ParseDate(nowFlag, loc)
				if !ok {
					return fmt.Errorf("invalid --now %q", nowFlag)
				}
				now = parsed
			}
			report := buildDelayReport(leads, threshold, now)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file holding an array of leads")
	cmd.Flags().IntVar(&threshold, "threshold", dashboard.DefaultThresholdDays, "Days without contact before a lead is delayed")
	cmd.Flags().StringVar(&nowFlag, "now", "", "Reference time (default: current time)")
	cmd.Flags().StringVar(&timezone, "tz", "UTC", "Time zone for dates without one")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func buildDelayReport(leads []domain.Lead, threshold int, now time.Time) delayReport {
	if threshold <= 0 {
		threshold = dashboard.DefaultThresholdDays
	}
	delayed := dashboard.DelayedOnly(dashboard.ClassifyAll(leads, threshold, now))
	report := delayReport{
		GeneratedAt:   now,
		ThresholdDays: threshold,
		Total:         len(leads),
		Delayed:       len(delayed),
		Categories:    dashboard.CategoryCounts(delayed),
		Leads:         make([]classifiedLead, 0, len(delayed)),
	}
	for _, lead := range delayed {
		report.Leads = append(report.Leads, classifiedLead{
			ID:       lead.ID,
			Name:     lead.Name,
			Owner:    lead.Owner(),
			Status:   lead.Status,
			AgeDays:  lead.AgeDays,
			Category: lead.Category,
		})
	}
	return report
}
