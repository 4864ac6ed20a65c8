package main

import (
	"time"

	"github.com/spf13/cobra"
)

type statsView struct {
	TotalItems           int            `json:"total_items"`
	ByCategory           map[string]int `json:"by_category"`
	ByStatus             map[string]int `json:"by_status"`
	ByLocation           map[string]int `json:"by_location"`
	TotalValue           string         `json:"total_value"`
	WarrantyExpiringSoon int            `json:"warranty_expiring_soon"`
	WarrantyWindowEnd    string         `json:"warranty_window_end"`
}

func newStatsCmd(connect func(*cobra.Command) (*backend, error)) *cobra.Command {
	var tenant string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print item counts, total value and expiring warranties for a tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID, err := parseTenant(tenant)
			if err != nil {
				return err
			}

			b, err := connect(cmd)
			if err != nil {
				return err
			}
			defer b.close()

			stats, err := b.store.Statistics(cmd.Context(), tenantID)
			if err != nil {
				return withCode(exitDB, err)
			}
			byStatus := make(map[string]int, len(stats.ByStatus))
			for s, n := range stats.ByStatus {
				byStatus[s.String()] = n
			}
			return writeJSONLine(cmd.OutOrStdout(), statsView{
				TotalItems:           stats.TotalItems,
				ByCategory:           stats.ByCategory,
				ByStatus:             byStatus,
				ByLocation:           stats.ByLocation,
				TotalValue:           stats.TotalValue.StringFixed(2),
				WarrantyExpiringSoon: stats.WarrantyExpiringSoon,
				WarrantyWindowEnd:    stats.WarrantyWindowEnd.UTC().Format(time.RFC3339),
			})
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant UUID (required)")
	return cmd
}
