package main

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	domainsvcs "github.com/ghuser/itemtree/services/item/domain/services"
)

func newVerifyCmd(connect func(*cobra.Command) (*backend, error)) *cobra.Command {
	var (
		tenant string
		all    bool
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check path consistency, uniqueness and acyclicity",
		Long:  "Prints one JSON report per tenant. Exits 2 when any violation is found.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (tenant != "") {
				return withCode(exitUsage, errors.New("exactly one of --tenant or --all is required"))
			}
			var tenants []uuid.UUID
			if !all {
				id, err := parseTenant(tenant)
				if err != nil {
					return err
				}
				tenants = []uuid.UUID{id}
			}

			b, err := connect(cmd)
			if err != nil {
				return err
			}
			defer b.close()

			ctx := cmd.Context()
			if all {
				if tenants, err = b.tenants.ListTenantIDs(ctx); err != nil {
					return withCode(exitDB, err)
				}
			}

			violations := 0
			for _, id := range tenants {
				report, err := b.store.VerifyIntegrity(ctx, id)
				if err != nil {
					return withCode(exitDB, err)
				}
				violations += len(report.Violations)
				if err := writeJSONLine(cmd.OutOrStdout(), struct {
					OK bool `json:"ok"`
					*domainsvcs.IntegrityReport
				}{report.OK(), report}); err != nil {
					return err
				}
			}
			if violations > 0 {
				return withCode(exitViolations, fmt.Errorf("%d integrity violation(s) across %d tenant(s)", violations, len(tenants)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant UUID")
	cmd.Flags().BoolVar(&all, "all", false, "Verify every tenant")
	return cmd
}
