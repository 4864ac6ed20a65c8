package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd(connect func(*cobra.Command) (*backend, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the item schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := connect(cmd)
			if err != nil {
				return err
			}
			defer b.close()

			n, err := b.migrations.Up(cmd.Context())
			if err != nil {
				return withCode(exitDB, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", n)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := connect(cmd)
			if err != nil {
				return err
			}
			defer b.close()

			if err := b.migrations.Down(cmd.Context()); err != nil {
				return withCode(exitDB, err)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print one JSON line per migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := connect(cmd)
			if err != nil {
				return err
			}
			defer b.close()

			states, err := b.migrations.Status(cmd.Context())
			if err != nil {
				return withCode(exitDB, err)
			}
			for _, s := range states {
				if err := writeJSONLine(cmd.OutOrStdout(), s); err != nil {
					return err
				}
			}
			return nil
		},
	})
	return cmd
}
