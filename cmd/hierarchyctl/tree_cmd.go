package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	domainsvcs "github.com/ghuser/itemtree/services/item/domain/services"
)

func newTreeCmd(connect func(*cobra.Command) (*backend, error)) *cobra.Command {
	var (
		tenant string
		root   string
	)

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print a tenant's forest, or one subtree, as an indented outline",
		RunE: func(cmd *cobra.Command, args []string) error {
			tenantID, err := parseTenant(tenant)
			if err != nil {
				return err
			}
			var rootID *uuid.UUID
			if root != "" {
				id, err := uuid.Parse(strings.TrimSpace(root))
				if err != nil {
					return withCode(exitUsage, fmt.Errorf("invalid --root: %w", err))
				}
				rootID = &id
			}

			b, err := connect(cmd)
			if err != nil {
				return err
			}
			defer b.close()

			forest, err := b.store.GetTree(cmd.Context(), tenantID, rootID)
			if err != nil {
				return withCode(exitDB, err)
			}
			return printOutline(cmd.OutOrStdout(), forest)
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant UUID (required)")
	cmd.Flags().StringVar(&root, "root", "", "Print only the subtree under this item")
	return cmd
}

// printOutline writes one line per node in depth-first order. It walks with an
// explicit stack so arbitrarily deep chains are safe.
func printOutline(w io.Writer, forest []*domainsvcs.TreeNode) error {
	type frame struct {
		node  *domainsvcs.TreeNode
		depth int
	}
	stack := make([]frame, 0, len(forest))
	for i := len(forest) - 1; i >= 0; i-- {
		stack = append(stack, frame{forest[i], 0})
	}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		it := f.node.Item
		if _, err := fmt.Fprintf(w, "%s%s [%s] %s\n", strings.Repeat("  ", f.depth), it.Name, it.Status, it.IdentifierCode); err != nil {
			return err
		}
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.node.Children[i], f.depth + 1})
		}
	}
	return nil
}
