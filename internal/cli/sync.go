package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dexcli/dex/internal/model"
)

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync <id>",
		Short: "Run a GitHub sync check now for a task's root lineage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if a.sync == nil {
				return model.ValidationFailed("GitHub sync is not enabled", "set sync.github.enabled = true in config")
			}
			set, err := a.store.Read()
			if err != nil {
				return err
			}
			root := rootIDOf(set, args[0])
			if root == "" {
				return model.NotFound("task not found: " + args[0])
			}
			if err := a.sync.Dispatch(cmd.Context(), set, root); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "synced", root)
			return nil
		},
	}
	return cmd
}

func rootIDOf(set model.TaskSet, id string) string {
	t, ok := set[id]
	if !ok {
		return ""
	}
	for t.ParentID != nil {
		parent, ok := set[*t.ParentID]
		if !ok {
			break
		}
		t = parent
	}
	return t.ID
}
