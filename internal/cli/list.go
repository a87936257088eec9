package cli

import (
	"github.com/spf13/cobra"

	"github.com/dexcli/dex/internal/service"
)

func newListCmd() *cobra.Command {
	var all, ready, blocked, inProgress, completed, pending bool
	var query, parentID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks matching a filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			filter := service.ListFilter{
				Ready:      ready,
				Blocked:    blocked,
				InProgress: inProgress,
				Query:      query,
			}
			// Default (neither --all nor an explicit completed/pending flag)
			// excludes completed tasks, matching spec.md's "completed: exact
			// match, default false when ¬all".
			switch {
			case all:
				filter.Completed = nil
			case completed && !pending:
				v := true
				filter.Completed = &v
			case pending && !completed:
				v := false
				filter.Completed = &v
			default:
				v := false
				filter.Completed = &v
			}
			if cmd.Flags().Changed("parent") {
				filter.ParentID = &parentID
			}
			tasks, err := a.svc.List(filter)
			if err != nil {
				return err
			}
			printTaskList(cmd, tasks)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include completed tasks alongside incomplete ones")
	cmd.Flags().BoolVar(&ready, "ready", false, "only ready tasks (unblocked, incomplete, no open children)")
	cmd.Flags().BoolVar(&blocked, "blocked", false, "only blocked tasks")
	cmd.Flags().BoolVar(&inProgress, "in-progress", false, "only started, incomplete tasks")
	cmd.Flags().BoolVar(&completed, "completed", false, "only completed tasks")
	cmd.Flags().BoolVar(&pending, "pending", false, "only incomplete tasks")
	cmd.Flags().StringVar(&query, "query", "", "case-insensitive substring search")
	cmd.Flags().StringVar(&parentID, "parent", "", "only direct children of this task id")
	return cmd
}
