package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGetCmd() *cobra.Command {
	var showChildren, showAncestors, showBlockers, showBlocked bool

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a single task, optionally with its relations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			id := args[0]

			t, archived, err := a.svc.GetWithArchive(id, a.archive)
			if err != nil {
				return err
			}
			if t != nil {
				printTask(cmd, t)
			} else if archived != nil {
				printArchivedTask(cmd, archived)
			}

			if showChildren {
				children, err := a.svc.GetChildren(id)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "children:")
				printTaskList(cmd, children)
			}
			if showAncestors {
				ancestors, err := a.svc.GetAncestors(id)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "ancestors:")
				printTaskList(cmd, ancestors)
			}
			if showBlockers {
				blockers, err := a.svc.GetIncompleteBlockers(id)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "incomplete blockers:")
				printTaskList(cmd, blockers)
			}
			if showBlocked {
				blocked, err := a.svc.GetBlockedTasks(id)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "blocked by this task:")
				printTaskList(cmd, blocked)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showChildren, "children", false, "also list direct children")
	cmd.Flags().BoolVar(&showAncestors, "ancestors", false, "also list the chain of ancestors")
	cmd.Flags().BoolVar(&showBlockers, "blockers", false, "also list incomplete blockers")
	cmd.Flags().BoolVar(&showBlocked, "blocked", false, "also list tasks this one blocks")
	return cmd
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search active and archived tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			results, err := a.svc.Search(args[0], a.archive)
			if err != nil {
				return err
			}
			for _, r := range results {
				if r.Task != nil {
					printTask(cmd, r.Task)
				} else if r.Archived != nil {
					printArchivedTask(cmd, r.Archived)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d result(s)\n", len(results))
			return nil
		},
	}
	return cmd
}
