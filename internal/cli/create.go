package cli

import (
	"github.com/spf13/cobra"

	"github.com/dexcli/dex/internal/service"
)

func newCreateCmd() *cobra.Command {
	var parentID string
	var description string
	var priority int
	var blockedBy []string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			in := service.CreateInput{
				Name:        args[0],
				Description: description,
				BlockedBy:   blockedBy,
			}
			if cmd.Flags().Changed("priority") {
				in.Priority = &priority
			}
			if parentID != "" {
				in.ParentID = &parentID
			}
			t, err := a.svc.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			printTask(cmd, t)
			return nil
		},
	}
	cmd.Flags().StringVar(&parentID, "parent", "", "parent task id")
	cmd.Flags().StringVar(&description, "description", "", "task description")
	cmd.Flags().IntVar(&priority, "priority", 1, "task priority (0-100)")
	cmd.Flags().StringSliceVar(&blockedBy, "blocked-by", nil, "ids this task is blocked by")
	return cmd
}
