package cli

import (
	"github.com/spf13/cobra"

	"github.com/dexcli/dex/internal/service"
)

func newUpdateCmd() *cobra.Command {
	var name, description, parentID, result string
	var priority int
	var addBlockedBy, removeBlockedBy []string
	var deleteTask bool

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Apply a partial update to a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			in := service.UpdateInput{
				AddBlockedBy:    addBlockedBy,
				RemoveBlockedBy: removeBlockedBy,
				Delete:          deleteTask,
			}
			if cmd.Flags().Changed("name") {
				in.Name = &name
			}
			if cmd.Flags().Changed("description") {
				in.Description = &description
			}
			if cmd.Flags().Changed("priority") {
				in.Priority = &priority
			}
			if cmd.Flags().Changed("result") {
				in.Result = &result
			}
			if cmd.Flags().Changed("parent") {
				in.ParentIDSet = true
				if parentID != "" {
					in.ParentID = &parentID
				}
			}
			t, err := a.svc.Update(cmd.Context(), args[0], in)
			if err != nil {
				return err
			}
			if t != nil {
				printTask(cmd, t)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().IntVar(&priority, "priority", 0, "new priority (0-100)")
	cmd.Flags().StringVar(&result, "result", "", "new result text")
	cmd.Flags().StringVar(&parentID, "parent", "", "new parent id (empty string moves the task to root)")
	cmd.Flags().StringSliceVar(&addBlockedBy, "add-blocked-by", nil, "ids to add as blockers")
	cmd.Flags().StringSliceVar(&removeBlockedBy, "remove-blocked-by", nil, "ids to remove as blockers")
	cmd.Flags().BoolVar(&deleteTask, "delete", false, "delete the task instead of updating it")
	return cmd
}
