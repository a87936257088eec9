package cli

import (
	"github.com/spf13/cobra"

	"github.com/dexcli/dex/internal/service"
)

func newCompleteCmd() *cobra.Command {
	var result string

	cmd := &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			t, err := a.svc.Complete(cmd.Context(), args[0], result, nil)
			if err != nil {
				return err
			}
			printTask(cmd, t)
			return nil
		},
	}
	cmd.Flags().StringVar(&result, "result", "", "free-text result recorded on completion")
	return cmd
}

func newStartCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "start <id>",
		Short: "Mark a task in-progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			t, err := a.svc.Start(cmd.Context(), args[0], service.StartOptions{Force: force})
			if err != nil {
				return err
			}
			printTask(cmd, t)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "restart an already-started task's timer")
	return cmd
}
