package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dexcli/dex/internal/ids"
	"github.com/dexcli/dex/internal/model"
)

func printTask(cmd *cobra.Command, t *model.Task) {
	status := "pending"
	switch {
	case t.Completed:
		status = "completed"
	case t.StartedAt != nil:
		status = "in-progress"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s  [%s]  p%d  %s\n", t.ID, status, t.Priority, t.Name)
}

func printTaskList(cmd *cobra.Command, tasks []*model.Task) {
	for _, t := range tasks {
		printTask(cmd, t)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d task(s)\n", len(tasks))
}

func printArchivedTask(cmd *cobra.Command, rec *model.ArchivedTask) {
	age := "unknown"
	if ts, err := ids.ParseTime(rec.CompletedAt); err == nil {
		age = humanize.Time(ts)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s  archived (completed %s)  %s\n", rec.ID, age, rec.Name)
}
