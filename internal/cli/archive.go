package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dexcli/dex/internal/compactor"
)

func newArchiveCmd() *cobra.Command {
	var olderThan string
	var except []string
	var completed bool

	cmd := &cobra.Command{
		Use:   "archive [id]",
		Short: "Archive a completed lineage, or sweep in bulk with --older-than/--completed",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				rec, err := a.svc.Archive(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printArchivedTask(cmd, rec)
				return nil
			}
			if olderThan == "" && !completed {
				return cmd.Help()
			}
			recs, err := a.compactor.Bulk(cmd.Context(), compactor.BulkOptions{
				OlderThan: olderThan,
				Except:    except,
				Completed: completed,
			})
			if err != nil {
				return err
			}
			for _, rec := range recs {
				printArchivedTask(cmd, rec)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d lineage(s) archived\n", len(recs))
			return nil
		},
	}
	cmd.Flags().StringVar(&olderThan, "older-than", "", "bulk-archive lineages completed before this age, e.g. 90d, 4w, 3m")
	cmd.Flags().StringSliceVar(&except, "except", nil, "root ids to exclude from a bulk sweep")
	cmd.Flags().BoolVar(&completed, "completed", false, "bulk-archive every eligible completed lineage regardless of age")
	return cmd
}
