package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dexcli/dex/internal/githubsync"
	"github.com/dexcli/dex/internal/model"
)

func newImportCmd() *cobra.Command {
	var update string

	cmd := &cobra.Command{
		Use:   "import <issue-ref>",
		Short: "Materialize a GitHub issue (and its embedded subtasks) as a new lineage",
		Args:  cobra.MaximumNArgs(1),
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

			if update != "" {
				if err := a.sync.UpdateFromRemote(cmd.Context(), set, update); err != nil {
					return err
				}
				if err := a.store.Write(set); err != nil {
					return err
				}
				printTask(cmd, set[update])
				return nil
			}

			if len(args) != 1 {
				return model.ValidationFailed("an issue reference is required", "e.g. dex import #42")
			}
			owner, repo, number, err := githubsync.ParseIssueRef(args[0], a.owner, a.repo)
			if err != nil {
				return err
			}
			result, err := a.sync.Import(cmd.Context(), set, owner, repo, number)
			if err != nil {
				return err
			}
			if err := a.store.Write(set); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d task(s), root %s\n", result.Imported, result.RootID)
			return nil
		},
	}
	cmd.Flags().StringVar(&update, "update", "", "refresh this task's root from its linked issue instead of importing a new one")
	return cmd
}
