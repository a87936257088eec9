package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dexcli/dex/internal/daemon"
)

func newDaemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the long-lived sync and archival sweep loop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			d, err := daemon.New(a.svc, a.compactor, a.store, a.cfg.Daemon, a.log, a.metrics, a.cfg.Metrics.Addr)
			if err != nil {
				return err
			}
			d.Start()
			fmt.Fprintln(cmd.OutOrStdout(), "daemon running, press Ctrl+C to stop")

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			<-sigChan

			d.Stop()
			fmt.Fprintln(cmd.OutOrStdout(), "daemon stopped")
			return nil
		},
	}
	return cmd
}
