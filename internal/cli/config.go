package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/dexcli/dex/internal/config"
	"github.com/dexcli/dex/internal/model"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or initialize project configuration",
	}
	cmd.AddCommand(newConfigShowCmd(), newConfigInitCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the merged effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(projectDir)
			if err != nil {
				return err
			}
			out, err := toml.Marshal(cfg)
			if err != nil {
				return model.Internal("marshal config", err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default project config.toml under .dex/",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := filepath.Join(projectDir, ".dex")
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return model.StorageIO("create project directory", err)
			}
			path := filepath.Join(dir, "config.toml")
			if _, err := os.Stat(path); err == nil {
				return model.ValidationFailed("config.toml already exists: " + path)
			}
			out, err := toml.Marshal(config.DefaultConfig())
			if err != nil {
				return model.Internal("marshal config", err)
			}
			if err := os.WriteFile(path, out, 0o644); err != nil {
				return model.StorageIO("write config.toml", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
			return nil
		},
	}
}
