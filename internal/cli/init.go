package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/nerdneilsfield/docx-translator/internal/config"
	"github.com/spf13/cobra"
)

// NewInitCommand 写出一份默认配置文件
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:           "init [path]",
		Short:         "Write a default configuration file (defaults to ~/.docx-translator.yaml)",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				home, err := os.UserHomeDir()
				if err != nil {
					return reportError(cmd, err)
				}
				path = filepath.Join(home, ".docx-translator.yaml")
			}

			if _, err := os.Stat(path); err == nil && !force {
				return reportError(cmd, fmt.Errorf("%s already exists, use --force to overwrite", path))
			}

			if err := config.SaveConfig(config.NewDefaultConfig(), path); err != nil {
				return reportError(cmd, fmt.Errorf("failed to write config: %w", err))
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✅ 配置已写入 %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "覆盖已存在的配置文件")
	return cmd
}
