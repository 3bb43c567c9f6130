package cli

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// NewModelsCommand 列出已配置的模型及其分块预算
func NewModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "models",
		Short:         "List configured models and the chunk budget derived for each",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return reportError(cmd, err)
			}

			names := cfg.ModelNames()
			sort.Strings(names)

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"模型", "模型 ID", "接口", "上下文 (tokens)", "分块预算 (字符)"})
			for _, name := range names {
				m, _ := cfg.GetModel(name)
				budget := cfg.ResolveChunkBudget(name)
				label := name
				if name == cfg.DefaultModelName {
					label = text.Colors{text.FgCyan}.Sprint(name + " *")
				}
				apiType := m.APIType
				if apiType == "" {
					apiType = "openai"
				}
				t.AppendRow(table.Row{label, m.ModelID, apiType, budget.MaxInputTokens, budget.Budget})
			}
			t.Render()

			fmt.Fprintf(cmd.OutOrStdout(), "* default model, chars_per_token=%.1f, safety_margin=%.2f\n",
				cfg.CharsPerToken, cfg.ChunkSafetyMargin)
			return nil
		},
	}
}
