package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nerdneilsfield/docx-translator/internal/document"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// NewInspectCommand 预览文档的提取与分块结果，不调用任何翻译服务
func NewInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "inspect input.docx",
		Short:         "Show what would be extracted from a document and how it would be chunked",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return reportError(cmd, err)
			}

			budget := cfg.ResolveChunkBudget(cfg.DefaultModelName)
			if !budget.Known {
				warnUnknownModel(cmd, budget)
			}

			report, err := document.Inspect(args[0], budget.Budget)
			if err != nil {
				return reportError(cmd, err)
			}

			out, err := renderReport(report, cfg.DefaultModelName)
			if err != nil {
				return reportError(cmd, err)
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

// renderReport 以分节与列表的形式输出检查报告
func renderReport(report *document.Report, model string) (string, error) {
	var b strings.Builder

	b.WriteString(pterm.DefaultSection.Sprint(report.InputPath))
	overview, err := pterm.DefaultBulletList.WithItems([]pterm.BulletListItem{
		{Level: 0, Text: fmt.Sprintf("archive members: %d", report.Members)},
		{Level: 0, Text: fmt.Sprintf("paragraphs: %d", report.Body.Paragraphs)},
		{Level: 0, Text: fmt.Sprintf("tables: %d", report.Body.Tables)},
		{Level: 0, Text: fmt.Sprintf("text segments: %d", report.Segments)},
		{Level: 0, Text: fmt.Sprintf("characters: %d", report.Characters)},
	}).Srender()
	if err != nil {
		return "", err
	}
	b.WriteString(overview)

	b.WriteString(pterm.DefaultSection.WithLevel(2).Sprint("Chunk plan"))
	plan := []pterm.BulletListItem{
		{Level: 0, Text: fmt.Sprintf("model: %s", model)},
		{Level: 0, Text: fmt.Sprintf("budget: %d characters", report.Budget)},
		{Level: 0, Text: fmt.Sprintf("requests: %d", report.Requests())},
		{Level: 0, Text: fmt.Sprintf("largest chunk: %d", report.LargestChunk())},
	}
	if report.Requests() > 0 {
		sizes := make([]string, len(report.ChunkSizes))
		for i, size := range report.ChunkSizes {
			sizes[i] = strconv.Itoa(size)
		}
		plan = append(plan, pterm.BulletListItem{Level: 1, Text: "sizes: " + strings.Join(sizes, ", ")})
	}
	planText, err := pterm.DefaultBulletList.WithItems(plan).Srender()
	if err != nil {
		return "", err
	}
	b.WriteString(planText)

	if len(report.Samples) > 0 {
		b.WriteString(pterm.DefaultSection.WithLevel(2).Sprint("Samples"))
		items := make([]pterm.BulletListItem, len(report.Samples))
		for i, sample := range report.Samples {
			items[i] = pterm.BulletListItem{Level: 0, Text: sample}
		}
		samples, err := pterm.DefaultBulletList.WithItems(items).Srender()
		if err != nil {
			return "", err
		}
		b.WriteString(samples)
	}

	return b.String(), nil
}
