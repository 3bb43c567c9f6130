package cli

import (
	"errors"
	"fmt"

	"github.com/nerdneilsfield/docx-translator/internal/config"
	"github.com/nerdneilsfield/docx-translator/internal/document"
	"github.com/nerdneilsfield/docx-translator/internal/stats"
	"github.com/nerdneilsfield/docx-translator/pkg/translation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newRunRecord 由本次运行的结果或错误生成历史记录
func newRunRecord(cfg *config.Config, inputPath, outputPath string, runStats translation.Stats, result *document.Result, runErr error) *stats.RunRecord {
	record := &stats.RunRecord{
		InputFile:      inputPath,
		OutputFile:     outputPath,
		SourceLanguage: config.LanguageName(cfg.SourceLang),
		TargetLanguage: config.LanguageName(cfg.TargetLang),
		Model:          cfg.DefaultModelName,
		Segments:       runStats.Segments,
		Chunks:         runStats.Chunks,
		Requests:       runStats.Requests,
		BudgetShrinks:  runStats.BudgetShrinks,
		FinalBudget:    runStats.FinalBudget,
		CacheHits:      runStats.CacheHits,
		GlossaryHits:   runStats.GlossaryHits,
		TokensIn:       runStats.TokensIn,
		TokensOut:      runStats.TokensOut,
		Duration:       runStats.Duration,
		Status:         stats.StatusCompleted,
	}
	if result != nil {
		record.Segments = result.Segments
		record.Characters = result.Characters
		record.Leaks = len(result.Leaks)
		record.Duration = result.Duration
	}
	if runErr != nil {
		record.Status = stats.StatusFailed
		record.ErrorCode = translation.ErrorCode(runErr)
		record.ErrorMessage = runErr.Error()
	}
	return record
}

// recordRun 把运行记录写入历史文件，失败只记日志
func recordRun(cfg *config.Config, log *zap.Logger, record *stats.RunRecord) {
	if cfg.StatsFile == "" {
		return
	}
	db, err := stats.NewDatabase(cfg.StatsFile, log)
	if err == nil {
		err = db.AddRunRecord(record)
	}
	if err != nil {
		log.Warn("无法写入运行历史", zap.String("path", cfg.StatsFile), zap.Error(err))
	}
}

// NewStatsCommand 显示运行历史
func NewStatsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:           "stats",
		Short:         "Show the history of translation runs recorded in stats_file",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return reportError(cmd, err)
			}
			if cfg.StatsFile == "" {
				return reportError(cmd, errors.New("no stats_file configured, set it in the config or pass --stats-file"))
			}

			db, err := stats.NewDatabase(cfg.StatsFile, nil)
			if err != nil {
				return reportError(cmd, err)
			}

			v := stats.NewVisualizer(db, cmd.OutOrStdout())
			v.ShowOverview()
			fmt.Fprintln(cmd.OutOrStdout())
			v.ShowLanguagePairs()
			fmt.Fprintln(cmd.OutOrStdout())
			v.ShowModels()
			fmt.Fprintln(cmd.OutOrStdout())
			v.ShowRecentRuns(limit)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "显示的最近运行数量")
	return cmd
}
