package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/nerdneilsfield/docx-translator/internal/config"
	"github.com/nerdneilsfield/docx-translator/internal/document"
	"github.com/nerdneilsfield/docx-translator/internal/logger"
	"github.com/nerdneilsfield/docx-translator/pkg/progress"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// 命令行标志变量
	cfgFile           string
	sourceLang        string
	targetLang        string
	modelName         string
	maxChunkChars     int
	useCache          bool
	cacheDir          string
	forceCacheRefresh bool
	glossaryPath      string
	statsFile         string
	workDir           string
	keepIntermediate  bool
	saveDebugInfo     bool
	noVerify          bool
	debugMode         bool
	verboseMode       bool // 显示详细日志（包括翻译片段）
)

// NewRootCommand 创建根命令
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "docx-translator [flags] input.docx [output.docx]",
		Short: "Translate the text of a .docx document while keeping its structure",
		Long: `docx-translator replaces every text run of a Word document with a short
identifier, sends the text to a language model in budget-sized chunks and
writes the translations back into the exact same positions.

Formatting, tables, images and every other archive member are kept as is.
When the output path is omitted the result is written next to the input as
<name>_translated.docx.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runTranslate,
	}

	addGlobalFlags(rootCmd)

	rootCmd.Flags().BoolVar(&useCache, "cache", false, "是否使用缓存")
	rootCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "缓存目录路径")
	rootCmd.Flags().BoolVar(&forceCacheRefresh, "refresh-cache", false, "强制刷新缓存")
	rootCmd.Flags().StringVar(&glossaryPath, "glossary", "", "预定义译文（TOML）路径")
	rootCmd.Flags().StringVar(&workDir, "work-dir", "", "解包目录，已存在时会先清空")
	rootCmd.Flags().BoolVar(&keepIntermediate, "keep-intermediate", false, "保留解包的中间文件")
	rootCmd.Flags().BoolVar(&saveDebugInfo, "save-debug-info", false, "在输出旁保存占位符表 JSON")
	rootCmd.Flags().BoolVar(&noVerify, "no-verify", false, "跳过输出文档校验")

	rootCmd.AddCommand(NewModelsCommand())
	rootCmd.AddCommand(NewInspectCommand())
	rootCmd.AddCommand(NewInitCommand())
	rootCmd.AddCommand(NewStatsCommand())

	return rootCmd
}

// addGlobalFlags 添加全局标志
func addGlobalFlags(rootCmd *cobra.Command) {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径")
	rootCmd.PersistentFlags().StringVar(&sourceLang, "source", "", "源语言（名称或代码，如 English、en）")
	rootCmd.PersistentFlags().StringVar(&targetLang, "target", "", "目标语言（名称或代码，如 Chinese、zh）")
	rootCmd.PersistentFlags().StringVarP(&modelName, "model", "m", "", "使用的模型")
	rootCmd.PersistentFlags().IntVar(&maxChunkChars, "chunk-size", 0, "单块字符上限，0 表示按模型推算")
	rootCmd.PersistentFlags().StringVar(&statsFile, "stats-file", "", "运行历史 JSON 路径")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "启用调试模式")
	rootCmd.PersistentFlags().BoolVarP(&verboseMode, "verbose", "v", false, "显示详细日志（包括翻译片段）")
}

// loadConfig 加载配置文件并用命令行参数覆盖
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	updateConfigFromFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// updateConfigFromFlags 使用命令行参数更新配置
func updateConfigFromFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.SourceLang = sourceLang
	}
	if flags.Changed("target") {
		cfg.TargetLang = targetLang
	}
	if flags.Changed("model") {
		cfg.DefaultModelName = modelName
	}
	if flags.Changed("chunk-size") {
		cfg.MaxChunkChars = maxChunkChars
	}
	if flags.Changed("cache") {
		cfg.UseCache = useCache
	}
	if flags.Changed("cache-dir") {
		cfg.CacheDir = cacheDir
	}
	if flags.Changed("glossary") {
		cfg.GlossaryPath = glossaryPath
	}
	if flags.Changed("stats-file") {
		cfg.StatsFile = statsFile
	}
	if flags.Changed("work-dir") {
		cfg.WorkDir = workDir
	}
	if flags.Changed("keep-intermediate") {
		cfg.KeepIntermediateFiles = keepIntermediate
	}
	if flags.Changed("save-debug-info") {
		cfg.SaveDebugInfo = saveDebugInfo
	}
	if flags.Changed("no-verify") {
		cfg.VerifyOutput = !noVerify
	}
	if flags.Changed("debug") {
		cfg.Debug = debugMode
	}
	if flags.Changed("verbose") {
		cfg.Verbose = verboseMode
	}
}

// defaultOutputPath 未指定输出时，在输入旁生成 <name>_translated.docx
func defaultOutputPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	if ext == "" {
		ext = ".docx"
	}
	return strings.TrimSuffix(inputPath, filepath.Ext(inputPath)) + "_translated" + ext
}

// runTranslate 翻译单个文档
func runTranslate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return reportError(cmd, err)
	}

	log, err := logger.New(logger.Options{Debug: cfg.Debug, Verbose: cfg.Verbose})
	if err != nil {
		return reportError(cmd, fmt.Errorf("failed to initialise logger: %w", err))
	}
	defer func() {
		_ = log.Sync()
	}()

	inputPath := args[0]
	outputPath := defaultOutputPath(inputPath)
	if len(args) > 1 {
		outputPath = args[1]
	}

	budget := cfg.ResolveChunkBudget(cfg.DefaultModelName)
	if !budget.Known {
		warnUnknownModel(cmd, budget)
	}
	log.Info("resolved chunk budget",
		zap.String("model", budget.Model),
		zap.Int("max_input_tokens", budget.MaxInputTokens),
		zap.Int("budget", budget.Budget),
		zap.Bool("clamped", budget.Clamped))

	tracker := progress.NewTracker(0, progress.WithWriter(cmd.ErrOrStderr()))
	orchestrator, err := newOrchestrator(cfg, log, tracker.Report)
	if err != nil {
		return reportError(cmd, err)
	}

	translator := document.NewDocxTranslator(orchestrator, log)
	result, err := translator.TranslateFile(cmd.Context(), inputPath, outputPath, document.Options{
		SourceLang:            config.LanguageName(cfg.SourceLang),
		TargetLang:            config.LanguageName(cfg.TargetLang),
		Model:                 resolveModel(cfg).ModelID,
		Budget:                budget.Budget,
		WorkDir:               cfg.WorkDir,
		KeepIntermediateFiles: cfg.KeepIntermediateFiles,
		SaveDebugInfo:         cfg.SaveDebugInfo,
		VerifyOutput:          cfg.VerifyOutput,
	})
	tracker.Done(nil)
	recordRun(cfg, log, newRunRecord(cfg, inputPath, outputPath, orchestrator.Stats(), result, err))
	if err != nil {
		log.Error("翻译文件失败", zap.String("input", inputPath), zap.Error(err))
		return reportError(cmd, err)
	}

	out := cmd.OutOrStdout()
	progress.RenderSummary(out, &progress.SummaryStats{
		InputPath:     result.InputPath,
		OutputPath:    result.OutputPath,
		Model:         cfg.DefaultModelName,
		Segments:      result.Segments,
		GlossaryHits:  result.Stats.GlossaryHits,
		CacheHits:     result.Stats.CacheHits,
		CacheMisses:   result.Stats.CacheMisses,
		CacheEntries:  result.Stats.CacheEntries,
		Chunks:        result.Stats.Chunks,
		Requests:      result.Stats.Requests,
		BudgetShrinks: result.Stats.BudgetShrinks,
		InitialBudget: result.Stats.InitialBudget,
		FinalBudget:   result.Stats.FinalBudget,
		TokensIn:      result.Stats.TokensIn,
		TokensOut:     result.Stats.TokensOut,
		Leaks:         len(result.Leaks),
		TotalTime:     result.Duration,
	})

	if len(result.Leaks) > 0 {
		color.New(color.FgYellow).Fprintf(out,
			"⚠️  %d identifiers were left untranslated: %s\n", len(result.Leaks), strings.Join(result.Leaks, ", "))
	}
	for _, path := range result.DebugFiles {
		fmt.Fprintf(out, "📄 %s\n", path)
	}
	if result.WorkDir != "" {
		fmt.Fprintf(out, "📁 intermediate files kept in %s\n", result.WorkDir)
	}
	color.New(color.FgGreen, color.Bold).Fprintf(out, "✅ %s (%s)\n",
		result.OutputPath, progress.FormatDuration(result.Duration.Round(time.Millisecond)))
	return nil
}

// warnUnknownModel 提示未知模型及相近名称
func warnUnknownModel(cmd *cobra.Command, budget config.BudgetInfo) {
	warn := color.New(color.FgYellow)
	warn.Fprintf(cmd.ErrOrStderr(), "⚠️  unknown model %q, assuming %d input tokens\n",
		budget.Model, budget.MaxInputTokens)
	if len(budget.Suggestions) > 0 {
		warn.Fprintf(cmd.ErrOrStderr(), "   did you mean: %s\n", strings.Join(budget.Suggestions, ", "))
	}
}

// reportError 以醒目的方式输出错误并原样返回，由 main 负责非零退出
func reportError(cmd *cobra.Command, err error) error {
	color.New(color.FgRed, color.Bold).Fprintf(cmd.ErrOrStderr(), "❌ %v\n", err)
	return err
}
