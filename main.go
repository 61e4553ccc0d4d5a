// jp-to-en finds Japanese comments in source files and rewrites them in
// English using an OpenAI-compatible chat-completions API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jp-to-en/jp-to-en/config"
	"github.com/jp-to-en/jp-to-en/extract"
	"github.com/jp-to-en/jp-to-en/i18n"
	"github.com/jp-to-en/jp-to-en/lockfile"
	"github.com/jp-to-en/jp-to-en/process"
	"github.com/jp-to-en/jp-to-en/rewrite"
	"github.com/jp-to-en/jp-to-en/settings"
	"github.com/jp-to-en/jp-to-en/translate"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

type runOptions struct {
	paths      []string
	recursive  bool
	outputDir  string
	dryRun     bool
	verbose    bool
	quiet      bool
	apiKey     string
	saveAPIKey bool
	configPath string
	model      string
	baseURL    string
	cache      bool
	cacheSet   bool
	cacheFile  string
}

func newRootCmd() *cobra.Command {
	opts := runOptions{}

	root := &cobra.Command{
		Use:   "jp-to-en [paths...]",
		Short: "Translate Japanese comments in source files to English",
		Long: `jp-to-en scans source files for comments, detects Japanese text, and
rewrites it in English using an OpenAI-compatible chat-completions API.

By default files are rewritten in place. Use --output-dir to mirror the
results into a separate directory, or --dry-run to preview the changes
as unified diffs without writing anything.

Examples:
  jp-to-en main.py                 Translate a single file in place
  jp-to-en -r src/                 Translate a directory tree
  jp-to-en -r -o translated src/   Mirror results into translated/
  jp-to-en -d -r src/              Preview changes without writing
  jp-to-en -k KEY --save-api-key   Store the API key for future runs`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.paths = args
			opts.cacheSet = cmd.Flags().Changed("cache")
			return runTranslate(opts)
		},
	}

	root.Flags().BoolVarP(&opts.recursive, "recursive", "r", false, "process directories recursively")
	root.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "write translated files under this directory instead of in place")
	root.Flags().BoolVarP(&opts.dryRun, "dry-run", "d", false, "preview changes without writing any files")
	root.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	root.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress everything except errors")
	root.Flags().StringVarP(&opts.apiKey, "api-key", "k", "", "OpenAI API key (overrides environment and credentials file)")
	root.Flags().BoolVar(&opts.saveAPIKey, "save-api-key", false, "store the API key in the credentials file")
	root.Flags().StringVarP(&opts.configPath, "config", "c", "", "path to config.yaml")
	root.Flags().StringVar(&opts.model, "model", "", "translation model (overrides config)")
	root.Flags().StringVar(&opts.baseURL, "base-url", "", "API base URL (overrides config)")
	root.Flags().BoolVar(&opts.cache, "cache", false, "skip files unchanged since the last run")
	root.Flags().StringVar(&opts.cacheFile, "cache-file", "", "path to the cache file")

	root.AddCommand(
		newLanguagesCmd(),
		newVersionCmd(),
	)

	return root
}

// ---------------------------------------------------------------------------
// translate (root) command
// ---------------------------------------------------------------------------

func runTranslate(opts runOptions) error {
	setupLogging(opts.verbose, opts.quiet)

	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	if opts.saveAPIKey {
		if opts.apiKey == "" {
			return errors.New("--save-api-key requires --api-key")
		}
		path, err := settings.SetAPIKey(opts.apiKey)
		if err != nil {
			return fmt.Errorf("saving API key: %w", err)
		}
		logSuccess(i18n.T("API key saved to %s"), path)
		logInfo("Key: %s", settings.MaskKey(opts.apiKey))
		if len(opts.paths) == 0 {
			return nil
		}
	}

	apiKey, keySource := resolveAPIKey(opts.apiKey)
	if apiKey == "" {
		return errMissingAPIKey()
	}
	log.Debug().Str("source", keySource).Msg("resolved API key")

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.model != "" {
		cfg.Translator.Model = opts.model
	}
	if opts.baseURL != "" {
		cfg.Translator.BaseURL = opts.baseURL
	}

	paths := opts.paths
	if len(paths) == 0 {
		paths = []string{"."}
		if !opts.quiet {
			logInfo("%s", i18n.T("Processing current directory. Use -r for recursive processing."))
		}
	}

	files, missing := extract.FindSources(paths, opts.recursive)
	if !opts.quiet {
		for _, m := range missing {
			logWarning(i18n.T("Path does not exist: %s"), m)
		}
	}
	if len(files) == 0 {
		return errors.New(i18n.T("No files found to process."))
	}
	if !opts.quiet {
		n := len(files)
		if opts.recursive {
			logInfo(i18n.N("Found %d file recursively", "Found %d files recursively", n), n)
		} else {
			logInfo(i18n.N("Found %d file to process (use -r for recursive)", "Found %d files to process (use -r for recursive)", n), n)
		}
	}

	if opts.outputDir != "" && !opts.dryRun {
		if err := os.MkdirAll(opts.outputDir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	client, err := translate.New(translate.Config{
		BaseURL:    cfg.Translator.BaseURL,
		APIKey:     apiKey,
		Model:      cfg.Translator.Model,
		Proxy:      cfg.Translator.Proxy,
		MaxRetries: cfg.Translator.MaxRetries,
		RetryDelay: cfg.Translator.RetryDelayDuration(),
		Timeout:    cfg.Translator.TimeoutDuration(),
	})
	if err != nil {
		return err
	}

	var lock *lockfile.LockFile
	useCache := cfg.Cache.Enabled
	if opts.cacheSet {
		useCache = opts.cache
	}
	if useCache {
		lockPath := opts.cacheFile
		if lockPath == "" {
			lockPath = cfg.Cache.File
		}
		if lockPath == "" {
			lockPath = lockfile.LockFileName
		}
		lock, err = lockfile.Load(lockPath)
		if err != nil {
			return fmt.Errorf("loading cache: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		logWarning("%s", i18n.T("Interrupted, saving progress..."))
		cancel()
	}()

	proc, err := process.New(process.Options{
		Translator:  client,
		OutputDir:   opts.outputDir,
		DryRun:      opts.dryRun,
		ContextSize: cfg.Detector.ContextSize,
		Lock:        lock,
		OnFileStart: func(path string) {
			if opts.verbose && !opts.quiet {
				logInfo(i18n.T("Processing file: %s"), path)
			}
		},
		OnLog: func(format string, args ...any) {
			log.Debug().Msgf(format, args...)
		},
	})
	if err != nil {
		return err
	}

	sum, results := proc.ProcessFiles(ctx, files)

	for _, res := range results {
		renderResult(res, opts)
	}

	if lock != nil && !opts.dryRun {
		if err := lock.Save(); err != nil {
			logWarning("Could not save cache to %s: %v", lock.Path(), err)
		}
	}

	if ctx.Err() != nil {
		logWarning("%s", i18n.T("Translation interrupted, partial progress saved"))
		return nil
	}

	if !opts.quiet {
		printSummary(sum, opts.dryRun)
	}

	if sum.Errors > 0 && sum.Errors == sum.Processed {
		return fmt.Errorf("all %d files failed", sum.Processed)
	}
	return nil
}

func setupLogging(verbose, quiet bool) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	switch {
	case quiet:
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case verbose:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// resolveAPIKey picks the API key by precedence: flag, then environment,
// then the credentials file.
func resolveAPIKey(flagKey string) (key, source string) {
	if flagKey != "" {
		return flagKey, "flag"
	}
	if env := os.Getenv("OPENAI_API_KEY"); env != "" {
		return env, "environment"
	}
	if stored := settings.APIKey(); stored != "" {
		return stored, "credentials file"
	}
	return "", ""
}

func errMissingAPIKey() error {
	return fmt.Errorf(`OpenAI API key not found. Provide it one of these ways:
  1. Pass --api-key (add --save-api-key to store it)
  2. Set the OPENAI_API_KEY environment variable
  3. Save it to %s

Get an API key at https://platform.openai.com/api-keys`, settings.CredentialsPath())
}

// ---------------------------------------------------------------------------
// Result rendering
// ---------------------------------------------------------------------------

func renderResult(res process.Result, opts runOptions) {
	switch {
	case res.Skipped:
		if opts.verbose && !opts.quiet {
			logInfo("Skipped %s: %s", res.Path, res.SkipReason)
		}
	case res.Err != nil:
		logError("%v", res.Err)
	case res.JapaneseComments == 0:
		if opts.verbose && !opts.quiet {
			logInfo(i18n.T("No Japanese comments found in %s"), res.Path)
		}
	default:
		if opts.verbose && !opts.quiet {
			n := res.JapaneseComments
			logInfo(i18n.N("Found %d comment in %s", "Found %d comments in %s", n), n, res.Path)
		}
		if !res.HasChanges {
			return
		}
		if (opts.dryRun || opts.verbose) && !opts.quiet {
			printUnits(res)
			printDiff(res)
		}
		if !opts.dryRun && !opts.quiet {
			target := res.Path
			if res.OutputPath != res.Path {
				target = res.Path + " -> " + res.OutputPath
			}
			logSuccess("Translated %s", target)
		}
	}
}

func printUnits(res process.Result) {
	fmt.Printf("\n%s%s%s\n", colorBlue, res.Path, colorReset)
	fmt.Printf("  %-6s %-30s %s\n", "Line", "Original", "Translated")
	fmt.Printf("  %s\n", strings.Repeat("─", 76))
	for _, u := range res.Units {
		orig := truncateCell(strings.TrimSpace(u.Text), 30)
		trans := truncateCell(strings.TrimSpace(u.Translated), 40)
		fmt.Printf("  %-6d %-30s %s\n", u.Line, orig, trans)
	}
}

func printDiff(res process.Result) {
	diff, err := rewrite.UnifiedDiff(filepath.Base(res.Path), res.OriginalContent, res.UpdatedContent)
	if err != nil {
		logWarning("Could not render diff for %s: %v", res.Path, err)
		return
	}
	if diff == "" {
		return
	}
	fmt.Println()
	for _, line := range strings.Split(strings.TrimRight(diff, "\n"), "\n") {
		fmt.Println(colorizeDiffLine(line))
	}
}

func colorizeDiffLine(line string) string {
	switch {
	case strings.HasPrefix(line, "@@"):
		return colorBlue + line + colorReset
	case strings.HasPrefix(line, "+"):
		return colorGreen + line + colorReset
	case strings.HasPrefix(line, "-"):
		return colorRed + line + colorReset
	default:
		return line
	}
}

func printSummary(sum process.Summary, dryRun bool) {
	fmt.Fprintf(os.Stderr, "\n%s%s%s\n", colorBlue, i18n.T("Translation Summary:"), colorReset)
	fmt.Fprintf(os.Stderr, "  "+i18n.T("Files processed: %d")+"\n", sum.Processed)
	fmt.Fprintf(os.Stderr, "  "+i18n.T("Files translated: %d")+"\n", sum.Translated)
	fmt.Fprintf(os.Stderr, "  "+i18n.T("Files skipped: %d")+"\n", sum.Skipped)
	fmt.Fprintf(os.Stderr, "  "+i18n.T("Errors: %d")+"\n", sum.Errors)
	fmt.Fprintf(os.Stderr, "  "+i18n.T("Comments found: %d")+"\n", sum.CommentsFound)
	fmt.Fprintf(os.Stderr, "  "+i18n.T("Japanese comments: %d")+"\n", sum.JapaneseComments)
	fmt.Fprintf(os.Stderr, "  "+i18n.T("Comments translated: %d")+"\n", sum.TranslatedComments)
	if dryRun {
		logInfo("%s", i18n.T("Dry run complete. No files were modified."))
	}
}

// truncateCell shortens s to max runes for table display.
func truncateCell(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max-3]) + "..."
}

// ---------------------------------------------------------------------------
// languages command
// ---------------------------------------------------------------------------

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported languages and their comment markers",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%-12s %-28s %s\n", "Language", "Extensions", "Comment markers")
			fmt.Println(strings.Repeat("─", 72))
			for _, l := range extract.Languages() {
				fmt.Printf("%-12s %-28s %s\n", l.Name, strings.Join(l.Extensions, " "), l.Markers())
			}
		},
	}
}

// ---------------------------------------------------------------------------
// version command
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("jp-to-en version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}
