package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/starford/rulekit/internal/mcpserver"
	"github.com/starford/rulekit/internal/mdc"
	"github.com/starford/rulekit/internal/mdlint"
	"github.com/starford/rulekit/internal/migrate"
	"github.com/starford/rulekit/internal/prreport"
	"github.com/starford/rulekit/internal/report"
	"github.com/starford/rulekit/internal/rules"
	"github.com/starford/rulekit/internal/storage"
	"github.com/starford/rulekit/internal/tokens"
	pkgconfig "github.com/starford/rulekit/pkg/config"
)

// LoadConfig reads the config file named by the global --config flag,
// starting from defaults. A missing file is fine; defaults apply.
func LoadConfig(cmd *cli.Command) (*Config, error) {
	cfg := NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func (c *Config) linter() *rules.Linter {
	return rules.NewLinter(rules.Limits{
		MaxHeadingLevel: c.Rules.MaxHeadingLevel,
		MaxConciseLines: c.Rules.MaxConciseLines,
	})
}

// RunLint is the action for "rulekit lint": structural validation of
// rule files or directories.
func RunLint(ctx context.Context, cmd *cli.Command) error {
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return err
	}
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return cli.Exit("lint: at least one file or directory required", 1)
	}

	linter := cfg.linter()
	allValid := true
	for _, path := range paths {
		dir, err := report.CollectPath(path, storage.DocExtensions, linter.CheckFile)
		if err != nil {
			return cli.Exit(fmt.Sprintf("lint: %v", err), 1)
		}
		if cmd.Bool("json") {
			if err := report.WriteJSON(os.Stdout, dir); err != nil {
				return err
			}
		} else {
			report.RenderDirectory(os.Stdout, dir)
		}
		allValid = allValid && dir.Valid()
	}
	if !allValid {
		return cli.Exit("", 1)
	}
	return nil
}

// RunValidate is the action for "rulekit validate": MDC frontmatter
// schema validation.
func RunValidate(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return cli.Exit("validate: at least one file or directory required", 1)
	}

	allValid := true
	for _, path := range paths {
		dir, err := report.CollectPath(path, []string{".mdc"}, mdc.ValidateFile)
		if err != nil {
			return cli.Exit(fmt.Sprintf("validate: %v", err), 1)
		}
		if cmd.Bool("json") {
			if err := report.WriteJSON(os.Stdout, dir); err != nil {
				return err
			}
		} else {
			report.RenderDirectory(os.Stdout, dir)
		}
		allValid = allValid && dir.Valid()
	}
	if !allValid {
		return cli.Exit("", 1)
	}
	return nil
}

// RunMD is the action for "rulekit md": check files with the external
// markdownlint binary without modifying them.
func RunMD(ctx context.Context, cmd *cli.Command) error {
	return runExternalLint(ctx, cmd, false)
}

// RunFmt is the action for "rulekit fmt": apply markdownlint fixes.
func RunFmt(ctx context.Context, cmd *cli.Command) error {
	return runExternalLint(ctx, cmd, !cmd.Bool("check"))
}

func runExternalLint(ctx context.Context, cmd *cli.Command, fix bool) error {
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return err
	}

	files := mdlint.FilterMarkdownFiles(cmd.Args().Slice())
	if len(files) == 0 {
		return cli.Exit("no valid Markdown files found", 1)
	}

	runner := mdlint.NewRunner(cfg.Lint.ConfigPath)
	var outcome mdlint.Outcome
	if fix {
		outcome, err = runner.Fix(ctx, files)
	} else {
		outcome, err = runner.Check(ctx, files)
	}
	if err != nil {
		return cli.Exit(fmt.Sprintf("markdownlint: %v", err), 1)
	}
	if outcome.Output != "" {
		fmt.Print(outcome.Output)
	}
	if !outcome.Clean() {
		return cli.Exit("", outcome.ExitCode)
	}
	return nil
}

// RunTokens is the action for "rulekit tokens": count tokens of a file,
// or compare a full rules tree against its concise variants.
func RunTokens(ctx context.Context, cmd *cli.Command) error {
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return err
	}
	path := cmd.Args().First()
	if path == "" {
		return cli.Exit("tokens: a file or directory is required", 1)
	}
	info, err := os.Stat(path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("tokens: path does not exist: %s", path), 1)
	}

	if cmd.Bool("no-cache") {
		cfg.Tokens.CachePath = ""
	}
	calc, closeFn, err := buildCalculator(cfg)
	if err != nil {
		return cli.Exit(fmt.Sprintf("tokens: %v", err), 1)
	}
	if closeFn != nil {
		defer closeFn()
	}

	if !info.IsDir() {
		fc, err := calc.FileTokens(path)
		if err != nil {
			return cli.Exit(fmt.Sprintf("tokens: %v", err), 1)
		}
		if cmd.Bool("json") {
			return report.WriteJSON(os.Stdout, fc)
		}
		fmt.Printf("file: %s\n", fc.File)
		fmt.Printf("total tokens: %d\n", fc.Total)
		if filepath.Ext(path) == ".mdc" {
			fmt.Printf("content tokens (frontmatter excluded): %d\n", fc.Content)
		}
		return nil
	}

	if !cmd.Bool("compare") {
		return cli.Exit("tokens: directory mode requires --compare", 1)
	}
	results, err := calc.ScanDirectory(path, cfg.Rules.ConciseDir)
	if err != nil {
		return cli.Exit(fmt.Sprintf("tokens: %v", err), 1)
	}
	if len(results) == 0 {
		return cli.Exit("tokens: no comparable files found", 1)
	}

	switch {
	case cmd.Bool("json"):
		return report.WriteJSON(os.Stdout, tokens.ComparisonReport{
			Results: results,
			Summary: tokens.Summarize(results),
		})
	case cmd.Bool("markdown"):
		fmt.Println(tokens.MarkdownReport(results))
	default:
		tokens.RenderTable(os.Stdout, results)
	}
	return nil
}

// RunMigrate is the action for "rulekit migrate": convert .md rule files
// to .mdc with synthesized frontmatter.
func RunMigrate(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return cli.Exit("migrate: a file or directory is required", 1)
	}
	info, err := os.Stat(path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("migrate: path does not exist: %s", path), 1)
	}

	m := migrate.New(cmd.Bool("dry-run"), cmd.Bool("force"), slog.Default())

	if !info.IsDir() {
		ok, err := m.File(path)
		if err != nil {
			return cli.Exit(fmt.Sprintf("migrate: %v", err), 1)
		}
		if !ok {
			return cli.Exit("", 1)
		}
		return nil
	}

	converted, failed, err := m.Directory(path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("migrate: %v", err), 1)
	}
	fmt.Printf("\nmigration complete: %d converted, %d failed\n", converted, failed)
	if failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

// RunReport is the action for "rulekit report": the PR quality report.
func RunReport(ctx context.Context, cmd *cli.Command) error {
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return err
	}

	// Token comparison is part of the score; a missing tokenizer surfaces
	// as an unchecked token section rather than a hard failure.
	calc, closeFn, calcErr := buildCalculator(cfg)
	if calcErr != nil {
		slog.Warn("tokenizer unavailable", slog.String("error", calcErr.Error()))
	}
	if closeFn != nil {
		defer closeFn()
	}

	gen := prreport.NewGenerator(cfg.linter(), calc,
		cfg.Rules.FullDir, cfg.Rules.ConciseDir, cfg.Tokens.ReductionTarget)

	rep, err := gen.Generate(ctx, cmd.String("base"), cmd.String("head"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("report: %v", err), 1)
	}

	if cmd.Bool("json") {
		if err := report.WriteJSON(os.Stdout, rep); err != nil {
			return err
		}
	} else {
		fmt.Println(prreport.Markdown(rep))
	}
	if !rep.Passed() {
		return cli.Exit("", 1)
	}
	return nil
}

// RunMCP is the action for "rulekit mcp": serve the MCP tools over stdio.
func RunMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := storage.NewFS(cfg.Rules.Path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("mcp: %v", err), 1)
	}

	calc, closeFn, calcErr := buildCalculator(cfg)
	if calcErr != nil {
		slog.Warn("tokenizer unavailable, token tools disabled",
			slog.String("error", calcErr.Error()))
	}
	if closeFn != nil {
		defer closeFn()
	}

	srv := mcpserver.New(store, cfg.linter(), calc, cfg.Rules.FullDir, cfg.Rules.ConciseDir)
	return srv.ServeStdio()
}

// RunServe is the action for "rulekit serve": the live dashboard.
func RunServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return err
	}
	if err := Run(ctx, WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}
