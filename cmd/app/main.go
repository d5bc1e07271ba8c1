package main

import (
	"context"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/rulekit/internal"
)

func main() {
	cmd := &cli.Command{
		Name:  "rulekit",
		Usage: "Quality tooling for AI coding-assistant rule files: structural linting, MDC validation, token accounting, and PR quality gates",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("RULEKIT_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "lint",
				Usage:     "Structurally validate rule files (filenames, headings, code fences, examples)",
				ArgsUsage: "<file-or-dir> [more...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Structured JSON output"},
				},
				Action: internal.RunLint,
			},
			{
				Name:      "validate",
				Usage:     "Validate MDC frontmatter schemas",
				ArgsUsage: "<file-or-dir> [more...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Structured JSON output"},
				},
				Action: internal.RunValidate,
			},
			{
				Name:      "md",
				Usage:     "Check files with the external markdownlint binary",
				ArgsUsage: "<file> [more...]",
				Action:    internal.RunMD,
			},
			{
				Name:      "fmt",
				Usage:     "Format files with the external markdownlint binary",
				ArgsUsage: "<file> [more...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "check", Usage: "Only check, do not fix"},
				},
				Action: internal.RunFmt,
			},
			{
				Name:      "tokens",
				Usage:     "Count rule file tokens and compare full vs concise variants",
				ArgsUsage: "<file-or-dir>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "compare", Usage: "Compare full rules against concise variants"},
					&cli.BoolFlag{Name: "json", Usage: "Structured JSON output"},
					&cli.BoolFlag{Name: "markdown", Usage: "Markdown report output"},
					&cli.BoolFlag{Name: "no-cache", Usage: "Skip the on-disk token count cache"},
				},
				Action: internal.RunTokens,
			},
			{
				Name:      "migrate",
				Usage:     "Convert .md rule files to .mdc with synthesized frontmatter",
				ArgsUsage: "<file-or-dir>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "dry-run", Usage: "Show planned conversions without modifying files"},
					&cli.BoolFlag{Name: "force", Usage: "Overwrite existing .mdc targets"},
				},
				Action: internal.RunMigrate,
			},
			{
				Name:  "report",
				Usage: "Generate the PR quality report for a commit range",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "base",
						Usage:   "Base commit SHA",
						Value:   "HEAD~1",
						Sources: cli.EnvVars("GITHUB_BASE_SHA"),
					},
					&cli.StringFlag{
						Name:    "head",
						Usage:   "Head commit SHA",
						Value:   "HEAD",
						Sources: cli.EnvVars("GITHUB_SHA"),
					},
					&cli.BoolFlag{Name: "json", Usage: "Structured JSON output"},
				},
				Action: internal.RunReport,
			},
			{
				Name:   "serve",
				Usage:  "Run the live validation dashboard (HTTP API + SSE)",
				Action: internal.RunServe,
			},
			{
				Name:   "mcp",
				Usage:  "Serve rulekit tools over the Model Context Protocol (stdio)",
				Action: internal.RunMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
