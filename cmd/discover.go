package main

import (
	"bufio"
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/linkdapi/leads-cli/internal/discovery"
	"github.com/linkdapi/leads-cli/internal/display"
	"github.com/linkdapi/leads-cli/internal/export"
	"github.com/linkdapi/leads-cli/internal/gateway"
	"github.com/linkdapi/leads-cli/internal/model"
	"github.com/linkdapi/leads-cli/pkg/linkd"
)

var discoverCmd = &cobra.Command{
	Use:   "discover [username ...]",
	Short: "Discover similar profiles starting from seed usernames",
	Long:  "Resolves the seed usernames, then expands similar profiles breadth-first up to --depth levels. Interrupting the run (Ctrl-C) still reports and exports everything discovered so far.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate(); err != nil {
			return err
		}

		seedsFile, _ := cmd.Flags().GetString("file")
		seeds := args
		if seedsFile != "" {
			fromFile, err := readSeedsFile(seedsFile)
			if err != nil {
				return err
			}
			seeds = append(seeds, fromFile...)
		}
		if len(seeds) == 0 {
			return eris.New("at least one seed username is required (args or --file)")
		}

		depth, _ := cmd.Flags().GetInt("depth")
		if !cmd.Flags().Changed("depth") {
			depth = cfg.Discovery.DefaultDepth
		}
		if depth < 0 {
			return eris.New("--depth must be >= 0")
		}
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		if !cmd.Flags().Changed("concurrency") {
			concurrency = cfg.Discovery.MaxConcurrent
		}
		quiet, _ := cmd.Flags().GetBool("quiet")
		formats, _ := cmd.Flags().GetStringSlice("export")
		outDir, _ := cmd.Flags().GetString("out")
		if outDir == "" {
			outDir = cfg.Export.OutputDir
		}

		console := display.NewConsole(quiet)

		client := linkd.NewClient(cfg.API.Key,
			linkd.WithBaseURL(cfg.API.BaseURL),
			linkd.WithRateLimit(cfg.API.RateLimit),
		)
		gw := gateway.New(client, gateway.Config{
			MaxRetries: cfg.Discovery.MaxRetries,
			RetryDelay: cfg.Discovery.RetryDelay(),
			LogFunc:    console.Log,
		})

		engine := discovery.New(gw, concurrency, console)

		report, err := engine.Discover(ctx, seeds, depth)
		if err != nil {
			if !eris.Is(err, context.Canceled) {
				return eris.Wrap(err, "discover")
			}
			console.Log("⚠ discovery interrupted - showing partial results")
		}

		console.Summary(report)
		console.Table(report.Profiles, 20)

		return runExports(report.Profiles, formats, outDir, console)
	},
}

// runExports writes the record list in each requested format.
func runExports(profiles []model.Profile, formats []string, outDir string, console *display.Console) error {
	for _, format := range formats {
		var (
			path string
			err  error
		)
		switch strings.ToLower(strings.TrimSpace(format)) {
		case "":
			continue
		case "json":
			path, err = export.ToJSON(profiles, outDir, "")
		case "csv":
			path, err = export.ToCSV(profiles, outDir, "")
		case "tree":
			path, err = export.ToTree(profiles, outDir, "", cfg.Export.TreeMaxChildren)
		case "xlsx":
			path, err = export.ToXLSX(profiles, outDir, "")
		default:
			return eris.Errorf("unknown export format %q (want json, csv, tree, or xlsx)", format)
		}
		if err != nil {
			return eris.Wrapf(err, "export %s", format)
		}
		console.Log("✓ exported " + path)
		zap.L().Info("export written", zap.String("format", format), zap.String("path", path))
	}
	return nil
}

// readSeedsFile reads one username per line, skipping blanks and # comments.
func readSeedsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open seeds file %s", path)
	}
	defer f.Close() //nolint:errcheck

	var seeds []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		seeds = append(seeds, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, eris.Wrapf(err, "read seeds file %s", path)
	}
	return seeds, nil
}

func init() {
	discoverCmd.Flags().Int("depth", 2, "maximum expansion depth (0 = seeds only)")
	discoverCmd.Flags().Int("concurrency", 10, "max concurrent node expansions per level")
	discoverCmd.Flags().String("file", "", "file with seed usernames, one per line")
	discoverCmd.Flags().StringSlice("export", nil, "export formats: json, csv, tree, xlsx")
	discoverCmd.Flags().String("out", "", "output directory for exports (default from config)")
	discoverCmd.Flags().Bool("quiet", false, "suppress activity log output")
	rootCmd.AddCommand(discoverCmd)
}
