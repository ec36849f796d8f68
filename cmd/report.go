// =============================================================================
// Order Report Bot - Report Command
// =============================================================================
//
// This file defines the 'report' command, which builds the same Excel report
// the bot delivers, from DOCX files already on disk.
//
// COMMAND USAGE:
//   orderbot report [files...] [flags]
//
// FLAGS:
//   --output, -o  : Report path (default: named after report_name_format)
//   --append      : Add rows to an existing report instead of replacing it
//                   (requires --output)
//   --jobs        : Files extracted in parallel (default: 4)
//
// Files that cannot be read or carry no order number are skipped and listed.
// Rows keep the order of the arguments.
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/docx-order-report/internal/extractor"
	"github.com/ginjaninja78/docx-order-report/internal/report"
	"github.com/ginjaninja78/docx-order-report/internal/types"
	"github.com/ginjaninja78/docx-order-report/pkg/utils"
)

// errAppendNeedsOutput is returned for --append without --output: a generated
// name never points at an existing report.
var errAppendNeedsOutput = errors.New("--append requires --output")

var (
	reportOutput string
	reportAppend bool
	reportJobs   int
)

var reportCmd = &cobra.Command{
	Use:   "report [files...]",
	Short: "Build an Excel report from DOCX order forms",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReport(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Report path")
	reportCmd.Flags().BoolVar(&reportAppend, "append", false, "Append rows to the report at --output")
	reportCmd.Flags().IntVar(&reportJobs, "jobs", 4, "Files extracted in parallel")
}

func runReport(cmd *cobra.Command, paths []string) error {
	if reportAppend && reportOutput == "" {
		return errAppendNeedsOutput
	}

	out := cmd.OutOrStdout()

	records, skipped := extractFiles(cmd.Context(), extractor.NewDocxExtractor(logger), paths, reportJobs)
	for _, s := range skipped {
		fmt.Fprintf(out, "  ✗ %s\n", s)
	}

	if len(records) == 0 {
		return fmt.Errorf("no valid records in %d file(s)", len(paths))
	}

	output := reportOutput
	if output == "" {
		output = utils.GenerateReportFileName(cfg.ReportNameFormat, time.Now(), map[string]string{"user": "cli"})
	}

	builder := report.NewBuilder()
	write := builder.Build
	if reportAppend {
		write = builder.Append
		if !utils.FileExists(output) {
			logger.Info("no report to append to, creating it", zap.String("path", output))
		}
	}
	if err := write(records, output); err != nil {
		return err
	}

	logger.Info("report written",
		zap.String("path", output),
		zap.Int("rows", len(records)),
		zap.Bool("append", reportAppend))
	fmt.Fprintf(out, "✓ %d row(s) -> %s\n", len(records), output)
	return nil
}

// extractFiles extracts paths concurrently and returns the valid records in
// argument order, plus a description of every skipped file.
func extractFiles(ctx context.Context, ext extractor.Extractor, paths []string, jobs int) ([]types.FieldRecord, []string) {
	if ctx == nil {
		ctx = context.Background()
	}
	if jobs < 1 {
		jobs = 1
	}

	found := make([]types.FieldRecord, len(paths))
	errs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		g.Go(func() error {
			found[i], errs[i] = ext.Extract(gctx, path)
			return nil
		})
	}
	_ = g.Wait()

	var (
		records []types.FieldRecord
		skipped []string
	)
	for i, path := range paths {
		switch {
		case errs[i] != nil:
			skipped = append(skipped, fmt.Sprintf("%s: %v", filepath.Base(path), errs[i]))
		case !found[i].Valid():
			skipped = append(skipped, fmt.Sprintf("%s: no order number", filepath.Base(path)))
		default:
			records = append(records, found[i])
		}
	}
	return records, skipped
}
