// File: cmd/batch.go
package cmd

import (
	"fmt"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/formforge/internal/generator"
	"github.com/xkilldash9x/formforge/internal/jobs"
	"github.com/xkilldash9x/formforge/internal/observability"
)

// newBatchCmd creates the `batch` command.
func newBatchCmd() *cobra.Command {
	var (
		outDir string
		dryRun bool
	)

	batchCmd := &cobra.Command{
		Use:   "batch [jobs...]",
		Short: "Generates a PDF for each job file, sharing one browser",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}

			loaded := make([]*jobs.Job, 0, len(args))
			reqs := make([]generator.Request, 0, len(args))
			for _, arg := range args {
				path, err := homedir.Expand(arg)
				if err != nil {
					return fmt.Errorf("invalid job path: %w", err)
				}
				job, err := jobs.Load(path)
				if err != nil {
					return err
				}
				req, err := job.Request(cfg.Page())
				if err != nil {
					return fmt.Errorf("job %q: %w", job.Name, err)
				}
				loaded = append(loaded, job)
				reqs = append(reqs, req)
			}

			components, err := initializeComponents(ctx, cfg, reqs, dryRun, logger)
			defer components.Shutdown(ctx)
			if err != nil {
				return err
			}

			items, batchErr := components.Generator.Batch(ctx, reqs)

			summaries := make([]summary, 0, len(items))
			for _, item := range items {
				job := loaded[item.Index]
				if item.Err != nil {
					s := newSummary(job.Name, "", nil)
					s.Error = item.Err.Error()
					summaries = append(summaries, s)
					continue
				}
				out := ""
				if !dryRun {
					out = batchOutputPath(job, outDir)
					if err := writeOutput(out, item.Result.Bytes); err != nil {
						return err
					}
					logger.Info("Document written.", zap.String("job", job.Name), zap.String("path", out))
				}
				summaries = append(summaries, newSummary(job.Name, out, item.Result))
			}

			if err := encodeYAML(cmd.OutOrStdout(), summaries); err != nil {
				return err
			}
			return batchErr
		},
	}

	batchCmd.Flags().StringVar(&outDir, "out-dir", "", "directory for all outputs, overriding each job's output key")
	batchCmd.Flags().BoolVar(&dryRun, "dry-run", false, "lay out every form and print summaries without writing PDFs")
	batchCmd.Flags().Bool("continue-on-error", false, "keep going after a job fails")
	batchCmd.Flags().Duration("min-interval", 0, "minimum time between two jobs")

	return batchCmd
}

func batchOutputPath(job *jobs.Job, outDir string) string {
	if outDir != "" {
		return filepath.Join(outDir, job.Name+".pdf")
	}
	if out := job.OutputPath(); out != "" {
		return out
	}
	return job.Name + ".pdf"
}
