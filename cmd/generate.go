// File: cmd/generate.go
package cmd

import (
	"fmt"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/formforge/internal/generator"
	"github.com/xkilldash9x/formforge/internal/jobs"
	"github.com/xkilldash9x/formforge/internal/observability"
)

// newGenerateCmd creates the `generate` command.
func newGenerateCmd() *cobra.Command {
	var (
		jobPath string
		outPath string
		dryRun  bool
	)

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generates one fillable PDF from a job file",
		Long: `Generates one fillable PDF from a job file.

The output path is taken from --out, then from the job's output key, then
defaults to <job name>.pdf. Use --out - to write the document to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := configFrom(cmd)
			if err != nil {
				return err
			}

			path, err := homedir.Expand(jobPath)
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

			out := outPath
			if out == "" {
				out = job.OutputPath()
			}
			if out == "" {
				out = job.Name + ".pdf"
			}
			if out != "-" {
				if out, err = homedir.Expand(out); err != nil {
					return fmt.Errorf("invalid output path: %w", err)
				}
			}

			reqs := []generator.Request{req}
			components, err := initializeComponents(ctx, cfg, reqs, dryRun, logger)
			defer components.Shutdown(ctx)
			if err != nil {
				return err
			}

			res, err := components.Generator.Generate(ctx, req)
			if err != nil {
				return fmt.Errorf("job %q: %w", job.Name, err)
			}

			if dryRun {
				return encodeYAML(cmd.OutOrStdout(), newSummary(job.Name, "", res))
			}
			if out == "-" {
				_, err := cmd.OutOrStdout().Write(res.Bytes)
				return err
			}
			if err := writeOutput(out, res.Bytes); err != nil {
				return err
			}
			logger.Info("Document written.", zap.String("job", job.Name), zap.String("path", out))
			return encodeYAML(cmd.OutOrStdout(), newSummary(job.Name, out, res))
		},
	}

	generateCmd.Flags().StringVarP(&jobPath, "job", "j", "", "job file describing the form (required)")
	generateCmd.Flags().StringVarP(&outPath, "out", "o", "", "output path, or - for stdout")
	generateCmd.Flags().BoolVar(&dryRun, "dry-run", false, "lay out the form and print a summary without writing a PDF")
	_ = generateCmd.MarkFlagRequired("job")

	return generateCmd
}
