package main

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vamsikrishnavetsa/truestate/internal/ingest"
	"github.com/vamsikrishnavetsa/truestate/internal/logger"
	"github.com/vamsikrishnavetsa/truestate/internal/utility"
)

func newImportCmd() *cobra.Command {
	var (
		batchSize int
		quiet     bool
	)
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import a sales CSV file in batches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := commandContext(cmd)
			defer cancel()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			info, err := f.Stat()
			if err != nil {
				return err
			}

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if batchSize <= 0 {
				batchSize = a.Config.UploadBatchSize
			}
			importer := ingest.NewImporter(a.Store, ingest.Options{
				BatchSize: batchSize,
				Location:  a.Location,
				OnProgress: func(p ingest.Progress) {
					logrus.WithFields(logrus.Fields{
						"batch":    p.BatchID,
						"rows":     p.Rows,
						"inserted": p.Inserted,
						"skipped":  p.Skipped,
					}).Debug("Batch flushed")
				},
			})

			var src io.Reader = f
			if !quiet {
				bar := progressbar.DefaultBytes(info.Size(), "importing")
				reader := progressbar.NewReader(f, bar)
				src = &reader
				defer bar.Finish()
			}

			result, err := importer.Import(ctx, src)
			if result != nil {
				logger.LogCLIAction("import_csv", map[string]interface{}{
					"file":      args[0],
					"size":      utility.FormatBytes(uint64(info.Size())),
					"import_id": result.ImportID,
					"inserted":  result.Inserted,
					"skipped":   result.Skipped,
					"failed":    result.Failed,
				})
				fmt.Fprintln(cmd.OutOrStdout())
				if perr := printJSON(cmd.OutOrStdout(), result); perr != nil {
					return perr
				}
			}
			return err
		},
	}
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "rows per insert batch (default UPLOAD_BATCH_SIZE)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "disable the progress bar")
	return cmd
}
