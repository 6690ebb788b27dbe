// Command salesctl thao tác với collection sales từ dòng lệnh: import CSV, đếm, xem bộ lọc, truy vấn.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vamsikrishnavetsa/truestate/internal/bootstrap"
	"github.com/vamsikrishnavetsa/truestate/internal/global"
	"github.com/vamsikrishnavetsa/truestate/internal/logger"
)

var timeout time.Duration

func main() {
	root := &cobra.Command{
		Use:           "salesctl",
		Short:         "Command-line tools for the sales collection",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init(nil)
		},
	}
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "overall command timeout")
	root.AddCommand(
		newImportCmd(),
		newCountCmd(),
		newFiltersCmd(),
		newQueryCmd(),
	)

	err := root.Execute()
	logger.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// openApp nạp cấu hình và kết nối storage; caller phải gọi Close
func openApp(ctx context.Context) (*bootstrap.App, error) {
	if err := bootstrap.InitGlobal(); err != nil {
		return nil, err
	}
	if global.MongoDB_ServerConfig.StorageDriver == bootstrap.DriverMemory {
		logrus.Warn("STORAGE_DRIVER=memory: dữ liệu không được lưu lại sau khi lệnh kết thúc")
	}
	return bootstrap.New(ctx, global.MongoDB_ServerConfig)
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
