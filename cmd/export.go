/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/drillnet/internal/infrastructure/config"
	"github.com/eslsoft/drillnet/internal/usecase/snapshot"
)

const (
	exportOutputKey = "snapshot.export.output"
	exportTablesKey = "snapshot.export.tables"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export drill history into a SQLite archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		outputPath := viper.GetString(exportOutputKey)
		tableList := tablesFromConfig(exportTablesKey)
		if outputPath == "" {
			outputPath = fmt.Sprintf("drillnet-%s.db", time.Now().Format("20060102-150405"))
		}
		if dir := filepath.Dir(outputPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
		}

		opts := []snapshot.Option{}
		if len(tableList) > 0 {
			opts = append(opts, snapshot.WithTables(tableList))
		}
		svc, err := snapshot.NewService("postgres", cfg.DatabaseURL(), opts...)
		if err != nil {
			return fmt.Errorf("create snapshot service: %w", err)
		}

		stats, err := svc.Export(ctx, outputPath)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "archived %d exercises and %d mastery rows to %s\n",
			stats.Exercises, stats.Mastery, outputPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringP("output", "o", "", "archive file path (default drillnet-<timestamp>.db)")
	exportCmd.Flags().StringSlice("tables", nil, "restrict export to these tables")
	bindFlagToViper(exportOutputKey, exportCmd.Flags().Lookup("output"))
	bindFlagToViper(exportTablesKey, exportCmd.Flags().Lookup("tables"))
}
