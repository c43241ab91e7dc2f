/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"log/slog"
	"os"

	"github.com/sji-bdl/bdlimport/pkg/config"
	"github.com/spf13/cobra"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Creates reports in the API for new spreadsheet responses",
	Long: `Reads all responses, skips the header and, for every row, searches the
API for a report with the same date, city and name. Reports that are not
found are created. Rows that fail are skipped and listed at the end.

Use --start-row to continue an interrupted run from the row that follows
the last processed one.`,
	Run: func(cmd *cobra.Command, _ []string) {
		opts = append(opts, importFlags(cmd)...)
		cfg := config.New(opts...)
		if err := cfg.Validate(); err != nil {
			slog.Error("Invalid settings", "error", err)
			os.Exit(1)
		}

		ctx, cancel := runContext(cfg)
		defer cancel()

		bdl, loc := newBDLImport(cfg)
		defer loc.Close()

		res, err := bdl.Import(ctx, newSource(cfg))
		res.Log()
		if err != nil {
			slog.Error("Import failed", "error", err, "last-row", res.LastRow)
			_ = loc.Close()
			cancel()
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringP("file", "f", "",
		"read responses from a local .xlsx or .csv file instead of Google Sheets")
	importCmd.Flags().IntP("start-row", "s", 1,
		"first sheet row to import, the header is row 0")
	importCmd.Flags().IntP("limit", "l", 0,
		"maximal number of rows to import, 0 means all")
	importCmd.Flags().BoolP("dry-run", "n", false,
		"check reports but do not create them")
	importCmd.Flags().Bool("no-geocode", false,
		"do not add geolocation to reports")
	importCmd.Flags().Duration("timeout", 0,
		"timeout of a single HTTP request")
	importCmd.Flags().Duration("deadline", 0,
		"limit for the whole import")
}

// importFlags converts command line flags to options.
func importFlags(cmd *cobra.Command) []config.Option {
	var res []config.Option
	flags := cmd.Flags()

	if f, _ := flags.GetString("file"); f != "" {
		res = append(res, config.OptSourceFile(f))
	}
	if flags.Changed("start-row") {
		s, _ := flags.GetInt("start-row")
		res = append(res, config.OptStartRow(s))
	}
	if l, _ := flags.GetInt("limit"); l > 0 {
		res = append(res, config.OptLimit(l))
	}
	if dry, _ := flags.GetBool("dry-run"); dry {
		res = append(res, config.OptDryRun(true))
	}
	if noGeo, _ := flags.GetBool("no-geocode"); noGeo {
		res = append(res, config.OptWithGeocode(false))
	}
	if t, _ := flags.GetDuration("timeout"); t > 0 {
		res = append(res, config.OptTimeout(t))
	}
	if d, _ := flags.GetDuration("deadline"); d > 0 {
		res = append(res, config.OptDeadline(d))
	}
	return res
}
