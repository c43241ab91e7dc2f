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
	"fmt"
	"log/slog"
	"os"

	"github.com/sji-bdl/bdlimport/pkg/config"
	"github.com/sji-bdl/bdlimport/pkg/ent/report"
	"github.com/spf13/cobra"
)

// rowsCmd represents the rows command
var rowsCmd = &cobra.Command{
	Use:   "rows",
	Short: "Prints responses from the spreadsheet",
	Run: func(cmd *cobra.Command, _ []string) {
		if f, _ := cmd.Flags().GetString("file"); f != "" {
			opts = append(opts, config.OptSourceFile(f))
		}
		cfg := config.New(append(opts, config.OptWithGeocode(false))...)
		ctx, cancel := runContext(cfg)
		defer cancel()

		bdl, _ := newBDLImport(cfg)
		rows, err := bdl.Rows(ctx, newSource(cfg))
		if err != nil {
			slog.Error("Cannot read responses", "error", err)
			cancel()
			os.Exit(1)
		}
		for _, row := range rows {
			fmt.Printf("%s: %s, %s\n",
				row.Cell(report.ColTimestamp),
				row.Cell(report.ColCity),
				row.Cell(report.ColPerpName),
			)
		}
	},
}

func init() {
	rootCmd.AddCommand(rowsCmd)

	rowsCmd.Flags().StringP("file", "f", "",
		"read responses from a local .xlsx or .csv file instead of Google Sheets")
}
