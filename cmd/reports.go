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

// reportsCmd represents the reports command
var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Prints reports that are already in the API",
	Run: func(_ *cobra.Command, _ []string) {
		cfg := config.New(append(opts, config.OptWithGeocode(false))...)
		ctx, cancel := runContext(cfg)
		defer cancel()

		bdl, _ := newBDLImport(cfg)
		reports, err := bdl.Reports(ctx)
		if err != nil {
			slog.Error("Cannot get reports", "server", cfg.BaseURL(), "error", err)
			cancel()
			os.Exit(1)
		}
		for _, r := range reports {
			date := r.Date
			if d, ok := report.ParseDate(r.Date); ok {
				date = d
			}
			fmt.Printf("%s: %s, %s\n", date, r.City, r.Perpetrator.Name)
		}
	},
}

func init() {
	rootCmd.AddCommand(reportsCmd)
}
