// Copyright © 2020 Dmitry Mozzherin <dmozzherin@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gnames/gnsys"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	bdlimport "github.com/sji-bdl/bdlimport/pkg"
	"github.com/sji-bdl/bdlimport/pkg/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

//go:embed bdlimport.yaml
var configText string

var (
	opts []config.Option
)

// cfgData purpose is to achieve automatic import of data from the
// configuration file and environment.
type cfgData struct {
	CacheDir              string
	SheetsCredentialsFile string
	APIServer             string
	APIUser               string
	APIPassword           string
	Env                   string
	TokenHeader           string
	SheetID               string
	SheetRange            string
	Timeout               time.Duration
	Deadline              time.Duration
	WithGeocode           bool
	GeocoderURL           string
	GeoCountries          string
	JobsNum               int
}

// envVars are settings that are usually given by environment variables.
// When they are missing, defaults are used with a warning.
var envVars = []struct {
	key, env, def string
}{
	{"APIServer", "API_SERVER", "localhost"},
	{"APIUser", "API_USER", "sji-bdl"},
	{"APIPassword", "API_PASSWORD", "sji-bdl"},
	{"Env", "NODE_ENV", "development"},
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bdlimport",
	Short: "Imports Bad Date List responses from Google Sheets to the BDL API",
	Long: `Reads responses of the "Bad Date List" form from a Google spreadsheet
(or its .xlsx/.csv export) and creates reports in the Bad Date List API.
Reports that already exist in the API (same date, city and name) are
skipped.`,
	Run: func(cmd *cobra.Command, args []string) {
		version, err := cmd.Flags().GetBool("version")
		if err != nil {
			slog.Error("Cannot get flag", "error", err)
			os.Exit(1)
		}
		if version {
			fmt.Printf("\nversion: %s\nbuild: %s\n\n", bdlimport.Version, bdlimport.Build)
			os.Exit(0)
		}

		_ = cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogger, initConfig)

	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Show debug messages")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colors in logs")
	rootCmd.Flags().BoolP("version", "V", false, "Returns version and build date")
}

// initLogger sets tint as the default slog handler.
func initLogger() {
	level := slog.LevelInfo
	if debug, _ := rootCmd.PersistentFlags().GetBool("debug"); debug {
		level = slog.LevelDebug
	}
	noColor, _ := rootCmd.PersistentFlags().GetBool("no-color")
	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    noColor,
	})
	slog.SetDefault(slog.New(handler))
}

// initConfig reads in config file, .env file and ENV variables if set.
func initConfig() {
	var err error
	var homeDir, cfgDir string
	configFile := "bdlimport"

	if err = godotenv.Load(); err != nil {
		slog.Debug(".env file is not loaded", "error", err)
	}

	// Find home directory.
	homeDir, err = os.UserHomeDir()
	if err != nil {
		slog.Error("Cannot find home dir", "error", err)
		os.Exit(1)
	}
	cfgDir = filepath.Join(homeDir, ".config")

	// Search config in home directory with name "bdlimport" (without extension).
	viper.AddConfigPath(cfgDir)
	viper.SetConfigName(configFile)

	configPath := filepath.Join(cfgDir, fmt.Sprintf("%s.yaml", configFile))
	touchConfigFile(configPath)

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		slog.Error("Config file bdlimport.yaml not found", "error", err)
		os.Exit(1)
	}

	for _, v := range envVars {
		_ = viper.BindEnv(v.key, v.env)
	}
	_ = viper.BindEnv("SheetID", "SHEET_ID")
	_ = viper.BindEnv("SheetRange", "SHEET_RANGE")

	warnDefaults()
	getOpts()
}

// warnDefaults reports settings that fall back to their default values.
func warnDefaults() {
	for _, v := range envVars {
		if !viper.IsSet(v.key) {
			slog.Warn(v.env+" is not set, using default", "default", v.def)
		}
	}
}

// getOpts imports data from the configuration file. Some of the settings can
// be overriden by command line flags.
func getOpts() []config.Option {
	cfg := cfgData{}
	err := viper.Unmarshal(&cfg)
	if err != nil {
		slog.Error("Cannot unmarshal config file", "error", err)
	}

	if cfg.CacheDir != "" {
		opts = append(opts, config.OptCacheDir(cfg.CacheDir))
	}
	if cfg.SheetsCredentialsFile != "" {
		opts = append(opts, config.OptSheetsCredentialsFile(cfg.SheetsCredentialsFile))
	}
	if cfg.APIServer != "" {
		opts = append(opts, config.OptAPIServer(cfg.APIServer))
	}
	if cfg.APIUser != "" {
		opts = append(opts, config.OptAPIUser(cfg.APIUser))
	}
	if cfg.APIPassword != "" {
		opts = append(opts, config.OptAPIPassword(cfg.APIPassword))
	}
	if cfg.Env != "" {
		opts = append(opts, config.OptEnv(cfg.Env))
	}
	if cfg.TokenHeader != "" {
		opts = append(opts, config.OptTokenHeader(cfg.TokenHeader))
	}
	if cfg.SheetID != "" {
		opts = append(opts, config.OptSheetID(cfg.SheetID))
	}
	if cfg.SheetRange != "" {
		opts = append(opts, config.OptSheetRange(cfg.SheetRange))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, config.OptTimeout(cfg.Timeout))
	}
	if cfg.Deadline > 0 {
		opts = append(opts, config.OptDeadline(cfg.Deadline))
	}
	if viper.IsSet("WithGeocode") {
		opts = append(opts, config.OptWithGeocode(cfg.WithGeocode))
	}
	if cfg.GeocoderURL != "" {
		opts = append(opts, config.OptGeocoderURL(cfg.GeocoderURL))
	}
	if cfg.GeoCountries != "" {
		opts = append(opts, config.OptGeoCountries(cfg.GeoCountries))
	}
	if cfg.JobsNum != 0 {
		opts = append(opts, config.OptJobsNum(cfg.JobsNum))
	}
	return opts
}

// touchConfigFile checks if config file exists, and if not, it gets created.
func touchConfigFile(configPath string) {
	fileExists, _ := gnsys.FileExists(configPath)
	if fileExists {
		return
	}

	slog.Info("Creating config file", "path", configPath)
	createConfig(configPath)
}

// createConfig creates config file.
func createConfig(path string) {
	err := gnsys.MakeDir(filepath.Dir(path))
	if err != nil {
		slog.Error("Cannot create config dir", "error", err)
		os.Exit(1)
	}

	err = os.WriteFile(path, []byte(configText), 0644)
	if err != nil {
		slog.Error("Cannot write to config file", "error", err)
		os.Exit(1)
	}
}
