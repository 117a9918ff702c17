package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ademuri/dosatsu-tools/internal/classify"
)

var coverageCmd = &cobra.Command{
	Use:   "coverage",
	Short: "Summarizes the combined genre cache",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out, err := cacheCoverage(viper.GetString("cache"), viper.GetString("format"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(coverageCmd)

	var format string
	coverageCmd.Flags().StringVar(&format, "format", "table", "Output format: table or yaml")
	viper.BindPFlag("format", coverageCmd.Flags().Lookup("format"))
}

func cacheCoverage(path string, format string) (string, error) {
	log, err := newLogger()
	if err != nil {
		return "", err
	}
	defer log.Sync()

	cache, err := classify.OpenCache(path, log)
	if err != nil {
		return "", err
	}
	cov := classify.CacheCoverage(cache)

	switch format {
	case "table":
		return coverageAnalysis(cov).String(), nil
	case "yaml":
		bs, err := yaml.Marshal(cov)
		if err != nil {
			return "", fmt.Errorf("encoding coverage: %w", err)
		}
		return string(bs), nil
	}
	return "", fmt.Errorf("--format: unknown format %q", format)
}
