package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var importCachesCmd = &cobra.Command{
	Use:   "import-caches",
	Short: "Folds the Spotify and MusicBrainz caches into the combined cache",
	Long:  `Spotify entries are imported first. Artists already in the combined cache are left alone, and nothing is looked up.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		n, err := importCaches(context.Background())
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Printf("Imported %d artists\n", n)
	},
}

func init() {
	rootCmd.AddCommand(importCachesCmd)
}

func importCaches(ctx context.Context) (int, error) {
	config, err := classifierConfigFromFlags()
	if err != nil {
		return 0, err
	}
	log, err := newLogger()
	if err != nil {
		return 0, err
	}
	defer log.Sync()

	hybrid, err := newHybrid(ctx, config, log)
	if err != nil {
		return 0, err
	}
	return hybrid.ImportProviderCaches()
}
