package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/dosatsu-tools/internal/classify"
	"github.com/ademuri/dosatsu-tools/internal/store"
)

type UnmappedConfig struct {
	DbPath    string
	CachePath string
	// MaxPosition limits the analysis to the top of each chart; zero is all.
	MaxPosition int
	StartYear   int
	EndYear     int
	Limit       int
}

var unmappedCmd = &cobra.Command{
	Use:   "unmapped",
	Short: "Lists the most frequent charting artists without a genre",
	Long: `Exports the combined cache into the chart database, then reports what share
of chart entries have a classified artist and which unclassified artists chart
most often.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out, err := findUnmapped(UnmappedConfig{
			DbPath:      viper.GetString("database"),
			CachePath:   viper.GetString("cache"),
			MaxPosition: viper.GetInt("top"),
			StartYear:   viper.GetInt("unmapped-start-year"),
			EndYear:     viper.GetInt("unmapped-end-year"),
			Limit:       viper.GetInt("limit"),
		})
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Println(out)
	},
}

func init() {
	rootCmd.AddCommand(unmappedCmd)

	var top, limit int
	unmappedCmd.Flags().IntVar(&top, "top", 40, "Only count entries at or above this chart position (0 for all)")
	viper.BindPFlag("top", unmappedCmd.Flags().Lookup("top"))
	unmappedCmd.Flags().IntVarP(&limit, "limit", "n", 100, "Number of artists to list")
	viper.BindPFlag("limit", unmappedCmd.Flags().Lookup("limit"))

	var startYear, endYear int
	unmappedCmd.Flags().IntVar(&startYear, "start-year", 0, "Only charts in or after this year")
	viper.BindPFlag("unmapped-start-year", unmappedCmd.Flags().Lookup("start-year"))
	unmappedCmd.Flags().IntVar(&endYear, "end-year", 0, "Only charts in or before this year")
	viper.BindPFlag("unmapped-end-year", unmappedCmd.Flags().Lookup("end-year"))
}

func findUnmapped(config UnmappedConfig) (Analysis, error) {
	log, err := newLogger()
	if err != nil {
		return Analysis{}, err
	}
	defer log.Sync()

	cache, err := classify.OpenCache(config.CachePath, log)
	if err != nil {
		return Analysis{}, err
	}

	db, err := store.New(config.DbPath)
	if err != nil {
		return Analysis{}, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := db.SaveClassifications(classificationRows(cache)); err != nil {
		return Analysis{}, err
	}

	coverage, err := db.ChartCoverage(config.MaxPosition, config.StartYear, config.EndYear)
	if err != nil {
		return Analysis{}, err
	}
	artists, err := db.UnmappedArtists(config.MaxPosition, config.StartYear, config.EndYear, config.Limit)
	if err != nil {
		return Analysis{}, err
	}
	return unmappedAnalysis(coverage, artists), nil
}

// classificationRows returns the found entries of a cache as database rows.
func classificationRows(cache *classify.Cache) []store.ArtistGenre {
	var rows []store.ArtistGenre
	for _, artist := range cache.Names() {
		result, _ := cache.Get(artist)
		r, ok := result.Record()
		if !ok {
			continue
		}
		rows = append(rows, store.ArtistGenre{
			Artist:     artist,
			Genre:      r.Genre.String(),
			Source:     r.Source.String(),
			Confidence: string(r.Confidence),
			Tags:       strings.Join(r.RawTags(), ", "),
		})
	}
	return rows
}
