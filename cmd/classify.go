package cmd

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/dosatsu-tools/internal/chart"
	"github.com/ademuri/dosatsu-tools/internal/classify"
	"github.com/ademuri/dosatsu-tools/internal/store"
)

type ClassifyConfig struct {
	Classifier ClassifierConfig
	DbPath     string

	Artists   []string
	InputPath string
	FromDb    bool
	StartYear int
	EndYear   int

	FlushInterval    int
	ProgressInterval int
	MaxAuthFailures  int
}

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify [artist...]",
	Short: "Classifies artists into genres",
	Long: `Artists come from the arguments, from --input (one name per line, or a
chart JSON file), or from the chart database with --from-db. Artists already
in the cache are not looked up again.`,
	Run: func(cmd *cobra.Command, args []string) {
		classifier, err := classifierConfigFromFlags()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		config := ClassifyConfig{
			Classifier:       classifier,
			DbPath:           viper.GetString("database"),
			Artists:          args,
			InputPath:        viper.GetString("input"),
			FromDb:           viper.GetBool("from-db"),
			StartYear:        viper.GetInt("start-year"),
			EndYear:          viper.GetInt("end-year"),
			FlushInterval:    viper.GetInt("flush-interval"),
			ProgressInterval: viper.GetInt("progress-interval"),
			MaxAuthFailures:  viper.GetInt("max-auth-failures"),
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		out, err := classifyArtists(ctx, config)
		if out != nil {
			fmt.Println(out)
		}
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	var input string
	classifyCmd.Flags().StringVarP(&input, "input", "i", "", "File of artist names, one per line, or a chart JSON file")
	viper.BindPFlag("input", classifyCmd.Flags().Lookup("input"))

	var fromDb bool
	classifyCmd.Flags().BoolVar(&fromDb, "from-db", false, "Classify every artist in the chart database")
	viper.BindPFlag("from-db", classifyCmd.Flags().Lookup("from-db"))

	var startYear, endYear int
	classifyCmd.Flags().IntVar(&startYear, "start-year", 0, "Only artists charting in or after this year")
	viper.BindPFlag("start-year", classifyCmd.Flags().Lookup("start-year"))
	classifyCmd.Flags().IntVar(&endYear, "end-year", 0, "Only artists charting in or before this year")
	viper.BindPFlag("end-year", classifyCmd.Flags().Lookup("end-year"))

	var flushInterval, progressInterval, maxAuthFailures, providerFlushInterval int
	classifyCmd.Flags().IntVar(&flushInterval, "flush-interval", classify.DefaultFlushInterval, "Save the cache after this many artists")
	viper.BindPFlag("flush-interval", classifyCmd.Flags().Lookup("flush-interval"))
	classifyCmd.Flags().IntVar(&progressInterval, "progress-interval", classify.DefaultProgressInterval, "Log progress after this many artists")
	viper.BindPFlag("progress-interval", classifyCmd.Flags().Lookup("progress-interval"))
	classifyCmd.Flags().IntVar(&maxAuthFailures, "max-auth-failures", classify.DefaultMaxAuthFailures, "Stop after this many consecutive authentication failures")
	viper.BindPFlag("max-auth-failures", classifyCmd.Flags().Lookup("max-auth-failures"))
	classifyCmd.Flags().IntVar(&providerFlushInterval, "provider-flush-interval", 1, "Save each provider cache after this many new entries")
	viper.BindPFlag("provider-flush-interval", classifyCmd.Flags().Lookup("provider-flush-interval"))

	var spotifyDelay, musicBrainzDelay string
	classifyCmd.Flags().StringVar(&spotifyDelay, "spotify-delay", "100ms", "Minimum time between Spotify requests")
	viper.BindPFlag("spotify-delay", classifyCmd.Flags().Lookup("spotify-delay"))
	classifyCmd.Flags().StringVar(&musicBrainzDelay, "musicbrainz-delay", "1s", "Minimum time between MusicBrainz requests")
	viper.BindPFlag("musicbrainz-delay", classifyCmd.Flags().Lookup("musicbrainz-delay"))

	var musicBrainzRetries int
	classifyCmd.Flags().IntVar(&musicBrainzRetries, "musicbrainz-retries", 3, "Attempts per MusicBrainz request while it is throttling")
	viper.BindPFlag("musicbrainz-retries", classifyCmd.Flags().Lookup("musicbrainz-retries"))

	// Endpoint overrides, for testing against local servers.
	for _, name := range []string{"spotify-token-url", "spotify-api-url", "musicbrainz-url"} {
		var url string
		classifyCmd.Flags().StringVar(&url, name, "", "")
		classifyCmd.Flags().MarkHidden(name)
		viper.BindPFlag(name, classifyCmd.Flags().Lookup(name))
	}
}

func classifyArtists(ctx context.Context, config ClassifyConfig) (*Analysis, error) {
	names, err := artistsToClassify(config)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errors.New("no artists to classify: pass names, --input or --from-db")
	}

	log, err := newLogger()
	if err != nil {
		return nil, err
	}
	defer log.Sync()

	hybrid, err := newHybrid(ctx, config.Classifier, log)
	if err != nil {
		return nil, err
	}

	if uncached := hybrid.NeedPrimaryLookup(names); len(uncached) > 0 && !config.Classifier.spotifyCredentials().Complete() {
		return nil, fmt.Errorf("%d artists need a Spotify lookup and --spotify_id and --spotify_secret (or SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET) are not set: %w", len(uncached), classify.ErrAuthentication)
	}

	batch := classify.NewBatch(hybrid, log)
	batch.FlushInterval = config.FlushInterval
	batch.ProgressInterval = config.ProgressInterval
	batch.MaxAuthFailures = config.MaxAuthFailures

	stats, err := batch.ClassifyMany(ctx, names)
	out := statsAnalysis(stats)
	if err != nil {
		return &out, fmt.Errorf("classifying: %w", err)
	}
	return &out, nil
}

func artistsToClassify(config ClassifyConfig) ([]string, error) {
	names := config.Artists

	if config.InputPath != "" {
		f, err := os.Open(config.InputPath)
		if err != nil {
			return nil, fmt.Errorf("--input: %w", err)
		}
		defer f.Close()
		fromFile, err := readArtists(f, config.StartYear, config.EndYear)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", config.InputPath, err)
		}
		names = append(names, fromFile...)
	}

	if config.FromDb {
		db, err := store.New(config.DbPath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()
		fromDb, err := db.UniqueArtists(config.StartYear, config.EndYear)
		if err != nil {
			return nil, err
		}
		names = append(names, fromDb...)
	}

	return dedupe(names), nil
}

// readArtists reads either a chart JSON file or a plain list of names, one per
// line. Blank lines and lines starting with # are skipped.
func readArtists(r io.Reader, startYear, endYear int) ([]string, error) {
	bs, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	if trimmed := bytes.TrimSpace(bs); len(trimmed) > 0 && trimmed[0] == '{' {
		charts, err := chart.Load(bytes.NewReader(trimmed))
		if err != nil {
			return nil, err
		}
		return charts.Artists(startYear, endYear), nil
	}

	var names []string
	scanner := bufio.NewScanner(bytes.NewReader(bs))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	return names, scanner.Err()
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
