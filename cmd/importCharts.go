package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/dosatsu-tools/internal/chart"
	"github.com/ademuri/dosatsu-tools/internal/store"
)

var importChartsCmd = &cobra.Command{
	Use:   "import-charts <file>",
	Short: "Loads a chart JSON file into the database",
	Long:  `The file is an object keyed by chart date (yyyy-mm-dd), each holding a list of {artist, song, position}. Re-importing a week replaces it.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		weeks, stored, err := importCharts(viper.GetString("database"), args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		fmt.Printf("Imported %d chart weeks, %d in the database\n", weeks, stored)
	},
}

func init() {
	rootCmd.AddCommand(importChartsCmd)
}

// importCharts loads the chart file and returns how many weeks it held and how
// many the database now has.
func importCharts(dbPath string, path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("opening charts: %w", err)
	}
	defer f.Close()

	charts, err := chart.Load(f)
	if err != nil {
		return 0, 0, fmt.Errorf("reading %s: %w", path, err)
	}

	db, err := store.New(dbPath)
	if err != nil {
		return 0, 0, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	for _, date := range charts.Dates() {
		var entries []store.ChartEntry
		for _, e := range charts[date] {
			entries = append(entries, store.ChartEntry{
				Artist:   e.Artist,
				Song:     e.Song,
				Position: e.Position,
			})
		}
		if err := db.AddChart(date, entries); err != nil {
			return 0, 0, fmt.Errorf("importing %s: %w", date, err)
		}
	}

	stored, err := db.WeekCount()
	if err != nil {
		return 0, 0, err
	}
	return len(charts), stored, nil
}
