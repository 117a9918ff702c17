/*
Copyright 2020 Google LLC

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
	"bytes"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/ademuri/dosatsu-tools/internal/classify"
	"github.com/ademuri/dosatsu-tools/internal/genre"
	"github.com/ademuri/dosatsu-tools/internal/store"
)

// Analysis is a table with a one-line summary underneath.
type Analysis struct {
	results [][]string
	summary string
}

func (a Analysis) String() string {
	out := new(bytes.Buffer)
	if len(a.results) > 0 {
		table := tablewriter.NewWriter(out)
		table.Header(a.results[0])
		for _, row := range a.results[1:] {
			if err := table.Append(row); err != nil {
				return fmt.Sprintf("Error rendering table: %v", err)
			}
		}
		if err := table.Render(); err != nil {
			return fmt.Sprintf("Error rendering table: %v", err)
		}
	}
	fmt.Fprintf(out, "%s\n", a.summary)
	return out.String()
}

func percent(n, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(n)/float64(total)*100)
}

// genreRows lists every canonical genre with its count, in taxonomy order.
func genreRows(counts map[genre.Genre]int, total int) [][]string {
	results := [][]string{{"Genre", "Artists", "Share"}}
	for _, g := range genre.All {
		if counts[g] == 0 {
			continue
		}
		results = append(results, []string{g.String(), strconv.Itoa(counts[g]), percent(counts[g], total)})
	}
	return results
}

func statsAnalysis(s classify.Stats) Analysis {
	return Analysis{
		results: genreRows(s.Genres, s.Found()),
		summary: fmt.Sprintf("Processed %d of %d artists: %d from Spotify, %d from MusicBrainz, %d not found (%s found)",
			s.Processed, s.Total, s.Primary, s.Secondary, s.NotFound, percent(s.Found(), s.Processed)),
	}
}

func coverageAnalysis(c classify.Coverage) Analysis {
	return Analysis{
		results: genreRows(c.Genres, c.Classified),
		summary: fmt.Sprintf("%d cached artists: %d classified (%d Spotify, %d MusicBrainz), %d not found",
			c.Total, c.Classified, c.Spotify, c.MusicBrainz, c.NotFound),
	}
}

func unmappedAnalysis(c store.ChartCoverage, artists []store.ArtistAppearances) Analysis {
	results := [][]string{{"Rank", "Artist", "Appearances"}}
	for i, a := range artists {
		results = append(results, []string{strconv.Itoa(i + 1), a.Artist, strconv.FormatInt(a.Appearances, 10)})
	}
	return Analysis{
		results: results,
		summary: fmt.Sprintf("%d of %d chart entries have a classified artist (%.1f%%)",
			c.Classified, c.Entries, c.Percent()),
	}
}
