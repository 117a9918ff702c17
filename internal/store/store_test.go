package store

import (
	"path/filepath"
	"reflect"
	"testing"
)

func createTestDb(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "charts.db")

	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("New(%s) error: %v", dbPath, err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func addTestCharts(t *testing.T, s *Store) {
	t.Helper()
	weeks := map[string][]ChartEntry{
		"1999-12-25": {
			{Artist: "Santana Featuring Rob Thomas", Song: "Smooth", Position: 1},
			{Artist: "Destiny's Child", Song: "Bills, Bills, Bills", Position: 45},
		},
		"2000-01-01": {
			{Artist: "Santana Featuring Rob Thomas", Song: "Smooth", Position: 1},
			{Artist: "Destiny's Child", Song: "Bills, Bills, Bills", Position: 2},
			{Artist: "Kid Rock", Song: "Only God Knows Why", Position: 50},
		},
		"2001-06-02": {
			{Artist: "Shaggy", Song: "Angel", Position: 1},
			{Artist: "Destiny's Child", Song: "Survivor", Position: 2},
		},
	}
	for date, entries := range weeks {
		if err := s.AddChart(date, entries); err != nil {
			t.Fatalf("AddChart(%s): %v", date, err)
		}
	}
}

func TestNewIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "charts.db")
	for i := 0; i < 2; i++ {
		s, err := New(dbPath)
		if err != nil {
			t.Fatalf("New (open %d): %v", i+1, err)
		}
		s.Close()
	}
}

func TestNewOnExistingDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "charts.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveClassifications([]ArtistGenre{{Artist: "Shaggy", Genre: "Pop", Source: "spotify"}}); err != nil {
		t.Fatalf("SaveClassifications: %v", err)
	}
	s.Close()

	s, err = New(dbPath)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer s.Close()
	var updated string
	if err := s.db.QueryRow("SELECT updated FROM ArtistGenre WHERE artist = ?", "Shaggy").Scan(&updated); err != nil {
		t.Fatalf("reading updated: %v", err)
	}
	if updated == "" {
		t.Error("updated not set")
	}
}

func TestAddChart(t *testing.T) {
	s := createTestDb(t)
	addTestCharts(t, s)

	// Re-adding a week replaces it.
	if err := s.AddChart("2001-06-02", []ChartEntry{{Artist: "Shaggy", Song: "Angel", Position: 1}}); err != nil {
		t.Fatalf("AddChart: %v", err)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM Chart WHERE date = ?", "2001-06-02").Scan(&count); err != nil {
		t.Fatalf("querying count: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 entry, got %d", count)
	}

	weeks, err := s.WeekCount()
	if err != nil {
		t.Fatalf("WeekCount: %v", err)
	}
	if weeks != 3 {
		t.Errorf("WeekCount = %d, want 3", weeks)
	}
}

func TestUniqueArtists(t *testing.T) {
	s := createTestDb(t)
	addTestCharts(t, s)

	tests := []struct {
		start, end int
		want       []string
	}{
		{0, 0, []string{"Destiny's Child", "Kid Rock", "Santana Featuring Rob Thomas", "Shaggy"}},
		{2000, 2000, []string{"Destiny's Child", "Kid Rock", "Santana Featuring Rob Thomas"}},
		{2001, 0, []string{"Destiny's Child", "Shaggy"}},
		{2020, 2025, nil},
	}
	for _, tt := range tests {
		got, err := s.UniqueArtists(tt.start, tt.end)
		if err != nil {
			t.Fatalf("UniqueArtists(%d, %d): %v", tt.start, tt.end, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("UniqueArtists(%d, %d) = %v, want %v", tt.start, tt.end, got, tt.want)
		}
	}
}

func TestSaveClassifications(t *testing.T) {
	s := createTestDb(t)

	if err := s.SaveClassifications([]ArtistGenre{
		{Artist: "Shaggy", Genre: "Pop", Source: "spotify", Confidence: "high"},
	}); err != nil {
		t.Fatalf("SaveClassifications: %v", err)
	}
	if err := s.SaveClassifications([]ArtistGenre{
		{Artist: "Shaggy", Genre: "Latin", Source: "musicbrainz", Confidence: "medium", Tags: "reggae, dancehall"},
	}); err != nil {
		t.Fatalf("SaveClassifications: %v", err)
	}

	var genre, source, tags string
	err := s.db.QueryRow("SELECT genre, source, tags FROM ArtistGenre WHERE artist = ?", "Shaggy").Scan(&genre, &source, &tags)
	if err != nil {
		t.Fatalf("reading Shaggy: %v", err)
	}
	if genre != "Latin" || source != "musicbrainz" || tags != "reggae, dancehall" {
		t.Errorf("Shaggy = %q, %q, %q; want Latin, musicbrainz, \"reggae, dancehall\"", genre, source, tags)
	}
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM ArtistGenre").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("%d rows, want 1", n)
	}
}

func TestChartCoverage(t *testing.T) {
	s := createTestDb(t)
	addTestCharts(t, s)
	if err := s.SaveClassifications([]ArtistGenre{
		{Artist: "Destiny's Child", Genre: "R&B", Source: "spotify"},
		{Artist: "Kid Rock", Genre: "Unknown", Source: "musicbrainz"},
	}); err != nil {
		t.Fatal(err)
	}

	c, err := s.ChartCoverage(0, 0, 0)
	if err != nil {
		t.Fatalf("ChartCoverage: %v", err)
	}
	if c.Entries != 7 || c.Classified != 3 {
		t.Errorf("ChartCoverage(all) = %+v", c)
	}

	c, err = s.ChartCoverage(40, 2000, 2001)
	if err != nil {
		t.Fatalf("ChartCoverage: %v", err)
	}
	if c.Entries != 4 || c.Classified != 2 {
		t.Errorf("ChartCoverage(top 40, 2000-2001) = %+v", c)
	}
	if c.Percent() != 50 {
		t.Errorf("Percent = %v, want 50", c.Percent())
	}
}

func TestUnmappedArtists(t *testing.T) {
	s := createTestDb(t)
	addTestCharts(t, s)
	if err := s.SaveClassifications([]ArtistGenre{
		{Artist: "Destiny's Child", Genre: "R&B", Source: "spotify"},
		{Artist: "Kid Rock", Genre: "Unknown", Source: "musicbrainz"},
	}); err != nil {
		t.Fatal(err)
	}

	got, err := s.UnmappedArtists(0, 0, 0, 0)
	if err != nil {
		t.Fatalf("UnmappedArtists: %v", err)
	}
	want := []ArtistAppearances{
		{"Santana Featuring Rob Thomas", 2},
		{"Kid Rock", 1},
		{"Shaggy", 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("UnmappedArtists = %v, want %v", got, want)
	}

	got, err = s.UnmappedArtists(40, 2000, 0, 1)
	if err != nil {
		t.Fatalf("UnmappedArtists: %v", err)
	}
	want = []ArtistAppearances{{"Santana Featuring Rob Thomas", 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("UnmappedArtists(top 40, 2000-, limit 1) = %v, want %v", got, want)
	}
}
