package exporter

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/scooplog/scooplog/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var exportDate = time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

func testConfig(t *testing.T) *models.Config {
	t.Helper()
	return &models.Config{
		OutputPath:   t.TempDir(),
		OutputFolder: "scooplog",
		OutputDest:   "local",
	}
}

func sampleRows() ([]FlavorHistoryRow, []MenuEntryRow) {
	last := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	soldOut := time.Date(2026, 8, 25, 14, 0, 0, 0, time.UTC)
	gap := 42
	flavors := []FlavorHistoryRow{
		FlavorRow(&models.FlavorRecord{
			ID:                 "fl-1",
			Name:               "Black Sesame",
			Category:           "nutty",
			FirstAppeared:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			LastAppeared:       &last,
			TotalAppearances:   6,
			TotalDaysAvailable: 6,
			RarityScore:        8.0,
		}),
		FlavorRow(&models.FlavorRecord{
			ID:               "fl-2",
			Name:             "Vanilla",
			Category:         "classic",
			FirstAppeared:    time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC),
			TotalAppearances: 900, TotalDaysAvailable: 900,
			RarityScore: 1.0,
		}),
	}
	entries := []MenuEntryRow{
		MenuRow(&models.DailyMenuEntry{
			ID:               "me-1",
			FlavorID:         "fl-1",
			Date:             last,
			AppearanceNumber: 6,
			DaysSinceLast:    &gap,
			SoldOutAt:        &soldOut,
		}),
		MenuRow(&models.DailyMenuEntry{
			ID:               "me-2",
			FlavorID:         "fl-2",
			Date:             last,
			AppearanceNumber: 900,
		}),
	}
	return flavors, entries
}

func TestCSVExport(t *testing.T) {
	cfg := testConfig(t)
	out, err := New(cfg, FormatCSV, exportDate)
	require.NoError(t, err)

	flavors, entries := sampleRows()
	require.NoError(t, out.WriteFlavors(flavors))
	require.NoError(t, out.WriteMenuEntries(entries))

	base := filepath.Join(cfg.OutputPath, "scooplog", "date=2026-09-01")

	f, err := os.Open(filepath.Join(base, "flavor_history", "data.csv"))
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, flavorHeaders, records[0])
	assert.Equal(t, []string{
		"fl-1", "Black Sesame", "nutty", "2024-01-15", "2026-08-25",
		"6", "6", "8.0", "legendary",
	}, records[1])
	// No last appearance yields an empty column, not a zero date.
	assert.Equal(t, "", records[2][4])
	assert.Equal(t, "regular", records[2][8])

	m, err := os.Open(filepath.Join(base, "menu_entries", "data.csv"))
	require.NoError(t, err)
	defer m.Close()
	records, err = csv.NewReader(m).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, menuHeaders, records[0])
	assert.Equal(t, []string{"me-1", "fl-1", "2026-08-25", "6", "42", "true"}, records[1])
	assert.Equal(t, []string{"me-2", "fl-2", "2026-08-25", "900", "", "false"}, records[2])
}

func TestJSONExport(t *testing.T) {
	cfg := testConfig(t)
	out, err := New(cfg, FormatJSON, exportDate)
	require.NoError(t, err)

	flavors, entries := sampleRows()
	require.NoError(t, out.WriteFlavors(flavors))
	require.NoError(t, out.WriteMenuEntries(entries))

	base := filepath.Join(cfg.OutputPath, "scooplog", "date=2026-09-01")

	lines := readNDJSON(t, filepath.Join(base, "flavor_history", "data.json"))
	require.Len(t, lines, 2)
	assert.Equal(t, "Black Sesame", lines[0]["name"])
	assert.Equal(t, "2026-08-25", lines[0]["lastAppeared"])
	assert.Equal(t, "legendary", lines[0]["rarityLevel"])
	_, hasLast := lines[1]["lastAppeared"]
	assert.False(t, hasLast, "unset last appearance must be omitted")

	lines = readNDJSON(t, filepath.Join(base, "menu_entries", "data.json"))
	require.Len(t, lines, 2)
	assert.Equal(t, float64(42), lines[0]["daysSinceLast"])
	assert.Equal(t, true, lines[0]["soldOut"])
	assert.Equal(t, false, lines[1]["soldOut"])
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := New(testConfig(t), "xml", exportDate)
	assert.Error(t, err)
}

func TestNewRejectsUnknownCloudProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.OutputDest = "cloud"
	cfg.Cloud.Provider = "gcs"
	_, err := New(cfg, FormatParquet, exportDate)
	assert.Error(t, err)
}

func readNDJSON(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var row map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &row))
		out = append(out, row)
	}
	require.NoError(t, scanner.Err())
	return out
}
