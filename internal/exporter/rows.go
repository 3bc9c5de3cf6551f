package exporter

import (
	"time"

	"github.com/scooplog/scooplog/internal/models"
	"github.com/scooplog/scooplog/internal/rarity"
)

// FlavorHistoryRow is one catalog record flattened for export. Parquet tags
// define the column schema.
type FlavorHistoryRow struct {
	ID                 string  `json:"id" parquet:"name=id,type=BYTE_ARRAY,convertedtype=UTF8"`
	Name               string  `json:"name" parquet:"name=name,type=BYTE_ARRAY,convertedtype=UTF8"`
	Category           string  `json:"category" parquet:"name=category,type=BYTE_ARRAY,convertedtype=UTF8"`
	FirstAppeared      string  `json:"firstAppeared" parquet:"name=firstAppeared,type=BYTE_ARRAY,convertedtype=UTF8"`
	LastAppeared       *string `json:"lastAppeared,omitempty" parquet:"name=lastAppeared,type=BYTE_ARRAY,convertedtype=UTF8,repetitiontype=OPTIONAL"`
	TotalAppearances   int32   `json:"totalAppearances" parquet:"name=totalAppearances,type=INT32"`
	TotalDaysAvailable int32   `json:"totalDaysAvailable" parquet:"name=totalDaysAvailable,type=INT32"`
	RarityScore        float64 `json:"rarityScore" parquet:"name=rarityScore,type=DOUBLE"`
	RarityLevel        string  `json:"rarityLevel" parquet:"name=rarityLevel,type=BYTE_ARRAY,convertedtype=UTF8"`
}

// MenuEntryRow is one daily menu entry flattened for export.
type MenuEntryRow struct {
	ID               string `json:"id" parquet:"name=id,type=BYTE_ARRAY,convertedtype=UTF8"`
	FlavorID         string `json:"flavorId" parquet:"name=flavorId,type=BYTE_ARRAY,convertedtype=UTF8"`
	Date             string `json:"date" parquet:"name=date,type=BYTE_ARRAY,convertedtype=UTF8"`
	AppearanceNumber int32  `json:"appearanceNumber" parquet:"name=appearanceNumber,type=INT32"`
	DaysSinceLast    *int32 `json:"daysSinceLast,omitempty" parquet:"name=daysSinceLast,type=INT32,repetitiontype=OPTIONAL"`
	SoldOut          bool   `json:"soldOut" parquet:"name=soldOut,type=BOOLEAN"`
}

func FlavorRow(f *models.FlavorRecord) FlavorHistoryRow {
	row := FlavorHistoryRow{
		ID:                 f.ID,
		Name:               f.Name,
		Category:           f.Category,
		FirstAppeared:      f.FirstAppeared.Format(time.DateOnly),
		TotalAppearances:   int32(f.TotalAppearances),
		TotalDaysAvailable: int32(f.TotalDaysAvailable),
		RarityScore:        f.RarityScore,
		RarityLevel:        string(rarity.Classify(f.RarityScore)),
	}
	if f.LastAppeared != nil {
		last := f.LastAppeared.Format(time.DateOnly)
		row.LastAppeared = &last
	}
	return row
}

func MenuRow(e *models.DailyMenuEntry) MenuEntryRow {
	row := MenuEntryRow{
		ID:               e.ID,
		FlavorID:         e.FlavorID,
		Date:             e.Date.Format(time.DateOnly),
		AppearanceNumber: int32(e.AppearanceNumber),
		SoldOut:          e.SoldOutAt != nil,
	}
	if e.DaysSinceLast != nil {
		gap := int32(*e.DaysSinceLast)
		row.DaysSinceLast = &gap
	}
	return row
}
