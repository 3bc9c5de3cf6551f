// Package exporter dumps the flavor catalog and menu history to local or
// cloud storage as CSV, newline-delimited JSON, or Parquet, partitioned by
// export date.
package exporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/scooplog/scooplog/internal/cloudwriter"
	"github.com/scooplog/scooplog/internal/models"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
)

const (
	FormatCSV     = "csv"
	FormatJSON    = "json"
	FormatParquet = "parquet"
)

type Output interface {
	WriteFlavors(rows []FlavorHistoryRow) error
	WriteMenuEntries(rows []MenuEntryRow) error
}

// New builds the exporter for the configured format. Parquet output goes to
// S3 when the output destination is not local.
func New(cfg *models.Config, format string, exportDate time.Time) (Output, error) {
	partition := filepath.Join(cfg.OutputFolder, "date="+exportDate.Format(time.DateOnly))
	base := filepath.Join(cfg.OutputPath, partition)

	switch format {
	case FormatCSV:
		return &CSVExport{basePath: base}, nil
	case FormatJSON:
		return &JSONExport{basePath: base}, nil
	case FormatParquet:
		p := &ParquetExport{basePath: base}
		if cfg.OutputDest != "local" {
			switch cfg.Cloud.Provider {
			case "s3":
				factory, err := cloudwriter.NewS3WriterFactory(cfg.Cloud.Region)
				if err != nil {
					return nil, fmt.Errorf("failed to create cloud writer factory: %w", err)
				}
				p.cloudWriterFactory = factory
				p.cloudBucketName = cfg.Cloud.BucketName
				p.cloudPrefix = partition
			default:
				return nil, fmt.Errorf("unsupported cloud storage provider: %s", cfg.Cloud.Provider)
			}
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

type CSVExport struct {
	basePath string
}

func (c *CSVExport) WriteFlavors(rows []FlavorHistoryRow) error {
	return c.writeFile("flavor_history", flavorHeaders, func(w *csv.Writer) error {
		for _, row := range rows {
			last := ""
			if row.LastAppeared != nil {
				last = *row.LastAppeared
			}
			record := []string{
				row.ID, row.Name, row.Category, row.FirstAppeared, last,
				strconv.Itoa(int(row.TotalAppearances)),
				strconv.Itoa(int(row.TotalDaysAvailable)),
				strconv.FormatFloat(row.RarityScore, 'f', 1, 64),
				row.RarityLevel,
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *CSVExport) WriteMenuEntries(rows []MenuEntryRow) error {
	return c.writeFile("menu_entries", menuHeaders, func(w *csv.Writer) error {
		for _, row := range rows {
			gap := ""
			if row.DaysSinceLast != nil {
				gap = strconv.Itoa(int(*row.DaysSinceLast))
			}
			record := []string{
				row.ID, row.FlavorID, row.Date,
				strconv.Itoa(int(row.AppearanceNumber)),
				gap,
				strconv.FormatBool(row.SoldOut),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return nil
	})
}

var (
	flavorHeaders = []string{
		"id", "name", "category", "first_appeared", "last_appeared",
		"total_appearances", "total_days_available", "rarity_score", "rarity_level",
	}
	menuHeaders = []string{
		"id", "flavor_id", "date", "appearance_number", "days_since_last", "sold_out",
	}
)

func (c *CSVExport) writeFile(topic string, headers []string, body func(*csv.Writer) error) error {
	file, err := createFile(c.basePath, topic, "data.csv")
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(headers); err != nil {
		return err
	}
	if err := body(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

type JSONExport struct {
	basePath string
}

func (j *JSONExport) WriteFlavors(rows []FlavorHistoryRow) error {
	file, err := createFile(j.basePath, "flavor_history", "data.json")
	if err != nil {
		return err
	}
	defer file.Close()
	for _, row := range rows {
		if err := writeJSONLine(file, row); err != nil {
			return err
		}
	}
	return nil
}

func (j *JSONExport) WriteMenuEntries(rows []MenuEntryRow) error {
	file, err := createFile(j.basePath, "menu_entries", "data.json")
	if err != nil {
		return err
	}
	defer file.Close()
	for _, row := range rows {
		if err := writeJSONLine(file, row); err != nil {
			return err
		}
	}
	return nil
}

func writeJSONLine(w io.Writer, row any) error {
	data, err := json.Marshal(row)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n"))
	return err
}

type ParquetExport struct {
	basePath           string
	cloudWriterFactory cloudwriter.CloudWriterFactory
	cloudBucketName    string
	cloudPrefix        string
}

func (p *ParquetExport) WriteFlavors(rows []FlavorHistoryRow) error {
	return p.writeParquet("flavor_history", new(FlavorHistoryRow), len(rows), func(pw *writer.ParquetWriter) error {
		for _, row := range rows {
			if err := pw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *ParquetExport) WriteMenuEntries(rows []MenuEntryRow) error {
	return p.writeParquet("menu_entries", new(MenuEntryRow), len(rows), func(pw *writer.ParquetWriter) error {
		for _, row := range rows {
			if err := pw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *ParquetExport) writeParquet(topic string, schema interface{}, count int, body func(*writer.ParquetWriter) error) error {
	fw, err := p.newFileWriter(topic)
	if err != nil {
		return err
	}

	pw, err := writer.NewParquetWriter(fw, schema, 4)
	if err != nil {
		return fmt.Errorf("failed to create ParquetWriter: %w", err)
	}

	if err := body(pw); err != nil {
		return fmt.Errorf("failed to write %s rows: %w", topic, err)
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("failed to finalize %s parquet file: %w", topic, err)
	}
	return fw.Close()
}

func (p *ParquetExport) newFileWriter(topic string) (source.ParquetFile, error) {
	if p.cloudWriterFactory != nil {
		objectPath := filepath.Join(p.cloudPrefix, topic, "data.parquet")
		cw, err := p.cloudWriterFactory.NewWriter(p.cloudBucketName, objectPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		return newCloudParquetFile(cw), nil
	}

	fullPath := filepath.Join(p.basePath, topic)
	if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
		return nil, err
	}
	fw, err := local.NewLocalFileWriter(filepath.Join(fullPath, "data.parquet"))
	if err != nil {
		return nil, fmt.Errorf("failed to create local file writer: %w", err)
	}
	return fw, nil
}

func createFile(basePath, topic, name string) (*os.File, error) {
	fullPath := filepath.Join(basePath, topic)
	if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
		return nil, err
	}
	return os.Create(filepath.Join(fullPath, name))
}
