package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/fraudsight/fraudsight/internal/db"
	"github.com/fraudsight/fraudsight/internal/progress"
)

// datasetBatchSize is the number of rows inserted per database transaction.
const datasetBatchSize = 500

// DatasetResult summarizes one dataset load.
type DatasetResult struct {
	RowsLoaded int
	FraudRows  int
}

// LoadDataset streams a transaction CSV into the database in batches. The
// file must carry a header row; columns are mapped by name, and an unnamed
// leading column is treated as the row index.
func LoadDataset(ctx context.Context, database *db.DB, path string, reporter progress.Reporter, logger *zerolog.Logger) (*DatasetResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols := map[string]int{}
	for i, name := range header {
		if name == "" {
			name = "row_index"
		}
		cols[name] = i
	}
	if _, ok := cols["trans_date_trans_time"]; !ok {
		return nil, fmt.Errorf("dataset %s has no trans_date_trans_time column", path)
	}

	reporter.Start(-1, "Loading transactions")
	defer reporter.Finish()

	result := &DatasetResult{}
	batch := make([]db.Transaction, 0, datasetBatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := database.InsertTransactions(ctx, batch); err != nil {
			return err
		}
		reporter.Add(len(batch))
		batch = batch[:0]
		return nil
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record: %w", err)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		t := parseTransaction(record, cols)
		if t.IsFraud == 1 {
			result.FraudRows++
		}
		result.RowsLoaded++

		batch = append(batch, t)
		if len(batch) >= datasetBatchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	logger.Info().
		Str("path", path).
		Int("rows", result.RowsLoaded).
		Int("fraud_rows", result.FraudRows).
		Msg("dataset loaded")
	return result, nil
}

// parseTransaction maps one CSV record by header position. Missing or
// malformed numeric fields parse as zero rather than failing the load.
func parseTransaction(record []string, cols map[string]int) db.Transaction {
	field := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}
	asInt := func(name string) int64 {
		n, _ := strconv.ParseInt(field(name), 10, 64)
		return n
	}
	asFloat := func(name string) float64 {
		f, _ := strconv.ParseFloat(field(name), 64)
		return f
	}

	return db.Transaction{
		RowIndex:      asInt("row_index"),
		TransDateTime: field("trans_date_trans_time"),
		CCNum:         asInt("cc_num"),
		Merchant:      field("merchant"),
		Category:      field("category"),
		Amount:        asFloat("amt"),
		First:         field("first"),
		Last:          field("last"),
		Gender:        field("gender"),
		Street:        field("street"),
		City:          field("city"),
		State:         field("state"),
		Zip:           asInt("zip"),
		Lat:           asFloat("lat"),
		Long:          asFloat("long"),
		CityPop:       asInt("city_pop"),
		Job:           field("job"),
		DOB:           field("dob"),
		TransNum:      field("trans_num"),
		UnixTime:      asInt("unix_time"),
		MerchLat:      asFloat("merch_lat"),
		MerchLong:     asFloat("merch_long"),
		IsFraud:       int(asInt("is_fraud")),
	}
}
