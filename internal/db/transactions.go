package db

import (
	"context"
	"fmt"
)

// Transaction mirrors one row of the fraud_transactions table.
type Transaction struct {
	RowIndex          int64
	TransDateTime     string
	CCNum             int64
	Merchant          string
	Category          string
	Amount            float64
	First             string
	Last              string
	Gender            string
	Street            string
	City              string
	State             string
	Zip               int64
	Lat               float64
	Long              float64
	CityPop           int64
	Job               string
	DOB               string
	TransNum          string
	UnixTime          int64
	MerchLat          float64
	MerchLong         float64
	IsFraud           int
}

const insertTransactionSQL = `INSERT INTO fraud_transactions (
	row_index, trans_date_trans_time, cc_num, merchant, category, amt,
	first, last, gender, street, city, state, zip, lat, long, city_pop,
	job, dob, trans_num, unix_time, merch_lat, merch_long, is_fraud
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// InsertTransactions bulk-inserts a batch of transactions in a single
// database transaction.
func (d *DB) InsertTransactions(ctx context.Context, batch []Transaction) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertTransactionSQL)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range batch {
		if _, err := stmt.ExecContext(ctx,
			t.RowIndex, t.TransDateTime, t.CCNum, t.Merchant, t.Category, t.Amount,
			t.First, t.Last, t.Gender, t.Street, t.City, t.State, t.Zip, t.Lat,
			t.Long, t.CityPop, t.Job, t.DOB, t.TransNum, t.UnixTime, t.MerchLat,
			t.MerchLong, t.IsFraud,
		); err != nil {
			return fmt.Errorf("inserting transaction %s: %w", t.TransNum, err)
		}
	}

	return tx.Commit()
}
