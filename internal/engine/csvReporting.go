package engine

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"stocksim/types"
)

// ExportTransactions writes the account's history, newest first, as CSV.
func (e *Engine) ExportTransactions(ctx context.Context, accountID int64, w io.Writer) error {
	txs, err := e.History(ctx, accountID)
	if err != nil {
		return err
	}
	return writeTransactionsCSV(w, txs, e.cfg.Currency)
}

// ExportTransactionsFile writes the account's history to a CSV file at path.
func (e *Engine) ExportTransactionsFile(ctx context.Context, accountID int64, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	if err := e.ExportTransactions(ctx, accountID, f); err != nil {
		return err
	}
	return f.Close()
}

func writeTransactionsCSV(w io.Writer, txs []types.Transaction, currency string) error {
	cw := csv.NewWriter(w)

	header := []string{
		"id",
		"timestamp", // RFC3339
		"symbol",
		"side",
		"shares",
		"price",
		"total",
		"currency",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, tx := range txs {
		record := []string{
			tx.ID.String(),
			tx.Timestamp.UTC().Format(time.RFC3339),
			tx.Symbol,
			string(tx.Side),
			strconv.FormatInt(tx.Shares, 10),
			tx.Price.StringFixed(types.MinorUnits(currency)),
			types.RoundToMinor(tx.Total(), currency).StringFixed(types.MinorUnits(currency)),
			currency,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
