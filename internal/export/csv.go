// Package export materializes filtered listings as CSV attachments.
package export

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"ledgerbot/internal/models"
)

// Trades renders id,date,owner,symbol,amount rows. Callers must handle the
// empty case themselves; an empty set never becomes an empty file.
func Trades(items []models.TradeLog) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "date", "owner", "symbol", "amount"}); err != nil {
		return nil, err
	}
	for _, t := range items {
		row := []string{
			strconv.FormatUint(t.ID, 10),
			t.TradeDate,
			t.OwnerName,
			t.Symbol,
			t.Amount.String(),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Positions renders id,owner,symbol,quantity,avg_price rows.
func Positions(items []models.Position) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "owner", "symbol", "quantity", "avg_price"}); err != nil {
		return nil, err
	}
	for _, p := range items {
		row := []string{
			strconv.FormatUint(p.ID, 10),
			p.OwnerName,
			p.Symbol,
			p.Quantity.String(),
			p.AvgPrice.String(),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
