package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

var (
	transactionHeader = []string{"transaction_id", "portfolio_id", "seq", "symbol", "side", "quantity", "price", "fee", "total", "cost_basis", "time"}
	valuationHeader   = []string{"portfolio_id", "time", "cash_balance", "total_value", "total_return", "total_return_pct"}
)

// CSV appends transactions and valuations to two CSV files. Headers are
// written only when a file is empty so an existing journal keeps growing
// across runs.
type CSV struct {
	mu           sync.Mutex
	transactions *csv.Writer
	valuations   *csv.Writer
	tf, vf       *os.File
}

func NewCSV(transactionsPath, valuationsPath string) (*CSV, error) {
	tf, err := openAppend(transactionsPath)
	if err != nil {
		return nil, err
	}
	vf, err := openAppend(valuationsPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	j := &CSV{
		transactions: csv.NewWriter(tf),
		valuations:   csv.NewWriter(vf),
		tf:           tf,
		vf:           vf,
	}

	if err := writeHeader(tf, j.transactions, transactionHeader); err != nil {
		j.closeFiles()
		return nil, err
	}
	if err := writeHeader(vf, j.valuations, valuationHeader); err != nil {
		j.closeFiles()
		return nil, err
	}
	return j, nil
}

func openAppend(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	return f, nil
}

func writeHeader(f *os.File, w *csv.Writer, header []string) error {
	st, err := f.Stat()
	if err != nil {
		return err
	}
	if st.Size() > 0 {
		return nil
	}
	if err := w.Write(header); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (j *CSV) RecordTransaction(t TransactionRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	err := j.transactions.Write([]string{
		t.TransactionID,
		t.PortfolioID,
		strconv.FormatInt(t.Seq, 10),
		t.Symbol,
		t.Side,
		d(t.Quantity),
		d(t.Price),
		d(t.Fee),
		d(t.Total),
		d(t.CostBasis),
		t.Time.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	j.transactions.Flush()
	return j.transactions.Error()
}

func (j *CSV) RecordValuation(v ValuationSnapshot) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	err := j.valuations.Write([]string{
		v.PortfolioID,
		v.Time.UTC().Format(time.RFC3339Nano),
		d(v.CashBalance),
		d(v.TotalValue),
		d(v.TotalReturn),
		d(v.TotalReturnPercent),
	})
	if err != nil {
		return err
	}
	j.valuations.Flush()
	return j.valuations.Error()
}

func (j *CSV) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.transactions.Flush()
	if err := j.transactions.Error(); err != nil {
		return err
	}
	j.valuations.Flush()
	if err := j.valuations.Error(); err != nil {
		return err
	}
	return j.closeFiles()
}

func (j *CSV) closeFiles() error {
	if err := j.tf.Close(); err != nil {
		j.vf.Close()
		return err
	}
	return j.vf.Close()
}

func d(x decimal.Decimal) string {
	return x.StringFixed(6)
}
