package journal

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// OrgFile appends every transaction as an Org-mode block, and every
// valuation as a one-line entry, to a diary file.
type OrgFile struct {
	mu sync.Mutex
	f  *os.File
}

func NewOrgFile(path string) (*OrgFile, error) {
	f, err := openAppend(path)
	if err != nil {
		return nil, err
	}
	return &OrgFile{f: f}, nil
}

func (o *OrgFile) RecordTransaction(t TransactionRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	_, err := fmt.Fprintf(o.f, "%s\n", FormatTransactionOrg(t))
	return err
}

func (o *OrgFile) RecordValuation(v ValuationSnapshot) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	_, err := fmt.Fprintf(o.f, "- %s %s value %s return %s (%s%%)\n",
		v.Time.UTC().Format(time.RFC3339), v.PortfolioID,
		v.TotalValue.StringFixed(2), v.TotalReturn.StringFixed(2), v.TotalReturnPercent.StringFixed(2))
	return err
}

func (o *OrgFile) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.f.Close()
}
