// Package orders persists submitted orders and observed balances in a
// WAL-backed journal.
package orders

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/gowal"

	"stacker/internal/domain"
)

const (
	DefaultDir   = "./orders"
	segmentLimit = 100
	maxSegments  = 10

	orderKeyPrefix   = "order_"
	balanceKeyPrefix = "balance_"
)

var csvHeader = []string{"date", "pair", "side", "price", "volume", "total", "fee", "txid"}

// BalanceRecord one observed trade balance with its observation time.
type BalanceRecord struct {
	Observed time.Time              `json:"observed"`
	Snapshot domain.BalanceSnapshot `json:"snapshot"`
}

// Store persists submitted orders and balance observations in a WAL.
type Store struct {
	wal *gowal.Wal
	mu  sync.RWMutex
}

// NewStore initializes a WAL-backed order store.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = DefaultDir
	}

	cfg := gowal.Config{
		Dir:              dir,
		Prefix:           "order_",
		SegmentThreshold: segmentLimit,
		MaxSegments:      maxSegments,
		IsInSyncDiskMode: true,
	}

	wal, err := gowal.NewWAL(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "init order WAL")
	}

	return &Store{wal: wal}, nil
}

// SaveOrder appends the submitted order to the journal.
func (s *Store) SaveOrder(order domain.Order) error {
	if s == nil || s.wal == nil {
		return errors.New("order store is not initialized")
	}
	if order.Pair == "" {
		return fmt.Errorf("order pair is required")
	}

	payload, err := json.Marshal(order)
	if err != nil {
		return errors.Wrap(err, "marshal order")
	}

	key := fmt.Sprintf("%s%s", orderKeyPrefix, order.Pair)

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, key, payload)
}

// SaveSnapshot appends an observed trade balance to the journal.
func (s *Store) SaveSnapshot(observed time.Time, snapshot domain.BalanceSnapshot) error {
	if s == nil || s.wal == nil {
		return errors.New("order store is not initialized")
	}
	if snapshot.Currency == "" {
		return fmt.Errorf("balance snapshot currency is required")
	}

	payload, err := json.Marshal(BalanceRecord{Observed: observed, Snapshot: snapshot})
	if err != nil {
		return errors.Wrap(err, "marshal balance snapshot")
	}

	key := fmt.Sprintf("%s%s", balanceKeyPrefix, snapshot.Currency)

	s.mu.Lock()
	defer s.mu.Unlock()

	nextIndex := s.wal.CurrentIndex() + 1
	return s.wal.Write(nextIndex, key, payload)
}

// Orders replays every order in the journal, oldest first.
func (s *Store) Orders() ([]domain.Order, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("order store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Order
	for msg := range s.wal.Iterator() {
		if !strings.HasPrefix(msg.Key, orderKeyPrefix) {
			continue
		}

		var order domain.Order
		if err := json.Unmarshal(msg.Value, &order); err != nil {
			return nil, errors.Wrap(err, "decode order record")
		}
		result = append(result, order)
	}

	return result, nil
}

// Snapshots replays every balance observation in the journal, oldest first.
func (s *Store) Snapshots() ([]BalanceRecord, error) {
	if s == nil || s.wal == nil {
		return nil, errors.New("order store is not initialized")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []BalanceRecord
	for msg := range s.wal.Iterator() {
		if !strings.HasPrefix(msg.Key, balanceKeyPrefix) {
			continue
		}

		var record BalanceRecord
		if err := json.Unmarshal(msg.Value, &record); err != nil {
			return nil, errors.Wrap(err, "decode balance record")
		}
		result = append(result, record)
	}

	return result, nil
}

// ExportCSV writes the whole order journal to w as CSV, oldest order first.
func (s *Store) ExportCSV(w io.Writer) error {
	orders, err := s.Orders()
	if err != nil {
		return err
	}

	return WriteCSV(w, orders)
}

// WriteCSV writes orders to w as CSV, header included.
func WriteCSV(w io.Writer, orders []domain.Order) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return errors.Wrap(err, "write csv header")
	}

	for _, o := range orders {
		record := []string{
			o.Timestamp.UTC().Format(time.RFC3339),
			o.Pair,
			string(o.Side),
			o.LimitPrice.String(),
			o.Volume.String(),
			o.TotalPrice.String(),
			o.Fee.String(),
			o.TxID,
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrap(err, "write csv record")
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}

// Close closes the underlying WAL.
func (s *Store) Close() error {
	if s == nil || s.wal == nil {
		return errors.New("order store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wal.Close()
}
