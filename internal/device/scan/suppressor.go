package scan

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rbustosc/fieldsync/internal/common"
)

// DefaultSuppressionWindow is how long a repeat scan of the same card is
// swallowed after a successful recording. Tuned for bin work, where the
// scanner dwells on a card and can trigger twice.
const DefaultSuppressionWindow = 90 * time.Second

// LastScanSource reports the most recent persisted event timestamp for a
// card code in unix milliseconds, 0 when there is none. The collection repo
// satisfies this.
type LastScanSource interface {
	LastScanMs(ctx context.Context, cardCode string) (int64, error)
}

// Suppressor rejects repeat scans of one card code inside a fixed window.
// It keeps an in-memory map for the current session and falls back to the
// persisted timestamps, so suppression survives the device being closed and
// reopened mid-harvest. The effective last-scan time is the max of the two.
type Suppressor struct {
	window time.Duration
	source LastScanSource
	now    func() time.Time

	mu     sync.Mutex
	lastMs map[string]int64
}

func NewSuppressor(source LastScanSource, window time.Duration) *Suppressor {
	if window <= 0 {
		window = DefaultSuppressionWindow
	}
	return &Suppressor{
		window: window,
		source: source,
		now:    time.Now,
		lastMs: make(map[string]int64),
	}
}

// Check returns common.ErrDuplicateScan when the card was recorded inside
// the window. The caller reports this as a notice, not a failure: no record
// is written and no error escapes the screen.
func (s *Suppressor) Check(ctx context.Context, cardCode string) error {
	nowMs := s.now().UnixMilli()

	s.mu.Lock()
	last := s.lastMs[cardCode]
	s.mu.Unlock()

	persisted, err := s.source.LastScanMs(ctx, cardCode)
	if err != nil {
		return fmt.Errorf("failed to read last scan: %w", err)
	}
	if persisted > last {
		last = persisted
	}

	if last > 0 && nowMs-last < s.window.Milliseconds() {
		return fmt.Errorf("card %s scanned %ds ago: %w", cardCode, (nowMs-last)/1000, common.ErrDuplicateScan)
	}
	return nil
}

// Record notes a successfully committed scan for the card.
func (s *Suppressor) Record(cardCode string, atMs int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if atMs > s.lastMs[cardCode] {
		s.lastMs[cardCode] = atMs
	}
}
