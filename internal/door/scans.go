package door

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Scan is a single card read reported by a reader.
type Scan struct {
	ID       string    `json:"id"`
	Reader   string    `json:"reader"`
	CardUID  string    `json:"card_uid"`
	UserID   string    `json:"user_id,omitempty"`
	UserName string    `json:"user_name,omitempty"`
	Granted  bool      `json:"granted"`
	SeenAt   time.Time `json:"seen_at"`
}

// ScanStore keeps the most recent scan per reader for a short window, so the
// registration UI can pick up a card presented at a physical reader. Scans
// expire after the configured TTL; a background janitor prunes stale entries.
type ScanStore struct {
	mu     sync.RWMutex
	scans  map[string]scanEntry // keyed by reader name
	ttl    time.Duration
	stop   chan struct{}
	logger *slog.Logger
}

type scanEntry struct {
	scan   Scan
	expiry time.Time
}

// DefaultScanTTL is used when no positive TTL is configured.
const DefaultScanTTL = 120 * time.Second

func NewScanStore(ttl time.Duration) *ScanStore {
	if ttl <= 0 {
		slog.Warn("Scan TTL must be positive, using default", "ttl", ttl, "default", DefaultScanTTL)
		ttl = DefaultScanTTL
	}
	s := &ScanStore{
		scans:  make(map[string]scanEntry),
		ttl:    ttl,
		stop:   make(chan struct{}),
		logger: slog.With("component", "door"),
	}
	go s.janitor()
	return s
}

// Record stores a scan as the reader's latest, replacing any previous one,
// and assigns it a fresh scan id.
func (s *ScanStore) Record(reader, cardUID, userID, userName string, granted bool) Scan {
	scan := Scan{
		ID:       uuid.NewString(),
		Reader:   reader,
		CardUID:  cardUID,
		UserID:   userID,
		UserName: userName,
		Granted:  granted,
		SeenAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	s.scans[reader] = scanEntry{scan: scan, expiry: time.Now().Add(s.ttl)}
	s.mu.Unlock()

	s.logger.Debug("Scan recorded", "reader", reader, "scan_id", scan.ID, "granted", granted)
	return scan
}

// Latest returns the reader's most recent scan, or false if none is pending
// or the last one has expired.
func (s *ScanStore) Latest(reader string) (Scan, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.scans[reader]
	if !ok || time.Now().After(entry.expiry) {
		return Scan{}, false
	}
	return entry.scan, true
}

// Reset clears the reader's pending scan. The registration UI calls this
// after consuming a scan so a stale card read is not attached to the next
// user it creates.
func (s *ScanStore) Reset(reader string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scans, reader)
}

func (s *ScanStore) pruneExpired() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for reader, entry := range s.scans {
		if now.After(entry.expiry) {
			s.logger.Debug("Pruning expired scan", "reader", reader, "scan_id", entry.scan.ID)
			delete(s.scans, reader)
		}
	}
}

func (s *ScanStore) janitor() {
	ticker := time.NewTicker(s.ttl * 2)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.pruneExpired()
		case <-s.stop:
			return
		}
	}
}

// Close stops the janitor.
func (s *ScanStore) Close() {
	close(s.stop)
}
