// Package verification stores short-lived signup and account-deletion codes
// keyed by email.
package verification

import (
	"crypto/rand"
	"math/big"
	"sync"
	"time"
)

// TTL is how long a code stays redeemable after being issued.
const TTL = 3 * time.Minute

// Store holds one pending code per email. Issuing a new code supersedes the
// previous one; Consume removes the entry so codes are single-use.
type Store interface {
	Set(email, code string) error
	// Get returns the pending code, or ok=false when none exists or it
	// has expired.
	Get(email string) (code string, ok bool, err error)
	Consume(email string) error
}

// NewCode generates a 6-digit numeric code.
func NewCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	code := n.Int64() + 100000
	return formatCode(code), nil
}

func formatCode(n int64) string {
	digits := make([]byte, 6)
	for i := 5; i >= 0; i-- {
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits)
}

type memoryEntry struct {
	code    string
	expires time.Time
}

// MemoryStore keeps codes in process memory. Entries are lost on restart;
// acceptable for single-instance deployments and tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Set(email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[email] = memoryEntry{code: code, expires: s.now().Add(TTL)}
	return nil
}

func (s *MemoryStore) Get(email string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[email]
	if !ok {
		return "", false, nil
	}
	if s.now().After(e.expires) {
		delete(s.entries, email)
		return "", false, nil
	}
	return e.code, true, nil
}

func (s *MemoryStore) Consume(email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, email)
	return nil
}
