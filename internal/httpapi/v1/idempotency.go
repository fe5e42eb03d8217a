package v1

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// idempotencyHeader lets clients retry POST /v1/transactions without double-writing.
const idempotencyHeader = "Idempotency-Key"

type storedResponse struct {
	BodyHash string
	Status   int
	Payload  []byte
}

// idemStore remembers successful creates per user and key for the process lifetime.
type idemStore struct {
	mu sync.RWMutex
	m  map[string]storedResponse
}

func newIdemStore() *idemStore { return &idemStore{m: make(map[string]storedResponse)} }

func idemKey(userID uuid.UUID, key string) string { return userID.String() + "|" + key }

func (s *idemStore) get(k string) (storedResponse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[k]
	return v, ok
}

func (s *idemStore) put(k string, v storedResponse) {
	s.mu.Lock()
	s.m[k] = v
	s.mu.Unlock()
}

// forget drops every key held for userID.
func (s *idemStore) forget(userID uuid.UUID) {
	prefix := userID.String() + "|"
	s.mu.Lock()
	for k := range s.m {
		if strings.HasPrefix(k, prefix) {
			delete(s.m, k)
		}
	}
	s.mu.Unlock()
}

func hashBytes(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

// replay answers a repeated request. It reports whether the response was written.
// A known key with a different body is a conflict.
func (s *idemStore) replay(w http.ResponseWriter, k, bodyHash string) bool {
	prev, ok := s.get(k)
	if !ok {
		return false
	}
	if prev.BodyHash != bodyHash {
		writeErr(w, http.StatusConflict, "Idempotency-Key reused with a different body", "idempotency_mismatch")
		return true
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(prev.Status)
	_, _ = w.Write(prev.Payload)
	return true
}

// requestHash hashes the decoded request so formatting differences do not matter.
func requestHash(v any) string {
	b, _ := json.Marshal(v)
	return hashBytes(b)
}
