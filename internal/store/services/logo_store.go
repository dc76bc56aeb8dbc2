package services

import (
	"sync"

	"electromart/pkg/apperr"
)

// StoredLogo is an uploaded logo held for human review of a pending request.
type StoredLogo struct {
	Bytes       []byte
	ContentType string
}

// LogoStore is an in-memory byte holder keyed by brand-request id. It exists
// only for the lifetime of the process: logos are needed while a request is
// PENDING and can be re-uploaded after a restart.
type LogoStore struct {
	mu    sync.RWMutex
	logos map[string]StoredLogo
}

// NewLogoStore creates an empty LogoStore.
func NewLogoStore() *LogoStore {
	return &LogoStore{logos: make(map[string]StoredLogo)}
}

// Put stores the logo for a request, replacing any previous upload.
func (s *LogoStore) Put(requestID string, data []byte, contentType string) error {
	if len(data) == 0 {
		return apperr.Errorf(apperr.ErrBadRequest, "empty file")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logos[requestID] = StoredLogo{Bytes: data, ContentType: contentType}
	return nil
}

// Get returns the stored logo for a request.
func (s *LogoStore) Get(requestID string) (StoredLogo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	logo, ok := s.logos[requestID]
	return logo, ok
}

// Delete evicts the logo of a request.
func (s *LogoStore) Delete(requestID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.logos, requestID)
}
