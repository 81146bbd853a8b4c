package registry

import (
	"path/filepath"
	"sync"
)

// Session carries the per-conversation mutable state that tool calls need:
// the tracked current directory (for whitelisted shell `cd`) and the set of
// files read this session (for read-before-edit enforcement). One Session
// belongs to exactly one conversation; nothing here is shared across
// goroutines concurrently, so the mutex only guards against the dispatcher's
// own internal fan-out (e.g. a parallel tool round).
type Session struct {
	mu      sync.Mutex
	cwd     string
	readSet map[string]struct{}
}

// NewSession creates a Session rooted at cwd (normally os.Getwd()'s result).
func NewSession(cwd string) *Session {
	return &Session{
		cwd:     cwd,
		readSet: make(map[string]struct{}),
	}
}

// Cwd returns the session's tracked current directory.
func (s *Session) Cwd() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cwd
}

// SetCwd updates the tracked current directory, resolving relative targets
// against the existing one.
func (s *Session) SetCwd(target string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if filepath.IsAbs(target) {
		s.cwd = filepath.Clean(target)
	} else {
		s.cwd = filepath.Clean(filepath.Join(s.cwd, target))
	}
}

// MarkRead records path as having been read this session.
func (s *Session) MarkRead(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readSet[path] = struct{}{}
}

// HasRead reports whether path was read this session.
func (s *Session) HasRead(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.readSet[path]
	return ok
}
