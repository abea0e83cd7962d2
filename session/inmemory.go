// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package session

import (
	"context"
	"fmt"
	"sync"
)

// InMemoryService returns an in-memory implementation of Service.
// Thread-safe; the single mutex makes put/get/clear on a session id
// linearizable.
func InMemoryService() Service {
	return &inMemoryService{
		pending:  make(map[string]*PendingInvocation),
		resolved: make(map[string]*Resolution),
	}
}

type inMemoryService struct {
	mu       sync.RWMutex
	pending  map[string]*PendingInvocation
	resolved map[string]*Resolution
}

func (s *inMemoryService) PutPending(ctx context.Context, rec *PendingInvocation) error {
	sessionID := rec.Invocation.SessionID

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pending[sessionID]; ok {
		return fmt.Errorf("%w: %s", ErrPendingInvocationExists, sessionID)
	}
	s.pending[sessionID] = rec.Clone()
	return nil
}

func (s *inMemoryService) Pending(ctx context.Context, sessionID string) (*PendingInvocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.pending[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoPendingInvocation, sessionID)
	}
	return rec.Clone(), nil
}

func (s *inMemoryService) TakePending(ctx context.Context, sessionID string) (*PendingInvocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.pending[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoPendingInvocation, sessionID)
	}
	delete(s.pending, sessionID)
	return rec, nil
}

func (s *inMemoryService) ClearPending(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pending, sessionID)
	return nil
}

func (s *inMemoryService) PutResolution(ctx context.Context, sessionID string, res *Resolution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resolved[sessionID] = res.Clone()
	return nil
}

func (s *inMemoryService) Resolution(ctx context.Context, sessionID string) (*Resolution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, ok := s.resolved[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoResolution, sessionID)
	}
	return res.Clone(), nil
}
