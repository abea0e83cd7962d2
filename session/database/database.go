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

// Package database provides a persistent session.Service backed by a
// relational database through GORM. Pending invocations survive process
// restarts, so an approval can arrive days after the suspension.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"google.golang.org/toolgate/confirmation"
	"google.golang.org/toolgate/session"
)

type pendingRow struct {
	SessionID    string  `gorm:"primaryKey;column:session_id"`
	InvocationID string  `gorm:"column:invocation_id"`
	ToolName     string  `gorm:"column:tool_name"`
	Args         ArgsMap `gorm:"column:args"`
	Hint         string  `gorm:"column:hint"`
	Payload      ArgsMap `gorm:"column:payload"`
	Created      time.Time
	Expires      *time.Time
}

func (pendingRow) TableName() string { return "pending_invocations" }

type resolutionRow struct {
	SessionID    string `gorm:"primaryKey;column:session_id"`
	InvocationID string `gorm:"column:invocation_id"`
	ToolName     string `gorm:"column:tool_name"`
	State        int
	Status       string
	Message      string
	Fields       ArgsMap `gorm:"column:fields"`
	Resolved     time.Time
}

func (resolutionRow) TableName() string { return "invocation_resolutions" }

// Config is used to create a database-backed session service.
type Config struct {
	// DB is the GORM handle to use. Required.
	DB *gorm.DB
}

// New creates a session service on top of cfg.DB and migrates its tables.
func New(cfg Config) (*Service, error) {
	if cfg.DB == nil {
		return nil, fmt.Errorf("database session service requires a DB handle")
	}
	if err := cfg.DB.AutoMigrate(&pendingRow{}, &resolutionRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate session tables: %w", err)
	}
	return &Service{db: cfg.DB}, nil
}

// Open creates a SQLite-backed session service at path.
// Use ":memory:" for an ephemeral store.
func Open(path string) (*Service, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %q: %w", path, err)
	}
	return New(Config{DB: db})
}

// Service implements session.Service on a relational database.
type Service struct {
	db *gorm.DB
}

func (s *Service) PutPending(ctx context.Context, rec *session.PendingInvocation) error {
	sessionID := rec.Invocation.SessionID

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing pendingRow
		err := tx.First(&existing, "session_id = ?", sessionID).Error
		if err == nil {
			return fmt.Errorf("%w: %s", session.ErrPendingInvocationExists, sessionID)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(pendingToRow(rec)).Error
	})
}

func (s *Service) Pending(ctx context.Context, sessionID string) (*session.PendingInvocation, error) {
	var row pendingRow
	err := s.db.WithContext(ctx).First(&row, "session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", session.ErrNoPendingInvocation, sessionID)
	}
	if err != nil {
		return nil, err
	}
	return rowToPending(&row), nil
}

func (s *Service) TakePending(ctx context.Context, sessionID string) (*session.PendingInvocation, error) {
	var row pendingRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&row, "session_id = ?", sessionID).Error; err != nil {
			return err
		}
		return tx.Delete(&pendingRow{}, "session_id = ?", sessionID).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", session.ErrNoPendingInvocation, sessionID)
	}
	if err != nil {
		return nil, err
	}
	return rowToPending(&row), nil
}

// ListPending returns every suspended invocation in the store, oldest
// first. It is not part of session.Service; operators use it to review
// outstanding approvals across sessions.
func (s *Service) ListPending(ctx context.Context) ([]*session.PendingInvocation, error) {
	var rows []pendingRow
	if err := s.db.WithContext(ctx).Order("created").Find(&rows).Error; err != nil {
		return nil, err
	}
	recs := make([]*session.PendingInvocation, len(rows))
	for i := range rows {
		recs[i] = rowToPending(&rows[i])
	}
	return recs, nil
}

func (s *Service) ClearPending(ctx context.Context, sessionID string) error {
	return s.db.WithContext(ctx).Delete(&pendingRow{}, "session_id = ?", sessionID).Error
}

func (s *Service) PutResolution(ctx context.Context, sessionID string, res *session.Resolution) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&resolutionRow{}, "session_id = ?", sessionID).Error; err != nil {
			return err
		}
		return tx.Create(resolutionToRow(sessionID, res)).Error
	})
}

func (s *Service) Resolution(ctx context.Context, sessionID string) (*session.Resolution, error) {
	var row resolutionRow
	err := s.db.WithContext(ctx).First(&row, "session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", session.ErrNoResolution, sessionID)
	}
	if err != nil {
		return nil, err
	}
	return rowToResolution(&row), nil
}

func pendingToRow(rec *session.PendingInvocation) *pendingRow {
	row := &pendingRow{
		SessionID:    rec.Invocation.SessionID,
		InvocationID: rec.Invocation.ID,
		ToolName:     rec.Invocation.ToolName,
		Args:         ArgsMap(rec.Invocation.Args),
		Hint:         rec.Hint,
		Payload:      ArgsMap(rec.Payload),
		Created:      rec.Created,
	}
	if !rec.Expires.IsZero() {
		expires := rec.Expires
		row.Expires = &expires
	}
	return row
}

func rowToPending(row *pendingRow) *session.PendingInvocation {
	rec := &session.PendingInvocation{
		Invocation: session.Invocation{
			ID:        row.InvocationID,
			SessionID: row.SessionID,
			ToolName:  row.ToolName,
			Args:      map[string]any(row.Args),
		},
		State:   confirmation.Pending,
		Hint:    row.Hint,
		Payload: map[string]any(row.Payload),
		Created: row.Created,
	}
	if row.Expires != nil {
		rec.Expires = *row.Expires
	}
	return rec
}

func resolutionToRow(sessionID string, res *session.Resolution) *resolutionRow {
	return &resolutionRow{
		SessionID:    sessionID,
		InvocationID: res.InvocationID,
		ToolName:     res.ToolName,
		State:        int(res.State),
		Status:       res.Status,
		Message:      res.Message,
		Fields:       ArgsMap(res.Fields),
		Resolved:     res.Resolved,
	}
}

func rowToResolution(row *resolutionRow) *session.Resolution {
	return &session.Resolution{
		InvocationID: row.InvocationID,
		ToolName:     row.ToolName,
		State:        confirmation.State(row.State),
		Status:       row.Status,
		Message:      row.Message,
		Fields:       map[string]any(row.Fields),
		Resolved:     row.Resolved,
	}
}
