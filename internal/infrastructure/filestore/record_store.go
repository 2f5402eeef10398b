// Package filestore backs the decision-record collections with JSON
// files, matching the layout the approval workflow writes:
// approved_tasks.json, rejected_tasks.json and the pending_approvals.json
// presence marker.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"opshub-integrations-layer/internal/domain"
	"opshub-integrations-layer/internal/ports"
)

const (
	ApprovalsFile     = "approved_tasks.json"
	RejectionsFile    = "rejected_tasks.json"
	PendingMarkerFile = "pending_approvals.json"
)

// recordFile is the shared load/replace core. Replacement is
// write-temp-then-rename so a concurrent reader never observes a partial
// collection. The mutex serializes writers within this process only;
// cross-process read-modify-write cycles still race (last writer wins).
type recordFile struct {
	path   string
	schema *jsonschema.Schema
	mu     sync.Mutex
}

func (f *recordFile) load(out any) error {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", f.path, err)
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", f.path, err)
	}
	if err := f.schema.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed for %s: %w", f.path, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", f.path, err)
	}
	return nil
}

func (f *recordFile) replace(records any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", f.path, err)
	}
	return nil
}

func (f *recordFile) lastModified() (time.Time, error) {
	info, err := os.Stat(f.path)
	if os.IsNotExist(err) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to stat %s: %w", f.path, err)
	}
	return info.ModTime(), nil
}

// ApprovalFileStore implements ports.ApprovalStore over a JSON file.
type ApprovalFileStore struct {
	file recordFile
}

var _ ports.ApprovalStore = (*ApprovalFileStore)(nil)

func NewApprovalFileStore(dataDir string) (*ApprovalFileStore, error) {
	schema, err := compileSchema("approvals.json", approvalSchemaJSON)
	if err != nil {
		return nil, err
	}
	return &ApprovalFileStore{
		file: recordFile{path: filepath.Join(dataDir, ApprovalsFile), schema: schema},
	}, nil
}

func (s *ApprovalFileStore) GetAll(_ context.Context) ([]domain.ApprovalRecord, error) {
	var records []domain.ApprovalRecord
	if err := s.file.load(&records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *ApprovalFileStore) ReplaceAll(_ context.Context, records []domain.ApprovalRecord) error {
	if records == nil {
		records = []domain.ApprovalRecord{}
	}
	return s.file.replace(records)
}

func (s *ApprovalFileStore) LastModified(_ context.Context) (time.Time, error) {
	return s.file.lastModified()
}

// RejectionFileStore implements ports.RejectionStore over a JSON file.
type RejectionFileStore struct {
	file recordFile
}

var _ ports.RejectionStore = (*RejectionFileStore)(nil)

func NewRejectionFileStore(dataDir string) (*RejectionFileStore, error) {
	schema, err := compileSchema("rejections.json", rejectionSchemaJSON)
	if err != nil {
		return nil, err
	}
	return &RejectionFileStore{
		file: recordFile{path: filepath.Join(dataDir, RejectionsFile), schema: schema},
	}, nil
}

func (s *RejectionFileStore) GetAll(_ context.Context) ([]domain.RejectionRecord, error) {
	var records []domain.RejectionRecord
	if err := s.file.load(&records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *RejectionFileStore) ReplaceAll(_ context.Context, records []domain.RejectionRecord) error {
	if records == nil {
		records = []domain.RejectionRecord{}
	}
	return s.file.replace(records)
}

func (s *RejectionFileStore) LastModified(_ context.Context) (time.Time, error) {
	return s.file.lastModified()
}

// PendingMarker implements ports.MarkerStore over the pending-approvals
// file. Presence is the whole signal; content is never read.
type PendingMarker struct {
	path string
}

var _ ports.MarkerStore = (*PendingMarker)(nil)

func NewPendingMarker(dataDir string) *PendingMarker {
	return &PendingMarker{path: filepath.Join(dataDir, PendingMarkerFile)}
}

func (m *PendingMarker) Exists(_ context.Context) (bool, error) {
	_, err := os.Stat(m.path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", m.path, err)
	}
	return true, nil
}

func (m *PendingMarker) Clear(_ context.Context) error {
	err := os.Remove(m.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", m.path, err)
	}
	return nil
}
