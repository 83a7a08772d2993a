// Package transaction provides crash-safe bookkeeping for installs: an
// exclusive per-destination lock and a journal that records each
// acquisition's progress, so an interrupted install is detectable on the
// next run.
package transaction

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// State represents the current state of an install.
type State string

const (
	StatePending    State = "pending"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// InstallTxn journals one acquisition attempt.
type InstallTxn struct {
	Version         int       `json:"version"` // Schema version for future evolution
	ID              string    `json:"id"`      // acquisition operation ID
	Timestamp       time.Time `json:"timestamp"`
	Dest            string    `json:"dest"`
	BinaryName      string    `json:"binary_name"`
	CompilerVersion string    `json:"compiler_version"`
	Platform        string    `json:"platform"`
	State           State     `json:"state"`
	Phase           string    `json:"phase,omitempty"` // last observed phase
	LastError       string    `json:"last_error,omitempty"`
}

// New creates a pending install journal entry. The ID should be the
// acquisition operation's ID so logs and journal cross-reference.
func New(id, dest, binaryName, compilerVersion, platform string) *InstallTxn {
	return &InstallTxn{
		Version:         1,
		ID:              id,
		Timestamp:       time.Now().UTC(),
		Dest:            dest,
		BinaryName:      binaryName,
		CompilerVersion: compilerVersion,
		Platform:        platform,
		State:           StatePending,
	}
}

// SetPhase records the latest observed phase and moves the journal to
// in_progress.
func (t *InstallTxn) SetPhase(phase string) {
	t.Phase = phase
	if t.State == StatePending {
		t.State = StateInProgress
	}
}

// Complete marks the install finished.
func (t *InstallTxn) Complete() {
	t.State = StateCompleted
	t.LastError = ""
}

// Fail marks the install failed with its terminal error.
func (t *InstallTxn) Fail(err error) {
	t.State = StateFailed
	if err != nil {
		t.LastError = err.Error()
	}
}

// filename returns the journal file name for this transaction.
func (t *InstallTxn) filename() string {
	return fmt.Sprintf("txn-install-%s.json", t.ID)
}

// Save writes the transaction to disk atomically.
// Uses write-then-rename pattern for atomicity.
func (t *InstallTxn) Save(dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("create transaction directory: %w", err)
	}

	finalPath := filepath.Join(dir, t.filename())
	tmpPath := finalPath + ".tmp"

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal transaction: %w", err)
	}

	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("write temporary transaction file: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath) // Clean up temp file on error
		return fmt.Errorf("rename transaction file: %w", err)
	}

	// Sync directory for durability
	df, err := os.Open(dir)
	if err == nil {
		if syncErr := df.Sync(); syncErr != nil {
			df.Close()
			return fmt.Errorf("sync directory: %w", syncErr)
		}
		df.Close()
	}

	return nil
}

// Remove deletes the journal file, typically after a completed install.
func (t *InstallTxn) Remove(dir string) error {
	err := os.Remove(filepath.Join(dir, t.filename()))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove transaction file: %w", err)
	}
	return nil
}

// Load reads a transaction from disk.
func Load(path string) (*InstallTxn, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read transaction file: %w", err)
	}

	var txn InstallTxn
	if err := json.Unmarshal(data, &txn); err != nil {
		return nil, fmt.Errorf("unmarshal transaction: %w", err)
	}

	return &txn, nil
}

// FindIncomplete scans dir for journals of installs that never completed.
// A missing directory means no journals at all.
func FindIncomplete(dir string) ([]*InstallTxn, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read transaction directory: %w", err)
	}

	var incomplete []*InstallTxn
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "txn-install-") || !strings.HasSuffix(name, ".json") {
			continue
		}
		txn, err := Load(filepath.Join(dir, name))
		if err != nil {
			// A corrupt journal still signals an interrupted install.
			incomplete = append(incomplete, &InstallTxn{
				ID:        strings.TrimSuffix(strings.TrimPrefix(name, "txn-install-"), ".json"),
				State:     StateFailed,
				LastError: err.Error(),
			})
			continue
		}
		if txn.State != StateCompleted {
			incomplete = append(incomplete, txn)
		}
	}
	return incomplete, nil
}
