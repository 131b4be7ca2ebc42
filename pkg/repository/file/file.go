// Package file implements EventStore on plain files in a base directory:
//
//	webhook.log        event log, one "[<UTC time>] <message>" entry per line
//	.last_push         last push time, "2006-01-02 15:04:05 UTC"
//	.last_commit       last deployed commit SHA
//	deployments.jsonl  deployment records, one JSON object per line
package file

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pushdeploy/pkg/domain/interfaces"
	"github.com/m-mizutani/pushdeploy/pkg/domain/model"
	"github.com/m-mizutani/pushdeploy/pkg/domain/types"
	"github.com/m-mizutani/pushdeploy/pkg/utils/tail"
)

const (
	LogFileName        = "webhook.log"
	LastPushFileName   = ".last_push"
	LastCommitFileName = ".last_commit"
	DeploymentFileName = "deployments.jsonl"

	rotatedSuffix = ".1"
)

type Store struct {
	baseDir     string
	maxLogBytes int64

	// mu serializes all writers; readers take the read lock so they never
	// observe a half-replaced marker or a rotation in progress.
	mu sync.RWMutex
}

var _ interfaces.EventStore = (*Store)(nil)

// Option is a functional option for Store
type Option func(*Store)

// WithMaxLogBytes rotates webhook.log and deployments.jsonl once they would
// grow past n bytes. The previous generation is kept with a ".1" suffix.
// Zero disables rotation.
func WithMaxLogBytes(n int64) Option {
	return func(s *Store) {
		s.maxLogBytes = n
	}
}

// New creates baseDir when missing and checks that it is writable
func New(baseDir string, opts ...Option) (*Store, error) {
	s := &Store{baseDir: baseDir}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(baseDir, 0750); err != nil {
		return nil, goerr.Wrap(err, "failed to create base directory",
			goerr.V("base_dir", baseDir), goerr.T(types.ErrTagStorage))
	}

	f, err := os.OpenFile(s.path(LogFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	if err != nil {
		return nil, goerr.Wrap(err, "base directory is not writable",
			goerr.V("base_dir", baseDir), goerr.T(types.ErrTagStorage))
	}
	if err := f.Close(); err != nil {
		return nil, goerr.Wrap(err, "failed to close log file", goerr.T(types.ErrTagStorage))
	}

	return s, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.baseDir, name)
}

// LogPath returns the path of the event log file
func (s *Store) LogPath() string {
	return s.path(LogFileName)
}

func (s *Store) AppendLog(_ context.Context, entry model.LogEntry) error {
	line := entry.String()
	// Keep one entry per line even if a message carries newlines
	line = strings.ReplaceAll(line, "\n", " ") + "\n"

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLine(LogFileName, []byte(line))
}

func (s *Store) RecentLogs(_ context.Context, limit int) ([]model.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines, err := s.tailWithRotated(LogFileName, limit)
	if err != nil {
		return nil, err
	}

	out := make([]model.LogEntry, 0, len(lines))
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i] == "" {
			continue
		}
		out = append(out, parseLogLine(lines[i]))
	}
	return out, nil
}

func (s *Store) AppendDeployment(_ context.Context, record *model.DeploymentRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal deployment record", goerr.V("id", record.ID))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLine(DeploymentFileName, append(raw, '\n'))
}

func (s *Store) RecentDeployments(_ context.Context, limit int) ([]*model.DeploymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines, err := s.tailWithRotated(DeploymentFileName, limit)
	if err != nil {
		return nil, err
	}

	out := make([]*model.DeploymentRecord, 0, len(lines))
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i] == "" {
			continue
		}
		var rec model.DeploymentRecord
		if err := json.Unmarshal([]byte(lines[i]), &rec); err != nil {
			return nil, goerr.Wrap(err, "corrupted deployment record",
				goerr.V("line", lines[i]), goerr.T(types.ErrTagStorage))
		}
		out = append(out, &rec)
	}
	return out, nil
}

func (s *Store) GetLastState(_ context.Context) (*model.LastState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var state model.LastState

	pushRaw, err := s.readMarker(LastPushFileName)
	if err != nil {
		return nil, err
	}
	if pushRaw != "" {
		at, err := parsePushTime(pushRaw)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid last push marker",
				goerr.V("value", pushRaw), goerr.T(types.ErrTagStorage))
		}
		state.LastPushAt = &at
	}

	commit, err := s.readMarker(LastCommitFileName)
	if err != nil {
		return nil, err
	}
	state.LastDeployedCommit = commit

	return &state, nil
}

func (s *Store) SetLastPushAt(_ context.Context, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeMarker(LastPushFileName, at.UTC().Format(model.PushTimeFormat))
}

func (s *Store) SetLastDeployedCommit(_ context.Context, sha string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeMarker(LastCommitFileName, sha)
}

func (s *Store) Close() error {
	return nil
}

// appendLine writes data with a single append so concurrent processes sharing
// the file never interleave partial lines. Caller holds s.mu.
func (s *Store) appendLine(name string, data []byte) error {
	path := s.path(name)

	if s.maxLogBytes > 0 {
		if info, err := os.Stat(path); err == nil && info.Size() > 0 && info.Size()+int64(len(data)) > s.maxLogBytes {
			if err := os.Rename(path, path+rotatedSuffix); err != nil {
				return goerr.Wrap(err, "failed to rotate file",
					goerr.V("path", path), goerr.T(types.ErrTagStorage))
			}
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	if err != nil {
		return goerr.Wrap(err, "failed to open file for append",
			goerr.V("path", path), goerr.T(types.ErrTagStorage))
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return goerr.Wrap(err, "failed to append to file",
			goerr.V("path", path), goerr.T(types.ErrTagStorage))
	}
	if err := f.Close(); err != nil {
		return goerr.Wrap(err, "failed to close file",
			goerr.V("path", path), goerr.T(types.ErrTagStorage))
	}
	return nil
}

// tailWithRotated returns up to limit trailing lines of name, reaching into
// the rotated generation when the current file is short. Oldest first.
func (s *Store) tailWithRotated(name string, limit int) ([]string, error) {
	path := s.path(name)

	current, err := tail.File(path, limit)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, goerr.Wrap(err, "failed to read file", goerr.T(types.ErrTagStorage))
	}
	if len(current) >= limit || s.maxLogBytes <= 0 {
		return current, nil
	}

	older, err := tail.File(path+rotatedSuffix, limit-len(current))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return current, nil
		}
		return nil, goerr.Wrap(err, "failed to read rotated file", goerr.T(types.ErrTagStorage))
	}
	return append(older, current...), nil
}

func (s *Store) readMarker(name string) (string, error) {
	raw, err := os.ReadFile(s.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", goerr.Wrap(err, "failed to read marker",
			goerr.V("name", name), goerr.T(types.ErrTagStorage))
	}
	return strings.TrimSpace(string(raw)), nil
}

// writeMarker replaces the marker atomically through a temp file and rename
func (s *Store) writeMarker(name, value string) error {
	tmp, err := os.CreateTemp(s.baseDir, name+".tmp-*")
	if err != nil {
		return goerr.Wrap(err, "failed to create temp marker",
			goerr.V("name", name), goerr.T(types.ErrTagStorage))
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return goerr.Wrap(err, "failed to write marker",
			goerr.V("name", name), goerr.T(types.ErrTagStorage))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return goerr.Wrap(err, "failed to close marker",
			goerr.V("name", name), goerr.T(types.ErrTagStorage))
	}
	if err := os.Rename(tmpName, s.path(name)); err != nil {
		_ = os.Remove(tmpName)
		return goerr.Wrap(err, "failed to replace marker",
			goerr.V("name", name), goerr.T(types.ErrTagStorage))
	}
	return nil
}

// parseLogLine reverses LogEntry.String. Lines written by other tools keep
// their full text as message and a zero timestamp.
func parseLogLine(line string) model.LogEntry {
	if strings.HasPrefix(line, "[") {
		if end := strings.Index(line, "] "); end > 0 {
			if ts, err := time.Parse(model.LogTimeFormat, line[1:end]); err == nil {
				return model.LogEntry{Timestamp: ts, Message: line[end+2:]}
			}
		}
	}
	return model.LogEntry{Message: line}
}

func parsePushTime(raw string) (time.Time, error) {
	if at, err := time.Parse(model.PushTimeFormat, raw); err == nil {
		return at, nil
	}
	return time.Parse(time.RFC3339, raw)
}
