package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Filter narrows a query. Zero-valued fields match everything.
type Filter struct {
	SessionID uuid.UUID
	CommandID uuid.UUID
	Types     []EventType
	From      time.Time
	To        time.Time
}

func (f Filter) matches(e Event) bool {
	if f.SessionID != uuid.Nil && e.SessionID != f.SessionID {
		return false
	}
	if f.CommandID != uuid.Nil && e.CommandID != f.CommandID {
		return false
	}
	if len(f.Types) > 0 {
		found := false
		for _, t := range f.Types {
			if e.EventType == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !f.From.IsZero() && e.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && e.Timestamp.After(f.To) {
		return false
	}
	return true
}

// QueryEngine reads trails from an audit directory. It opens its own
// file handles and never contends with an active Writer beyond a single
// in-flight append.
type QueryEngine struct {
	dir string
}

// NewQueryEngine returns an engine over the given audit directory.
func NewQueryEngine(dir string) *QueryEngine {
	return &QueryEngine{dir: dir}
}

// Query returns all events matching the filter, sorted by timestamp.
// Lines that fail to parse are skipped; a trail truncated mid-write
// must not poison the rest of the query.
func (q *QueryEngine) Query(filter Filter) ([]Event, error) {
	var events []Event

	dates, err := os.ReadDir(q.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read audit directory: %w", err)
	}

	for _, d := range dates {
		if !d.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(q.dir, d.Name()))
		if err != nil {
			continue
		}
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".jsonl") {
				continue
			}
			path := filepath.Join(q.dir, d.Name(), f.Name())
			fileEvents, err := readTrail(path)
			if err != nil {
				return nil, err
			}
			for _, e := range fileEvents {
				if filter.matches(e) {
					events = append(events, e)
				}
			}
		}
	}

	// Stable so same-timestamp events keep their file order.
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	return events, nil
}

func readTrail(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trail %s: %w", path, err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var e Event
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			continue
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan trail %s: %w", path, err)
	}
	return events, nil
}

// SessionSummary aggregates one session's trail.
type SessionSummary struct {
	SessionID      uuid.UUID     `json:"session_id"`
	Started        time.Time     `json:"started"`
	Ended          time.Time     `json:"ended"`
	Duration       time.Duration `json:"duration"`
	CommandCount   int           `json:"command_count"`
	FileOpCount    int           `json:"file_op_count"`
	SecurityEvents int           `json:"security_events"`
}

// Summarize builds a summary for one session.
func (q *QueryEngine) Summarize(session uuid.UUID) (*SessionSummary, error) {
	events, err := q.Query(Filter{SessionID: session})
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("no events for session %s", session)
	}

	s := &SessionSummary{SessionID: session}
	commands := make(map[uuid.UUID]bool)
	for _, e := range events {
		switch e.EventType {
		case EventSessionStarted:
			s.Started = e.Timestamp
		case EventSessionEnded:
			s.Ended = e.Timestamp
		case EventCommandRequested:
			commands[e.CommandID] = true
		case EventFileOperation:
			s.FileOpCount++
		}
		if e.IsSecurityEvent() {
			s.SecurityEvents++
		}
	}
	s.CommandCount = len(commands)

	if s.Started.IsZero() {
		s.Started = events[0].Timestamp
	}
	if s.Ended.IsZero() {
		s.Ended = events[len(events)-1].Timestamp
	}
	s.Duration = s.Ended.Sub(s.Started)
	return s, nil
}

// CommandTimeline returns the ordered lifecycle events for one command.
func (q *QueryEngine) CommandTimeline(commandID uuid.UUID) ([]Event, error) {
	events, err := q.Query(Filter{CommandID: commandID})
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("no events for command %s", commandID)
	}
	return events, nil
}
