package audit

import (
	"encoding/json"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// FileName is the audit log kept next to each secrets document.
const FileName = ".envseal-audit.jsonl"

// Entry represents a single audit log entry.
type Entry struct {
	ID        string `json:"id"`   // Random UUID.
	Timestamp string `json:"ts"`   // RFC3339 with microseconds.
	User      string `json:"user"` // Local account performing the action.
	Operation string `json:"op"`   // Operation name.

	// Optional fields depending on operation.
	Document string   `json:"document,omitempty"` // For encrypt/decrypt/sync.
	Entries  int      `json:"entries,omitempty"`  // Entries touched.
	Regions  []string `json:"regions,omitempty"`  // For sync.
	Provider string   `json:"provider,omitempty"` // For sync.
	KeyName  string   `json:"key_name,omitempty"` // For keygen.
	Failed   bool     `json:"failed,omitempty"`
}

// New returns an entry for op with its id, timestamp and user filled in.
func New(op string) Entry {
	entry := Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000000Z"),
		Operation: op,
	}
	if u, err := user.Current(); err == nil {
		entry.User = u.Username
	}
	return entry
}

// LogPath returns the audit log location for the document in dir.
func LogPath(dir string) string {
	return filepath.Join(dir, FileName)
}

// Log appends an entry to the audit log in dir.
// Failures are ignored: operations must not fail because auditing did.
func Log(dir string, entry Entry) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format("2006-01-02T15:04:05.000000Z")
	}

	f, err := os.OpenFile(LogPath(dir), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	_, _ = f.Write(append(data, '\n'))
}

// ReadEntries reads all entries from the audit log in dir.
// Returns an empty slice if the log doesn't exist.
func ReadEntries(dir string) ([]Entry, error) {
	data, err := os.ReadFile(LogPath(dir))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return ParseEntries(data)
}

// ParseEntries parses JSON Lines data into audit entries.
// Malformed lines are silently skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var entries []Entry
	start := 0

	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := data[start:i]
			start = i + 1

			if len(line) == 0 {
				continue
			}

			var entry Entry
			if err := json.Unmarshal(line, &entry); err != nil {
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}
