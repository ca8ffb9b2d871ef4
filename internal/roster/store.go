package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"taskcycle/internal/domain"
)

// Column names the store understands. Anything else found in the header is
// carried through load/save untouched.
const (
	ColEnabled        = "Enabled"
	ColProcessName    = "ProcessName"
	ColExecutablePath = "ExecutablePath"
	ColArguments      = "Arguments"
	ColFrequency      = "Frequency"
	ColLastRunTime    = "LastRunTime"
)

var requiredColumns = []string{ColEnabled, ColProcessName, ColExecutablePath, ColFrequency}

// ErrNotExist reports that the roster file is gone. The loop treats this as
// its one normal exit condition, so it must stay distinguishable from
// transient read errors.
var ErrNotExist = errors.New("roster file does not exist")

const (
	saveRetries    = 5
	saveRetryDelay = time.Second
)

// Roster is one load of the task table: the header in on-disk column order
// and every row keyed by column name. Undeclared columns ride along in both.
type Roster struct {
	Header []string
	Rows   []map[string]string
}

// Definition extracts the schedulable fields of row i.
func (r *Roster) Definition(i int) domain.Definition {
	row := r.Rows[i]
	return domain.Definition{
		Enabled:        row[ColEnabled],
		ProcessName:    row[ColProcessName],
		ExecutablePath: row[ColExecutablePath],
		Arguments:      row[ColArguments],
		Frequency:      row[ColFrequency],
		LastRunTime:    row[ColLastRunTime],
	}
}

// SetLastRun stamps row i with t in the wire format.
func (r *Roster) SetLastRun(i int, t time.Time) {
	r.Rows[i][ColLastRunTime] = t.Format(domain.TimeLayout)
}

// Store reads and writes the roster CSV at a fixed path.
type Store struct {
	Path string
}

func NewStore(path string) *Store { return &Store{Path: path} }

// Load reads the full roster. Row order follows the file. A header missing
// LastRunTime gets the column appended so Save can persist stamps.
func (s *Store) Load() (*Roster, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotExist, s.Path)
		}
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("parse roster: empty file")
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff") // utf-8 BOM from spreadsheet exports
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}
	if !contains(header, ColLastRunTime) {
		header = append(header, ColLastRunTime)
	}

	ro := &Roster{Header: header}
	for _, rec := range records[1:] {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		ro.Rows = append(ro.Rows, row)
	}
	return ro, nil
}

// Save writes the roster back, preserving header and row order. The write
// goes to a temp file first and replaces the roster atomically; the rename
// is retried a few times to ride out short-lived locks from editors holding
// the file open.
func (s *Store) Save(ro *Roster) error {
	tmp := s.Path + ".tmp"
	if err := s.writeTo(tmp, ro); err != nil {
		os.Remove(tmp)
		return err
	}

	var err error
	for attempt := 0; attempt < saveRetries; attempt++ {
		if err = os.Rename(tmp, s.Path); err == nil {
			return nil
		}
		time.Sleep(saveRetryDelay + time.Duration(attempt)*saveRetryDelay/2)
	}
	os.Remove(tmp)
	return fmt.Errorf("replace roster: %w", err)
}

func (s *Store) writeTo(path string, ro *Roster) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write roster: %w", err)
	}
	cw := csv.NewWriter(f)
	if err := cw.Write(ro.Header); err != nil {
		f.Close()
		return fmt.Errorf("write roster header: %w", err)
	}
	rec := make([]string, len(ro.Header))
	for _, row := range ro.Rows {
		for i, col := range ro.Header {
			rec[i] = row[col]
		}
		if err := cw.Write(rec); err != nil {
			f.Close()
			return fmt.Errorf("write roster row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush roster: %w", err)
	}
	return f.Close()
}

func checkHeader(header []string) error {
	var missing []string
	for _, col := range requiredColumns {
		if !contains(header, col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("parse roster: missing columns %s", strings.Join(missing, ", "))
	}
	return nil
}

func contains(ss []string, want string) bool {
	for _, s := range ss {
		if s == want {
			return true
		}
	}
	return false
}
