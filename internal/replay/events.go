package replay

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"asxPaperBot/internal/domain"
)

// Kind discriminates the event rows of a recorded session.
type Kind string

const (
	KindEntry Kind = "entry" // A trade signal: symbol, price, stop, confidence
	KindExit  Kind = "exit"  // An exit: symbol, price, reason
	KindReset Kind = "reset" // Daily tracking reset
)

// Event is one row of a recorded paper-trading session.
type Event struct {
	Time       time.Time
	Kind       Kind
	Symbol     string
	Price      float64
	Stop       float64
	Confidence float64
	Reason     domain.CloseReason
}

// ReadFile parses a recorded session CSV. Row shapes by kind:
//
//	ts,reset
//	ts,entry,symbol,price,stop,confidence
//	ts,exit,symbol,price[,reason]
//
// ts is RFC3339. Blank lines and lines starting with '#' are skipped.
// Rows must already be in timestamp order; ReadFile does not sort.
func ReadFile(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open signal file %s: %w", path, err)
	}
	defer f.Close()
	return readAll(f, path)
}

func readAll(r io.Reader, path string) ([]Event, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1 // Validated per row for a clearer error message

	events := make([]Event, 0)
	line := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		line++

		// Skip a header row if present.
		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "ts") {
			continue
		}

		ev, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, line, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

func parseRecord(record []string) (Event, error) {
	if len(record) < 2 {
		return Event{}, fmt.Errorf("expected at least ts,kind, got %d fields", len(record))
	}

	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(record[0]))
	if err != nil {
		return Event{}, fmt.Errorf("invalid timestamp %q: %w", record[0], err)
	}

	ev := Event{Time: ts, Kind: Kind(strings.ToLower(strings.TrimSpace(record[1])))}
	switch ev.Kind {
	case KindReset:
		return ev, nil
	case KindEntry:
		if len(record) < 6 {
			return Event{}, fmt.Errorf("entry row needs ts,kind,symbol,price,stop,confidence, got %d fields", len(record))
		}
		ev.Symbol = strings.TrimSpace(record[2])
		if ev.Price, err = parseFloat(record[3], "price"); err != nil {
			return Event{}, err
		}
		if ev.Stop, err = parseFloat(record[4], "stop"); err != nil {
			return Event{}, err
		}
		if ev.Confidence, err = parseFloat(record[5], "confidence"); err != nil {
			return Event{}, err
		}
		return ev, nil
	case KindExit:
		if len(record) < 4 {
			return Event{}, fmt.Errorf("exit row needs ts,kind,symbol,price[,reason], got %d fields", len(record))
		}
		ev.Symbol = strings.TrimSpace(record[2])
		if ev.Price, err = parseFloat(record[3], "price"); err != nil {
			return Event{}, err
		}
		ev.Reason = domain.CloseReasonSignal
		if len(record) > 4 && strings.TrimSpace(record[4]) != "" {
			ev.Reason = domain.CloseReason(strings.TrimSpace(record[4]))
		}
		return ev, nil
	default:
		return Event{}, fmt.Errorf("unknown event kind %q", record[1])
	}
}

func parseFloat(s, field string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, s, err)
	}
	return v, nil
}
