package transcript

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/dshills/quill/internal/engine/event"
	"github.com/dshills/quill/internal/input/key"
)

// maxLine bounds one record; a large paste is a single insert event.
const maxLine = 64 << 20

// ErrMalformed is returned for a line that is not a transcript record.
var ErrMalformed = errors.New("malformed transcript record")

// Record is one decoded transcript line. Only the fields of its Kind are
// set.
type Record struct {
	Time  time.Time
	Kind  string
	Key   key.Event
	State uuid.UUID
	Event event.Event
	Path  string
}

// Read decodes every record from r. Errors name the offending line.
func Read(r io.Reader) ([]Record, error) {
	var out []Record
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	for n := 1; sc.Scan(); n++ {
		if len(sc.Bytes()) == 0 {
			continue
		}
		rec, err := decode(sc.Bytes())
		if err != nil {
			return out, fmt.Errorf("line %d: %w", n, err)
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return out, fmt.Errorf("read transcript: %w", err)
	}
	return out, nil
}

// ReadFile decodes the transcript at path.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()
	return Read(f)
}

func decode(line []byte) (Record, error) {
	if !gjson.ValidBytes(line) {
		return Record{}, ErrMalformed
	}
	doc := gjson.ParseBytes(line)
	rec := Record{Kind: doc.Get("kind").String()}
	if ts := doc.Get("t").String(); ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return Record{}, fmt.Errorf("time %q: %w", ts, ErrMalformed)
		}
		rec.Time = t
	}

	data := doc.Get("data")
	switch rec.Kind {
	case KindKey:
		k, err := key.Parse(data.Get("key").String())
		if err != nil {
			return Record{}, fmt.Errorf("key: %w", err)
		}
		rec.Key = k
		return rec, nil
	case KindEvent, KindSave:
		id, err := uuid.Parse(data.Get("state").String())
		if err != nil {
			return Record{}, fmt.Errorf("state: %w", err)
		}
		rec.State = id
		if rec.Kind == KindSave {
			rec.Path = data.Get("path").String()
			return rec, nil
		}
		ev, err := event.Unmarshal([]byte(data.Get("event").Raw))
		if err != nil {
			return Record{}, err
		}
		rec.Event = ev
		return rec, nil
	default:
		return Record{}, fmt.Errorf("kind %q: %w", rec.Kind, ErrMalformed)
	}
}

// Replay passes the events recorded for state to apply in order and stops
// at the first error.
func Replay(records []Record, state uuid.UUID, apply func(event.Event) error) error {
	for i, rec := range records {
		if rec.Kind != KindEvent || rec.State != state {
			continue
		}
		if err := apply(rec.Event); err != nil {
			return fmt.Errorf("replay record %d: %w", i, err)
		}
	}
	return nil
}
