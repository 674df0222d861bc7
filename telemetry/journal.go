package telemetry

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"
)

// Journal appends one JSON line per tick to a zstd-compressed file.
type Journal struct {
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// OpenJournal creates (or truncates) path.
func OpenJournal(path string) (*Journal, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating journal: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	return &Journal{
		f:   f,
		enc: enc,
		w:   bufio.NewWriterSize(enc, 128*1024),
	}, nil
}

// Write appends v as one line.
func (j *Journal) Write(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := j.w.Write(b); err != nil {
		return err
	}
	return j.w.WriteByte('\n')
}

// Close flushes the buffer and the zstd frame, then closes the file.
func (j *Journal) Close() error {
	if j == nil || j.f == nil {
		return nil
	}
	err := j.w.Flush()
	if cerr := j.enc.Close(); err == nil {
		err = cerr
	}
	if cerr := j.f.Close(); err == nil {
		err = cerr
	}
	j.f = nil
	return err
}

// ReadJournal decodes every line of a journal written by Journal.
func ReadJournal(path string) ([]TickEvents, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer dec.Close()

	var out []TickEvents
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		var te TickEvents
		if err := json.Unmarshal(sc.Bytes(), &te); err != nil {
			return nil, fmt.Errorf("decoding journal line %d: %w", len(out)+1, err)
		}
		out = append(out, te)
	}
	return out, sc.Err()
}
