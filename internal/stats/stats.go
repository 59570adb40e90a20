// Package stats persists cumulative transfer totals across restarts in a
// fixed-layout binary file.
package stats

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
)

const (
	magic    = "LVST"
	version  = uint32(1)
	fileSize = 24 // magic(4) + version(4) + total_downloaded(8) + total_uploaded(8)
)

// Record holds the persistent totals plus the runtime-only session deltas
// needed to recompute them without double-counting across a save mid-run.
type Record struct {
	TotalDownloaded   uint64
	TotalUploaded     uint64
	SessionDownloaded uint64
	SessionUploaded   uint64

	baseDownloaded uint64
	baseUploaded   uint64
}

// Load reads path into a new Record whose base is the loaded totals. On any
// problem — missing file, short read, magic or version mismatch — it
// returns a zeroed Record, false and a nil error, per the "corruption is
// not fatal" error policy: the caller proceeds with fresh counters.
func Load(path string) (*Record, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Record{}, false, nil
		}
		return &Record{}, false, nil
	}
	if len(data) < fileSize {
		return &Record{}, false, nil
	}
	if string(data[0:4]) != magic {
		return &Record{}, false, nil
	}
	if binary.LittleEndian.Uint32(data[4:8]) != version {
		return &Record{}, false, nil
	}

	r := &Record{
		TotalDownloaded: binary.LittleEndian.Uint64(data[8:16]),
		TotalUploaded:   binary.LittleEndian.Uint64(data[16:24]),
	}
	r.baseDownloaded = r.TotalDownloaded
	r.baseUploaded = r.TotalUploaded
	return r, true, nil
}

// Save writes r to path in the fixed 24-byte layout.
func (r *Record) Save(path string) error {
	var buf bytes.Buffer
	buf.WriteString(magic)
	var tmp [8]byte
	binary.LittleEndian.PutUint32(tmp[:4], version)
	buf.Write(tmp[:4])
	binary.LittleEndian.PutUint64(tmp[:], r.TotalDownloaded)
	buf.Write(tmp[:])
	binary.LittleEndian.PutUint64(tmp[:], r.TotalUploaded)
	buf.Write(tmp[:])

	if buf.Len() != fileSize {
		return fmt.Errorf("stats: internal encoding produced %d bytes, want %d", buf.Len(), fileSize)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Update sets the session counters and recomputes the totals as base plus
// session, so that a save taken mid-run never double-counts bytes already
// persisted in a previous session.
func (r *Record) Update(sessionDownloaded, sessionUploaded uint64) {
	r.SessionDownloaded = sessionDownloaded
	r.SessionUploaded = sessionUploaded
	r.TotalDownloaded = r.baseDownloaded + sessionDownloaded
	r.TotalUploaded = r.baseUploaded + sessionUploaded
}
