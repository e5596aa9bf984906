package collector

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	log "github.com/sirupsen/logrus"

	"flowtop/model"
)

// ErrEndOfRecording is returned by a Player once every recorded snapshot
// has been served.
var ErrEndOfRecording = errors.New("end of recording")

// RecordingSource wraps a source and appends every captured snapshot to w
// as one JSON line. Replaying the file reproduces the run because rates
// are computed from the recorded timestamps, not the replay clock.
type RecordingSource struct {
	inner Source
	enc   *json.Encoder
	log   *log.Logger
	mu    sync.Mutex
}

// NewRecordingSource wraps inner with recording to w.
func NewRecordingSource(inner Source, w io.Writer, logger *log.Logger) *RecordingSource {
	return &RecordingSource{
		inner: inner,
		enc:   json.NewEncoder(w),
		log:   logger,
	}
}

// Snapshot captures from the wrapped source and records the result. A
// write failure is logged but never fails the tick.
func (r *RecordingSource) Snapshot() (model.RawSnapshot, error) {
	snap, err := r.inner.Snapshot()
	if err != nil {
		return snap, err
	}
	r.mu.Lock()
	if werr := r.enc.Encode(snap); werr != nil {
		r.log.WithField("error", werr).Warn("record write failed")
	}
	r.mu.Unlock()
	return snap, nil
}

// Describe reports the wrapped source's invocation.
func (r *RecordingSource) Describe() string {
	return r.inner.Describe()
}

// Player serves previously recorded snapshots in order.
type Player struct {
	frames []model.RawSnapshot
	desc   string
	idx    int
	mu     sync.Mutex
}

// NewPlayer loads every frame from a recording (JSON lines). Malformed
// lines are skipped so a recording truncated mid-write still replays.
func NewPlayer(r io.Reader, desc string) (*Player, error) {
	var frames []model.RawSnapshot
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var frame model.RawSnapshot
		if err := json.Unmarshal(line, &frame); err != nil {
			continue
		}
		frames = append(frames, frame)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read recording: %w", err)
	}
	if len(frames) == 0 {
		return nil, errors.New("recording has no frames")
	}
	return &Player{frames: frames, desc: desc}, nil
}

// Snapshot serves the next recorded frame, then ErrEndOfRecording.
func (p *Player) Snapshot() (model.RawSnapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.idx >= len(p.frames) {
		return model.RawSnapshot{}, ErrEndOfRecording
	}
	f := p.frames[p.idx]
	p.idx++
	return f, nil
}

// Describe names the recording being replayed.
func (p *Player) Describe() string {
	return "replay " + p.desc
}

// Len returns the number of recorded frames.
func (p *Player) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.frames)
}

// Index returns the next frame index.
func (p *Player) Index() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idx
}
