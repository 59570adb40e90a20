package session

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"os"
	"sync"
)

// Stub is an in-memory Session with no real network activity. It exists
// for tests and for environments where a real torrent engine is
// unavailable; its info-hashes are a deterministic hash of the metadata
// path rather than a parsed .torrent's actual hash, mirroring
// stub_torrent_session's behaviour of faking just enough to exercise the
// rest of the system.
type Stub struct {
	mu sync.Mutex

	running  bool
	paused   bool
	downRate int64
	upRate   int64
	port     int
	stun     string

	torrents map[string]*stubTorrent
}

type stubTorrent struct {
	path     string
	size     int64
	priority Priority
}

// NewStub returns an idle Stub session.
func NewStub() *Stub {
	return &Stub{torrents: make(map[string]*stubTorrent)}
}

func (s *Stub) Configure(port int, stunServer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.port = port
	s.stun = stunServer
}

func (s *Stub) Start(ctx context.Context, dataDir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = true
	return nil
}

func (s *Stub) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	return nil
}

func (s *Stub) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Stub) AddTorrent(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", nil // invalid metadata: fail silently per the contract
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addTorrentLocked(path, info.Size()), nil
}

func (s *Stub) addTorrentLocked(path string, size int64) string {
	sum := sha1.Sum([]byte(path))
	infoHash := hex.EncodeToString(sum[:])
	s.torrents[infoHash] = &stubTorrent{path: path, size: size, priority: PriorityDefault}
	return infoHash
}

func (s *Stub) RemoveTorrent(infoHash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.torrents, infoHash)
}

func (s *Stub) TorrentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.torrents)
}

func (s *Stub) List() []Descriptor {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Descriptor, 0, len(s.torrents))
	for hash, t := range s.torrents {
		out = append(out, Descriptor{
			InfoHash: hash,
			Name:     t.path,
			Size:     t.size,
			IsSeed:   t.priority == PriorityDefault,
			Progress: 1,
		})
	}
	return out
}

func (s *Stub) PauseSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = true
	return nil
}

func (s *Stub) ResumeSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = false
	return nil
}

func (s *Stub) IsPaused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *Stub) PauseDownloads() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downRate = 1
}

func (s *Stub) ResumeDownloads() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downRate = 0
}

func (s *Stub) SetDownloadRateLimit(bps int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.downRate = bps
}

func (s *Stub) SetUploadRateLimit(bps int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upRate = bps
}

func (s *Stub) GetDownloadRateLimit() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.downRate
}

func (s *Stub) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{PeerCount: 0}
}

func (s *Stub) ApplyBudgetPriorities(budgetBytes uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	remaining := budgetBytes
	for _, t := range s.torrents {
		if uint64(t.size) <= remaining {
			t.priority = PriorityDownload
			remaining -= uint64(t.size)
		} else {
			t.priority = PriorityDoNotDownload
		}
	}
}

type stubStateEnvelope struct {
	Torrents []string `json:"torrents"`
}

func (s *Stub) SaveState(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	env := stubStateEnvelope{}
	for _, t := range s.torrents {
		env.Torrents = append(env.Torrents, t.path)
	}
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Stub) LoadState(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var env stubStateEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil // corrupt state file: non-fatal, start clean
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range env.Torrents {
		info, err := os.Stat(p)
		if err != nil {
			continue // metadata no longer on disk: skip, matches add_torrent's silent-failure contract
		}
		s.addTorrentLocked(p, info.Size())
	}
	return nil
}

func (s *Stub) GetTrackers(infoHash string) []string {
	return append([]string(nil), WSSTrackers...)
}
