package session

import (
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"sync"
	"time"

	"github.com/anacrolix/torrent"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Real is the anacrolix/torrent-backed Session implementation. It owns a
// single *torrent.Client for the process lifetime of one Start/Stop cycle.
type Real struct {
	log zerolog.Logger

	mu       sync.Mutex
	client   *torrent.Client
	torrents map[string]*torrent.Torrent // infoHash -> torrent
	paths    map[string]string          // infoHash -> metadata path, for SaveState

	port       int
	stunServer string

	downLimiter *rate.Limiter
	upLimiter   *rate.Limiter
	downBps     int64
	upBps       int64
	paused      bool

	pendingStatePath string

	lastSampleAt time.Time
	lastRead     int64
	lastWritten  int64
	downRate     int64
	upRate       int64
}

// NewReal returns a Real session that logs through log. Configure and
// Start must be called before the session does anything useful.
func NewReal(log zerolog.Logger) *Real {
	return &Real{
		log:      log,
		torrents: make(map[string]*torrent.Torrent),
		paths:    make(map[string]string),
	}
}

func (r *Real) Configure(port int, stunServer string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.port = port
	// stunServer is accepted for interface fidelity; anacrolix/torrent has
	// no direct STUN-server hook (it relies on its own NAT-PMP/UPnP probing
	// and the DHT for traversal), so this is recorded for diagnostics only.
	r.stunServer = stunServer
}

func (r *Real) Start(ctx context.Context, dataDir string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client != nil {
		return ErrAlreadyRunning
	}

	cfg := torrent.NewDefaultClientConfig()
	cfg.DataDir = dataDir
	cfg.Seed = true
	cfg.NoUpload = false
	cfg.DisableTrackers = false
	cfg.NoDHT = false
	cfg.ListenPort = r.port

	r.downLimiter = rate.NewLimiter(rateLimitFor(r.downBps), burstFor(r.downBps))
	r.upLimiter = rate.NewLimiter(rateLimitFor(r.upBps), burstFor(r.upBps))
	cfg.DownloadRateLimiter = r.downLimiter
	cfg.UploadRateLimiter = r.upLimiter

	client, err := torrent.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("starting torrent client: %w", err)
	}
	r.client = client
	r.lastSampleAt = time.Now()

	if r.pendingStatePath != "" {
		if err := r.loadStateLocked(r.pendingStatePath); err != nil {
			r.log.Warn().Err(err).Str("path", r.pendingStatePath).Msg("failed to restore session state")
		}
		r.pendingStatePath = ""
	}
	return nil
}

func (r *Real) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil {
		return nil
	}
	r.client.Close()
	r.client = nil
	return nil
}

func (r *Real) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.client != nil
}

func (r *Real) AddTorrent(path string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil {
		return "", ErrNotRunning
	}

	t, err := r.client.AddTorrentFromFile(path)
	if err != nil {
		r.log.Debug().Err(err).Str("path", path).Msg("added no torrent: invalid metadata")
		return "", nil
	}

	t.AddTrackers([][]string{WSSTrackers})

	infoHash := t.InfoHash().HexString()
	r.torrents[infoHash] = t
	r.paths[infoHash] = path
	if r.paused {
		t.DisallowDataDownload()
		t.DisallowDataUpload()
	}
	return infoHash, nil
}

func (r *Real) RemoveTorrent(infoHash string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.torrents[infoHash]
	if !ok {
		return
	}
	t.Drop()
	delete(r.torrents, infoHash)
	delete(r.paths, infoHash)
}

func (r *Real) TorrentCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.torrents)
}

func (r *Real) List() []Descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Descriptor, 0, len(r.torrents))
	for hash, t := range r.torrents {
		length := t.Length()
		completed := t.BytesCompleted()
		stats := t.Stats()
		var progress float64
		if length > 0 {
			progress = float64(completed) / float64(length)
		}
		out = append(out, Descriptor{
			InfoHash:     hash,
			Name:         t.Name(),
			Size:         length,
			Downloaded:   completed,
			Uploaded:     stats.BytesWrittenData.Int64(),
			NumPeers:     stats.ActivePeers,
			Progress:     progress,
			IsSeed:       length > 0 && completed == length,
		})
	}
	return out
}

func (r *Real) PauseSession() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = true
	for _, t := range r.torrents {
		t.DisallowDataDownload()
		t.DisallowDataUpload()
	}
	return nil
}

func (r *Real) ResumeSession() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = false
	for _, t := range r.torrents {
		t.AllowDataDownload()
		t.AllowDataUpload()
	}
	return nil
}

func (r *Real) IsPaused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused
}

func (r *Real) PauseDownloads() {
	r.SetDownloadRateLimit(1)
}

func (r *Real) ResumeDownloads() {
	r.SetDownloadRateLimit(0)
}

func (r *Real) SetDownloadRateLimit(bps int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.downBps = bps
	if r.downLimiter != nil {
		r.downLimiter.SetLimit(rateLimitFor(bps))
		r.downLimiter.SetBurst(burstFor(bps))
	}
}

func (r *Real) SetUploadRateLimit(bps int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upBps = bps
	if r.upLimiter != nil {
		r.upLimiter.SetLimit(rateLimitFor(bps))
		r.upLimiter.SetBurst(burstFor(bps))
	}
}

func (r *Real) GetDownloadRateLimit() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.downBps
}

func (r *Real) GetStats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil {
		return Stats{}
	}
	cs := r.client.Stats()
	now := time.Now()
	elapsed := now.Sub(r.lastSampleAt).Seconds()
	if elapsed >= 1 {
		read := cs.BytesReadData.Int64()
		written := cs.BytesWrittenData.Int64()
		r.downRate = int64(float64(read-r.lastRead) / elapsed)
		r.upRate = int64(float64(written-r.lastWritten) / elapsed)
		r.lastRead = read
		r.lastWritten = written
		r.lastSampleAt = now
	}

	peers := 0
	for _, t := range r.torrents {
		peers += t.Stats().ActivePeers
	}

	return Stats{
		PeerCount:       peers,
		DownloadRate:    r.downRate,
		UploadRate:      r.upRate,
		TotalDownloaded: cs.BytesReadData.Int64(),
		TotalUploaded:   cs.BytesWrittenData.Int64(),
	}
}

// ApplyBudgetPriorities implements the per-file priority algorithm: within
// each torrent, files are visited in an order shuffled deterministically by
// that torrent's info-hash (stable tick-to-tick, distinct across torrents),
// marking files "download" until the budget is exhausted and "do not
// download" thereafter. Already-complete files are left alone so they keep
// seeding.
func (r *Real) ApplyBudgetPriorities(budgetBytes uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	remaining := budgetBytes
	for infoHash, t := range r.torrents {
		files := t.Files()
		order := shuffleForInfoHash(infoHash, len(files))

		for _, idx := range order {
			f := files[idx]
			bytesLeft := f.Length() - f.BytesCompleted()
			if bytesLeft <= 0 {
				continue
			}
			if uint64(bytesLeft) <= remaining {
				f.SetPriority(torrent.PiecePriorityNormal)
				remaining -= uint64(bytesLeft)
			} else {
				f.SetPriority(torrent.PiecePriorityNone)
			}
		}
	}
}

type stateEnvelope struct {
	Torrents []stateTorrent `json:"torrents"`
}

type stateTorrent struct {
	InfoHash string `json:"info_hash"`
	Path     string `json:"path"`
}

// SaveState writes the set of currently tracked (info-hash, metadata path)
// pairs. anacrolix/torrent exposes no single-call equivalent of a
// libtorrent session-parameter blob (in particular no public DHT
// routing-table dump); re-adding every torrent from its metadata path on
// the next Start is the closest available equivalent of resuming where the
// session left off.
func (r *Real) SaveState(path string) error {
	r.mu.Lock()
	env := stateEnvelope{}
	for hash, p := range r.paths {
		env.Torrents = append(env.Torrents, stateTorrent{InfoHash: hash, Path: p})
	}
	r.mu.Unlock()

	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadState may be called before Start; the actual merge is deferred to
// Start, per the interface contract.
func (r *Real) LoadState(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client != nil {
		return r.loadStateLocked(path)
	}
	r.pendingStatePath = path
	return nil
}

func (r *Real) loadStateLocked(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var env stateEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil // corrupt state: non-fatal, start with no resumed torrents
	}
	for _, st := range env.Torrents {
		t, err := r.client.AddTorrentFromFile(st.Path)
		if err != nil {
			r.log.Warn().Err(err).Str("path", st.Path).Msg("failed to resume torrent from saved state")
			continue
		}
		t.AddTrackers([][]string{WSSTrackers})
		hash := t.InfoHash().HexString()
		r.torrents[hash] = t
		r.paths[hash] = st.Path
	}
	return nil
}

func (r *Real) GetTrackers(infoHash string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.torrents[infoHash]
	if !ok {
		return nil
	}
	var urls []string
	mi := t.Metainfo()
	for _, tier := range mi.UpvertedAnnounceList() {
		urls = append(urls, tier...)
	}
	return urls
}

func rateLimitFor(bps int64) rate.Limit {
	if bps <= 0 {
		return rate.Inf
	}
	return rate.Limit(bps)
}

func burstFor(bps int64) int {
	if bps <= 0 {
		return 1 << 30
	}
	if bps > int64(^uint(0)>>1) {
		return int(^uint(0) >> 1)
	}
	return int(bps)
}

// shuffleForInfoHash returns a permutation of [0, n) seeded deterministically
// from infoHash, so the per-torrent file visiting order is stable across
// enforcement ticks but differs from torrent to torrent.
func shuffleForInfoHash(infoHash string, n int) []int {
	sum := sha1.Sum([]byte(infoHash))
	seed1 := binary.BigEndian.Uint64(sum[0:8])
	seed2 := binary.BigEndian.Uint64(sum[8:16])
	rnd := rand.New(rand.NewPCG(seed1, seed2))
	return rnd.Perm(n)
}
