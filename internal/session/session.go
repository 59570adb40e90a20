// Package session abstracts the BitTorrent engine behind the narrow
// capability surface the rest of Levin consumes — lifecycle, add/remove,
// per-file budget priorities, rate limits, stats, and state save/load.
// Two implementations exist: Real (anacrolix/torrent-backed) and Stub
// (in-memory, for tests and environments without a real engine).
package session

import "context"

// Priority is the per-file download priority the budget enforcer assigns.
type Priority int

const (
	PriorityDoNotDownload Priority = iota
	PriorityDefault
	PriorityDownload
)

// Descriptor is the read model exposed for a single torrent.
type Descriptor struct {
	InfoHash     string
	Name         string
	Size         int64
	Downloaded   int64
	Uploaded     int64
	DownloadRate int64
	UploadRate   int64
	NumPeers     int
	Progress     float64
	IsSeed       bool
}

// Stats is the session-wide, cumulative transfer snapshot.
type Stats struct {
	PeerCount       int
	DownloadRate    int64
	UploadRate      int64
	TotalDownloaded int64
	TotalUploaded   int64
}

// Session is the capability surface the orchestrator and enforcer drive.
type Session interface {
	Configure(port int, stunServer string)
	Start(ctx context.Context, dataDir string) error
	Stop() error
	IsRunning() bool

	// AddTorrent loads torrent metadata from path and returns its
	// info-hash. It returns ("", nil) — not an error — when the metadata
	// is invalid, per the "add_torrent fails silently" contract.
	AddTorrent(path string) (string, error)
	RemoveTorrent(infoHash string)
	TorrentCount() int
	List() []Descriptor

	PauseSession() error
	ResumeSession() error
	IsPaused() bool

	PauseDownloads()
	ResumeDownloads()
	SetDownloadRateLimit(bps int64)
	SetUploadRateLimit(bps int64)
	GetDownloadRateLimit() int64

	GetStats() Stats

	// ApplyBudgetPriorities runs the per-file priority algorithm across
	// every tracked torrent, never allowing more than budgetBytes of
	// not-yet-downloaded payload to be marked for download.
	ApplyBudgetPriorities(budgetBytes uint64)

	SaveState(path string) error
	LoadState(path string) error

	GetTrackers(infoHash string) []string
}

// WSSTrackers are injected at tier 0 on every added torrent to extend peer
// discovery to browser-originated (WebTorrent) peers. This is symbolic on
// engines — anacrolix/torrent included — that don't speak WebSocket/WebRTC
// transports natively; the URLs are still recorded against the torrent so
// get_trackers() reports them and any future transport upgrade picks them
// up for free.
var WSSTrackers = []string{
	"wss://tracker.openwebtorrent.com",
	"wss://tracker.webtorrent.dev",
	"wss://tracker.btorrent.xyz",
}
