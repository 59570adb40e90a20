// Package orchestrator owns the 1 Hz tick loop that wires the state
// machine, disk budget enforcer, torrent session, directory watcher,
// statistics store and control channel together — the same
// signal.NotifyContext-driven run/shutdown shape this codebase's ancestor
// uses for its HTTP server, adapted to a cooperative tick loop instead of
// a blocking Serve call.
package orchestrator

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/bjesus/levin/internal/config"
	"github.com/bjesus/levin/internal/control"
	"github.com/bjesus/levin/internal/diskbudget"
	"github.com/bjesus/levin/internal/enforcer"
	"github.com/bjesus/levin/internal/metrics"
	"github.com/bjesus/levin/internal/platform"
	"github.com/bjesus/levin/internal/session"
	"github.com/bjesus/levin/internal/stats"
	"github.com/bjesus/levin/internal/statemachine"
	"github.com/bjesus/levin/internal/watcher"
)

const statsFlushInterval = 300 // ticks

// Orchestrator is the daemon's single-threaded control loop.
type Orchestrator struct {
	cfg        *config.Config
	configPath string
	log        zerolog.Logger

	machine    *statemachine.Machine
	sess       session.Session
	watch      *watcher.Watcher
	enf        *enforcer.Enforcer
	record     *stats.Record
	control    *control.Server
	gauges     *metrics.Gauges
	metricsSrv *http.Server
	pidFile    platform.PIDFile

	statsPath string
	statePath string

	mu         sync.Mutex
	pathToHash map[string]string
	lastStatus enforcer.Status

	tickCount uint64
	reloadCh  chan os.Signal
}

// New builds an Orchestrator for cfg, using sess as the torrent engine.
// configPath is the path cfg was loaded from (possibly the default, if the
// daemon was started without --config); SIGHUP reloads from the same path.
func New(cfg *config.Config, configPath string, log zerolog.Logger, sess session.Session) *Orchestrator {
	o := &Orchestrator{
		cfg:        cfg,
		configPath: configPath,
		log:        log,
		sess:       sess,
		pathToHash: make(map[string]string),
		statsPath:  filepath.Join(cfg.StateDirectory, "stats.dat"),
		statePath:  filepath.Join(cfg.StateDirectory, "session.state"),
		pidFile:    platform.PIDFile{Path: filepath.Join(cfg.StateDirectory, "levin.pid")},
		reloadCh:   make(chan os.Signal, 1),
	}
	o.machine = statemachine.New(o.onTransition)
	return o
}

// Run drives the daemon until ctx is cancelled (normally by SIGTERM/SIGINT
// via signal.NotifyContext in the caller). It blocks.
func (o *Orchestrator) Run(ctx context.Context) error {
	if err := o.startup(ctx); err != nil {
		return err
	}
	defer o.shutdown()

	signal.Notify(o.reloadCh, syscall.SIGHUP)
	signal.Ignore(syscall.SIGPIPE)
	defer signal.Stop(o.reloadCh)

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-o.reloadCh:
			o.reload()
		case <-ticker.C:
			o.tick()
		}
	}
}

func (o *Orchestrator) startup(ctx context.Context) error {
	for _, dir := range []string{o.cfg.WatchDirectory, o.cfg.DataDirectory, o.cfg.StateDirectory} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	if pid, err := o.pidFile.Read(); err == nil && platform.IsRunning(pid) {
		return fmt.Errorf("levin already running with pid %d", pid)
	}
	if err := o.pidFile.Write(); err != nil {
		return fmt.Errorf("writing pid file: %w", err)
	}

	record, loaded, err := stats.Load(o.statsPath)
	if err != nil {
		return err
	}
	o.record = record
	o.log.Info().Bool("loaded", loaded).Msg("statistics loaded")

	o.sess.Configure(o.cfg.Port, o.cfg.StunServer)
	if err := o.sess.LoadState(o.statePath); err != nil {
		o.log.Warn().Err(err).Msg("failed to load session state")
	}
	if err := o.sess.Start(ctx, o.cfg.DataDirectory); err != nil {
		return fmt.Errorf("starting torrent session: %w", err)
	}
	o.applyRateLimits()

	o.enf = &enforcer.Enforcer{
		DataDirectory: o.cfg.DataDirectory,
		Config: diskbudget.Config{
			MinFreeBytes:      o.cfg.MinFreeBytes,
			MinFreePercentage: o.cfg.MinFreePercentage,
			MaxStorageBytes:   o.cfg.MaxStorageBytes,
		},
		StorageInfo: platform.StorageInfo,
		DiskUsage:   platform.DiskUsage,
		Delete:      diskbudget.DeleteToFree,
		Session:     o.sess,
		Log:         o.log,
	}

	o.watch = watcher.New(o.cfg.WatchDirectory)
	if err := o.watch.Start(); err != nil {
		return fmt.Errorf("starting directory watcher: %w", err)
	}
	existing, err := o.watch.ScanExisting()
	if err != nil {
		o.log.Warn().Err(err).Msg("initial watch-directory scan failed")
	}
	for _, ev := range existing {
		o.handleAdded(ev.Path)
	}

	srv, err := control.NewServer(o.controlSocketPath(), control.Handlers{
		Status: o.statusFields,
		List:   o.listFields,
		Pause:  func() { o.machine.UpdateEnabled(false) },
		Resume: func() { o.machine.UpdateEnabled(true) },
	})
	if err != nil {
		return fmt.Errorf("starting control socket: %w", err)
	}
	o.control = srv

	if o.cfg.MetricsListen != "" {
		o.gauges = metrics.NewGauges()
		srv := metrics.NewServer(o.cfg.MetricsListen)
		go func() {
			if err := srv.ListenAndServe(); err != nil {
				o.log.Warn().Err(err).Msg("metrics server stopped")
			}
		}()
		o.metricsSrv = srv
	}

	o.machine.UpdateEnabled(true)
	o.machine.UpdateBatteryOK(platform.IsOnACPower() || o.cfg.RunOnBattery)
	o.machine.UpdateNetworkOK(platform.NetworkUp())
	o.machine.UpdateHasTorrents(o.sess.TorrentCount() > 0)
	o.machine.UpdateStorageOK(true)

	return nil
}

func (o *Orchestrator) shutdown() {
	o.log.Info().Msg("shutting down")
	o.flushStats()
	if err := o.sess.SaveState(o.statePath); err != nil {
		o.log.Warn().Err(err).Msg("failed to save session state")
	}
	o.sess.Stop()
	if o.watch != nil {
		o.watch.Stop()
	}
	if o.control != nil {
		o.control.Close()
	}
	if o.metricsSrv != nil {
		o.metricsSrv.Shutdown(context.Background())
	}
	o.pidFile.Remove()
}

func (o *Orchestrator) controlSocketPath() string {
	return filepath.Join(o.cfg.StateDirectory, "control.sock")
}

func (o *Orchestrator) reload() {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		o.log.Warn().Err(err).Msg("config reload failed")
		return
	}
	o.cfg = cfg
	o.applyRateLimits()
	o.machine.UpdateBatteryOK(platform.IsOnACPower() || o.cfg.RunOnBattery)
	o.log.Info().Msg("config reloaded")
}

func (o *Orchestrator) applyRateLimits() {
	o.sess.SetDownloadRateLimit(o.cfg.MaxDownloadKbps * 1024)
	o.sess.SetUploadRateLimit(o.cfg.MaxUploadKbps * 1024)
}
