package orchestrator

import (
	"fmt"

	"github.com/bjesus/levin/internal/platform"
	"github.com/bjesus/levin/internal/watcher"
)

// tick runs one iteration of the 1 Hz loop: drain watcher events, recompute
// has_torrents, run the enforcer on schedule, poll the control socket, and
// flush statistics periodically.
func (o *Orchestrator) tick() {
	o.tickCount++

	for _, ev := range o.watch.Poll() {
		switch ev.Kind {
		case watcher.Added:
			o.handleAdded(ev.Path)
		case watcher.Removed:
			o.handleRemoved(ev.Path)
		}
	}

	o.machine.UpdateHasTorrents(o.sess.TorrentCount() > 0)
	o.machine.UpdateNetworkOK(platform.NetworkUp())
	o.machine.UpdateBatteryOK(platform.IsOnACPower() || o.cfg.RunOnBattery)

	if o.tickCount == 1 || int(o.tickCount)%o.cfg.DiskCheckIntervalSecs == 0 {
		o.runEnforcer()
	}

	o.control.Poll()

	if o.tickCount%statsFlushInterval == 0 {
		o.flushStats()
	}
}

func (o *Orchestrator) runEnforcer() {
	status, err := o.enf.Run(o.machine.UpdateStorageOK)
	if err != nil {
		o.log.Warn().Err(err).Msg("budget enforcement failed")
		return
	}

	o.mu.Lock()
	o.lastStatus = status
	o.mu.Unlock()

	if o.gauges != nil {
		o.gauges.State.Set(float64(o.machine.State()))
		o.gauges.DiskUsageBytes.Set(float64(status.UsageBytes))
		o.gauges.DiskBudgetBytes.Set(float64(status.Budget.BudgetBytes))
		if status.Budget.OverBudget {
			o.gauges.OverBudget.Set(1)
		} else {
			o.gauges.OverBudget.Set(0)
		}
		o.gauges.TorrentCount.Set(float64(o.sess.TorrentCount()))
	}
}

func (o *Orchestrator) flushStats() {
	s := o.sess.GetStats()
	o.record.Update(uint64(s.TotalDownloaded), uint64(s.TotalUploaded))
	if err := o.record.Save(o.statsPath); err != nil {
		o.log.Warn().Err(err).Msg("failed to flush statistics")
		return
	}
	if o.gauges != nil {
		o.gauges.TotalDownloaded.Set(float64(o.record.TotalDownloaded))
		o.gauges.TotalUploaded.Set(float64(o.record.TotalUploaded))
	}
}

func (o *Orchestrator) handleAdded(path string) {
	hash, err := o.sess.AddTorrent(path)
	if err != nil {
		o.log.Warn().Err(err).Str("path", path).Msg("failed to add torrent")
		return
	}
	if hash == "" {
		o.log.Debug().Str("path", path).Msg("added no torrent")
		return
	}
	o.mu.Lock()
	o.pathToHash[path] = hash
	o.mu.Unlock()
	o.machine.UpdateHasTorrents(o.sess.TorrentCount() > 0)
}

// handleRemoved resolves path to the info-hash recorded when it was added
// and drops it from the session. A path the orchestrator never saw an add
// event for is a no-op.
func (o *Orchestrator) handleRemoved(path string) {
	o.mu.Lock()
	hash, ok := o.pathToHash[path]
	delete(o.pathToHash, path)
	o.mu.Unlock()

	if !ok {
		return
	}
	o.sess.RemoveTorrent(hash)
}

func (o *Orchestrator) statusFields() map[string]string {
	o.mu.Lock()
	status := o.lastStatus
	o.mu.Unlock()

	s := o.sess.GetStats()
	return map[string]string{
		"state":            o.machine.State().String(),
		"torrent_count":    fmt.Sprintf("%d", o.sess.TorrentCount()),
		"peer_count":       fmt.Sprintf("%d", s.PeerCount),
		"download_rate":    fmt.Sprintf("%d", s.DownloadRate),
		"upload_rate":      fmt.Sprintf("%d", s.UploadRate),
		"total_downloaded": fmt.Sprintf("%d", o.record.TotalDownloaded),
		"total_uploaded":   fmt.Sprintf("%d", o.record.TotalUploaded),
		"disk_usage":       fmt.Sprintf("%d", status.UsageBytes),
		"disk_budget":      fmt.Sprintf("%d", status.Budget.BudgetBytes),
		"over_budget":      fmt.Sprintf("%t", status.Budget.OverBudget),
		"file_count":       fmt.Sprintf("%d", status.FileCount),
	}
}

func (o *Orchestrator) listFields() []map[string]string {
	descriptors := o.sess.List()
	out := make([]map[string]string, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, map[string]string{
			"hash":       d.InfoHash,
			"name":       d.Name,
			"size":       fmt.Sprintf("%d", d.Size),
			"downloaded": fmt.Sprintf("%d", d.Downloaded),
			"uploaded":   fmt.Sprintf("%d", d.Uploaded),
			"down_rate":  fmt.Sprintf("%d", d.DownloadRate),
			"up_rate":    fmt.Sprintf("%d", d.UploadRate),
			"peers":      fmt.Sprintf("%d", d.NumPeers),
			"progress":   fmt.Sprintf("%f", d.Progress),
			"seed":       fmt.Sprintf("%t", d.IsSeed),
		})
	}
	return out
}
