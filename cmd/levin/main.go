// Command levin runs the BitTorrent-swarm mirroring daemon, or talks to an
// already-running instance over its control socket.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bjesus/levin/internal/annaarchive"
	"github.com/bjesus/levin/internal/cliclient"
	"github.com/bjesus/levin/internal/config"
	"github.com/bjesus/levin/internal/control"
	"github.com/bjesus/levin/internal/orchestrator"
	"github.com/bjesus/levin/internal/platform"
	"github.com/bjesus/levin/internal/session"
	"github.com/bjesus/levin/pkg/logger"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "levin",
		Short: "Mirror a BitTorrent swarm under a disk, power and network budget.",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to levin.toml (defaults to the XDG config location)")

	root.AddCommand(
		startCmd(),
		stopCmd(),
		statusCmd(),
		listCmd(),
		pauseCmd(),
		resumeCmd(),
		populateCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func resolvedConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultPath()
}

func loadConfig() (*config.Config, error) {
	return config.Load(resolvedConfigPath())
}

func controlClient(cfg *config.Config) control.Client {
	return control.Client{Path: filepath.Join(cfg.StateDirectory, "control.sock")}
}

func startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Run the daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := logger.New(cfg.LogLevel, cfg.LogFile)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			sess := session.NewReal(log)
			o := orchestrator.New(cfg, resolvedConfigPath(), log, sess)
			return o.Run(ctx)
		},
	}
}

func stopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop a running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pf := platform.PIDFile{Path: filepath.Join(cfg.StateDirectory, "levin.pid")}
			pid, err := pf.Read()
			if err != nil {
				return fmt.Errorf("levin is not running: %w", err)
			}
			if !platform.IsRunning(pid) {
				return fmt.Errorf("levin is not running")
			}
			return syscall.Kill(pid, syscall.SIGTERM)
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			reply, err := controlClient(cfg).Send("status")
			if err != nil {
				return err
			}
			fmt.Printf("state:            %s\n", reply["state"])
			fmt.Printf("torrents:         %s\n", cliclient.FormatNumber(atoi64(reply["torrent_count"])))
			fmt.Printf("peers:            %s\n", cliclient.FormatNumber(atoi64(reply["peer_count"])))
			fmt.Printf("download rate:    %s\n", cliclient.FormatRate(atoi64(reply["download_rate"])))
			fmt.Printf("upload rate:      %s\n", cliclient.FormatRate(atoi64(reply["upload_rate"])))
			fmt.Printf("total downloaded: %s\n", cliclient.FormatBytes(atoi64(reply["total_downloaded"])))
			fmt.Printf("total uploaded:   %s\n", cliclient.FormatBytes(atoi64(reply["total_uploaded"])))
			fmt.Printf("disk usage:       %s\n", cliclient.FormatBytes(atoi64(reply["disk_usage"])))
			fmt.Printf("disk budget:      %s\n", cliclient.FormatBytes(atoi64(reply["disk_budget"])))
			fmt.Printf("over budget:      %s\n", reply["over_budget"])
			fmt.Printf("files:            %s\n", cliclient.FormatNumber(atoi64(reply["file_count"])))
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tracked torrents",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			reply, err := controlClient(cfg).Send("list")
			if err != nil {
				return err
			}
			var count int
			fmt.Sscanf(reply["count"], "%d", &count)
			for i := 0; i < count; i++ {
				fmt.Printf("%s  %8s  down %-12s up %-12s  %s\n",
					reply[fmt.Sprintf("t%d_hash", i)],
					cliclient.FormatBytes(atoi64(reply[fmt.Sprintf("t%d_size", i)])),
					cliclient.FormatRate(atoi64(reply[fmt.Sprintf("t%d_down_rate", i)])),
					cliclient.FormatRate(atoi64(reply[fmt.Sprintf("t%d_up_rate", i)])),
					reply[fmt.Sprintf("t%d_name", i)])
			}
			return nil
		},
	}
}

func pauseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Disable the daemon (session paused, state stays OFF/PAUSED)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			_, err = controlClient(cfg).Send("pause")
			return err
		},
	}
}

func resumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Re-enable the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			_, err = controlClient(cfg).Send("resume")
			return err
		},
	}
}

func populateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "populate",
		Short: "Fetch the remote torrent index and seed the watch directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := context.Background()
			urls, err := annaarchive.FetchTorrentURLs(ctx)
			if err != nil {
				return err
			}
			n, err := annaarchive.Populate(ctx, cfg.WatchDirectory, urls, func(i, total int, msg string) {
				fmt.Printf("[%d/%d] %s\n", i+1, total, msg)
			})
			if err != nil {
				return err
			}
			fmt.Printf("downloaded %d new torrent files\n", n)
			return nil
		},
	}
}

func atoi64(s string) int64 {
	var n int64
	fmt.Sscanf(s, "%d", &n)
	return n
}
