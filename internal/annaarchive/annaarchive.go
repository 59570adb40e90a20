// Package annaarchive fetches the remote torrent-URL index used to seed a
// fresh watch directory with the motivating corpus (Anna's Archive) and
// downloads the listed .torrent files, for the `levin populate` command.
// It never runs inside the daemon itself.
package annaarchive

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cavaliergopher/grab/v3"
)

const indexURL = "https://annas-archive.li/dyn/generate_torrents?max_tb=1&format=url"

var retryBackoff = []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}

// FetchTorrentURLs retrieves the line-delimited list of torrent-metadata
// URLs, retrying with exponential backoff on transient failures.
func FetchTorrentURLs(ctx context.Context) ([]string, error) {
	var lastErr error
	for attempt := 0; attempt <= len(retryBackoff); attempt++ {
		urls, err := fetchOnce(ctx)
		if err == nil {
			return urls, nil
		}
		lastErr = err
		if attempt < len(retryBackoff) {
			select {
			case <-time.After(retryBackoff[attempt]):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, fmt.Errorf("fetching torrent index: %w", lastErr)
}

func fetchOnce(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, indexURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var urls []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}

// ProgressFunc reports download progress for one populate invocation.
type ProgressFunc func(index, total int, message string)

// Populate downloads every URL that doesn't already exist (by filename)
// into watchDir, reporting progress along the way. It returns the number
// of files actually downloaded.
func Populate(ctx context.Context, watchDir string, urls []string, progress ProgressFunc) (int, error) {
	if err := os.MkdirAll(watchDir, 0o755); err != nil {
		return 0, fmt.Errorf("creating watch directory: %w", err)
	}

	downloaded := 0
	for i, url := range urls {
		dest := filepath.Join(watchDir, destFileName(url))

		if _, err := os.Stat(dest); err == nil {
			progress(i, len(urls), "skipped (exists)")
			continue
		}

		progress(i, len(urls), "downloading")
		if err := downloadFile(ctx, url, dest); err != nil {
			progress(i, len(urls), "failed")
			continue
		}
		downloaded++
	}
	return downloaded, nil
}

// destFileName returns the file name a torrent URL should be saved under,
// with any query string stripped so "?token=..." doesn't end up on disk.
func destFileName(url string) string {
	name := filepath.Base(url)
	if i := strings.IndexByte(name, '?'); i >= 0 {
		name = name[:i]
	}
	return name
}

func downloadFile(ctx context.Context, url, dest string) error {
	req, err := grab.NewRequest(dest, url)
	if err != nil {
		return err
	}
	req = req.WithContext(ctx)

	resp := grab.DefaultClient.Do(req)
	if err := resp.Err(); err != nil {
		os.Remove(dest)
		return err
	}
	return nil
}
