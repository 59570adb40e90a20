package control

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnknownCommandReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "levin.sock")
	srv, err := NewServer(path, Handlers{
		Status: func() map[string]string { return map[string]string{"state": "IDLE"} },
		List:   func() []map[string]string { return nil },
		Pause:  func() {},
		Resume: func() {},
	})
	require.NoError(t, err)
	defer srv.Close()

	go func() {
		for i := 0; i < 20; i++ {
			srv.Poll()
			time.Sleep(5 * time.Millisecond)
		}
	}()

	_, err = (Client{Path: path}).Send("bogus")
	require.Error(t, err)
}

func TestStatusRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "levin.sock")
	srv, err := NewServer(path, Handlers{
		Status: func() map[string]string { return map[string]string{"state": "DOWNLOADING", "torrent_count": "2"} },
		List:   func() []map[string]string { return nil },
		Pause:  func() {},
		Resume: func() {},
	})
	require.NoError(t, err)
	defer srv.Close()

	go func() {
		for i := 0; i < 20; i++ {
			srv.Poll()
			time.Sleep(5 * time.Millisecond)
		}
	}()

	reply, err := (Client{Path: path}).Send("status")
	require.NoError(t, err)
	assert.Equal(t, "DOWNLOADING", reply["state"])
	assert.Equal(t, "2", reply["torrent_count"])
}
