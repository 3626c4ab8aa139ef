package transfer_test

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/tarnplatform/tarn-go/transfer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_ConcurrentAdd(t *testing.T) {
	tracker := transfer.NewTracker("test", 10_000, io.Discard)

	// The transfer primitive may report byte counts from many
	// goroutines at once.
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tracker.Add(10)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(10_000), tracker.Transferred())
	assert.Equal(t, int64(10_000), tracker.Total())
}

func TestTracker_Callback(t *testing.T) {
	tracker := transfer.NewTracker("test", 100, io.Discard)

	cb := tracker.Callback()
	cb(40)
	cb(60)

	assert.Equal(t, int64(100), tracker.Transferred())
}

func TestTracker_ProxyReader(t *testing.T) {
	content := strings.Repeat("x", 512)
	tracker := transfer.NewTracker("test", int64(len(content)), io.Discard)

	var out bytes.Buffer
	n, err := io.Copy(&out, tracker.NewProxyReader(strings.NewReader(content)))
	require.NoError(t, err)

	assert.Equal(t, int64(len(content)), n)
	assert.Equal(t, int64(len(content)), tracker.Transferred())
	assert.Equal(t, content, out.String())
}

func TestTracker_ProxyWriter(t *testing.T) {
	tracker := transfer.NewTracker("test", 3, io.Discard)

	var out bytes.Buffer
	_, err := tracker.NewProxyWriter(&out).Write([]byte("abc"))
	require.NoError(t, err)

	assert.Equal(t, int64(3), tracker.Transferred())
	assert.Equal(t, "abc", out.String())
}
