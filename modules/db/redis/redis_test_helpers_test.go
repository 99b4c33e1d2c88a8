package redis

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/require"
)

// newTestClient starts an in-process Redis and returns a client bound to it.
// Client-side caching is off since miniredis does not implement CLIENT TRACKING.
func newTestClient(t *testing.T) (rueidis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	cli, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)
	t.Cleanup(cli.Close)

	return cli, mr
}
