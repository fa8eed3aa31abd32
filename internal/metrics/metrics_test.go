package metrics

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollector_Connections(t *testing.T) {
	req := require.New(t)
	c := New()

	c.ConnectionOpened()
	c.ConnectionOpened()
	req.EqualValues(2, c.ActiveConnections())
	req.EqualValues(2, c.TotalConnections())

	c.ConnectionClosed()
	req.EqualValues(1, c.ActiveConnections())
	req.EqualValues(2, c.TotalConnections(), "total never decreases")
}

func TestCollector_Commands(t *testing.T) {
	req := require.New(t)
	c := New()

	c.CommandHandled()
	c.CommandHandled()
	c.CommandFailed("error UnknownUser: there is no user \"ghost\"")
	c.Broadcast(3)
	c.Broadcast(1)

	req.EqualValues(2, c.Commands())
	req.EqualValues(1, c.CommandErrors())
	req.EqualValues(2, c.Messages())

	snap := c.Snapshot()
	req.EqualValues(4, snap.Deliveries)
	req.NotEmpty(snap.LastError)
	req.Contains(snap.LastErrorMessage, "UnknownUser")
}

func TestCollector_Moderation(t *testing.T) {
	req := require.New(t)
	c := New()

	for i := 0; i < 3; i++ {
		c.Strike()
	}
	c.BanIssued()
	req.EqualValues(3, c.Strikes())
	req.EqualValues(1, c.BansActive())

	c.BanLifted()
	req.EqualValues(0, c.BansActive())
}

func TestCollector_JSON(t *testing.T) {
	req := require.New(t)
	c := New()
	c.ConnectionOpened()
	c.SessionDropped()
	c.BanIssued()

	var snap Snapshot
	req.NoError(json.Unmarshal([]byte(c.JSON()), &snap))
	req.EqualValues(1, snap.ConnectionsActive)
	req.EqualValues(1, snap.SessionsDropped)
	req.EqualValues(1, snap.BansIssued)
	req.NotEmpty(snap.Uptime)
	req.Empty(snap.LastError)
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector

	c.ConnectionOpened()
	c.ConnectionClosed()
	c.SessionDropped()
	c.CommandHandled()
	c.CommandFailed("x")
	c.Broadcast(5)
	c.Strike()
	c.BanIssued()
	c.BanLifted()

	require.Zero(t, c.ActiveConnections())
	require.Zero(t, c.BansActive())
	require.Equal(t, Snapshot{}, c.Snapshot())
	require.Equal(t, "{\n  \"uptime\": \"\",\n  \"connections_active\": 0,\n  \"connections_total\": 0,\n  \"sessions_dropped\": 0,\n  \"commands\": 0,\n  \"command_errors\": 0,\n  \"messages\": 0,\n  \"deliveries\": 0,\n  \"strikes\": 0,\n  \"bans_issued\": 0,\n  \"bans_lifted\": 0\n}", c.JSON())
}

func TestCollector_Concurrent(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.ConnectionOpened()
			c.CommandHandled()
			c.Broadcast(2)
			c.ConnectionClosed()
		}()
	}
	wg.Wait()

	require.Zero(t, c.ActiveConnections())
	require.EqualValues(t, 50, c.TotalConnections())
	require.EqualValues(t, 50, c.Commands())
	require.EqualValues(t, 100, c.Snapshot().Deliveries)
}
