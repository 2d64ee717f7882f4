package isochrone

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arealab/geofilter/internal/geom"
)

var center = geom.Point{Lng: 2.17, Lat: 41.38}

func settings(minutes int) geom.IsochroneSettings {
	return geom.IsochroneSettings{Center: center, Profile: geom.ProfileWalking, Minutes: minutes}
}

// poly returns a distinguishable square polygon keyed by off.
func poly(off float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{off, off}, {off + 1, off}, {off + 1, off + 1}, {off, off + 1}, {off, off},
	}}
}

// stubClient returns a fixed polygon or error and counts calls.
type stubClient struct {
	mu    sync.Mutex
	calls int
	poly  orb.Polygon
	err   error
}

func (c *stubClient) Isochrone(ctx context.Context, center geom.Point, profile geom.Profile, minutes int) (orb.Polygon, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.poly, c.err
}

func (c *stubClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// gateClient blocks each call until released, so tests can control the
// order in which requests resolve.
type gateClient struct {
	mu      sync.Mutex
	pending []chan orb.Polygon
	started chan struct{}
}

func newGateClient() *gateClient {
	return &gateClient{started: make(chan struct{}, 8)}
}

func (c *gateClient) Isochrone(ctx context.Context, center geom.Point, profile geom.Profile, minutes int) (orb.Polygon, error) {
	release := make(chan orb.Polygon, 1)
	c.mu.Lock()
	c.pending = append(c.pending, release)
	c.mu.Unlock()
	c.started <- struct{}{}

	select {
	case p := <-release:
		return p, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *gateClient) release(i int, p orb.Polygon) {
	c.mu.Lock()
	ch := c.pending[i]
	c.mu.Unlock()
	ch <- p
}

func TestComputeStoresDraft(t *testing.T) {
	client := &stubClient{poly: poly(0)}
	e := New(client, logr.Discard())

	res, err := e.Compute(context.Background(), settings(15))
	require.NoError(t, err)
	assert.Equal(t, 15, res.Settings.Minutes)
	assert.Len(t, res.Polygon.Points, 4)
	assert.Equal(t, geom.ProfileWalking.Color(), res.Color)

	draft := e.Draft()
	require.NotNil(t, draft)
	assert.Equal(t, res.Settings, draft.Settings)
}

func TestInvalidSettingsNeverReachClient(t *testing.T) {
	client := &stubClient{poly: poly(0)}
	e := New(client, logr.Discard())

	for _, m := range []int{0, -5, 61} {
		_, err := e.Compute(context.Background(), settings(m))
		require.Error(t, err, "minutes %d", m)
	}
	_, err := e.Compute(context.Background(), geom.IsochroneSettings{Center: center, Profile: "rocket", Minutes: 10})
	require.Error(t, err)

	assert.Zero(t, client.callCount(), "validation failures are local")
	assert.Nil(t, e.Draft())
}

func TestFailureLeavesDraftUntouched(t *testing.T) {
	client := &stubClient{poly: poly(0)}
	e := New(client, logr.Discard())

	_, err := e.Compute(context.Background(), settings(10))
	require.NoError(t, err)

	client.err = errors.New("upstream 500")
	_, err = e.Compute(context.Background(), settings(20))
	require.Error(t, err)

	draft := e.Draft()
	require.NotNil(t, draft)
	assert.Equal(t, 10, draft.Settings.Minutes, "failed request does not clobber the draft")
}

func TestEmptyResult(t *testing.T) {
	e := New(&stubClient{poly: orb.Polygon{}}, logr.Discard())
	_, err := e.Compute(context.Background(), settings(10))
	require.ErrorIs(t, err, ErrEmptyResult)

	e = New(&stubClient{poly: orb.Polygon{orb.Ring{{0, 0}, {1, 1}, {0, 0}}}}, logr.Discard())
	_, err = e.Compute(context.Background(), settings(10))
	require.ErrorIs(t, err, ErrEmptyResult)
}

func TestLastRequestWins(t *testing.T) {
	client := newGateClient()
	e := New(client, logr.Discard())

	type outcome struct {
		res *Result
		err error
	}
	resA := make(chan outcome, 1)
	resB := make(chan outcome, 1)

	go func() {
		r, err := e.Compute(context.Background(), settings(10))
		resA <- outcome{r, err}
	}()
	<-client.started

	go func() {
		r, err := e.Compute(context.Background(), settings(30))
		resB <- outcome{r, err}
	}()
	<-client.started

	// B resolves first, then A resolves late. B must win.
	client.release(1, poly(3))
	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, 30, b.res.Settings.Minutes)

	client.release(0, poly(1))
	a := <-resA
	require.ErrorIs(t, a.err, ErrSuperseded)

	draft := e.Draft()
	require.NotNil(t, draft)
	assert.Equal(t, 30, draft.Settings.Minutes, "stale result never overwrites the newer draft")
	assert.Equal(t, geom.Point{Lng: 3, Lat: 3}, draft.Polygon.Points[0])
}

func TestCancelDiscardsInFlight(t *testing.T) {
	client := newGateClient()
	e := New(client, logr.Discard())

	done := make(chan error, 1)
	go func() {
		_, err := e.Compute(context.Background(), settings(10))
		done <- err
	}()
	<-client.started

	e.Cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("canceled request did not resolve")
	}
	assert.Nil(t, e.Draft())
}

func TestClear(t *testing.T) {
	e := New(&stubClient{poly: poly(0)}, logr.Discard())
	_, err := e.Compute(context.Background(), settings(10))
	require.NoError(t, err)
	e.Clear()
	assert.Nil(t, e.Draft())
}
