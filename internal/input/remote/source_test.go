package remote

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chosenoffset.com/labyrinth/internal/core/motion"
)

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(url, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	b, err := Encode(typ, payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, b))
}

// handshake sends hello and waits for the welcome, which also proves every
// earlier message on conn was processed.
func handshake(t *testing.T, conn *websocket.Conn) Welcome {
	t.Helper()
	send(t, conn, MsgHello, Hello{V: 1})
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	env, err := DecodeEnvelope(msg)
	require.NoError(t, err)
	require.Equal(t, MsgWelcome, env.T)
	w, err := DecodePayload[Welcome](env)
	require.NoError(t, err)
	return w
}

func TestServesControllerPage(t *testing.T) {
	src := New(":0", zap.NewNop())
	s := httptest.NewServer(src.Handler())
	defer s.Close()

	resp, err := http.Get(s.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "devicemotion")
}

func TestHelloGetsWelcome(t *testing.T) {
	src := New(":0", zap.NewNop())
	s := httptest.NewServer(src.Handler())
	defer s.Close()

	w := handshake(t, dial(t, s.URL))
	_, err := uuid.Parse(w.ClientID)
	assert.NoError(t, err)
	assert.Equal(t, 60, w.RateHz)
}

func TestGravityIsDelivered(t *testing.T) {
	src := New(":0", zap.NewNop())
	s := httptest.NewServer(src.Handler())
	defer s.Close()

	samples := make(chan motion.Sample, 64)
	var delivered atomic.Int64
	require.NoError(t, src.Start(5*time.Millisecond, func(sm motion.Sample) {
		delivered.Add(1)
		select {
		case samples <- sm:
		default:
		}
	}))
	assert.Equal(t, 200, handshake(t, dial(t, s.URL)).RateHz, "rate follows the sampling interval")

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, delivered.Load(), "nothing is delivered before a reading arrives")

	conn := dial(t, s.URL)
	send(t, conn, MsgGravity, Gravity{GX: 0.3, GY: -0.2})

	select {
	case sm := <-samples:
		assert.Equal(t, motion.Sample{GravityX: 0.3, GravityY: -0.2}, sm)
	case <-time.After(2 * time.Second):
		t.Fatal("no sample delivered")
	}

	src.Stop()
	after := delivered.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, delivered.Load(), "no delivery after Stop")
}

func TestNewestClientDrives(t *testing.T) {
	src := New(":0", zap.NewNop())
	s := httptest.NewServer(src.Handler())
	defer s.Close()

	first := dial(t, s.URL)
	handshake(t, first)
	second := dial(t, s.URL)
	handshake(t, second)
	require.Equal(t, 2, src.Clients())

	send(t, first, MsgGravity, Gravity{GX: 1})
	handshake(t, first)
	_, ok := src.Latest()
	assert.False(t, ok, "an older client is ignored")

	send(t, second, MsgGravity, Gravity{GX: 0.5, GY: 0.5})
	handshake(t, second)
	got, ok := src.Latest()
	require.True(t, ok)
	assert.Equal(t, motion.Sample{GravityX: 0.5, GravityY: 0.5}, got)

	second.Close()
	assert.Eventually(t, func() bool {
		_, ok := src.Latest()
		return !ok && src.Clients() == 1
	}, 2*time.Second, 5*time.Millisecond, "a departed client's reading is dropped")
}

func TestMalformedMessagesAreIgnored(t *testing.T) {
	src := New(":0", zap.NewNop())
	s := httptest.NewServer(src.Handler())
	defer s.Close()

	conn := dial(t, s.URL)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	send(t, conn, "shake", Gravity{})
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"t":"gravity","p":{"gx":"x"}}`)))

	handshake(t, conn)
	_, ok := src.Latest()
	assert.False(t, ok)
}

func TestServeLifecycle(t *testing.T) {
	src := New("127.0.0.1:0", zap.NewNop())
	assert.False(t, src.Available())
	assert.ErrorIs(t, src.Serve(context.Background()), ErrNotListening)

	require.NoError(t, src.Listen())
	assert.True(t, src.Available())

	ctx, cancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() { served <- src.Serve(ctx) }()

	conn := dial(t, "http://"+src.Addr())
	handshake(t, conn)

	cancel()
	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	assert.False(t, src.Available())

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "clients are disconnected on shutdown")
}

func TestStartRejectsBadArguments(t *testing.T) {
	src := New(":0", nil)
	assert.Error(t, src.Start(time.Millisecond, nil))
	assert.Error(t, src.Start(0, func(motion.Sample) {}))

	require.NoError(t, src.Start(time.Millisecond, func(motion.Sample) {}))
	assert.Error(t, src.Start(time.Millisecond, func(motion.Sample) {}))
	src.Stop()
	src.Stop()
	require.NoError(t, src.Start(time.Millisecond, func(motion.Sample) {}), "restart after Stop")
	src.Stop()
}
