package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(hub, []string{"*"}, zerolog.Nop())
	r.GET("/ws", func(c *gin.Context) {
		id, _ := strconv.ParseInt(c.Query("uid"), 10, 64)
		c.Set("userID", id)
		c.Set("roleType", c.Query("role"))
		c.Next()
	}, handler.HandleConnection)
	return httptest.NewServer(r)
}

func dial(t *testing.T, srv *httptest.Server, uid int, role string) *gorilla.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?uid=" + strconv.Itoa(uid) + "&role=" + role
	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.GetClientsCount("") == n }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_BroadcastByRole(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub(zerolog.Nop())
	go hub.Run(ctx)

	srv := newTestServer(t, hub)
	defer srv.Close()

	parent := dial(t, srv, 1, "PARENT")
	defer parent.Close()
	teacher := dial(t, srv, 2, "TEACHER")
	defer teacher.Close()
	waitForClients(t, hub, 2)

	require.NoError(t, hub.Broadcast(Event{Type: "notice.published", Payload: map[string]string{"title": "PTA meeting"}}, "PARENT"))

	_ = parent.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := parent.ReadMessage()
	require.NoError(t, err)

	var ev Event
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, "notice.published", ev.Type)
	assert.False(t, ev.Timestamp.IsZero())

	_ = teacher.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	_, _, err = teacher.ReadMessage()
	assert.Error(t, err, "teacher must not receive a parent-only notice")
}

func TestHub_BroadcastToAllAndUnregister(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub(zerolog.Nop())
	go hub.Run(ctx)

	srv := newTestServer(t, hub)
	defer srv.Close()

	a := dial(t, srv, 1, "STAFF")
	b := dial(t, srv, 2, "STUDENT")
	defer b.Close()
	waitForClients(t, hub, 2)
	assert.Equal(t, 1, hub.GetClientsCount("STAFF"))

	require.NoError(t, hub.Broadcast(Event{Type: "notice.published"}))
	for _, c := range []*gorilla.Conn{a, b} {
		_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, _, err := c.ReadMessage()
		require.NoError(t, err)
	}

	require.NoError(t, a.Close())
	waitForClients(t, hub, 1)
}

func TestHandler_RequiresIdentity(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	srv := newTestServer(t, hub)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHub_StopReleasesClientsAndLateJoins(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zerolog.Nop())
	go hub.Run(ctx)

	srv := newTestServer(t, hub)
	defer srv.Close()

	conn := dial(t, srv, 1, "PARENT")
	defer conn.Close()
	waitForClients(t, hub, 1)

	cancel()
	select {
	case <-hub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
	assert.Equal(t, 0, hub.GetClientsCount(""))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	var closeErr *gorilla.CloseError
	assert.ErrorAs(t, err, &closeErr, "connected client is closed on shutdown")

	joined := make(chan bool, 1)
	left := make(chan struct{})
	go func() {
		late := &Client{hub: hub, send: make(chan []byte, 1)}
		joined <- hub.join(late)
		hub.leave(late)
		close(left)
	}()
	select {
	case ok := <-joined:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("join blocked on a stopped hub")
	}
	select {
	case <-left:
	case <-time.After(time.Second):
		t.Fatal("leave blocked on a stopped hub")
	}

	late := dial(t, srv, 2, "STAFF")
	defer late.Close()
	_ = late.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = late.ReadMessage()
	assert.True(t, gorilla.IsCloseError(err, gorilla.CloseGoingAway), "late connection is refused: %v", err)
}
