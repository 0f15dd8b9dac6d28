package game

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jacl-coder/InkBrawl-Server/internal/models"
	"github.com/jacl-coder/InkBrawl-Server/internal/protocol"
)

type fakeConn struct {
	mu     sync.Mutex
	kinds  []string
	fail   bool
	closed bool
}

func (c *fakeConn) Send(kind string, _ any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("broken pipe")
	}
	c.kinds = append(c.kinds, kind)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) received(kind string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, k := range c.kinds {
		if k == kind {
			n++
		}
	}
	return n
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// eventually 轮询直到条件成立
func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func startRoom(t *testing.T) *Room {
	t.Helper()
	r := NewRoom("ROOM01", models.DefaultRoomOptions(), nil)
	r.Start()
	t.Cleanup(r.Stop)
	return r
}

func TestRoomJoinSendsWelcomeAndState(t *testing.T) {
	r := startRoom(t)
	c1 := &fakeConn{}

	if err := r.Join("p1", "alice", c1); err != nil {
		t.Fatalf("join: %v", err)
	}
	if c1.received(protocol.KindWelcome) != 1 || c1.received(protocol.KindState) == 0 {
		t.Fatalf("kinds = %v", c1.kinds)
	}
	if info := r.Info(); info.Players != 1 || info.Phase != models.PhaseLobby {
		t.Fatalf("info = %+v", info)
	}

	if err := r.Join("p1", "alice", &fakeConn{}); !errors.Is(err, ErrAlreadyJoined) {
		t.Fatalf("duplicate join err = %v", err)
	}
	if err := r.Join("p2", "bob", &fakeConn{}); err != nil {
		t.Fatalf("join p2: %v", err)
	}
	c3 := &fakeConn{}
	if err := r.Join("p3", "carol", c3); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("third join err = %v", err)
	}
	if c3.received(protocol.KindWelcome) != 0 {
		t.Fatal("rejected participant got a welcome")
	}
}

func TestRoomCommandsReachSession(t *testing.T) {
	r := startRoom(t)
	if err := r.Join("p1", "alice", &fakeConn{}); err != nil {
		t.Fatal(err)
	}
	if err := r.Join("p2", "bob", &fakeConn{}); err != nil {
		t.Fatal(err)
	}

	r.Command("p1", protocol.CmdReady, nil)
	r.Command("p2", protocol.CmdReady, nil)
	eventually(t, "drawing phase", func() bool {
		return r.Info().Phase == models.PhaseDrawing
	})
}

func TestRoomFailedSendDisconnects(t *testing.T) {
	r := startRoom(t)
	good := &fakeConn{}
	if err := r.Join("p1", "alice", good); err != nil {
		t.Fatal(err)
	}
	bad := &fakeConn{fail: true}
	if err := r.Join("p2", "bob", bad); err != nil {
		t.Fatal(err)
	}

	eventually(t, "broken conn removed", func() bool {
		return bad.isClosed() && r.Info().Players == 1
	})
	if good.isClosed() {
		t.Fatal("healthy conn was closed")
	}
}

func TestRoomLeave(t *testing.T) {
	r := startRoom(t)
	c := &fakeConn{}
	if err := r.Join("p1", "alice", c); err != nil {
		t.Fatal(err)
	}
	r.Leave("p1")
	eventually(t, "room empty", func() bool { return r.IsEmpty() && c.isClosed() })

	if !r.ShouldCleanup(0) {
		t.Fatal("empty idle room should be cleaned up")
	}
	if r.ShouldCleanup(time.Hour) {
		t.Fatal("recently active room should be kept")
	}
}

func TestRoomStopClosesConnections(t *testing.T) {
	r := NewRoom("ROOM02", models.DefaultRoomOptions(), nil)
	r.Start()
	c := &fakeConn{}
	if err := r.Join("p1", "alice", c); err != nil {
		t.Fatal(err)
	}

	r.Stop()
	r.Stop()
	if !c.isClosed() {
		t.Fatal("conn not closed on stop")
	}
	if err := r.Join("p2", "bob", &fakeConn{}); !errors.Is(err, ErrRoomClosed) {
		t.Fatalf("join after stop err = %v", err)
	}
}
