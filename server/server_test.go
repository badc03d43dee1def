package server

import (
	"sync"
	"testing"
)

// the reader goroutine and register both flip the flag while the message
// handler polls it; this keeps the race detector on that path.
func TestWebSocketClosedFlag(t *testing.T) {
	ws := &WebSocket{id: "cb-1", tenant: "t1"}
	if ws.IsClosed() {
		t.Fatalf("fresh socket must not be closed")
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		ws.closed.Store(true)
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			ws.IsClosed()
		}
	}()
	wg.Wait()

	if !ws.IsClosed() {
		t.Fatalf("socket must report closed after the flag is set")
	}
}
