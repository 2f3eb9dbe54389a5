package live

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const wsIdlePingInterval = 30 * time.Second

// Serve writes the client's queue to conn until the queue closes, a write
// fails, or the peer goes away. It unsubscribes the client before returning.
func Serve(conn *websocket.Conn, c *Client) error {
	defer c.hub.Unsubscribe(c)

	// Drain reads so close frames are processed; stop writing once the peer leaves.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	return writeWithHeartbeat(conn, c.send, gone)
}

func writeWithHeartbeat(conn *websocket.Conn, send <-chan []byte, gone <-chan struct{}) error {
	ticker := time.NewTicker(wsIdlePingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()
	ping, _ := json.Marshal(Message{Type: "ping"})

	for {
		select {
		case <-gone:
			return nil
		case msg, ok := <-send:
			if !ok {
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < wsIdlePingInterval {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, ping); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}
