package main

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"itemViewerBack/internal/models"
)

const (
	readLimit     = 4 << 10
	readDeadline  = 120 * time.Second
	writeDeadline = 10 * time.Second
	pingInterval  = 15 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	ReadBufferSize:    1024,
	WriteBufferSize:   1024,
	EnableCompression: true,
}

// ItemFeedHandler streams the published item list: the current state right
// after the upgrade, then one frame per publish until the client leaves.
func (app *application) ItemFeedHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}

	conn.SetReadLimit(readLimit)
	conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readDeadline))
		return nil
	})

	clientID := uuid.NewString()
	updates, unlisten := app.itemStore.Listen()
	app.infoLog.Printf("WS item feed open client=%s", clientID)

	done := make(chan struct{})
	go feedReadLoop(conn, done)
	go app.feedWriteLoop(conn, clientID, updates, unlisten, done)
}

// feedReadLoop only drains control frames; the feed is server → client.
func feedReadLoop(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func (app *application) feedWriteLoop(conn *websocket.Conn, clientID string, updates <-chan models.StoreState, unlisten func(), done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		unlisten()
		_ = conn.Close()
		app.infoLog.Printf("WS item feed closed client=%s", clientID)
	}()

	for {
		select {
		case <-done:
			return
		case state := <-updates:
			_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteJSON(state); err != nil {
				app.errorLog.Printf("WS item feed write to=%s: %v", clientID, err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = writeClose(conn, websocket.CloseGoingAway, "ping error")
				return
			}
		}
	}
}

func writeClose(conn *websocket.Conn, code int, reason string) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	return conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(writeDeadline),
	)
}
