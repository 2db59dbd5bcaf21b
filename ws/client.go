package ws

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"memory-scramble-server/auth"
	"memory-scramble-server/board"
	"memory-scramble-server/render"
	"memory-scramble-server/wsutil"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// Client is a middleman between the websocket connection and the hub. It
// tracks which session (board) the connection has joined and the identity
// it is flipping cards as.
type Client struct {
	Hub           *Hub
	Conn          *websocket.Conn
	Send          chan []byte
	Name          string
	PlayerID      string
	Authenticated bool

	Board   *board.Board
	Session string

	limiter *rate.Limiter
}

// ReadPump pumps messages from the websocket connection to the hub.
// It runs in its own goroutine per connection.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// WritePump pumps messages from the send channel to the websocket connection.
// It runs in its own goroutine per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	var envelope InboundEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.sendError("Invalid message format.")
		return
	}

	// When auth is not configured, allow setName without a token (tests, local dev).
	allowedWithoutAuth := envelope.Type == "auth" || (envelope.Type == "setName" && c.Hub.Config.AuthBaseURL == "")
	if !c.Authenticated && !allowedWithoutAuth {
		c.sendError("Authentication required. Send an auth message first.")
		return
	}

	if envelope.Type == "flip" {
		if !c.limiter.Allow() {
			c.sendError("Too many flips; slow down.")
			return
		}
	}

	switch envelope.Type {
	case "auth":
		c.handleAuth(envelope.Raw)
	case "setName":
		c.handleSetName(envelope.Raw)
	case "join":
		c.handleJoin(envelope.Raw)
	case "look":
		c.handleLook()
	case "flip":
		c.handleFlip(envelope.Raw)
	default:
		c.sendError("Unknown message type: " + envelope.Type)
	}
}

func (c *Client) handleAuth(raw json.RawMessage) {
	if c.Authenticated {
		c.sendError("Already authenticated.")
		return
	}
	var msg AuthMsg
	if err := json.Unmarshal(raw, &msg); err != nil || msg.Token == "" {
		c.sendError("Invalid auth message.")
		return
	}
	baseURL := c.Hub.Config.AuthBaseURL
	if baseURL == "" {
		c.sendError("Server auth not configured.")
		return
	}
	claims, err := auth.ValidatePlayerToken(baseURL, msg.Token)
	if err != nil {
		log.Printf("[auth] token validation failed: %v", err)
		c.sendError("Invalid or expired token.")
		return
	}
	c.PlayerID = auth.PlayerIDFromClaims(claims)
	c.Name = auth.DisplayNameFromClaims(claims)
	c.Authenticated = true
}

func (c *Client) handleSetName(raw json.RawMessage) {
	var msg SetNameMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid setName message.")
		return
	}

	name := strings.TrimSpace(msg.Name)
	if len(name) < 1 || len(name) > c.Hub.Config.MaxNameLength {
		c.sendError("Name must be between 1 and " + strconv.Itoa(c.Hub.Config.MaxNameLength) + " characters.")
		return
	}
	c.Name = name

	// When auth is not configured, assign a locally-unique player id so
	// two connections choosing the same display name don't collide.
	if c.Hub.Config.AuthBaseURL == "" {
		c.PlayerID = name + "-" + uuid.NewString()[:8]
		c.Authenticated = true
	}
}

func (c *Client) handleJoin(raw json.RawMessage) {
	if !c.Authenticated || c.PlayerID == "" {
		c.sendError("Set a name or authenticate before joining a session.")
		return
	}
	var msg JoinMsg
	if err := json.Unmarshal(raw, &msg); err != nil || strings.TrimSpace(msg.Session) == "" {
		c.sendError("Invalid join message.")
		return
	}

	b, _, err := c.Hub.Sessions.GetOrCreate(msg.Session)
	if err != nil {
		c.sendError("Could not join session: " + err.Error())
		return
	}
	if err := b.RegisterPlayer(c.PlayerID, c.Name); err != nil {
		c.sendError("Could not join session: " + err.Error())
		return
	}

	c.Board = b
	c.Session = msg.Session

	joined := JoinedMsg{Type: "joined", Session: msg.Session, Rows: b.NumRows(), Cols: b.NumCols()}
	data, _ := json.Marshal(joined)
	wsutil.SafeSend(c.Send, data)

	c.sendState()
}

func (c *Client) handleLook() {
	if c.Board == nil {
		c.sendError("Join a session before looking at the board.")
		return
	}
	c.sendState()
}

func (c *Client) handleFlip(raw json.RawMessage) {
	if c.Board == nil {
		c.sendError("Join a session before flipping a card.")
		return
	}
	var msg FlipMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid flip message.")
		return
	}

	ctx := context.Background()
	if timeout := c.Hub.Config.FlipWaitTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := c.Board.FlipUp(ctx, c.PlayerID, msg.Row, msg.Col); err != nil {
		c.sendError(err.Error())
		return
	}
	c.sendState()
}

func (c *Client) sendState() {
	snap := c.Board.Snapshot(c.PlayerID)
	msg := StateMsg{Type: "state", Text: render.Render(snap)}
	data, _ := json.Marshal(msg)
	wsutil.SafeSend(c.Send, data)
}

func (c *Client) sendError(message string) {
	msg := ErrorMsg{Type: "error", Message: message}
	data, _ := json.Marshal(msg)
	wsutil.SafeSend(c.Send, data)
}
