package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"orgchat/internal/feed"
	"orgchat/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// IncomingMessage is what a session sends upstream: subscription management
// only. All mutations go through the HTTP API.
type IncomingMessage struct {
	Action         string `json:"action"` // subscribe, unsubscribe
	ConversationID string `json:"conversation_id"`
}

type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan feed.Event

	manager *Manager

	mu    sync.Mutex
	subs  map[string][]*feed.Subscription // conversation id -> active subscriptions
	idx   *feed.Subscription              // global sidebar-index feed
	pumps sync.WaitGroup                  // one per running pump goroutine
}

func newClient(manager *Manager, conn *websocket.Conn, userID string) *Client {
	c := &Client{
		UserID:  userID,
		Conn:    conn,
		Send:    make(chan feed.Event, 64),
		manager: manager,
		subs:    make(map[string][]*feed.Subscription),
	}
	// Every session follows the sidebar feed for its whole lifetime.
	c.idx = manager.feed.Subscribe(feed.TableIndex, "")
	c.pumps.Add(1)
	go c.pump(c.idx)
	return c
}

// subscribeConversation opens the per-conversation message and poll-vote
// feeds when the UI opens a conversation.
func (c *Client) subscribeConversation(conversationID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.subs[conversationID]; ok {
		return
	}
	msgSub := c.manager.feed.Subscribe(feed.TableMessages, conversationID)
	voteSub := c.manager.feed.Subscribe(feed.TablePollVotes, conversationID)
	c.subs[conversationID] = []*feed.Subscription{msgSub, voteSub}
	c.pumps.Add(2)
	go c.pump(msgSub)
	go c.pump(voteSub)
}

// unsubscribeConversation drops the feeds when the UI navigates away.
// In-flight writes complete on the server; this only stops delivery.
func (c *Client) unsubscribeConversation(conversationID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, sub := range c.subs[conversationID] {
		c.manager.feed.Unsubscribe(sub)
	}
	delete(c.subs, conversationID)
}

// pump forwards one subscription into the session's send channel until the
// subscription closes.
func (c *Client) pump(sub *feed.Subscription) {
	defer c.pumps.Done()
	for ev := range sub.C {
		select {
		case c.Send <- ev:
		default:
			logger.Warn("ws send buffer full, dropping event", "user_id", c.UserID)
		}
	}
}

// teardown drops every subscription, then closes Send once the last pump
// has drained. Pumps may still be forwarding buffered events when the
// subscriptions close, so Send must outlive them.
func (c *Client) teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, subs := range c.subs {
		for _, sub := range subs {
			c.manager.feed.Unsubscribe(sub)
		}
	}
	c.subs = map[string][]*feed.Subscription{}
	c.manager.feed.Unsubscribe(c.idx)
	go func() {
		c.pumps.Wait()
		close(c.Send)
	}()
}

func (c *Client) readPump() {
	defer func() {
		c.manager.unregister <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.WithError(err).Debug("ws read error", "user_id", c.UserID)
			}
			return
		}

		var msg IncomingMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		switch msg.Action {
		case "subscribe":
			c.subscribeConversation(msg.ConversationID)
		case "unsubscribe":
			c.unsubscribeConversation(msg.ConversationID)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(ev); err != nil {
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
