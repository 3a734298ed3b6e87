package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

const defaultTimeout = 10 * time.Second

// Client is a synchronous request/reply client. Update pushes are skipped.
type Client struct {
	ws *websocket.Conn
}

// Dial connects to a Server listening on addr (host:port).
func Dial(ctx context.Context, addr string) (*Client, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, "ws://"+addr+Path, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Client{ws: ws}, nil
}

// Do sends req and waits for its reply. Error replies are returned as errors
// along with the reply itself.
func (c *Client) Do(ctx context.Context, req Message) (Message, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(defaultTimeout)
	}
	_ = c.ws.SetWriteDeadline(deadline)
	_ = c.ws.SetReadDeadline(deadline)

	if err := c.ws.WriteJSON(req); err != nil {
		return Message{}, fmt.Errorf("send %s: %w", req.Type, err)
	}
	for {
		var reply Message
		if err := c.ws.ReadJSON(&reply); err != nil {
			return Message{}, fmt.Errorf("read reply to %s: %w", req.Type, err)
		}
		switch reply.Type {
		case TypeUpdate:
			continue
		case TypeError:
			return reply, errors.New(reply.Error)
		default:
			return reply, nil
		}
	}
}

func (c *Client) Close() error {
	_ = c.ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.ws.Close()
}
