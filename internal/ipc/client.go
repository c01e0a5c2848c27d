package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Ping confirms the daemon is reachable over the socket.
func (c *Client) Ping() (*PingResponse, error) {
	var resp PingResponse
	if err := c.client.Call("Podforge.Ping", PingRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Podforge.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Generate queues a new episode for the given topics.
func (c *Client) Generate(topics []string, style string) (*GenerateResponse, error) {
	var resp GenerateResponse
	req := GenerateRequest{Topics: topics, Style: style}
	if err := c.client.Call("Podforge.Generate", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EpisodeList returns library entries optionally filtered by statuses.
func (c *Client) EpisodeList(statuses []string, limit int) (*EpisodeListResponse, error) {
	var resp EpisodeListResponse
	req := EpisodeListRequest{Statuses: statuses, Limit: limit}
	if err := c.client.Call("Podforge.EpisodeList", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EpisodeDescribe returns details for a single episode.
func (c *Client) EpisodeDescribe(id int64) (*EpisodeDescribeResponse, error) {
	var resp EpisodeDescribeResponse
	req := EpisodeDescribeRequest{ID: id}
	if err := c.client.Call("Podforge.EpisodeDescribe", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EpisodeRemove deletes an episode record along with its artifact.
func (c *Client) EpisodeRemove(id int64) (*EpisodeRemoveResponse, error) {
	var resp EpisodeRemoveResponse
	req := EpisodeRemoveRequest{ID: id}
	if err := c.client.Call("Podforge.EpisodeRemove", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EpisodeClearFailed removes error-status episodes from the library.
func (c *Client) EpisodeClearFailed() (*EpisodeClearFailedResponse, error) {
	var resp EpisodeClearFailedResponse
	if err := c.client.Call("Podforge.EpisodeClearFailed", EpisodeClearFailedRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TaskList returns recent task records.
func (c *Client) TaskList(limit int) (*TaskListResponse, error) {
	var resp TaskListResponse
	req := TaskListRequest{Limit: limit}
	if err := c.client.Call("Podforge.TaskList", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ScheduleList returns the registered scheduler jobs.
func (c *Client) ScheduleList() (*ScheduleListResponse, error) {
	var resp ScheduleListResponse
	if err := c.client.Call("Podforge.ScheduleList", ScheduleListRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("Podforge.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
