package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/jcdickinson/lovvelger/internal/rpc"
)

// Client talks to the daemon over its unix socket.
type Client struct {
	socketPath string
	httpClient *http.Client
}

// StatusError is a non-200 response from the daemon.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("daemon returned %d: %s", e.Code, e.Message)
}

func NewClient(socketPath string) *Client {
	var dialer net.Dialer
	return &Client{
		socketPath: socketPath,
		httpClient: &http.Client{
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
					return dialer.DialContext(ctx, "unix", socketPath)
				},
			},
			Timeout: 5 * time.Minute, // add_laws and search_laws fetch from Lovdata
		},
	}
}

// ConnectOrSpawn tries to connect to the daemon, spawning it if necessary.
func ConnectOrSpawn(socketPath string) (*Client, error) {
	client := NewClient(socketPath)

	if client.IsAvailable() {
		return client, nil
	}

	if err := Spawn(); err != nil {
		return nil, fmt.Errorf("spawning daemon: %w", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		time.Sleep(100 * time.Millisecond)
		if client.IsAvailable() {
			return client, nil
		}
	}

	return nil, fmt.Errorf("daemon did not start within 5 seconds (see `lovvelger logs`)")
}

func (c *Client) IsAvailable() bool {
	conn, err := net.DialTimeout("unix", c.socketPath, 100*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// AddLaws loads laws into the daemon, reporting streamed progress to
// onProgress.
func (c *Client) AddLaws(ctx context.Context, req rpc.AddLawsRequest, onProgress func(string)) (*rpc.AddLawsResponse, error) {
	resp, err := c.send(ctx, http.MethodPost, "/add-laws", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return readProgress(resp.Body, onProgress)
}

func readProgress(r io.Reader, onProgress func(string)) (*rpc.AddLawsResponse, error) {
	result := rpc.AddLawsResponse{Results: []rpc.LawResult{}}
	dec := json.NewDecoder(r)
	for dec.More() {
		var line rpc.ProgressLine
		if err := dec.Decode(&line); err != nil {
			return nil, fmt.Errorf("decoding progress: %w", err)
		}
		if result.Job == "" {
			result.Job = line.Job
		}
		switch line.Type {
		case "progress":
			if onProgress != nil {
				onProgress(line.Message)
			}
		case "result":
			if line.Result != nil {
				result.Results = append(result.Results, *line.Result)
			}
		}
	}
	return &result, nil
}

func (c *Client) Search(ctx context.Context, req rpc.SearchRequest) (*rpc.SearchResponse, error) {
	var resp rpc.SearchResponse
	err := c.do(ctx, http.MethodPost, "/search", req, &resp)
	return &resp, err
}

func (c *Client) Get(ctx context.Context, req rpc.GetRequest) (*rpc.GetResponse, error) {
	var resp rpc.GetResponse
	err := c.do(ctx, http.MethodPost, "/get", req, &resp)
	return &resp, err
}

func (c *Client) Select(ctx context.Context, req rpc.SelectRequest) (*rpc.SelectResponse, error) {
	var resp rpc.SelectResponse
	err := c.do(ctx, http.MethodPost, "/select", req, &resp)
	return &resp, err
}

func (c *Client) Status(ctx context.Context) (*rpc.StatusResponse, error) {
	var resp rpc.StatusResponse
	err := c.do(ctx, http.MethodGet, "/status", nil, &resp)
	return &resp, err
}

func (c *Client) SearchLaws(ctx context.Context, req rpc.SearchLawsRequest) (*rpc.SearchLawsResponse, error) {
	var resp rpc.SearchLawsResponse
	err := c.do(ctx, http.MethodPost, "/search-laws", req, &resp)
	return &resp, err
}

func (c *Client) ClearCache(ctx context.Context, req rpc.ClearCacheRequest) error {
	var resp map[string]string
	return c.do(ctx, http.MethodPost, "/clear-cache", req, &resp)
}

func (c *Client) Shutdown(ctx context.Context) error {
	var resp map[string]string
	return c.do(ctx, http.MethodPost, "/shutdown", nil, &resp)
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// send performs the request and returns the response when the daemon
// answered 200. Any other status is returned as a *StatusError.
func (c *Client) send(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, "http://unix"+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		var payload struct {
			Error string `json:"error"`
		}
		msg := string(bytes.TrimSpace(data))
		if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
			msg = payload.Error
		}
		return nil, &StatusError{Code: resp.StatusCode, Message: msg}
	}
	return resp, nil
}
