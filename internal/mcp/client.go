package mcp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/arian-lol/msg-mirror/internal/biz/domain"
)

// Client is the HTTP client for the mirror admin API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Status mirrors the relay status served by /api/status
type Status struct {
	Running          bool `json:"running"`
	ConsumerAttached bool `json:"consumer_attached"`
	Pending          int  `json:"pending"`
	SmsObserver      bool `json:"sms_observer"`
}

// ============ Logs ============

// GetLogs returns the primary log file contents
func (c *Client) GetLogs() (string, error) {
	var result struct {
		Content string `json:"content"`
	}
	if err := c.get("/api/logs", &result); err != nil {
		return "", err
	}
	return result.Content, nil
}

// AppendLog appends one line to the log
func (c *Client) AppendLog(line string) error {
	return c.post("/api/logs", map[string]string{"line": line}, nil)
}

// ClearLogs empties the primary log file
func (c *Client) ClearLogs() error {
	return c.delete("/api/logs")
}

// ============ Preferences ============

// ListPrefs returns every known preference with its effective value
func (c *Client) ListPrefs() (map[string]interface{}, error) {
	var result struct {
		Prefs map[string]interface{} `json:"prefs"`
	}
	if err := c.get("/api/prefs", &result); err != nil {
		return nil, err
	}
	return result.Prefs, nil
}

// GetPref returns one preference value
func (c *Client) GetPref(key string) (interface{}, error) {
	var result struct {
		Value interface{} `json:"value"`
	}
	if err := c.get("/api/prefs/"+url.PathEscape(key), &result); err != nil {
		return nil, err
	}
	return result.Value, nil
}

// SetPref stores one preference value
func (c *Client) SetPref(key string, value interface{}) error {
	return c.put("/api/prefs/"+url.PathEscape(key), map[string]interface{}{"value": value})
}

// ============ Relay ============

// GetStatus returns the relay status
func (c *Client) GetStatus() (*Status, error) {
	var status Status
	if err := c.get("/api/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// PostNotification hands a raw notification to the capture listener.
// Returns whether it was routed.
func (c *Client) PostNotification(raw *domain.RawNotification) (bool, error) {
	var result struct {
		Routed bool `json:"routed"`
	}
	if err := c.post("/api/notifications", raw, &result); err != nil {
		return false, err
	}
	return result.Routed, nil
}

// PostSms inserts an inbound SMS into the inbox
func (c *Client) PostSms(msg *domain.SmsMessage) error {
	return c.post("/api/sms", msg, nil)
}

// ============ HTTP Helpers ============

func (c *Client) get(path string, result interface{}) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("HTTP GET failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, result)
}

func (c *Client) post(path string, body interface{}, result interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal body: %w", err)
	}

	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("HTTP POST failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, result)
}

func (c *Client) put(path string, body interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal body: %w", err)
	}

	req, err := http.NewRequest(http.MethodPut, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP PUT failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, nil)
}

func (c *Client) delete(path string) error {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP DELETE failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, nil)
}

// decodeResponse accepts any 2xx status
func decodeResponse(resp *http.Response, result interface{}) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
