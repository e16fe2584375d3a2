// Package compress is the client for the external PDF compression service.
// The service is task oriented: authenticate, start a task, upload the file,
// process it at a compression level, then download the result.
package compress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrInvalidCredentials maps a 401 from the service.
	ErrInvalidCredentials = errors.New("compression service rejected the configured credentials")
	// ErrSubscription maps a 403 from the service.
	ErrSubscription = errors.New("compression service subscription does not allow this operation")
	// ErrCorruptFile maps a 400 from the service.
	ErrCorruptFile = errors.New("compression service could not process the file (corrupt file or malformed request)")
	// ErrFileTooLarge maps a 413 from the service.
	ErrFileTooLarge = errors.New("file exceeds the compression service size limit")
	// ErrService covers transport failures and unclassified status codes.
	ErrService = errors.New("compression service request failed")
	// ErrConfigInvalid marks missing client configuration.
	ErrConfigInvalid = errors.New("compression service config invalid")
)

// Compression levels accepted by the service.
const (
	LevelLow         = "low"
	LevelRecommended = "recommended"
	LevelExtreme     = "extreme"
)

const (
	defaultTimeout = 30 * time.Second

	// One extra attempt for transient server-side failures. Client-side
	// (4xx) failures are terminal on first occurrence.
	transientRetries = 1
	retryBackoff     = 500 * time.Millisecond
)

// Config holds the service endpoint and credentials.
type Config struct {
	BaseURL   string
	PublicKey string
	Level     string
	Timeout   time.Duration
}

// Client is a compression service client with an explicit request timeout.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Result is a compressed document.
type Result struct {
	Data           []byte
	OriginalSize   int64
	CompressedSize int64
}

// NewClient creates a client. The timeout applies per HTTP call.
func NewClient(cfg Config) *Client {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.PublicKey = strings.TrimSpace(cfg.PublicKey)
	if cfg.Level == "" {
		cfg.Level = LevelRecommended
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) validate() error {
	if c == nil {
		return fmt.Errorf("%w: client is nil", ErrConfigInvalid)
	}
	if c.cfg.BaseURL == "" {
		return fmt.Errorf("%w: base_url is required", ErrConfigInvalid)
	}
	if c.cfg.PublicKey == "" {
		return fmt.Errorf("%w: public_key is required", ErrConfigInvalid)
	}
	return nil
}

// SelfTest verifies the configured credentials with an auth round-trip and
// makes no other calls.
func (c *Client) SelfTest(ctx context.Context) error {
	if err := c.validate(); err != nil {
		return err
	}
	_, err := c.auth(ctx)
	return err
}

// Compress runs the full task sequence and returns the compressed bytes.
func (c *Client) Compress(ctx context.Context, filename string, data []byte) (*Result, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrCorruptFile)
	}

	token, err := c.auth(ctx)
	if err != nil {
		return nil, err
	}

	server, task, err := c.startTask(ctx, token)
	if err != nil {
		return nil, err
	}

	serverFilename, err := c.addFile(ctx, server, token, task, filename, data)
	if err != nil {
		return nil, err
	}

	if err := c.process(ctx, server, token, task, serverFilename, filename); err != nil {
		return nil, err
	}

	compressed, err := c.download(ctx, server, token, task)
	if err != nil {
		return nil, err
	}

	return &Result{
		Data:           compressed,
		OriginalSize:   int64(len(data)),
		CompressedSize: int64(len(compressed)),
	}, nil
}

func (c *Client) auth(ctx context.Context) (string, error) {
	body, _ := json.Marshal(map[string]string{"public_key": c.cfg.PublicKey})
	respBytes, err := c.doJSON(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/auth", "", bytes.NewReader(body), "application/json")
	if err != nil {
		return "", err
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return "", fmt.Errorf("%w: invalid auth response: %v", ErrService, err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: auth response missing token", ErrService)
	}
	return resp.Token, nil
}

func (c *Client) startTask(ctx context.Context, token string) (string, string, error) {
	respBytes, err := c.doJSON(ctx, http.MethodGet, c.cfg.BaseURL+"/v1/start/compress", token, nil, "")
	if err != nil {
		return "", "", err
	}
	var resp struct {
		Server string `json:"server"`
		Task   string `json:"task"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return "", "", fmt.Errorf("%w: invalid start response: %v", ErrService, err)
	}
	if resp.Task == "" {
		return "", "", fmt.Errorf("%w: start response missing task", ErrService)
	}
	return c.serverBase(resp.Server), resp.Task, nil
}

// serverBase resolves the worker server assigned by the start call. The
// service returns a bare hostname; absolute URLs are passed through.
func (c *Client) serverBase(server string) string {
	server = strings.TrimRight(strings.TrimSpace(server), "/")
	if server == "" {
		return c.cfg.BaseURL
	}
	if strings.Contains(server, "://") {
		return server
	}
	return "https://" + server
}

func (c *Client) addFile(ctx context.Context, server, token, task, filename string, data []byte) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("task", task); err != nil {
		return "", fmt.Errorf("%w: %v", ErrService, err)
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrService, err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrService, err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrService, err)
	}

	respBytes, err := c.doJSON(ctx, http.MethodPost, server+"/v1/upload", token, bytes.NewReader(buf.Bytes()), writer.FormDataContentType())
	if err != nil {
		return "", err
	}
	var resp struct {
		ServerFilename string `json:"server_filename"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return "", fmt.Errorf("%w: invalid upload response: %v", ErrService, err)
	}
	if resp.ServerFilename == "" {
		return "", fmt.Errorf("%w: upload response missing server filename", ErrService)
	}
	return resp.ServerFilename, nil
}

func (c *Client) process(ctx context.Context, server, token, task, serverFilename, filename string) error {
	payload := map[string]interface{}{
		"task":              task,
		"tool":              "compress",
		"compression_level": c.cfg.Level,
		"files": []map[string]string{
			{"server_filename": serverFilename, "filename": filename},
		},
	}
	body, _ := json.Marshal(payload)
	_, err := c.doJSON(ctx, http.MethodPost, server+"/v1/process", token, bytes.NewReader(body), "application/json")
	return err
}

func (c *Client) download(ctx context.Context, server, token, task string) ([]byte, error) {
	return c.doJSON(ctx, http.MethodGet, server+"/v1/download/"+task, token, nil, "")
}

// doJSON issues one HTTP call, with a single bounded retry for transient
// server-side (5xx) failures.
func (c *Client) doJSON(ctx context.Context, method, endpoint, token string, body io.Reader, contentType string) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrService, err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= transientRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrService, ctx.Err())
			case <-time.After(time.Duration(attempt) * retryBackoff):
			}
		}

		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrService, err)
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		req.Header.Set("Accept", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", ErrService, err)
			continue
		}

		respBytes, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("%w: %v", ErrService, readErr)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return respBytes, nil
		}
		statusErr := classifyStatus(resp.StatusCode)
		if resp.StatusCode >= 500 {
			lastErr = statusErr
			continue
		}
		return nil, statusErr
	}
	return nil, lastErr
}

// classifyStatus maps a service status code to a specific error so the
// failure reason persisted on the document row is actionable.
func classifyStatus(status int) error {
	switch status {
	case http.StatusUnauthorized:
		return ErrInvalidCredentials
	case http.StatusForbidden:
		return ErrSubscription
	case http.StatusBadRequest:
		return ErrCorruptFile
	case http.StatusRequestEntityTooLarge:
		return ErrFileTooLarge
	default:
		return fmt.Errorf("%w: unexpected status %d", ErrService, status)
	}
}
