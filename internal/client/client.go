package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	kerrors "github.com/asap-static/asap/internal/errors"
	logger "github.com/asap-static/asap/internal/logging"
)

const (
	// UploadPath is the upload endpoint, relative to the base URL.
	UploadPath = "/asap/upload_site"

	// DestroyPath is the destroy endpoint, relative to the base URL.
	DestroyPath = "/asap/destroy_site"

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 1 << 20
)

// Options configures a Client.
type Options struct {
	// BaseURL is the scheme and host of the hosting API, without a trailing slash.
	BaseURL string

	// Timeout bounds each HTTP attempt. Zero means no timeout.
	Timeout time.Duration

	// RetryMax is the number of retries after a connection failure.
	RetryMax int

	// RetryWait is the minimum backoff between retries. Zero keeps the library default.
	RetryWait time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	Logger logger.Logger
}

// Client performs upload and destroy requests.
type Client struct {
	baseURL   string
	userAgent string
	http      *retryablehttp.Client
	log       logger.Logger
}

// UploadResult is the successful outcome of an upload.
type UploadResult struct {
	// Message is the server's human-readable response.
	Message string

	// Secret is the ownership secret issued for the tag, if any.
	Secret string
}

// response is the union of every body the hosting API returns.
type response struct {
	Message    string `json:"message"`
	Error      string `json:"error"`
	SiteSecret string `json:"site_secret"`
}

// New returns a Client for the given options.
func New(opts Options) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.RetryMax
	if opts.RetryWait > 0 {
		rc.RetryWaitMin = opts.RetryWait
		rc.RetryWaitMax = 4 * opts.RetryWait
	}
	rc.HTTPClient.Timeout = opts.Timeout
	rc.Logger = leveledLogger{opts.Logger}
	rc.CheckRetry = retryConnectionErrors
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "asap"
	}

	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: userAgent,
		http:      rc,
		log:       opts.Logger,
	}
}

// Upload sends the archive at archivePath for tag.
//
// On a server error the returned error is a *RemoteError; its Secret field
// holds any secret the server issued before rejecting the upload. On a
// failed connection the error is a *TransportError.
func (c *Client) Upload(ctx context.Context, archivePath, tag string) (*UploadResult, error) {
	body, contentType, err := multipartBody(archivePath, tag)
	if err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+UploadPath, body)
	if err != nil {
		return nil, fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	c.log.Debugf("Uploading %d bytes for tag %s to %s", len(body), tag, req.URL)
	payload, err := c.do(req, "upload")
	if err != nil {
		return nil, err
	}

	return &UploadResult{Message: payload.Message, Secret: payload.SiteSecret}, nil
}

// Destroy asks the server to delete the site for tag, proving ownership
// with secret. It returns the server's message.
func (c *Client) Destroy(ctx context.Context, tag, secret string) (string, error) {
	body, err := json.Marshal(map[string]string{"tag": tag})
	if err != nil {
		return "", fmt.Errorf("encoding destroy request: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+DestroyPath, body)
	if err != nil {
		return "", fmt.Errorf("building destroy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", secret)

	c.log.Debugf("Destroying tag %s at %s", tag, req.URL)
	payload, err := c.do(req, "destroy")
	if err != nil {
		return "", err
	}

	return payload.Message, nil
}

// do sends req and decodes the response, translating failures.
func (c *Client) do(req *retryablehttp.Request, op string) (*response, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		return nil, &kerrors.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &kerrors.TransportError{Op: op, Err: err}
	}
	c.log.Debugf("%s responded %d: %s", op, resp.StatusCode, strings.TrimSpace(string(raw)))

	payload := &response{}
	decodeErr := json.Unmarshal(raw, payload)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := payload.Error
		if message == "" {
			message = fmt.Sprintf("request failed with status code %d", resp.StatusCode)
		}
		return nil, &kerrors.RemoteError{
			Status:  resp.StatusCode,
			Message: message,
			Secret:  payload.SiteSecret,
		}
	}

	if decodeErr != nil {
		// Plain-text success bodies are shown as they are.
		payload.Message = strings.TrimSpace(string(raw))
	}

	return payload, nil
}

// multipartBody builds the upload form with the archive and tag fields.
func multipartBody(archivePath, tag string) ([]byte, string, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		return nil, "", fmt.Errorf("opening archive: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("zip", filepath.Base(archivePath))
	if err != nil {
		return nil, "", fmt.Errorf("creating zip field: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("reading archive: %w", err)
	}
	if err := mw.WriteField("tag", tag); err != nil {
		return nil, "", fmt.Errorf("writing tag field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("closing multipart body: %w", err)
	}

	return buf.Bytes(), mw.FormDataContentType(), nil
}

// retryConnectionErrors retries only when no response was received.
func retryConnectionErrors(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// leveledLogger routes retryablehttp's logging through the CLI logger.
type leveledLogger struct {
	log logger.Logger
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Debugf("http: %s %v", msg, keysAndValues)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugf("http: %s %v", msg, keysAndValues)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.Debugf("http: %s %v", msg, keysAndValues)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Infof("http: %s %v", msg, keysAndValues)
}
