package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// statusCSRFExpired is the Laravel/Sanctum "page expired" status returned
// when the CSRF token no longer matches the server-side session.
const statusCSRFExpired = 419

// CredentialSource supplies per-request upstream credentials. The gateway
// session implements it; mutating calls write refreshed CSRF tokens back
// through SetCSRFToken.
type CredentialSource interface {
	BearerToken() string
	CSRFToken() string
	SetCSRFToken(token string)
}

type credentialsKey struct{}

// WithCredentials attaches a credential source to the request context so
// repositories can stay (ctx, args) shaped.
func WithCredentials(ctx context.Context, cs CredentialSource) context.Context {
	return context.WithValue(ctx, credentialsKey{}, cs)
}

// CredentialsFromContext returns the attached credential source, or nil for
// unauthenticated calls such as login.
func CredentialsFromContext(ctx context.Context) CredentialSource {
	cs, _ := ctx.Value(credentialsKey{}).(CredentialSource)
	return cs
}

// Client talks to the accommodation backend API. It owns bearer/CSRF header
// wiring and the single-retry recovery for expired CSRF tokens: a mutating
// call that comes back 419 refreshes the token once via the csrf-cookie
// endpoint and replays; a second 419 surfaces as KindSessionExpired.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "backend").Logger(),
	}
}

// BaseURL returns the configured upstream base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

func (c *Client) Post(ctx context.Context, path string, in, out interface{}) error {
	return c.send(ctx, http.MethodPost, path, in, out)
}

func (c *Client) Put(ctx context.Context, path string, in, out interface{}) error {
	return c.send(ctx, http.MethodPut, path, in, out)
}

func (c *Client) Patch(ctx context.Context, path string, in, out interface{}) error {
	return c.send(ctx, http.MethodPatch, path, in, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", nil)
}

func (c *Client) send(ctx context.Context, method, path string, in, out interface{}) error {
	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}
	return c.do(ctx, method, path, body, "application/json", out)
}

// PostMultipart uploads a file alongside form fields, used for photo uploads
// that pass straight through to the backend.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, fileField, fileName string, file []byte, out interface{}) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("write form field %s: %w", k, err)
		}
	}
	fw, err := w.CreateFormFile(fileField, fileName)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := fw.Write(file); err != nil {
		return fmt.Errorf("write form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, buf.Bytes(), w.FormDataContentType(), out)
}

// RefreshCSRF primes or renews the CSRF token by hitting the Sanctum cookie
// endpoint and writing the decoded XSRF-TOKEN cookie back into the session.
func (c *Client) RefreshCSRF(ctx context.Context) error {
	creds := CredentialsFromContext(ctx)
	if creds == nil {
		return &Error{Kind: KindUnauthorized, Status: http.StatusUnauthorized, Message: "no session"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/sanctum/csrf-cookie", nil)
	if err != nil {
		return fmt.Errorf("build csrf request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token := creds.BearerToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindConnectivity, Message: err.Error()}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	for _, cookie := range resp.Cookies() {
		if cookie.Name == "XSRF-TOKEN" {
			token, err := url.QueryUnescape(cookie.Value)
			if err != nil {
				token = cookie.Value
			}
			creds.SetCSRFToken(token)
			c.logger.Debug().Msg("refreshed csrf token")
			return nil
		}
	}
	return &Error{Kind: KindServer, Status: resp.StatusCode, Message: "csrf cookie missing from response"}
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType string, out interface{}) error {
	creds := CredentialsFromContext(ctx)

	resp, respBody, err := c.roundTrip(ctx, method, path, body, contentType, creds)
	if err != nil {
		return err
	}

	// Expired CSRF token: refresh once and replay the exact same request.
	if resp.StatusCode == statusCSRFExpired {
		c.logger.Warn().Str("method", method).Str("path", path).Msg("csrf token rejected, refreshing")
		if err := c.RefreshCSRF(ctx); err != nil {
			return err
		}
		resp, respBody, err = c.roundTrip(ctx, method, path, body, contentType, creds)
		if err != nil {
			return err
		}
		if resp.StatusCode == statusCSRFExpired {
			return classify(resp.StatusCode, respBody, true)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		berr := classify(resp.StatusCode, respBody, false)
		c.logger.Debug().Str("method", method).Str("path", path).Int("status", resp.StatusCode).Msg(berr.Message)
		return berr
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response from %s %s: %w", method, path, err)
		}
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body []byte, contentType string, creds CredentialSource) (*http.Response, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if creds != nil {
		if token := creds.BearerToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		if method != http.MethodGet {
			if csrf := creds.CSRFToken(); csrf != "" {
				req.Header.Set("X-XSRF-TOKEN", csrf)
				req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: url.QueryEscape(csrf)})
			}
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, &Error{Kind: KindConnectivity, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &Error{Kind: KindConnectivity, Message: err.Error()}
	}
	return resp, respBody, nil
}
