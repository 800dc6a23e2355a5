// Package client is a typed client for the flyer API together with the
// session, routing and dashboard logic of the front end.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client talks to the flyer API on behalf of a session.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *Session
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for the server at baseURL, e.g. http://localhost:8080.
func New(baseURL string, session *Session, opts ...Option) *Client {
	if session == nil {
		session = NewSession(nil)
	}
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		session:    session,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the session the client authenticates with.
func (c *Client) Session() *Session {
	return c.session
}

// ImageURL returns the absolute public URL of a flyer image.
func (c *Client) ImageURL(f Flyer) string {
	return c.baseURL + "/" + strings.TrimPrefix(f.ImagePath, "/")
}

// Login authenticates and stores the identity in the session.
func (c *Client) Login(ctx context.Context, email, password string) (*Identity, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	var resp loginResponse
	if err := c.send(ctx, http.MethodPost, "/api/auth/login", bytes.NewReader(body), "application/json", false, &resp); err != nil {
		return nil, err
	}
	state := State{Identity: resp.Identity, AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}
	if err := c.session.Set(state); err != nil {
		return nil, err
	}
	return &state.Identity, nil
}

// Logout revokes the tokens and clears the session. The session is cleared
// even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	state, ok := c.session.Current()
	if !ok {
		return nil
	}
	var callErr error
	if state.RefreshToken != "" {
		body, _ := json.Marshal(map[string]string{"refreshToken": state.RefreshToken})
		callErr = c.send(ctx, http.MethodPost, "/api/auth/logout", bytes.NewReader(body), "application/json", true, nil)
	}
	if err := c.session.Clear(); err != nil {
		return err
	}
	return callErr
}

// Me returns the identity the server associates with the session token.
func (c *Client) Me(ctx context.Context) (*Identity, error) {
	var id Identity
	if err := c.get(ctx, "/api/auth/me", &id); err != nil {
		return nil, err
	}
	return &id, nil
}

// Companies lists all companies.
func (c *Client) Companies(ctx context.Context) ([]Company, error) {
	var companies []Company
	if err := c.get(ctx, "/api/flyer/companies", &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

// Flyers lists a company's flyers newest first, optionally for one month.
func (c *Client) Flyers(ctx context.Context, companyID uint, month *Month) ([]Flyer, error) {
	p := "/api/flyer/company/" + strconv.FormatUint(uint64(companyID), 10)
	if month != nil {
		q := url.Values{}
		q.Set("year", strconv.Itoa(month.Year))
		q.Set("month", strconv.Itoa(int(month.Month)))
		p += "?" + q.Encode()
	}
	var flyers []Flyer
	if err := c.get(ctx, p, &flyers); err != nil {
		return nil, err
	}
	return flyers, nil
}

// Upload sends an image as a new flyer for a company.
func (c *Client) Upload(ctx context.Context, title string, companyID uint, filename string, content io.Reader) (*Flyer, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("title", title); err != nil {
		return nil, err
	}
	if err := w.WriteField("companyId", strconv.FormatUint(uint64(companyID), 10)); err != nil {
		return nil, err
	}
	part, err := w.CreateFormFile("file", path.Base(filename))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	var flyer Flyer
	if err := c.send(ctx, http.MethodPost, "/api/flyer/upload", bytes.NewReader(buf.Bytes()), w.FormDataContentType(), true, &flyer); err != nil {
		return nil, err
	}
	return &flyer, nil
}

// Download fetches a flyer's image.
func (c *Client) Download(ctx context.Context, id uint) (*File, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/flyer/download/"+strconv.FormatUint(uint64(id), 10), nil, "", true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read download: %w", err)
	}
	file := &File{ContentType: resp.Header.Get("Content-Type"), Data: data}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		file.Name = params["filename"]
	}
	return file, nil
}

// Delete removes a flyer.
func (c *Client) Delete(ctx context.Context, id uint) error {
	return c.send(ctx, http.MethodDelete, "/api/flyer/"+strconv.FormatUint(uint64(id), 10), nil, "", true, nil)
}

func (c *Client) get(ctx context.Context, p string, out interface{}) error {
	return c.send(ctx, http.MethodGet, p, nil, "", true, out)
}

// send performs a request and decodes a JSON answer into out when non-nil.
func (c *Client) send(ctx context.Context, method, p string, body *bytes.Reader, contentType string, authed bool, out interface{}) error {
	var r io.Reader
	if body != nil {
		r = body
	}
	resp, err := c.do(ctx, method, p, r, contentType, authed)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, p, err)
	}
	return nil
}

// do sends the request with the session's bearer token. On a 401 it
// refreshes the access token once and retries. Non-2xx answers become
// *APIError. body must be nil or seekable for the retry.
func (c *Client) do(ctx context.Context, method, p string, body io.Reader, contentType string, authed bool) (*http.Response, error) {
	resp, err := c.roundTrip(ctx, method, p, body, contentType, authed)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized && authed && c.canRefresh() {
		resp.Body.Close()
		if err := c.refresh(ctx); err != nil {
			return nil, err
		}
		if s, ok := body.(io.Seeker); ok {
			if _, err := s.Seek(0, io.SeekStart); err != nil {
				return nil, err
			}
		}
		resp, err = c.roundTrip(ctx, method, p, body, contentType, authed)
		if err != nil {
			return nil, err
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp, nil
}

func (c *Client) roundTrip(ctx context.Context, method, p string, body io.Reader, contentType string, authed bool) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+p, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if state, ok := c.session.Current(); ok && authed && state.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+state.AccessToken)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, p, err)
	}
	return resp, nil
}

func (c *Client) canRefresh() bool {
	state, ok := c.session.Current()
	return ok && state.RefreshToken != ""
}

func (c *Client) refresh(ctx context.Context) error {
	state, _ := c.session.Current()
	body, _ := json.Marshal(map[string]string{"refreshToken": state.RefreshToken})
	resp, err := c.roundTrip(ctx, http.MethodPost, "/api/auth/refresh", bytes.NewReader(body), "application/json", false)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	var out struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode refresh: %w", err)
	}
	return c.session.setAccessToken(out.AccessToken)
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(data) == 0 {
		return apiErr
	}
	var body struct {
		Error   string `json:"error"`
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &body) != nil {
		return apiErr
	}
	apiErr.Code = body.Code
	switch {
	case body.Error != "":
		apiErr.Message = body.Error
	case body.Message != "":
		apiErr.Message = body.Message
	}
	return apiErr
}
