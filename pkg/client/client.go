// Package client is a typed client for the notes-web application. It
// speaks the app's HTML-form protocol: it posts forms, carries the
// session cookie between calls and surfaces redirects instead of
// following them, so callers can assert on them.
package client

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Doer dispatches a single HTTP request. *http.Client satisfies it for
// a running server; an in-process fiber app is wrapped by NewTestClient.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	URL     string
	doer    Doer
	cookies map[string]string
}

func NewClient(url string) *Client {
	return &Client{
		URL: url,
		doer: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		cookies: map[string]string{},
	}
}

// NewTestClient returns a client that dispatches requests through the
// given fiber app without opening a socket.
func NewTestClient(app *fiber.App) *Client {
	return &Client{
		URL:     "http://notes.test",
		doer:    fiberDoer{app},
		cookies: map[string]string{},
	}
}

type fiberDoer struct {
	app *fiber.App
}

func (d fiberDoer) Do(req *http.Request) (*http.Response, error) {
	return d.app.Test(req, -1)
}

// Page-level operations

func (c *Client) Signup(username, password string) (*http.Response, error) {
	return c.PostForm("/auth/signup", url.Values{
		"username": {username},
		"password": {password},
		"confirm":  {password},
	})
}

func (c *Client) Login(username, password string) (*http.Response, error) {
	return c.PostForm("/auth/login", url.Values{
		"username": {username},
		"password": {password},
	})
}

func (c *Client) Logout() (*http.Response, error) {
	return c.Get("/auth/logout")
}

func (c *Client) CreateNote(title, text, slug string) (*http.Response, error) {
	return c.PostForm("/notes/add", noteValues(title, text, slug))
}

func (c *Client) EditNote(noteSlug, title, text, slug string) (*http.Response, error) {
	return c.PostForm("/notes/"+noteSlug+"/edit", noteValues(title, text, slug))
}

func (c *Client) DeleteNote(noteSlug string) (*http.Response, error) {
	return c.Delete("/notes/" + noteSlug + "/delete")
}

// Transport

func (c *Client) Get(path string) (*http.Response, error) {
	req, err := c.newRequest("GET", path, "", nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) PostForm(path string, values url.Values) (*http.Response, error) {
	req, err := c.newRequest("POST", path, "application/x-www-form-urlencoded", strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) Delete(path string) (*http.Response, error) {
	req, err := c.newRequest("DELETE", path, "", nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// ReadBody drains and closes the response body.
func ReadBody(resp *http.Response) (string, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}
	return string(body), nil
}

// Private functions

func (c *Client) newRequest(method, path, contentType string, body io.Reader) (*http.Request, error) {
	requestUrl, err := url.JoinPath(c.URL, path)
	if err != nil {
		return nil, fmt.Errorf("error building URL path: %w", err)
	}

	req, err := http.NewRequest(method, requestUrl, body)
	if err != nil {
		return nil, fmt.Errorf("error building request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for name, value := range c.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	return req, nil
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error invoking app: %w", err)
	}
	for _, ck := range resp.Cookies() {
		if ck.MaxAge < 0 || (!ck.Expires.IsZero() && ck.Expires.Before(time.Now())) {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck.Value
	}
	return resp, nil
}

func noteValues(title, text, slug string) url.Values {
	values := url.Values{
		"title": {title},
		"text":  {text},
	}
	if slug != "" {
		values.Set("slug", slug)
	}
	return values
}
