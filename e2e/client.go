package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type Message struct {
	ID   string `json:"_id"`
	From string `json:"from"`
	To   string `json:"to"`
	Text string `json:"text"`
	Type string `json:"type"`
	Time string `json:"time"`
}

type Participant struct {
	Name       string `json:"name"`
	LastStatus int64  `json:"lastStatus"`
}

// Client speaks the chat room HTTP API on behalf of one participant.
type Client struct {
	baseURL string
	user    string
	http    *http.Client
}

func NewClient(cfg Config, user string) *Client {
	return &Client{baseURL: cfg.BaseURL, user: user, http: &http.Client{Timeout: cfg.Timeout}}
}

func (c *Client) Join() (int, error) {
	return c.do(http.MethodPost, "/participants", map[string]string{"name": c.user}, nil)
}

func (c *Client) Heartbeat() (int, error) {
	return c.do(http.MethodPost, "/status", nil, nil)
}

func (c *Client) Send(to, text, kind string) (int, error) {
	return c.do(http.MethodPost, "/messages", map[string]string{"to": to, "text": text, "type": kind}, nil)
}

func (c *Client) Messages(limit int) ([]Message, error) {
	path := "/messages"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}
	var messages []Message
	if _, err := c.do(http.MethodGet, path, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (c *Client) Participants() ([]Participant, error) {
	var participants []Participant
	if _, err := c.do(http.MethodGet, "/participants", nil, &participants); err != nil {
		return nil, err
	}
	return participants, nil
}

func (c *Client) Edit(id, to, text, kind string) (int, error) {
	return c.do(http.MethodPut, "/messages/"+id, map[string]string{"to": to, "text": text, "type": kind}, nil)
}

func (c *Client) Delete(id string) (int, error) {
	return c.do(http.MethodDelete, "/messages/"+id, nil, nil)
}

func (c *Client) do(method, path string, body any, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(payload)
	}
	request, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("User", c.user)

	response, err := c.http.Do(request)
	if err != nil {
		return 0, err
	}
	defer response.Body.Close()

	if out != nil && response.StatusCode == http.StatusOK {
		if err = json.NewDecoder(response.Body).Decode(out); err != nil {
			return response.StatusCode, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return response.StatusCode, nil
}
