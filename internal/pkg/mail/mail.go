package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultAPIURL is the Mailjet v3.1 send endpoint.
const DefaultAPIURL = "https://api.mailjet.com/v3.1/send"

// Config holds Mailjet gateway settings.
type Config struct {
	Enable    bool   `json:"enable"`
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
	FromEmail string `json:"from_email"`
	FromName  string `json:"from_name"`
	// APIURL overrides the Mailjet endpoint; empty means DefaultAPIURL.
	APIURL string `json:"api_url"`
}

// Message is a single email to send.
type Message struct {
	To          string
	ToName      string
	ReplyTo     string
	ReplyToName string
	Subject     string
	Text        string
	HTML        string
}

// Sender delivers emails through the Mailjet HTTP API with Basic auth.
type Sender struct {
	cfg    Config
	client *http.Client
}

func New(cfg Config) *Sender {
	return &Sender{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Configured reports whether gateway credentials are present.
func (s *Sender) Configured() bool {
	return s.cfg.APIKey != "" && s.cfg.APISecret != ""
}

type mailjetParty struct {
	Email string `json:"Email"`
	Name  string `json:"Name,omitempty"`
}

type mailjetMessage struct {
	From     mailjetParty   `json:"From"`
	To       []mailjetParty `json:"To"`
	ReplyTo  *mailjetParty  `json:"ReplyTo,omitempty"`
	Subject  string         `json:"Subject"`
	TextPart string         `json:"TextPart,omitempty"`
	HTMLPart string         `json:"HTMLPart,omitempty"`
}

type mailjetRequest struct {
	Messages []mailjetMessage `json:"Messages"`
}

// Send dispatches a single email. A non-2xx status or transport error is a
// delivery failure for that message.
func (s *Sender) Send(ctx context.Context, msg Message) error {
	if !s.cfg.Enable {
		return nil
	}
	if !s.Configured() {
		return fmt.Errorf("mailjet not configured")
	}

	from := mailjetParty{Email: s.cfg.FromEmail, Name: s.cfg.FromName}
	if from.Email == "" {
		from.Email = "noreply@rahabenico.com"
	}
	if from.Name == "" {
		from.Name = "Rahabenico"
	}

	mjMsg := mailjetMessage{
		From:     from,
		To:       []mailjetParty{{Email: msg.To, Name: msg.ToName}},
		Subject:  msg.Subject,
		TextPart: msg.Text,
		HTMLPart: msg.HTML,
	}
	if msg.ReplyTo != "" {
		mjMsg.ReplyTo = &mailjetParty{Email: msg.ReplyTo, Name: msg.ReplyToName}
	}

	payload, err := json.Marshal(mailjetRequest{Messages: []mailjetMessage{mjMsg}})
	if err != nil {
		return err
	}

	apiURL := s.cfg.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.SetBasicAuth(s.cfg.APIKey, s.cfg.APISecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("mailjet error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
