package mail

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(apiURL string) Config {
	return Config{
		Enable:    true,
		APIKey:    "key-123",
		APISecret: "secret-456",
		FromEmail: "cards@rahabenico.com",
		FromName:  "Rahabenico",
		APIURL:    apiURL,
	}
}

func TestSendDisabledIsNoop(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Enable = false
	s := New(cfg)

	err := s.Send(context.Background(), Message{To: "a@example.com", Subject: "hi"})

	assert.NoError(t, err)
	assert.False(t, called, "disabled sender must not reach the API")
}

func TestSendUnconfigured(t *testing.T) {
	s := New(Config{Enable: true})

	err := s.Send(context.Background(), Message{To: "a@example.com"})

	assert.ErrorContains(t, err, "not configured")
}

func TestSendRequestShape(t *testing.T) {
	var got mailjetRequest
	var auth struct {
		user, pass string
		ok         bool
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.user, auth.pass, auth.ok = r.BasicAuth()
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := New(testConfig(srv.URL))
	err := s.Send(context.Background(), Message{
		To:          "fan@example.com",
		ToName:      "Fan",
		ReplyTo:     "visitor@example.com",
		ReplyToName: "Visitor",
		Subject:     `New entry added to card "berlin-01"`,
		Text:        "plain body",
		HTML:        "<p>html body</p>",
	})
	require.NoError(t, err)

	assert.True(t, auth.ok)
	assert.Equal(t, "key-123", auth.user)
	assert.Equal(t, "secret-456", auth.pass)

	require.Len(t, got.Messages, 1)
	m := got.Messages[0]
	assert.Equal(t, "cards@rahabenico.com", m.From.Email)
	assert.Equal(t, "Rahabenico", m.From.Name)
	require.Len(t, m.To, 1)
	assert.Equal(t, "fan@example.com", m.To[0].Email)
	require.NotNil(t, m.ReplyTo)
	assert.Equal(t, "visitor@example.com", m.ReplyTo.Email)
	assert.Equal(t, `New entry added to card "berlin-01"`, m.Subject)
	assert.Equal(t, "plain body", m.TextPart)
	assert.Equal(t, "<p>html body</p>", m.HTMLPart)
}

func TestSendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"ErrorMessage":"bad credentials"}`))
	}))
	defer srv.Close()

	s := New(testConfig(srv.URL))
	err := s.Send(context.Background(), Message{To: "fan@example.com", Subject: "x", Text: "y"})

	require.Error(t, err)
	assert.ErrorContains(t, err, "401")
	assert.ErrorContains(t, err, "bad credentials")
}

func TestEntryNotifySubject(t *testing.T) {
	assert.Equal(t, `New entry added to card "berlin-01"`, EntryNotifySubject("berlin-01"))
}

func TestSendEntryNotifyBody(t *testing.T) {
	var got mailjetRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
	}))
	defer srv.Close()

	s := New(testConfig(srv.URL))
	err := s.SendEntryNotify(context.Background(), "fan@example.com", EntryNotifyData{
		CardCustomID:   "berlin-01",
		Username:       "ana",
		CardURL:        "https://rahabenico.vercel.app/card/berlin-01",
		UnsubscribeURL: "https://rahabenico.vercel.app/unsubscribe?email=fan%40example.com&cardId=berlin-01",
	})
	require.NoError(t, err)

	require.Len(t, got.Messages, 1)
	m := got.Messages[0]
	assert.Equal(t, `New entry added to card "berlin-01"`, m.Subject)
	assert.Contains(t, m.HTMLPart, "ana")
	assert.Contains(t, m.HTMLPart, "https://rahabenico.vercel.app/card/berlin-01")
	assert.Contains(t, m.HTMLPart, "unsubscribe")
	assert.Contains(t, m.TextPart, "ana")
	assert.Contains(t, m.TextPart, "https://rahabenico.vercel.app/unsubscribe?email=fan%40example.com&cardId=berlin-01")
}

func TestSendContactEscapesMessage(t *testing.T) {
	var got mailjetRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
	}))
	defer srv.Close()

	s := New(testConfig(srv.URL))
	err := s.SendContact(context.Background(), "owner@rahabenico.com", ContactData{
		Name:    "Visitor",
		Email:   "visitor@example.com",
		Subject: "Print question",
		Message: "line one\nline two <script>",
	})
	require.NoError(t, err)

	require.Len(t, got.Messages, 1)
	m := got.Messages[0]
	require.NotNil(t, m.ReplyTo)
	assert.Equal(t, "visitor@example.com", m.ReplyTo.Email)
	assert.Contains(t, m.HTMLPart, "line one<br>line two")
	assert.NotContains(t, m.HTMLPart, "<script>")
}
