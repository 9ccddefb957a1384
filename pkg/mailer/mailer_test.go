package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"maintenance-system/pkg/config"
)

func TestRender_StripsMarkup(t *testing.T) {
	msg, err := Render("a@lab.test", "Request <b>#7</b>", `<script>alert(1)</script>Pump is leaking`, "https://lab.test")
	require.NoError(t, err)

	assert.Equal(t, "a@lab.test", msg.To)
	assert.Equal(t, "Lab Maintenance Notification - Request #7", msg.Subject)
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "Pump is leaking")
	assert.Contains(t, msg.HTML, `href="https://lab.test"`)
	assert.Equal(t, "Request #7\n\nPump is leaking", msg.Text)
}

func TestResendSender_Send(t *testing.T) {
	var got resendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"1"}`))
	}))
	defer srv.Close()

	s := NewResendSender(srv.URL, "key-1", "support@lab.test", srv.Client())
	err := s.Send(context.Background(), Message{To: "x@lab.test", Subject: "S", HTML: "<p>h</p>", Text: "h"})
	require.NoError(t, err)

	assert.Equal(t, "support@lab.test", got.From)
	assert.Equal(t, []string{"x@lab.test"}, got.To)
	assert.Equal(t, "S", got.Subject)
}

func TestResendSender_ErrorStatusAndTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/slow" {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
			return
		}
		http.Error(w, `{"message":"invalid key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := NewResendSender(srv.URL, "bad", "support@lab.test", srv.Client())
	err := s.Send(context.Background(), Message{To: "x@lab.test"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")

	slow := NewResendSender(srv.URL+"/slow", "k", "support@lab.test", srv.Client())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, slow.Send(ctx, Message{To: "x@lab.test"}))

	assert.Error(t, s.Send(context.Background(), Message{To: "  "}))
}

func TestNew_SelectsProvider(t *testing.T) {
	s, err := New(config.EmailConfig{Provider: "log"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &LogSender{}, s)

	_, err = New(config.EmailConfig{Provider: "resend"}, zap.NewNop())
	assert.Error(t, err)

	s, err = New(config.EmailConfig{Provider: "resend", APIKey: "k", APIURL: "http://x", Timeout: time.Second}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &ResendSender{}, s)

	_, err = New(config.EmailConfig{Provider: "smtp"}, zap.NewNop())
	assert.Error(t, err)
}

func TestRender_NoDoubleEscaping(t *testing.T) {
	msg, err := Render("a@lab.test", "Tom's bench", "Fan & filter replaced", "")
	require.NoError(t, err)

	assert.Equal(t, "Lab Maintenance Notification - Tom's bench", msg.Subject)
	assert.Contains(t, msg.HTML, "Fan &amp; filter replaced")
	assert.NotContains(t, msg.HTML, "&amp;amp;")
	assert.NotContains(t, msg.HTML, "cta-button\">")
}
