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
)

func emailJSConfig(endpoint string) *EmailJSConfig {
	return &EmailJSConfig{
		Endpoint:   endpoint,
		ServiceID:  "service_1",
		TemplateID: "template_1",
		PublicKey:  "pub-key",
		PrivateKey: "priv-key",
		BaseURL:    "https://feedback.example.com/",
		Timeout:    5 * time.Second,
	}
}

func TestSendInviteRequestShape(t *testing.T) {
	var captured sendRequest
	var gotUser, gotPass string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewEmailJSClient(emailJSConfig(srv.URL))
	err := client.SendInvite(context.Background(), Invite{
		TeamMemberEmail: "ann@example.com",
		TeamMemberName:  "Ann",
		InviteToken:     "tok-123",
	})
	require.NoError(t, err)

	assert.Equal(t, "service_1", captured.ServiceID)
	assert.Equal(t, "template_1", captured.TemplateID)
	assert.Equal(t, "pub-key", captured.UserID)
	assert.Equal(t, "priv-key", captured.AccessToken)
	assert.Equal(t, "ann@example.com", captured.TemplateParams.ToEmail)
	assert.Equal(t, "Ann", captured.TemplateParams.ToName)
	// trailing slash on the base url must not double up
	assert.Equal(t, "https://feedback.example.com/dashboard/survey/respond/tok-123",
		captured.TemplateParams.SurveyLink)

	assert.Equal(t, "pub-key", gotUser)
	assert.Equal(t, "priv-key", gotPass)
}

func TestSendInviteProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("The template id is invalid"))
	}))
	defer srv.Close()

	client := NewEmailJSClient(emailJSConfig(srv.URL))
	err := client.SendInvite(context.Background(), Invite{
		TeamMemberEmail: "ann@example.com",
		TeamMemberName:  "Ann",
		InviteToken:     "tok-123",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "The template id is invalid")
}

func TestSendInviteAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("API calls: Authentication failed"))
	}))
	defer srv.Close()

	client := NewEmailJSClient(emailJSConfig(srv.URL))
	err := client.SendInvite(context.Background(), Invite{
		TeamMemberEmail: "ann@example.com",
		TeamMemberName:  "Ann",
		InviteToken:     "tok-123",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication failed")
	assert.Contains(t, err.Error(), "credentials")
}

func TestSendInviteEmptyErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewEmailJSClient(emailJSConfig(srv.URL))
	err := client.SendInvite(context.Background(), Invite{
		TeamMemberEmail: "ann@example.com",
		TeamMemberName:  "Ann",
		InviteToken:     "tok-123",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
