package mailer

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

// EmailJSConfig holds the transactional-email provider settings. They are
// consumed only by invite delivery.
type EmailJSConfig struct {
	Endpoint   string
	ServiceID  string
	TemplateID string
	PublicKey  string
	PrivateKey string
	BaseURL    string
	Timeout    time.Duration
}

// EmailJSClient delivers invitation emails through the EmailJS send API.
type EmailJSClient struct {
	config *EmailJSConfig
	client *http.Client
}

func NewEmailJSClient(config *EmailJSConfig) *EmailJSClient {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &EmailJSClient{
		config: config,
		client: &http.Client{Timeout: timeout},
	}
}

type templateParams struct {
	ToEmail    string `json:"to_email"`
	ToName     string `json:"to_name"`
	SurveyLink string `json:"survey_link"`
}

type sendRequest struct {
	ServiceID      string         `json:"service_id"`
	TemplateID     string         `json:"template_id"`
	UserID         string         `json:"user_id"`
	TemplateParams templateParams `json:"template_params"`
	AccessToken    string         `json:"accessToken"`
}

// SendInvite performs one delivery attempt. Each invite is independent;
// the caller decides how failures are reported.
func (c *EmailJSClient) SendInvite(ctx context.Context, invite Invite) error {
	link := fmt.Sprintf("%s/dashboard/survey/respond/%s",
		strings.TrimSuffix(c.config.BaseURL, "/"),
		invite.InviteToken,
	)

	body, err := json.Marshal(sendRequest{
		ServiceID:  c.config.ServiceID,
		TemplateID: c.config.TemplateID,
		UserID:     c.config.PublicKey,
		TemplateParams: templateParams{
			ToEmail:    invite.TeamMemberEmail,
			ToName:     invite.TeamMemberName,
			SurveyLink: link,
		},
		AccessToken: c.config.PrivateKey,
	})
	if err != nil {
		return fmt.Errorf("marshal send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.config.PublicKey, c.config.PrivateKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if strings.Contains(string(text), "Authentication failed") {
			return fmt.Errorf("email service authentication failed, check provider credentials")
		}
		if len(text) == 0 {
			return fmt.Errorf("failed to send email: status %d", resp.StatusCode)
		}
		return fmt.Errorf("failed to send email: %s", strings.TrimSpace(string(text)))
	}

	return nil
}
