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

// MailjetClient sends transactional email through the Mailjet v3.1 send API.
type MailjetClient struct {
	baseURL    string
	apiKey     string
	secretKey  string
	httpClient *http.Client
}

type MailjetConfig struct {
	BaseURL   string
	APIKey    string
	SecretKey string
	Timeout   time.Duration
}

// Email is one transactional message.
type Email struct {
	FromEmail string
	FromName  string
	ToEmail   string
	ToName    string
	Subject   string
	HTMLBody  string
}

func NewMailjetClient(cfg MailjetConfig) *MailjetClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.mailjet.com"
	}
	return &MailjetClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.APIKey,
		secretKey:  cfg.SecretKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *MailjetClient) Send(ctx context.Context, email Email) error {
	reqBody := map[string]interface{}{
		"Messages": []map[string]interface{}{
			{
				"From": map[string]string{
					"Email": email.FromEmail,
					"Name":  email.FromName,
				},
				"To": []map[string]string{
					{
						"Email": email.ToEmail,
						"Name":  email.ToName,
					},
				},
				"Subject":  email.Subject,
				"HTMLPart": email.HTMLBody,
			},
		},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal mailjet request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v3.1/send", bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("build mailjet request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.apiKey, c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("mailjet request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mailjet response status %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}
