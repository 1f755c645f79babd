package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultGraphBaseURL = "https://graph.facebook.com"

type graphRecipient struct {
	ID string `json:"id"`
}

type graphMessage struct {
	Text string `json:"text"`
}

type graphSendRequest struct {
	Recipient     graphRecipient `json:"recipient"`
	Message       *graphMessage  `json:"message,omitempty"`
	MessagingType string         `json:"messaging_type,omitempty"`
	SenderAction  string         `json:"sender_action,omitempty"`
}

// InstagramNotificationService talks to the Graph API send endpoint.
type InstagramNotificationService struct {
	AccessToken string
	APIVersion  string
	BaseURL     string
	HTTPClient  *http.Client
	Logger      *zap.Logger
}

func NewInstagramNotificationService(accessToken, apiVersion string, logger *zap.Logger) *InstagramNotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstagramNotificationService{
		AccessToken: accessToken,
		APIVersion:  apiVersion,
		BaseURL:     defaultGraphBaseURL,
		HTTPClient:  &http.Client{Timeout: 10 * time.Second},
		Logger:      logger,
	}
}

func (s *InstagramNotificationService) endpoint() string {
	version := strings.TrimPrefix(s.APIVersion, "v")
	if version == "" {
		version = "18.0"
	}
	q := url.Values{}
	q.Set("access_token", s.AccessToken)
	return fmt.Sprintf("%s/v%s/me/messages?%s", strings.TrimRight(s.BaseURL, "/"), version, q.Encode())
}

// SendMessage posts a text reply to the recipient.
func (s *InstagramNotificationService) SendMessage(ctx context.Context, recipientID, text string) error {
	err := s.post(ctx, graphSendRequest{
		Recipient:     graphRecipient{ID: recipientID},
		Message:       &graphMessage{Text: text},
		MessagingType: "RESPONSE",
	})
	if err != nil {
		return fmt.Errorf("SendMessage: %w", err)
	}
	s.Logger.Debug("Message delivered", zap.String("recipient_id", recipientID))
	return nil
}

// SendAction posts a sender action such as typing_on or mark_seen.
func (s *InstagramNotificationService) SendAction(ctx context.Context, recipientID, action string) error {
	err := s.post(ctx, graphSendRequest{
		Recipient:    graphRecipient{ID: recipientID},
		SenderAction: action,
	})
	if err != nil {
		return fmt.Errorf("SendAction %s: %w", action, err)
	}
	return nil
}

func (s *InstagramNotificationService) post(ctx context.Context, body graphSendRequest) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: status %d: %s", ErrDeliveryFailed, resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}
