package handlers

import (
	"net/http"
	"strings"
	"time"

	"hotelbot/cron"
	"hotelbot/models"
	"hotelbot/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookHandler receives Instagram messaging events.
type WebhookHandler struct {
	VerifyToken string
	Dispatcher  cron.Dispatcher
}

func NewWebhookHandler(verifyToken string, dispatcher cron.Dispatcher) *WebhookHandler {
	return &WebhookHandler{
		VerifyToken: verifyToken,
		Dispatcher:  dispatcher,
	}
}

// VerifyWebhookHandler answers the subscription challenge.
func (h *WebhookHandler) VerifyWebhookHandler(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode != "subscribe" || h.VerifyToken == "" || token != h.VerifyToken {
		getLogger(c).Warn("Webhook verification rejected", zap.String("mode", mode))
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid verification token"})
		return
	}
	c.String(http.StatusOK, challenge)
}

// ReceiveWebhookHandler queues every text message in the payload and returns at once.
func (h *WebhookHandler) ReceiveWebhookHandler(c *gin.Context) {
	logger := getLogger(c)

	var payload models.InstagramWebhook
	if err := c.ShouldBindJSON(&payload); err != nil {
		logger.Warn("Invalid webhook payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	queued := 0
	for _, entry := range payload.Entry {
		for _, event := range entry.Messaging {
			if event.Message == nil || event.Message.IsEcho {
				utils.WebhookEventsTotal.WithLabelValues("ignored").Inc()
				continue
			}
			text := strings.TrimSpace(event.Message.Text)
			if text == "" || event.Sender.ID == "" {
				utils.WebhookEventsTotal.WithLabelValues("ignored").Inc()
				continue
			}

			turn := models.TurnPayload{
				MessageID:   event.Message.Mid,
				SenderID:    event.Sender.ID,
				RecipientID: event.Recipient.ID,
				Text:        text,
				ReceivedAt:  eventTime(event.Timestamp),
			}
			if err := h.Dispatcher.Dispatch(c.Request.Context(), turn); err != nil {
				logger.Error("Failed to dispatch message", zap.String("sender_id", turn.SenderID), zap.Error(err))
				utils.WebhookEventsTotal.WithLabelValues("failed").Inc()
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Could not queue message"})
				return
			}
			utils.WebhookEventsTotal.WithLabelValues("queued").Inc()
			queued++
		}
	}

	if queued == 0 {
		c.JSON(http.StatusOK, gin.H{"status": "no_action_required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "processing", "queued": queued})
}

func eventTime(ms int64) time.Time {
	if ms <= 0 {
		return time.Now()
	}
	return time.UnixMilli(ms)
}
