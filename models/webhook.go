package models

// InstagramWebhook is the messaging webhook body posted by the Graph API.
type InstagramWebhook struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID        string           `json:"id"`
	Time      int64            `json:"time"`
	Messaging []MessagingEvent `json:"messaging"`
}

type MessagingEvent struct {
	Sender    WebhookParty    `json:"sender"`
	Recipient WebhookParty    `json:"recipient"`
	Timestamp int64           `json:"timestamp"`
	Message   *WebhookMessage `json:"message,omitempty"`
}

type WebhookParty struct {
	ID string `json:"id"`
}

type WebhookMessage struct {
	Mid    string `json:"mid"`
	Text   string `json:"text"`
	IsEcho bool   `json:"is_echo,omitempty"`
}
