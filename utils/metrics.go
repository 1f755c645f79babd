package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TurnsTotal counts handled conversation turns by intent and outcome.
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotelbot",
			Name:      "dialogue_turns_total",
			Help:      "Conversation turns handled, by intent and outcome",
		},
		[]string{"intent", "outcome"},
	)

	CollaboratorFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotelbot",
			Name:      "collaborator_failures_total",
			Help:      "Failed or timed-out collaborator calls",
		},
		[]string{"collaborator"},
	)

	// TerminalActionsTotal counts create/update/delete attempts made by the dialogue engine.
	TerminalActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotelbot",
			Name:      "terminal_actions_total",
			Help:      "Booking side effects triggered by completed flows",
		},
		[]string{"action", "result"},
	)

	ConversationsTracked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "hotelbot",
			Name:      "conversations_tracked",
			Help:      "Conversations currently held in the in-memory store",
		},
	)

	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotelbot",
			Name:      "webhook_events_total",
			Help:      "Inbound webhook messaging events, by disposition",
		},
		[]string{"disposition"},
	)

	RepliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotelbot",
			Name:      "replies_total",
			Help:      "Outbound replies, by delivery result",
		},
		[]string{"result"},
	)
)
