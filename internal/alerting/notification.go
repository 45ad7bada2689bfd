// Package alerting queues fired alerts and relays them to their webhooks.
package alerting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/aussiebroadwan/candor/pkg/webhook"
)

// Topic carries queued notifications.
const Topic = "candor.alerts"

var (
	ErrMissingField       = errors.New("alerting: missing required field")
	ErrBlockedDestination = errors.New("alerting: webhook url not allowed")
)

// Notification is an alert that has fired and must be sent to WebhookURL.
type Notification struct {
	WebhookURL string `json:"webhook_url"`
	RuleID     string `json:"rule_id"`
	RuleName   string `json:"rule_name"`
	AlertID    string `json:"alert_id"`
	Message    string `json:"message"`
	Severity   string `json:"severity"`
	SessionID  string `json:"session_id"`
	EventID    string `json:"event_id,omitempty"`

	// Wallet that queued the notification
	Wallet string `json:"wallet"`
}

// Validate checks required fields and refuses internal webhook targets.
func (n Notification) Validate() error {
	for name, v := range map[string]string{
		"webhookUrl": n.WebhookURL,
		"ruleId":     n.RuleID,
		"alertId":    n.AlertID,
		"message":    n.Message,
		"severity":   n.Severity,
	} {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, name)
		}
	}
	if !webhook.IsAllowedURL(n.WebhookURL) {
		return ErrBlockedDestination
	}
	return nil
}

// payload is the webhook body for n.
func (n Notification) payload() webhook.Payload {
	return webhook.Payload{
		Event:    webhook.EventAlertTriggered,
		RuleID:   n.RuleID,
		RuleName: n.RuleName,
		Scope:    n.Wallet,
		Alert: webhook.Alert{
			ID:        n.AlertID,
			Message:   n.Message,
			Severity:  n.Severity,
			SessionID: n.SessionID,
			EventID:   n.EventID,
		},
	}
}

// Publisher puts notifications on the alerts topic.
type Publisher struct {
	publisher message.Publisher
	topic     string
}

func NewPublisher(publisher message.Publisher) *Publisher {
	return &Publisher{
		publisher: publisher,
		topic:     Topic,
	}
}

// Publish validates n and queues it. It returns the message id.
func (p *Publisher) Publish(ctx context.Context, n Notification) (string, error) {
	if err := n.Validate(); err != nil {
		return "", err
	}

	body, err := json.Marshal(n)
	if err != nil {
		return "", fmt.Errorf("failed to marshal notification: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.SetContext(ctx)
	msg.Metadata.Set("rule_id", n.RuleID)
	msg.Metadata.Set("wallet", n.Wallet)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return "", fmt.Errorf("failed to publish notification: %w", err)
	}
	return msg.UUID, nil
}
