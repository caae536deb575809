// Package jobs defines the background jobs dispatched by the services.
package jobs

import (
	"errors"
	"fmt"

	"github.com/ritahmida/boutique/config"
	"github.com/ritahmida/boutique/pkg/notification"
	"github.com/ritahmida/boutique/pkg/queue"
)

// OrderConfirmationJob notifies the shop owner that an order was placed.
// Dispatched after the order transaction commits; runs on a queue worker.
type OrderConfirmationJob struct {
	OrderID     uint   `json:"order_id"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
}

// Handle folds the per-channel errors into one so the worker retries the
// job when any channel failed.
func (j OrderConfirmationJob) Handle() error {
	errs := notification.Send(config.Get("ADMIN_EMAIL", ""), &orderPlacedNotification{job: j})
	return errors.Join(errs...)
}

// Register wires every job type into the queue registry so workers can
// deserialize payloads back into jobs. Names must match the %T of the
// dispatched value.
func Register() {
	queue.Register("jobs.OrderConfirmationJob", func() queue.Job {
		return &OrderConfirmationJob{}
	})
}

// orderPlacedNotification goes out via mail and, when a webhook is
// configured, Slack.
type orderPlacedNotification struct {
	job OrderConfirmationJob
}

func (n *orderPlacedNotification) Via() []string {
	channels := []string{"mail"}
	if config.Get("SLACK_WEBHOOK_URL", "") != "" {
		channels = append(channels, "slack")
	}
	return channels
}

func (n *orderPlacedNotification) ToMail() notification.MailData {
	return notification.MailData{
		Subject: fmt.Sprintf("New order #%d", n.job.OrderID),
		Body: fmt.Sprintf("<p>Order <b>#%d</b> placed by %s (%s).</p>",
			n.job.OrderID, n.job.FullName, n.job.PhoneNumber),
		Text: fmt.Sprintf("Order #%d placed by %s (%s).",
			n.job.OrderID, n.job.FullName, n.job.PhoneNumber),
	}
}

func (n *orderPlacedNotification) ToSlack() notification.SlackData {
	return notification.SlackData{
		Text: fmt.Sprintf("New order #%d from %s", n.job.OrderID, n.job.FullName),
	}
}
