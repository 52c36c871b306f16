// Package notifications tells the selected vendor about the new project.
// The default path drops a template message on the mail queue; SES direct
// send is a config-gated alternative for environments without the queue.
package notifications

import (
	"context"
	"encoding/json"

	"autoassign-worker/internal/common/errors"
	"autoassign-worker/internal/common/logger"
	"autoassign-worker/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// MessageSender is the slice of the SQS API the notifier needs.
type MessageSender interface {
	SendMessage(ctx context.Context, input *sqs.SendMessageInput) (*sqs.SendMessageOutput, error)
}

// EmailSender is the slice of the SES API the notifier needs.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// Config mirrors the notifications.email section of the app config.
type Config struct {
	Enabled      bool
	QueueURL     string
	From         string
	Subject      string
	TemplateName string
	Direct       bool
}

// Assignment carries everything the vendor email template needs.
type Assignment struct {
	Vendor        *models.VendorCandidate
	ProjectNumber string
	Category      string
	Address       string
	VideoURL      string
}

type recipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type contentTemplate struct {
	ProName       string `json:"PRO_NAME"`
	ProjectNumber string `json:"PROJECT_NUMBER"`
	ProCategory   string `json:"PRO_CATEGORY"`
	Address       string `json:"ADDRESS"`
	ChatURL       string `json:"CHAT_URL"`
}

type mailTemplate struct {
	From            string          `json:"from"`
	Subject         string          `json:"subject"`
	Recipients      []recipient     `json:"recipients"`
	ContentTemplate contentTemplate `json:"contentTemplate"`
	TemplateName    string          `json:"templateName"`
}

// Notifier sends the vendor-assignment email.
type Notifier struct {
	cfg    Config
	queue  MessageSender
	mailer EmailSender
	logger logger.Logger
}

func NewNotifier(cfg Config, queue MessageSender, mailer EmailSender, log logger.Logger) *Notifier {
	return &Notifier{cfg: cfg, queue: queue, mailer: mailer, logger: log}
}

// NotifyVendor sends the assignment email when enabled. A disabled notifier
// is a no-op so callers never branch on config.
func (n *Notifier) NotifyVendor(ctx context.Context, a Assignment) error {
	if !n.cfg.Enabled || a.Vendor == nil {
		return nil
	}

	if n.cfg.Direct {
		return n.sendDirect(ctx, a)
	}
	return n.sendQueued(ctx, a)
}

func (n *Notifier) sendQueued(ctx context.Context, a Assignment) error {
	template := mailTemplate{
		From:       n.cfg.From,
		Subject:    n.cfg.Subject,
		Recipients: []recipient{{Name: a.Vendor.Name, Email: a.Vendor.Email}},
		ContentTemplate: contentTemplate{
			ProName:       a.Vendor.Name,
			ProjectNumber: a.ProjectNumber,
			ProCategory:   a.Category,
			Address:       a.Address,
			ChatURL:       a.VideoURL,
		},
		TemplateName: n.cfg.TemplateName,
	}

	body, err := json.Marshal(template)
	if err != nil {
		return errors.NewNotificationSendFailedError("email", err)
	}

	out, err := n.queue.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:     aws.String(n.cfg.QueueURL),
		MessageBody:  aws.String(string(body)),
		DelaySeconds: 0,
	})
	if err != nil {
		return errors.NewNotificationSendFailedError("email", err)
	}

	n.logger.Info("vendor email queued", map[string]interface{}{
		"vendor":     a.Vendor.VendorID,
		"message_id": aws.ToString(out.MessageId),
	})
	return nil
}

func (n *Notifier) sendDirect(ctx context.Context, a Assignment) error {
	body := "Project " + a.ProjectNumber + " (" + a.Category + ") at " + a.Address +
		" has been assigned to you. Video: " + a.VideoURL

	_, err := n.mailer.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(n.cfg.From),
		Destination: &sestypes.Destination{
			ToAddresses: []string{a.Vendor.Email},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(n.cfg.Subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		return errors.NewNotificationSendFailedError("email", err)
	}

	n.logger.Info("vendor email sent", map[string]interface{}{"vendor": a.Vendor.VendorID})
	return nil
}
