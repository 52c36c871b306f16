package notifications

import (
	"context"
	"encoding/json"
	"testing"

	"autoassign-worker/internal/common/logger"
	"autoassign-worker/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQueue struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeQueue) SendMessage(_ context.Context, input *sqs.SendMessageInput) (*sqs.SendMessageOutput, error) {
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("MSG-1")}, nil
}

type fakeMailer struct {
	input *ses.SendEmailInput
}

func (f *fakeMailer) SendEmail(_ context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	f.input = input
	return &ses.SendEmailOutput{}, nil
}

func testAssignment() Assignment {
	return Assignment{
		Vendor: &models.VendorCandidate{
			Name:     "Best Plumbing",
			VendorID: "V-1",
			Email:    "best@example.com",
		},
		ProjectNumber: "1042",
		Category:      "Plumbing",
		Address:       "12 Main St",
		VideoURL:      "https://portal.example.com/videoVendor/?video=clip",
	}
}

func TestNotifier_NotifyVendor(t *testing.T) {
	t.Run("queues mail template", func(t *testing.T) {
		queue := &fakeQueue{}
		cfg := Config{
			Enabled:      true,
			QueueURL:     "https://sqs.example.com/mail",
			From:         "support@example.com",
			Subject:      "Project assigned",
			TemplateName: "Home - Pro - New Project",
		}

		notifier := NewNotifier(cfg, queue, nil, logger.NewTestLogger(t))
		require.NoError(t, notifier.NotifyVendor(context.Background(), testAssignment()))

		require.NotNil(t, queue.input)
		assert.Equal(t, "https://sqs.example.com/mail", aws.ToString(queue.input.QueueUrl))

		var payload map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(aws.ToString(queue.input.MessageBody)), &payload))
		assert.Equal(t, "support@example.com", payload["from"])
		assert.Equal(t, "Home - Pro - New Project", payload["templateName"])

		content := payload["contentTemplate"].(map[string]interface{})
		assert.Equal(t, "Best Plumbing", content["PRO_NAME"])
		assert.Equal(t, "1042", content["PROJECT_NUMBER"])
		assert.Equal(t, "Plumbing", content["PRO_CATEGORY"])
		assert.Equal(t, "12 Main St", content["ADDRESS"])

		recipients := payload["recipients"].([]interface{})
		require.Len(t, recipients, 1)
		assert.Equal(t, "best@example.com", recipients[0].(map[string]interface{})["email"])
	})

	t.Run("disabled notifier is a no-op", func(t *testing.T) {
		queue := &fakeQueue{}
		notifier := NewNotifier(Config{Enabled: false}, queue, nil, logger.NewNoOpLogger())
		require.NoError(t, notifier.NotifyVendor(context.Background(), testAssignment()))
		assert.Nil(t, queue.input)
	})

	t.Run("direct path sends through SES", func(t *testing.T) {
		mailer := &fakeMailer{}
		cfg := Config{
			Enabled: true,
			Direct:  true,
			From:    "support@example.com",
			Subject: "Project assigned",
		}

		notifier := NewNotifier(cfg, nil, mailer, logger.NewTestLogger(t))
		require.NoError(t, notifier.NotifyVendor(context.Background(), testAssignment()))

		require.NotNil(t, mailer.input)
		assert.Equal(t, []string{"best@example.com"}, mailer.input.Destination.ToAddresses)
		assert.Equal(t, "support@example.com", aws.ToString(mailer.input.Source))
	})

	t.Run("queue failure is a notification error", func(t *testing.T) {
		queue := &fakeQueue{err: assert.AnError}
		notifier := NewNotifier(Config{Enabled: true}, queue, nil, logger.NewNoOpLogger())
		assert.Error(t, notifier.NotifyVendor(context.Background(), testAssignment()))
	})
}
