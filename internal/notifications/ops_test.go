package notifications

import (
	"context"
	"testing"

	"autoassign-worker/internal/common/logger"
	"autoassign-worker/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTopic struct {
	published []*sns.PublishInput
	err       error
}

func (f *fakeTopic) Publish(_ context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.published = append(f.published, input)
	return &sns.PublishOutput{MessageId: aws.String("m-1")}, nil
}

func TestOpsNotifier_AssignmentCompleted(t *testing.T) {
	topic := &fakeTopic{}
	notifier := NewOpsNotifier("arn:aws:sns:us-east-1:1:assignments", topic, logger.NewTestLogger(t))

	decision := &models.AssignmentDecision{
		Status:   models.DecisionAssigned,
		Category: "Plumbing",
		Vendor:   &models.VendorCandidate{VendorID: "V-1", Name: "Best Plumbing"},
	}
	notifier.AssignmentCompleted(context.Background(), "videos/clip.mp4", "PRJ-1", decision)

	require.Len(t, topic.published, 1)
	assert.Equal(t, "arn:aws:sns:us-east-1:1:assignments", aws.ToString(topic.published[0].TopicArn))
	assert.Contains(t, aws.ToString(topic.published[0].Message), `"vendor_id":"V-1"`)
	assert.Contains(t, aws.ToString(topic.published[0].Message), `"project_id":"PRJ-1"`)
}

func TestOpsNotifier_SkipsWithoutVendor(t *testing.T) {
	topic := &fakeTopic{}
	notifier := NewOpsNotifier("arn:topic", topic, logger.NewNoOpLogger())

	notifier.AssignmentCompleted(context.Background(), "k", "p", &models.AssignmentDecision{
		Status: models.DecisionNoVendorFound,
	})
	assert.Empty(t, topic.published)
}

func TestOpsNotifier_PublishFailureIsSwallowed(t *testing.T) {
	topic := &fakeTopic{err: assert.AnError}
	notifier := NewOpsNotifier("arn:topic", topic, logger.NewNoOpLogger())

	assert.NotPanics(t, func() {
		notifier.AssignmentCompleted(context.Background(), "k", "p", &models.AssignmentDecision{
			Status: models.DecisionAssigned,
			Vendor: &models.VendorCandidate{VendorID: "V-1"},
		})
	})
}

func TestOpsNotifier_NilReceiver(t *testing.T) {
	var notifier *OpsNotifier
	assert.NotPanics(t, func() {
		notifier.AssignmentCompleted(context.Background(), "k", "p", nil)
	})
}
