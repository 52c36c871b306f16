// internal/notifications/ops.go
package notifications

import (
	"context"
	"encoding/json"

	"autoassign-worker/internal/common/logger"
	"autoassign-worker/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// TopicPublisher is the slice of the SNS API the ops notifier needs.
type TopicPublisher interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// OpsNotifier publishes successful assignments to an SNS topic so the ops
// channel sees them without tailing logs. Best-effort, off by default.
type OpsNotifier struct {
	topicARN string
	sns      TopicPublisher
	logger   logger.Logger
}

func NewOpsNotifier(topicARN string, publisher TopicPublisher, log logger.Logger) *OpsNotifier {
	return &OpsNotifier{topicARN: topicARN, sns: publisher, logger: log}
}

type opsMessage struct {
	SourceKey string `json:"source_key"`
	ProjectID string `json:"project_id"`
	Category  string `json:"category"`
	VendorID  string `json:"vendor_id"`
	Vendor    string `json:"vendor"`
}

// AssignmentCompleted publishes one message per successful assignment.
func (o *OpsNotifier) AssignmentCompleted(ctx context.Context, sourceKey, projectID string, decision *models.AssignmentDecision) {
	if o == nil || o.sns == nil || decision == nil || decision.Vendor == nil {
		return
	}

	body, err := json.Marshal(opsMessage{
		SourceKey: sourceKey,
		ProjectID: projectID,
		Category:  decision.Category,
		VendorID:  decision.Vendor.VendorID,
		Vendor:    decision.Vendor.Name,
	})
	if err != nil {
		return
	}

	_, err = o.sns.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(o.topicARN),
		Subject:  aws.String("vendor auto-assigned"),
		Message:  aws.String(string(body)),
	})
	if err != nil {
		o.logger.WithError(err).Warn("ops notification failed", map[string]interface{}{
			"key": sourceKey,
		})
	}
}
