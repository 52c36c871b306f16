// Package predictions reads classifier output blobs from object storage.
package predictions

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"

	"autoassign-worker/internal/common/errors"
	"autoassign-worker/internal/common/logger"
	"autoassign-worker/internal/common/validation"
	"autoassign-worker/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// predictionSuffix is appended to the video key by the classifier when it
// writes its result next to the upload.
const predictionSuffix = ".prediction"

// predictionSchema rejects payloads that do not look like classifier output
// before any field is read. The "probabilites" spelling is the wire contract.
var predictionSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"best", "probabilites"},
	"properties": map[string]interface{}{
		"best": map[string]interface{}{"type": "string"},
		"probabilites": map[string]interface{}{
			"type": "object",
			"additionalProperties": map[string]interface{}{
				"type": "number",
			},
		},
	},
}

// ObjectGetter is the slice of the S3 API the reader needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, input *s3.GetObjectInput) (*s3.GetObjectOutput, error)
}

// Reader fetches and validates prediction blobs.
type Reader struct {
	client ObjectGetter
	bucket string
	logger logger.Logger
}

func NewReader(client ObjectGetter, bucket string, log logger.Logger) *Reader {
	return &Reader{client: client, bucket: bucket, logger: log}
}

// Fetch reads the prediction stored for a video key. A missing object yields
// (nil, nil); an object that fails schema validation yields a
// PREDICTION_INVALID error.
func (r *Reader) Fetch(ctx context.Context, key string) (*models.PredictionResult, error) {
	predictionKey := key + predictionSuffix

	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(predictionKey),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if stderrors.As(err, &noSuchKey) {
			r.logger.Warn("prediction object does not exist", map[string]interface{}{"key": predictionKey})
			return nil, nil
		}
		return nil, errors.NewExternalCallFailedError("s3", err)
	}
	defer out.Body.Close()

	payload, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.NewExternalCallFailedError("s3", err)
	}

	if err := validation.ValidateJSON(predictionSchema, payload); err != nil {
		return nil, errors.NewPredictionInvalidError(err.Error())
	}

	var result models.PredictionResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, errors.NewPredictionInvalidError(err.Error())
	}

	if out.LastModified != nil {
		result.LastModified = *out.LastModified
	}

	r.logger.Info("prediction loaded", map[string]interface{}{
		"key":   predictionKey,
		"best":  result.Best,
		"score": result.Confidence(),
	})
	return &result, nil
}
