package predictions

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"autoassign-worker/internal/common/errors"
	"autoassign-worker/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectGetter struct {
	body         string
	lastModified time.Time
	err          error
	gotKey       string
}

func (f *fakeObjectGetter) GetObject(_ context.Context, input *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
	f.gotKey = aws.ToString(input.Key)
	if f.err != nil {
		return nil, f.err
	}
	out := &s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader(f.body)),
	}
	if !f.lastModified.IsZero() {
		out.LastModified = aws.Time(f.lastModified)
	}
	return out, nil
}

func TestReader_Fetch(t *testing.T) {
	t.Run("reads and validates prediction", func(t *testing.T) {
		modified := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		getter := &fakeObjectGetter{
			body:         `{"best": "Plumbing", "probabilites": {"Plumbing": 0.91, "Electrical": 0.04}}`,
			lastModified: modified,
		}

		reader := NewReader(getter, "videos-bucket", logger.NewTestLogger(t))
		result, err := reader.Fetch(context.Background(), "videos/clip.mp4")
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, "videos/clip.mp4.prediction", getter.gotKey)
		assert.Equal(t, "Plumbing", result.Best)
		assert.InDelta(t, 0.91, result.Confidence(), 1e-9)
		assert.Equal(t, modified, result.LastModified)
	})

	t.Run("missing object yields nil without error", func(t *testing.T) {
		getter := &fakeObjectGetter{err: &types.NoSuchKey{}}

		reader := NewReader(getter, "videos-bucket", logger.NewNoOpLogger())
		result, err := reader.Fetch(context.Background(), "videos/clip.mp4")
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("payload without best field is rejected", func(t *testing.T) {
		getter := &fakeObjectGetter{body: `{"probabilites": {"Plumbing": 0.91}}`}

		reader := NewReader(getter, "videos-bucket", logger.NewNoOpLogger())
		result, err := reader.Fetch(context.Background(), "videos/clip.mp4")
		require.Error(t, err)
		assert.Nil(t, result)

		var stdErr *errors.StandardError
		require.ErrorAs(t, err, &stdErr)
		assert.Equal(t, errors.ErrCodePredictionInvalid, stdErr.Code)
	})

	t.Run("non-numeric score is rejected", func(t *testing.T) {
		getter := &fakeObjectGetter{body: `{"best": "Plumbing", "probabilites": {"Plumbing": "high"}}`}

		reader := NewReader(getter, "videos-bucket", logger.NewNoOpLogger())
		_, err := reader.Fetch(context.Background(), "videos/clip.mp4")
		require.Error(t, err)
	})

	t.Run("transport error is surfaced", func(t *testing.T) {
		getter := &fakeObjectGetter{err: assert.AnError}

		reader := NewReader(getter, "videos-bucket", logger.NewNoOpLogger())
		_, err := reader.Fetch(context.Background(), "videos/clip.mp4")
		require.Error(t, err)

		var stdErr *errors.StandardError
		require.ErrorAs(t, err, &stdErr)
		assert.Equal(t, errors.ErrCodeExternalCallFailed, stdErr.Code)
	})
}
