package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.body = string(data)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestPutObjectUploadsToBucket(t *testing.T) {
	t.Parallel()

	fake := &fakeS3{}
	store, err := newWithClient(fake, "photos")
	require.NoError(t, err)

	uri, err := store.PutObject(context.Background(), "singles/42.jpg", "image/jpeg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "s3://photos/singles/42.jpg", uri)
	assert.Equal(t, "photos", aws.ToString(fake.input.Bucket))
	assert.Equal(t, "singles/42.jpg", aws.ToString(fake.input.Key))
	assert.Equal(t, "image/jpeg", aws.ToString(fake.input.ContentType))
	assert.Equal(t, int64(len("jpeg-bytes")), aws.ToInt64(fake.input.ContentLength))
	assert.Equal(t, "jpeg-bytes", fake.body)
}

func TestPutObjectWrapsClientError(t *testing.T) {
	t.Parallel()

	denied := errors.New("AccessDenied")
	store, err := newWithClient(&fakeS3{err: denied}, "photos")
	require.NoError(t, err)

	_, err = store.PutObject(context.Background(), "a.jpg", "", strings.NewReader("x"))
	require.ErrorIs(t, err, denied)
}

func TestValidation(t *testing.T) {
	t.Parallel()

	_, err := newWithClient(nil, "photos")
	require.Error(t, err)
	_, err = newWithClient(&fakeS3{}, "")
	require.Error(t, err)
	_, err = New(context.Background(), Config{})
	require.Error(t, err)

	store, err := newWithClient(&fakeS3{}, "photos")
	require.NoError(t, err)
	_, err = store.PutObject(context.Background(), "", "", strings.NewReader("x"))
	require.Error(t, err)
}
