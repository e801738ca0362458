package s3

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fs = afero.Afero{Fs: afero.NewMemMapFs()}

func tempFile(t *testing.T) afero.File {
	file, err := fs.TempFile("", "")
	require.NoError(t, err)
	t.Logf("Created temporary file: %s", file.Name())
	return file
}

type mockS3Client struct {
	s3iface.S3API
	f      afero.File
	bucket string
	key    string
}

func (c *mockS3Client) GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error) {
	c.bucket, c.key = aws.StringValue(input.Bucket), aws.StringValue(input.Key)
	return &s3.GetObjectOutput{
		Body:         c.f,
		ContentRange: aws.String("1"),
	}, nil
}

func TestObjectStorage_Fetch(t *testing.T) {
	const want = `<resource><titles><title>Hello world!</title></titles></resource>`

	fi := tempFile(t)
	defer fi.Close()
	fmt.Fprint(fi, want)
	fi.Seek(0, 0)

	s3c := &mockS3Client{f: fi}
	client := newWithClient(s3c)

	_, err := client.Fetch(context.TODO(), "[invalid-url]:12345")
	assert.Error(t, err)

	have, err := client.Fetch(context.TODO(), "s3://datacite-inbox/2023/resource.xml")
	require.NoError(t, err)
	assert.Equal(t, want, string(have))
	assert.Equal(t, "datacite-inbox", s3c.bucket)
	assert.Equal(t, "2023/resource.xml", s3c.key)
}

func TestObjectStorage_UploadInvalidURI(t *testing.T) {
	client := newWithClient(&mockS3Client{})

	err := client.Upload(context.TODO(), strings.NewReader("{}"), "/tmp/out.json", "application/json")
	assert.EqualError(t, err, `invalid object URI "/tmp/out.json": scheme must be s3`)
}

func TestIsObjectURI(t *testing.T) {
	assert.True(t, IsObjectURI("s3://bucket/key.xml"))
	assert.True(t, IsObjectURI("S3://bucket/key.xml"))
	assert.False(t, IsObjectURI("/var/data/key.xml"))
	assert.False(t, IsObjectURI("https://bucket.s3.amazonaws.com/key.xml"))
}

func Test_getBucketAndKey(t *testing.T) {
	testCases := []struct {
		url     string
		bucket  string
		key     string
		wantErr bool
	}{
		{"s3://rdss-bucker-2344/filename.xml", "rdss-bucker-2344", "filename.xml", false},
		{"s3://a-different-bucket/wqefqwef/datacite.xml", "a-different-bucket", "wqefqwef/datacite.xml", false},
		{"s3://bucket-only", "", "", true},
		{"file:///etc/passwd", "", "", true},
		{"[invalid-url]:12345", "", "", true},
	}
	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			bucket, key, err := getBucketAndKey(tc.url)
			if tc.wantErr {
				assert.Error(t, err)
				assert.Empty(t, bucket)
				assert.Empty(t, key)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.bucket, bucket)
			assert.Equal(t, tc.key, key)
		})
	}
}
