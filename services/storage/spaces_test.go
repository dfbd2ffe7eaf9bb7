package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	s3iface.S3API
	puts    []*s3.PutObjectInput
	deletes []*s3.DeleteObjectInput
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, in)
	return &s3.DeleteObjectOutput{}, nil
}

func TestUploadReturnsPublicURL(t *testing.T) {
	api := &fakeS3{}
	client := newSpacesClient(api, "media", "nyc3.digitaloceanspaces.com", "")

	url, err := client.Upload(context.Background(), "thumbnails/1.png", strings.NewReader("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "https://media.nyc3.digitaloceanspaces.com/thumbnails/1.png", url)

	require.Len(t, api.puts, 1)
	assert.Equal(t, "media", aws.StringValue(api.puts[0].Bucket))
	assert.Equal(t, "public-read", aws.StringValue(api.puts[0].ACL))
	assert.Equal(t, "image/png", aws.StringValue(api.puts[0].ContentType))

	key, ok := client.KeyFromURL(url)
	assert.True(t, ok)
	assert.Equal(t, "thumbnails/1.png", key)

	_, ok = client.KeyFromURL("https://example.com/thumb.png")
	assert.False(t, ok)
}

func TestCDNURL(t *testing.T) {
	client := newSpacesClient(&fakeS3{}, "media", "nyc3.digitaloceanspaces.com", "https://cdn.example.com/")
	assert.Equal(t, "https://cdn.example.com/a/b.png", client.URL("a/b.png"))

	key, ok := client.KeyFromURL("https://cdn.example.com/a/b.png")
	assert.True(t, ok)
	assert.Equal(t, "a/b.png", key)
}

func TestGenerateKey(t *testing.T) {
	key := GenerateKey("thumbnails/7", "My Cover!.PNG")
	assert.True(t, strings.HasPrefix(key, "thumbnails/7/"))
	assert.True(t, strings.HasSuffix(key, "_My-Cover-.png"))
}

func TestImageContentType(t *testing.T) {
	ct, ok := ImageContentType("a.JPG")
	assert.True(t, ok)
	assert.Equal(t, "image/jpeg", ct)

	_, ok = ImageContentType("a.pdf")
	assert.False(t, ok)
}

func TestSpacesConfigEnabled(t *testing.T) {
	assert.False(t, SpacesConfig{}.Enabled())
	assert.True(t, SpacesConfig{Bucket: "b", AccessKey: "k", SecretKey: "s"}.Enabled())
}
