package blob

import (
	"bytes"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"adhok_platform/internal/config"
)

// Client uploads resumes, briefs and submitted deliverable files to an
// S3-compatible object store and hands back public URLs.
type Client struct {
	s3       *s3.S3
	bucket   string
	endpoint string
}

func New(cfg config.S3Config) (*Client, error) {
	const op = "blob.New"

	sess, err := session.NewSession(&aws.Config{
		Region:   aws.String(cfg.Region),
		Endpoint: aws.String(cfg.Endpoint),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKey, cfg.SecretKey, "",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Client{
		s3:       s3.New(sess),
		bucket:   cfg.Bucket,
		endpoint: cfg.Endpoint,
	}, nil
}

// Upload stores the file under the given key and returns its public URL.
func (c *Client) Upload(file []byte, key, contentType string) (string, error) {
	const op = "blob.Upload"

	_, err := c.s3.PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(file),
		ContentLength: aws.Int64(int64(len(file))),
		ContentType:   aws.String(contentType),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return c.PublicUrl(key), nil
}

func (c *Client) PublicUrl(key string) string {
	return fmt.Sprintf("%s/%s/%s", c.endpoint, c.bucket, key)
}
