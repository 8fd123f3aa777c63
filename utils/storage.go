package utils

import (
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"minevent/config"
)

// PresignTTL bounds how long a signed download URL stays valid.
const PresignTTL = 5 * time.Minute

var s3Client *s3.S3

// InitStorage sets up the S3 client. Credentials come from the SDK's
// default chain (env, shared config, instance role).
func InitStorage() error {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.AppConfig.S3Region),
	})
	if err != nil {
		return fmt.Errorf("failed to create AWS session: %w", err)
	}
	s3Client = s3.New(sess)
	return nil
}

// UploadObject writes the body to the bucket at key, replacing any prior
// object there.
func UploadObject(key, contentType string, body io.ReadSeeker) error {
	if s3Client == nil {
		return fmt.Errorf("storage not initialized")
	}

	_, err := s3Client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(config.AppConfig.S3Bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

// PresignObject returns a time-limited signed read URL for a stored key.
func PresignObject(key string) (string, error) {
	if s3Client == nil {
		return "", fmt.Errorf("storage not initialized")
	}

	req, _ := s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(config.AppConfig.S3Bucket),
		Key:    aws.String(key),
	})
	url, err := req.Presign(PresignTTL)
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return url, nil
}
