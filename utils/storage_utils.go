package utils

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// StorageConfig describes an S3-compatible bucket for item images.
type StorageConfig struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PublicURL string
}

// ImageUploader puts item images into object storage so documents can carry
// a URL instead of an inline payload.
type ImageUploader struct {
	client    s3iface.S3API
	bucket    string
	publicURL string
}

func NewImageUploader(cfg StorageConfig) (*ImageUploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is empty")
	}
	awsCfg := &aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create storage session: %w", err)
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		if cfg.Endpoint != "" {
			publicURL = fmt.Sprintf("%s/%s", strings.TrimRight(cfg.Endpoint, "/"), cfg.Bucket)
		} else {
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}
	return NewImageUploaderWithClient(s3.New(sess), cfg.Bucket, publicURL), nil
}

func NewImageUploaderWithClient(client s3iface.S3API, bucket, publicURL string) *ImageUploader {
	return &ImageUploader{client: client, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

// Upload stores data under folder/fileName and returns its public URL.
func (u *ImageUploader) Upload(data []byte, fileName, folder, contentType string) (string, error) {
	filePath := fmt.Sprintf("%s/%s", folder, fileName)

	_, err := u.client.PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(filePath),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("unable to upload file to storage: %w", err)
	}

	return fmt.Sprintf("%s/%s", u.publicURL, filePath), nil
}
