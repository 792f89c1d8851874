// Package s3 is the object-storage client used for raw content
// uploads. It works against AWS S3 or any S3-compatible endpoint
// (minio and friends).
package s3

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3 struct {
	Endpoint string
	Region   string
	Bucket   string
	ak       string
	sk       string
	cli      *s3.Client
}

func NewS3Client(endpoint, region, bucket, ak, sk string) *S3 {
	cli := &S3{
		Endpoint: endpoint,
		Region:   region,
		Bucket:   bucket,
		ak:       ak,
		sk:       sk,
	}

	if err := cli.setup(context.Background()); err != nil {
		panic(err)
	}

	return cli
}

func (s *S3) setup(ctx context.Context) error {
	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithCredentialsProvider(credentials.StaticCredentialsProvider{
			Value: aws.Credentials{
				AccessKeyID: s.ak, SecretAccessKey: s.sk,
			},
		}),
		config.WithRegion(s.Region),
		config.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:           s.Endpoint,
				SigningRegion: s.Region,
			}, nil
		})))
	if err != nil {
		return err
	}

	s.cli = s3.NewFromConfig(cfg)
	return nil
}

// GenGetObjectPreSignURL returns a short-lived download URL for a
// stored object.
func (s *S3) GenGetObjectPreSignURL(filePath string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	presign := s3.NewPresignClient(s.cli)
	req, err := presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(strings.TrimPrefix(filePath, "/")),
	}, s3.WithPresignExpires(time.Minute*5))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

type GetObjectResult struct {
	File     []byte
	FileType string
}

func (s *S3) GetObject(ctx context.Context, key string) (*GetObjectResult, error) {
	key = strings.TrimPrefix(key, "/")

	resp, err := s.cli.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	fileContent, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	// Sniff MIME type from the first 512 bytes.
	probe := fileContent
	if len(probe) > 512 {
		probe = probe[:512]
	}

	return &GetObjectResult{
		File:     fileContent,
		FileType: http.DetectContentType(probe),
	}, nil
}

func (s *S3) Upload(ctx context.Context, fullPath string, body io.Reader) error {
	uploader := manager.NewUploader(s.cli)
	_, err := uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(strings.TrimPrefix(fullPath, "/")),
		Body:   body,
	})
	return err
}

func (s *S3) UploadBytes(ctx context.Context, fullPath string, raw []byte) error {
	return s.Upload(ctx, fullPath, bytes.NewReader(raw))
}

func (s *S3) Delete(ctx context.Context, fullPath string) error {
	_, err := s.cli.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(strings.TrimPrefix(fullPath, "/")),
	})
	return err
}
