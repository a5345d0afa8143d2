package object

import (
	"context"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

func NewClient(endpoint, accessKey, secretKey string, useSSL bool) (*minio.Client, error) {
	return minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
}

func EnsureBucket(ctx context.Context, client *minio.Client, bucket string) error {
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
}

// PublicBaseURL is the read prefix for objects in the bucket, path-style.
// Every image URL this service hands out is this prefix plus the object
// key, which keeps commit-time prefix checks a plain strings.HasPrefix.
func PublicBaseURL(client *minio.Client, bucket string) string {
	base := strings.TrimSuffix(client.EndpointURL().String(), "/")
	return base + "/" + bucket + "/"
}
