package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hupe1980/pamgo/blobstore"
	minioblob "github.com/hupe1980/pamgo/blobstore/minio"
	s3blob "github.com/hupe1980/pamgo/blobstore/s3"
)

// artifactRef locates a remote artifact.
//
//	s3://bucket/key             AWS S3, credentials from the default chain
//	minio://endpoint/bucket/key MinIO, credentials from the environment
type artifactRef struct {
	scheme   string
	endpoint string
	bucket   string
	key      string
}

// parseArtifactURI splits a remote artifact URI. ok is false for plain
// file paths.
func parseArtifactURI(raw string) (ref artifactRef, ok bool, err error) {
	if !strings.Contains(raw, "://") {
		return artifactRef{}, false, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return artifactRef{}, false, fmt.Errorf("parsing artifact URI %q: %w", raw, err)
	}

	switch u.Scheme {
	case "s3":
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return artifactRef{}, false, fmt.Errorf("artifact URI %q needs s3://bucket/key", raw)
		}
		return artifactRef{scheme: "s3", bucket: u.Host, key: key}, true, nil
	case "minio":
		bucket, key, found := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
		if u.Host == "" || !found || bucket == "" || key == "" {
			return artifactRef{}, false, fmt.Errorf("artifact URI %q needs minio://endpoint/bucket/key", raw)
		}
		return artifactRef{scheme: "minio", endpoint: u.Host, bucket: bucket, key: key}, true, nil
	default:
		return artifactRef{}, false, fmt.Errorf("unsupported artifact scheme %q", u.Scheme)
	}
}

// openStore connects the store behind ref, optionally wrapped with a
// local disk cache.
func openStore(ctx context.Context, ref artifactRef, cacheDir string) (blobstore.Store, error) {
	var store blobstore.Store

	switch ref.scheme {
	case "s3":
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		store = s3blob.NewStore(awss3.NewFromConfig(cfg), ref.bucket, "")
	case "minio":
		client, err := miniogo.New(ref.endpoint, &miniogo.Options{
			Creds:  credentials.NewEnvMinio(),
			Secure: true,
		})
		if err != nil {
			return nil, fmt.Errorf("connecting to MinIO %s: %w", ref.endpoint, err)
		}
		store = minioblob.NewStore(client, ref.bucket, "")
	default:
		return nil, fmt.Errorf("unsupported artifact scheme %q", ref.scheme)
	}

	if cacheDir != "" {
		store = blobstore.NewCachingStore(store, cacheDir)
	}
	return store, nil
}

// fetchToFile downloads an artifact into dir, preserving its base name so
// extension-driven decompression keeps working.
func fetchToFile(ctx context.Context, store blobstore.Store, key, dir string) (string, error) {
	data, err := blobstore.ReadAll(ctx, store, key)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", key, err)
	}

	local := filepath.Join(dir, path.Base(key))
	if err := os.WriteFile(local, data, 0o600); err != nil {
		return "", err
	}
	return local, nil
}
