package risk

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// StoreOptions holds S3-compatible object storage settings for the artifact
// fetcher. Endpoint-style access supports R2 and MinIO as well as plain S3.
type StoreOptions struct {
	Bucket    string
	Prefix    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// ArtifactFetcher downloads model artifacts from object storage so an
// operator can replace the model without touching the device filesystem.
type ArtifactFetcher struct {
	downloader *manager.Downloader
	bucket     string
	prefix     string
	log        zerolog.Logger
}

// NewArtifactFetcher creates a fetcher for the configured bucket.
func NewArtifactFetcher(ctx context.Context, opts StoreOptions, log zerolog.Logger) (*ArtifactFetcher, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("artifact store bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load artifact store config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = &opts.Endpoint
			o.UsePathStyle = true
		}
	})

	return &ArtifactFetcher{
		downloader: manager.NewDownloader(client),
		bucket:     opts.Bucket,
		prefix:     opts.Prefix,
		log:        log.With().Str("component", "artifact_store").Logger(),
	}, nil
}

// FetchModelArtifacts downloads the model artifact and column schema into
// the given local paths. Both objects are staged to temp files first and only
// renamed into place once every download has succeeded, so a failed fetch
// leaves the local files untouched and readers never see a mismatched pair.
func (f *ArtifactFetcher) FetchModelArtifacts(ctx context.Context, modelPath, columnsPath string) error {
	downloads := []struct {
		key  string
		dest string
	}{
		{path.Join(f.prefix, filepath.Base(modelPath)), modelPath},
		{path.Join(f.prefix, filepath.Base(columnsPath)), columnsPath},
	}

	staged := make([]string, 0, len(downloads))
	defer func() {
		for _, tmp := range staged {
			os.Remove(tmp)
		}
	}()

	for _, d := range downloads {
		tmp, err := f.stageObject(ctx, d.key, d.dest)
		if err != nil {
			return fmt.Errorf("failed to fetch %s: %w", d.key, err)
		}
		staged = append(staged, tmp)
	}

	for i, d := range downloads {
		if err := os.Rename(staged[i], d.dest); err != nil {
			return fmt.Errorf("failed to move %s into place: %w", d.dest, err)
		}
	}

	f.log.Info().Str("bucket", f.bucket).Msg("Model artifacts fetched from object storage")
	return nil
}

// stageObject downloads one object to a temp file beside its destination and
// returns the temp path. The caller renames it into place.
func (f *ArtifactFetcher) stageObject(ctx context.Context, key, dest string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create staging file: %w", err)
	}
	tmpName := tmp.Name()

	f.log.Debug().Str("key", key).Str("dest", dest).Msg("Downloading artifact")

	_, err = f.downloader.Download(ctx, tmp, &s3.GetObjectInput{
		Bucket: &f.bucket,
		Key:    &key,
	})
	if closeErr := tmp.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("download failed: %w", err)
	}

	return tmpName, nil
}
