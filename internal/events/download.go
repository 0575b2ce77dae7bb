package events

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"github.com/automail/analytics-pipeline/internal/awsclient"
	"github.com/automail/analytics-pipeline/internal/jptime"
)

// Downloader mirrors a day's event-log partition from S3 into a local
// directory.
type Downloader struct {
	client awsclient.S3API
	bucket string
	prefix string // e.g. "email-events"
	log    *logrus.Logger
}

// NewDownloader returns a Downloader for the given bucket and key prefix.
func NewDownloader(client awsclient.S3API, bucket, prefix string, log *logrus.Logger) *Downloader {
	return &Downloader{
		client: client,
		bucket: bucket,
		prefix: prefix,
		log:    log,
	}
}

// DayPrefix is the Hive-style partition path for one day.
func (d *Downloader) DayPrefix(day jptime.CivilDate) string {
	return fmt.Sprintf("%s/year=%04d/month=%02d/day=%02d/", d.prefix, day.Year, int(day.Month), day.Day)
}

// DownloadDay downloads every object under the day's partition prefix into
// localDir. Any pre-existing local copy is deleted first: the local directory
// is a mirror, not a merge target. A download failure does not propagate; the
// caller proceeds with whatever landed (possibly nothing) and the result is
// tagged degraded.
func (d *Downloader) DownloadDay(ctx context.Context, day jptime.CivilDate, localDir string) (degraded bool) {
	if err := os.RemoveAll(localDir); err != nil {
		d.log.Warnf("[WARNING] failed to clear local event dir %s: %v", localDir, err)
		return true
	}
	if err := os.MkdirAll(localDir, 0o755); err != nil {
		d.log.Warnf("[WARNING] failed to create local event dir %s: %v", localDir, err)
		return true
	}

	keyPrefix := d.DayPrefix(day)
	keys, err := d.listKeys(ctx, keyPrefix)
	if err != nil {
		d.log.Warnf("[WARNING] failed to list s3://%s/%s: %v", d.bucket, keyPrefix, err)
		return true
	}
	if len(keys) == 0 {
		d.log.Warnf("[WARNING] no event objects under s3://%s/%s", d.bucket, keyPrefix)
		return false
	}

	dl := manager.NewDownloader(d.client)
	for _, key := range keys {
		if err := d.downloadOne(ctx, dl, key, localDir); err != nil {
			d.log.Warnf("[WARNING] failed to download s3://%s/%s: %v", d.bucket, key, err)
			degraded = true
		}
	}
	d.log.Infof("downloaded %d event objects from s3://%s/%s", len(keys), d.bucket, keyPrefix)
	return degraded
}

func (d *Downloader) listKeys(ctx context.Context, keyPrefix string) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket: &d.bucket,
		Prefix: &keyPrefix,
	}

	var keys []string
	for {
		out, err := d.client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
		for _, obj := range out.Contents {
			if obj.Key == nil || strings.HasSuffix(*obj.Key, "/") {
				continue
			}
			keys = append(keys, *obj.Key)
		}
		if out.IsTruncated == nil || !*out.IsTruncated {
			break
		}
		input.ContinuationToken = out.NextContinuationToken
	}
	return keys, nil
}

func (d *Downloader) downloadOne(ctx context.Context, dl *manager.Downloader, key, localDir string) error {
	target := filepath.Join(localDir, filepath.Base(key))
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	defer f.Close()

	_, err = dl.Download(ctx, f, &s3.GetObjectInput{
		Bucket: &d.bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	return nil
}
