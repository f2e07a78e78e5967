// Package attachment runs uploaded pictures through validation and normalization and
// stores them under public keys.
package attachment

import (
	"civictriage/backend/internal/imaging"
	"civictriage/backend/internal/metrics"
	"civictriage/backend/internal/models"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/apex/log"
)

// BlobStore keeps attachment bytes under a key.
type BlobStore interface {
	PutAttachment(ctx context.Context, attachment *models.Attachment) error
}

// Progress is called after each stored file with the number done so far.
type Progress func(done, total int)

type Uploader struct {
	Store   BlobStore
	BaseURL string
	Now     func() time.Time
}

func NewUploader(store BlobStore, baseURL string) *Uploader {
	return &Uploader{
		Store:   store,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Now:     time.Now,
	}
}

// PublicURL is where a stored attachment is served.
func (u *Uploader) PublicURL(key string) string {
	return u.BaseURL + "/attachments/" + key
}

// UploadAll processes files in order and returns their public URLs. The first failure
// stops the batch; files stored before it are not removed.
func (u *Uploader) UploadAll(ctx context.Context, files []imaging.File, progress Progress) ([]string, error) {
	urls := make([]string, 0, len(files))
	for i, f := range files {
		url, err := u.upload(ctx, f)
		if err != nil {
			metrics.AttachmentsTotal.WithLabelValues("failed").Inc()
			log.WithError(err).WithField("name", f.Name).Warn("attachment upload aborted")
			return nil, err
		}
		urls = append(urls, url)
		if progress != nil {
			progress(i+1, len(files))
		}
	}
	return urls, nil
}

func (u *Uploader) upload(ctx context.Context, f imaging.File) (string, error) {
	if f.ContentType == "" {
		f.ContentType = imaging.Detect(f.Data)
	}
	if err := imaging.Validate(int64(len(f.Data)), f.ContentType); err != nil {
		return "", err
	}

	now := u.Now()
	res, err := imaging.Normalize(f, now)
	if err != nil {
		return "", fmt.Errorf("failed to process %s: %w", f.Name, err)
	}

	key := fmt.Sprintf("%d_%s", now.UnixMilli(), res.File.Name)
	err = u.Store.PutAttachment(ctx, &models.Attachment{
		Key:         key,
		ContentType: res.File.ContentType,
		Size:        len(res.File.Data),
		Data:        res.File.Data,
	})
	if err != nil {
		return "", err
	}

	if res.WasCompressed {
		metrics.AttachmentsTotal.WithLabelValues("compressed").Inc()
	} else {
		metrics.AttachmentsTotal.WithLabelValues("stored").Inc()
	}
	return u.PublicURL(key), nil
}
