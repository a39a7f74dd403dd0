// Package media stores room images on the media host and returns their
// public URLs.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"golang.org/x/sync/errgroup"
)

var ErrUploadFailed = errors.New("image upload failed")

// File is one uploaded part of a multipart form.
type File struct {
	Name   string
	Reader io.Reader
}

type Uploader interface {
	Upload(ctx context.Context, file File) (string, error)
}

type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
	tags   []string
}

func NewCloudinaryUploader(cld *cloudinary.Cloudinary, folder string) *CloudinaryUploader {
	return &CloudinaryUploader{
		cld:    cld,
		folder: folder,
		tags:   []string{"rooms"},
	}
}

func (u *CloudinaryUploader) Upload(ctx context.Context, file File) (string, error) {
	result, err := u.cld.Upload.Upload(ctx, file.Reader, uploader.UploadParams{
		Folder: u.folder,
		Tags:   u.tags,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUploadFailed, file.Name, err)
	}
	// API level failures come back in the result, not as an error.
	if result.Error.Message != "" {
		return "", fmt.Errorf("%w: %s: %s", ErrUploadFailed, file.Name, result.Error.Message)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("%w: %s: empty url", ErrUploadFailed, file.Name)
	}
	return result.SecureURL, nil
}

// UploadAll uploads files in parallel and returns the URLs in input order.
// The first failure cancels the remaining uploads.
func UploadAll(ctx context.Context, u Uploader, files []File) ([]string, error) {
	urls := make([]string, len(files))
	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			url, err := u.Upload(ctx, f)
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}
