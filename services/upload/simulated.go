package uploadsvc

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/skillx/skillx/core/video"
)

var ErrInvalidFileName = errors.New("invalid file name")

// SimulatedUploader pretends to store files. Only the cleaned base name is kept.
type SimulatedUploader struct {
	delay time.Duration
}

var _ video.Uploader = (*SimulatedUploader)(nil)

func NewSimulatedUploader(delay time.Duration) *SimulatedUploader {
	return &SimulatedUploader{delay: delay}
}

func (up *SimulatedUploader) Upload(ctx context.Context, fileName string) (string, error) {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(fileName), "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "", ErrInvalidFileName
	}

	if up.delay > 0 {
		timer := time.NewTimer(up.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return "", err
	}
	return name, nil
}
