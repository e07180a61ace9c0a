package storerepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/skillx/skillx/core"
	"github.com/skillx/skillx/core/video"
)

type videoRepository struct {
	videos collection[video.Video]
}

var _ video.Repository = (*videoRepository)(nil) // interface compliance check

func NewVideoRepository(store core.Store) video.Repository {
	return &videoRepository{
		videos: collection[video.Video]{store: store, name: core.CollVideos, notFound: video.ErrNotFound},
	}
}

func (repo *videoRepository) CreateVideo(ctx context.Context, v video.Video) (video.Video, error) {
	v.ID = newID()
	if err := repo.videos.insert(ctx, v.ID, v); err != nil {
		return video.Video{}, errors.Wrap(err, "inserting video")
	}
	return v, nil
}

func (repo *videoRepository) QueryAllVideos(ctx context.Context) ([]video.Video, error) {
	return repo.videos.all(ctx)
}

func (repo *videoRepository) FilterVideos(ctx context.Context, filter video.QueryFilter) ([]video.Video, error) {
	return repo.videos.filter(ctx, filter.Match)
}
