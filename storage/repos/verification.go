package storerepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/skillx/skillx/core"
	"github.com/skillx/skillx/core/verification"
)

type verificationRepository struct {
	verifications collection[verification.Verification]
}

var _ verification.Repository = (*verificationRepository)(nil) // interface compliance check

func NewVerificationRepository(store core.Store) verification.Repository {
	return &verificationRepository{
		verifications: collection[verification.Verification]{
			store:    store,
			name:     core.CollVerifications,
			notFound: verification.ErrNotFound,
		},
	}
}

func (repo *verificationRepository) CreateVerification(ctx context.Context, v verification.Verification) (verification.Verification, error) {
	v.ID = newID()
	if err := repo.verifications.insert(ctx, v.ID, v); err != nil {
		return verification.Verification{}, errors.Wrap(err, "inserting verification")
	}
	return v, nil
}

func (repo *verificationRepository) GetVerificationByID(ctx context.Context, id string) (verification.Verification, error) {
	return repo.verifications.get(ctx, id)
}

func (repo *verificationRepository) QueryAllVerifications(ctx context.Context) ([]verification.Verification, error) {
	return repo.verifications.all(ctx)
}

func (repo *verificationRepository) FilterVerifications(
	ctx context.Context,
	filter verification.QueryFilter,
) ([]verification.Verification, error) {
	return repo.verifications.filter(ctx, filter.Match)
}

func (repo *verificationRepository) UpdateVerification(
	ctx context.Context,
	id string,
	fn func(*verification.Verification) error,
) (verification.Verification, error) {
	return repo.verifications.update(ctx, id, fn)
}
