package storerepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/skillx/skillx/core"
	"github.com/skillx/skillx/core/enrollment"
)

var errPaymentNotFound = errors.New("payment not found")

type enrollmentRepository struct {
	enrollments collection[enrollment.Enrollment]
	payments    collection[enrollment.Payment]
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(store core.Store) enrollment.Repository {
	return &enrollmentRepository{
		enrollments: collection[enrollment.Enrollment]{store: store, name: core.CollEnrollments, notFound: enrollment.ErrNotFound},
		payments:    collection[enrollment.Payment]{store: store, name: core.CollPayments, notFound: errPaymentNotFound},
	}
}

func (repo *enrollmentRepository) CreateEnrollment(ctx context.Context, e enrollment.Enrollment) (enrollment.Enrollment, error) {
	e.ID = newID()
	if err := repo.enrollments.insert(ctx, e.ID, e); err != nil {
		return enrollment.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return e, nil
}

func (repo *enrollmentRepository) GetEnrollmentByID(ctx context.Context, id string) (enrollment.Enrollment, error) {
	return repo.enrollments.get(ctx, id)
}

func (repo *enrollmentRepository) QueryAllEnrollments(ctx context.Context) ([]enrollment.Enrollment, error) {
	return repo.enrollments.all(ctx)
}

func (repo *enrollmentRepository) FilterEnrollments(ctx context.Context, filter enrollment.QueryFilter) ([]enrollment.Enrollment, error) {
	return repo.enrollments.filter(ctx, filter.Match)
}

func (repo *enrollmentRepository) UpdateEnrollment(
	ctx context.Context,
	id string,
	fn func(*enrollment.Enrollment) error,
) (enrollment.Enrollment, error) {
	return repo.enrollments.update(ctx, id, fn)
}

func (repo *enrollmentRepository) CreatePayment(ctx context.Context, p enrollment.Payment) (enrollment.Payment, error) {
	p.ID = newID()
	if err := repo.payments.insert(ctx, p.ID, p); err != nil {
		return enrollment.Payment{}, errors.Wrap(err, "inserting payment")
	}
	return p, nil
}

func (repo *enrollmentRepository) QueryAllPayments(ctx context.Context) ([]enrollment.Payment, error) {
	return repo.payments.all(ctx)
}

func (repo *enrollmentRepository) FilterPayments(ctx context.Context, filter enrollment.PaymentFilter) ([]enrollment.Payment, error) {
	return repo.payments.filter(ctx, filter.Match)
}
