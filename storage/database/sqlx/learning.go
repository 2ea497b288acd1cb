package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/haven/core/learning"
)

const (
	courseColumns   = "id, title, description, icon, color, modules, duration, created_at"
	enrollmentQuery = `SELECT e.id, e.account_id, e.course_id, c.title AS course_title, e.progress, e.completed,
	e.certificate_earned, e.certificate_url, e.enrolled_at
	FROM enrollments e JOIN courses c ON c.id = e.course_id`
)

type learningRepository struct {
	db *DB
}

var _ learning.Repository = (*learningRepository)(nil) // interface compliance check

func NewLearningRepository(db *DB) *learningRepository {
	return &learningRepository{db: db}
}

func (repo *learningRepository) CreateCourse(ctx context.Context, c learning.Course) (learning.Course, error) {
	q := `INSERT INTO courses (` + courseColumns + `)
		VALUES (:id, :title, :description, :icon, :color, :modules, :duration, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.db.exec(ctx), q, c); err != nil {
		return learning.Course{}, errors.Wrap(err, "inserting course")
	}
	return c, nil
}

func (repo *learningRepository) GetCourse(ctx context.Context, id string) (learning.Course, error) {
	var c learning.Course
	q := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	if err := sqlx.GetContext(ctx, repo.db.exec(ctx), &c, q, id); err != nil {
		return learning.Course{}, trapNoRowsErr(err, learning.ErrCourseNotFound, "finding course")
	}
	return c, nil
}

func (repo *learningRepository) ListCourses(ctx context.Context) ([]learning.Course, error) {
	courses := make([]learning.Course, 0)
	q := `SELECT ` + courseColumns + ` FROM courses ORDER BY title, id`
	if err := sqlx.SelectContext(ctx, repo.db.exec(ctx), &courses, q); err != nil {
		return nil, errors.Wrap(err, "listing courses")
	}
	return courses, nil
}

func (repo *learningRepository) CreateEnrollment(ctx context.Context, e learning.Enrollment) (learning.Enrollment, error) {
	q := `INSERT INTO enrollments (id, account_id, course_id, progress, completed, certificate_earned, certificate_url, enrolled_at)
		VALUES (:id, :account_id, :course_id, :progress, :completed, :certificate_earned, :certificate_url, :enrolled_at)`
	if _, err := sqlx.NamedExecContext(ctx, repo.db.exec(ctx), q, e); err != nil {
		if isUniqueViolation(err, "enrollments_account_course_key") {
			return learning.Enrollment{}, learning.ErrAlreadyEnrolled
		}
		return learning.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return e, nil
}

func (repo *learningRepository) GetEnrollment(ctx context.Context, id string) (learning.Enrollment, error) {
	var e learning.Enrollment
	if err := sqlx.GetContext(ctx, repo.db.exec(ctx), &e, enrollmentQuery+" WHERE e.id = $1", id); err != nil {
		return learning.Enrollment{}, trapNoRowsErr(err, learning.ErrEnrollmentNotFound, "finding enrollment")
	}
	return e, nil
}

func (repo *learningRepository) ListEnrollments(ctx context.Context, accountID string) ([]learning.Enrollment, error) {
	enrollments := make([]learning.Enrollment, 0)
	q := enrollmentQuery + " WHERE e.account_id = $1 ORDER BY e.enrolled_at, e.id"
	if err := sqlx.SelectContext(ctx, repo.db.exec(ctx), &enrollments, q, accountID); err != nil {
		return nil, errors.Wrap(err, "listing enrollments")
	}
	return enrollments, nil
}

func (repo *learningRepository) UpdateEnrollment(ctx context.Context, e learning.Enrollment) (learning.Enrollment, error) {
	q := `UPDATE enrollments SET
		progress = :progress, completed = :completed, certificate_earned = :certificate_earned, certificate_url = :certificate_url
		WHERE id = :id`
	res, err := sqlx.NamedExecContext(ctx, repo.db.exec(ctx), q, e)
	if err != nil {
		return learning.Enrollment{}, errors.Wrap(err, "updating enrollment")
	}
	if err = checkAffected(res, learning.ErrEnrollmentNotFound, "updating enrollment"); err != nil {
		return learning.Enrollment{}, err
	}
	return e, nil
}
