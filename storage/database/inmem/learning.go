package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/haven/core/learning"
)

type learningRepository struct {
	db *DB
}

var _ learning.Repository = (*learningRepository)(nil) // interface compliance check

func NewLearningRepository(db *DB) *learningRepository {
	return &learningRepository{db: db}
}

func (repo *learningRepository) CreateCourse(ctx context.Context, c learning.Course) (learning.Course, error) {
	err := repo.db.write(ctx, func(t *tables) error {
		t.courses[c.ID] = c
		return nil
	})
	return c, err
}

func (repo *learningRepository) GetCourse(_ context.Context, id string) (learning.Course, error) {
	var (
		c  learning.Course
		ok bool
	)
	_ = repo.db.read(func(t *tables) error {
		c, ok = t.courses[id]
		return nil
	})
	if !ok {
		return learning.Course{}, learning.ErrCourseNotFound
	}
	return c, nil
}

func (repo *learningRepository) ListCourses(_ context.Context) ([]learning.Course, error) {
	courses := make([]learning.Course, 0)
	_ = repo.db.read(func(t *tables) error {
		for _, c := range t.courses {
			courses = append(courses, c)
		}
		return nil
	})
	sort.Slice(courses, func(i, j int) bool {
		if courses[i].Title != courses[j].Title {
			return courses[i].Title < courses[j].Title
		}
		return courses[i].ID < courses[j].ID
	})
	return courses, nil
}

func (repo *learningRepository) CreateEnrollment(ctx context.Context, e learning.Enrollment) (learning.Enrollment, error) {
	err := repo.db.write(ctx, func(t *tables) error {
		course, ok := t.courses[e.CourseID]
		if !ok {
			return learning.ErrCourseNotFound
		}
		for _, other := range t.enrollments {
			if other.AccountID == e.AccountID && other.CourseID == e.CourseID {
				return learning.ErrAlreadyEnrolled
			}
		}
		e.CourseTitle = course.Title
		t.enrollments[e.ID] = e
		return nil
	})
	if err != nil {
		return learning.Enrollment{}, err
	}
	return e, nil
}

func withCourseTitle(t *tables, e learning.Enrollment) learning.Enrollment {
	if c, ok := t.courses[e.CourseID]; ok {
		e.CourseTitle = c.Title
	}
	return e
}

func (repo *learningRepository) GetEnrollment(_ context.Context, id string) (learning.Enrollment, error) {
	var (
		e  learning.Enrollment
		ok bool
	)
	_ = repo.db.read(func(t *tables) error {
		if e, ok = t.enrollments[id]; ok {
			e = withCourseTitle(t, e)
		}
		return nil
	})
	if !ok {
		return learning.Enrollment{}, learning.ErrEnrollmentNotFound
	}
	return e, nil
}

func (repo *learningRepository) ListEnrollments(_ context.Context, accountID string) ([]learning.Enrollment, error) {
	enrollments := make([]learning.Enrollment, 0)
	_ = repo.db.read(func(t *tables) error {
		for _, e := range t.enrollments {
			if e.AccountID == accountID {
				enrollments = append(enrollments, withCourseTitle(t, e))
			}
		}
		return nil
	})
	sort.Slice(enrollments, func(i, j int) bool {
		if !enrollments[i].EnrolledAt.Equal(enrollments[j].EnrolledAt) {
			return enrollments[i].EnrolledAt.Before(enrollments[j].EnrolledAt)
		}
		return enrollments[i].ID < enrollments[j].ID
	})
	return enrollments, nil
}

func (repo *learningRepository) UpdateEnrollment(ctx context.Context, e learning.Enrollment) (learning.Enrollment, error) {
	err := repo.db.write(ctx, func(t *tables) error {
		if _, ok := t.enrollments[e.ID]; !ok {
			return learning.ErrEnrollmentNotFound
		}
		t.enrollments[e.ID] = e
		return nil
	})
	if err != nil {
		return learning.Enrollment{}, err
	}
	return e, nil
}
