package repository

import (
	"context"

	"github.com/gradeflow/session-gateway/refreshclient"
)

// Course is a teacher's course with its syllabus content.
type Course struct {
	ID          string `json:"_id,omitempty"`
	Title       string `json:"title"`
	Subject     string `json:"subject,omitempty"`
	GradeLevel  string `json:"gradeLevel,omitempty"`
	Description string `json:"description,omitempty"`
	Syllabus    string `json:"syllabus,omitempty"`
	ClassroomID string `json:"classroomId,omitempty"`
}

// CourseInput is the creation payload.
type CourseInput struct {
	Title       string `json:"title"`
	Subject     string `json:"subject,omitempty"`
	GradeLevel  string `json:"gradeLevel,omitempty"`
	Description string `json:"description,omitempty"`
	Syllabus    string `json:"syllabus,omitempty"`
	ClassroomID string `json:"classroomId,omitempty"`
}

type CourseRepository interface {
	CreateCourse(ctx context.Context, course CourseInput) (*APIResponse[Course], error)
	GetCourses(ctx context.Context) (*APIResponse[[]Course], error)
}

// HTTPCourseRepository implements CourseRepository against the backend.
type HTTPCourseRepository struct {
	httpRepository
}

var _ CourseRepository = (*HTTPCourseRepository)(nil)

func NewHTTPCourseRepository(baseURL string, client Doer, store refreshclient.TokenStore) *HTTPCourseRepository {
	return &HTTPCourseRepository{newHTTPRepository(baseURL, client, store)}
}

func (r *HTTPCourseRepository) CreateCourse(ctx context.Context, course CourseInput) (*APIResponse[Course], error) {
	var out APIResponse[Course]
	if err := r.post(ctx, "/api/courses", course, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *HTTPCourseRepository) GetCourses(ctx context.Context) (*APIResponse[[]Course], error) {
	var out APIResponse[[]Course]
	if err := r.get(ctx, "/api/courses/all", &out); err != nil {
		return nil, err
	}
	return &out, nil
}
