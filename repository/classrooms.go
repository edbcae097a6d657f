package repository

import (
	"context"

	"github.com/gradeflow/session-gateway/refreshclient"
)

// Classroom is a teacher's classroom record.
type Classroom struct {
	ID       string `json:"_id,omitempty"`
	Name     string `json:"name"`
	Grade    string `json:"grade,omitempty"`
	Subject  string `json:"subject,omitempty"`
	Students int    `json:"students,omitempty"`
}

// Student is a classroom member as the backend reports it.
type Student struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	ClassroomIDs []string `json:"classroomIds,omitempty"`
	Submissions  int      `json:"submissions,omitempty"`
	LastActive   string   `json:"lastActive,omitempty"`
}

// CoTeacher is a co-teaching assignment on a classroom.
type CoTeacher struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Role         string   `json:"role,omitempty"`
	Status       string   `json:"status,omitempty"`
	ClassroomIDs []string `json:"classroomIds,omitempty"`
}

// memberInput adds a student or co-teacher to a classroom.
type memberInput struct {
	ClassroomID   string `json:"classroomId,omitempty"`
	SelectedClass string `json:"selectedClass,omitempty"`
	Name          string `json:"name"`
	Email         string `json:"email"`
}

// Member is the minimal record returned after adding someone.
type Member struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ClassroomRepository interface {
	GetClassrooms(ctx context.Context) (*APIResponse[[]Classroom], error)
	GetStudents(ctx context.Context, classroomID string) (*APIResponse[[]Student], error)
	GetCoTeachers(ctx context.Context, classroomID string) (*APIResponse[[]CoTeacher], error)
	AddStudent(ctx context.Context, classroomID, selectedClass, name, email string) (*APIResponse[Member], error)
	AddCoTeacher(ctx context.Context, classroomID, selectedClass, name, email string) (*APIResponse[Member], error)
}

// HTTPClassroomRepository implements ClassroomRepository against the backend.
type HTTPClassroomRepository struct {
	httpRepository
}

var _ ClassroomRepository = (*HTTPClassroomRepository)(nil)

func NewHTTPClassroomRepository(baseURL string, client Doer, store refreshclient.TokenStore) *HTTPClassroomRepository {
	return &HTTPClassroomRepository{newHTTPRepository(baseURL, client, store)}
}

func (r *HTTPClassroomRepository) GetClassrooms(ctx context.Context) (*APIResponse[[]Classroom], error) {
	var out APIResponse[[]Classroom]
	if err := r.get(ctx, "/api/classrooms/all", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *HTTPClassroomRepository) GetStudents(ctx context.Context, classroomID string) (*APIResponse[[]Student], error) {
	var out APIResponse[[]Student]
	if err := r.get(ctx, "/api/classrooms/students"+classroomQuery(classroomID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *HTTPClassroomRepository) GetCoTeachers(ctx context.Context, classroomID string) (*APIResponse[[]CoTeacher], error) {
	var out APIResponse[[]CoTeacher]
	if err := r.get(ctx, "/api/classrooms/co-teachers"+classroomQuery(classroomID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *HTTPClassroomRepository) AddStudent(ctx context.Context, classroomID, selectedClass, name, email string) (*APIResponse[Member], error) {
	var out APIResponse[Member]
	input := memberInput{ClassroomID: classroomID, SelectedClass: selectedClass, Name: name, Email: email}
	if err := r.post(ctx, "/api/classrooms/students", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *HTTPClassroomRepository) AddCoTeacher(ctx context.Context, classroomID, selectedClass, name, email string) (*APIResponse[Member], error) {
	var out APIResponse[Member]
	input := memberInput{ClassroomID: classroomID, SelectedClass: selectedClass, Name: name, Email: email}
	if err := r.post(ctx, "/api/classrooms/co-teachers", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func classroomQuery(classroomID string) string {
	if classroomID == "" {
		return ""
	}
	return "?classroomId=" + classroomID
}
