package repository

import (
	"context"

	"github.com/gradeflow/session-gateway/refreshclient"
)

// Assignment is an assignment with optionally generated content.
type Assignment struct {
	ID           string   `json:"_id,omitempty"`
	Title        string   `json:"title"`
	CourseID     string   `json:"courseId,omitempty"`
	Instructions string   `json:"instructions,omitempty"`
	Rubric       string   `json:"rubric,omitempty"`
	Questions    []string `json:"questions,omitempty"`
	DueDate      string   `json:"dueDate,omitempty"`
}

// AssignmentInput is the creation/generation payload.
type AssignmentInput struct {
	Title        string `json:"title"`
	CourseID     string `json:"courseId,omitempty"`
	Topic        string `json:"topic,omitempty"`
	Instructions string `json:"instructions,omitempty"`
	DueDate      string `json:"dueDate,omitempty"`
}

type AssignmentRepository interface {
	CreateAssignment(ctx context.Context, input AssignmentInput) (*APIResponse[Assignment], error)
	GetAssignments(ctx context.Context) (*APIResponse[[]Assignment], error)
	GenerateAssignmentContent(ctx context.Context, input AssignmentInput) (*APIResponse[Assignment], error)
}

// HTTPAssignmentRepository implements AssignmentRepository against the backend.
type HTTPAssignmentRepository struct {
	httpRepository
}

var _ AssignmentRepository = (*HTTPAssignmentRepository)(nil)

func NewHTTPAssignmentRepository(baseURL string, client Doer, store refreshclient.TokenStore) *HTTPAssignmentRepository {
	return &HTTPAssignmentRepository{newHTTPRepository(baseURL, client, store)}
}

func (r *HTTPAssignmentRepository) CreateAssignment(ctx context.Context, input AssignmentInput) (*APIResponse[Assignment], error) {
	var out APIResponse[Assignment]
	if err := r.post(ctx, "/api/assignments", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *HTTPAssignmentRepository) GetAssignments(ctx context.Context) (*APIResponse[[]Assignment], error) {
	var out APIResponse[[]Assignment]
	if err := r.get(ctx, "/api/assignments/all", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateAssignmentContent asks the backend to draft instructions, rubric
// and questions for the given topic. Generation lives entirely behind the
// backend; the gateway just forwards the request.
func (r *HTTPAssignmentRepository) GenerateAssignmentContent(ctx context.Context, input AssignmentInput) (*APIResponse[Assignment], error) {
	var out APIResponse[Assignment]
	if err := r.post(ctx, "/api/assignments/generate", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
