package repository_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	errs "github.com/gradeflow/session-gateway/internal/errors"
	"github.com/gradeflow/session-gateway/refreshclient"
	"github.com/gradeflow/session-gateway/repository"
)

func TestRepositoriesRejectWithoutToken(t *testing.T) {
	store := refreshclient.NewMemoryTokenStore("", "")
	client := &http.Client{}
	ctx := context.Background()

	courses := repository.NewHTTPCourseRepository("http://backend.invalid", client, store)
	assignments := repository.NewHTTPAssignmentRepository("http://backend.invalid", client, store)
	classrooms := repository.NewHTTPClassroomRepository("http://backend.invalid", client, store)

	// The base URL is unroutable on purpose: a network attempt would fail
	// loudly rather than pass.
	_, err := courses.GetCourses(ctx)
	require.ErrorIs(t, err, errs.ErrNoAuthToken)

	_, err = courses.CreateCourse(ctx, repository.CourseInput{Title: "Algebra I"})
	require.ErrorIs(t, err, errs.ErrNoAuthToken)

	_, err = assignments.GetAssignments(ctx)
	require.ErrorIs(t, err, errs.ErrNoAuthToken)

	_, err = assignments.GenerateAssignmentContent(ctx, repository.AssignmentInput{Title: "Essay"})
	require.ErrorIs(t, err, errs.ErrNoAuthToken)

	_, err = classrooms.GetClassrooms(ctx)
	require.ErrorIs(t, err, errs.ErrNoAuthToken)

	_, err = classrooms.AddStudent(ctx, "class-9", "", "Grace Hopper", "grace@example.com")
	require.ErrorIs(t, err, errs.ErrNoAuthToken)
}

func TestCourseRepository(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/courses/all", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[{"_id":"course-1","title":"Algebra I","classroomId":"class-9"}]}`))
	})
	mux.HandleFunc("POST /api/courses", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"success":true,"data":{"_id":"course-2","title":"Geometry"}}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := refreshclient.NewMemoryTokenStore("app-token", "class-9")
	repo := repository.NewHTTPCourseRepository(srv.URL, srv.Client(), store)

	t.Run("lists courses", func(t *testing.T) {
		resp, err := repo.GetCourses(context.Background())
		require.NoError(t, err)
		require.True(t, resp.Success)
		require.Len(t, resp.Data, 1)
		require.Equal(t, "Algebra I", resp.Data[0].Title)
	})

	t.Run("creates a course", func(t *testing.T) {
		resp, err := repo.CreateCourse(context.Background(), repository.CourseInput{Title: "Geometry"})
		require.NoError(t, err)
		require.Equal(t, "course-2", resp.Data.ID)
	})
}

func TestClassroomRepositoryBackendRejection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/classrooms/students", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "class-9", r.URL.Query().Get("classroomId"))
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"success":false,"message":"Not a member of this classroom"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := refreshclient.NewMemoryTokenStore("app-token", "class-9")
	repo := repository.NewHTTPClassroomRepository(srv.URL, srv.Client(), store)

	_, err := repo.GetStudents(context.Background(), "class-9")
	require.ErrorIs(t, err, errs.ErrBackendRejected)
	require.Contains(t, err.Error(), "Not a member of this classroom")
}
