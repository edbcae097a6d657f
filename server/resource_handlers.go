package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	errs "github.com/gradeflow/session-gateway/internal/errors"
	"github.com/gradeflow/session-gateway/refreshclient"
	"github.com/gradeflow/session-gateway/repository"
	"github.com/gradeflow/session-gateway/session"
)

// sessionTokenStore adapts one browser session's token state to the refresh
// wrapper's token-store contract. Mutations land back in the session repo so
// later requests on the same session see the refreshed pair.
type sessionTokenStore struct {
	repo      session.Repo
	sessionID string
}

var _ refreshclient.TokenStore = (*sessionTokenStore)(nil)

func (s *sessionTokenStore) AccessToken() string {
	tok, err := s.repo.Get(s.sessionID)
	if err != nil {
		return ""
	}
	return tok.AppToken
}

func (s *sessionTokenStore) ClassroomID() string {
	tok, err := s.repo.Get(s.sessionID)
	if err != nil {
		return ""
	}
	return tok.ClassroomID
}

func (s *sessionTokenStore) SetTokens(accessToken, classroomID string) {
	tok, err := s.repo.Get(s.sessionID)
	if err != nil {
		return
	}
	tok.AppToken = accessToken
	if classroomID != "" {
		tok.ClassroomID = classroomID
	}
	tok.Error = ""
	s.repo.Upsert(s.sessionID, tok)
}

func (s *sessionTokenStore) Clear() {
	s.repo.Delete(s.sessionID)
}

// resources is the per-request wiring for one proxied backend call: the
// session-bound token store and the refresh-aware client around it.
type resources struct {
	store      *sessionTokenStore
	client     *refreshclient.Client
	backendURL string
}

// resourcesFor builds the per-request proxy wiring. The refresh wrapper
// talks to the backend with a jar carrying only the caller's refresh-token
// cookie; a rotated token is written onto this response through the
// rotation hook instead of a loopback cookie-sync call.
func (s *Server) resourcesFor(w http.ResponseWriter, r *http.Request) (*resources, error) {
	sessionID, ok := s.sessionIDFromRequest(r)
	if !ok {
		return nil, errs.ErrNoAuthToken
	}
	if _, err := s.sessions.Get(sessionID); err != nil {
		return nil, errs.ErrNoAuthToken
	}

	store := &sessionTokenStore{repo: s.sessions, sessionID: sessionID}

	backendURL := s.config.GetBackendURL()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	if refreshCookie, err := r.Cookie(refreshTokenCookieName); err == nil {
		if target, parseErr := url.Parse(backendURL); parseErr == nil {
			jar.SetCookies(target, []*http.Cookie{{
				Name:  refreshTokenCookieName,
				Value: refreshCookie.Value,
			}})
		}
	}

	httpClient := &http.Client{Jar: jar, Timeout: s.config.GetBackendTimeout()}

	client, err := refreshclient.New(httpClient, store,
		backendURL+"/api/auth/refresh", "",
		func() {
			s.ClearSessionCookie(w, r)
			s.ClearRefreshTokenCookie(w)
		},
		s.log,
		refreshclient.WithRotationHook(func(refreshToken string) {
			if refreshToken != "" {
				s.SetRefreshTokenCookie(w, refreshToken, int(s.config.GetRefreshCookieMaxAge().Seconds()))
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	return &resources{store: store, client: client, backendURL: backendURL}, nil
}

func (s *Server) courses(w http.ResponseWriter, r *http.Request) (repository.CourseRepository, bool) {
	res, err := s.resourcesFor(w, r)
	if err != nil {
		s.proxySetupError(w, err)
		return nil, false
	}
	return repository.NewHTTPCourseRepository(res.backendURL, res.client, res.store), true
}

func (s *Server) assignments(w http.ResponseWriter, r *http.Request) (repository.AssignmentRepository, bool) {
	res, err := s.resourcesFor(w, r)
	if err != nil {
		s.proxySetupError(w, err)
		return nil, false
	}
	return repository.NewHTTPAssignmentRepository(res.backendURL, res.client, res.store), true
}

func (s *Server) classrooms(w http.ResponseWriter, r *http.Request) (repository.ClassroomRepository, bool) {
	res, err := s.resourcesFor(w, r)
	if err != nil {
		s.proxySetupError(w, err)
		return nil, false
	}
	return repository.NewHTTPClassroomRepository(res.backendURL, res.client, res.store), true
}

func (s *Server) GetCoursesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repo, ok := s.courses(w, r)
		if !ok {
			return
		}
		result, err := repo.GetCourses(r.Context())
		s.proxyResult(w, result, err)
	}
}

func (s *Server) CreateCourseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input repository.CourseInput
		if !decodeProxyBody(w, r, &input) {
			return
		}
		repo, ok := s.courses(w, r)
		if !ok {
			return
		}
		result, err := repo.CreateCourse(r.Context(), input)
		s.proxyResult(w, result, err)
	}
}

func (s *Server) GetAssignmentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repo, ok := s.assignments(w, r)
		if !ok {
			return
		}
		result, err := repo.GetAssignments(r.Context())
		s.proxyResult(w, result, err)
	}
}

func (s *Server) CreateAssignmentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input repository.AssignmentInput
		if !decodeProxyBody(w, r, &input) {
			return
		}
		repo, ok := s.assignments(w, r)
		if !ok {
			return
		}
		result, err := repo.CreateAssignment(r.Context(), input)
		s.proxyResult(w, result, err)
	}
}

func (s *Server) GenerateAssignmentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input repository.AssignmentInput
		if !decodeProxyBody(w, r, &input) {
			return
		}
		repo, ok := s.assignments(w, r)
		if !ok {
			return
		}
		result, err := repo.GenerateAssignmentContent(r.Context(), input)
		s.proxyResult(w, result, err)
	}
}

func (s *Server) GetClassroomsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repo, ok := s.classrooms(w, r)
		if !ok {
			return
		}
		result, err := repo.GetClassrooms(r.Context())
		s.proxyResult(w, result, err)
	}
}

func (s *Server) GetStudentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repo, ok := s.classrooms(w, r)
		if !ok {
			return
		}
		result, err := repo.GetStudents(r.Context(), r.URL.Query().Get("classroomId"))
		s.proxyResult(w, result, err)
	}
}

type memberRequest struct {
	ClassroomID   string `json:"classroomId"`
	SelectedClass string `json:"selectedClass"`
	Name          string `json:"name"`
	Email         string `json:"email"`
}

func (s *Server) AddStudentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req memberRequest
		if !decodeProxyBody(w, r, &req) {
			return
		}
		repo, ok := s.classrooms(w, r)
		if !ok {
			return
		}
		result, err := repo.AddStudent(r.Context(), req.ClassroomID, req.SelectedClass, req.Name, req.Email)
		s.proxyResult(w, result, err)
	}
}

func (s *Server) GetCoTeachersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repo, ok := s.classrooms(w, r)
		if !ok {
			return
		}
		result, err := repo.GetCoTeachers(r.Context(), r.URL.Query().Get("classroomId"))
		s.proxyResult(w, result, err)
	}
}

func (s *Server) AddCoTeacherHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req memberRequest
		if !decodeProxyBody(w, r, &req) {
			return
		}
		repo, ok := s.classrooms(w, r)
		if !ok {
			return
		}
		result, err := repo.AddCoTeacher(r.Context(), req.ClassroomID, req.SelectedClass, req.Name, req.Email)
		s.proxyResult(w, result, err)
	}
}

func decodeProxyBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) proxySetupError(w http.ResponseWriter, err error) {
	if errors.Is(err, errs.ErrNoAuthToken) {
		writeJSONError(w, "No authentication token found. Please log in again.", http.StatusUnauthorized)
		return
	}
	s.log.Error().Err(err).Msg("failed to build resource proxy")
	writeJSONError(w, "Internal server error", http.StatusInternalServerError)
}

// proxyResult relays a repository result to the caller, collapsing the
// terminal refresh failure into the 401 the client wrapper expects.
func (s *Server) proxyResult(w http.ResponseWriter, result any, err error) {
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrNoAuthToken), errors.Is(err, errs.ErrSessionExpired):
			writeJSONError(w, "Session expired. Please log in again.", http.StatusUnauthorized)
		default:
			writeJSONError(w, err.Error(), http.StatusBadGateway)
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}
