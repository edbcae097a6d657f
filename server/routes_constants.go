package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes - sign-in flow
	RouteSignInStart   = "/auth/signin/{provider}"
	RouteOAuthCallback = "/auth/callback/{provider}"
	RouteAuthLogin     = "/auth/login"
	RouteAuthLogout    = "/auth/logout"

	// Session Routes
	RouteSession = "/api/auth/session"

	// Refresh-token cookie bridge
	RouteRefreshToken      = "/api/auth/refresh"
	RouteSetRefreshToken   = "/api/auth/set-refresh-token"
	RouteClearRefreshToken = "/api/auth/clear-refresh-token"

	// Simple credential proxies
	RouteAPILogin  = "/api/auth/login"
	RouteAPISignup = "/api/auth/signup"

	// Resource proxy routes
	RouteCourses             = "/api/courses"
	RouteCoursesAll          = "/api/courses/all"
	RouteAssignments         = "/api/assignments"
	RouteAssignmentsAll      = "/api/assignments/all"
	RouteAssignmentsGenerate = "/api/assignments/generate"
	RouteClassroomsAll       = "/api/classrooms/all"
	RouteClassroomStudents   = "/api/classrooms/students"
	RouteClassroomCoTeachers = "/api/classrooms/co-teachers"
)
