package server

func (s *Server) initRoutes() {
	// LOGIN / OAuth flow
	s.RegisterRouteFunc("GET "+RouteSignInStart, s.SignInStartHandler())
	s.RegisterRouteFunc("GET "+RouteOAuthCallback, s.OAuthCallbackHandler())
	s.RegisterRouteFunc("POST "+RouteOAuthCallback, s.OAuthCallbackHandler()) // For form_post response mode
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.WebMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAuthLogout, s.LogoutHandler())

	// Session projection
	s.RegisterRouteHandler("GET "+RouteSession, ChainMiddleware(s.SessionHandler(), s.APIMiddleware()...))

	// Refresh-token cookie bridge
	s.RegisterRouteHandler("POST "+RouteRefreshToken, ChainMiddleware(s.RefreshTokenHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteSetRefreshToken, ChainMiddleware(s.SetRefreshTokenHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteClearRefreshToken, ChainMiddleware(s.ClearRefreshTokenHandler(), s.APIMiddleware()...))

	// Simple credential proxies
	s.RegisterRouteHandler("POST "+RouteAPILogin, ChainMiddleware(s.APILoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPISignup, ChainMiddleware(s.APISignupHandler(), s.APIMiddleware()...))

	// Resource proxies (require an authenticated session)
	s.RegisterRouteHandler("GET "+RouteCoursesAll, ChainMiddleware(s.GetCoursesHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteCourses, ChainMiddleware(s.CreateCourseHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAssignmentsAll, ChainMiddleware(s.GetAssignmentsHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAssignments, ChainMiddleware(s.CreateAssignmentHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAssignmentsGenerate, ChainMiddleware(s.GenerateAssignmentHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteClassroomsAll, ChainMiddleware(s.GetClassroomsHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteClassroomStudents, ChainMiddleware(s.GetStudentsHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteClassroomStudents, ChainMiddleware(s.AddStudentHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteClassroomCoTeachers, ChainMiddleware(s.GetCoTeachersHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteClassroomCoTeachers, ChainMiddleware(s.AddCoTeacherHandler(), s.APIMiddleware()...))
}
