package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
)

// RouterConfig carries every dependency of the HTTP layer.
type RouterConfig struct {
	Users    UserStore
	Posts    PostStore
	Books    BookStore
	Database Pinger

	Sessions    *auth.SessionManager
	RateLimiter *auth.RateLimiter // optional
	Auditor     AuditLogger       // optional
	Purger      UserContentPurger // optional
	Maintenance MaintenanceStatus // optional

	CSRFSecret    []byte // CSRF protection is off when empty
	SecureCookies bool
	Version       string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(auth.RequestIDMiddleware())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware())
	}

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
		router.GET("/api/csrf-token", auth.CSRFTokenHandler)
	}

	router.Use(cfg.Sessions.LoadAndSaveSession())
	requireLogin := auth.NewGuard(cfg.Sessions).RequireLogin()

	health := NewHealthController(cfg.Database, cfg.Maintenance, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)

	usersController := NewUsersController(cfg.Users, cfg.Sessions, cfg.RateLimiter, cfg.Auditor, cfg.Purger)
	usersGroup := router.Group("/api/users")
	{
		// Both "/api/users" and "/api/users/" are served without a redirect
		for _, root := range []string{"", "/"} {
			usersGroup.GET(root, usersController.ListUsers)
			usersGroup.POST(root, usersController.CreateUser)
		}
		usersGroup.GET("/:id", usersController.GetUserByID)
		usersGroup.GET("/email/:email", usersController.GetUserByEmail)
		usersGroup.GET("/info/loggedIn", requireLogin, usersController.GetLoggedInUser)
		usersGroup.PUT("/:id", usersController.UpdateUser)
		usersGroup.POST("/login", usersController.Login)
		usersGroup.POST("/logout", usersController.Logout)
		usersGroup.DELETE("/:id", usersController.DeleteUser)
	}

	postsController := NewPostsController(cfg.Posts)
	postsGroup := router.Group("/api/posts")
	{
		postsGroup.GET("", postsController.ListPosts)
		postsGroup.GET("/:id", postsController.GetPost)
		postsGroup.POST("", requireLogin, postsController.CreatePost)
		postsGroup.PUT("/:id", requireLogin, postsController.UpdatePost)
		postsGroup.DELETE("/:id", requireLogin, postsController.DeletePost)
	}

	booksController := NewBooksController(cfg.Books)
	booksGroup := router.Group("/api/books")
	{
		booksGroup.GET("", booksController.ListBooks)
		booksGroup.GET("/:id", booksController.GetBook)
		booksGroup.POST("", requireLogin, booksController.CreateBook)
		booksGroup.PUT("/:id", requireLogin, booksController.UpdateBook)
		booksGroup.DELETE("/:id", requireLogin, booksController.DeleteBook)
	}

	return router
}
