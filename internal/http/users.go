package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/crypto"
	"github.com/mrlokans/bookshelf/internal/database/users"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// Client-facing messages of the user resource.
const (
	MessageUserNotFound      = "No user found with this id"
	MessageEmailNotFound     = "No user found with this email"
	MessageUnknownEmail      = "No user with that email address!"
	MessageIncorrectPassword = "Incorrect password!"
	MessageLoggedIn          = "You are now logged in!"
	MessageTooManyAttempts   = "Too many login attempts. Please try again later."
	MessageInvalidBody       = "Invalid request body"
	MessageEmailTaken        = "Email is already registered"
)

var errIncorrectPassword = errors.New("incorrect password")

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	User    *entities.User `json:"user"`
	Message string         `json:"message"`
}

// UsersController serves the /api/users resource.
type UsersController struct {
	store    UserStore
	sessions *auth.SessionManager
	limiter  *auth.RateLimiter
	auditor  AuditLogger
	purger   UserContentPurger
}

// NewUsersController creates a UsersController. limiter, auditor and purger are optional.
func NewUsersController(store UserStore, sessions *auth.SessionManager, limiter *auth.RateLimiter, auditor AuditLogger, purger UserContentPurger) *UsersController {
	return &UsersController{
		store:    store,
		sessions: sessions,
		limiter:  limiter,
		auditor:  auditor,
		purger:   purger,
	}
}

// ListUsers returns every user with their posts and books.
func (uc *UsersController) ListUsers(c *gin.Context) {
	list, err := uc.store.ListUsers(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "list users")
		return
	}
	if list == nil {
		list = []entities.User{}
	}
	c.JSON(http.StatusOK, list)
}

// GetUserByID returns one user. A non-numeric id is reported like a missing user.
func (uc *UsersController) GetUserByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondNotFound(c, MessageUserNotFound)
		return
	}

	user, err := uc.store.GetUserByID(c.Request.Context(), id)
	if errors.Is(err, users.ErrUserNotFound) {
		respondNotFound(c, MessageUserNotFound)
		return
	}
	if err != nil {
		respondInternalError(c, err, "get user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetUserByEmail returns the user with exactly this email, without posts or books.
func (uc *UsersController) GetUserByEmail(c *gin.Context) {
	user, err := uc.store.GetUserByEmail(c.Request.Context(), c.Param("email"))
	if errors.Is(err, users.ErrUserNotFound) {
		respondNotFound(c, MessageEmailNotFound)
		return
	}
	if err != nil {
		respondInternalError(c, err, "get user by email")
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetLoggedInUser returns the session's user. Runs behind the login guard.
func (uc *UsersController) GetLoggedInUser(c *gin.Context) {
	userID := auth.GetUserID(c)
	user, err := uc.store.GetUserByID(c.Request.Context(), userID)
	if errors.Is(err, users.ErrUserNotFound) {
		log.Printf("Session of %q refers to deleted user %d", auth.GetUsername(c), userID)
		respondNotFound(c, auth.MessageNoSession)
		return
	}
	if err != nil {
		respondInternalError(c, err, "get logged in user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser applies a partial update and reports the affected row count.
func (uc *UsersController) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondBadRequest(c, "invalid id")
		return
	}

	var update entities.UserUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondBadRequest(c, MessageInvalidBody)
		return
	}

	n, err := uc.store.UpdateUser(c.Request.Context(), id, update)
	switch {
	case errors.Is(err, entities.ErrInvalidUser):
		respondBadRequest(c, err.Error())
		return
	case errors.Is(err, users.ErrEmailTaken):
		respondBadRequest(c, MessageEmailTaken)
		return
	case err != nil:
		respondInternalError(c, err, "update user")
		return
	}

	if n > 0 && uc.auditor != nil {
		uc.auditor.LogUserChange(uc.sessions.GetUserID(c.Request), id, "user_update",
			fmt.Sprintf("Updated user %d", id), requestInfo(c))
	}
	respondRowsAffected(c, n)
}

// CreateUser registers a user and logs them in.
func (uc *UsersController) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, MessageInvalidBody)
		return
	}

	user, err := uc.store.CreateUser(c.Request.Context(), req.Username, req.Email, req.Password)
	switch {
	case errors.Is(err, entities.ErrInvalidUser):
		respondBadRequest(c, err.Error())
		return
	case errors.Is(err, users.ErrEmailTaken):
		respondBadRequest(c, MessageEmailTaken)
		return
	case err != nil:
		respondInternalError(c, err, "create user")
		return
	}

	if err := uc.sessions.StartSession(c.Request, user); err != nil {
		respondInternalError(c, err, "start session")
		return
	}

	if uc.auditor != nil {
		uc.auditor.LogAuth(user.ID, "register", requestInfo(c), nil)
	}
	c.JSON(http.StatusOK, user)
}

// Login checks the credentials and starts a session.
func (uc *UsersController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, MessageInvalidBody)
		return
	}

	ip := c.ClientIP()
	if uc.limiter != nil {
		if allowed, retryAfter := uc.limiter.Allow(ip, req.Email); !allowed {
			c.Header("Retry-After", auth.RetryAfterHeader(retryAfter))
			respondMessage(c, http.StatusTooManyRequests, MessageTooManyAttempts)
			return
		}
	}

	user, err := uc.store.GetUserByEmail(c.Request.Context(), req.Email)
	if errors.Is(err, users.ErrUserNotFound) {
		uc.loginFailed(c, 0, req.Email, err)
		respondBadRequest(c, MessageUnknownEmail)
		return
	}
	if err != nil {
		uc.releaseAttempt(ip, req.Email)
		respondInternalError(c, err, "login lookup")
		return
	}

	if !crypto.VerifyPassword(user.Password, req.Password) {
		uc.loginFailed(c, user.ID, req.Email, errIncorrectPassword)
		respondBadRequest(c, MessageIncorrectPassword)
		return
	}

	if err := uc.sessions.StartSession(c.Request, user); err != nil {
		uc.releaseAttempt(ip, req.Email)
		respondInternalError(c, err, "start session")
		return
	}

	if uc.limiter != nil {
		uc.limiter.RecordSuccess(ip, req.Email)
	}
	if uc.auditor != nil {
		uc.auditor.LogAuth(user.ID, "login", requestInfo(c), nil)
	}

	c.JSON(http.StatusOK, LoginResponse{User: user, Message: MessageLoggedIn})
}

func (uc *UsersController) releaseAttempt(ip, email string) {
	if uc.limiter != nil {
		uc.limiter.Release(ip, email)
	}
}

func (uc *UsersController) loginFailed(c *gin.Context, userID uint, email string, reason error) {
	if uc.limiter != nil {
		if locked, _ := uc.limiter.RecordFailure(c.ClientIP(), email); locked {
			log.Printf("Login locked for %s from %s", email, c.ClientIP())
		}
	}
	if uc.auditor != nil {
		uc.auditor.LogAuth(userID, "login_failed", requestInfo(c), reason)
	}
}

// Logout ends the session: 204 when there was one, 404 otherwise.
func (uc *UsersController) Logout(c *gin.Context) {
	if !uc.sessions.IsLoggedIn(c.Request) {
		c.Status(http.StatusNotFound)
		return
	}

	userID := uc.sessions.GetUserID(c.Request)
	if err := uc.sessions.DestroySession(c.Request); err != nil {
		respondInternalError(c, err, "destroy session")
		return
	}

	if uc.auditor != nil {
		uc.auditor.LogAuth(userID, "logout", requestInfo(c), nil)
	}
	c.Status(http.StatusNoContent)
}

// DeleteUser removes a user and schedules removal of their posts and books.
func (uc *UsersController) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondNotFound(c, MessageUserNotFound)
		return
	}

	n, err := uc.store.DeleteUser(c.Request.Context(), id)
	if err != nil {
		respondInternalError(c, err, "delete user")
		return
	}
	if n == 0 {
		respondNotFound(c, MessageUserNotFound)
		return
	}

	// The orphan sweep catches anything a failed enqueue leaves behind
	if uc.purger != nil {
		if err := uc.purger.EnqueueUserPurge(c.Request.Context(), id); err != nil {
			log.Printf("Failed to enqueue content purge for user %d: %v", id, err)
		}
	}
	if uc.auditor != nil {
		uc.auditor.LogUserChange(uc.sessions.GetUserID(c.Request), id, "user_delete",
			fmt.Sprintf("Deleted user %d", id), requestInfo(c))
	}

	respondRowsAffected(c, n)
}
