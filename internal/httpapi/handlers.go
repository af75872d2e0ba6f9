package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"usermgmt/internal/logging"
	"usermgmt/internal/users"
)

type Handler struct {
	svc *users.Service
	log logging.Logger
}

func NewHandler(svc *users.Service, log logging.Logger) *Handler {
	return &Handler{svc: svc, log: log.With("component", "httpapi")}
}

// Register creates an account and responds with a bearer token.
func (h *Handler) Register(c *gin.Context) {
	var req AddUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	token, err := h.svc.Register(c.Request.Context(), newUserFrom(req))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Login responds with a fresh bearer token, or a uniform 401.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	token, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) ListUsers(c *gin.Context) {
	list, err := h.svc.GetAllUsers(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) GetUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	u, err := h.svc.GetUserByID(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req AddUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	u, err := h.svc.AddUser(c.Request.Context(), newUserFrom(req))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, u)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	u, err := h.svc.UpdateUser(c.Request.Context(), id, users.UpdateRequest{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, u)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	deleted, err := h.svc.DeleteUser(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

func userID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid user id"})
		return 0, false
	}
	return id, true
}

func newUserFrom(req AddUserRequest) users.NewUser {
	return users.NewUser{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
}

// writeServiceError maps service outcomes to transport results. Anything
// outside the known taxonomy is a server fault and is logged.
func (h *Handler) writeServiceError(c *gin.Context, err error) {
	var dup *users.DuplicateCredentialError

	switch {
	case errors.As(err, &dup):
		c.JSON(http.StatusBadRequest, gin.H{"message": duplicateMessage(dup.Field)})
	case errors.Is(err, users.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
	case errors.Is(err, users.ErrAuthenticationFailed):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password"})
	default:
		h.log.Error(c.Request.Context(), "unhandled service error", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
	}
}

func duplicateMessage(field string) string {
	if field == users.FieldEmail {
		return "Email already exists"
	}
	return "Username already exists"
}
