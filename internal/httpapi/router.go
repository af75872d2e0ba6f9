package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"usermgmt/internal/auth"
	"usermgmt/internal/logging"
	"usermgmt/internal/users"
)

// NewRouter builds the gin engine: health line, auth endpoints, and the
// protected user CRUD group. Deletion additionally requires the Admin role.
func NewRouter(log logging.Logger, svc *users.Service, tokens *auth.TokenManager) *gin.Engine {
	registerValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	}))

	r.GET("/", func(c *gin.Context) {
		c.String(200, "Users API is running")
	})

	h := NewHandler(svc, log)

	api := r.Group("/api")
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)

	protected := api.Group("/users", RequireAuth(tokens))
	protected.GET("", h.ListUsers)
	protected.GET("/:id", h.GetUser)
	protected.POST("", h.CreateUser)
	protected.PUT("/:id", h.UpdateUser)
	protected.DELETE("/:id", RequireRole(svc, users.RoleAdmin), h.DeleteUser)

	return r
}
