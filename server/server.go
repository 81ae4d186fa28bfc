// Package server carries the REST surface of the school newsfeed: auth,
// admin publication, and student subscription/feed queries. Handlers
// validate and bind, the unexported service methods own the business
// rules against storage.
package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/schoolfeed/schoolfeed/model"
	"github.com/schoolfeed/schoolfeed/publisher"
	"github.com/schoolfeed/schoolfeed/server/middlewares"
)

// Server bundles the handler dependencies: storage and the fan-out
// engine that publish hands off to.
type Server struct {
	DB     *gorm.DB
	Fanout *publisher.FanoutEngine
}

// NewRouter builds the gin engine with all routes and middlewares
// attached. Role gates are applied per group with an explicit role.
func NewRouter(s *Server) *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(middlewares.RequestID())

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/sign-up", s.SignUp)
	auth.POST("/sign-in", s.SignIn)

	admin := v1.Group("/admin", middlewares.RequireRole(model.RoleAdmin))
	admin.POST("/school-pages", s.CreatePage)
	admin.POST("/school-news", s.PublishNews)
	admin.PUT("/school-news", s.UpdateNews)
	admin.DELETE("/school-news/:newsID", s.DeleteNews)

	student := v1.Group("/student", middlewares.RequireRole(model.RoleStudent))
	student.POST("/subscriptions", s.Subscribe)
	student.DELETE("/subscriptions/:pageID", s.Unsubscribe)
	student.GET("/subscriptions", s.ListSubscriptions)
	student.GET("/school-news/:pageID", s.PageFeed)
	student.GET("/newsfeed", s.AggregateFeed)

	return router
}
