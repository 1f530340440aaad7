package router

import (
	"time"

	"gamehub/internal/handler"
	"gamehub/internal/middleware"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Handlers struct {
	User          *handler.UserHandler
	Community     *handler.CommunityHandler
	Message       *handler.MessageHandler
	BroadcastAuth *handler.BroadcastAuthHandler
}

func InitRouter(h Handlers) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// 每个 ip 限 100 req/s
	store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Second,
		Limit: 100,
	})
	r.Use(ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: func(c *gin.Context, info ratelimit.Info) {
			c.String(429, "Too many requests. Try again in "+time.Until(info.ResetTime).String())
		},
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	}))

	// 用户相关接口
	userGroup := r.Group("/api/user")
	{
		userGroup.POST("/register", h.User.Register)
		userGroup.POST("/login", h.User.Login)
	}

	// token相关接口
	tokenGroup := r.Group("/api/token")
	{
		tokenGroup.POST("/refresh", h.User.TokenRefresh)
	}

	// 登录态接口
	authGroup := r.Group("/api")
	authGroup.Use(middleware.AuthMiddleware())
	{
		authGroup.POST("/user/logout", h.User.Logout)

		// 社区相关接口
		authGroup.POST("/community/create", h.Community.Create)
		authGroup.POST("/community/:id/join", h.Community.Join)
		authGroup.POST("/community/:id/leave", h.Community.Leave)
		authGroup.GET("/community/list", h.Community.List)
		authGroup.GET("/community/:id/channels", h.Community.Channels)

		// 消息相关接口
		authGroup.POST("/message/send", h.Message.Send)
		authGroup.PUT("/message/:id", h.Message.Edit)
		authGroup.DELETE("/message/:id", h.Message.Delete)
		authGroup.GET("/message/list", h.Message.List)
		authGroup.GET("/message/direct", h.Message.ListDirect)
		authGroup.POST("/message/typing", h.Message.Typing)
		authGroup.POST("/message/reaction", h.Message.Reaction)

		// 订阅授权，传输层客户端回调
		authGroup.POST("/broadcast/auth", h.BroadcastAuth.Authorize)
	}

	return r
}
