package main

import (
	"gamehub/internal/broadcast"
	"gamehub/internal/handler"
	"gamehub/internal/model"
	"gamehub/internal/pkg"
	"gamehub/internal/repository/mysql"
	"gamehub/internal/repository/redis"
	"gamehub/internal/router"
	"gamehub/internal/service"

	"go.uber.org/zap"
)

func main() {
	cfg := pkg.LoadConfig()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	pkg.SetJWTSecrets(cfg.AccessSecret, cfg.RefreshSecret)

	if err := mysql.InitDB(cfg.MySQLDSN); err != nil {
		log.Fatalw("mysql init failed", "err", err)
	}

	// 连接redis
	if err := redis.Init(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB); err != nil {
		log.Fatalw("redis init failed", "err", err)
	}
	defer redis.Close()

	// 自动建表（开发阶段 OK）
	if err := mysql.DB.AutoMigrate(
		&model.User{},
		&model.Community{},
		&model.Membership{},
		&model.MembershipRole{},
		&model.Role{},
		&model.Channel{},
		&model.Message{},
		&model.DirectMessage{},
	); err != nil {
		log.Fatalw("auto migrate failed", "err", err)
	}

	// 广播器启动时构造一次，全程注入
	var b broadcast.Broadcaster = broadcast.NewRedisBroadcaster(redis.Client)
	if len(cfg.KafkaBrokers) > 0 {
		fh := broadcast.NewFirehose(b, cfg.KafkaBrokers, cfg.KafkaTopic, log)
		defer fh.Close()
		b = fh
	}

	h := router.Handlers{
		User:          handler.NewUserHandler(service.NewUserService()),
		Community:     handler.NewCommunityHandler(service.NewCommunityService()),
		Message:       handler.NewMessageHandler(service.NewMessageService(b, log)),
		BroadcastAuth: handler.NewBroadcastAuthHandler(service.NewChannelAuthService(cfg.BroadcastKey, cfg.BroadcastSecret, log)),
	}

	// Gin
	r := router.InitRouter(h)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalw("server stopped", "err", err)
	}
}
