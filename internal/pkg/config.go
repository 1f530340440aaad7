package pkg

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	MySQLDSN      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// 广播签名用的应用凭证
	BroadcastKey    string
	BroadcastSecret string

	// kafka 事件归档，可选；不配置 brokers 则关闭
	KafkaBrokers []string
	KafkaTopic   string

	AccessSecret  string
	RefreshSecret string
}

// LoadConfig 读取 .env + 环境变量，缺省值面向本地开发
func LoadConfig() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port:            getenv("PORT", "8080"),
		MySQLDSN:        getenv("MYSQL_DSN", "user:password@tcp(127.0.0.1:3306)/gamehub?charset=utf8mb4&parseTime=True"),
		RedisAddr:       getenv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:   getenv("REDIS_PASSWORD", ""),
		BroadcastKey:    getenv("BROADCAST_APP_KEY", "local-app-key"),
		BroadcastSecret: getenv("BROADCAST_APP_SECRET", "local-app-secret"),
		KafkaTopic:      getenv("KAFKA_TOPIC", "message-events"),
		AccessSecret:    getenv("JWT_ACCESS_SECRET", "secret-key"),
		RefreshSecret:   getenv("JWT_REFRESH_SECRET", "refresh-key"),
	}

	if v, err := strconv.Atoi(getenv("REDIS_DB", "0")); err == nil {
		cfg.RedisDB = v
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
