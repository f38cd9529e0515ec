package config

import (
	"log"

	"github.com/caarlos0/env/v11"
)

// Config 平台全局配置，全部通过环境变量注入
type Config struct {
	Port          string `env:"NOVACTF_PORT" envDefault:"8080"`
	MySQLDSN      string `env:"NOVACTF_MYSQL_DSN" envDefault:"root:123456@tcp(localhost:3306)/novactf?charset=utf8mb4&parseTime=True&loc=Local"`
	RedisAddr     string `env:"NOVACTF_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"NOVACTF_REDIS_PASSWORD" envDefault:""`
	JWTSecret     string `env:"NOVACTF_JWT_SECRET" envDefault:"change-me-in-production"`

	// FlagPepper 用作 Flag HMAC 的密钥，泄露后所有静态 Flag 等同明文
	FlagPepper string `env:"NOVACTF_FLAG_PEPPER" envDefault:"novactf-dev-pepper"`

	// MinPointsFloor 动态计分公式中的全局下限常量，区别于题目自身的 points_min
	MinPointsFloor int `env:"NOVACTF_MIN_POINTS_FLOOR" envDefault:"50"`

	// SchedulerIntervalSeconds 调度器扫描周期，与题目自身的 tick_seconds 无关
	SchedulerIntervalSeconds int `env:"NOVACTF_SCHEDULER_INTERVAL" envDefault:"5"`

	// ProbeTimeoutSeconds 单次健康检查探测的超时时间
	ProbeTimeoutSeconds int `env:"NOVACTF_PROBE_TIMEOUT" envDefault:"3"`

	// DockerEnabled 关闭时实例申请只落库为 pending，由外部系统接管
	DockerEnabled bool   `env:"NOVACTF_DOCKER_ENABLED" envDefault:"false"`
	SwarmNodeIP   string `env:"NOVACTF_SWARM_NODE_IP" envDefault:"127.0.0.1"`
}

var C Config

// Load 解析环境变量到全局配置，启动时调用一次
func Load() {
	if err := env.Parse(&C); err != nil {
		log.Fatalf("Failed to parse config from environment: %v", err)
	}
}
