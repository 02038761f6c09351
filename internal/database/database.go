package database

import (
	"time"

	"lecture-terrace/live-qa/config"
	"lecture-terrace/live-qa/internal/model"
	pkgDatabase "lecture-terrace/live-qa/pkg/database"

	"gorm.io/gorm"
)

var (
	PostgresDB *gorm.DB
	RedisDB    *pkgDatabase.RedisClient
)

func InitDatabase() {
	initPostgres()
	initRedis()
}

func initPostgres() {
	databaseConf := config.Conf.Database

	// 设置默认日志级别
	logLevel := databaseConf.LogLevel
	if logLevel == "" {
		logLevel = "info"
	}

	var err error
	PostgresDB, err = pkgDatabase.InitPostgres(
		&pkgDatabase.PostgresConfig{
			ServiceName:     "live-qa",
			Username:        databaseConf.Username,
			Password:        databaseConf.Password,
			Host:            databaseConf.Host,
			Port:            databaseConf.Port,
			Database:        databaseConf.Database,
			SSLMode:         databaseConf.SSLMode,
			LogLevel:        logLevel,
			MaxIdleConns:    databaseConf.MaxIdleConns,
			MaxOpenConns:    databaseConf.MaxOpenConns,
			ConnMaxLifetime: time.Duration(databaseConf.MaxLifetime) * time.Second,
		},
	)

	if err != nil {
		panic(err)
	}

	// 初始化数据库表
	err = model.InitTable(PostgresDB)
	if err != nil {
		panic(err)
	}
}

func initRedis() {
	redisConf := config.Conf.Redis

	var err error
	RedisDB, err = pkgDatabase.InitRedis(
		&pkgDatabase.RedisConfig{
			ServiceName: "live-qa",
			Host:        redisConf.Host,
			Port:        redisConf.Port,
			Password:    redisConf.Password,
			DB:          redisConf.DB,
			PoolSize:    redisConf.PoolSize,
		},
	)

	if err != nil {
		panic(err)
	}
}

// GetDB 获取数据库实例
func GetDB() *gorm.DB {
	return PostgresDB
}
