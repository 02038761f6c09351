package main

import (
	"fmt"

	"lecture-terrace/live-qa/config"
	"lecture-terrace/live-qa/internal/database"
	"lecture-terrace/live-qa/internal/route"
)

func main() {
	// 1. 加载配置
	config.MustLoad("config.yaml")

	// 2. 初始化数据库
	database.InitDatabase()

	// 3. 设置路由
	r := route.SetupRouter()

	// 4. 启动服务
	r.Run(fmt.Sprintf(":%d", config.Conf.Server.Port))
}
