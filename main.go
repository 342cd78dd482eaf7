package main

import (
	"github.com/pingpost/pingpost-backend/config"
	"github.com/pingpost/pingpost-backend/models"
	"github.com/pingpost/pingpost-backend/routes"
	"github.com/pingpost/pingpost-backend/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Blog{},
		&models.BlogHashtag{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
	)

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
