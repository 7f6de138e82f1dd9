package main

import (
	"github.com/flowvahub/rewards/config"
	"github.com/flowvahub/rewards/models"
	"github.com/flowvahub/rewards/routes"
	"github.com/flowvahub/rewards/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Profile{},
		&models.CheckIn{},
		&models.Activity{},
		&models.ActivityCompletion{},
		&models.Reward{},
		&models.Redemption{},
		&models.Referral{},
		&models.Share{},
	)

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
