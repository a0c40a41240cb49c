package main

import (
	"github.com/vidhyaloan/vidhyaloan/config"
	"github.com/vidhyaloan/vidhyaloan/models"
	"github.com/vidhyaloan/vidhyaloan/routes"
	"github.com/vidhyaloan/vidhyaloan/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.ForumPost{},
		&models.PostLike{},
		&models.ForumComment{},
		&models.CommentLike{},
		&models.Mentor{},
		&models.MentorBooking{},
		&models.CommunityEvent{},
		&models.EventRegistration{},
		&models.SuccessStory{},
		&models.CommunityResource{},
		&models.BlogPost{},
		&models.PageView{},
	)

	r := routes.SetupRouter(db, utils.Logger)

	utils.Sugar.Infof("Starting server on port %s", cfg.AppPort)
	if err := utils.RunServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
