package main

import (
	"log"
	"os"

	"voyages-server/routes"
	"voyages-server/storage"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: could not load .env file (this is normal in production)")
	}

	db := storage.InitializeDB()
	redisClient := storage.InitializeRedis()

	environment := os.Getenv("ENV")
	if environment == "" {
		environment = "development"
	}

	app := routes.NewApp(routes.Config{
		Environment:   environment,
		AccessSecret:  os.Getenv("ACCESS_TOKEN_SECRET"),
		RefreshSecret: os.Getenv("REFRESH_TOKEN_SECRET"),
	}, db, redisClient)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}
