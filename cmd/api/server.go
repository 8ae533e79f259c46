package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	mw "rndvx/internal/api/middlewares"
	"rndvx/internal/api/routers"
	"rndvx/internal/repositories/sqlconnect"
	scheduler "rndvx/pkg/cron"
	"rndvx/pkg/utils"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		fmt.Println("no .env file found, relying on environment")
	}

	utils.InitLogger()

	err = sqlconnect.ConnectDb()
	if err != nil {
		utils.Logger.Fatal("DB connection failed: ", err)
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = ":3000"
	}

	router := routers.MainRouter()
	jwtMiddleware := mw.MiddlewaresExcludePaths(mw.JWTMiddleware, "/users/register", "/users/login")

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(os.Getenv("ALLOWED_ORIGINS"), ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	secureMux := corsHandler.Handler(jwtMiddleware(mw.SecurityHeaders(router)))

	server := &http.Server{
		Addr:    port,
		Handler: secureMux,
	}

	jobs := scheduler.NewScheduler(sqlconnect.DB, utils.SMTPMailer{})
	jobs.Start()

	go func() {
		utils.Logger.Infof("Server is running on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Logger.Fatal("Error starting the server: ", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	utils.Logger.Info("Shutting down")
	jobs.Stop()
	if err := server.Close(); err != nil {
		utils.Logger.Errorf("Error closing server: %v", err)
	}
}
