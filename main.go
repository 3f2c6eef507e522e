package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "annexe9-backend/internal/config"
	router "annexe9-backend/internal/http"
	"annexe9-backend/internal/sec"

	"github.com/gin-gonic/gin"
)

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	key, err := env.SignatureKey()
	if err != nil {
		log.Fatalf("Clé de chiffrement des signatures: %v", err)
	}
	if err := sec.InitDefault(key); err != nil {
		log.Fatalf("Initialisation du chiffrement des signatures: %v", err)
	}

	intconfig.ConnectDB(env)
	defer intconfig.CloseDB()

	r := router.NewRouter(env)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Serveur démarré sur http://localhost%s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Démarrage du serveur impossible: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Arrêt du serveur...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Arrêt du serveur échoué: %v", err)
	}

	log.Println("Serveur arrêté proprement.")
}
