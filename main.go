package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wagerx/cashout"
	"wagerx/controllers/operator"
	"wagerx/database"
	"wagerx/distribution"
	"wagerx/jobs"
	"wagerx/liability"
	"wagerx/placement"
	"wagerx/risk"
	"wagerx/routes"
	"wagerx/settlement"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
)

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("⚠️  Invalid value for %s: %s", key, v)
		return fallback
	}
	return d
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Fatal("Error loading .env file")
	}

	database.Connect()

	scanInterval := envDuration("SHARP_SCAN_INTERVAL", 10*time.Minute)
	drainInterval := envDuration("OUTBOX_DRAIN_INTERVAL", 30*time.Second)
	liabilityMemo := envDuration("LIABILITY_MEMO_TTL", 5*time.Second)

	liab := liability.NewCalculator(database.DB, liabilityMemo)
	engine := risk.NewEngine(database.DB, liab, scanInterval)
	dist := distribution.New(database.DB)
	settler := settlement.New(database.DB, dist, liab)
	cashier := cashout.New(database.DB, dist)
	placer := placement.New(database.DB, engine, liab)

	operator.Init(engine, liab, settler, cashier, placer, dist)

	host := os.Getenv("HOST")
	port := os.Getenv("PORT")

	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "3000"
	}

	app := fiber.New()
	routes.Setup(app)
	jobs.StartRiskScheduler(engine, dist, scanInterval, drainInterval)

	addr := fmt.Sprintf("%s:%s", host, port)
	log.Println("Server running at", addr)

	go func() {
		if err := app.Listen(addr); err != nil {
			log.Panicf("Failed to start server: %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Println("Gracefully shutting down...")
	if err := app.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited cleanly")
}
