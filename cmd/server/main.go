package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/voronovmaksim88/KIS3-v3r3/internal/configs"
	httpdelivery "github.com/voronovmaksim88/KIS3-v3r3/internal/delivery/http"
	"github.com/voronovmaksim88/KIS3-v3r3/internal/delivery/kafka"
	"github.com/voronovmaksim88/KIS3-v3r3/internal/importer"
	"github.com/voronovmaksim88/KIS3-v3r3/internal/kis2"
	"github.com/voronovmaksim88/KIS3-v3r3/internal/repository"
	"github.com/voronovmaksim88/KIS3-v3r3/internal/repository/postgres"
	"github.com/voronovmaksim88/KIS3-v3r3/internal/service"
)

// @title KIS3 import service
// @version 3.0
// @description Pulls denormalized records from the legacy KIS2 system and reconciles them into the normalized KIS3 schema. Imports run over HTTP or via kafka trigger messages; outcomes are published to the report topic.

// @host localhost:8081
// @basePath /

func main() {
	_ = godotenv.Load()
	cfg, err := configs.LoadConfig()
	if err != nil {
		logrus.Fatalf("config load: %s", err)
	}
	logrus.Print("config parsed")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.ConnectDB(cfg.PgDSN())
	if err != nil {
		logrus.Fatalf("postgres connect: %s", err)
	}
	defer func() {
		if derr := db.Close(); derr != nil {
			logrus.Errorf("db close: %v", derr)
		}
	}()
	logrus.Print("connected to postgres")

	log := logrus.StandardLogger()
	src := kis2.NewClient(kis2.Config{
		BaseURL:  cfg.KIS2BaseURL,
		Username: cfg.KIS2Username,
		Password: cfg.KIS2Password,
		Timeout:  cfg.KIS2Timeout,
	}, log)

	repo := repository.NewRepository(db)
	runner := importer.New(db, src, log, cfg.ImportCompareTZOffsetHours)
	svc := service.NewService(repo, runner)

	reports := kafka.NewPublisher(cfg.KafkaBrokersSlice(), cfg.KafkaReportTopic)
	defer func() {
		if cerr := reports.Close(); cerr != nil {
			logrus.Errorf("report publisher close: %v", cerr)
		}
	}()

	consumer := kafka.NewConsumer(kafka.Config{
		Brokers:    cfg.KafkaBrokersSlice(),
		GroupID:    cfg.KafkaGroupID,
		Topic:      cfg.KafkaImportTopic,
		DLQ:        cfg.KafkaImportTopic + ".dlq",
		MaxRetries: 3,
	}, svc, reports, log)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := consumer.Subscribe(ctx); err != nil {
			logrus.Errorf("consumer stopped: %v", err)
			cancel()
		}
	}()
	logrus.Print("kafka subscription started")

	h := httpdelivery.NewHandler(svc, svc)
	srv := new(httpdelivery.Server)

	go func() {
		if err := srv.Run(cfg.HTTPAddr, h.InitRoutes()); err != nil {
			logrus.Errorf("http run: %v", err)
			cancel()
		}
	}()
	logrus.Printf("http server started on %s", cfg.HTTPAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	select {
	case <-quit:
		logrus.Print("shutdown signal received")
	case <-ctx.Done():
		logrus.Print("context canceled, shutting down")
	}
	cancel()

	if err := srv.Shutdown(context.Background()); err != nil {
		logrus.Errorf("http shutdown: %s", err)
	}

	if err := consumer.Close(); err != nil {
		logrus.Errorf("consumer close: %s", err)
	}

	wg.Wait()
	logrus.Print("service stopped")
}
