package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/voronovmaksim88/KIS3-v3r3/internal/configs"
	"github.com/voronovmaksim88/KIS3-v3r3/internal/delivery/kafka"
	"github.com/voronovmaksim88/KIS3-v3r3/internal/importer"
	"github.com/voronovmaksim88/KIS3-v3r3/internal/kis2"
	"github.com/voronovmaksim88/KIS3-v3r3/internal/repository/postgres"
)

// One-shot import run. -all runs the whole pipeline in dependency
// order; -entity <name> limits the run to one entity. The outcome is
// logged and, when kafka is reachable, published to the report topic.
func main() {
	entity := flag.String("entity", "", "import a single entity by its public name")
	all := flag.Bool("all", false, "run the full import pipeline")
	flag.Parse()
	if *all == (*entity != "") {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg, err := configs.LoadConfig()
	if err != nil {
		logrus.Fatalf("config load: %s", err)
	}

	db, err := postgres.ConnectDB(cfg.PgDSN())
	if err != nil {
		logrus.Fatalf("postgres connect: %s", err)
	}
	defer func() {
		if derr := db.Close(); derr != nil {
			logrus.Errorf("db close: %v", derr)
		}
	}()

	log := logrus.StandardLogger()
	src := kis2.NewClient(kis2.Config{
		BaseURL:  cfg.KIS2BaseURL,
		Username: cfg.KIS2Username,
		Password: cfg.KIS2Password,
		Timeout:  cfg.KIS2Timeout,
	}, log)

	im := importer.New(db, src, log, cfg.ImportCompareTZOffsetHours)

	var report interface{}
	ok := true
	if *entity != "" {
		et, perr := importer.ParseEntityType(*entity)
		if perr != nil {
			logrus.Fatalf("bad entity name %q: %s", *entity, perr)
		}
		res := im.ImportEntity(et)
		ok = res.Status == importer.StatusSuccess
		report = map[string]interface{}{"entity": et.String(), "result": res}
	} else {
		run := im.ImportAll()
		for _, res := range run.Details {
			if res.Status != importer.StatusSuccess {
				ok = false
			}
		}
		report = run
	}

	payload, err := json.Marshal(report)
	if err != nil {
		logrus.Fatalf("marshal report: %s", err)
	}
	logrus.Printf("import finished: %s", payload)

	pub := kafka.NewPublisher(cfg.KafkaBrokersSlice(), cfg.KafkaReportTopic)
	if perr := pub.Publish(context.Background(), payload); perr != nil {
		logrus.Errorf("publish report: %v", perr)
	}
	if cerr := pub.Close(); cerr != nil {
		logrus.Errorf("publisher close: %v", cerr)
	}

	if !ok {
		os.Exit(1)
	}
}
