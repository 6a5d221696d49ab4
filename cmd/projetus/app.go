package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectologger"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/snak3gh0st/projetustgov/config"
	"github.com/snak3gh0st/projetustgov/internal/repositories/extractionlog"
	"github.com/snak3gh0st/projetustgov/internal/repositories/lineage"
	"github.com/snak3gh0st/projetustgov/pkg/database"
	"github.com/snak3gh0st/projetustgov/pkg/events"
	"github.com/snak3gh0st/projetustgov/pkg/health"
	"github.com/snak3gh0st/projetustgov/pkg/kafka"
	"github.com/snak3gh0st/projetustgov/pkg/loader"
	"github.com/snak3gh0st/projetustgov/pkg/parser"
	"github.com/snak3gh0st/projetustgov/pkg/pipeline"
	"github.com/snak3gh0st/projetustgov/pkg/reconcile"
	"github.com/snak3gh0st/projetustgov/pkg/tracing"
	"github.com/snak3gh0st/projetustgov/pkg/validator"
)

// app holds the fully wired collaborators for one command invocation
type app struct {
	cfg      *config.Config
	logger   ectologger.Logger
	db       database.DB
	tp       *sdktrace.TracerProvider
	producer *kafka.Producer

	reader   *parser.Reader
	pipeline *pipeline.Pipeline
	checker  *reconcile.Checker
	volume   *reconcile.VolumeChecker
	health   *health.Checker
	logs     *extractionlog.Repository
}

// newApp loads configuration, connects to the store, runs migrations, and
// wires every component explicitly.
func newApp(ctx context.Context) (*app, error) {
	_ = godotenv.Load()

	cfg := &config.Config{}
	if err := ectoenv.BindEnv(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}

	logger := newLogger()
	tp := tracing.InitProvider(cfg.AppName)

	db, err := database.Connect(ctx, database.ConnectionConfig{
		Driver:          cfg.DatabaseDriver,
		Host:            cfg.DatabaseHost,
		Port:            cfg.DatabasePort,
		UserName:        cfg.DatabaseUserName,
		Password:        cfg.DatabasePassword,
		Name:            cfg.DatabaseName,
		SSLMode:         cfg.DatabaseSSLMode,
		MaxOpenConns:    cfg.DatabaseMaxOpenConns,
		MaxIdleConns:    cfg.DatabaseMaxIdleConns,
		ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	migrations := database.NewMigrationService(logger, &database.MigrationConfig{
		MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
		Version:             uint(cfg.DatabaseMigrationVersion),
		Force:               cfg.DatabaseMigrationForce,
	})
	if err := migrations.Migrate(cfg.DatabaseName, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	var producer *kafka.Producer
	var emitter *events.Emitter
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaBrokers[0] != "" {
		producer = kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.KafkaBrokers,
			Topic:        cfg.KafkaOutputTopic,
			BatchSize:    cfg.KafkaBatchSize,
			BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
			RequiredAcks: cfg.KafkaRequiredAcks,
			Compression:  cfg.KafkaCompression,
		}, logger)
		emitter = events.NewEmitter(producer, logger)
	}

	reader := parser.NewReader(parser.SchemaPolicy(cfg.SchemaPolicy), logger)
	validate := validator.New(logger)
	engine := loader.NewEngine(cfg.UpsertBatchSize, logger)
	load := loader.NewLoader(engine, logger)
	logs := extractionlog.NewRepository(db, logger)
	lineageRepo := lineage.NewRepository(db, logger)

	pipe := pipeline.New(db, reader, validate, load, logs, lineageRepo, emitter, cfg.RawDataDir, cfg.PipelineVersion, logger)
	checker := reconcile.NewChecker(reader, lineageRepo, emitter, nil, cfg.AlertOnMismatch, logger)
	volume := reconcile.NewVolumeChecker(db, logs, emitter, cfg.VolumeTolerancePercent, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		tp:       tp,
		producer: producer,
		reader:   reader,
		pipeline: pipe,
		checker:  checker,
		volume:   volume,
		health:   health.NewChecker(logs, logger),
		logs:     logs,
	}, nil
}

func (a *app) Close(ctx context.Context) {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.WithError(err).Warn("Failed to close Kafka producer")
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).Warn("Failed to close database")
	}
	if err := a.tp.Shutdown(ctx); err != nil {
		a.logger.WithError(err).Warn("Failed to shut down tracer provider")
	}
}

// newLogger writes each log message as one JSON line on stdout
func newLogger() ectologger.Logger {
	enc := json.NewEncoder(os.Stdout)
	return ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {
		_ = enc.Encode(msg)
	})
}

// printJSON renders a command result for machine consumption
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
