package config

import "time"

type Config struct {
	AppName    string `env:"APP_NAME" env-default:"projetus-etl"`
	LogLevel   string `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs bool   `env:"PRETTY_LOGS" env-default:"false"`

	// PostgreSQL
	DatabaseDriver              string        `env:"DB_DRIVER" env-default:"postgres"`
	DatabaseHost                string        `env:"DB_HOST" env-default:""`
	DatabasePort                string        `env:"DB_PORT" env-default:"5432"`
	DatabaseUserName            string        `env:"DB_USER_NAME" env-default:""`
	DatabasePassword            string        `env:"DB_PASSWORD" env-default:""`
	DatabaseName                string        `env:"DB_NAME" env-default:"projetus"`
	DatabaseSSLMode             string        `env:"DB_SQL_MODE" env-default:"disable"`
	DatabaseMaxOpenConns        int           `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	DatabaseMaxIdleConns        int           `env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	DatabaseConnMaxLifetime     time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"10s"`
	DatabaseMigrationFolderPath string        `env:"DB_MIGRATION_FOLDER_PATH" env-default:"db/pg"`
	DatabaseMigrationVersion    int           `env:"DB_MIGRATION_VERSION" env-default:"0"`
	DatabaseMigrationForce      int           `env:"DB_MIGRATION_FORCE" env-default:"0"`

	// Extraction
	RawDataDir      string `env:"RAW_DATA_DIR" env-default:"data/raw"`
	UpsertBatchSize int    `env:"UPSERT_BATCH_SIZE" env-default:"500"`
	// SchemaPolicy controls how a missing required column is handled:
	// "warn" logs and continues, "strict" fails the file.
	SchemaPolicy    string `env:"SCHEMA_POLICY" env-default:"warn"`
	PipelineVersion string `env:"PIPELINE_VERSION" env-default:"dev"`

	// Reconciliation
	AlertOnMismatch bool `env:"ALERT_ON_MISMATCH" env-default:"true"`

	// VolumeTolerancePercent is the allowed swing in total landed records
	// against the previous run before the volume check alerts.
	VolumeTolerancePercent int `env:"VOLUME_TOLERANCE_PERCENT" env-default:"10"`

	// Kafka Producer (run + reconciliation events; disabled when no brokers)
	KafkaBrokers      []string `env:"KAFKA_BROKERS" env-default:""`
	KafkaOutputTopic  string   `env:"KAFKA_OUTPUT_TOPIC" env-default:"projetus-events"`
	KafkaBatchSize    int      `env:"KAFKA_BATCH_SIZE" env-default:"100"`
	KafkaBatchTimeout int      `env:"KAFKA_BATCH_TIMEOUT_MS" env-default:"100"`
	KafkaRequiredAcks int      `env:"KAFKA_REQUIRED_ACKS" env-default:"1"`
	KafkaCompression  string   `env:"KAFKA_COMPRESSION" env-default:"snappy"`
}
