package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Config carries everything the service reads from the environment. A .env
// file in the working directory is loaded first when present.
type Config struct {
	DBType             string // sqlite or postgres
	DBPath             string // sqlite file path
	DBDSN              string // postgres dsn
	RedisAddr          string // empty disables the cache
	KafkaBrokers       string // empty disables audit events
	Governance         []string
	ComplianceSchedule string
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err == nil {
		logrus.Info("loaded .env file")
	}

	v := viper.New()
	v.SetEnvPrefix("custody")
	v.AutomaticEnv()
	v.SetDefault("db_type", "sqlite")
	v.SetDefault("db_path", ".db/custody.db")
	v.SetDefault("db_dsn", "")
	v.SetDefault("redis_addr", "")
	v.SetDefault("kafka_brokers", "")
	v.SetDefault("governance", "")
	v.SetDefault("compliance_schedule", "@hourly")

	cnf := &Config{
		DBType:             v.GetString("db_type"),
		DBPath:             v.GetString("db_path"),
		DBDSN:              v.GetString("db_dsn"),
		RedisAddr:          v.GetString("redis_addr"),
		KafkaBrokers:       v.GetString("kafka_brokers"),
		ComplianceSchedule: v.GetString("compliance_schedule"),
	}

	for _, principal := range strings.Split(v.GetString("governance"), ",") {
		principal = strings.TrimSpace(principal)
		if principal != "" {
			cnf.Governance = append(cnf.Governance, principal)
		}
	}

	return cnf
}

func GetDb(cnf *Config) *gorm.DB {
	var (
		db  *gorm.DB
		err error
	)

	switch cnf.DBType {
	case "postgres":
		db, err = gorm.Open(postgres.Open(cnf.DBDSN), &gorm.Config{})
	default:
		db, err = gorm.Open(sqlite.Open(cnf.DBPath), &gorm.Config{})
	}
	if err != nil {
		logrus.Fatalf("failed to connect to %s database: %v", cnf.DBType, err)
	}

	return db
}
