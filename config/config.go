package config

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server   Server
	Database Database
	Redis    Redis
	Kafka    Kafka
	Ranking  Ranking
}

type Server struct {
	Port string
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Kafka struct {
	Brokers []string
	Topic   string
	GroupID string
}

type Ranking struct {
	// Propagation selects how grading results reach the ranking store:
	// "kafka" (default) publishes events, "sync" updates Redis inline.
	Propagation string
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("KAFKA_BROKERS", []string{"localhost:9092"})
	viper.SetDefault("KAFKA_TOPIC", "exam-graded")
	viper.SetDefault("KAFKA_GROUP_ID", "cbt-ranking-group")
	viper.SetDefault("RANKING_PROPAGATION", "kafka")

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")

	config.Redis.Addr = viper.GetString("REDIS_ADDR")
	config.Redis.Password = viper.GetString("REDIS_PASSWORD")
	config.Redis.DB = viper.GetInt("REDIS_DB")

	config.Kafka.Brokers = viper.GetStringSlice("KAFKA_BROKERS")
	config.Kafka.Topic = viper.GetString("KAFKA_TOPIC")
	config.Kafka.GroupID = viper.GetString("KAFKA_GROUP_ID")

	config.Ranking.Propagation = viper.GetString("RANKING_PROPAGATION")

	log.Info().Str("port", config.Server.Port).Str("ranking_propagation", config.Ranking.Propagation).Msg("Config loaded")
	return &config, nil
}
