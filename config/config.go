package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/studyroom/reservation-service/internal/service"
)

type Config struct {
	ServerPort string

	// csv | sqlite | postgres | memory
	StorageDriver string
	CSVPath       string
	SQLitePath    string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string

	RabbitURL     string
	AdminPassword string

	Rooms                  []string
	StudentIDLength        int
	MinPartySize           int
	MaxDurationMinutes     int
	CheckinEarlyMinutes    int
	NoShowGraceMinutes     int
	ExtensionWindowMinutes int
	ExtensionPolicy        string
	BookingHorizonDays     int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),

		StorageDriver: getEnv("STORAGE_DRIVER", "csv"),
		CSVPath:       getEnv("CSV_PATH", "reservations.csv"),
		SQLitePath:    getEnv("SQLITE_PATH", "reservations.db"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "postgres"),
		DBName:        getEnv("DB_NAME", "studyroom"),

		RabbitURL:     getEnv("RABBITMQ_URL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		Rooms:                  splitList(getEnv("ROOMS", "room1,room2")),
		StudentIDLength:        getEnvInt("STUDENT_ID_LENGTH", 10),
		MinPartySize:           getEnvInt("MIN_PARTY_SIZE", 3),
		MaxDurationMinutes:     getEnvInt("MAX_DURATION_MINUTES", 180),
		CheckinEarlyMinutes:    getEnvInt("CHECKIN_EARLY_MINUTES", 10),
		NoShowGraceMinutes:     getEnvInt("NO_SHOW_GRACE_MINUTES", 15),
		ExtensionWindowMinutes: getEnvInt("EXTENSION_WINDOW_MINUTES", 30),
		ExtensionPolicy:        getEnv("EXTENSION_POLICY", service.ExtendSilent),
		BookingHorizonDays:     getEnvInt("BOOKING_HORIZON_DAYS", 14),
	}
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

func (c *Config) Policy() service.Policy {
	return service.Policy{
		Rooms:              c.Rooms,
		StudentIDLength:    c.StudentIDLength,
		MinPartySize:       c.MinPartySize,
		MaxDuration:        time.Duration(c.MaxDurationMinutes) * time.Minute,
		CheckinEarly:       time.Duration(c.CheckinEarlyMinutes) * time.Minute,
		NoShowGrace:        time.Duration(c.NoShowGraceMinutes) * time.Minute,
		ExtensionWindow:    time.Duration(c.ExtensionWindowMinutes) * time.Minute,
		ExtensionPolicy:    c.ExtensionPolicy,
		BookingHorizonDays: c.BookingHorizonDays,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
