package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig
	DB      DBConfig
	Redis   RedisConfig
	JWT     JWTConfig
	Booking BookingConfig
	SMS     SMSConfig
}

type AppConfig struct {
	Port string
	Env  string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

// BookingConfig holds the booking policy for the Resource Center and the
// defaults applied to outreach locations that don't set their own.
type BookingConfig struct {
	ResourceCenterWeekdays []time.Weekday // weekdays the Resource Center is open
	ResourceCenterOpen     string         // first slot start, HH:MM
	ResourceCenterClose    string         // closing time, HH:MM (no slot starts at or after it)
	SlotIntervalMinutes    int
	ResourceCenterCapacity int // spots per slot when no age-group split applies
	Under15Capacity        int // 0 = no age-group split
	Over15Capacity         int
	ResourceCenterFee      int64 // fixed fee, Resource Center visits only
	OutreachCapacity       int   // fallback for outreach locations with capacity 0
}

type SMSConfig struct {
	SenderID string
	Simulate bool
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	accessExpiry, err := time.ParseDuration(viper.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	config := &Config{
		App: AppConfig{
			Port: viper.GetString("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       viper.GetString("JWT_SECRET"),
			AccessExpiry: accessExpiry,
		},
		Booking: loadBookingConfig(),
		SMS: SMSConfig{
			SenderID: viper.GetString("SMS_SENDER_ID"),
			Simulate: viper.GetBool("SMS_SIMULATE"),
		},
	}

	return config, nil
}

func loadBookingConfig() BookingConfig {
	cfg := BookingConfig{
		ResourceCenterWeekdays: parseWeekdays(viper.GetString("BOOKING_RC_WEEKDAYS")),
		ResourceCenterOpen:     viper.GetString("BOOKING_RC_OPEN"),
		ResourceCenterClose:    viper.GetString("BOOKING_RC_CLOSE"),
		SlotIntervalMinutes:    viper.GetInt("BOOKING_SLOT_INTERVAL_MINUTES"),
		ResourceCenterCapacity: viper.GetInt("BOOKING_RC_CAPACITY"),
		Under15Capacity:        viper.GetInt("BOOKING_RC_UNDER15_CAPACITY"),
		Over15Capacity:         viper.GetInt("BOOKING_RC_15PLUS_CAPACITY"),
		ResourceCenterFee:      viper.GetInt64("BOOKING_RC_FEE"),
		OutreachCapacity:       viper.GetInt("BOOKING_OUTREACH_CAPACITY"),
	}

	// Seed-data defaults: Tue/Thu, hourly 09:00-16:00, 3 spots, 500 fee.
	if len(cfg.ResourceCenterWeekdays) == 0 {
		cfg.ResourceCenterWeekdays = []time.Weekday{time.Tuesday, time.Thursday}
	}
	if cfg.ResourceCenterOpen == "" {
		cfg.ResourceCenterOpen = "09:00"
	}
	if cfg.ResourceCenterClose == "" {
		cfg.ResourceCenterClose = "16:00"
	}
	if cfg.SlotIntervalMinutes <= 0 {
		cfg.SlotIntervalMinutes = 60
	}
	if cfg.ResourceCenterCapacity <= 0 {
		cfg.ResourceCenterCapacity = 3
	}
	if cfg.ResourceCenterFee <= 0 {
		cfg.ResourceCenterFee = 500
	}
	if cfg.OutreachCapacity <= 0 {
		cfg.OutreachCapacity = 5
	}

	return cfg
}

// parseWeekdays parses a comma-separated list of weekday names, e.g. "Tuesday,Thursday".
// Unknown names are skipped.
func parseWeekdays(raw string) []time.Weekday {
	names := map[string]time.Weekday{
		"sunday":    time.Sunday,
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
	}

	var days []time.Weekday
	for _, part := range strings.Split(raw, ",") {
		if day, ok := names[strings.ToLower(strings.TrimSpace(part))]; ok {
			days = append(days, day)
		}
	}
	return days
}
