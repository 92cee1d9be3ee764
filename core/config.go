package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		Debug            bool
		TestMode         bool
		Env              string // DEV (default), TEST, QA, PROD
		Build            string
		AppName          string
		SecretKey        string
		FrontendBaseURL  string
		DefaultFromEmail string
		SendgridAPIKey   string
		RollbarToken     string

		Server     ServerConfig
		Store      StoreConfig
		Blob       BlobConfig
		Attendance AttendanceConfig
	}

	ServerConfig struct {
		Host                      string
		Port                      string
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	// StoreConfig configures the embedded document store.
	StoreConfig struct {
		Path   string
		Bucket string
	}

	// BlobConfig configures the Backblaze B2 blob store.
	BlobConfig struct {
		B2AccountID string
		B2AppKey    string
		B2Bucket    string
	}

	AttendanceConfig struct {
		WarnThresholdPct int
	}
)

func (c ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// NewConfig loads the app configuration from the environment;
// appRoot/config/.env.<env> is loaded first if it exists.
func NewConfig(appRoot string) *Config {
	conf := viper.New()
	conf.SetTypeByDefaultValue(true)

	// defaults
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "CampusConnect")
	conf.SetDefault("secretKey", "v#y8sg)o0i&$vi^fn1l7=7t+pa&2!7u9c@e8ozmm2yd0*78+-3")
	conf.SetDefault("frontendBaseURL", "http://localhost:3000")
	conf.SetDefault("defaultFromEmail", "noreply@localhost")
	conf.SetDefault("serverHost", "localhost")
	conf.SetDefault("serverPort", "8000")
	conf.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	conf.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	conf.SetDefault("storePath", filepath.Join(appRoot, "campusconnect.db"))
	conf.SetDefault("storeBucket", "campusconnect")
	conf.SetDefault("attendanceWarnThresholdPct", 75)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(appRoot, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Debug:            conf.GetBool("debug"),
		TestMode:         env == "TEST",
		Env:              env,
		Build:            conf.GetString("build"),
		AppName:          conf.GetString("appName"),
		SecretKey:        conf.GetString("secretKey"),
		FrontendBaseURL:  conf.GetString("frontendBaseURL"),
		DefaultFromEmail: conf.GetString("defaultFromEmail"),
		SendgridAPIKey:   conf.GetString("sendgridAPIKey"),
		RollbarToken:     conf.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:                      conf.GetString("serverHost"),
			Port:                      conf.GetString("serverPort"),
			JWTExpirationDelta:        conf.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: conf.GetDuration("jwtRefreshExpirationDelta"),
		},
		Store: StoreConfig{
			Path:   conf.GetString("storePath"),
			Bucket: conf.GetString("storeBucket"),
		},
		Blob: BlobConfig{
			B2AccountID: conf.GetString("b2AccountID"),
			B2AppKey:    conf.GetString("b2AppKey"),
			B2Bucket:    conf.GetString("b2Bucket"),
		},
		Attendance: AttendanceConfig{
			WarnThresholdPct: conf.GetInt("attendanceWarnThresholdPct"),
		},
	}
}
