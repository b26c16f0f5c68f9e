package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gearguard/models"
	"gearguard/utils"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type DBConfig struct {
	Driver       string `mapstructure:"driver"`
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Name         string `mapstructure:"name"`
	SSLMode      string `mapstructure:"ssl_mode"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type Config struct {
	Environment        string        `mapstructure:"environment"`
	ServerPort         string        `mapstructure:"server_port"`
	DB                 DBConfig      `mapstructure:"db"`
	JWTSecret          string        `mapstructure:"jwt_secret"`
	OriginURLs         string        `mapstructure:"origin_urls"`
	WorkflowStrict     bool          `mapstructure:"workflow_strict"`
	Redis              RedisConfig   `mapstructure:"redis"`
	RateLimitReset     int           `mapstructure:"rate_limit_reset"`
	SMTP               SMTPConfig    `mapstructure:"smtp"`
	FromEmail          string        `mapstructure:"from_email"`
	FromName           string        `mapstructure:"from_name"`
	SentryDSN          string        `mapstructure:"sentry_dsn"`
	LogLevel           string        `mapstructure:"log_level"`
	LogFormat          string        `mapstructure:"log_format"`
	SeedAdminEmail     string        `mapstructure:"seed_admin_email"`
	SeedAdminPassword  string        `mapstructure:"seed_admin_password"`
	ResetSweepInterval time.Duration `mapstructure:"reset_sweep_interval"`
}

func init() {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Origins splits ORIGIN_URLS into a trimmed list.
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.OriginURLs, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// LoadConfig resolves configuration from defaults, an optional YAML file
// and the environment, in increasing priority.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("environment", "development")
	v.SetDefault("server_port", "5001")
	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "gearguard")
	v.SetDefault("db.ssl_mode", "disable")
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.max_open_conns", 100)
	v.SetDefault("jwt_secret", "")
	v.SetDefault("origin_urls", "http://localhost:5173")
	v.SetDefault("workflow_strict", false)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("rate_limit_reset", 5)
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("from_email", "")
	v.SetDefault("from_name", "GearGuard")
	v.SetDefault("sentry_dsn", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("seed_admin_email", "")
	v.SetDefault("seed_admin_password", "")
	v.SetDefault("reset_sweep_interval", "15m")

	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return nil, fmt.Errorf("config read error: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}

	logConfig(&cfg)
	return &cfg, nil
}

func validate(c *Config) error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	if !c.IsDevelopment() && len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters outside development")
	}
	switch c.DB.Driver {
	case "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.DB.Password == "" && !c.IsDevelopment() {
		return errors.New("DB_PASSWORD is required")
	}
	if strings.TrimSpace(c.ServerPort) == "" {
		return errors.New("SERVER_PORT must not be empty")
	}
	if c.RateLimitReset <= 0 {
		return errors.New("RATE_LIMIT_RESET must be positive")
	}
	if c.ResetSweepInterval <= 0 {
		return errors.New("RESET_SWEEP_INTERVAL must be positive")
	}
	return nil
}

// DSN builds the driver-specific connection string.
func (c *DBConfig) DSN() string {
	if c.Driver == "mysql" {
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.User, c.Password, c.Host, c.Port, c.Name)
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// ConnectDB opens the configured database and sizes its pool.
func ConnectDB(cfg *Config) (*gorm.DB, error) {
	log := utils.Logger("config")
	dsn := cfg.DB.DSN()
	log.WithField("dsn", maskPassword(dsn)).Info("connecting to database")

	var dialector gorm.Dialector
	switch cfg.DB.Driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		dialector = postgres.Open(dsn)
	}

	gormCfg := &gorm.Config{TranslateError: true}
	if !cfg.IsDevelopment() {
		gormCfg.Logger = logger.Default.LogMode(logger.Warn)
	}
	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get DB instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	log.Info("connected to database")
	return db, nil
}

// Migrate creates or updates every table and seeds the default manager
// when seed credentials are configured.
func Migrate(db *gorm.DB, seedEmail, seedPassword string) error {
	log := utils.Logger("config")
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}

	seedEmail = strings.ToLower(strings.TrimSpace(seedEmail))
	if seedEmail == "" || seedPassword == "" {
		log.Debug("no seed manager configured")
		return nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}
	created, err := models.SeedManager(db, "Administrator", seedEmail, string(hashed))
	if err != nil {
		return fmt.Errorf("seed manager: %w", err)
	}
	if created {
		log.WithField("email", seedEmail).Info("seeded manager account")
	}
	return nil
}

func maskPassword(dsn string) string {
	const passwordMarker = "password="
	startIdx := strings.Index(dsn, passwordMarker)
	if startIdx == -1 {
		// user:pass@tcp(...) form
		at := strings.Index(dsn, "@")
		colon := strings.Index(dsn, ":")
		if at == -1 || colon == -1 || colon > at {
			return dsn
		}
		return dsn[:colon+1] + "*****" + dsn[at:]
	}

	startIdx += len(passwordMarker)
	endIdx := strings.IndexAny(dsn[startIdx:], " ")
	if endIdx == -1 {
		return dsn[:startIdx] + "*****"
	}
	return dsn[:startIdx] + "*****" + dsn[startIdx+endIdx:]
}

func logConfig(c *Config) {
	utils.Logger("config").WithFields(map[string]interface{}{
		"environment":     c.Environment,
		"server_port":     c.ServerPort,
		"database":        fmt.Sprintf("%s://%s@%s:%s/%s", c.DB.Driver, c.DB.User, c.DB.Host, c.DB.Port, c.DB.Name),
		"workflow_strict": c.WorkflowStrict,
		"redis":           c.Redis.Enabled,
		"smtp":            c.SMTP.Host != "",
		"sentry":          c.SentryDSN != "",
	}).Info("loaded configuration")
}
