package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fblazt/toolbox/internal/tools/imageconv"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Режимы хранилища.
const (
	ModeDatabase = "database"
	ModeRedis    = "redis"
	ModeSQLite   = "sqlite"
	ModeFile     = "file"
	ModeMemory   = "in-memory"
)

// Config хранит конфигурацию сервера
type Config struct {
	ServerAddress    string        `json:"server_address"`
	GRPCAddress      string        `json:"grpc_address"`
	FileStoragePath  string        `json:"file_storage_path"`
	DatabaseDSN      string        `json:"database_dsn"`
	RedisAddr        string        `json:"redis_addr"`
	RedisPassword    string        `json:"redis_password"`
	RedisDB          int           `json:"redis_db"`
	SQLitePath       string        `json:"sqlite_path"`
	SessionSecret    string        `json:"session_secret"`
	ImageQuality     int           `json:"image_default_quality"`
	ImageMaxParallel int           `json:"image_max_parallel"`
	ImageBatchPolicy string        `json:"image_batch_policy"`
	ImageMaxPixels   int           `json:"image_max_pixels"`
	MaxUploadBytes   int64         `json:"max_upload_bytes"`
	APITesterTimeout time.Duration `json:"api_tester_timeout"`
	WorkspaceIdle    time.Duration `json:"workspace_idle"`

	// APITesterAllowPrivate разрешает запросы на loopback и частные адреса.
	APITesterAllowPrivate bool `json:"api_tester_allow_private"`

	Mode string `json:"-"`
}

func defaults(v *viper.Viper) {
	v.SetDefault("SERVER_ADDRESS", "localhost:8080")
	v.SetDefault("GRPC_ADDRESS", "")
	v.SetDefault("FILE_STORAGE_PATH", "toolbox.json")
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SQLITE_PATH", "")
	v.SetDefault("SESSION_SECRET", "toolbox-dev-secret")
	v.SetDefault("IMAGE_DEFAULT_QUALITY", imageconv.DefaultQuality)
	v.SetDefault("IMAGE_MAX_PARALLEL", 0)
	v.SetDefault("IMAGE_BATCH_POLICY", string(imageconv.PolicyAllOrNothing))
	v.SetDefault("IMAGE_MAX_PIXELS", imageconv.DefaultMaxPixels)
	v.SetDefault("MAX_UPLOAD_BYTES", 32<<20)
	v.SetDefault("API_TESTER_TIMEOUT", time.Duration(0))
	v.SetDefault("API_TESTER_ALLOW_PRIVATE", false)
	v.SetDefault("WORKSPACE_IDLE", 24*time.Hour)
}

// NewConfig инициализирует конфигурацию на основе аргументов командной строки
func NewConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load собирает конфигурацию. Приоритет: флаги, затем переменные окружения
// и .env, затем файл конфигурации (JSON или YAML), затем значения по умолчанию.
func Load(args []string) (*Config, error) {
	// Читаем .env, если есть (не переопределяет переменные окружения!)
	_ = godotenv.Load() // Ошибку игнорируем, если файла нет

	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	fs := flag.NewFlagSet("toolbox", flag.ContinueOnError)
	serverAddress := fs.String("a", "", "server address")
	grpcAddress := fs.String("g", "", "gRPC address")
	fileStoragePath := fs.String("f", "", "file storage path (JSON lines)")
	databaseDSN := fs.String("d", "", "PostgreSQL DSN")
	redisAddr := fs.String("r", "", "Redis address")
	sqlitePath := fs.String("s", "", "SQLite database path")
	quality := fs.Int("q", 0, "default WebP quality (1-100)")
	policy := fs.String("p", "", "image batch policy: all-or-nothing or best-effort")
	configPath := fs.String("c", "", "path to JSON or YAML config file")
	fs.StringVar(configPath, "config", "", "path to JSON or YAML config file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Загружаем файл конфигурации (если указан)
	if *configPath == "" {
		*configPath = v.GetString("CONFIG")
	}
	if *configPath != "" {
		if err := applyFile(v, *configPath); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		ServerAddress:    v.GetString("SERVER_ADDRESS"),
		GRPCAddress:      v.GetString("GRPC_ADDRESS"),
		FileStoragePath:  v.GetString("FILE_STORAGE_PATH"),
		DatabaseDSN:      v.GetString("DATABASE_DSN"),
		RedisAddr:        v.GetString("REDIS_ADDR"),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		RedisDB:          v.GetInt("REDIS_DB"),
		SQLitePath:       v.GetString("SQLITE_PATH"),
		SessionSecret:    v.GetString("SESSION_SECRET"),
		ImageQuality:     v.GetInt("IMAGE_DEFAULT_QUALITY"),
		ImageMaxParallel: v.GetInt("IMAGE_MAX_PARALLEL"),
		ImageBatchPolicy: v.GetString("IMAGE_BATCH_POLICY"),
		ImageMaxPixels:   v.GetInt("IMAGE_MAX_PIXELS"),
		MaxUploadBytes:   v.GetInt64("MAX_UPLOAD_BYTES"),
		APITesterTimeout: v.GetDuration("API_TESTER_TIMEOUT"),
		WorkspaceIdle:    v.GetDuration("WORKSPACE_IDLE"),

		APITesterAllowPrivate: v.GetBool("API_TESTER_ALLOW_PRIVATE"),
	}

	// Если флаг передан, он главнее
	override := func(flagVal string, target *string) {
		if flagVal != "" {
			*target = flagVal
		}
	}
	override(*serverAddress, &cfg.ServerAddress)
	override(*grpcAddress, &cfg.GRPCAddress)
	override(*fileStoragePath, &cfg.FileStoragePath)
	override(*databaseDSN, &cfg.DatabaseDSN)
	override(*redisAddr, &cfg.RedisAddr)
	override(*sqlitePath, &cfg.SQLitePath)
	override(*policy, &cfg.ImageBatchPolicy)
	if *quality != 0 {
		cfg.ImageQuality = *quality
	}

	// Определяем режим работы
	switch {
	case cfg.DatabaseDSN != "":
		cfg.Mode = ModeDatabase
	case cfg.RedisAddr != "":
		cfg.Mode = ModeRedis
	case cfg.SQLitePath != "":
		cfg.Mode = ModeSQLite
	case cfg.FileStoragePath != "":
		cfg.Mode = ModeFile
	default:
		cfg.Mode = ModeMemory
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("ошибка конфигурации: %w", err)
	}
	return cfg, nil
}

// applyFile кладёт значения из файла конфигурации в viper как значения
// по умолчанию, чтобы окружение и флаги оставались главнее.
// Файлы .yaml и .yml разбираются как YAML, остальные как JSON.
func applyFile(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("не удалось прочитать файл конфигурации %q: %w", path, err)
	}
	raw := map[string]any{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return fmt.Errorf("ошибка разбора файла конфигурации: %w", err)
	}
	keys := map[string]string{
		"server_address":        "SERVER_ADDRESS",
		"grpc_address":          "GRPC_ADDRESS",
		"file_storage_path":     "FILE_STORAGE_PATH",
		"database_dsn":          "DATABASE_DSN",
		"redis_addr":            "REDIS_ADDR",
		"redis_password":        "REDIS_PASSWORD",
		"redis_db":              "REDIS_DB",
		"sqlite_path":           "SQLITE_PATH",
		"session_secret":        "SESSION_SECRET",
		"image_default_quality": "IMAGE_DEFAULT_QUALITY",
		"image_max_parallel":    "IMAGE_MAX_PARALLEL",
		"image_batch_policy":    "IMAGE_BATCH_POLICY",
		"image_max_pixels":      "IMAGE_MAX_PIXELS",
		"max_upload_bytes":      "MAX_UPLOAD_BYTES",
		"api_tester_timeout":    "API_TESTER_TIMEOUT",
		"workspace_idle":        "WORKSPACE_IDLE",

		"api_tester_allow_private": "API_TESTER_ALLOW_PRIVATE",
	}
	for jsonKey, envKey := range keys {
		if val, ok := raw[jsonKey]; ok {
			v.SetDefault(envKey, val)
		}
	}
	return nil
}

// Validate проверяет корректность конфигурации
func (cfg *Config) Validate() error {
	if cfg.ServerAddress == "" {
		return fmt.Errorf("адрес сервера не может быть пустым")
	}
	if err := imageconv.ValidateQuality(cfg.ImageQuality); err != nil {
		return err
	}
	if cfg.ImageMaxParallel < 0 {
		return fmt.Errorf("image_max_parallel не может быть отрицательным")
	}
	if cfg.ImageMaxPixels <= 0 {
		return fmt.Errorf("image_max_pixels должен быть положительным")
	}
	if cfg.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes должен быть положительным")
	}
	if _, err := imageconv.ParsePolicy(cfg.ImageBatchPolicy); err != nil {
		return err
	}
	if cfg.SessionSecret == "" {
		return fmt.Errorf("session_secret не может быть пустым")
	}
	return nil
}

// Policy возвращает политику пакетной конвертации.
func (cfg *Config) Policy() imageconv.Policy {
	p, _ := imageconv.ParsePolicy(cfg.ImageBatchPolicy)
	return p
}
