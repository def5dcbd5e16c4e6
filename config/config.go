package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

const (
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultPort        = "8000"
	DefaultSQLitePath  = "chatbot.db"
	DefaultMongoDBName = "careerchat"
)

// DefaultAllowedOrigins 는 자격 증명을 포함한 호출을 허용하는 프론트엔드 origin 목록이다.
var DefaultAllowedOrigins = []string{
	"http://localhost:5173",
	"https://career-guidance-chat.vercel.app",
}

type AppConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
	Gemini  GeminiConfig  `yaml:"gemini"`
	Storage StorageConfig `yaml:"storage"`
	Session SessionConfig `yaml:"session"`
	Chat    ChatConfig    `yaml:"chat"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	if strings.Contains(s.Port, ":") {
		return s.Port
	}
	return ":" + s.Port
}

// GeminiConfig 는 응답 생성기에 전달되는 설정이다.
// APIKey 는 yaml 이 아니라 환경변수(GOOGLE_API_KEY, GEMINI_API_KEY)에서만 읽는다.
type GeminiConfig struct {
	APIKey string `yaml:"-"`
	Model  string `yaml:"model"`
	// Timeout 은 외부 호출 1회에 대한 제한 시간이다. 0 이면 제한하지 않는다.
	Timeout time.Duration `yaml:"timeout"`
}

// HasCredential reports whether an API key was configured.
func (g GeminiConfig) HasCredential() bool {
	return strings.TrimSpace(g.APIKey) != ""
}

type StorageConfig struct {
	Driver      string `yaml:"driver"`
	SQLitePath  string `yaml:"sqlite_path"`
	MongoURI    string `yaml:"mongo_uri"`
	MongoDBName string `yaml:"mongo_db_name"`
}

// SessionConfig controls how requests without a session header are treated.
type SessionConfig struct {
	// EchoGeneratedID returns a synthesized session id in the X-Session-Id
	// response header. Off by default: unheadered calls stay one-off sessions.
	EchoGeneratedID bool `yaml:"echo_generated_id"`
}

type ChatConfig struct {
	// CompensateOrphans deletes the stored user message when the bot reply
	// could not be stored.
	CompensateOrphans bool `yaml:"compensate_orphans"`
}

// Default returns the configuration used when no config.yaml is present.
func Default() AppConfig {
	return AppConfig{
		Logging: LoggingConfig{Level: "info"},
		Server: ServerConfig{
			Port:           DefaultPort,
			AllowedOrigins: append([]string(nil), DefaultAllowedOrigins...),
		},
		Gemini: GeminiConfig{Model: DefaultGeminiModel},
		Storage: StorageConfig{
			Driver:      "sqlite",
			SQLitePath:  DefaultSQLitePath,
			MongoDBName: DefaultMongoDBName,
		},
	}
}

// Load reads .env and config.yaml from basePath and applies environment
// overrides. A missing config.yaml is not an error; defaults are used.
func Load(basePath string) (*AppConfig, error) {
	// .env 가 없어도 정상 동작해야 하므로 에러는 무시한다.
	_ = godotenv.Load(filepath.Join(basePath, ENV_FILE))

	c := Default()
	data, err := os.ReadFile(filepath.Join(basePath, CONFIG_FILE))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", CONFIG_FILE, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("read %s: %w", CONFIG_FILE, err)
	}

	applyEnv(&c)
	fillDefaults(&c)
	return &c, nil
}

func applyEnv(c *AppConfig) {
	c.Gemini.APIKey = os.Getenv("GOOGLE_API_KEY")
	if c.Gemini.APIKey == "" {
		c.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		c.Server.Port = port
	}
	if lvl := strings.TrimSpace(os.Getenv("LOG_LEVEL")); lvl != "" {
		c.Logging.Level = lvl
	}
	if uri := strings.TrimSpace(os.Getenv("MONGO_URI")); uri != "" {
		c.Storage.MongoURI = uri
	}
}

func fillDefaults(c *AppConfig) {
	d := Default()
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Server.Port == "" {
		c.Server.Port = d.Server.Port
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = d.Server.AllowedOrigins
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = d.Gemini.Model
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = d.Storage.Driver
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = d.Storage.SQLitePath
	}
	if c.Storage.MongoDBName == "" {
		c.Storage.MongoDBName = d.Storage.MongoDBName
	}
}

// GetBasePath walks up from the working directory until it finds config.yaml.
// When none is found the working directory itself is returned.
func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return cwd
}
