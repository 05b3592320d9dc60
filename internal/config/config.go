package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DiscordToken  string         `yaml:"discord_token"`
	LogLevel      string         `yaml:"log_level"`
	Timezone      string         `yaml:"timezone"`
	Storage       StorageConfig  `yaml:"storage"`
	Health        HealthConfig   `yaml:"health"`
	Automod       AutomodConfig  `yaml:"automod"`
	Economy       EconomyConfig  `yaml:"economy"`
	Marriage      MarriageConfig `yaml:"marriage"`
	Staff         StaffConfig    `yaml:"staff"`
	AI            AIConfig       `yaml:"ai"`
	Notifications NotifyConfig   `yaml:"notifications"`

	location *time.Location
}

type StorageConfig struct {
	Driver  string    `yaml:"driver"`
	DataDir string    `yaml:"data_dir"`
	Path    string    `yaml:"path"`
	DSN     string    `yaml:"dsn"`
	Files   FileNames `yaml:"files"`
}

// FileNames are the document names used by every backend. With the json
// driver they are file names under DataDir.
type FileNames struct {
	Settings  string `yaml:"settings"`
	Guilds    string `yaml:"guilds"`
	Warns     string `yaml:"warns"`
	Mutes     string `yaml:"mutes"`
	StaffLogs string `yaml:"staff_logs"`
	Coins     string `yaml:"coins"`
	Marriages string `yaml:"marriages"`
}

type HealthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type AutomodConfig struct {
	SpamMessages       int `yaml:"spam_messages"`
	SpamWindowSeconds  int `yaml:"spam_window_seconds"`
	SpamWarningSeconds int `yaml:"spam_warning_seconds"`
	LogContentLimit    int `yaml:"log_content_limit"`
}

type EconomyConfig struct {
	DailyMin  int `yaml:"daily_min"`
	DailyMax  int `yaml:"daily_max"`
	PhraseMin int `yaml:"phrase_min"`
	PhraseMax int `yaml:"phrase_max"`
	TopLimit  int `yaml:"top_limit"`
}

type MarriageConfig struct {
	Cost               int `yaml:"cost"`
	AffinityMax        int `yaml:"affinity_max"`
	AffinityInitial    int `yaml:"affinity_initial"`
	AffinityGainMin    int `yaml:"affinity_gain_min"`
	AffinityGainMax    int `yaml:"affinity_gain_max"`
	ProposalSeconds    int `yaml:"proposal_seconds"`
	DivorceConfirmSecs int `yaml:"divorce_confirm_seconds"`
}

type StaffConfig struct {
	RoleNames        []string `yaml:"role_names"`
	AuditLogCap      int      `yaml:"audit_log_cap"`
	MuteMaxMinutes   int      `yaml:"mute_max_minutes"`
	ClearMaxMessages int      `yaml:"clear_max_messages"`
	WarnAlertCount   int      `yaml:"warn_alert_count"`
	StaffLogsDefault int      `yaml:"staff_logs_default"`
	ReconcileMinutes int      `yaml:"reconcile_minutes"`
}

type AIConfig struct {
	Enabled        bool    `yaml:"enabled"`
	Endpoint       string  `yaml:"endpoint"`
	Model          string  `yaml:"model"`
	APIKey         string  `yaml:"api_key"`
	AccessToken    string  `yaml:"access_token"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	RequestsPerMin float64 `yaml:"requests_per_minute"`
	Burst          int     `yaml:"burst"`
}

type NotifyConfig struct {
	AuditToChannel bool        `yaml:"audit_to_channel"`
	DMOnPunish     bool        `yaml:"dm_on_punish"`
	EmbedColors    EmbedColors `yaml:"embed_colors"`
}

type EmbedColors struct {
	Action  int `yaml:"action"`
	Warning int `yaml:"warning"`
	Error   int `yaml:"error"`
	Economy int `yaml:"economy"`
	Love    int `yaml:"love"`
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Timezone: "Local",
		Storage: StorageConfig{
			Driver:  "json",
			DataDir: "data",
			Path:    "data/canary.db",
			Files: FileNames{
				Settings:  "settings.json",
				Guilds:    "server_configs.json",
				Warns:     "user_warns.json",
				Mutes:     "user_mutes.json",
				StaffLogs: "staff_logs.json",
				Coins:     "user_coins.json",
				Marriages: "marriages.json",
			},
		},
		Health: HealthConfig{Enabled: false, Addr: ":8080"},
		Automod: AutomodConfig{
			SpamMessages:       5,
			SpamWindowSeconds:  10,
			SpamWarningSeconds: 10,
			LogContentLimit:    1000,
		},
		Economy: EconomyConfig{DailyMin: 50, DailyMax: 150, PhraseMin: 5, PhraseMax: 15, TopLimit: 3},
		Marriage: MarriageConfig{
			Cost:               25000,
			AffinityMax:        20,
			AffinityInitial:    20,
			AffinityGainMin:    1,
			AffinityGainMax:    2,
			ProposalSeconds:    300,
			DivorceConfirmSecs: 60,
		},
		Staff: StaffConfig{
			RoleNames:        []string{"Staff", "Moderador", "Admin", "Owner", "Administrador"},
			AuditLogCap:      1000,
			MuteMaxMinutes:   10080,
			ClearMaxMessages: 100,
			WarnAlertCount:   3,
			StaffLogsDefault: 5,
			ReconcileMinutes: 5,
		},
		AI: AIConfig{
			Enabled:        true,
			Endpoint:       "https://generativelanguage.googleapis.com/v1beta/models",
			Model:          "gemini-1.5-flash",
			TimeoutSeconds: 30,
			RequestsPerMin: 4,
			Burst:          2,
		},
		Notifications: NotifyConfig{
			AuditToChannel: true,
			DMOnPunish:     true,
			EmbedColors: EmbedColors{
				Action:  0x3498DB,
				Warning: 0xF1C40F,
				Error:   0xE74C3C,
				Economy: 0xF59E0B,
				Love:    0xFF69B4,
			},
		},
	}
}

func Load() (Config, error) {
	cfg := DefaultConfig()

	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	if cfg.DiscordToken == "" {
		return Config{}, errors.New("DISCORD_TOKEN is required")
	}

	cfg.Validate()
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DiscordToken = envString("DISCORD_TOKEN", cfg.DiscordToken)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.Timezone = envString("TIMEZONE", cfg.Timezone)
	cfg.Storage.Driver = envString("STORAGE_DRIVER", cfg.Storage.Driver)
	cfg.Storage.DataDir = envString("DATA_DIR", cfg.Storage.DataDir)
	cfg.Storage.Path = envString("DATABASE_PATH", cfg.Storage.Path)
	cfg.Storage.DSN = envString("DATABASE_URL", cfg.Storage.DSN)
	cfg.Health.Enabled = envBool("HEALTH_ENABLED", cfg.Health.Enabled)
	cfg.Health.Addr = envString("HEALTH_ADDR", cfg.Health.Addr)
	cfg.Automod.SpamMessages = envInt("SPAM_MESSAGES", cfg.Automod.SpamMessages)
	cfg.Automod.SpamWindowSeconds = envInt("SPAM_WINDOW_SECONDS", cfg.Automod.SpamWindowSeconds)
	cfg.Economy.DailyMin = envInt("DAILY_MIN", cfg.Economy.DailyMin)
	cfg.Economy.DailyMax = envInt("DAILY_MAX", cfg.Economy.DailyMax)
	cfg.Marriage.Cost = envInt("MARRIAGE_COST", cfg.Marriage.Cost)
	cfg.Staff.AuditLogCap = envInt("AUDIT_LOG_CAP", cfg.Staff.AuditLogCap)
	cfg.AI.Enabled = envBool("AI_ENABLED", cfg.AI.Enabled)
	cfg.AI.APIKey = envString("GEMINI_API_KEY", cfg.AI.APIKey)
	cfg.AI.AccessToken = envString("AI_ACCESS_TOKEN", cfg.AI.AccessToken)
	cfg.AI.Model = envString("AI_MODEL", cfg.AI.Model)
	cfg.AI.TimeoutSeconds = envInt("AI_TIMEOUT_SECONDS", cfg.AI.TimeoutSeconds)
	cfg.Notifications.AuditToChannel = envBool("AUDIT_TO_CHANNEL", cfg.Notifications.AuditToChannel)
	cfg.Notifications.DMOnPunish = envBool("DM_ON_PUNISH", cfg.Notifications.DMOnPunish)
}

// Validate repairs out-of-range tuning values and resolves the timezone.
func (c *Config) Validate() {
	def := DefaultConfig()

	c.Storage.Driver = normalizeDriver(c.Storage.Driver)
	positive(&c.Automod.SpamMessages, def.Automod.SpamMessages)
	positive(&c.Automod.SpamWindowSeconds, def.Automod.SpamWindowSeconds)
	positive(&c.Automod.SpamWarningSeconds, def.Automod.SpamWarningSeconds)
	positive(&c.Automod.LogContentLimit, def.Automod.LogContentLimit)
	positive(&c.Economy.TopLimit, def.Economy.TopLimit)
	positive(&c.Marriage.AffinityMax, def.Marriage.AffinityMax)
	positive(&c.Marriage.ProposalSeconds, def.Marriage.ProposalSeconds)
	positive(&c.Marriage.DivorceConfirmSecs, def.Marriage.DivorceConfirmSecs)
	positive(&c.Staff.AuditLogCap, def.Staff.AuditLogCap)
	positive(&c.Staff.MuteMaxMinutes, def.Staff.MuteMaxMinutes)
	positive(&c.Staff.ClearMaxMessages, def.Staff.ClearMaxMessages)
	positive(&c.Staff.WarnAlertCount, def.Staff.WarnAlertCount)
	positive(&c.Staff.StaffLogsDefault, def.Staff.StaffLogsDefault)
	positive(&c.Staff.ReconcileMinutes, def.Staff.ReconcileMinutes)
	positive(&c.AI.TimeoutSeconds, def.AI.TimeoutSeconds)
	if c.Marriage.Cost < 0 {
		c.Marriage.Cost = def.Marriage.Cost
	}

	orderRange(&c.Economy.DailyMin, &c.Economy.DailyMax)
	orderRange(&c.Economy.PhraseMin, &c.Economy.PhraseMax)
	orderRange(&c.Marriage.AffinityGainMin, &c.Marriage.AffinityGainMax)
	if c.Marriage.AffinityInitial < 0 || c.Marriage.AffinityInitial > c.Marriage.AffinityMax {
		c.Marriage.AffinityInitial = c.Marriage.AffinityMax
	}

	c.location = time.Local
	if c.Timezone != "" && !strings.EqualFold(c.Timezone, "local") {
		if loc, err := time.LoadLocation(c.Timezone); err == nil {
			c.location = loc
		}
	}
}

// Location is the zone used for calendar-day cooldowns.
func (c Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

func BuildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(strings.ToLower(level)))
	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "1" || lower == "true" || lower == "yes"
	}
	return fallback
}

// normalizeDriver folds driver aliases. Unrecognized names pass through so
// opening the store reports them.
func normalizeDriver(value string) string {
	driver := strings.ToLower(strings.TrimSpace(value))
	switch driver {
	case "", "json", "file":
		return "json"
	case "bolt", "bbolt":
		return "bolt"
	default:
		return driver
	}
}

func positive(value *int, fallback int) {
	if *value <= 0 {
		*value = fallback
	}
}

func orderRange(lo, hi *int) {
	if *hi < *lo {
		*lo, *hi = *hi, *lo
	}
	if *lo < 0 {
		*lo = 0
	}
	if *hi < *lo {
		*hi = *lo
	}
}
