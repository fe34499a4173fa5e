package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

type Config struct {
	Telegram TelegramConfig
	Web      WebConfig
	Store    StoreConfig
	Escrow   EscrowConfig

	AdminUserIDs string `env:"ADMIN_USER_IDS,default="` // comma-separated telegram user ids

	AdminIDs []int64 // parsed from AdminUserIDs by Load
}

type TelegramConfig struct {
	Token   string `env:"TELEGRAM_TOKEN,required"`
	Debug   bool   `env:"TELEGRAM_DEBUG,default=0"`
	Timeout int    `env:"TELEGRAM_UPDATES_TIMEOUT,default=30"`
	BotName string `env:"TELEGRAM_BOT_NAME,default=Gengar Escrow Bot"`
}

type WebConfig struct {
	Listen string `env:"WEB_LISTEN,default=:5000"`
}

type StoreConfig struct {
	File string `env:"STORE_FILE,default=escrow.db"`
}

type EscrowConfig struct {
	BTCWallet    string `env:"ESCROW_BTC_WALLET,default=bc1qvcf5t3282g4ssxygcstxmk4s4tepdns8hmgpv4"`
	LTCWallet    string `env:"ESCROW_LTC_WALLET,default=ltc1qwl8qe05cyr6phmn484nnc6rw7af335fh0q4kv7"`
	SupportChat  string `env:"SUPPORT_CHAT,default=@GengarEscrowSupport"`
	TimeoutHours int    `env:"ESCROW_TIMEOUT_HOURS,default=72"`
}

// New config constructor
func New() Config {
	return Config{}
}

// Load config from environment and from .env file (if exists) and from flags
func (cfg *Config) Load() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf(".env load: %w", err)
	}

	if err := envdecode.StrictDecode(cfg); err != nil {
		return fmt.Errorf("env decode: %w", err)
	}

	pflag.StringVarP(&cfg.Web.Listen, "listen-addr", "a", cfg.Web.Listen, "Address for health/metrics server")
	pflag.StringVarP(&cfg.Store.File, "store-file", "f", cfg.Store.File, "Bolt store file")
	pflag.BoolVarP(&cfg.Telegram.Debug, "debug", "d", cfg.Telegram.Debug, "Debug output")
	pflag.Parse()

	ids, err := parseIDList(cfg.AdminUserIDs)
	if err != nil {
		return fmt.Errorf("admin ids: %w", err)
	}
	cfg.AdminIDs = ids

	return nil
}

// parseIDList splits a comma-separated id list, envdecode has no decoder
// for int64 slices.
func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad id %q: %w", s, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
