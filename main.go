package main

import (
	log "github.com/go-pkgz/lgr"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"escrowbot/config"
	"escrowbot/escrow"
	"escrowbot/store"
	"escrowbot/wallet"
)

func main() {
	cfg := config.New()
	if err := cfg.Load(); err != nil {
		log.Fatalf("[ERROR] failed to load config, %v", err)
	}
	setupLog(cfg.Telegram.Debug)

	db, err := store.NewBoltDB(cfg.Store.File)
	if err != nil {
		log.Fatalf("[ERROR] failed to open store %s, %v", cfg.Store.File, err)
	}
	defer func() {
		if e := db.Close(); e != nil {
			log.Printf("[WARN] failed to close store, %v", e)
		}
	}()

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		log.Fatalf("[ERROR] failed to connect to telegram, %v", err)
	}
	api.Debug = cfg.Telegram.Debug
	log.Printf("[INFO] authorized as @%s", api.Self.UserName)

	go runWeb(cfg.Web.Listen)

	service := escrow.NewService(db, wallet.Mock{})
	bot := NewEscrowBot(api, service, cfg)
	if err := bot.Run(); err != nil {
		log.Fatalf("[ERROR] bot terminated, %v", err)
	}
}

func setupLog(dbg bool) {
	if dbg {
		log.Setup(log.Debug, log.CallerFile, log.CallerFunc, log.Msec, log.LevelBraces)
		return
	}
	log.Setup(log.Msec, log.LevelBraces)
}
