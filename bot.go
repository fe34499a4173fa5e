package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/go-pkgz/lgr"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"escrowbot/config"
	"escrowbot/escrow"
	"escrowbot/store"
	"escrowbot/wallet"
)

const (
	opCurrencyBTC      = "currency_btc"
	opCurrencyLTC      = "currency_ltc"
	opShowEscrowInfo   = "show_escrow_info"
	opStartTransaction = "start_transaction"
	opShowTerms        = "show_terms"
)

var currencyKeyboard = tgbotapi.NewInlineKeyboardMarkup(
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("BTC", opCurrencyBTC),
		tgbotapi.NewInlineKeyboardButtonData("LTC", opCurrencyLTC),
	))

var welcomeKeyboard = tgbotapi.NewInlineKeyboardMarkup(
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📚 How It Works", opShowEscrowInfo),
		tgbotapi.NewInlineKeyboardButtonData("💼 Start Transaction", opStartTransaction),
	),
	tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📝 Terms of Service", opShowTerms),
	))

// EscrowBot glues the telegram transport to the escrow service. All state
// lives in the service's store, the bot only parses input and formats
// replies.
type EscrowBot struct {
	api     *tgbotapi.BotAPI
	service *escrow.Service
	cfg     config.Config
	wallets map[store.Currency]string
	admins  map[int64]bool
}

// NewEscrowBot constructor
func NewEscrowBot(api *tgbotapi.BotAPI, service *escrow.Service, cfg config.Config) *EscrowBot {
	admins := map[int64]bool{}
	for _, id := range cfg.AdminIDs {
		admins[id] = true
	}

	return &EscrowBot{
		api:     api,
		service: service,
		cfg:     cfg,
		wallets: map[store.Currency]string{
			store.BTC: cfg.Escrow.BTCWallet,
			store.LTC: cfg.Escrow.LTCWallet,
		},
		admins: admins,
	}
}

// Run sets the bot profile and polls telegram for updates until the
// updates channel is closed.
func (b *EscrowBot) Run() error {
	b.setProfile()

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.cfg.Telegram.Timeout

	for update := range b.api.GetUpdatesChan(updateConfig) {
		switch {
		case update.Message != nil && update.Message.IsCommand():
			b.handleCommand(update.Message)
		case update.CallbackQuery != nil:
			b.handleCallback(update.CallbackQuery)
		}
	}
	return nil
}

// setProfile registers the command menu and the display name. Name updates
// hit telegram's flood control easily, failures only degrade cosmetics.
func (b *EscrowBot) setProfile() {
	commands := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Start the bot and receive a welcome menu"},
		tgbotapi.BotCommand{Command: "transaction", Description: "Initiate or view transaction"},
		tgbotapi.BotCommand{Command: "set_buyer", Description: "Set buyer's wallet address"},
		tgbotapi.BotCommand{Command: "set_seller", Description: "Set seller's wallet address"},
		tgbotapi.BotCommand{Command: "status", Description: "View transaction status"},
		tgbotapi.BotCommand{Command: "balance", Description: "Check balance"},
		tgbotapi.BotCommand{Command: "refund_buyer", Description: "Process buyer refund"},
		tgbotapi.BotCommand{Command: "pay_seller", Description: "Complete seller payment"},
		tgbotapi.BotCommand{Command: "review", Description: "Leave transaction review"},
		tgbotapi.BotCommand{Command: "restart", Description: "Reset transaction"},
		tgbotapi.BotCommand{Command: "verify", Description: "Verify escrow address"},
		tgbotapi.BotCommand{Command: "report", Description: "Report issues"},
		tgbotapi.BotCommand{Command: "contact", Description: "Contact support"},
		tgbotapi.BotCommand{Command: "real", Description: "Verify bot authenticity"},
		tgbotapi.BotCommand{Command: "check", Description: "Check admin privileges"},
		tgbotapi.BotCommand{Command: "terms", Description: "View terms of service"},
		tgbotapi.BotCommand{Command: "how", Description: "Usage guide"},
	)
	if _, err := b.api.Request(commands); err != nil {
		log.Printf("[WARN] failed to set command menu, %v", err)
	}

	for attempt, delay := 1, 10*time.Second; attempt <= 3; attempt, delay = attempt+1, delay*2 {
		if _, err := b.api.MakeRequest("setMyName", tgbotapi.Params{"name": b.cfg.Telegram.BotName}); err != nil {
			log.Printf("[WARN] name set attempt %d failed, %v", attempt, err)
			time.Sleep(delay)
			continue
		}
		log.Printf("[INFO] bot name updated")
		return
	}
	log.Printf("[ERROR] permanent failure setting bot name")
}

func (b *EscrowBot) handleCommand(msg *tgbotapi.Message) {
	commandsTotal.WithLabelValues(msg.Command()).Inc()

	userID := msg.From.ID
	args := strings.TrimSpace(msg.CommandArguments())

	reply := tgbotapi.NewMessage(msg.Chat.ID, "")

	switch msg.Command() {
	case "start":
		reply.Text = welcomeText
		reply.ReplyMarkup = welcomeKeyboard

	case "transaction":
		if !isGroup(msg.Chat) {
			reply.Text = groupRequiredText
			break
		}
		b.fillTransactionReply(&reply, userID)

	case "select_currency":
		reply.Text = selectCurrencyText
		reply.ReplyMarkup = currencyKeyboard

	case "set_buyer":
		if args == "" {
			reply.Text = "Usage: /set_buyer [address]"
			break
		}
		t, err := b.service.SetBuyerAddress(userID, args)
		if err != nil {
			reply.Text = errorText(err)
			break
		}
		reply.Text = fmt.Sprintf("✅ Buyer address set:\n`%s`", t.BuyerAddress)
		reply.ParseMode = tgbotapi.ModeMarkdown

	case "set_seller":
		if args == "" {
			reply.Text = "Usage: /set_seller [address]"
			break
		}
		t, err := b.service.SetSellerAddress(userID, args)
		if err != nil {
			reply.Text = errorText(err)
			break
		}
		reply.Text = fmt.Sprintf("✅ Seller address set:\n`%s`", t.SellerAddress)
		reply.ParseMode = tgbotapi.ModeMarkdown

	case "status":
		reply.Text = b.statusText(userID)
		reply.ParseMode = tgbotapi.ModeMarkdown

	case "balance":
		reply.Text = balanceText

	case "pay_seller":
		t, err := b.service.PayOutToSeller(userID)
		if err != nil {
			reply.Text = errorText(err)
			break
		}
		payoutsTotal.Inc()
		reply.Text = fmt.Sprintf("💸 Payment Released!\n\nAmount: %v %s\nTo: `%s`\nTX ID: `%s`",
			t.Amount, t.Currency, t.SellerAddress, wallet.NewSettlementID())
		reply.ParseMode = tgbotapi.ModeMarkdown

	case "refund_buyer":
		t, err := b.service.RefundToBuyer(userID)
		if err != nil {
			reply.Text = errorText(err)
			break
		}
		refundsTotal.Inc()
		reply.Text = fmt.Sprintf("💸 Refund Initiated!\n\nAmount: %v %s\nTo: `%s`\nTX ID: `%s`",
			t.Amount, t.Currency, t.BuyerAddress, wallet.NewSettlementID())
		reply.ParseMode = tgbotapi.ModeMarkdown

	case "review":
		if args == "" {
			reply.Text = "Usage: /review [your feedback]"
			break
		}
		if _, err := b.service.SubmitReview(userID, args); err != nil {
			reply.Text = errorText(err)
			break
		}
		reply.Text = fmt.Sprintf("⭐ Thank you for your review!\n\nYour feedback: _%s_", args)
		reply.ParseMode = tgbotapi.ModeMarkdown

	case "restart":
		if err := b.service.ResetTransaction(userID); err != nil {
			log.Printf("[ERROR] failed to reset transaction for user %d, %v", userID, err)
			reply.Text = errorText(err)
			break
		}
		reply.Text = restartText

	case "verify":
		if args == "" {
			reply.Text = "Usage: /verify [address]"
			break
		}
		reply.Text = b.verifyText(args)
		reply.ParseMode = tgbotapi.ModeMarkdown

	case "report":
		if args == "" {
			reply.Text = "Usage: /report [description]"
			break
		}
		if _, err := b.service.SubmitReport(userID, args); err != nil {
			reply.Text = errorText(err)
			break
		}
		reply.Text = reportAckText

	case "contact":
		log.Printf("[INFO] contact message from user %d: %s", userID, args)
		reply.Text = fmt.Sprintf("%s\nSupport chat: %s", contactAckText, b.cfg.Escrow.SupportChat)

	case "confirm_funding":
		reply.Text = b.confirmFundingText(msg, args)

	case "check":
		reply.Text = b.checkText(msg.Chat.ID)

	case "terms":
		reply.Text = termsText

	case "real":
		reply.Text = realText
		reply.ParseMode = tgbotapi.ModeMarkdown

	case "how":
		reply.Text = howText
		reply.ParseMode = tgbotapi.ModeMarkdown

	default:
		reply.Text = unknownCommandText
	}

	b.send(reply)
}

func (b *EscrowBot) handleCallback(query *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		log.Printf("[WARN] failed to answer callback, %v", err)
	}

	if reply, ok := b.callbackReply(query); ok {
		b.send(reply)
	}
}

// callbackReply builds the response for an inline button press. Telegram
// delivers callbacks for stale or inaccessible messages without a Message
// attached, those are dropped.
func (b *EscrowBot) callbackReply(query *tgbotapi.CallbackQuery) (tgbotapi.MessageConfig, bool) {
	if query.Message == nil || query.From == nil {
		log.Printf("[WARN] callback %q without message, ignored", query.Data)
		return tgbotapi.MessageConfig{}, false
	}

	reply := tgbotapi.NewMessage(query.Message.Chat.ID, "")

	switch query.Data {
	case opCurrencyBTC, opCurrencyLTC:
		currency := store.BTC
		if query.Data == opCurrencyLTC {
			currency = store.LTC
		}
		t, err := b.service.CreateTransaction(query.From.ID, currency)
		if err != nil {
			reply.Text = errorText(err)
			break
		}
		transactionsCreated.Inc()
		reply.Text = fmt.Sprintf("✅ Transaction Created!\n\n"+
			"🔐 ID: `%s`\n💰 Currency: %s\n📥 Deposit Address:\n`%s`\n\n"+
			"Next Steps:\n"+
			"1. /set\\_buyer \\[crypto\\_address]\n"+
			"2. /set\\_seller \\[crypto\\_address]\n"+
			"3. Send funds to escrow address",
			t.ID, t.Currency, b.wallets[t.Currency])
		reply.ParseMode = tgbotapi.ModeMarkdown

	case opShowEscrowInfo:
		reply.Text = escrowInfoText

	case opShowTerms:
		reply.Text = termsText

	case opStartTransaction:
		b.fillTransactionReply(&reply, query.From.ID)

	default:
		log.Printf("[WARN] unknown callback %q", query.Data)
		return tgbotapi.MessageConfig{}, false
	}

	return reply, true
}

// fillTransactionReply shows the active transaction summary, or the
// currency keyboard when there is none. Re-selecting a currency replaces
// the current transaction, so an existing one is shown instead of being
// silently recreated.
func (b *EscrowBot) fillTransactionReply(reply *tgbotapi.MessageConfig, userID int64) {
	t, err := b.service.GetTransaction(userID)
	if errors.Is(err, escrow.ErrNoActiveTransaction) {
		reply.Text = selectCurrencyText
		reply.ReplyMarkup = currencyKeyboard
		return
	}
	if err != nil {
		log.Printf("[ERROR] failed to get transaction for user %d, %v", userID, err)
		reply.Text = errorText(err)
		return
	}

	reply.Text = fmt.Sprintf("📦 Active Transaction:\nID: %s\nCurrency: %s\nStatus: %s\nCreated: %s",
		t.ID, t.Currency, t.Status, t.CreatedAt.Format("2006-01-02 15:04"))
}

func (b *EscrowBot) statusText(userID int64) string {
	t, err := b.service.GetTransaction(userID)
	if err != nil {
		return errorText(err)
	}

	buyer, seller := t.BuyerAddress, t.SellerAddress
	if buyer == "" {
		buyer = "Not set"
	}
	if seller == "" {
		seller = "Not set"
	}

	res := fmt.Sprintf("📊 Transaction Status\n\n"+
		"🔖 ID: `%s`\n🕒 Created: %s\n💰 Currency: %s\n📥 Escrow Address:\n`%s`\n"+
		"📈 Status: %s\n👤 Buyer: %s\n👥 Seller: %s",
		t.ID, t.CreatedAt.Format("2006-01-02 15:04"), t.Currency, b.wallets[t.Currency],
		t.Status, buyer, seller)
	if t.Status == store.StatusFunded {
		res += fmt.Sprintf("\n⏳ Auto-refund window: %dh", b.cfg.Escrow.TimeoutHours)
	}
	return res
}

func (b *EscrowBot) verifyText(address string) string {
	verdict := "❌ Potential Fraudulent Address!"
	for _, addr := range b.wallets {
		if address == addr {
			verdict = "✅ Verified Gengar Escrow Address"
			break
		}
	}

	return fmt.Sprintf("%s\n\nScanned: %s\nAddress: `%s`",
		verdict, time.Now().Format("2006-01-02 15:04:05"), address)
}

// confirmFundingText drives SellerSet -> Funded for the target user's
// transaction. Admin-only stand-in for a chain watcher. The target comes
// from the replied-to message or from the first argument, the optional
// last argument is the deposited amount.
func (b *EscrowBot) confirmFundingText(msg *tgbotapi.Message, args string) string {
	const usage = "Usage: /confirm_funding [user_id] [amount], or reply to the user's message"

	if !b.admins[msg.From.ID] {
		return "❌ Admins only"
	}

	var targetID int64
	if msg.ReplyToMessage != nil && msg.ReplyToMessage.From != nil {
		targetID = msg.ReplyToMessage.From.ID
	}

	fields := strings.Fields(args)
	if targetID == 0 {
		if len(fields) == 0 {
			return usage
		}
		id, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return usage
		}
		targetID = id
		fields = fields[1:]
	}

	amount := 0.0
	if len(fields) > 0 {
		v, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return usage
		}
		amount = v
	}

	t, err := b.service.MarkFunded(targetID, amount)
	if err != nil {
		return errorText(err)
	}
	return fmt.Sprintf("✅ Deposit confirmed for user %d: %v %s. Funds are in escrow.", targetID, t.Amount, t.Currency)
}

func (b *EscrowBot) checkText(chatID int64) string {
	member, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: b.api.Self.ID},
	})
	if err != nil {
		log.Printf("[ERROR] admin check failed, %v", err)
		return "❌ Could not verify permissions"
	}

	if member.Status == "administrator" || member.Status == "creator" {
		return "🛡️ Bot Permission Status:\n\n✅ Has Admin Privileges\nFull functionality enabled"
	}
	return "🛡️ Bot Permission Status:\n\n⚠️ Limited Functionality\n" +
		"Required Permissions:\n- Delete Messages\n- Pin Messages\n- Ban Users"
}

func (b *EscrowBot) send(msg tgbotapi.MessageConfig) {
	if msg.Text == "" {
		return
	}
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("[ERROR] failed to send message to chat %d, %v", msg.ChatID, err)
	}
}

// errorText renders one line of guidance per rejection reason.
func errorText(err error) string {
	switch {
	case errors.Is(err, escrow.ErrNoActiveTransaction):
		return "❌ No active transaction. Start with /transaction"
	case errors.Is(err, escrow.ErrAddressAlreadySet):
		return "⚠️ Address already set. Use /restart to reset."
	case errors.Is(err, escrow.ErrInvalidAddressFormat):
		return "❌ Invalid address format for selected currency"
	case errors.Is(err, escrow.ErrNotFunded):
		return "⚠️ Funds not verified. Deposit to the escrow address first."
	case errors.Is(err, escrow.ErrNotCompleted):
		return "❌ You can only review completed transactions"
	case errors.Is(err, escrow.ErrInvalidCurrency):
		return "❌ Unsupported currency. Use BTC or LTC."
	case errors.Is(err, escrow.ErrNotAwaitingFunds):
		return "⚠️ Transaction is not awaiting a deposit"
	}
	return "⚠️ Service temporarily unavailable. Please try again later."
}

func isGroup(chat *tgbotapi.Chat) bool {
	return chat.IsGroup() || chat.IsSuperGroup()
}
