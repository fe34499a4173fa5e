package main

// canned reply texts, adapted for telegram markdown
const (
	welcomeText = "👋 Welcome to GengarEscrow Bot! 👻💼\n\n" +
		"Secure BTC/LTC escrow service with:\n" +
		"• Instant transaction setup\n" +
		"• Multi-signature wallets\n" +
		"• Automated dispute resolution\n\n" +
		"📌 Get started with /transaction"

	groupRequiredText = "⚠️ Group Chat Required\n\n" +
		"This bot functions best in group chats where:\n" +
		"- Multiple participants can verify transactions\n" +
		"- Transparent communication is maintained\n" +
		"- Disputes can be publicly resolved\n\n" +
		"Create a group and add me as admin!"

	selectCurrencyText = "Select cryptocurrency:"

	escrowInfoText = "🛡️ How Escrow Works:\n\n" +
		"1. Buyer/seller agree to terms\n" +
		"2. Funds are locked in escrow\n" +
		"3. Goods/services are exchanged\n" +
		"4. Funds released to seller\n\n" +
		"Full guide: /how"

	termsText = "📜 Terms of Service\n\n" +
		"1. Funds held in escrow until mutual agreement\n" +
		"2. 0.5% service fee on completed transactions\n" +
		"3. Users must verify counterparty identities\n" +
		"4. Disputes resolved via multisig arbitration\n" +
		"5. Full logs available upon request\n\n" +
		"By using this service, you agree to these terms."

	howText = "📘 *Gengar Escrow Guide*\n\n" +
		"1. Start: /transaction\n" +
		"2. Set currency: /select\\_currency\n" +
		"3. Configure addresses:\n" +
		"   - /set\\_buyer \\[address]\n" +
		"   - /set\\_seller \\[address]\n" +
		"4. Fund escrow wallet\n" +
		"5. Complete transaction:\n" +
		"   - /pay\\_seller to release funds\n" +
		"   - /refund\\_buyer to cancel\n\n" +
		"🔍 Check /status anytime\n" +
		"🔄 Reset with /restart"

	realText = "🔒 *Official Gengar Escrow Bot* 🔒\n\n" +
		"Authentication Marks:\n" +
		"• Verified Telegram Checkmark\n" +
		"• Consistent Branding\n" +
		"• Secure HTTPS Connections\n\n" +
		"⚠️ Report imposters with /report"

	balanceText = "💰 Balance Summary:\n" +
		"BTC: 0.00000000\n" +
		"LTC: 0.00000000\n\n" +
		"Fund escrow wallet to start transactions!"

	restartText = "♻️ Transaction reset. Start new with /transaction"

	reportAckText = "🚨 Report filed. Thank you for your vigilance!"

	contactAckText = "📩 Message received. Support will respond within 24h."

	unknownCommandText = "🤔 Unknown command. See /how for the guide."
)
