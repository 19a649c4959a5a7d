// Package bot is the Telegram adapter: it parses commands, invokes the
// domain services, and formats replies. No business rules live here.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/Brownie-08/Dave.Sport-tgbot/config"
	"github.com/Brownie-08/Dave.Sport-tgbot/models"
	"github.com/Brownie-08/Dave.Sport-tgbot/permissions"
	"github.com/Brownie-08/Dave.Sport-tgbot/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Bot struct {
	API *tgbotapi.BotAPI
	DB  *gorm.DB
	Cfg config.Config

	Matches       *services.MatchService
	Predictions   *services.PredictionService
	Settlement    *services.SettlementService
	Ledger        *services.LedgerService
	Leaderboards  *services.LeaderboardService
	Notifications *services.NotificationService
}

func New(cfg config.Config, db *gorm.DB,
	matches *services.MatchService,
	predictions *services.PredictionService,
	settlement *services.SettlementService,
	ledger *services.LedgerService,
	leaderboards *services.LeaderboardService,
	notifications *services.NotificationService,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	api.Debug = false
	log.Printf("Authorized on account %s", api.Self.UserName)

	return &Bot{
		API: api, DB: db, Cfg: cfg,
		Matches: matches, Predictions: predictions, Settlement: settlement,
		Ledger: ledger, Leaderboards: leaderboards, Notifications: notifications,
	}, nil
}

// Run consumes updates until the context is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.API.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.API.StopReceivingUpdates()
			log.Println("Telegram bot stopped")
			return
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			b.handleMessage(update.Message)
		}
	}
}

func (b *Bot) handleMessage(message *tgbotapi.Message) {
	if message.From == nil || !message.IsCommand() {
		return
	}

	b.ensureUser(message.From)
	if message.Chat.IsGroup() || message.Chat.IsSuperGroup() {
		b.ensureGroup(message.Chat)
	}

	args := strings.Fields(message.CommandArguments())
	switch message.Command() {
	case "start", "help":
		b.sendHelp(message.Chat.ID)
	case "matches":
		b.cmdMatches(message)
	case "predict":
		b.cmdPredict(message, args)
	case "mypredictions":
		b.cmdMyPredictions(message)
	case "leaderboard":
		b.cmdLeaderboard(message, args)
	case "balance":
		b.cmdBalance(message)
	case "daily":
		b.cmdDaily(message)
	case "newmatch":
		b.cmdNewMatch(message)
	case "closematch":
		b.cmdCloseMatch(message, args)
	case "result":
		b.cmdResult(message, args)
	case "delmatch":
		b.cmdDelMatch(message, args)
	default:
		b.reply(message.Chat.ID, "Unknown command. Use /help to see available commands.")
	}
}

// ensureUser upserts the sender so every command arrives with a user row.
func (b *Bot) ensureUser(from *tgbotapi.User) {
	user := models.User{
		UserID:    from.ID,
		Username:  from.UserName,
		FirstName: from.FirstName,
	}
	if err := b.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "first_name", "updated_at"}),
	}).Create(&user).Error; err != nil {
		log.Printf("❌ Failed to upsert user %d: %v", from.ID, err)
	}
}

// ensureGroup registers the chat so matches can be scoped to it.
func (b *Bot) ensureGroup(chat *tgbotapi.Chat) {
	group := models.Group{
		ChatID:    chat.ID,
		ChatTitle: chat.Title,
		ChatType:  chat.Type,
	}
	if err := b.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"chat_title", "chat_type", "updated_at"}),
	}).Create(&group).Error; err != nil {
		log.Printf("❌ Failed to upsert group %d: %v", chat.ID, err)
	}
}

// isAdmin checks the sender against the configured owner and the stored
// role hierarchy.
func (b *Bot) isAdmin(userID int64) bool {
	if b.Cfg.OwnerID != 0 && userID == b.Cfg.OwnerID {
		return true
	}
	var user models.User
	if err := b.DB.First(&user, "user_id = ?", userID).Error; err != nil {
		return false
	}
	return permissions.HasAtLeast(permissions.Role(user.Role), permissions.RoleAdmin)
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := b.API.Send(msg); err != nil {
		log.Printf("❌ Failed to send message to chat %d: %v", chatID, err)
	}
}

func (b *Bot) sendHelp(chatID int64) {
	b.reply(chatID, `<b>Dave.Sport Predictions</b>

/matches — open matches
/predict &lt;match_id&gt; &lt;A|B|DRAW|2-1&gt; — place a prediction
/mypredictions — your history
/leaderboard [coins|predictions] — rankings
/balance — your coins
/daily — claim the daily bonus

<b>Admin</b>
/newmatch TeamA vs TeamB [2026-08-23 18:00]
/closematch &lt;match_id&gt;
/result &lt;match_id&gt; &lt;A|B|DRAW&gt; [2-1]
/delmatch &lt;match_id&gt;`)
}

// --- User commands ---

func (b *Bot) cmdMatches(message *tgbotapi.Message) {
	// In a group chat only show matches scoped to it (or global ones)
	var chatScope *int64
	if message.Chat.IsGroup() || message.Chat.IsSuperGroup() {
		chatScope = &message.Chat.ID
	}
	matches, err := b.Matches.ListOpen("", chatScope)
	if err != nil {
		b.reply(message.Chat.ID, "❌ Failed to load matches.")
		return
	}
	if len(matches) == 0 {
		b.reply(message.Chat.ID, "📭 No open matches right now.")
		return
	}

	var sb strings.Builder
	sb.WriteString("<b>⚽ Open matches</b>\n\n")
	for _, m := range matches {
		sb.WriteString(fmt.Sprintf("#%d  %s vs %s", m.MatchID, m.TeamA, m.TeamB))
		if m.MatchTime != nil {
			sb.WriteString("  🕐 " + m.MatchTime.Format("Jan 2 15:04"))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nPredict with /predict <match_id> <A|B|DRAW|2-1>")
	b.reply(message.Chat.ID, sb.String())
}

func (b *Bot) cmdPredict(message *tgbotapi.Message, args []string) {
	if len(args) < 2 {
		b.reply(message.Chat.ID, "Usage: /predict <match_id> <A|B|DRAW|2-1>")
		return
	}
	matchID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(message.Chat.ID, "Match id must be a number.")
		return
	}

	choice, scoreA, scoreB, ok := parseChoice(args[1])
	if !ok {
		b.reply(message.Chat.ID, "Pick A, B, DRAW or an exact score like 2-1.")
		return
	}

	err = b.Predictions.Place(message.From.ID, matchID, choice, scoreA, scoreB)
	switch {
	case err == nil:
		b.reply(message.Chat.ID, fmt.Sprintf("✅ Prediction saved! A correct pick earns <b>+%d coins</b>.", b.Cfg.PredictionReward))
	case errors.Is(err, services.ErrMatchNotFound):
		b.reply(message.Chat.ID, "❌ No such match.")
	case errors.Is(err, services.ErrMatchClosed):
		b.reply(message.Chat.ID, "🔒 Betting is closed for that match.")
	case errors.Is(err, services.ErrAlreadyPredicted):
		b.reply(message.Chat.ID, "You already predicted this match.")
	default:
		log.Printf("❌ Place prediction failed (user %d): %v", message.From.ID, err)
		b.reply(message.Chat.ID, "❌ Something went wrong, try again.")
	}
}

func (b *Bot) cmdMyPredictions(message *tgbotapi.Message) {
	rows, err := b.Predictions.ListForUser(message.From.ID, 10)
	if err != nil {
		b.reply(message.Chat.ID, "❌ Failed to load your predictions.")
		return
	}
	if len(rows) == 0 {
		b.reply(message.Chat.ID, "You have no predictions yet. See /matches.")
		return
	}

	var sb strings.Builder
	sb.WriteString("<b>🎯 Your predictions</b>\n\n")
	for _, r := range rows {
		pick := r.Choice
		if r.Choice == models.ChoiceScore && r.PredScoreA != nil && r.PredScoreB != nil {
			pick = fmt.Sprintf("%d-%d", *r.PredScoreA, *r.PredScoreB)
		}
		icon := "⏳"
		switch r.Status {
		case models.PredictionWon:
			icon = "✅"
		case models.PredictionLost:
			icon = "❌"
		}
		sb.WriteString(fmt.Sprintf("%s %s vs %s — %s\n", icon, r.TeamA, r.TeamB, pick))
	}
	b.reply(message.Chat.ID, sb.String())
}

func (b *Bot) cmdLeaderboard(message *tgbotapi.Message, args []string) {
	kind := "coins"
	if len(args) > 0 {
		kind = strings.ToLower(args[0])
	}

	var sb strings.Builder
	switch kind {
	case "predictions":
		board, err := b.Leaderboards.Predictions(1, 10, message.From.ID)
		if err != nil {
			b.reply(message.Chat.ID, "❌ Failed to build the leaderboard.")
			return
		}
		sb.WriteString("<b>🏆 Prediction leaderboard</b>\n\n")
		for _, e := range board.Items {
			sb.WriteString(fmt.Sprintf("%d. %s — %d/%d (%.1f%%)\n", e.Rank, displayName(e.Username, e.UserID), e.Wins, e.Total, e.WinRate))
		}
		if board.CurrentUserRank != nil {
			sb.WriteString(fmt.Sprintf("\nYour rank: #%d", *board.CurrentUserRank))
		}
	default:
		board, err := b.Leaderboards.Global(1, 10, message.From.ID)
		if err != nil {
			b.reply(message.Chat.ID, "❌ Failed to build the leaderboard.")
			return
		}
		sb.WriteString("<b>🏆 Coin leaderboard</b>\n\n")
		for _, e := range board.Items {
			sb.WriteString(fmt.Sprintf("%d. %s — %d 🪙\n", e.Rank, displayName(e.Username, e.UserID), e.Coins))
		}
		if board.CurrentUserRank != nil {
			sb.WriteString(fmt.Sprintf("\nYour rank: #%d of %d", *board.CurrentUserRank, board.TotalUsers))
		}
	}
	b.reply(message.Chat.ID, sb.String())
}

func (b *Bot) cmdBalance(message *tgbotapi.Message) {
	balance, err := b.Ledger.Balance(message.From.ID)
	if err != nil {
		b.reply(message.Chat.ID, "❌ Failed to fetch your balance.")
		return
	}
	b.reply(message.Chat.ID, fmt.Sprintf("🪙 You have <b>%d coins</b>.", balance))
}

func (b *Bot) cmdDaily(message *tgbotapi.Message) {
	claimed, balance, err := b.Ledger.ClaimDaily(message.From.ID)
	if err != nil {
		b.reply(message.Chat.ID, "❌ Failed to claim, try again.")
		return
	}
	if !claimed {
		b.reply(message.Chat.ID, fmt.Sprintf("You already claimed today. Balance: <b>%d coins</b>.", balance))
		return
	}
	b.reply(message.Chat.ID, fmt.Sprintf("🎁 +%d coins! Balance: <b>%d coins</b>.", b.Cfg.DailyReward, balance))
}

// --- Admin commands ---

func (b *Bot) cmdNewMatch(message *tgbotapi.Message) {
	if !b.isAdmin(message.From.ID) {
		b.reply(message.Chat.ID, "⛔ Admins only.")
		return
	}

	teamA, teamB, matchTime, err := parseNewMatch(message.CommandArguments())
	if err != nil {
		b.reply(message.Chat.ID, "Usage: /newmatch TeamA vs TeamB [2026-08-23 18:00]")
		return
	}

	chatID := message.Chat.ID
	match, err := b.Matches.Create(teamA, teamB, matchTime, "football", &chatID)
	if err != nil {
		log.Printf("❌ Create match failed: %v", err)
		b.reply(message.Chat.ID, "❌ Failed to create the match.")
		return
	}

	b.reply(message.Chat.ID, fmt.Sprintf("⚽ Match #%d created: <b>%s vs %s</b>\nPredictions are open — /predict %d A|B|DRAW|2-1",
		match.MatchID, match.TeamA, match.TeamB, match.MatchID))
}

func (b *Bot) cmdCloseMatch(message *tgbotapi.Message, args []string) {
	if !b.isAdmin(message.From.ID) {
		b.reply(message.Chat.ID, "⛔ Admins only.")
		return
	}
	if len(args) < 1 {
		b.reply(message.Chat.ID, "Usage: /closematch <match_id>")
		return
	}
	matchID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(message.Chat.ID, "Match id must be a number.")
		return
	}

	if err := b.Matches.Close(matchID); err != nil {
		if errors.Is(err, services.ErrMatchNotFound) {
			b.reply(message.Chat.ID, "❌ No such match.")
			return
		}
		b.reply(message.Chat.ID, "❌ Failed to close the match.")
		return
	}
	b.reply(message.Chat.ID, fmt.Sprintf("🔒 Betting closed for match #%d.", matchID))
}

func (b *Bot) cmdResult(message *tgbotapi.Message, args []string) {
	if !b.isAdmin(message.From.ID) {
		b.reply(message.Chat.ID, "⛔ Admins only.")
		return
	}
	if len(args) < 2 {
		b.reply(message.Chat.ID, "Usage: /result <match_id> <A|B|DRAW> [2-1]")
		return
	}
	matchID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(message.Chat.ID, "Match id must be a number.")
		return
	}
	winnerCode := strings.ToUpper(args[1])

	var scoreA, scoreB *int
	if len(args) >= 3 {
		sa, sb, ok := parseScoreline(args[2])
		if !ok {
			b.reply(message.Chat.ID, "Score must look like 2-1.")
			return
		}
		scoreA, scoreB = sa, sb
	}

	result, err := b.Settlement.Resolve(matchID, winnerCode, scoreA, scoreB, b.Cfg.PredictionReward)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrInvalidChoice):
		b.reply(message.Chat.ID, "Winner must be A, B or DRAW.")
		return
	case errors.Is(err, services.ErrMatchNotFound):
		b.reply(message.Chat.ID, "❌ No such match.")
		return
	case errors.Is(err, services.ErrAlreadyResolved):
		b.reply(message.Chat.ID, "This match is already resolved.")
		return
	default:
		log.Printf("❌ Resolve failed for match %d: %v", matchID, err)
		b.reply(message.Chat.ID, "❌ Failed to resolve the match.")
		return
	}

	b.reply(message.Chat.ID, fmt.Sprintf("🏁 Match #%d resolved (%s).\n🎉 %d correct prediction(s) earned %d coins each!",
		matchID, winnerCode, result.Count, b.Cfg.PredictionReward))
	b.notifyResult(matchID, winnerCode, result)
}

func (b *Bot) cmdDelMatch(message *tgbotapi.Message, args []string) {
	if !b.isAdmin(message.From.ID) {
		b.reply(message.Chat.ID, "⛔ Admins only.")
		return
	}
	if len(args) < 1 {
		b.reply(message.Chat.ID, "Usage: /delmatch <match_id>")
		return
	}
	matchID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		b.reply(message.Chat.ID, "Match id must be a number.")
		return
	}

	if err := b.Matches.Delete(matchID); err != nil {
		if errors.Is(err, services.ErrMatchNotFound) {
			b.reply(message.Chat.ID, "❌ No such match.")
			return
		}
		b.reply(message.Chat.ID, "❌ Failed to delete the match.")
		return
	}
	b.reply(message.Chat.ID, fmt.Sprintf("🗑 Match #%d and its predictions deleted.", matchID))
}

// notifyResult DMs the outcome to predictors who opted in.
func (b *Bot) notifyResult(matchID int64, winnerCode string, result *services.SettlementResult) {
	recipients, err := b.Notifications.ResultRecipients(matchID)
	if err != nil {
		log.Printf("❌ Result recipients lookup failed for match %d: %v", matchID, err)
		return
	}

	won := make(map[int64]bool, len(result.Winners))
	for _, id := range result.Winners {
		won[id] = true
	}
	for _, userID := range recipients {
		text := fmt.Sprintf("🏁 Match #%d finished (%s). Better luck next time!", matchID, winnerCode)
		if won[userID] {
			text = fmt.Sprintf("🏁 Match #%d finished (%s).\n🎯 Correct prediction: <b>+%d coins</b>!", matchID, winnerCode, b.Cfg.PredictionReward)
		}
		b.reply(userID, text)
	}
}

// NotifyReminder is the delivery callback for the reminder sweep.
func (b *Bot) NotifyReminder(match models.Match, userIDs []int64) {
	when := "soon"
	if match.MatchTime != nil {
		when = match.MatchTime.Format("15:04")
	}
	for _, userID := range userIDs {
		b.reply(userID, fmt.Sprintf("⏰ %s vs %s kicks off at %s — last chance to check your prediction!", match.TeamA, match.TeamB, when))
	}
}

// --- parsing helpers ---

// parseChoice turns "A", "b", "draw" or "2-1" into a prediction choice.
func parseChoice(s string) (choice string, scoreA, scoreB *int, ok bool) {
	switch strings.ToUpper(s) {
	case models.ChoiceTeamA:
		return models.ChoiceTeamA, nil, nil, true
	case models.ChoiceTeamB:
		return models.ChoiceTeamB, nil, nil, true
	case models.ChoiceDraw:
		return models.ChoiceDraw, nil, nil, true
	}
	if sa, sb, scored := parseScoreline(s); scored {
		return models.ChoiceScore, sa, sb, true
	}
	return "", nil, nil, false
}

// parseScoreline parses "2-1" or "2:1".
func parseScoreline(s string) (*int, *int, bool) {
	sep := "-"
	if strings.Contains(s, ":") {
		sep = ":"
	}
	parts := strings.SplitN(s, sep, 2)
	if len(parts) != 2 {
		return nil, nil, false
	}
	a, errA := strconv.Atoi(strings.TrimSpace(parts[0]))
	b, errB := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errA != nil || errB != nil || a < 0 || b < 0 {
		return nil, nil, false
	}
	return &a, &b, true
}

// parseNewMatch parses "TeamA vs TeamB [2026-08-23 18:00]".
func parseNewMatch(argLine string) (teamA, teamB string, matchTime *time.Time, err error) {
	argLine = strings.TrimSpace(argLine)
	idx := strings.Index(strings.ToLower(argLine), " vs ")
	if idx < 0 {
		return "", "", nil, fmt.Errorf("missing vs separator")
	}
	teamA = strings.TrimSpace(argLine[:idx])
	rest := strings.TrimSpace(argLine[idx+4:])
	if teamA == "" || rest == "" {
		return "", "", nil, fmt.Errorf("missing team name")
	}

	// Optional trailing "YYYY-MM-DD HH:MM"
	fields := strings.Fields(rest)
	if len(fields) >= 2 {
		candidate := fields[len(fields)-2] + " " + fields[len(fields)-1]
		if t, perr := time.ParseInLocation("2006-01-02 15:04", candidate, time.Local); perr == nil {
			matchTime = &t
			rest = strings.TrimSpace(strings.TrimSuffix(rest, candidate))
		}
	}
	teamB = strings.TrimSpace(rest)
	if teamB == "" {
		return "", "", nil, fmt.Errorf("missing team name")
	}
	return teamA, teamB, matchTime, nil
}

func displayName(username string, userID int64) string {
	if username != "" {
		return "@" + username
	}
	return strconv.FormatInt(userID, 10)
}
