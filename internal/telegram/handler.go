package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/kitbuilder587/research-assistant/internal/domain"
	"github.com/kitbuilder587/research-assistant/internal/metrics"
)

const searchingStatus = "🔎 Searching sources..."

// Researcher - service.ResearchService
type Researcher interface {
	Run(ctx context.Context, req domain.ResearchRequest) (*domain.Result, error)
}

// TitleGenerator - service.TitleService
type TitleGenerator interface {
	Generate(ctx context.Context, topic string) string
}

type HandlerDeps struct {
	Sender   Sender
	Research Researcher
	Titles   TitleGenerator
	Sessions *SessionStore
	Logger   *zap.Logger
	Metrics  *metrics.Metrics
}

type Handler struct {
	sender   Sender
	research Researcher
	titles   TitleGenerator
	sessions *SessionStore
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewHandler(deps HandlerDeps) *Handler {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Sessions == nil {
		deps.Sessions = NewSessionStore(domain.ModeDepth)
	}
	return &Handler{
		sender:   deps.Sender,
		research: deps.Research,
		titles:   deps.Titles,
		sessions: deps.Sessions,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
	}
}

func (h *Handler) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	h.logger.Info("received message",
		zap.Int64("chat_id", msg.Chat.ID),
		zap.Bool("is_command", msg.IsCommand()),
	)

	if msg.IsCommand() && !IsResearchCommand(msg.Command()) {
		h.handleCommand(ctx, msg)
		return
	}
	h.handleResearch(ctx, msg)
}

func (h *Handler) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "help":
		h.handleHelp(msg)
	case "new":
		h.handleNew(msg)
	case "chats":
		h.handleChats(msg)
	case "switch":
		h.handleSwitch(msg)
	case "history":
		h.handleHistory(msg)
	case "mode":
		h.handleMode(msg)
	default:
		h.send(msg.Chat.ID, "Unknown command. Use /help to see what I can do.")
	}
}

func (h *Handler) handleHelp(msg *tgbotapi.Message) {
	helpText := `<b>🚀 AI Deep Research Assistant</b>

Send a topic and I will search the web and write a report with sources.

<b>Research modes:</b>
/depth topic - Depth Search (two search layers, report with key insights)
/multi topic - Multi-Agent Research (three parallel angles, one synthesis)
/mode depth|multi - mode for plain messages (now: ` + h.sessions.Mode(msg.Chat.ID).Title() + `)

<b>Conversations:</b>
/new - start a new conversation
/chats - list conversations
/switch N - open conversation N
/history - show current conversation`

	h.send(msg.Chat.ID, helpText)
}

func (h *Handler) handleNew(msg *tgbotapi.Message) {
	h.sessions.NewConversation(msg.Chat.ID)
	h.send(msg.Chat.ID, "➕ New conversation started. Send a research topic.")
}

func (h *Handler) handleChats(msg *tgbotapi.Message) {
	convs, current := h.sessions.List(msg.Chat.ID)
	h.send(msg.Chat.ID, FormatConversations(convs, current))
}

func (h *Handler) handleSwitch(msg *tgbotapi.Message) {
	arg := strings.TrimSpace(msg.CommandArguments())
	n, err := strconv.Atoi(arg)
	if arg == "" || err != nil {
		h.send(msg.Chat.ID, "Usage: /switch N (see /chats)")
		return
	}

	conv, err := h.sessions.Switch(msg.Chat.ID, n)
	if err != nil {
		h.send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	h.send(msg.Chat.ID, fmt.Sprintf("Switched to <b>%s</b> (%d messages). /history to read it.",
		html.EscapeString(conv.Title), len(conv.Messages)))
}

func (h *Handler) handleHistory(msg *tgbotapi.Message) {
	conv := h.sessions.Current(msg.Chat.ID)
	if len(conv.Messages) == 0 {
		h.send(msg.Chat.ID, "This conversation is empty.")
		return
	}

	for _, m := range conv.Messages {
		text := m.Content
		if m.Role == RoleUser {
			text = fmt.Sprintf("👤 <i>%s</i>: %s", m.Mode.Title(), html.EscapeString(m.Content))
		}
		h.sendLong(msg.Chat.ID, text)
	}
}

func (h *Handler) handleMode(msg *tgbotapi.Message) {
	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		h.send(msg.Chat.ID, "Current mode: <b>"+h.sessions.Mode(msg.Chat.ID).Title()+"</b>\nUsage: /mode depth|multi")
		return
	}

	mode, err := domain.ParseMode(arg)
	if err == nil {
		err = h.sessions.SetMode(msg.Chat.ID, mode)
	}
	if err != nil {
		h.send(msg.Chat.ID, mapErrorToMessage(err))
		return
	}

	h.send(msg.Chat.ID, "Mode set to <b>"+mode.Title()+"</b>")
}

func (h *Handler) handleResearch(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	topic, mode := ParseResearchCommand(msg.Text, h.sessions.Mode(chatID))
	req := domain.ResearchRequest{Topic: topic, Mode: mode}

	if err := req.Validate(); err != nil {
		h.send(chatID, mapErrorToMessage(err))
		return
	}
	req.Sanitize()

	conv := h.sessions.Current(chatID)
	first, err := h.sessions.AddMessage(chatID, conv.ID, ChatMessage{Role: RoleUser, Content: req.Topic, Mode: mode})
	if err != nil {
		h.logger.Error("failed to store message", zap.Error(err))
	}
	if first && h.titles != nil {
		title := h.titles.Generate(ctx, req.Topic)
		if err := h.sessions.SetTitle(chatID, conv.ID, title); err != nil {
			h.logger.Warn("failed to set title", zap.Error(err))
		}
	}

	h.sender.SendTyping(chatID)
	statusID, statusErr := h.sender.SendStatus(chatID, searchingStatus)

	h.logger.Info("running research",
		zap.Int64("chat_id", chatID),
		zap.String("mode", mode.String()),
		zap.String("conversation", conv.ID),
	)

	res, err := h.research.Run(ctx, req)

	if statusErr == nil {
		if err := h.sender.Delete(chatID, statusID); err != nil {
			h.logger.Debug("failed to delete status message", zap.Error(err))
		}
	}

	if err != nil {
		h.logger.Error("research failed",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
		h.send(chatID, mapErrorToMessage(err))
		return
	}

	text := FormatResult(res)
	if _, err := h.sessions.AddMessage(chatID, conv.ID, ChatMessage{Role: RoleAssistant, Content: text, Mode: mode}); err != nil {
		h.logger.Error("failed to store answer", zap.Error(err))
	}

	h.sendLong(chatID, text)
}

func (h *Handler) send(chatID int64, text string) {
	if err := h.sender.Send(chatID, text); err != nil {
		h.logger.Error("failed to send message", zap.Error(err))
	}
}

func (h *Handler) sendLong(chatID int64, text string) {
	for _, part := range SplitMessage(text, MaxMessageLen) {
		h.send(chatID, part)
	}
}

func mapErrorToMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyTopic):
		return "Please send a research topic."
	case errors.Is(err, domain.ErrTopicTooLong):
		return fmt.Sprintf("Topic is too long. Maximum is %d characters.", domain.MaxTopicLength)
	case errors.Is(err, domain.ErrInvalidMode):
		return "Unknown mode. Use /mode depth or /mode multi."
	case errors.Is(err, ErrConversationNotFound):
		return "No such conversation. See /chats."
	case errors.Is(err, context.DeadlineExceeded):
		return "Research took too long. Try a narrower topic."
	case errors.Is(err, domain.ErrSearchFailed):
		return "❌ Web search failed. Please try again later."
	case errors.Is(err, domain.ErrCompletionFailed):
		return "❌ Could not generate the report. Please try again later."
	default:
		return "❌ Something went wrong. Please try again later."
	}
}
