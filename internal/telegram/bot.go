package telegram

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/kitbuilder587/research-assistant/internal/domain"
	"github.com/kitbuilder587/research-assistant/internal/metrics"
)

type BotConfig struct {
	Token       string
	Debug       bool
	DefaultMode domain.Mode
}

type Bot struct {
	api     *tgbotapi.BotAPI
	handler *Handler
	logger  *zap.Logger
	metrics *metrics.Metrics
	wg      sync.WaitGroup
}

func New(cfg BotConfig, research Researcher, titles TitleGenerator, logger *zap.Logger, m *metrics.Metrics) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	api.Debug = cfg.Debug

	if logger == nil {
		logger = zap.NewNop()
	}

	bot := &Bot{
		api:     api,
		logger:  logger,
		metrics: m,
	}
	bot.handler = NewHandler(HandlerDeps{
		Sender:   &apiSender{api: api},
		Research: research,
		Titles:   titles,
		Sessions: NewSessionStore(cfg.DefaultMode),
		Logger:   logger,
		Metrics:  m,
	})

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
	)

	return bot, nil
}

func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("bot started, waiting for updates")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("bot stopping, waiting for handlers to finish")
			b.api.StopReceivingUpdates()
			b.wg.Wait()
			b.logger.Info("all handlers finished")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				b.wg.Wait()
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.wg.Add(1)
			go func(upd tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msgType := "query"
	if update.Message.IsCommand() {
		msgType = "command"
	}

	defer func() {
		if r := recover(); r != nil {
			chatID := int64(0)
			if update.Message.Chat != nil {
				chatID = update.Message.Chat.ID
			}
			b.logger.Error("panic in update handler",
				zap.Any("panic", r),
				zap.Int64("chat_id", chatID),
			)
			if b.metrics != nil {
				b.metrics.RecordMessage(msgType, "panic")
			}
		}
	}()

	b.handler.HandleMessage(ctx, update.Message)

	if b.metrics != nil {
		b.metrics.RecordMessage(msgType, "processed")
	}
}

// Sender - то, что хендлеру нужно от телеграма
type Sender interface {
	Send(chatID int64, text string) error
	SendStatus(chatID int64, text string) (int, error)
	Delete(chatID int64, messageID int) error
	SendTyping(chatID int64)
}

type apiSender struct {
	api *tgbotapi.BotAPI
}

func (s *apiSender) Send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := s.api.Send(msg)
	return err
}

// SendStatus - короткое служебное сообщение, id нужен чтобы потом удалить
func (s *apiSender) SendStatus(chatID int64, text string) (int, error) {
	sent, err := s.api.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (s *apiSender) Delete(chatID int64, messageID int) error {
	_, err := s.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}

func (s *apiSender) SendTyping(chatID int64) {
	// ответ на chat action - bool, а не Message, поэтому Request
	s.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
}
