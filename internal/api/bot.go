package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"plotter-bot/internal/domain/entity"
	"plotter-bot/internal/domain/port"
)

const (
	msgStart = `👋 Привет! Я рисую картинки пером на плоттере.

📸 Отправьте мне фото или картинку, и я её нарисую.

📋 Команды:
/help — справка
/status — что сейчас делает плоттер`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте картинку
2️⃣ Бот выделит тёмные контуры
3️⃣ Плоттер нарисует их пером

💡 Рекомендации:
• Тёмный рисунок на светлом фоне
• Крупные линии, без мелкого шума
• Одно задание за раз`

	msgSendPhoto      = "📸 Пожалуйста, отправьте картинку для рисования."
	msgUnknownCommand = "❓ Неизвестная команда. Используйте /help для справки."
	msgAccepted       = "⏳ Задание получено, передаю плоттеру..."
	msgDone           = "✅ Готово! Рисунок закончен."
	msgFailed         = "⚠️ Не удалось нарисовать картинку: %v"
	msgRejected       = "⏸ Плоттер занят, попробуйте позже."
	msgHalted         = "🛑 Плоттер остановлен из-за ошибки связи, задания не принимаются."
	msgShuttingDown   = "🔌 Плоттер выключается, задание не принято."
	msgStatus         = "🖊 Состояние плоттера: %s"
)

// botAPI — часть tgbotapi.BotAPI, которой пользуется бот.
type botAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

// StatusSource сообщает текущее состояние контроллера
type StatusSource interface {
	State() entity.JobState
}

// Bot представляет Telegram-бота, принимающего задания
type Bot struct {
	api        botAPI
	requesters port.RequesterRepository
	status     StatusSource
}

// NewBot создаёт нового бота
func NewBot(token string, requesters port.RequesterRepository, status StatusSource) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	slog.Info("authorized on telegram", "account", api.Self.UserName)

	return newBot(api, requesters, status), nil
}

func newBot(api botAPI, requesters port.RequesterRepository, status StatusSource) *Bot {
	return &Bot{
		api:        api,
		requesters: requesters,
		status:     status,
	}
}

// Run запускает основной цикл обработки сообщений
func (b *Bot) Run(ctx context.Context, h port.JobHandler) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message, h)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message, h port.JobHandler) {
	if msg.IsCommand() {
		b.handleCommand(msg)
		return
	}

	fileID := imageFileID(msg)
	if fileID == "" {
		b.sendMessage(msg.Chat.ID, msgSendPhoto)
		return
	}

	job, err := b.newJob(ctx, msg, fileID)
	if err != nil {
		slog.WarnContext(ctx, "failed to build job from telegram message", "chat_id", msg.Chat.ID, "error", err)
		b.sendMessage(msg.Chat.ID, fmt.Sprintf(msgFailed, err))
		return
	}

	b.sendMessage(msg.Chat.ID, msgAccepted)

	// Рисование идёт в отдельной горутине, чтобы новые сообщения получали ответ сразу.
	go h.Submit(ctx, job, b)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.sendMessage(msg.Chat.ID, msgStart)

	case "help":
		b.sendMessage(msg.Chat.ID, msgHelp)

	case "status":
		state := entity.StateIdle
		if b.status != nil {
			state = b.status.State()
		}
		b.sendMessage(msg.Chat.ID, fmt.Sprintf(msgStatus, state))

	default:
		b.sendMessage(msg.Chat.ID, msgUnknownCommand)
	}
}

func (b *Bot) newJob(ctx context.Context, msg *tgbotapi.Message, fileID string) (entity.Job, error) {
	link, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return entity.Job{}, fmt.Errorf("get file: %w", err)
	}

	job, err := entity.NewJob(requesterName(msg), link)
	if err != nil {
		return entity.Job{}, err
	}

	requester, err := b.requesters.Get(ctx, job.User, msg.Chat.ID)
	if err != nil {
		return entity.Job{}, err
	}
	requester.Touch(job.ID, job.ReceivedAt)
	if err := b.requesters.Save(ctx, requester); err != nil {
		return entity.Job{}, err
	}
	return job, nil
}

// Report отправляет автору итог задания
func (b *Bot) Report(ctx context.Context, r entity.JobReport) error {
	requester, ok := b.requesters.Lookup(ctx, r.Job.User)
	if !ok || requester.ChatID == 0 {
		return fmt.Errorf("no chat for requester %q", r.Job.User)
	}

	var text string
	switch r.Status {
	case entity.JobDone:
		text = msgDone
	case entity.JobRejected:
		text = rejectionText(r.Err)
	default:
		text = fmt.Sprintf(msgFailed, r.Err)
	}

	if _, err := b.api.Send(tgbotapi.NewMessage(requester.ChatID, text)); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func rejectionText(err error) string {
	switch {
	case errors.Is(err, entity.ErrHalted):
		return msgHalted
	case entity.IsKind(err, entity.KindCancelled):
		return msgShuttingDown
	default:
		return msgRejected
	}
}

// Close останавливает получение обновлений
func (b *Bot) Close() error {
	b.api.StopReceivingUpdates()
	return nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		slog.Warn("error sending telegram message", "chat_id", chatID, "error", err)
	}
}

// imageFileID возвращает файл с максимальным разрешением: фото или картинку-документ.
func imageFileID(msg *tgbotapi.Message) string {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID
	}
	if msg.Document != nil && isImageMIME(msg.Document.MimeType) {
		return msg.Document.FileID
	}
	return ""
}

func isImageMIME(mime string) bool {
	return len(mime) > len("image/") && mime[:len("image/")] == "image/"
}

func requesterName(msg *tgbotapi.Message) string {
	if msg.From == nil {
		return fmt.Sprintf("chat%d", msg.Chat.ID)
	}
	if msg.From.UserName != "" {
		return msg.From.UserName
	}
	return fmt.Sprintf("id%d", msg.From.ID)
}

var _ port.JobChannel = (*Bot)(nil)
