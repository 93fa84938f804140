package telegram

import (
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Sender adapts the Telegram client to the transport capability the
// broadcast dispatcher fans out through (broadcast.Sender).
type Sender struct {
	bot  api
	log  *zap.Logger
	http *http.Client
}

func NewSender(bot api, log *zap.Logger) *Sender {
	return &Sender{
		bot:  bot,
		log:  log,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// SendText sends a MarkdownV2 message to the given chat.
func (s *Sender) SendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	_, err := s.bot.Send(msg)
	return err
}

// SendPhoto downloads the image and uploads it to the chat with a
// MarkdownV2 caption. If the image itself cannot be fetched, the caption
// is delivered as a text message so the chat still gets the quote.
func (s *Sender) SendPhoto(chatID int64, imageURL, caption string) error {
	resp, err := s.http.Get(imageURL)
	if err != nil {
		s.log.Warn("image download failed, sending caption only", zap.Error(err), zap.String("url", imageURL))
		return s.SendText(chatID, caption)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.log.Warn("image download failed, sending caption only",
			zap.Int("status", resp.StatusCode), zap.String("url", imageURL))
		return s.SendText(chatID, caption)
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileReader{
		Name:   "morning.jpg",
		Reader: resp.Body,
	})
	photo.Caption = caption
	photo.ParseMode = tgbotapi.ModeMarkdownV2

	if _, err := s.bot.Send(photo); err != nil {
		return fmt.Errorf("send photo: %w", err)
	}
	return nil
}
