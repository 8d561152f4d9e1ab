// Package telegram connects the bot to the Telegram Bot API: the channel
// publisher, the admin error reporter and the update handler.
package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	CallbackRemove      = "remove"
	CallbackSharePrefix = "share|"
)

// Messenger is the subset of the Bot API the handlers use.
type Messenger interface {
	SendHTML(chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) (int, error)
	SendText(chatID int64, text string) (int, error)
	Delete(chatID int64, messageID int) error
	ClearMarkup(chatID int64, messageID int) error
	AnswerCallback(callbackID, text string) error
}

// APIMessenger implements Messenger over tgbotapi.
type APIMessenger struct {
	api *tgbotapi.BotAPI
}

func NewAPIMessenger(api *tgbotapi.BotAPI) *APIMessenger {
	return &APIMessenger{api: api}
}

// NewBotAPI authenticates token against the Bot API.
func NewBotAPI(token string, debug bool) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot api: %w", err)
	}
	api.Debug = debug
	return api, nil
}

func (m *APIMessenger) SendHTML(chatID int64, text string, markup *tgbotapi.InlineKeyboardMarkup) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if markup != nil {
		msg.ReplyMarkup = *markup
	}
	sent, err := m.api.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (m *APIMessenger) SendText(chatID int64, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	sent, err := m.api.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (m *APIMessenger) Delete(chatID int64, messageID int) error {
	_, err := m.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}

func (m *APIMessenger) ClearMarkup(chatID int64, messageID int) error {
	empty := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	_, err := m.api.Request(tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, empty))
	return err
}

func (m *APIMessenger) AnswerCallback(callbackID, text string) error {
	_, err := m.api.Request(tgbotapi.NewCallback(callbackID, text))
	return err
}

// RemoveKeyboard is attached to every channel post.
func RemoveKeyboard() *tgbotapi.InlineKeyboardMarkup {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🗑 Remove", CallbackRemove)),
	)
	return &kb
}

// ShareKeyboard offers a previewed draft for publishing.
func ShareKeyboard(token string) *tgbotapi.InlineKeyboardMarkup {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Share to Channel 📢", CallbackSharePrefix+token)),
	)
	return &kb
}
