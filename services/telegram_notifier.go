package services

import (
	"context"
	"fmt"

	"tableorder-backend/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier posts order events to the kitchen chat.
type TelegramNotifier struct {
	bot    messageSender
	chatID int64
}

func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("init telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

func (n *TelegramNotifier) OrderPlaced(ctx context.Context, order models.Order) error {
	return n.send(orderSummary(order))
}

func (n *TelegramNotifier) OrderReady(ctx context.Context, order models.Order) error {
	return n.send(fmt.Sprintf("Order %s for table %d is ready to serve", shortID(order), order.TableNumber))
}

func (n *TelegramNotifier) send(text string) error {
	if _, err := n.bot.Send(tgbotapi.NewMessage(n.chatID, text)); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}
