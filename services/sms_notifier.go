package services

import (
	"context"
	"fmt"
	"log/slog"

	"tableorder-backend/models"
	"tableorder-backend/utils"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// messageCreator is the slice of the Twilio API the notifier needs.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// SMSNotifier texts the customer when their order is ready.
type SMSNotifier struct {
	api    messageCreator
	from   string
	logger *slog.Logger
}

func NewSMSNotifier(accountSid, authToken, from string, logger *slog.Logger) *SMSNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})
	return &SMSNotifier{api: client.Api, from: from, logger: logger.With("component", "sms_notifier")}
}

func (n *SMSNotifier) OrderPlaced(ctx context.Context, order models.Order) error {
	return nil
}

func (n *SMSNotifier) OrderReady(ctx context.Context, order models.Order) error {
	if order.CustomerPhone == "" || !utils.ValidatePhone(order.CustomerPhone) {
		return nil
	}

	greeting := "Hi"
	if order.CustomerName != "" {
		greeting = "Hi " + order.CustomerName
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(utils.CleanPhone(order.CustomerPhone))
	params.SetFrom(n.from)
	params.SetBody(fmt.Sprintf("%s, your order for table %d is ready!", greeting, order.TableNumber))

	resp, err := n.api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("send sms for order %s: %w", order.ID, err)
	}
	if resp != nil && resp.Sid != nil {
		n.logger.Info("ready sms sent", "order_id", order.ID, "sid", *resp.Sid)
	}
	return nil
}
