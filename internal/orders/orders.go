package orders

import (
	"context"
	"fmt"

	"github.com/jmwislek/order-notify-service/internal/models"
	"github.com/jmwislek/order-notify-service/internal/notify"
	"github.com/jmwislek/order-notify-service/internal/observability"
	"github.com/jmwislek/order-notify-service/internal/weather"
)

// emailSubject is the subject line for every confirmation email.
const emailSubject = "Order Confirmation"

// Processor confirms orders and notifies the customer, tailoring the message
// to the current weather at the delivery city. Both collaborators are
// injected; the processor never constructs its own.
type Processor struct {
	weather  weather.Client
	notifier notify.Sender
}

// NewProcessor creates a Processor using the given weather client and
// notification sender.
func NewProcessor(weatherClient weather.Client, notifier notify.Sender) *Processor {
	return &Processor{
		weather:  weatherClient,
		notifier: notifier,
	}
}

// ProcessOrder confirms the order and emails the customer. The weather check
// happens first; if it fails, processing aborts and the weather error is
// returned unchanged with no notification attempted. A notification that
// fails to deliver is reported through NotificationSent, never as an error.
func (p *Processor) ProcessOrder(ctx context.Context, orderID, customerEmail, city string) (models.OrderResult, error) {
	goodWeather, err := p.weather.IsGoodWeather(ctx, city)
	if err != nil {
		observability.OrdersProcessedTotal.WithLabelValues("weather_error").Inc()
		return models.OrderResult{}, err
	}

	message := fmt.Sprintf("Order %s confirmed!", orderID)
	if goodWeather {
		message += " Enjoy the nice weather!"
	}

	sent := p.notifier.SendEmail(ctx, customerEmail, emailSubject, message)
	outcome := "sent"
	if !sent {
		outcome = "failed"
	}
	observability.NotificationsSentTotal.WithLabelValues("email", outcome).Inc()
	observability.OrdersProcessedTotal.WithLabelValues("confirmed").Inc()

	return models.OrderResult{
		OrderID:          orderID,
		NotificationSent: sent,
		WeatherChecked:   true,
		IsGoodWeather:    goodWeather,
	}, nil
}
