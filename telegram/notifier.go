package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PaulSonOfLars/gotgbot/v2"

	"github.com/dicabi/inmobiliaria/model"
)

var ErrNoChat = errors.New("telegram: notification chat id is not set")

type messageSender interface {
	SendMessage(chatId int64, text string, opts *gotgbot.SendMessageOpts) (*gotgbot.Message, error)
}

// Notifier posts appointment notices to the sales team chat.
type Notifier struct {
	sender messageSender
	chatID int64
}

func New(token string, chatID int64) (*Notifier, error) {
	if chatID == 0 {
		return nil, ErrNoChat
	}
	botOpts := gotgbot.BotOpts{
		BotClient: &gotgbot.BaseBotClient{
			Client: http.Client{},
			DefaultRequestOpts: &gotgbot.RequestOpts{
				Timeout: 10 * time.Second,
				APIURL:  gotgbot.DefaultAPIURL,
			},
		},
	}
	bot, err := gotgbot.NewBot(token, &botOpts)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Notifier{sender: bot, chatID: chatID}, nil
}

func (n *Notifier) NotifyAppointment(ctx context.Context, r *model.Residence) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return n.sendText(appointmentText(r))
}

func (n *Notifier) sendText(text string) error {
	_, err := n.sender.SendMessage(n.chatID, text, &gotgbot.SendMessageOpts{})
	return err
}

func appointmentText(r *model.Residence) string {
	var sb strings.Builder
	sb.WriteString("Nueva cita agendada\n")
	fmt.Fprintf(&sb, "Residencia: %s\n", r.ID.Hex())
	fmt.Fprintf(&sb, "Modelo: %s\n", r.ModelID.Hex())
	fmt.Fprintf(&sb, "Hora: %s", r.Hour)
	return sb.String()
}
