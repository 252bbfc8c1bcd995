package sms

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/rvworks/servicedesk/internal/config"
	"github.com/rvworks/servicedesk/internal/service"
)

const requestTimeout = 10 * time.Second

// messageAPI is the slice of the Twilio client the sender needs.
type messageAPI interface {
	CreateMessageWithCtx(ctx context.Context, params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioSender delivers SMS through the Twilio REST API.
type TwilioSender struct {
	api  messageAPI
	from string
	log  zerolog.Logger
}

func NewTwilioSender(cfg config.TwilioConfig, log zerolog.Logger) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	client.Client.SetTimeout(requestTimeout)
	return &TwilioSender{
		api:  client.Api,
		from: cfg.FromNumber,
		log:  log,
	}
}

func (s *TwilioSender) Send(ctx context.Context, to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(normalizePhone(to))
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.api.CreateMessageWithCtx(ctx, params)
	if err != nil {
		return fmt.Errorf("%w: twilio send: %v", service.ErrUpstream, err)
	}
	if resp.Sid != nil {
		s.log.Debug().Str("sid", *resp.Sid).Msg("sms sent")
	}
	return nil
}

// normalizePhone coerces a 10-digit US number into E.164. Numbers already
// carrying a country code pass through unchanged.
func normalizePhone(phone string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)

	if strings.HasPrefix(phone, "+") {
		return "+" + cleaned
	}
	if len(cleaned) == 10 {
		return "+1" + cleaned
	}
	if len(cleaned) == 11 && strings.HasPrefix(cleaned, "1") {
		return "+" + cleaned
	}
	return "+" + cleaned
}
