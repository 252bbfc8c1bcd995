package sms

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/rvworks/servicedesk/internal/service"
)

type fakeMessageAPI struct {
	err    error
	params *twilioApi.CreateMessageParams
}

func (f *fakeMessageAPI) CreateMessageWithCtx(ctx context.Context, params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM0001"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func TestSendNormalizesRecipient(t *testing.T) {
	api := &fakeMessageAPI{}
	s := &TwilioSender{api: api, from: "+15550001111", log: zerolog.Nop()}

	require.NoError(t, s.Send(context.Background(), "(555) 123-4567", "estimate ready"))
	require.NotNil(t, api.params)
	require.NotNil(t, api.params.To)
	assert.Equal(t, "+15551234567", *api.params.To)
	assert.Equal(t, "+15550001111", *api.params.From)
}

func TestSendWrapsProviderFailure(t *testing.T) {
	api := &fakeMessageAPI{err: errors.New("connection reset")}
	s := &TwilioSender{api: api, from: "+15550001111", log: zerolog.Nop()}

	err := s.Send(context.Background(), "5551234567", "estimate ready")
	require.ErrorIs(t, err, service.ErrUpstream)
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "+15551234567", normalizePhone("555-123-4567"))
	assert.Equal(t, "+15551234567", normalizePhone("15551234567"))
	assert.Equal(t, "+447911123456", normalizePhone("+44 7911 123456"))
}
