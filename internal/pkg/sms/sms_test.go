package sms

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type fakeCreator struct {
	params []*twilioApi.CreateMessageParams
	err    error
}

func (f *fakeCreator) CreateMessage(p *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = append(f.params, p)
	if f.err != nil {
		return nil, f.err
	}
	sid := "SM123"
	return &twilioApi.ApiV2010Message{Sid: &sid}, nil
}

func TestNewSender_DisabledIsNoop(t *testing.T) {
	_, ok := NewSender(Config{Enabled: false, AccountSID: "a", AuthToken: "b", FromNumber: "+1"}, zerolog.Nop()).(*NoopSender)
	assert.True(t, ok)

	_, ok = NewSender(Config{Enabled: true}, zerolog.Nop()).(*NoopSender)
	assert.True(t, ok)

	_, ok = NewSender(Config{Enabled: true, AccountSID: "AC1", AuthToken: "t", FromNumber: "+15550001111"}, zerolog.Nop()).(*TwilioSender)
	assert.True(t, ok)
}

func TestTwilioSender_Send(t *testing.T) {
	fake := &fakeCreator{}
	s := &TwilioSender{api: fake, from: "+15550001111", logger: zerolog.Nop()}

	require.NoError(t, s.Send(context.Background(), " +9779800000000 ", strings.Repeat("x", 2000)))

	require.Len(t, fake.params, 1)
	assert.Equal(t, "+9779800000000", *fake.params[0].To)
	assert.Equal(t, "+15550001111", *fake.params[0].From)
	assert.Len(t, *fake.params[0].Body, maxBodyLength)
}

func TestTwilioSender_Errors(t *testing.T) {
	s := &TwilioSender{api: &fakeCreator{err: errors.New("unauthorized")}, from: "+1", logger: zerolog.Nop()}

	assert.Error(t, s.Send(context.Background(), "", "hi"))
	assert.ErrorContains(t, s.Send(context.Background(), "+1555", "hi"), "unauthorized")
}
