package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []Job
	err  error
}

func (f *fakeSender) Send(_ context.Context, job Job) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, job)

	return nil
}

func TestHandler(t *testing.T) {
	sender := &fakeSender{}
	h := NewHandler(sender, nil)

	job := Job{To: "alice@example.com", Subject: "Verify your email", Kind: KindVerifyEmail, Token: "tok"}
	require.NoError(t, h.Handle(context.Background(), job))
	require.Equal(t, []Job{job}, sender.sent)
}

func TestHandlerSendFailure(t *testing.T) {
	boom := errors.New("smtp down")
	h := NewHandler(&fakeSender{err: boom}, nil)

	err := h.Handle(context.Background(), Job{To: "bob@example.com", Kind: KindResetPassword})
	require.ErrorIs(t, err, boom)
}
