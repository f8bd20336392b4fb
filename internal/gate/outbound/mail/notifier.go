// Package mail delivers one-time codes to the identity's mailbox.
package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	pkgmail "github.com/shandysiswandi/otpgate/internal/pkg/mail"
	"go.opentelemetry.io/otel/codes"
)

type Notifier struct {
	client  pkgmail.Mail
	appName string
	ins     instrument.Instrumentation
}

func NewNotifier(client pkgmail.Mail, appName string, ins instrument.Instrumentation) *Notifier {
	return &Notifier{client: client, appName: appName, ins: ins}
}

// SendCode emails the one-time code. Delivery is retried with fibonacci
// backoff; SMTP rejections on a login path are usually transient.
func (n *Notifier) SendCode(ctx context.Context, identity, code string, ttl time.Duration) error {
	ctx, span := n.ins.Tracer("gate.outbound.mail").Start(ctx, "SendCode")
	defer span.End()

	msg := pkgmail.Message{
		To:      []string{identity},
		Subject: fmt.Sprintf("[%s] Your Verification Code", n.appName),
		TextBody: fmt.Sprintf(
			"Your one-time verification code for %s is:\n\n%s\n\nThis code will expire in %d minutes.\n\nIf you did not request this code, you can safely ignore this email.",
			n.appName, code, int(ttl.Minutes()),
		),
	}

	backoff := retry.WithMaxRetries(3, retry.WithCappedDuration(5*time.Second, retry.NewFibonacci(500*time.Millisecond)))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := n.client.Send(ctx, msg); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
