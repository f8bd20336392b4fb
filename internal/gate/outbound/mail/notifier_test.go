package mail

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	pkgmail "github.com/shandysiswandi/otpgate/internal/pkg/mail"
)

type fakeMail struct {
	messages  []pkgmail.Message
	failFirst int
}

func (f *fakeMail) Send(_ context.Context, msg pkgmail.Message) error {
	if f.failFirst > 0 {
		f.failFirst--
		return errors.New("temporary smtp failure")
	}
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeMail) Close() error { return nil }

func TestNotifier_SendCode(t *testing.T) {
	client := &fakeMail{}
	n := NewNotifier(client, "Acme", instrument.NewNoop())

	err := n.SendCode(context.Background(), "alice@example.com", "493021", 5*time.Minute)
	if err != nil {
		t.Fatalf("SendCode returned error: %v", err)
	}

	if len(client.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(client.messages))
	}

	msg := client.messages[0]
	if msg.To[0] != "alice@example.com" {
		t.Fatalf("unexpected recipient %q", msg.To[0])
	}
	if msg.Subject != "[Acme] Your Verification Code" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	if !strings.Contains(msg.TextBody, "493021") {
		t.Fatal("body does not contain the code")
	}
	if !strings.Contains(msg.TextBody, "expire in 5 minutes") {
		t.Fatalf("body does not mention the expiry window: %q", msg.TextBody)
	}
	if !strings.Contains(msg.TextBody, "you can safely ignore this email") {
		t.Fatal("body does not contain the ignore notice")
	}
}

func TestNotifier_SendCodeRetriesTransientFailures(t *testing.T) {
	client := &fakeMail{failFirst: 2}
	n := NewNotifier(client, "Acme", instrument.NewNoop())

	err := n.SendCode(context.Background(), "alice@example.com", "493021", 5*time.Minute)
	if err != nil {
		t.Fatalf("SendCode should succeed after retries, got %v", err)
	}

	if len(client.messages) != 1 {
		t.Fatalf("expected 1 delivered message, got %d", len(client.messages))
	}
}

func TestNotifier_SendCodeGivesUp(t *testing.T) {
	client := &fakeMail{failFirst: 10}
	n := NewNotifier(client, "Acme", instrument.NewNoop())

	err := n.SendCode(context.Background(), "alice@example.com", "493021", 5*time.Minute)
	if err == nil {
		t.Fatal("expected error after exhausting retries, got nil")
	}
}
