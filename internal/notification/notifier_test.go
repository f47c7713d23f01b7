package notification

import (
	"ConnSpectra/internal/config"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"
)

func TestSplitRecipients(t *testing.T) {
	got := splitRecipients(" ops@example.com, ,noc@example.com ")
	if len(got) != 2 || got[0] != "ops@example.com" || got[1] != "noc@example.com" {
		t.Errorf("Unexpected recipients: %v", got)
	}
}

func TestBuildMessage(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	msg := string(buildMessage("bot@example.com", []string{"a@example.com", "b@example.com"}, "Hi", "<p>x</p>", now))

	for _, want := range []string{
		"To: a@example.com, b@example.com\r\n",
		"From: bot@example.com\r\n",
		"Subject: Hi\r\n",
		"Content-Type: text/html; charset=UTF-8\r\n",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("Expected message to contain %q", want)
		}
	}
	if !strings.HasSuffix(msg, "\r\n\r\n<p>x</p>") {
		t.Errorf("Expected body after a blank line, got %q", msg)
	}
}

func TestSend(t *testing.T) {
	n := NewEmailNotifier(config.SMTPConfig{Host: "mail.local", Port: 25, From: "bot@example.com", To: "ops@example.com"}).(*EmailNotifier)

	var gotAddr string
	var gotTo []string
	n.send = func(addr string, _ smtp.Auth, _ string, to []string, _ []byte) error {
		gotAddr, gotTo = addr, to
		return nil
	}
	if err := n.Send("subject", "body"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if gotAddr != "mail.local:25" || len(gotTo) != 1 {
		t.Errorf("Unexpected delivery: addr=%s to=%v", gotAddr, gotTo)
	}

	n.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("refused") }
	if err := n.Send("subject", "body"); err == nil {
		t.Error("Expected the delivery error to be returned")
	}
}

func TestSend_NoRecipients(t *testing.T) {
	n := NewEmailNotifier(config.SMTPConfig{Host: "mail.local", Port: 25})
	if err := n.Send("subject", "body"); err == nil {
		t.Error("Expected an error without recipients")
	}
}
