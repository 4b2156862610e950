package emailsvc

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"

	"github.com/elimulabs/tuzo/core"
)

// MailerMock records every rendered message and can be told to fail delivery
// for specific recipient addresses.
type MailerMock struct {
	mu           sync.Mutex
	SentMessages []core.EmailMessage
	FailFor      map[string]bool // recipient address -> fail
	FailAll      bool
	sendCount    int
}

var _ core.Mailer = (*MailerMock)(nil)

func NewMailerMock() *MailerMock {
	return &MailerMock{FailFor: make(map[string]bool)}
}

func (svc *MailerMock) Send(_ context.Context, msg *core.EmailMessage) (string, error) {
	if err := msg.Render(); err != nil {
		return "", errors.Wrap(err, "rendering email")
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()

	svc.sendCount++
	if svc.FailAll {
		return "", errors.New("smtp unavailable")
	}
	for _, to := range msg.To {
		if svc.FailFor[to.Address] {
			return "", errors.Errorf("delivery refused for %s", to.Address)
		}
	}
	svc.SentMessages = append(svc.SentMessages, *msg)
	return fmt.Sprintf("mock-%d", svc.sendCount), nil
}

func (svc *MailerMock) Reset() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.SentMessages = nil
	svc.FailFor = make(map[string]bool)
	svc.FailAll = false
	svc.sendCount = 0
}
