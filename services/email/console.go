package emailsvc

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/elimulabs/tuzo/core"
)

// consoleMailer dumps rendered messages to the standard logger. Dev only:
// welcome emails carry plaintext credentials, so this must never run outside
// a developer machine.
type consoleMailer struct {
	defaultFromEmail mail.Address
	subjPrefix       string
}

var _ core.Mailer = (*consoleMailer)(nil)

func NewConsoleMailer(conf *core.Config) *consoleMailer {
	return &consoleMailer{
		defaultFromEmail: conf.DefaultFromEmail,
		subjPrefix:       "[" + conf.AppName + "] ",
	}
}

func (svc consoleMailer) Send(_ context.Context, msg *core.EmailMessage) (string, error) {
	if err := msg.Render(); err != nil {
		return "", errors.Wrap(err, "rendering email")
	}
	if !msg.HasRecipients() || !msg.HasContent() {
		return "", errors.New("email has no recipients or no content")
	}

	body := new(strings.Builder)
	_, _ = fmt.Fprintf(body, "From: %s\r\n", svc.defaultFromEmail.String())
	_, _ = fmt.Fprintf(body, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	_, _ = fmt.Fprintf(body, "Subject: %s\r\n", svc.subjPrefix+msg.Subject)
	_, _ = fmt.Fprintf(body, "To: %s\r\n", joinAddresses(msg.To))
	_, _ = fmt.Fprint(body, "\r\n")
	_, _ = fmt.Fprintf(body, "%s\r\n", msg.TextContent)
	log.Println(body.String())

	return "console-" + uuid.NewString(), nil
}

func joinAddresses(addrs []mail.Address) string {
	toJoin := make([]string, 0, len(addrs))
	for _, a := range addrs {
		toJoin = append(toJoin, a.String())
	}
	return strings.Join(toJoin, ", ")
}
