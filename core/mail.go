package core

import (
	"bytes"
	"context"
	htmltmpl "html/template"
	"net/mail"
	"path"
	"strings"
	texttmpl "text/template"

	"github.com/pkg/errors"

	appfs "github.com/elimulabs/tuzo/fs"
)

const emailTemplateDir = "templates/email"

var templates tmplCache

type (
	tmplCacheEntry map[string]interface{}    // {ext: *Template}
	tmplCache      map[string]tmplCacheEntry // {name: tmplCacheEntry}

	EmailMessage struct {
		To      []mail.Address
		Cc      []mail.Address
		Bcc     []mail.Address
		Subject string
		BodyStr string // simple text/plain, non-templated content

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	// Mailer is any service that can deliver a single email message.
	// Send returns the provider's message ID on success. Delivery failure is
	// the caller's to classify; Send never retries.
	Mailer interface {
		Send(ctx context.Context, msg *EmailMessage) (messageID string, err error)
	}
)

// ParseEmailTemplates loads the embedded email templates into the cache.
// Call once at startup, before any Mailer renders a message.
func ParseEmailTemplates(logger Logger) {
	templates = make(tmplCache)

	entries, err := appfs.FS.ReadDir(emailTemplateDir)
	if err != nil {
		logger.Fatal("reading email templates", err)
	}

	for _, entry := range entries {
		fname := entry.Name()
		ext := path.Ext(fname)
		if strings.HasPrefix(fname, "_") || !(ext == ".txt" || ext == ".gohtml") {
			continue
		}
		name := fname[:strings.LastIndex(fname, ".")]
		cache, ok := templates[name]
		if !ok {
			cache = make(tmplCacheEntry)
			templates[name] = cache
		}

		fp := path.Join(emailTemplateDir, fname)
		if ext == ".txt" {
			tmpl, err := texttmpl.ParseFS(appfs.FS, path.Join(emailTemplateDir, "_base.txt"), fp)
			if err != nil {
				logger.Fatal("parsing "+fp, err)
			}
			cache[ext] = tmpl.Option("missingkey=error")
		} else {
			tmpl, err := htmltmpl.ParseFS(appfs.FS, path.Join(emailTemplateDir, "_base.gohtml"), fp)
			if err != nil {
				logger.Fatal("parsing "+fp, err)
			}
			cache[ext] = tmpl.Option("missingkey=error")
		}
	}
}

func (m *EmailMessage) getTemplate(ext string) (interface{}, bool) {
	cache, ok := templates[m.TemplateName]
	if !ok {
		return nil, ok
	}
	tmplEntry, ok := cache[ext]
	return tmplEntry, ok
}

func (m *EmailMessage) renderText() error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
		return nil
	} else if m.TemplateName == "" {
		return nil
	}

	tmplEntry, ok := m.getTemplate(".txt")
	if !ok {
		return nil
	}
	tmpl, ok := tmplEntry.(*texttmpl.Template)
	if !ok {
		return nil
	}

	var buff bytes.Buffer
	if err := tmpl.Execute(&buff, m.TemplateData); err != nil {
		return errors.Wrap(err, "executing "+m.TemplateName+".txt")
	}
	m.TextContent = buff.String()
	return nil
}

func (m *EmailMessage) renderHTML() error {
	if m.TemplateName == "" {
		return nil
	}

	tmplEntry, ok := m.getTemplate(".gohtml")
	if !ok {
		return nil
	}
	tmpl, ok := tmplEntry.(*htmltmpl.Template)
	if !ok {
		return nil
	}

	var buff bytes.Buffer
	if err := tmpl.Execute(&buff, m.TemplateData); err != nil {
		return errors.Wrap(err, "executing "+m.TemplateName+".gohtml")
	}
	m.HTMLContent = buff.String()
	return nil
}

func (m *EmailMessage) Render() error {
	if err := m.renderText(); err != nil {
		return err
	}
	return m.renderHTML()
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return (m.TextContent != "") || (m.HTMLContent != "") }

// WelcomeEmailData is the payload of the credential-delivery templates. The
// Password field holds the plaintext credential; it lives only in memory for
// the duration of the send and must never be logged or persisted.
type WelcomeEmailData struct {
	Name     string
	Email    string
	Password string
	LoginURL string
}

// WelcomeEmail composes the credential-delivery message for a newly created
// account. templateName selects the record-type template (welcome-student,
// welcome-college).
func WelcomeEmail(appName, templateName string, data WelcomeEmailData) *EmailMessage {
	return &EmailMessage{
		To:           []mail.Address{{Name: data.Name, Address: data.Email}},
		Subject:      "Welcome to " + appName,
		TemplateName: templateName,
		TemplateData: data,
	}
}
