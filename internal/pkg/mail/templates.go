package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"
)

const entryNotifyHTMLTpl = `<html>
  <body>
    <h2>New Entry Added</h2>
    <p>A new entry has been added to the card "{{.CardCustomID}}" by {{.Username}}.</p>
    <p><a href="{{.CardURL}}">View the card</a></p>
    <hr>
    <p><small>If you no longer wish to receive these notifications, <a href="{{.UnsubscribeURL}}">unsubscribe here</a>.</small></p>
  </body>
</html>`

const entryNotifyTextTpl = `New Entry Added

A new entry has been added to the card "{{.CardCustomID}}" by {{.Username}}.

View the card: {{.CardURL}}

If you no longer wish to receive these notifications, unsubscribe here: {{.UnsubscribeURL}}
`

const contactHTMLTpl = `<h2>Contact Form Submission</h2>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> <a href="mailto:{{.Email}}">{{.Email}}</a></p>
<p><strong>Subject:</strong> {{.Subject}}</p>
<hr>
<p><strong>Message:</strong></p>
<p>{{.MessageHTML}}</p>`

const contactTextTpl = `Name: {{.Name}}
Email: {{.Email}}
Subject: {{.Subject}}

Message:
{{.Message}}`

// EntryNotifyData is the data for new-entry notification emails.
type EntryNotifyData struct {
	CardCustomID   string
	Username       string
	CardURL        string
	UnsubscribeURL string
}

// ContactData is the data for contact-form emails.
type ContactData struct {
	Name    string
	Email   string
	Subject string
	Message string
}

func renderHTML(tpl string, data interface{}) (string, error) {
	t, err := template.New("").Parse(tpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderText(tpl string, data interface{}) (string, error) {
	t, err := texttemplate.New("").Parse(tpl)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// EntryNotifySubject builds the notification subject line.
func EntryNotifySubject(cardCustomID string) string {
	return fmt.Sprintf("New entry added to card %q", cardCustomID)
}

// SendEntryNotify sends a new-entry notification to one subscriber.
func (s *Sender) SendEntryNotify(ctx context.Context, to string, data EntryNotifyData) error {
	html, err := renderHTML(entryNotifyHTMLTpl, data)
	if err != nil {
		return err
	}
	text, err := renderText(entryNotifyTextTpl, data)
	if err != nil {
		return err
	}
	return s.Send(ctx, Message{
		To:      to,
		Subject: EntryNotifySubject(data.CardCustomID),
		Text:    text,
		HTML:    html,
	})
}

// SendContact forwards a contact-form submission to the site owner, with
// Reply-To set to the submitter.
func (s *Sender) SendContact(ctx context.Context, to string, data ContactData) error {
	htmlData := struct {
		ContactData
		MessageHTML template.HTML
	}{
		ContactData: data,
		MessageHTML: template.HTML(strings.ReplaceAll(template.HTMLEscapeString(data.Message), "\n", "<br>")),
	}
	html, err := renderHTML(contactHTMLTpl, htmlData)
	if err != nil {
		return err
	}
	text, err := renderText(contactTextTpl, data)
	if err != nil {
		return err
	}
	return s.Send(ctx, Message{
		To:          to,
		ToName:      "Rahabenico Contact",
		ReplyTo:     data.Email,
		ReplyToName: data.Name,
		Subject:     "Contact Form: " + data.Subject,
		Text:        text,
		HTML:        html,
	})
}
