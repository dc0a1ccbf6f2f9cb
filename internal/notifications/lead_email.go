package notifications

import (
	"bytes"
	"html/template"

	"realestate-backend/internal/contacts"
	"realestate-backend/internal/newsletters"
)

const contactNotificationTemplate = `<!DOCTYPE html>
<html>
<body>
  <h3>New contact form submission</h3>
  <p><strong>Name:</strong> {{.FullName}}</p>
  <p><strong>Email:</strong> {{.Email}}</p>
  <p><strong>Mobile:</strong> {{.Mobile}}</p>
  <p><strong>City:</strong> {{.City}}</p>
  <p><strong>Received:</strong> {{.CreatedAt.Format "Jan 2, 2006 03:04 PM"}}</p>
  <p><strong>ID:</strong> {{.ID}}</p>
</body>
</html>`

const newsletterWelcomeTemplate = `<!DOCTYPE html>
<html>
<body>
  <p>Hello,</p>
  <p>Thanks for subscribing with {{.Email}}. We will keep you posted on new projects and listings.</p>
  <p>If this wasn't you, just reply to this e-mail and we will remove the address.</p>
</body>
</html>`

var (
	contactNotificationTmpl = template.Must(template.New("contact_notification").Parse(contactNotificationTemplate))
	newsletterWelcomeTmpl   = template.Must(template.New("newsletter_welcome").Parse(newsletterWelcomeTemplate))
)

func buildContactNotificationHTML(c contacts.Contact) (string, error) {
	var buf bytes.Buffer
	if err := contactNotificationTmpl.Execute(&buf, c); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func buildNewsletterWelcomeHTML(s newsletters.Subscriber) (string, error) {
	var buf bytes.Buffer
	if err := newsletterWelcomeTmpl.Execute(&buf, s); err != nil {
		return "", err
	}
	return buf.String(), nil
}
