// Package email provides email sending functionality
package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"strings"
	"time"
)

// Config holds email configuration
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
	UseTLS   bool
}

// Service handles email sending
type Service struct {
	config    *Config
	templates map[string]*template.Template
}

// NewService creates a new email service
func NewService(config *Config) *Service {
	s := &Service{
		config:    config,
		templates: make(map[string]*template.Template),
	}
	s.loadTemplates()
	return s
}

// Email represents an email message
type Email struct {
	To       []string
	CC       []string
	BCC      []string
	Subject  string
	Body     string
	HTMLBody string
}

// loadTemplates loads all email templates
func (s *Service) loadTemplates() {

	// Account approved
	s.templates["account_approved"] = template.Must(template.New("account_approved").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #10b981; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .btn { display: inline-block; background: #10b981; color: white; padding: 12px 20px; text-decoration: none; border-radius: 6px; margin-top: 16px; }
        .footer { margin-top: 24px; font-size: 12px; color: #6b7280; text-align: center; }
    </style>
</head>
<body>
<div class="container">
    <div class="header">
        <h2>Welcome to ORA People</h2>
    </div>
    <div class="content">
        <p>Hi {{.Name}},</p>
        <p>Your account has been approved. You can now sign in and explore the org chart.</p>

        <a href="{{.LoginURL}}" class="btn">Sign In</a>
    </div>
    <div class="footer">
        ORA People • HR &amp; Performance Platform
    </div>
</div>
</body>
</html>
`))

	// Assessment reminder
	s.templates["assessment_reminder"] = template.Must(template.New("assessment_reminder").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #6366f1; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .cycle-card { background: white; border-radius: 8px; padding: 20px; margin: 20px 0; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        .btn { display: inline-block; background: #6366f1; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin-top: 15px; }
        .deadline { color: #ef4444; font-weight: bold; }
        .footer { text-align: center; color: #6b7280; font-size: 12px; margin-top: 20px; }
    </style>
</head>
<body>
<div class="container">
    <div class="header">
        <h1>📝 Assessment Reminder</h1>
    </div>
    <div class="content">
        <p>Hi {{.Name}},</p>
        <p>You have not submitted your self-assessment for the current review cycle yet.</p>

        <div class="cycle-card">
            <h2>{{.CycleName}}</h2>
            <p>Closes: <span class="deadline">{{.ClosesAt}}</span></p>
        </div>

        <a href="{{.AssessmentURL}}" class="btn">Start Assessment</a>
    </div>
    <div class="footer">
        ORA People • HR &amp; Performance Platform
    </div>
</div>
</body>
</html>
`))

	// Pending approval (to admins)
	s.templates["pending_approval"] = template.Must(template.New("pending_approval").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #f59e0b; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .btn { display: inline-block; background: #f59e0b; color: white; padding: 12px 20px; text-decoration: none; border-radius: 6px; margin-top: 16px; }
        .footer { margin-top: 24px; font-size: 12px; color: #6b7280; text-align: center; }
    </style>
</head>
<body>
<div class="container">
    <div class="header">
        <h2>Registration Pending Approval</h2>
    </div>
    <div class="content">
        <p>Hello,</p>
        <p><strong>{{.MemberName}}</strong> ({{.MemberEmail}}) registered and is waiting for approval.</p>

        <a href="{{.ReviewURL}}" class="btn">Review Registration</a>
    </div>
    <div class="footer">
        ORA People • HR &amp; Performance Platform
    </div>
</div>
</body>
</html>
`))

	// Reporting line changed
	s.templates["supervisor_changed"] = template.Must(template.New("supervisor_changed").Parse(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #6366f1; color: white; padding: 24px; border-radius: 8px 8px 0 0; }
        .content { background: #f9fafb; padding: 24px; border-radius: 0 0 8px 8px; }
        .btn { display: inline-block; background: #6366f1; color: white; padding: 12px 20px; text-decoration: none; border-radius: 6px; margin-top: 16px; }
        .footer { margin-top: 24px; font-size: 12px; color: #6b7280; text-align: center; }
    </style>
</head>
<body>
<div class="container">
    <div class="header">
        <h2>Your Reporting Line Changed</h2>
    </div>
    <div class="content">
        <p>Hi {{.Name}},</p>
        {{if .SupervisorName}}
        <p>You now report to <strong>{{.SupervisorName}}</strong>.</p>
        {{else}}
        <p>You no longer report to a supervisor.</p>
        {{end}}

        <a href="{{.ChartURL}}" class="btn">View Org Chart</a>
    </div>
    <div class="footer">
        ORA People • HR &amp; Performance Platform
    </div>
</div>
</body>
</html>
`))
}

// Send sends an email
func (s *Service) Send(email *Email) error {
	if s.config.Host == "" {
		log.Println("Email not configured, skipping send")
		return nil
	}

	// Build message
	var msg bytes.Buffer

	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", s.config.FromName, s.config.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(email.To, ", ")))
	if len(email.CC) > 0 {
		msg.WriteString(fmt.Sprintf("Cc: %s\r\n", strings.Join(email.CC, ", ")))
	}
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", email.Subject))
	msg.WriteString("MIME-Version: 1.0\r\n")

	if email.HTMLBody != "" {
		msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(email.HTMLBody)
	} else {
		msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
		msg.WriteString("\r\n")
		msg.WriteString(email.Body)
	}

	recipients := append(email.To, email.CC...)
	recipients = append(recipients, email.BCC...)

	auth := smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	if s.config.UseTLS {
		tlsConfig := &tls.Config{
			ServerName: s.config.Host,
		}

		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			return fmt.Errorf("TLS dial error: %w", err)
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, s.config.Host)
		if err != nil {
			return fmt.Errorf("SMTP client error: %w", err)
		}
		defer client.Close()

		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("auth error: %w", err)
		}

		if err = client.Mail(s.config.From); err != nil {
			return fmt.Errorf("mail error: %w", err)
		}

		for _, rcpt := range recipients {
			if err = client.Rcpt(rcpt); err != nil {
				return fmt.Errorf("rcpt error: %w", err)
			}
		}

		w, err := client.Data()
		if err != nil {
			return fmt.Errorf("data error: %w", err)
		}

		_, err = w.Write(msg.Bytes())
		if err != nil {
			return fmt.Errorf("write error: %w", err)
		}

		err = w.Close()
		if err != nil {
			return fmt.Errorf("close error: %w", err)
		}

		return client.Quit()
	}

	// Non-TLS
	return smtp.SendMail(addr, auth, s.config.From, recipients, msg.Bytes())
}

// SendWithTemplate sends an email using a template
func (s *Service) SendWithTemplate(to []string, subject, templateName string, data interface{}) error {
	tmpl, ok := s.templates[templateName]
	if !ok {
		return fmt.Errorf("template not found: %s", templateName)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("template execution error: %w", err)
	}

	return s.Send(&Email{
		To:       to,
		Subject:  subject,
		HTMLBody: body.String(),
	})
}

// ============================================
// Convenience Methods
// ============================================

// AccountApprovedData holds data for the approval email
type AccountApprovedData struct {
	Name     string
	LoginURL string
}

// SendAccountApproved sends the welcome email after approval
func (s *Service) SendAccountApproved(to string, data AccountApprovedData) error {
	return s.SendWithTemplate([]string{to}, "[ORA People] Your account has been approved", "account_approved", data)
}

// AssessmentReminderData holds data for the reminder email
type AssessmentReminderData struct {
	Name          string
	CycleName     string
	ClosesAt      string
	AssessmentURL string
}

// SendAssessmentReminder sends a self-assessment reminder
func (s *Service) SendAssessmentReminder(to string, data AssessmentReminderData) error {
	return s.SendWithTemplate([]string{to},
		fmt.Sprintf("[ORA People] Reminder: %s closes soon", data.CycleName),
		"assessment_reminder", data)
}

// PendingApprovalData holds data for the admin approval email
type PendingApprovalData struct {
	MemberName  string
	MemberEmail string
	ReviewURL   string
}

// SendPendingApproval notifies an admin of a waiting registration
func (s *Service) SendPendingApproval(to string, data PendingApprovalData) error {
	return s.SendWithTemplate([]string{to},
		fmt.Sprintf("[ORA People] %s is waiting for approval", data.MemberName),
		"pending_approval", data)
}

// SupervisorChangedData holds data for the reporting line email
type SupervisorChangedData struct {
	Name           string
	SupervisorName string
	ChartURL       string
}

// SendSupervisorChanged notifies a member their reporting line moved
func (s *Service) SendSupervisorChanged(to string, data SupervisorChangedData) error {
	return s.SendWithTemplate([]string{to}, "[ORA People] Your reporting line changed", "supervisor_changed", data)
}

// ============================================
// Email Queue (async sending)
// ============================================

// EmailQueue queues emails for async sending
type EmailQueue struct {
	service *Service
	queue   chan *queuedEmail
	done    chan bool
}

type queuedEmail struct {
	to           []string
	subject      string
	templateName string
	data         interface{}
	retries      int
}

// NewEmailQueue creates a new email queue
func NewEmailQueue(service *Service, workers int) *EmailQueue {
	q := &EmailQueue{
		service: service,
		queue:   make(chan *queuedEmail, 1000),
		done:    make(chan bool),
	}

	for i := 0; i < workers; i++ {
		go q.worker()
	}

	return q
}

func (q *EmailQueue) worker() {
	for {
		select {
		case email := <-q.queue:
			err := q.service.SendWithTemplate(email.to, email.subject, email.templateName, email.data)
			if err != nil {
				log.Printf("Email send error: %v", err)
				if email.retries < 3 {
					email.retries++
					time.Sleep(time.Second * time.Duration(email.retries*2))
					q.queue <- email
				}
			}
		case <-q.done:
			return
		}
	}
}

// Enqueue adds an email to the queue
func (q *EmailQueue) Enqueue(to []string, subject, templateName string, data interface{}) {
	q.queue <- &queuedEmail{
		to:           to,
		subject:      subject,
		templateName: templateName,
		data:         data,
		retries:      0,
	}
}

// Stop stops the email queue workers
func (q *EmailQueue) Stop() {
	close(q.done)
}
