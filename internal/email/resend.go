package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/rvworks/servicedesk/internal/config"
	"github.com/rvworks/servicedesk/internal/service"
)

const resendEndpoint = "https://api.resend.com/emails"

// ResendSender delivers estimate emails through the Resend REST API.
type ResendSender struct {
	apiKey   string
	from     string
	endpoint string
	client   *http.Client
	log      zerolog.Logger
}

func NewResendSender(cfg config.EmailConfig, log zerolog.Logger) *ResendSender {
	return &ResendSender{
		apiKey:   cfg.ResendAPIKey,
		from:     fmt.Sprintf("Service Department <service@%s>", cfg.FromDomain),
		endpoint: resendEndpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
		log:      log,
	}
}

type attachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type sendRequest struct {
	From        string       `json:"from"`
	To          []string     `json:"to"`
	Subject     string       `json:"subject"`
	HTML        string       `json:"html"`
	Attachments []attachment `json:"attachments,omitempty"`
}

var estimateTemplate = template.Must(template.New("estimate").Parse(`<!DOCTYPE html>
<html>
  <body style="font-family: Arial, sans-serif; color: #1f2937; margin: 0; padding: 24px; background-color: #f3f4f6;">
    <div style="max-width: 560px; margin: 0 auto; background: #ffffff; border-radius: 8px; padding: 32px;">
      <h2 style="margin-top: 0;">{{.DealershipName}}</h2>
      <p>Hi {{.CustomerName}},</p>
      <p>Your service estimate{{if .RVLabel}} for your <strong>{{.RVLabel}}</strong>{{end}} is ready for review.</p>
      <p style="font-size: 24px; font-weight: bold; margin: 24px 0;">{{.CurrencySymbol}}{{printf "%.2f" .Total}}</p>
      <a href="{{.ApprovalURL}}" style="display: inline-block; background: #2563eb; color: #ffffff; padding: 12px 24px; border-radius: 6px; text-decoration: none; font-weight: bold;">Review &amp; Approve</a>
      <p style="color: #6b7280; font-size: 13px; margin-top: 24px;">This link expires on {{.ExpiresAt.Format "January 2, 2006"}}. If you have questions, reply to this email or call the dealership.</p>
    </div>
  </body>
</html>`))

func (s *ResendSender) SendEstimate(ctx context.Context, msg service.EstimateEmail) error {
	var html bytes.Buffer
	if err := estimateTemplate.Execute(&html, msg); err != nil {
		return fmt.Errorf("render estimate email: %w", err)
	}

	req := sendRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: fmt.Sprintf("Your service estimate from %s", msg.DealershipName),
		HTML:    html.String(),
	}
	if len(msg.AttachmentPDF) > 0 {
		req.Attachments = append(req.Attachments, attachment{
			Filename: "estimate.pdf",
			Content:  base64.StdEncoding.EncodeToString(msg.AttachmentPDF),
		})
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: resend request: %v", service.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%w: resend returned %d: %s", service.ErrUpstream, resp.StatusCode, string(body))
	}
	s.log.Debug().Str("to", msg.To).Msg("estimate email sent")
	return nil
}
