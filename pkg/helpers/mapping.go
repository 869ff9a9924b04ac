package helpers

import (
	"fmt"
	"strings"

	"github.com/oksasatya/recipe-api/pkg/mailer"
	mailtpl "github.com/oksasatya/recipe-api/pkg/mailer/templates"
)

// EnsureRecipientAndEmail fills the recipient fields templates rely on.
func EnsureRecipientAndEmail(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = job.To
	}
	if v, ok := job.Data["RecipientEmail"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["RecipientEmail"] = job.To
	}
}

// RenderJob expands a templated job into subject, text and html bodies in place.
// Jobs without a template are left as they are.
func RenderJob(job *mailer.EmailJob) error {
	if job.Template == "" {
		return nil
	}
	EnsureRecipientAndEmail(job)
	subject, text, html, err := mailtpl.Render(strings.ToLower(job.Template), job.Data)
	if err != nil {
		return err
	}
	if job.Subject == "" {
		job.Subject = strings.TrimSpace(subject)
	}
	job.Text = text
	job.HTML = html
	return nil
}
