package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/recipe-api/pkg/helpers"
	"github.com/oksasatya/recipe-api/pkg/mailer"
)

// Sender delivers one rendered message.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

type outcome int

const (
	ack outcome = iota
	drop
	requeue
)

func (o outcome) String() string {
	switch o {
	case ack:
		return "ack"
	case drop:
		return "drop"
	default:
		return "requeue"
	}
}

type worker struct {
	sender  Sender
	logger  *logrus.Logger
	timeout time.Duration
}

// handle decodes, renders and sends one queued job. Malformed or
// unrenderable jobs are dropped; delivery failures are requeued.
func (w *worker) handle(ctx context.Context, body []byte) outcome {
	var job mailer.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		w.logger.WithError(err).Warn("bad message")
		return drop
	}
	if !job.Valid() {
		w.logger.WithField("to", job.To).Warn("incomplete email job")
		return drop
	}
	if err := helpers.RenderJob(&job); err != nil {
		w.logger.WithError(err).WithField("template", job.Template).Error("render failed")
		return drop
	}

	c, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	if err := w.sender.Send(c, job.To, job.Subject, job.Text, job.HTML); err != nil {
		w.logger.WithError(err).WithField("to", job.To).Warn("send failed")
		return requeue
	}
	helpers.LogInfo(w.logger, "email sent", logrus.Fields{"to": job.To, "template": job.Template})
	return ack
}
