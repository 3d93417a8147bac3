package email

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/arena_errors"
	"gopkg.in/gomail.v2"
)

type EmailPurpose string
type EmailBodyType string

const (
	KeyEmailFrom                               = "From"
	KeyEmailTo                                 = "To"
	KeyEmailSubject                            = "Subject"
	KeyEmailBodyPlain            EmailBodyType = "text/plain"
	PurposeBattleResults         EmailPurpose  = "battle_results"
	defaultEmailChannelCapacity                = 100
	defaultEmailWorkers                        = 1
)

type EmailRequest struct {
	To       []string
	Subject  string
	Body     string
	BodyType EmailBodyType
	Purpose  EmailPurpose
}

// EmailService delivers mails from a small worker pool. With no sender
// configured it stays disabled and NewMail reports ErrEmailServiceStopped.
type EmailService struct {
	Sender   string
	Password string
	SMTPHost string
	SMTPPort int
	Workers  int
	// Send delivers one message, defaults to an smtp dialer
	Send    func(m *gomail.Message) error
	jobs    chan EmailRequest
	wg      sync.WaitGroup
	stopMu  sync.RWMutex
	stopped bool
	logger  *logrus.Entry
}

func (e *EmailService) Start() {
	e.logger = logrus.WithField("from", "email service")
	if e.Sender == "" {
		e.logger.Warn("sender email is not configured, mails are disabled")
		e.stopped = true
		return
	}
	if e.Workers <= 0 {
		e.Workers = defaultEmailWorkers
	}
	if e.Send == nil {
		dialer := gomail.NewDialer(e.SMTPHost, e.SMTPPort, e.Sender, e.Password)
		e.Send = func(m *gomail.Message) error {
			return dialer.DialAndSend(m)
		}
	}

	e.jobs = make(chan EmailRequest, defaultEmailChannelCapacity)
	for i := 0; i < e.Workers; i++ {
		e.wg.Add(1)
		go e.work(i)
	}
	e.logger.Infof("started %d email workers", e.Workers)
}

func (e *EmailService) Enabled() bool {
	e.stopMu.RLock()
	defer e.stopMu.RUnlock()
	return !e.stopped
}

func (e *EmailService) work(id int) {
	defer e.wg.Done()
	for job := range e.jobs {
		// one message per recipient so addresses stay private
		sent := 0
		for _, to := range job.To {
			m := gomail.NewMessage()
			m.SetHeader(KeyEmailFrom, e.Sender)
			m.SetHeader(KeyEmailTo, to)
			m.SetHeader(KeyEmailSubject, job.Subject)
			m.SetBody(string(job.BodyType), job.Body)

			if err := e.Send(m); err != nil {
				e.logger.Errorf("worker %d cannot send %s mail to %s, %v", id, job.Purpose, to, err)
				continue
			}
			sent++
		}
		e.logger.Debugf("worker %d sent %s mail to %d/%d recipients", id, job.Purpose, sent, len(job.To))
	}
}

// NewMail queues a mail. It never blocks past ctx.
func (e *EmailService) NewMail(ctx context.Context, req EmailRequest) error {
	if len(req.To) == 0 {
		return fmt.Errorf("%w, mail has no recipients", arena_errors.ErrInvalidRequest)
	}
	if req.BodyType == "" {
		req.BodyType = KeyEmailBodyPlain
	}

	e.stopMu.RLock()
	defer e.stopMu.RUnlock()
	if e.stopped {
		return arena_errors.ErrEmailServiceStopped
	}

	select {
	case <-ctx.Done():
		e.logger.Errorf("email job cancelled: %v", ctx.Err())
		return errors.Join(arena_errors.ErrEmailServiceStopped, ctx.Err())
	case e.jobs <- req:
		return nil
	}
}

// Stop drains queued mails and waits for the workers.
func (e *EmailService) Stop() {
	e.stopMu.Lock()
	if e.stopped {
		e.stopMu.Unlock()
		return
	}
	e.stopped = true
	close(e.jobs)
	e.stopMu.Unlock()

	e.wg.Wait()
	e.logger.Info("email workers stopped")
}
