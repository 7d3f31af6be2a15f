package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/mobile-garage/internal/models"
)

// ServiceRequestUpdate describes a committed service request change.
type ServiceRequestUpdate struct {
	Request        models.ServiceRequest
	Customer       models.Customer
	CustomerEmail  string
	Mechanic       *models.Mechanic // assigned mechanic, when there is one
	Changed        []string
	PreviousStatus string
	ChangedBy      models.Role
}

// Notifier sends notifications without blocking the caller. Failures are
// logged and never returned.
type Notifier interface {
	NotifyServiceRequestUpdate(u ServiceRequestUpdate)
	NotifyWelcome(email, name string)
}

type serviceRequestEvent struct {
	ServiceRequest models.ServiceRequest `json:"service_request"`
	Changed        []string              `json:"changed"`
	ChangedBy      models.Role           `json:"changed_by"`
	At             time.Time             `json:"at"`
}

// Dispatcher runs each notification on its own goroutine.
type Dispatcher struct {
	mailer      Mailer
	publisher   Publisher
	topicPrefix string
	timeout     time.Duration
	wg          sync.WaitGroup
}

var _ Notifier = (*Dispatcher)(nil)

// NewDispatcher creates a dispatcher. publisher may be nil.
func NewDispatcher(mailer Mailer, publisher Publisher, topicPrefix string) *Dispatcher {
	if mailer == nil {
		mailer = LogMailer{}
	}
	return &Dispatcher{
		mailer:      mailer,
		publisher:   publisher,
		topicPrefix: topicPrefix,
		timeout:     30 * time.Second,
	}
}

func (d *Dispatcher) spawn(kind string, fields log.Fields, fn func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.WithError(err).WithFields(fields).WithField("notification", kind).Warn("notification failed")
		}
	}()
}

// ServiceRequestTopic returns the MQTT topic for a request's events.
func (d *Dispatcher) ServiceRequestTopic(id int64) string {
	return fmt.Sprintf("%s/service_requests/%d", d.topicPrefix, id)
}

func (d *Dispatcher) NotifyServiceRequestUpdate(u ServiceRequestUpdate) {
	fields := log.Fields{"service_request_id": u.Request.ID}

	if u.CustomerEmail != "" {
		msg := serviceRequestMessage(u)
		d.spawn("service_request_email", fields, func(ctx context.Context) error {
			return d.mailer.Send(ctx, msg)
		})
	} else {
		log.WithFields(fields).Warn("no customer e-mail on file, skipping update mail")
	}

	if d.publisher != nil {
		payload, err := json.Marshal(serviceRequestEvent{
			ServiceRequest: u.Request,
			Changed:        u.Changed,
			ChangedBy:      u.ChangedBy,
			At:             time.Now().UTC(),
		})
		if err != nil {
			log.WithError(err).WithFields(fields).Warn("could not encode service request event")
			return
		}
		topic := d.ServiceRequestTopic(u.Request.ID)
		d.spawn("service_request_event", fields, func(ctx context.Context) error {
			return d.publisher.Publish(ctx, topic, payload)
		})
	}
}

func (d *Dispatcher) NotifyWelcome(email, name string) {
	msg := welcomeMessage(email, name)
	d.spawn("welcome_email", log.Fields{"email": email}, func(ctx context.Context) error {
		return d.mailer.Send(ctx, msg)
	})
}

// Send delivers msg synchronously through the dispatcher's mailer.
func (d *Dispatcher) Send(ctx context.Context, msg Message) error {
	return d.mailer.Send(ctx, msg)
}

// Wait blocks until in-flight notifications finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
