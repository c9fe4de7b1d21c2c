package paybill

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"paybill-connector/infrastructure/config"
)

// payResumeMessageName is the correlation message that resumes an
// in-flight transfer workflow waiting for the payment phase.
const payResumeMessageName = "pay-bill-pay"

// IWorkflowClient is the boundary to the external workflow engine.
type IWorkflowClient interface {
	CreateInstance(ctx context.Context, processID string, variables map[string]any) (string, error)
	PublishMessage(ctx context.Context, name, correlationKey string, ttl time.Duration, variables map[string]any) error
}

// Launcher decides, exactly once per correlation key, whether a payment
// request starts a new workflow instance or resumes the one already
// bound to the key.
type Launcher struct {
	store      ICorrelationStore
	workflow   IWorkflowClient
	ams        *config.AmsRegistry
	processID  string
	waitPeriod time.Duration
}

func NewLauncher(
	store ICorrelationStore, workflow IWorkflowClient, ams *config.AmsRegistry,
	processID string, waitPeriod time.Duration,
) *Launcher {
	return &Launcher{
		store:      store,
		workflow:   workflow,
		ams:        ams,
		processID:  processID,
		waitPeriod: waitPeriod,
	}
}

// Launch runs the create-vs-resume algorithm for one payment request.
// A key already bound to an instance only ever gets a resume signal; an
// unbound key results in exactly one instance creation across all
// concurrent deliveries, with the loser of a claim race falling back to
// the resume path.
func (l *Launcher) Launch(ctx context.Context, req PayRequest) error {
	key := req.OafValidationRef
	variables := l.variables(req)

	if firstObservation, err := l.store.ConsumeReconciledFlag(ctx, key); err != nil {
		return err
	} else if firstObservation {
		log.Infof("first payment-phase observation for validation reference %s", key)
	}

	if _, bound, err := l.store.LookupBinding(ctx, key); err != nil {
		return err
	} else if bound {
		return l.resume(ctx, key, variables)
	}

	id, created, err := l.store.GetOrCreateBinding(ctx, key, func(ctx context.Context) (string, error) {
		instanceID, err := l.workflow.CreateInstance(ctx, l.processID, variables)
		if err != nil {
			return "", &ServiceUnavailableError{Err: err}
		}
		return instanceID, nil
	})
	if err != nil {
		return err
	}
	if created {
		log.Infof("started workflow instance %s for validation reference %s", id, key)
		return nil
	}

	// Lost the claim race: this is a repeat delivery for a key someone
	// else just bound.
	return l.resume(ctx, key, variables)
}

func (l *Launcher) resume(ctx context.Context, key string, variables map[string]any) error {
	err := l.workflow.PublishMessage(ctx, payResumeMessageName, key, l.waitPeriod, variables)
	if err != nil {
		return &ServiceUnavailableError{Err: err}
	}
	log.Infof("published %s signal for validation reference %s", payResumeMessageName, key)
	return nil
}

func (l *Launcher) variables(req PayRequest) map[string]any {
	props := l.ams.ByShortCode(req.ShortCode)
	return map[string]any{
		"transactionId": req.TransactionID,
		"amount":        req.TransactionAmount,
		"msisdn":        req.Msisdn,
		"accountNumber": req.AccountNumber,
		"amsName":       props.Ams,
	}
}
