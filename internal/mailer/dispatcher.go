package mailer

import (
	"context"

	"github.com/DemisRincon/skill-up/internal/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// Dispatcher fans one batch of invites out to the mailer with bounded
// concurrency and joins all attempts before returning. One recipient's
// failure never affects the others: errors land in that recipient's result.
type Dispatcher struct {
	mailer         Mailer
	maxConcurrency int
	logger         *logger.Logger
}

func NewDispatcher(mailer Mailer, maxConcurrency int, logger *logger.Logger) *Dispatcher {
	if maxConcurrency <= 0 {
		maxConcurrency = 8
	}
	return &Dispatcher{
		mailer:         mailer,
		maxConcurrency: maxConcurrency,
		logger:         logger.Component("mailer/dispatcher"),
	}
}

// Dispatch attempts delivery for every invite, one attempt each. Results
// are positionally aligned with the input.
func (d *Dispatcher) Dispatch(ctx context.Context, invites []Invite) []Result {
	results := make([]Result, len(invites))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.maxConcurrency)

	for i, invite := range invites {
		g.Go(func() error {
			results[i] = d.send(ctx, invite)
			return nil
		})
	}

	// workers never return errors, the join is what matters
	_ = g.Wait()

	return results
}

func (d *Dispatcher) send(ctx context.Context, invite Invite) Result {
	if invite.TeamMemberEmail == "" || invite.TeamMemberName == "" || invite.InviteToken == "" {
		return Result{
			Email:  invite.TeamMemberEmail,
			Status: StatusError,
			Error:  "Missing required fields",
		}
	}

	if err := d.mailer.SendInvite(ctx, invite); err != nil {
		d.logger.Warn("invite delivery failed",
			"email", invite.TeamMemberEmail,
			"error", err,
		)
		return Result{
			Email:  invite.TeamMemberEmail,
			Status: StatusError,
			Error:  err.Error(),
		}
	}

	return Result{Email: invite.TeamMemberEmail, Status: StatusSent}
}
