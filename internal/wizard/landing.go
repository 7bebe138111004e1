package wizard

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"queryosity/internal/apiclient"
	"queryosity/pkg/models"
)

// SubmitDomain creates a project for the submitted domain and moves on to
// engine selection. A failed create is reported but does not block the
// flow; a malformed create response leaves the project record untouched.
func SubmitDomain(ctx context.Context, d Deps, domain string) (Transition, error) {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		d.Notify.Error("Please enter a domain to analyze")
		return Transition{}, ErrEmptyDomain
	}

	p, err := d.API.CreateProject(ctx, domain)
	switch {
	case errors.Is(err, apiclient.ErrUnexpectedShape):
		d.logger().Warn("create project", zap.String("domain", domain), zap.Error(err))
	case err != nil:
		d.logger().Warn("create project", zap.String("domain", domain), zap.Error(err))
		d.Notify.Error("Failed to fetch domain data")
	default:
		if err := d.State.Replace(ctx, p); err != nil {
			d.logger().Warn("write project state", zap.Error(err))
		}
		d.Notify.Success("Domain data fetched successfully")
	}

	return Transition{
		From:    StepLanding,
		To:      StepEngines,
		Payload: models.Bundle{Domain: domain},
	}, nil
}
