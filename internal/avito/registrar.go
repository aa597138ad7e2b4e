package avito

import "context"

// registrationPaths are the registration endpoints that have existed across
// upstream API versions, newest first.
var registrationPaths = []string{
	"/messenger/v3/webhook",
	"/messenger/v2/webhook",
	"/messenger/v1/webhooks",
	"/messenger/v1/webhook",
	"/messenger/webhook",
	"/notifications/v1/webhook",
}

// RegistrationReport is the trail of one webhook registration run.
type RegistrationReport struct {
	Registered bool
	Attempts   []Attempt
}

// Summary renders the report for the operator channel and the setup page.
func (r RegistrationReport) Summary() string {
	head := "webhook registration failed: all candidates rejected"
	if r.Registered {
		head = "webhook registered"
	}
	if len(r.Attempts) == 0 {
		return head
	}
	return head + "\n" + formatAttempts(r.Attempts)
}

// RegisterWebhook asks the upstream to deliver messenger events to
// callbackURL, trying each historical registration endpoint until one
// accepts. The upstream treats registration as an upsert, so repeating the
// call is safe. The only returned error is a credential failure.
func (c *Client) RegisterWebhook(ctx context.Context, callbackURL string) (RegistrationReport, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return RegistrationReport{}, err
	}

	specs := make([]attemptSpec, 0, len(registrationPaths))
	for _, p := range registrationPaths {
		specs = append(specs, attemptSpec{
			url:     c.baseURL + p,
			variant: "url",
			payload: map[string]string{"url": callbackURL},
		})
	}

	ok, attempts := c.tryCandidates(ctx, token, specs)
	return RegistrationReport{Registered: ok, Attempts: attempts}, nil
}
