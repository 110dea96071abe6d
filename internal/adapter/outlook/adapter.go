// Package outlook reads appointments from Outlook / Office 365 through
// Microsoft Graph.
package outlook

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/theakshaypant/dayview/internal/auth"
)

const graphScope = "https://graph.microsoft.com/.default"

// sourceCredential serves Graph SDK token requests from an oauth2 source.
type sourceCredential struct {
	src oauth2.TokenSource
}

func (c sourceCredential) GetToken(_ context.Context, _ policy.TokenRequestOptions) (azcore.AccessToken, error) {
	tok, err := c.src.Token()
	if err != nil {
		return azcore.AccessToken{}, err
	}
	return azcore.AccessToken{Token: tok.AccessToken, ExpiresOn: tok.Expiry}, nil
}

// OutlookAdapter is the Microsoft Graph appointment provider.
type OutlookAdapter struct {
	id        string
	name      string
	clientID  string
	tenantID  string
	tokenFile string
	calendars map[string]string

	client *msgraphsdk.GraphServiceClient
	log    *zap.Logger
}

func NewOutlookAdapter(id, name, clientID, tenantID, tokenFile string, log *zap.Logger) *OutlookAdapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &OutlookAdapter{
		id:        id,
		name:      name,
		clientID:  clientID,
		tenantID:  tenantID,
		tokenFile: tokenFile,
		calendars: make(map[string]string),
		log:       log.With(zap.String("provider", id)),
	}
}

func (o *OutlookAdapter) ID() string   { return o.id }
func (o *OutlookAdapter) Name() string { return o.name }

// Login loads the token saved by `dayview auth` and creates the Graph
// client. Refreshed tokens are written back to the token file.
func (o *OutlookAdapter) Login(ctx context.Context) error {
	tok, err := auth.Load(o.tokenFile)
	if err != nil {
		return fmt.Errorf("read token file (run 'dayview auth' first): %w", err)
	}

	// The refresh source outlives ctx, which only bounds Login itself.
	cfg := auth.OutlookConfig(o.clientID, o.tenantID)
	base := oauth2.ReuseTokenSource(tok, cfg.TokenSource(context.Background(), tok))
	cred := sourceCredential{src: auth.Persist(base, o.tokenFile, tok, o.log)}

	client, err := msgraphsdk.NewGraphServiceClientWithCredentials(cred, []string{graphScope})
	if err != nil {
		return fmt.Errorf("create graph client: %w", err)
	}
	o.client = client

	o.loadCalendarList(ctx)
	return nil
}

// Calendars returns the available calendars (ID -> Name).
func (o *OutlookAdapter) Calendars() map[string]string {
	return o.calendars
}

// loadCalendarList falls back to the default calendar when listing fails;
// the calendar view endpoint works without the list.
func (o *OutlookAdapter) loadCalendarList(ctx context.Context) {
	result, err := o.client.Me().Calendars().Get(ctx, nil)
	if err != nil {
		o.log.Warn("listing calendars failed", zap.Error(err))
		o.calendars["default"] = "Calendar"
		return
	}
	for _, cal := range result.GetValue() {
		if id, name := cal.GetId(), cal.GetName(); id != nil && name != nil {
			o.calendars[*id] = *name
		}
	}
	o.log.Debug("calendar list loaded", zap.Int("calendars", len(o.calendars)))
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
