package pubsub

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"go.uber.org/multierr"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/techzonevn/storefront-backend/pkg/config"
	"github.com/techzonevn/storefront-backend/pkg/logger"
)

const (
	kindTopic        = "topics"
	kindSubscription = "subscriptions"
)

var (
	errProjectIDRequired = errors.New("gcp project id is required")
	errNoTopics          = errors.New("at least one pubsub topic is required")
	errNotInitialized    = errors.New("pubsub client not initialized")
)

// Client wraps a Pub/Sub v2 client with a publisher cache keyed by full
// topic name. A nil *Client is safe to call and behaves as disconnected.
type Client struct {
	client  *pubsub.Client
	project string
	topics  []string
	subs    []string

	mu         sync.Mutex
	publishers map[string]*pubsub.Publisher
}

// NewClient connects to the project in gcp and fails unless every configured
// topic and subscription already exists.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.PubSubConfig, logg *logger.Logger) (*Client, error) {
	project := strings.TrimSpace(gcp.ProjectID)
	if project == "" {
		return nil, errProjectIDRequired
	}

	ps, err := pubsub.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}
	c := &Client{
		client:     ps,
		project:    project,
		topics:     topicNames(cfg),
		subs:       nonBlank(cfg.OrdersSubscription, cfg.CatalogSubscription),
		publishers: map[string]*pubsub.Publisher{},
	}
	if err := c.Ping(ctx); err != nil {
		return nil, multierr.Append(err, ps.Close())
	}

	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{"project": project, "topics": c.topics})
		logg.Info(ctx, "pubsub client initialized")
	}
	return c, nil
}

func topicNames(cfg config.PubSubConfig) []string {
	return nonBlank(cfg.OrdersTopic, cfg.CatalogTopic)
}

// nonBlank trims names and drops empties and repeats, keeping first-seen order.
func nonBlank(names ...string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name != "" && !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}

// Publisher returns the shared publisher for a topic ID or full resource name.
func (c *Client) Publisher(topic string) *pubsub.Publisher {
	full := c.resource(kindTopic, topic)
	if full == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.publishers[full]
	if !ok {
		p = c.client.Publisher(full)
		c.publishers[full] = p
	}
	return p
}

// Subscriber returns a receive handle for a subscription ID or full resource name.
func (c *Client) Subscriber(subscription string) *pubsub.Subscriber {
	full := c.resource(kindSubscription, subscription)
	if full == "" {
		return nil
	}
	return c.client.Subscriber(full)
}

// Ping checks every configured topic and subscription and reports all the
// missing ones together.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errNotInitialized
	}
	if len(c.topics) == 0 {
		return errNoTopics
	}

	var errs error
	for _, topic := range c.topics {
		errs = multierr.Append(errs, c.exists(ctx, kindTopic, topic))
	}
	for _, sub := range c.subs {
		errs = multierr.Append(errs, c.exists(ctx, kindSubscription, sub))
	}
	return errs
}

func (c *Client) exists(ctx context.Context, kind, name string) error {
	full := c.resource(kind, name)
	if full == "" {
		return fmt.Errorf("%s %q not configured", kind, name)
	}

	var err error
	switch kind {
	case kindTopic:
		_, err = c.client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: full})
	default:
		_, err = c.client.SubscriptionAdminClient.GetSubscription(ctx, &pubsubpb.GetSubscriptionRequest{Subscription: full})
	}
	switch {
	case err == nil:
		return nil
	case status.Code(err) == codes.NotFound:
		return fmt.Errorf("%s %q does not exist", kind, full)
	default:
		return fmt.Errorf("checking %s %q: %w", kind, full, err)
	}
}

func (c *Client) resource(kind, name string) string {
	if c == nil || c.client == nil {
		return ""
	}
	return resourceName(c.project, kind, name)
}

// Close stops cached publishers, flushing their pending messages, then closes the client.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	c.mu.Lock()
	for full, p := range c.publishers {
		p.Stop()
		delete(c.publishers, full)
	}
	c.mu.Unlock()
	return c.client.Close()
}

// resourceName expands a bare ID into projects/<p>/<kind>/<id>; full names pass through.
func resourceName(project, kind, name string) string {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return ""
	case strings.HasPrefix(name, "projects/") && strings.Contains(name, "/"+kind+"/"):
		return name
	case strings.TrimSpace(project) == "":
		return ""
	}
	return "projects/" + strings.TrimSpace(project) + "/" + kind + "/" + name
}
