package config

import (
	"fmt"
	"strings"
	"time"
)

// PricingConfig holds the lifetime-spend thresholds (VND) for customer tiers.
type PricingConfig struct {
	SilverThreshold  int64 `envconfig:"STOREFRONT_TIER_SILVER_THRESHOLD" default:"5000000"`
	GoldThreshold    int64 `envconfig:"STOREFRONT_TIER_GOLD_THRESHOLD" default:"20000000"`
	DiamondThreshold int64 `envconfig:"STOREFRONT_TIER_DIAMOND_THRESHOLD" default:"50000000"`
}

func (p PricingConfig) validate() error {
	ordered := 0 < p.SilverThreshold && p.SilverThreshold < p.GoldThreshold && p.GoldThreshold < p.DiamondThreshold
	if ordered {
		return nil
	}
	return fmt.Errorf("tier thresholds must be positive and strictly increasing, got silver=%d gold=%d diamond=%d",
		p.SilverThreshold, p.GoldThreshold, p.DiamondThreshold)
}

type OrdersConfig struct {
	NumberPrefix string `envconfig:"STOREFRONT_ORDER_NUMBER_PREFIX" default:"TZ"`
	MaxLineItems int    `envconfig:"STOREFRONT_ORDER_MAX_LINE_ITEMS" default:"50"`
	MaxLineQty   int    `envconfig:"STOREFRONT_ORDER_MAX_LINE_QTY" default:"20"`
}

func (o OrdersConfig) validate() error {
	if o.MaxLineItems < 1 || o.MaxLineQty < 1 {
		return fmt.Errorf("order limits must be at least 1, got items=%d qty=%d", o.MaxLineItems, o.MaxLineQty)
	}
	return nil
}

type ChatbotConfig struct {
	CacheTTL   time.Duration `envconfig:"STOREFRONT_CHATBOT_CACHE_TTL" default:"2m"`
	MaxResults int           `envconfig:"STOREFRONT_CHATBOT_MAX_RESULTS" default:"5"`
}

// VietQRConfig names the receiving bank account for prepaid checkouts.
type VietQRConfig struct {
	BankID      string `envconfig:"STOREFRONT_VIETQR_BANK_ID"`
	AccountNo   string `envconfig:"STOREFRONT_VIETQR_ACCOUNT_NO"`
	AccountName string `envconfig:"STOREFRONT_VIETQR_ACCOUNT_NAME"`
	Template    string `envconfig:"STOREFRONT_VIETQR_TEMPLATE" default:"compact2"`
}

// Enabled reports whether enough bank details exist to build payment links.
func (v VietQRConfig) Enabled() bool {
	for _, s := range []string{v.BankID, v.AccountNo} {
		if strings.TrimSpace(s) == "" {
			return false
		}
	}
	return true
}

type GCPConfig struct {
	ProjectID              string `envconfig:"STOREFRONT_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"STOREFRONT_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"STOREFRONT_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"STOREFRONT_PUBSUB_ORDERS_TOPIC" default:"storefront-order-events"`
	OrdersSubscription string `envconfig:"STOREFRONT_PUBSUB_ORDERS_SUBSCRIPTION"`
	CatalogTopic       string `envconfig:"STOREFRONT_PUBSUB_CATALOG_TOPIC" default:"storefront-catalog-events"`
	// Read by cmd/worker.
	CatalogSubscription string `envconfig:"STOREFRONT_PUBSUB_CATALOG_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int    `envconfig:"STOREFRONT_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int    `envconfig:"STOREFRONT_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int    `envconfig:"STOREFRONT_OUTBOX_MAX_ATTEMPTS" default:"10"`
	MetricsAddr    string `envconfig:"STOREFRONT_OUTBOX_METRICS_ADDR"`
}
