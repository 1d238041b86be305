package config

// EnvPrefix namespaces every variable read by Load.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv                 = "STOREFRONT_APP_ENV"
	EnvPort                   = "STOREFRONT_APP_PORT"
	EnvDBDSN                  = "STOREFRONT_DB_DSN"
	EnvDBHost                 = "STOREFRONT_DB_HOST"
	EnvDBUser                 = "STOREFRONT_DB_USER"
	EnvDBName                 = "STOREFRONT_DB_NAME"
	EnvRedisURL               = "STOREFRONT_REDIS_URL"
	EnvJWTSecret              = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer              = "STOREFRONT_JWT_ISSUER"
	EnvJWTExpMins             = "STOREFRONT_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "STOREFRONT_REFRESH_TOKEN_TTL_MINUTES"
	EnvTierSilver             = "STOREFRONT_TIER_SILVER_THRESHOLD"
	EnvTierGold               = "STOREFRONT_TIER_GOLD_THRESHOLD"
	EnvTierDiamond            = "STOREFRONT_TIER_DIAMOND_THRESHOLD"
	EnvChatbotCacheTTL        = "STOREFRONT_CHATBOT_CACHE_TTL"
	EnvVietQRBankID           = "STOREFRONT_VIETQR_BANK_ID"
	EnvVietQRAccountNo        = "STOREFRONT_VIETQR_ACCOUNT_NO"
	EnvPubSubOrdersTopic      = "STOREFRONT_PUBSUB_ORDERS_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
