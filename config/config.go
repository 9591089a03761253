package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort int
	Log        LogConfig
	Mail       MailConfig
	Notify     NotifyConfig
	RabbitMQ   RabbitMQConfig
	PubSub     PubSubConfig
	Accounts   AccountsConfig
	Events     EventsConfig
	IDScheme   string
	IDNode     int64
}

type LogConfig struct {
	Level string
	Dev   bool
}

type MailConfig struct {
	SendGridAPIKey string
	Sender         string
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
}

// NotifyConfig selects how outbound messages leave the process.
// Driver is one of sendgrid, smtp, rabbitmq, pubsub, memory or log.
type NotifyConfig struct {
	Driver    string
	Topic     string
	Workers   int
	QueueSize int
}

type RabbitMQConfig struct {
	URL             string
	PrefetchCount   int
	QueueDurable    bool
	QueueAutoDelete bool
}

type PubSubConfig struct {
	ProjectID           string
	CredentialsFile     string
	SubscriptionSuffix  string
	MaxOutstanding      int
	MaxDeliveryAttempts int
}

type AccountsConfig struct {
	RejectDuplicateSignup bool
}

type EventsConfig struct {
	StrictUpdateLookup bool
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	mail := MailConfig{
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		Sender:         getEnv("SENDER_EMAIL", ""),
		SMTPHost:       getEnv("SMTP_HOST", ""),
		SMTPPort:       getEnvInt("SMTP_PORT", 587),
		SMTPUsername:   getEnv("SMTP_USERNAME", ""),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),
	}

	driver := strings.ToLower(strings.TrimSpace(getEnv("NOTIFIER", "")))
	if driver == "" {
		driver = defaultDriver(mail)
	}

	return Config{
		ServerPort: getEnvInt("PORT", 8080),
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			Dev:   getEnvBool("LOG_DEV", false),
		},
		Mail: mail,
		Notify: NotifyConfig{
			Driver:    driver,
			Topic:     getEnv("NOTIFY_TOPIC", "minitodo-email"),
			Workers:   getEnvInt("NOTIFY_WORKERS", 4),
			QueueSize: getEnvInt("NOTIFY_QUEUE_SIZE", 256),
		},
		RabbitMQ: RabbitMQConfig{
			URL:             getEnv("RABBITMQ_URL", ""),
			PrefetchCount:   getEnvInt("RABBITMQ_PREFETCH", 0),
			QueueDurable:    getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
			QueueAutoDelete: getEnvBool("RABBITMQ_QUEUE_AUTO_DELETE", false),
		},
		PubSub: PubSubConfig{
			ProjectID:           getEnv("PUBSUB_PROJECT_ID", ""),
			CredentialsFile:     getEnv("PUBSUB_CREDENTIALS_FILE", ""),
			SubscriptionSuffix:  getEnv("PUBSUB_SUBSCRIPTION_SUFFIX", "-sub"),
			MaxOutstanding:      getEnvInt("PUBSUB_MAX_OUTSTANDING", 10),
			MaxDeliveryAttempts: getEnvInt("PUBSUB_MAX_ATTEMPTS", 2),
		},
		Accounts: AccountsConfig{
			RejectDuplicateSignup: getEnvBool("REJECT_DUPLICATE_SIGNUP", false),
		},
		Events: EventsConfig{
			StrictUpdateLookup: getEnvBool("EVENT_UPDATE_STRICT", false),
		},
		IDScheme: strings.ToLower(getEnv("ID_SCHEME", "uuid")),
		IDNode:   int64(getEnvInt("SNOWFLAKE_NODE", 1)),
	}
}

// defaultDriver picks sendgrid when an API key is present and falls back to
// logging the messages otherwise.
func defaultDriver(mail MailConfig) string {
	if mail.SendGridAPIKey != "" {
		return "sendgrid"
	}
	return "log"
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		if _, err := fmt.Sscanf(valueStr, "%d", &value); err != nil {
			return defaultValue
		}
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(valueStr)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return defaultValue
	}
}
