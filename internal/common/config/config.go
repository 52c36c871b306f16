// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct. Everything the
// assignment pipeline needs (credentials, endpoints, thresholds) is resolved
// here once at startup and passed down; business logic never reads the
// environment directly.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Consumer      ConsumerConfig     `mapstructure:"consumer"`
	Storage       StorageConfig      `mapstructure:"storage"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Assignment    AssignmentConfig   `mapstructure:"assignment"`
	APIs          APIsConfig         `mapstructure:"apis"`
	Auth          AuthConfig         `mapstructure:"auth"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Audit         AuditConfig        `mapstructure:"audit"`
	Dedup         DedupConfig        `mapstructure:"dedup"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ConsumerConfig drives the SQS event loop that triggers assignment runs.
type ConsumerConfig struct {
	QueueURL          string `mapstructure:"queue_url"`
	Region            string `mapstructure:"region"`
	WaitTimeSeconds   int    `mapstructure:"wait_time_seconds"`
	MaxMessages       int    `mapstructure:"max_messages"`
	VisibilityTimeout int    `mapstructure:"visibility_timeout"`
	MetricsAddr       string `mapstructure:"metrics_addr"`
}

// StorageConfig locates the bucket holding prediction blobs.
type StorageConfig struct {
	Bucket string `mapstructure:"bucket"`
	Region string `mapstructure:"region"`
}

type DatabaseConfig struct {
	// Projects is the operational store holding Projects/Project_Files.
	Projects PostgresConfig `mapstructure:"projects"`
	// Reporting is the replica holding Plans/Properties/Categories and the
	// video audit table.
	Reporting     PostgresConfig      `mapstructure:"reporting"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AssignmentConfig holds the business knobs of the eligibility pipeline.
type AssignmentConfig struct {
	// ConfidenceThreshold is the minimum classifier confidence required of
	// the best category. Exposed as a parameter rather than a constant; the
	// executable default is 0.7.
	ConfidenceThreshold float64  `mapstructure:"confidence_threshold"`
	UnassignedStatuses  []string `mapstructure:"unassigned_statuses"`
	PortalBaseURL       string   `mapstructure:"portal_base_url"`
	ProjectTypeID       string   `mapstructure:"project_type_id"`
	ChangeReason        string   `mapstructure:"change_reason"`
	// DryRun evaluates eligibility and vendor selection but skips every
	// write (project type, pro assignment, audit flag, notifications).
	DryRun bool `mapstructure:"dry_run"`
}

// APIsConfig holds settings for the external REST collaborators.
type APIsConfig struct {
	Projects struct {
		BaseURL string `mapstructure:"base_url"`
		Token   string `mapstructure:"token"` // nptoken header value
		UserID  string `mapstructure:"user_id"`
		Timeout int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"projects"`

	Vendors struct {
		DirectoryURL string `mapstructure:"directory_url"`
		RankingURL   string `mapstructure:"ranking_url"`
		UserID       string `mapstructure:"user_id"`
		Timeout      int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"vendors"`

	Signals struct {
		KeywordsURL      string `mapstructure:"keywords_url"`
		EmergencyURL     string `mapstructure:"emergency_url"`
		KeywordsEnabled  bool   `mapstructure:"keywords_enabled"`
		EmergencyEnabled bool   `mapstructure:"emergency_enabled"`
		Timeout          int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"signals"`
}

// AuthConfig holds the token service used on the vendor-directory call.
type AuthConfig struct {
	Keycloak struct {
		URL      string `mapstructure:"url"`
		Realm    string `mapstructure:"realm"`
		ClientID string `mapstructure:"client_id"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
	} `mapstructure:"keycloak"`
}

// NotificationConfig holds settings for the post-assignment notifications.
type NotificationConfig struct {
	Email struct {
		Enabled      bool   `mapstructure:"enabled"`
		QueueURL     string `mapstructure:"queue_url"`
		From         string `mapstructure:"from"`
		Subject      string `mapstructure:"subject"`
		TemplateName string `mapstructure:"template_name"`
		// Direct sends through SES instead of the mail queue.
		Direct bool `mapstructure:"direct"`
	} `mapstructure:"email"`
	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// AuditConfig controls the Elasticsearch run-outcome index.
type AuditConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Index   string `mapstructure:"index"`
}

// DedupConfig controls the redis processed-key guard for redelivered events.
type DedupConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	TTLHours int  `mapstructure:"ttl_hours"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
