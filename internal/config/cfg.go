package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const defaultConsentText = "I agree to receive email updates about Go Rocco, " +
	"including launch news and product updates. I can unsubscribe at any time."

type Server struct {
	Host        string `envconfig:"SERVER_HOST"    default:"0.0.0.0"`
	Port        string `envconfig:"SERVER_PORT"    default:"8080"`
	ReadTimeout int    `envconfig:"SERVER_TIMEOUT" default:"10"`
}

type Db struct {
	Dialect string `envconfig:"DB_DIALECT" default:"sqlite"`
	Source  string `envconfig:"DB_NAME"    default:"waitlist.db"`
}

type Admin struct {
	Username string `envconfig:"ADMIN_USERNAME" required:"true"`
	Password string `envconfig:"ADMIN_PASSWORD" required:"true"`
	Realm    string `envconfig:"ADMIN_REALM"    default:"Waitlist Admin"`
}

type Email struct {
	Provider             string        `envconfig:"EMAIL_PROVIDER"         default:"resend"`
	ResendAPIKey         string        `envconfig:"RESEND_API_KEY"`
	ResendURL            string        `envconfig:"RESEND_API_URL"         default:"https://api.resend.com"`
	PostmarkServerToken  string        `envconfig:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string        `envconfig:"POSTMARK_ACCOUNT_TOKEN"`
	FromName             string        `envconfig:"FROM_NAME"              required:"true"`
	FromEmail            string        `envconfig:"FROM_EMAIL"             required:"true"`
	Timeout              time.Duration `envconfig:"EMAIL_TIMEOUT"          default:"10s"`
}

type Site struct {
	URL            string   `envconfig:"SITE_URL"             required:"true"`
	ConfirmURL     string   `envconfig:"CONFIRM_URL"          required:"true"`
	ThankYouPath   string   `envconfig:"THANK_YOU_PATH"       default:"/thank-you.html"`
	PrivacyPath    string   `envconfig:"PRIVACY_PATH"         default:"/privacy.html"`
	BrandName      string   `envconfig:"BRAND_NAME"           default:"Go Rocco"`
	ExportPrefix   string   `envconfig:"EXPORT_PREFIX"        default:"waitlist"`
	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:8080,http://localhost:5500,http://127.0.0.1:8080,http://127.0.0.1:5500"`
}

type Redis struct {
	Addr     string        `envconfig:"REDIS_ADDR"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB"        default:"0"`
	StatsTTL time.Duration `envconfig:"STATS_CACHE_TTL" default:"30s"`
}

type Config struct {
	Server Server
	DB     Db
	Admin  Admin
	Email  Email
	Site   Site
	Redis  Redis

	ConsentText          string `envconfig:"CONSENT_TEXT"`
	StatsRefreshSchedule string `envconfig:"STATS_REFRESH_SCHEDULE" default:"@every 1m"`
	LogsPath             string `envconfig:"LOGS_PATH"              default:"logs/waitlist.log"`
}

func NewConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.ConsentText == "" {
		cfg.ConsentText = defaultConsentText
	}
	cfg.Site.URL = strings.TrimRight(cfg.Site.URL, "/")
	return &cfg, nil
}

func (c *Config) ServerAddress() string {
	return c.Server.Host + ":" + c.Server.Port
}

// Origins returns the CORS allow-list with the site origin first.
func (s *Site) Origins() []string {
	origins := []string{s.URL}
	for _, o := range s.AllowedOrigins {
		o = strings.TrimSpace(o)
		if o != "" && o != s.URL {
			origins = append(origins, o)
		}
	}
	return origins
}

func (s *Site) ThankYouURL() string {
	return s.URL + s.ThankYouPath
}

func (s *Site) PrivacyURL() string {
	return s.URL + s.PrivacyPath
}
