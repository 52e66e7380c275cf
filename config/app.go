package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	StoreMongo     = "mongo"
	StoreFirestore = "firestore"

	defaultSummaryTTL = 7 * 24 * time.Hour
	defaultVapiURL    = "https://api.vapi.ai"
)

type Auth struct {
	SupabaseURL string
	AnonKey     string
	JWTSecret   string
	JWTIssuer   string // optional
	JWTAudience string // optional
}

type Voice struct {
	PublicKey     string
	AssistantID   string
	BaseURL       string
	WebhookSecret string
}

// Err reports what is missing for calls to be opened. nil means usable.
func (v Voice) Err() error {
	var missing []string
	if v.PublicKey == "" {
		missing = append(missing, "VAPI_PUBLIC_KEY")
	}
	if v.AssistantID == "" {
		missing = append(missing, "VAPI_ASSISTANT_ID")
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("voice service not configured: %s not set", strings.Join(missing, ", "))
}

type App struct {
	Port             string
	DocumentStore    string
	TranscriptBucket string // empty disables archiving
	SummaryTTL       time.Duration
	AllowedOrigins   []string // websocket origins; empty allows any
	Auth             Auth
	Voice            Voice
}

// LoadApp reads the process environment. It fails only on values that are
// set but malformed; missing voice settings are reported by Voice.Err.
func LoadApp() (App, error) {
	app := App{
		Port:             env("PORT", "8080"),
		DocumentStore:    strings.ToLower(env("DOCUMENT_STORE", StoreMongo)),
		TranscriptBucket: os.Getenv("GCS_TRANSCRIPT_BUCKET"),
		SummaryTTL:       defaultSummaryTTL,
		AllowedOrigins:   splitList(os.Getenv("ALLOWED_ORIGINS")),
		Auth: Auth{
			SupabaseURL: os.Getenv("SUPABASE_URL"),
			AnonKey:     os.Getenv("SUPABASE_ANON_KEY"),
			JWTSecret:   os.Getenv("SUPABASE_JWT_SECRET"),
			JWTIssuer:   os.Getenv("SUPABASE_JWT_ISSUER"),
			JWTAudience: os.Getenv("SUPABASE_JWT_AUDIENCE"),
		},
		Voice: Voice{
			PublicKey:     strings.TrimSpace(os.Getenv("VAPI_PUBLIC_KEY")),
			AssistantID:   strings.TrimSpace(os.Getenv("VAPI_ASSISTANT_ID")),
			BaseURL:       env("VAPI_BASE_URL", defaultVapiURL),
			WebhookSecret: os.Getenv("VAPI_WEBHOOK_SECRET"),
		},
	}

	if app.DocumentStore != StoreMongo && app.DocumentStore != StoreFirestore {
		return App{}, fmt.Errorf("DOCUMENT_STORE must be %q or %q, got %q", StoreMongo, StoreFirestore, app.DocumentStore)
	}
	if v := os.Getenv("SUMMARY_CACHE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return App{}, fmt.Errorf("SUMMARY_CACHE_TTL: %w", err)
		}
		if ttl <= 0 {
			return App{}, errors.New("SUMMARY_CACHE_TTL must be positive")
		}
		app.SummaryTTL = ttl
	}
	return app, nil
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
