package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

type Env struct {
	AppAddr string
	GinMode string
	AppEnv  string

	DBUser string
	DBPass string
	DBHost string
	DBName string

	JWTSecret     string
	PublicBaseURL string

	// Base64 (std encoding) of the 32-byte signature key, may be empty in dev.
	SignatureKeyB64 string
}

func LoadEnv() Env {
	env := Env{
		AppAddr:         strings.TrimSpace(os.Getenv("APP_ADDR")),
		GinMode:         strings.TrimSpace(os.Getenv("GIN_MODE")),
		AppEnv:          strings.TrimSpace(os.Getenv("APP_ENV")),
		DBUser:          strings.TrimSpace(os.Getenv("DB_USER")),
		DBPass:          os.Getenv("DB_PASS"),
		DBHost:          strings.TrimSpace(os.Getenv("DB_HOST")),
		DBName:          strings.TrimSpace(os.Getenv("DB_NAME")),
		JWTSecret:       strings.TrimSpace(os.Getenv("JWT_SECRET")),
		PublicBaseURL:   strings.TrimSpace(os.Getenv("PUBLIC_BASE_URL")),
		SignatureKeyB64: strings.TrimSpace(os.Getenv("SIGNATURE_ENCRYPTION_KEY")),
	}

	if env.AppAddr == "" {
		env.AppAddr = ":8080"
	}
	if env.DBUser == "" {
		env.DBUser = "root"
	}
	if env.DBHost == "" {
		env.DBHost = "127.0.0.1:3306"
	}
	if env.DBName == "" {
		env.DBName = "annexe9"
	}
	if env.JWTSecret == "" {
		env.JWTSecret = "super-secret-key-change-me"
	}

	return env
}

// IsProduction reports the deployed posture; the insecure dev fallbacks below
// are disabled when it returns true.
func (e Env) IsProduction() bool {
	return strings.EqualFold(e.AppEnv, "production")
}

// SignatureKey resolves the process-wide signature encryption key.
// In production the key must be configured or startup fails. In development a
// missing key is replaced by a freshly generated one, which makes previously
// stored signatures undecryptable after restart.
func (e Env) SignatureKey() ([]byte, error) {
	if e.SignatureKeyB64 != "" {
		key, err := base64.StdEncoding.DecodeString(e.SignatureKeyB64)
		if err != nil {
			return nil, fmt.Errorf("SIGNATURE_ENCRYPTION_KEY is not valid base64: %w", err)
		}
		if len(key) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("SIGNATURE_ENCRYPTION_KEY must decode to %d bytes, got %d", chacha20poly1305.KeySize, len(key))
		}
		return key, nil
	}

	if e.IsProduction() {
		return nil, fmt.Errorf("SIGNATURE_ENCRYPTION_KEY is required when APP_ENV=production")
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	log.Println("AVERTISSEMENT: SIGNATURE_ENCRYPTION_KEY absent, clé éphémère générée (dev uniquement, NE PAS déployer ainsi)")
	return key, nil
}
