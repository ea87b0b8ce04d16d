package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Credentials holds the brokerage API keys loaded from the environment.
type Credentials struct {
	APIKey    string
	APISecret string
	Paper     bool
	BaseURL   string
}

// LoadCredentials reads a .env file if present, then the environment.
// Missing key or secret is a fatal configuration error.
func LoadCredentials() (Credentials, error) {
	_ = godotenv.Load()

	c := Credentials{
		APIKey:    os.Getenv("API_KEY"),
		APISecret: os.Getenv("API_SECRET"),
		BaseURL:   os.Getenv("BASE_URL"),
	}
	switch strings.ToLower(os.Getenv("PAPER")) {
	case "", "true", "1", "t":
		c.Paper = true
	}
	if c.APIKey == "" || c.APISecret == "" {
		return Credentials{}, errors.New("API_KEY and API_SECRET must be set in the environment or .env file")
	}
	if c.BaseURL == "" {
		c.BaseURL = "https://paper-api.alpaca.markets"
	}
	return c, nil
}
