package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultWaitPayRequestPeriod = 5 * time.Second
	defaultCorrelationTTL       = 24 * time.Hour
	defaultProcessID            = "pay-bill-transfer"
)

// AmsProperties describes one account-management backend, keyed by the
// business short code merchants are registered under.
type AmsProperties struct {
	Ams               string
	BusinessShortCode string
	BaseURL           string
	Currency          string
}

// AmsRegistry resolves merchant backends by business short code. It is
// built once at load time; lookups never mutate it.
type AmsRegistry struct {
	backends                    map[string]AmsProperties
	defaultShortCode            string
	accountHoldingInstitutionID string
}

func NewAmsRegistry(backends []AmsProperties, defaultShortCode, institutionID string) *AmsRegistry {
	byCode := make(map[string]AmsProperties, len(backends))
	for _, b := range backends {
		byCode[b.BusinessShortCode] = b
	}
	return &AmsRegistry{
		backends:                    byCode,
		defaultShortCode:            defaultShortCode,
		accountHoldingInstitutionID: institutionID,
	}
}

// ByShortCode returns the backend registered for the given short code,
// falling back to the default short code's backend. An empty short code
// resolves straight to the default.
func (r *AmsRegistry) ByShortCode(shortCode string) AmsProperties {
	if shortCode != "" {
		if props, ok := r.backends[shortCode]; ok {
			return props
		}
	}
	return r.backends[r.defaultShortCode]
}

func (r *AmsRegistry) DefaultShortCode() string { return r.defaultShortCode }

func (r *AmsRegistry) AccountHoldingInstitutionID() string { return r.accountHoldingInstitutionID }

type Config struct {
	Port                 string
	Ams                  *AmsRegistry
	ProcessID            string
	WaitPayRequestPeriod time.Duration
	CorrelationTTL       time.Duration
	SwitchBaseURL        string
	SwitchTenantID       string
}

// Load reads the whole configuration surface from the environment.
func Load() (*Config, error) {
	backends, err := parseBackends(os.Getenv("AMS_PAYBILL_BACKENDS"))
	if err != nil {
		return nil, err
	}
	if len(backends) == 0 {
		return nil, errors.New("AMS_PAYBILL_BACKENDS must list at least one backend")
	}

	defaultShortCode := os.Getenv("AMS_DEFAULT_SHORT_CODE")
	if defaultShortCode == "" {
		defaultShortCode = backends[0].BusinessShortCode
	}

	cfg := &Config{
		Port:                 os.Getenv("SERVER_PORT"),
		Ams:                  NewAmsRegistry(backends, defaultShortCode, os.Getenv("ACCOUNT_HOLDING_INSTITUTION_ID")),
		ProcessID:            defaultProcessID,
		WaitPayRequestPeriod: durationFromEnv("WORKFLOW_WAIT_PERIOD_SECONDS", defaultWaitPayRequestPeriod),
		CorrelationTTL:       durationFromEnv("CORRELATION_TTL_SECONDS", defaultCorrelationTTL),
		SwitchBaseURL:        os.Getenv("SWITCH_BASE_URL"),
		SwitchTenantID:       os.Getenv("SWITCH_TENANT_ID"),
	}
	if pid := os.Getenv("WORKFLOW_PROCESS_ID"); pid != "" {
		cfg.ProcessID = pid
	}
	if cfg.SwitchTenantID == "" {
		cfg.SwitchTenantID = "oaf"
	}
	return cfg, nil
}

// parseBackends parses entries of the form
// "shortCode=ams|baseURL|currency", comma separated.
func parseBackends(raw string) ([]AmsProperties, error) {
	if raw == "" {
		return nil, nil
	}

	var backends []AmsProperties
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		code, spec, found := strings.Cut(entry, "=")
		if !found {
			return nil, fmt.Errorf("invalid AMS backend entry %q", entry)
		}
		parts := strings.Split(spec, "|")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid AMS backend entry %q", entry)
		}

		backends = append(backends, AmsProperties{
			Ams:               parts[0],
			BusinessShortCode: code,
			BaseURL:           parts[1],
			Currency:          parts[2],
		})
	}
	return backends, nil
}

func durationFromEnv(name string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(name); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil && val > 0 {
			return time.Duration(val) * time.Second
		}
	}
	return fallback
}
