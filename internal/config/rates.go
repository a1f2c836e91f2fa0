package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"salonbooking/internal/domain"
)

const (
	defaultServiceRate = "0.60"
	defaultProductRate = "0.10"
)

// RateTable holds the commission fractions paid out per line. Base rates per
// line type, with optional per-client-type overrides for service work (a new
// client brought in by the stylist can pay out differently than a transfer).
type RateTable struct {
	ServiceRate float64
	ProductRate float64

	serviceOverrides map[domain.ClientType]float64
}

// LoadRateTable reads the table from the environment:
//
//	COMMISSION_RATE_SERVICE              base rate for service lines
//	COMMISSION_RATE_PRODUCT              base rate for product lines
//	COMMISSION_RATE_SERVICE_NEW          override for new clients
//	COMMISSION_RATE_SERVICE_REGULAR      override for regular clients
//	COMMISSION_RATE_SERVICE_TRANSFER     override for transferred clients
func LoadRateTable() (*RateTable, error) {
	t := &RateTable{serviceOverrides: make(map[domain.ClientType]float64)}

	var err error
	t.ServiceRate, err = parseRateEnv("COMMISSION_RATE_SERVICE", defaultServiceRate)
	if err != nil {
		return nil, err
	}
	t.ProductRate, err = parseRateEnv("COMMISSION_RATE_PRODUCT", defaultProductRate)
	if err != nil {
		return nil, err
	}

	overrides := map[domain.ClientType]string{
		domain.ClientNew:      "COMMISSION_RATE_SERVICE_NEW",
		domain.ClientRegular:  "COMMISSION_RATE_SERVICE_REGULAR",
		domain.ClientTransfer: "COMMISSION_RATE_SERVICE_TRANSFER",
	}
	for ct, key := range overrides {
		raw := strings.TrimSpace(os.Getenv(key))
		if raw == "" {
			continue
		}
		rate, err := parseRate(key, raw)
		if err != nil {
			return nil, err
		}
		t.serviceOverrides[ct] = rate
	}
	return t, nil
}

// Rate returns the commission fraction for a line. Stored commissions on
// settled lines always win over this table; it only feeds new derivations.
func (t *RateTable) Rate(lineType domain.LineType, clientType domain.ClientType) float64 {
	if lineType == domain.LineProduct {
		return t.ProductRate
	}
	if r, ok := t.serviceOverrides[clientType]; ok {
		return r
	}
	return t.ServiceRate
}

func parseRateEnv(key, fallback string) (float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		raw = fallback
	}
	return parseRate(key, raw)
}

func parseRate(key, raw string) (float64, error) {
	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid rate %q", key, raw)
	}
	if rate < 0 || rate >= 1 {
		return 0, fmt.Errorf("%s must be a fraction in [0, 1), got %q", key, raw)
	}
	return rate, nil
}
