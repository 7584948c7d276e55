package config

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if err := c.Projector.validate(); err != nil {
		return fmt.Errorf("projector: %w", err)
	}
	if err := c.Checkout.validate(); err != nil {
		return fmt.Errorf("checkout: %w", err)
	}
	return nil
}

func (p *ProjectorConfig) validate() error {
	if p.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", p.BatchSize)
	}
	if p.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be > 0 (got %v)", p.PollInterval)
	}
	if p.MaxBackoff < p.PollInterval {
		return fmt.Errorf("max_backoff must be >= poll_interval (got %v < %v)", p.MaxBackoff, p.PollInterval)
	}
	return nil
}

func (c *CheckoutConfig) validate() error {
	if c.MaxItemsPerOrder <= 0 {
		return fmt.Errorf("max_items_per_order must be > 0 (got %d)", c.MaxItemsPerOrder)
	}
	if len(c.DefaultCurrency) != 3 {
		return fmt.Errorf("default_currency must be a 3-letter code (got %q)", c.DefaultCurrency)
	}
	limit, err := decimal.NewFromString(c.AuthAmountLimit)
	if err != nil {
		return fmt.Errorf("auth_amount_limit: %w", err)
	}
	if limit.IsNegative() || limit.IsZero() {
		return fmt.Errorf("auth_amount_limit must be > 0 (got %s)", c.AuthAmountLimit)
	}
	return nil
}

// AuthLimit returns the parsed authorization amount limit. Validate
// guarantees the string parses; a zero value is returned otherwise.
func (c *CheckoutConfig) AuthLimit() decimal.Decimal {
	limit, err := decimal.NewFromString(c.AuthAmountLimit)
	if err != nil {
		return decimal.Zero
	}
	return limit
}
