package config

import (
	"fmt"
	"strings"

	"pawnshop-backend/internal/domain/invoice"
	"pawnshop-backend/internal/domain/ticket"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Settings are the business tunables, read from an optional YAML file with PAWNSHOP_*
// environment overrides.
type Settings struct {
	GracePeriodDays      int     `mapstructure:"grace_period_days"`
	DefaultMaturityDays  int     `mapstructure:"default_maturity_days"`
	PenaltyRatePercent   float64 `mapstructure:"penalty_rate_percent"`
	ServiceFeePercent    float64 `mapstructure:"service_fee_percent"`
	ServiceFeeAmount     float64 `mapstructure:"service_fee_amount"`
	ServiceFeeType       string  `mapstructure:"service_fee_type"`
	MaxLTVRatio          float64 `mapstructure:"max_ltv_ratio"`
	MinLoanAmount        float64 `mapstructure:"min_loan_amount"`
	MaxLoanAmount        float64 `mapstructure:"max_loan_amount"`
	DefaultRateTableCode string  `mapstructure:"default_rate_table_code"`
	InterestProduct      string  `mapstructure:"interest_product"`
	PenaltyProduct       string  `mapstructure:"penalty_product"`
	ServiceFeeProduct    string  `mapstructure:"service_fee_product"`
	AuctionCustomerID    string  `mapstructure:"auction_customer_id"`
}

var settingDefaults = map[string]any{
	"grace_period_days":       7,
	"default_maturity_days":   30,
	"penalty_rate_percent":    3.0,
	"service_fee_percent":     1.0,
	"service_fee_amount":      0.0,
	"service_fee_type":        string(ticket.FeePercent),
	"max_ltv_ratio":           80.0,
	"min_loan_amount":         100.0,
	"max_loan_amount":         500000.0,
	"default_rate_table_code": "",
	"interest_product":        "",
	"penalty_product":         "",
	"service_fee_product":     "",
	"auction_customer_id":     "",
}

// LoadSettings reads path when it is non-empty; environment variables win over the file.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	for k, d := range settingDefaults {
		v.SetDefault(k, d)
	}
	v.SetEnvPrefix("PAWNSHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read settings %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) Validate() error {
	switch ticket.FeeMode(s.ServiceFeeType) {
	case ticket.FeeFixed, ticket.FeePercent, ticket.FeeBoth:
	default:
		return fmt.Errorf("invalid service_fee_type %q (fixed|percent|both)", s.ServiceFeeType)
	}
	if s.GracePeriodDays < 0 || s.DefaultMaturityDays <= 0 {
		return fmt.Errorf("grace_period_days must be >= 0 and default_maturity_days > 0")
	}
	if s.PenaltyRatePercent < 0 || s.ServiceFeePercent < 0 || s.ServiceFeeAmount < 0 {
		return fmt.Errorf("rates and fees cannot be negative")
	}
	if s.MaxLTVRatio <= 0 {
		return fmt.Errorf("max_ltv_ratio must be positive")
	}
	if s.MaxLoanAmount > 0 && s.MaxLoanAmount < s.MinLoanAmount {
		return fmt.Errorf("max_loan_amount must be >= min_loan_amount")
	}
	return nil
}

func (s *Settings) Terms() ticket.Terms {
	return ticket.Terms{
		GraceDays:           s.GracePeriodDays,
		DefaultMaturityDays: s.DefaultMaturityDays,
		PenaltyRatePercent:  decimal.NewFromFloat(s.PenaltyRatePercent),
		ServiceFeeMode:      ticket.FeeMode(s.ServiceFeeType),
		ServiceFeePercent:   decimal.NewFromFloat(s.ServiceFeePercent),
		ServiceFeeAmount:    decimal.NewFromFloat(s.ServiceFeeAmount),
		MaxLTVRatio:         decimal.NewFromFloat(s.MaxLTVRatio),
		MinLoanAmount:       decimal.NewFromFloat(s.MinLoanAmount),
		MaxLoanAmount:       decimal.NewFromFloat(s.MaxLoanAmount),
	}
}

func (s *Settings) Products() invoice.Products {
	return invoice.Products{
		Interest:   s.InterestProduct,
		Penalty:    s.PenaltyProduct,
		ServiceFee: s.ServiceFeeProduct,
	}
}
