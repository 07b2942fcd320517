package config

import (
	"os"
	"strconv"
)

// FromEnv builds a partial Config from PAYPAL_* environment variables. Unset
// variables stay unset and pick up defaults during Resolve.
func FromEnv() *Config {
	cfg := &Config{
		ClientID: os.Getenv("PAYPAL_CLIENT_ID"),
		Account: Account{
			Name:             os.Getenv("PAYPAL_ACCOUNT_NAME"),
			PrivacyPolicyURL: os.Getenv("PAYPAL_PRIVACY_POLICY_URL"),
			UserAgreementURL: os.Getenv("PAYPAL_USER_AGREEMENT_URL"),
		},
		Defaults: Defaults{
			Email:            os.Getenv("PAYPAL_DEFAULT_EMAIL"),
			Phone:            os.Getenv("PAYPAL_DEFAULT_PHONE"),
			PhoneCountryCode: os.Getenv("PAYPAL_DEFAULT_PHONE_COUNTRY_CODE"),
		},
		Language: os.Getenv("PAYPAL_LANGUAGE"),
	}

	if v := os.Getenv("PAYPAL_ENVIRONMENT"); v != "" {
		if env, err := ParseEnvironment(v); err == nil {
			cfg.Environment = env
		}
	}
	if v := os.Getenv("PAYPAL_REQUEST_CODE"); v != "" {
		if code, err := strconv.Atoi(v); err == nil {
			cfg.RequestCode = code
		}
	}
	if v := os.Getenv("PAYPAL_REMEMBER_USER"); v != "" {
		if remember, err := strconv.ParseBool(v); err == nil {
			cfg.RememberUser = &remember
		}
	}
	if v := os.Getenv("PAYPAL_ACCEPT_CREDIT_CARDS"); v != "" {
		if accept, err := strconv.ParseBool(v); err == nil {
			cfg.AcceptCreditCards = &accept
		}
	}

	return cfg
}
