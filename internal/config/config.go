package config

// Defaults applied by Resolve when the corresponding Config field is unset.
const (
	DefaultLanguage    = "en_US"
	DefaultRequestCode = 230958624
)

// Account identifies the merchant shown inside the payment UI.
type Account struct {
	Name             string
	PrivacyPolicyURL string
	UserAgreementURL string
}

// Defaults holds login hints pre-filled into the payment UI.
type Defaults struct {
	Email            string
	Phone            string
	PhoneCountryCode string
}

// FallbackFunc handles an activity result the bridge did not consume itself.
type FallbackFunc func(requestCode, resultCode int)

// Config is a possibly partial bridge configuration. Pointer fields are
// tri-state: nil means unset and receives a default during resolution.
type Config struct {
	ClientID          string
	Account           Account
	Defaults          Defaults
	Environment       Environment
	Language          string
	RememberUser      *bool
	RequestCode       int
	AcceptCreditCards *bool
	Fallback          FallbackFunc
}

// Resolved is a fully populated configuration: every optional field carries a
// concrete value. It is immutable by convention and injected into the payment
// service at construction, so there is no process-global configuration state to
// race on.
type Resolved struct {
	ClientID          string
	Account           Account
	Defaults          Defaults
	Environment       Environment
	Language          string
	RememberUser      bool
	RequestCode       int
	AcceptCreditCards bool
	Fallback          FallbackFunc
}

// Resolve normalizes a possibly-absent, possibly-partial configuration into a
// Resolved one. Defaulting is applied field by field and never fails; resolving
// the same input twice yields the same result.
func Resolve(partial *Config) Resolved {
	if partial == nil {
		partial = &Config{}
	}

	resolved := Resolved{
		ClientID:          partial.ClientID,
		Account:           partial.Account,
		Defaults:          partial.Defaults,
		Environment:       partial.Environment,
		Language:          partial.Language,
		RememberUser:      true,
		RequestCode:       partial.RequestCode,
		AcceptCreditCards: true,
		Fallback:          partial.Fallback,
	}

	if !resolved.Environment.Valid() {
		resolved.Environment = EnvironmentSandbox
	}
	if resolved.Language == "" {
		resolved.Language = DefaultLanguage
	}
	if partial.RememberUser != nil {
		resolved.RememberUser = *partial.RememberUser
	}
	if resolved.RequestCode == 0 {
		resolved.RequestCode = DefaultRequestCode
	}
	if partial.AcceptCreditCards != nil {
		resolved.AcceptCreditCards = *partial.AcceptCreditCards
	}

	return resolved
}

// Config converts a Resolved back into an equivalent fully-specified Config.
// Resolve(r.Config()) == r, which is the idempotence property of resolution.
func (r Resolved) Config() *Config {
	remember := r.RememberUser
	acceptCards := r.AcceptCreditCards
	return &Config{
		ClientID:          r.ClientID,
		Account:           r.Account,
		Defaults:          r.Defaults,
		Environment:       r.Environment,
		Language:          r.Language,
		RememberUser:      &remember,
		RequestCode:       r.RequestCode,
		AcceptCreditCards: &acceptCards,
		Fallback:          r.Fallback,
	}
}
