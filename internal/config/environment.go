package config

import "fmt"

// Environment selects which class of PayPal endpoint a payment targets.
type Environment string

const (
	// EnvironmentSandbox targets the PayPal sandbox endpoints.
	EnvironmentSandbox Environment = "sandbox"
	// EnvironmentProduction targets the live PayPal endpoints.
	EnvironmentProduction Environment = "production"
	// EnvironmentNoNetwork performs no network calls at all; payments resolve
	// against mock data. First-class value to enable fully offline testing.
	EnvironmentNoNetwork Environment = "no-network"
)

// EnvironmentInfo contains metadata about an environment.
type EnvironmentInfo struct {
	Environment Environment
	Name        string
	Endpoint    string
	Offline     bool
}

var environmentInfoMap = map[Environment]EnvironmentInfo{
	EnvironmentSandbox: {
		Environment: EnvironmentSandbox,
		Name:        "Sandbox",
		Endpoint:    "api.sandbox.paypal.com",
	},
	EnvironmentProduction: {
		Environment: EnvironmentProduction,
		Name:        "Production",
		Endpoint:    "api.paypal.com",
	},
	EnvironmentNoNetwork: {
		Environment: EnvironmentNoNetwork,
		Name:        "No Network",
		Offline:     true,
	},
}

// Info returns metadata about an environment.
func Info(env Environment) (EnvironmentInfo, error) {
	info, ok := environmentInfoMap[env]
	if !ok {
		return EnvironmentInfo{}, fmt.Errorf("config: unknown environment: %s", env)
	}
	return info, nil
}

// Valid reports whether e is one of the known environments.
func (e Environment) Valid() bool {
	_, ok := environmentInfoMap[e]
	return ok
}

// ParseEnvironment converts a string into an Environment.
func ParseEnvironment(s string) (Environment, error) {
	env := Environment(s)
	if !env.Valid() {
		return "", fmt.Errorf("config: unknown environment: %q", s)
	}
	return env, nil
}
