package helper

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// GetEnvVar fetches OS environment variable.
// If the variable is not set it returns empty string.
// It also returns an error if there is a missing value AND mandatory == true.
func GetEnvVar(k string, mandatory bool) (string, error) {
	if value := os.Getenv(k); value != "" {
		return value, nil
	} else {
		if mandatory {
			return "", fmt.Errorf("environment variable %v is not set", k)
		} else {
			return "", nil
		}
	}
}

// ReadValueFromEnv will read the env var called name and populate the supplied val.
// If the env var is not set then return an error.
func ReadValueFromEnv(name string, val *string) error {
	v := os.Getenv(name)
	if v != "" { // if the environment variable was set...
		*val = v // update the callers value
		return nil
	} else { // else there was no environment variable set...
		return fmt.Errorf("value for environment variable %v not found", name)
	}
}

// ReadValueFromEnvWithDefault will read the value of name from the environment into v.
// If it's not set then it will apply the supplied defaultValue and return v.
func ReadValueFromEnvWithDefault(name string, defaultValue string) (v string) {
	_ = ReadValueFromEnv(name, &v)
	if v == "" && defaultValue != "" { // if the environment variable is not set and we have been given a default value...
		v = defaultValue
	}
	return
}

// ReadIntFromEnvWithDefault reads an integer env var, falling back to defaultValue
// when the variable is unset or not a number.
func ReadIntFromEnvWithDefault(name string, defaultValue int) int {
	s := os.Getenv(name)
	if s == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(s)
	if err != nil { // if the value doesn't parse...
		return defaultValue
	}
	return i
}

// ReadDurationFromEnvWithDefault reads a Go duration string env var e.g. "30s", "5m".
// Bare integers are treated as seconds for parity with platform timeout settings.
func ReadDurationFromEnvWithDefault(name string, defaultValue time.Duration) time.Duration {
	s := os.Getenv(name)
	if s == "" {
		return defaultValue
	}
	if i, err := strconv.Atoi(s); err == nil { // if the value is a bare integer...
		return time.Duration(i) * time.Second
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultValue
	}
	return d
}
