package cmd

import (
	"os"
	"testing"
	"time"

	"github.com/neeldave10/medlaunch-data-engineer/config"
	c "github.com/neeldave10/medlaunch-data-engineer/constants"
)

func TestSetupTwelveFactorMode(t *testing.T) {
	defer func() {
		_ = os.Unsetenv(c.EnvVarTwelveFactorMode)
		setupTwelveFactorMode()
	}()
	_ = os.Setenv(c.EnvVarTwelveFactorMode, "1")
	setupTwelveFactorMode()
	if !twelveFactorMode || lambdaMode {
		t.Fatalf("expected 12factor mode without lambda, got %v/%v", twelveFactorMode, lambdaMode)
	}
	_ = os.Setenv(c.EnvVarTwelveFactorMode, "lambda")
	setupTwelveFactorMode()
	if !twelveFactorMode || !lambdaMode {
		t.Fatalf("expected lambda mode, got %v/%v", twelveFactorMode, lambdaMode)
	}
	_ = os.Unsetenv(c.EnvVarTwelveFactorMode)
	setupTwelveFactorMode()
	if twelveFactorMode {
		t.Fatal("expected 12factor mode off when the variable is unset")
	}
}

func TestFlagNameToEnvVar(t *testing.T) {
	if got := flagNameToEnvVar("athena-database"); got != "ML_ATHENA_DATABASE" {
		t.Fatalf("unexpected env var name %v", got)
	}
}

func TestParseDurationFlag(t *testing.T) {
	d, err := parseDurationFlag("poll-interval", "5s")
	if err != nil || d != 5*time.Second {
		t.Fatalf("unexpected result %v, %v", d, err)
	}
	// Bare integers are seconds.
	d, err = parseDurationFlag("max-invocation-duration", "300")
	if err != nil || d != 300*time.Second {
		t.Fatalf("unexpected result %v, %v", d, err)
	}
	if _, err = parseDurationFlag("poll-interval", "soon"); err == nil {
		t.Fatal("expected an error for an unparseable duration")
	}
}

func TestConfigFromSettingsMapping(t *testing.T) {
	s := config.NewSettings()
	s.Bucket = "landing"
	s.OutputPrefix = "filtered"
	s.AthenaDatabase = "medlaunch"
	s.AthenaTable = "facilities"
	s.ResultsPrefix = "s3://results/exports"
	f := filterConfigFromSettings(s)
	if f.Bucket != "landing" || f.OutputPrefix != "filtered" || f.Months != c.DefaultMonthsAhead {
		t.Fatalf("unexpected filter config %+v", f)
	}
	e := exportConfigFromSettings(s)
	if e.AthenaDatabase != "medlaunch" || e.AthenaTable != "facilities" ||
		e.ResultsPrefix != "s3://results/exports" || e.AthenaWorkgroup != c.DefaultAthenaWorkgroup {
		t.Fatalf("unexpected export config %+v", e)
	}
}
