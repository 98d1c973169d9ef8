package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8083" {
		t.Errorf("expected default port 8083, got %s", cfg.Port)
	}
	if cfg.Pricing.LookbackDays != 90 || cfg.Pricing.CandidateSteps != 50 {
		t.Errorf("unexpected pricing defaults %+v", cfg.Pricing)
	}
	if cfg.Pricing.CandidateLowerPct != 0.5 || cfg.Pricing.CandidateUpperPct != 1.2 {
		t.Errorf("unexpected grid defaults %+v", cfg.Pricing)
	}
	if len(cfg.Kafka.Brokers) != 3 {
		t.Errorf("expected 3 default brokers, got %v", cfg.Kafka.Brokers)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", ":memory:")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("PRICING_MARGIN_FLOOR", "0.15")
	t.Setenv("PRICING_LOOKBACK_DAYS", "0")

	cfg := Load()

	if cfg.Port != "9000" || cfg.Database.Driver != "sqlite" || cfg.Database.Path != ":memory:" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Redis.TTL != 90*time.Second {
		t.Errorf("expected 90s TTL, got %v", cfg.Redis.TTL)
	}
	if want := []string{"kafka-1:9092", "kafka-2:9092"}; !reflect.DeepEqual(cfg.Kafka.Brokers, want) {
		t.Errorf("expected brokers %v, got %v", want, cfg.Kafka.Brokers)
	}
	if cfg.Pricing.MarginFloor != 0.15 || cfg.Pricing.LookbackDays != 0 {
		t.Errorf("unexpected pricing config %+v", cfg.Pricing)
	}
}

func TestGetEnvHelpers_InvalidFallsBack(t *testing.T) {
	t.Setenv("BAD_INT", "ten")
	t.Setenv("BAD_FLOAT", "abc")
	t.Setenv("BAD_DURATION", "soon")

	if got := getEnvInt("BAD_INT", 7); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
	if got := getEnvFloat("BAD_FLOAT", 0.3); got != 0.3 {
		t.Errorf("expected 0.3, got %v", got)
	}
	if got := getEnvDuration("BAD_DURATION", time.Minute); got != time.Minute {
		t.Errorf("expected 1m, got %v", got)
	}
}
