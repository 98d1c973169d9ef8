package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"dynamic-pricing-service/internal/config"
	"dynamic-pricing-service/internal/entity"
)

var errLedgerDown = errors.New("ledger unavailable")

type fakeRecommender struct {
	mu     sync.Mutex
	calls  int
	result map[string]*entity.PricingRecommendation
	err    error
}

func (f *fakeRecommender) Recommend(_ context.Context, sku string, _ entity.PricingParams) (*entity.PricingRecommendation, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if rec, ok := f.result[sku]; ok {
		return rec, nil
	}
	return &entity.PricingRecommendation{SKU: sku, Status: entity.StatusError, Error: "SKU not found"}, nil
}

func (f *fakeRecommender) RecommendBatch(ctx context.Context, skus []string, params entity.PricingParams) ([]*entity.PricingRecommendation, error) {
	out := make([]*entity.PricingRecommendation, 0, len(skus))
	for _, sku := range skus {
		rec, err := f.Recommend(ctx, sku, params)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

type fakeRanker struct {
	ranks     []entity.PerformerRank
	lastLimit int
}

func (f *fakeRanker) WorstPerformers(_ context.Context, limit int) ([]entity.PerformerRank, error) {
	f.lastLimit = limit
	if limit < len(f.ranks) {
		return f.ranks[:limit], nil
	}
	return f.ranks, nil
}

type fakeCache struct {
	entries     map[string]*entity.PricingRecommendation
	invalidated []string
	getErr      error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]*entity.PricingRecommendation{}}
}

func (f *fakeCache) Get(_ context.Context, sku string, params entity.PricingParams) (*entity.PricingRecommendation, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.entries[sku+"|"+params.Signature()], nil
}

func (f *fakeCache) Set(_ context.Context, rec *entity.PricingRecommendation, params entity.PricingParams) error {
	f.entries[rec.SKU+"|"+params.Signature()] = rec
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context, sku string) error {
	f.invalidated = append(f.invalidated, sku)
	for k := range f.entries {
		if len(k) > len(sku) && k[:len(sku)+1] == sku+"|" {
			delete(f.entries, k)
		}
	}
	return nil
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return f.err
}

func testDefaults() config.PricingConfig {
	return config.PricingConfig{
		ClearanceDays:     30,
		MarginFloor:       0.1,
		LookbackDays:      90,
		CandidateLowerPct: 0.5,
		CandidateUpperPct: 1.2,
		CandidateSteps:    50,
		BatchConcurrency:  4,
		WorstPerformers:   2,
	}
}

func successRec(sku string) *entity.PricingRecommendation {
	return &entity.PricingRecommendation{
		SKU:    sku,
		Status: entity.StatusSuccess,
		Quote:  &entity.Quote{ProductName: "Widget " + sku, RecommendedPrice: 9.5},
	}
}

func TestResolveParams(t *testing.T) {
	svc := NewPricingService(&fakeRecommender{}, &fakeRanker{}, nil, nil, testDefaults())
	intp := func(v int) *int { return &v }
	floatp := func(v float64) *float64 { return &v }

	tests := []struct {
		name    string
		in      entity.PricingOverrides
		want    entity.PricingParams
		wantErr bool
	}{
		{
			name: "defaults",
			want: entity.NewPricingParams(30, 0.1),
		},
		{
			name: "overrides",
			in:   entity.PricingOverrides{ClearanceDays: intp(14), MarginFloor: floatp(0), LookbackDays: intp(0), CandidateSteps: intp(10)},
			want: entity.PricingParams{ClearanceDays: 14, LookbackDays: 0, CandidateLowerPct: 0.5, CandidateUpperPct: 1.2, CandidateSteps: 10},
		},
		{name: "zero clearance", in: entity.PricingOverrides{ClearanceDays: intp(0)}, wantErr: true},
		{name: "negative margin floor", in: entity.PricingOverrides{MarginFloor: floatp(-0.1)}, wantErr: true},
		{name: "negative lookback", in: entity.PricingOverrides{LookbackDays: intp(-1)}, wantErr: true},
		{name: "inverted range", in: entity.PricingOverrides{CandidateLowerPct: floatp(1.5)}, wantErr: true},
		{name: "no steps", in: entity.PricingOverrides{CandidateSteps: intp(0)}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ResolveParams(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidParams) {
					t.Fatalf("expected ErrInvalidParams, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRecommend_CachesAndPublishes(t *testing.T) {
	engine := &fakeRecommender{result: map[string]*entity.PricingRecommendation{"SKU-1": successRec("SKU-1")}}
	cache := newFakeCache()
	writer := &fakeWriter{}
	svc := NewPricingService(engine, &fakeRanker{}, cache, writer, testDefaults())
	svc.now = func() time.Time { return time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC) }
	params := entity.NewPricingParams(30, 0.1)

	for i := 0; i < 2; i++ {
		rec, err := svc.Recommend(context.Background(), "SKU-1", params)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Status != entity.StatusSuccess || rec.RecommendedPrice != 9.5 {
			t.Fatalf("unexpected recommendation %+v", rec)
		}
	}

	if engine.calls != 1 {
		t.Fatalf("expected the second call to be served from cache, engine called %d times", engine.calls)
	}
	if len(writer.msgs) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(writer.msgs))
	}

	msg := writer.msgs[0]
	if string(msg.Key) != "pricing.success.SKU-1" {
		t.Fatalf("unexpected key %s", msg.Key)
	}
	var event entity.RecommendationEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		t.Fatalf("unexpected error decoding event: %v", err)
	}
	if event.EventID == "" || !event.GeneratedAt.Equal(svc.now()) {
		t.Fatalf("unexpected event envelope %+v", event)
	}
	if event.Recommendation == nil || event.Recommendation.SKU != "SKU-1" {
		t.Fatalf("unexpected event payload %+v", event.Recommendation)
	}
}

func TestRecommend_ErrorStatusNotCached(t *testing.T) {
	engine := &fakeRecommender{}
	cache := newFakeCache()
	svc := NewPricingService(engine, &fakeRanker{}, cache, &fakeWriter{}, testDefaults())
	params := entity.NewPricingParams(30, 0.1)

	for i := 0; i < 2; i++ {
		rec, err := svc.Recommend(context.Background(), "MISSING", params)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Status != entity.StatusError {
			t.Fatalf("expected error status, got %s", rec.Status)
		}
	}
	if engine.calls != 2 {
		t.Fatalf("expected error results to bypass the cache, engine called %d times", engine.calls)
	}
}

func TestRecommend_CacheFailureFallsThrough(t *testing.T) {
	engine := &fakeRecommender{result: map[string]*entity.PricingRecommendation{"SKU-1": successRec("SKU-1")}}
	cache := newFakeCache()
	cache.getErr = errors.New("redis down")
	svc := NewPricingService(engine, &fakeRanker{}, cache, nil, testDefaults())

	rec, err := svc.Recommend(context.Background(), "SKU-1", entity.NewPricingParams(30, 0.1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Status != entity.StatusSuccess {
		t.Fatalf("unexpected status %s", rec.Status)
	}
}

func TestRecommend_LedgerFailure(t *testing.T) {
	writer := &fakeWriter{}
	svc := NewPricingService(&fakeRecommender{err: errLedgerDown}, &fakeRanker{}, newFakeCache(), writer, testDefaults())

	_, err := svc.Recommend(context.Background(), "SKU-1", entity.NewPricingParams(30, 0.1))
	if !errors.Is(err, errLedgerDown) {
		t.Fatalf("expected wrapped ledger error, got %v", err)
	}
	if len(writer.msgs) != 0 {
		t.Fatalf("expected no events on failure, got %d", len(writer.msgs))
	}
}

func TestRecommend_PublishFailureIgnored(t *testing.T) {
	engine := &fakeRecommender{result: map[string]*entity.PricingRecommendation{"SKU-1": successRec("SKU-1")}}
	svc := NewPricingService(engine, &fakeRanker{}, nil, &fakeWriter{err: errors.New("broker down")}, testDefaults())

	if _, err := svc.Recommend(context.Background(), "SKU-1", entity.NewPricingParams(30, 0.1)); err != nil {
		t.Fatalf("expected publish failure to be ignored, got %v", err)
	}
}

func TestRecommendWorstPerformers(t *testing.T) {
	engine := &fakeRecommender{result: map[string]*entity.PricingRecommendation{
		"SKU-3": successRec("SKU-3"),
		"SKU-1": successRec("SKU-1"),
	}}
	ranker := &fakeRanker{ranks: []entity.PerformerRank{
		{SKU: "SKU-3", QuantitySold: 0},
		{SKU: "SKU-1", QuantitySold: 4},
		{SKU: "SKU-2", QuantitySold: 12},
	}}
	writer := &fakeWriter{}
	svc := NewPricingService(engine, ranker, newFakeCache(), writer, testDefaults())

	recs, err := svc.RecommendWorstPerformers(context.Background(), 0, entity.NewPricingParams(30, 0.1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ranker.lastLimit != 2 {
		t.Fatalf("expected the configured default limit, got %d", ranker.lastLimit)
	}
	if len(recs) != 2 || recs[0].SKU != "SKU-3" || recs[1].SKU != "SKU-1" {
		t.Fatalf("unexpected order %+v", recs)
	}
	if len(writer.msgs) != 2 {
		t.Fatalf("expected one event per recommendation, got %d", len(writer.msgs))
	}
}

func TestInvalidateSKU(t *testing.T) {
	engine := &fakeRecommender{result: map[string]*entity.PricingRecommendation{"SKU-1": successRec("SKU-1")}}
	cache := newFakeCache()
	svc := NewPricingService(engine, &fakeRanker{}, cache, nil, testDefaults())
	params := entity.NewPricingParams(30, 0.1)

	if _, err := svc.Recommend(context.Background(), "SKU-1", params); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.InvalidateSKU(context.Background(), "SKU-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Recommend(context.Background(), "SKU-1", params); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if engine.calls != 2 {
		t.Fatalf("expected recompute after invalidation, engine called %d times", engine.calls)
	}
}
