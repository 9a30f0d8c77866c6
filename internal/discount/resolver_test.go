package discount

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/storefront-core/internal/domain"
)

type fakeRuleSource struct {
	rules map[string]*domain.DiscountRule
	err   error
}

func (f *fakeRuleSource) FindByCode(_ context.Context, code string) (*domain.DiscountRule, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rules[code], nil
}

func timePtr(t time.Time) *time.Time { return &t }

func TestResolver_Resolve(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	tenPercent := decimal.RequireFromString("10")

	tests := []struct {
		name    string
		rule    *domain.DiscountRule
		at      time.Time
		wantErr error
	}{
		{
			name:    "unknown code",
			rule:    nil,
			at:      now,
			wantErr: ErrNotFound,
		},
		{
			name: "inactive rule",
			rule: &domain.DiscountRule{
				Code: "SAVE10", DiscountPercent: tenPercent, Active: false,
			},
			at:      now,
			wantErr: ErrInactive,
		},
		{
			name: "active without window",
			rule: &domain.DiscountRule{
				Code: "SAVE10", DiscountPercent: tenPercent, Active: true,
			},
			at: now,
		},
		{
			name: "inside window",
			rule: &domain.DiscountRule{
				Code: "SAVE10", DiscountPercent: tenPercent, Active: true,
				StartDate: timePtr(now.Add(-time.Hour)),
				EndDate:   timePtr(now.Add(time.Hour)),
			},
			at: now,
		},
		{
			name: "expired window",
			rule: &domain.DiscountRule{
				Code: "SAVE10", DiscountPercent: tenPercent, Active: true,
				StartDate: timePtr(now.Add(-2 * time.Hour)),
				EndDate:   timePtr(now.Add(-time.Hour)),
			},
			at:      now,
			wantErr: ErrOutOfWindow,
		},
		{
			name: "not yet started",
			rule: &domain.DiscountRule{
				Code: "SAVE10", DiscountPercent: tenPercent, Active: true,
				StartDate: timePtr(now.Add(time.Hour)),
				EndDate:   timePtr(now.Add(2 * time.Hour)),
			},
			at:      now,
			wantErr: ErrOutOfWindow,
		},
		{
			name: "window boundaries are inclusive",
			rule: &domain.DiscountRule{
				Code: "SAVE10", DiscountPercent: tenPercent, Active: true,
				StartDate: timePtr(now),
				EndDate:   timePtr(now),
			},
			at: now,
		},
		{
			name: "only start date set is not time-gated",
			rule: &domain.DiscountRule{
				Code: "SAVE10", DiscountPercent: tenPercent, Active: true,
				StartDate: timePtr(now.Add(time.Hour)),
			},
			at: now,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &fakeRuleSource{rules: map[string]*domain.DiscountRule{}}
			if tt.rule != nil {
				source.rules[tt.rule.Code] = tt.rule
			}
			resolver := NewResolver(source)

			rule, err := resolver.Resolve(context.Background(), "SAVE10", tt.at)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rule == nil || rule.Code != "SAVE10" {
				t.Fatalf("expected resolved rule SAVE10, got %+v", rule)
			}
		})
	}

	t.Run("source error propagates", func(t *testing.T) {
		source := &fakeRuleSource{err: errors.New("connection refused")}
		resolver := NewResolver(source)

		if _, err := resolver.Resolve(context.Background(), "SAVE10", now); err == nil {
			t.Fatal("expected error from source")
		}
	})
}

func TestMeetsMinQuantity(t *testing.T) {
	three := 3

	if !MeetsMinQuantity(nil, 0) {
		t.Error("nil rule should always pass")
	}
	if !MeetsMinQuantity(&domain.DiscountRule{}, 0) {
		t.Error("rule without minimum should always pass")
	}
	if MeetsMinQuantity(&domain.DiscountRule{MinQuantity: &three}, 2) {
		t.Error("2 units should not satisfy a minimum of 3")
	}
	if !MeetsMinQuantity(&domain.DiscountRule{MinQuantity: &three}, 3) {
		t.Error("3 units should satisfy a minimum of 3")
	}
}
