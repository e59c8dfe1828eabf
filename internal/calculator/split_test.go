package calculator

import (
	"errors"
	"testing"

	"pgregory.net/rapid"

	"github.com/mmynk/splitsettle/internal/money"
)

func TestAllocateEqually(t *testing.T) {
	tests := []struct {
		name         string
		total        money.Money
		participants []string
		wantErr      error
		want         map[string]string
	}{
		{
			name:         "three-way split hands remainder to first id",
			total:        money.New(100),
			participants: []string{"carol", "alice", "bob"},
			want:         map[string]string{"alice": "34", "bob": "33", "carol": "33"},
		},
		{
			name:         "exact division",
			total:        money.New(90),
			participants: []string{"alice", "bob", "carol"},
			want:         map[string]string{"alice": "30", "bob": "30", "carol": "30"},
		},
		{
			name:         "remainder of two",
			total:        money.New(11),
			participants: []string{"d", "c", "b", "a"},
			want:         map[string]string{"a": "3", "b": "3", "c": "3", "d": "2"},
		},
		{
			name:         "total smaller than participant count",
			total:        money.New(2),
			participants: []string{"a", "b", "c"},
			want:         map[string]string{"a": "1", "b": "1", "c": "0"},
		},
		{
			name:         "wei-scale total",
			total:        money.MustParse("1000000000000000000001"),
			participants: []string{"a", "b"},
			want:         map[string]string{"a": "500000000000000000001", "b": "500000000000000000000"},
		},
		{
			name:         "no participants should error",
			total:        money.New(10),
			participants: []string{},
			wantErr:      ErrInvalidSplit,
		},
		{
			name:         "zero total should error",
			total:        money.Zero(),
			participants: []string{"a", "b"},
			wantErr:      ErrInvalidSplit,
		},
		{
			name:         "duplicate participants should error",
			total:        money.New(10),
			participants: []string{"a", "b", "a"},
			wantErr:      ErrInvalidSplit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := AllocateEqually(tt.total, tt.participants)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("AllocateEqually() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("AllocateEqually() unexpected error: %v", err)
			}
			if len(shares) != len(tt.want) {
				t.Fatalf("got %d shares, want %d", len(shares), len(tt.want))
			}
			for p, want := range tt.want {
				if got := shares[p].String(); got != want {
					t.Errorf("%s share = %s, want %s", p, got, want)
				}
			}
		})
	}
}

func TestValidateCustomSplit(t *testing.T) {
	tests := []struct {
		name    string
		total   money.Money
		shares  map[string]money.Money
		wantErr error
	}{
		{
			name:   "exact sum",
			total:  money.New(100),
			shares: map[string]money.Money{"a": money.New(70), "b": money.New(30)},
		},
		{
			name:    "under total",
			total:   money.New(100),
			shares:  map[string]money.Money{"a": money.New(70), "b": money.New(29)},
			wantErr: ErrAmountMismatch,
		},
		{
			name:    "over total",
			total:   money.New(100),
			shares:  map[string]money.Money{"a": money.New(70), "b": money.New(31)},
			wantErr: ErrAmountMismatch,
		},
		{
			name:    "zero share",
			total:   money.New(100),
			shares:  map[string]money.Money{"a": money.New(100), "b": money.Zero()},
			wantErr: ErrInvalidSplit,
		},
		{
			name:    "empty",
			total:   money.New(100),
			shares:  map[string]money.Money{},
			wantErr: ErrInvalidSplit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCustomSplit(tt.total, tt.shares)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateCustomSplit() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAllocateEquallySumsToTotal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		total := money.New(rapid.Uint64Range(1, 1<<62).Draw(t, "total"))
		ids := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-z0-9]{1,10}`), 1, 50, rapid.ID[string]).Draw(t, "ids")

		shares, err := AllocateEqually(total, ids)
		if err != nil {
			t.Fatalf("AllocateEqually: %v", err)
		}

		sum := money.Zero()
		for _, s := range shares {
			sum, _ = sum.Add(s)
		}
		if !sum.Equal(total) {
			t.Fatalf("shares sum to %s, want %s", sum, total)
		}
	})
}

func TestAllocateEquallyIgnoresInputOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		total := money.New(rapid.Uint64Range(1, 1_000_000).Draw(t, "total"))
		ids := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-z]{1,6}`), 1, 50, rapid.ID[string]).Draw(t, "ids")
		shuffled := rapid.Permutation(ids).Draw(t, "shuffled")

		first, err := AllocateEqually(total, ids)
		if err != nil {
			t.Fatalf("AllocateEqually: %v", err)
		}
		second, err := AllocateEqually(total, shuffled)
		if err != nil {
			t.Fatalf("AllocateEqually: %v", err)
		}
		for id, amount := range first {
			if !second[id].Equal(amount) {
				t.Fatalf("%s: %s vs %s", id, amount, second[id])
			}
		}
	})
}
