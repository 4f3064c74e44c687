package date

import (
	"encoding/json"
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		// Note that usually time.Time are not comparable (there is a pointer for the timezone) this
		// tests also checks that the property remain true
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestNewNormalizes(t *testing.T) {
	if got, want := New(2024, 2, 30), New(2024, 3, 1); got != want {
		t.Errorf("New(2024, 2, 30) = %v want %v", got, want)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b Date
		want int
	}{
		{New(2024, 1, 1), New(2024, 1, 1), 0},
		{New(2023, 12, 31), New(2024, 1, 1), -1},
		{New(2024, 2, 1), New(2024, 1, 31), 1},
		{New(2024, 1, 2), New(2024, 1, 1), 1},
	}
	for _, tt := range tests {
		if got := tt.a.Compare(tt.b); got != tt.want {
			t.Errorf("%v.Compare(%v) = %v want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestParseLedger(t *testing.T) {
	tests := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{"01-06-2023", New(2023, time.June, 1), false},
		{"31-12-1999", New(1999, time.December, 31), false},
		{"1-6-2023", Date{}, true},
		{"2023-06-01", Date{}, true},
		{"31-02-2024", Date{}, true},
		{" 01-06-2023", Date{}, true},
		{"Datum", Date{}, true},
		{"", Date{}, true},
	}
	for _, tt := range tests {
		got, err := ParseLedger(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLedger(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLedger(%q) = %v want %v", tt.in, got, tt.want)
		}
	}
}

func TestJSON(t *testing.T) {
	in := New(2023, 6, 1)
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `"2023-06-01"` {
		t.Errorf("Marshal() = %s want %q", data, "2023-06-01")
	}
	var out Date
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if out != in {
		t.Errorf("Unmarshal() = %v want %v", out, in)
	}
}
