package entity

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "09:00", want: "09:00"},
		{in: "17:30:00", want: "17:30"},
		{in: " 07:05 ", want: "07:05"},
		{in: "13:00:00.000000", want: "13:00"},
		{in: "00:00", want: "00:00"},
		{in: "23:59", want: "23:59"},
		{in: "24:00", wantErr: true},
		{in: "9:00", wantErr: true},
		{in: "09:60", wantErr: true},
		{in: "09:00:30", wantErr: true},
		{in: "09:00:00.5", wantErr: true},
		{in: "0900", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTimeOfDay) {
					t.Fatalf("err = %v, want ErrInvalidTimeOfDay", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTimeOfDay_Formats(t *testing.T) {
	tm := MustParseTimeOfDay("08:45")
	if tm.Clock() != "08:45:00" || tm.Hour() != 8 || tm.Minute() != 45 {
		t.Errorf("unexpected formatting: %s %d %d", tm.Clock(), tm.Hour(), tm.Minute())
	}

	b, err := json.Marshal(struct {
		Start TimeOfDay `json:"start"`
	}{tm})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"start":"08:45:00"}` {
		t.Errorf("json = %s", b)
	}

	var back struct {
		Start *TimeOfDay `json:"start"`
	}
	if err := json.Unmarshal([]byte(`{"start":"10:15"}`), &back); err != nil {
		t.Fatal(err)
	}
	if back.Start == nil || back.Start.String() != "10:15" {
		t.Errorf("unmarshal = %v", back.Start)
	}
	if err := json.Unmarshal([]byte(`{"start":"10:15:30"}`), &back); err == nil {
		t.Error("seconds accepted")
	}
}

func TestTimeOfDay_AddMinutes(t *testing.T) {
	if got, ok := MustParseTimeOfDay("23:30").AddMinutes(30); !ok || int(got) != 24*60 {
		t.Errorf("midnight end: %d %v", got, ok)
	}
	if _, ok := MustParseTimeOfDay("23:45").AddMinutes(30); ok {
		t.Error("window past midnight accepted")
	}
}

func TestTimeOfDay_Scan(t *testing.T) {
	var tm TimeOfDay
	for _, src := range []interface{}{"14:30:00", []byte("14:30:00"), time.Date(0, 1, 1, 14, 30, 0, 0, time.UTC)} {
		tm = 0
		if err := tm.Scan(src); err != nil {
			t.Fatalf("scan %T: %v", src, err)
		}
		if tm.String() != "14:30" {
			t.Errorf("scan %T = %s", src, tm)
		}
	}
	if err := tm.Scan(nil); err == nil {
		t.Error("NULL accepted")
	}
	if err := tm.Scan(42); err == nil {
		t.Error("int accepted")
	}

	v, _ := tm.Value()
	if v != "14:30:00" {
		t.Errorf("value = %v", v)
	}
}

func TestTimeOfDay_OnAndFrom(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	at := MustParseTimeOfDay("09:30").On(date, jakarta)
	if !at.Equal(time.Date(2025, 6, 2, 2, 30, 0, 0, time.UTC)) {
		t.Errorf("On = %s", at)
	}
	if TimeOfDayFrom(at).String() != "09:30" {
		t.Errorf("From = %s", TimeOfDayFrom(at))
	}
	if got := DateOf(time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC).In(jakarta)); !got.Equal(date) {
		t.Errorf("DateOf = %s", got)
	}
}

func TestDayOfWeekFromTime(t *testing.T) {
	// 2025-06-02 is a Monday, 2025-06-08 a Sunday.
	if d := DayOfWeekFromTime(time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)); d != Monday {
		t.Errorf("got %s", d)
	}
	if d := DayOfWeekFromTime(time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)); d != Sunday {
		t.Errorf("got %s", d)
	}
	if Sunday.String() != "Sunday" || DayOfWeek(7).Valid() {
		t.Error("day naming or bounds wrong")
	}
}
