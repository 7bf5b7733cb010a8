package timex

import (
	"testing"
	"time"
)

func TestTime_UnixMethods(t *testing.T) {
	// Create a fixed time
	// 创建一个固定时间
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tt := Time(now)

	// Test Unix()
	if tt.Unix() != now.Unix() {
		t.Errorf("Unix() = %v, want %v", tt.Unix(), now.Unix())
	}

	// Test UnixMilli()
	if tt.UnixMilli() != now.UnixMilli() {
		t.Errorf("UnixMilli() = %v, want %v", tt.UnixMilli(), now.UnixMilli())
	}

	// Test UnixMicro()
	if tt.UnixMicro() != now.UnixMicro() {
		t.Errorf("UnixMicro() = %v, want %v", tt.UnixMicro(), now.UnixMicro())
	}

	// Test UnixNano()
	if tt.UnixNano() != now.UnixNano() {
		t.Errorf("UnixNano() = %v, want %v", tt.UnixNano(), now.UnixNano())
	}

	// Verify it's not returning time.Now() by waiting a bit
	// 通过等待一会确认它不是返回 time.Now()
	time.Sleep(10 * time.Millisecond)
	if tt.Unix() != now.Unix() {
		t.Errorf("Unix() changed after sleep, it should be static. got %v, want %v", tt.Unix(), now.Unix())
	}
}

func TestTime_JSONAndScan(t *testing.T) {
	at := time.Date(2024, 3, 5, 8, 9, 10, 0, time.Local)

	b, err := Time(at).MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"2024-03-05 08:09:10"` {
		t.Fatalf("MarshalJSON() = %s", b)
	}

	var back Time
	if err := back.UnmarshalJSON(b); err != nil {
		t.Fatal(err)
	}
	if !back.Std().Equal(at) {
		t.Fatalf("UnmarshalJSON() = %v, want %v", back, at)
	}

	var zero Time
	if b, _ := zero.MarshalJSON(); string(b) != "null" {
		t.Fatalf("zero MarshalJSON() = %s", b)
	}

	var scanned Time
	if err := scanned.Scan("2024-03-05 08:09:10"); err != nil {
		t.Fatal(err)
	}
	if !scanned.Std().Equal(at) {
		t.Fatalf("Scan(string) = %v", scanned)
	}
	if err := scanned.Scan(42); err == nil {
		t.Fatal("Scan(int) should fail")
	}
}
