package field

import "testing"

func TestKeyValidate(t *testing.T) {
	tests := []struct {
		name    string
		key     Key
		kind    Kind
		wantErr bool
	}{
		{"one-liner ok", Key{Year: 2024, Month: 3, Day: 15}, KindOneLiner, false},
		{"one-liner missing day", Key{Year: 2024, Month: 3}, KindOneLiner, true},
		{"habit check ok", Key{Year: 2024, Month: 3, Day: 15, Habit: 2}, KindHabitCheck, false},
		{"habit check missing habit", Key{Year: 2024, Month: 3, Day: 15}, KindHabitCheck, true},
		{"habit check habit too large", Key{Year: 2024, Month: 3, Day: 15, Habit: 6}, KindHabitCheck, true},
		{"label ok without day", Key{Year: 2024, Month: 3, Habit: 4}, KindHabitLabel, false},
		{"best day needs only month", Key{Year: 2024, Month: 3}, KindBestDay, false},
		{"month out of range", Key{Year: 2024, Month: 13}, KindBestDay, true},
		{"journal ok", Key{Year: 2024, Month: 3, Day: 1}, KindJournal, false},
		{"day out of range", Key{Year: 2024, Month: 3, Day: 32}, KindJournal, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.key.Validate(tt.kind)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestKindEndpoint(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindOneLiner, "/api/save-oneliner"},
		{KindHabitCheck, "/api/save-habit"},
		{KindHabitLabel, "/api/update-habit-name"},
		{KindBestDay, "/api/save-best-day"},
		{KindJournal, "/api/save-journal"},
	}
	for _, tt := range tests {
		if got := tt.kind.Endpoint(); got != tt.want {
			t.Errorf("%s: endpoint = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestMonthArithmetic(t *testing.T) {
	if y, m := PrevMonth(2024, 1); y != 2023 || m != 12 {
		t.Errorf("PrevMonth(2024, 1) = %d, %d", y, m)
	}
	if y, m := NextMonth(2024, 12); y != 2025 || m != 1 {
		t.Errorf("NextMonth(2024, 12) = %d, %d", y, m)
	}
	if y, m := PrevMonth(2024, 6); y != 2024 || m != 5 {
		t.Errorf("PrevMonth(2024, 6) = %d, %d", y, m)
	}
	if y, m := NextMonth(2024, 6); y != 2024 || m != 7 {
		t.Errorf("NextMonth(2024, 6) = %d, %d", y, m)
	}
}

func TestDefaultLabel(t *testing.T) {
	if got := DefaultLabel(3); got != "Habit 3" {
		t.Errorf("DefaultLabel(3) = %q", got)
	}
}
