package model

import "testing"

func intPtr(v int) *int { return &v }

func TestListWindow_Resolve(t *testing.T) {
	testCases := []struct {
		name       string
		window     ListWindow
		wantLimit  int
		wantOffset int
	}{
		{"defaults", ListWindow{}, DefaultListLimit, 0},
		{"explicit", ListWindow{Limit: intPtr(20), Offset: intPtr(40)}, 20, 40},
		{"clamped to max", ListWindow{Limit: intPtr(5000)}, MaxListLimit, 0},
		{"negative offset ignored", ListWindow{Offset: intPtr(-3)}, DefaultListLimit, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			limit, offset := tc.window.Resolve()
			if limit != tc.wantLimit || offset != tc.wantOffset {
				t.Errorf("expected (%d, %d), got (%d, %d)", tc.wantLimit, tc.wantOffset, limit, offset)
			}
		})
	}
}
