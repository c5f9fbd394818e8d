package user

import (
	"testing"

	"github.com/panjilaras/Dashboard-PI/internal/model"
)

func TestCreateUserPayload_Validate(t *testing.T) {
	role := RoleManager
	badRole := Role("owner")
	date := "2024-03-01"
	badDate := "01/03/2024"

	testCases := []struct {
		name    string
		payload CreateUserPayload
		wantErr bool
	}{
		{"minimal", CreateUserPayload{Name: "Ana", Email: "ana@company.com"}, false},
		{"full", CreateUserPayload{Name: "Ana", Email: "ana@company.com", Role: &role, JoinDate: &date}, false},
		{"blank name", CreateUserPayload{Name: "   ", Email: "ana@company.com"}, true},
		{"bad email", CreateUserPayload{Name: "Ana", Email: "ana"}, true},
		{"unknown role", CreateUserPayload{Name: "Ana", Email: "ana@company.com", Role: &badRole}, true},
		{"bad join date", CreateUserPayload{Name: "Ana", Email: "ana@company.com", JoinDate: &badDate}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.payload.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("wantErr=%v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCreateUserPayload_NormalizesEmail(t *testing.T) {
	p := CreateUserPayload{Name: "Ana", Email: "  Ana@Company.COM "}
	if err := p.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Email != "ana@company.com" {
		t.Errorf("expected normalized email, got %q", p.Email)
	}
}

func TestDeleteUserPayload_RequiresID(t *testing.T) {
	if err := (&DeleteUserPayload{}).Validate(); err == nil {
		t.Error("expected error for missing id")
	}
	if err := (&DeleteUserPayload{IDParam: model.IDParam{ID: 3}}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
