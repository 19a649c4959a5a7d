package permissions

import "testing"

func TestHasAtLeast(t *testing.T) {
	tests := []struct {
		role     Role
		required Role
		want     bool
	}{
		{RoleOwner, RoleAdmin, true},
		{RoleAdmin, RoleAdmin, true},
		{RoleMod, RoleAdmin, false},
		{RoleVIP, RoleMember, true},
		{RoleMember, RoleMod, false},
		{Role("INTERN"), RoleMember, false},
		{RoleMember, Role("INTERN"), true},
	}

	for _, tt := range tests {
		if got := HasAtLeast(tt.role, tt.required); got != tt.want {
			t.Errorf("HasAtLeast(%s, %s) = %v, want %v", tt.role, tt.required, got, tt.want)
		}
	}
}
