package notify

import (
	"reflect"
	"testing"

	"github.com/safesight/safesight-backend/internal/detection"
	"github.com/safesight/safesight-backend/internal/shared"
)

func TestGroupsForRole(t *testing.T) {
	cases := []struct {
		name     string
		role     shared.Role
		workerID string
		want     []string
	}{
		{"worker gets private group", shared.RoleWorker, "wrk_9", []string{"worker_wrk_9"}},
		{"worker without id gets nothing", shared.RoleWorker, "", nil},
		{"admin", shared.RoleAdmin, "", []string{GroupAdmins, GroupMonitoring}},
		{"supervisor", shared.RoleSupervisor, "", []string{GroupAdmins, GroupMonitoring}},
		{"operator", shared.RoleOperator, "", []string{GroupAdmins, GroupMonitoring}},
		{"viewer", shared.RoleViewer, "", []string{GroupAdmins, GroupMonitoring}},
		{"unknown role", shared.Role("intruder"), "wrk_9", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := GroupsForRole(tc.role, tc.workerID)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("GroupsForRole(%s, %q) = %v, want %v", tc.role, tc.workerID, got, tc.want)
			}
		})
	}
}

func TestCalculateSeverity(t *testing.T) {
	required := []detection.PPEType{
		detection.PPEHardHat, detection.PPEVest, detection.PPEGloves, detection.PPESteelToedBoots,
	}

	cases := []struct {
		name    string
		missing []detection.PPEType
		want    string
	}{
		{"one of four", []detection.PPEType{detection.PPEGloves}, "low"},
		{"two of four is the boundary", []detection.PPEType{detection.PPEGloves, detection.PPEVest}, "high"},
		{"all missing", required, "high"},
		{"nothing missing", nil, "low"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CalculateSeverity(tc.missing, required); got != tc.want {
				t.Errorf("CalculateSeverity(%v) = %s, want %s", tc.missing, got, tc.want)
			}
		})
	}

	if got := CalculateSeverity([]detection.PPEType{detection.PPEHardHat}, nil); got != "low" {
		t.Errorf("empty required must be low, got %s", got)
	}
}

func TestViolationGroups(t *testing.T) {
	id := "wrk_5"
	got := violationGroups(&id)
	want := []string{"worker_wrk_5", GroupAdmins, GroupMonitoring}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("violationGroups = %v, want %v", got, want)
	}

	anon := violationGroups(nil)
	if !reflect.DeepEqual(anon, []string{GroupAdmins, GroupMonitoring}) {
		t.Errorf("anonymous violationGroups = %v", anon)
	}
}

func TestViolationMessage(t *testing.T) {
	msg := violationMessage("Dana", []detection.PPEType{detection.PPEHardHat, detection.PPEVest})
	if msg != "Dana is missing required PPE: hardHat, vest" {
		t.Errorf("unexpected message: %q", msg)
	}

	anon := violationMessage("", []detection.PPEType{detection.PPEVest})
	if anon != "Unidentified worker is missing required PPE: vest" {
		t.Errorf("unexpected anonymous message: %q", anon)
	}
}
