package service

import (
	"testing"

	"disability-services-api/config"
	"disability-services-api/internal/domain/entity"

	"github.com/google/uuid"
)

func TestSlotRefKey(t *testing.T) {
	locationID := uuid.MustParse("7f9c24e5-2f1a-4b3c-9e8d-1a2b3c4d5e6f")
	under15 := entity.AgeGroupUnder15

	tests := []struct {
		name string
		ref  SlotRef
		want string
	}{
		{
			name: "resource center without cohort",
			ref: SlotRef{
				Date:         "2026-09-01",
				Time:         "09:00",
				LocationType: entity.LocationResourceCenter,
			},
			want: "slot:quota:RESOURCE_CENTER:rc:2026-09-01:09:00:any",
		},
		{
			name: "resource center with cohort",
			ref: SlotRef{
				Date:         "2026-09-01",
				Time:         "09:00",
				LocationType: entity.LocationResourceCenter,
				AgeGroup:     &under15,
			},
			want: "slot:quota:RESOURCE_CENTER:rc:2026-09-01:09:00:under15",
		},
		{
			name: "outreach location",
			ref: SlotRef{
				Date:               "2026-09-03",
				Time:               "11:00",
				LocationType:       entity.LocationOutreach,
				OutreachLocationID: &locationID,
			},
			want: "slot:quota:OUTREACH:7f9c24e5-2f1a-4b3c-9e8d-1a2b3c4d5e6f:2026-09-03:11:00:any",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ref.Key(); got != tt.want {
				t.Errorf("Key() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCohortSplit(t *testing.T) {
	split := config.BookingConfig{Under15Capacity: 2, Over15Capacity: 3}
	noSplit := config.BookingConfig{ResourceCenterCapacity: 3}
	partial := config.BookingConfig{Under15Capacity: 2}

	if !CohortSplit(split, entity.LocationResourceCenter) {
		t.Error("expected split when both cohort capacities are set")
	}
	if CohortSplit(noSplit, entity.LocationResourceCenter) {
		t.Error("expected no split without cohort capacities")
	}
	if CohortSplit(partial, entity.LocationResourceCenter) {
		t.Error("expected no split when only one cohort capacity is set")
	}
	if CohortSplit(split, entity.LocationOutreach) {
		t.Error("outreach locations never split by age group")
	}
}

// A cohort-tagged appointment whose deployment has the split disabled must
// reserve and restore on the shared key, never on a cohort key.
func TestNewSlotRefGatesCohort(t *testing.T) {
	under15 := entity.AgeGroupUnder15
	locationID := uuid.New()

	split := config.BookingConfig{Under15Capacity: 2, Over15Capacity: 3}
	noSplit := config.BookingConfig{ResourceCenterCapacity: 3}

	ref := NewSlotRef(noSplit, "2026-09-01", "09:00", entity.LocationResourceCenter, nil, &under15)
	if ref.AgeGroup != nil {
		t.Error("split disabled: ref must not carry the age group")
	}

	ref = NewSlotRef(split, "2026-09-01", "09:00", entity.LocationResourceCenter, nil, &under15)
	if ref.AgeGroup == nil || *ref.AgeGroup != entity.AgeGroupUnder15 {
		t.Error("split enabled: ref must carry the age group")
	}

	ref = NewSlotRef(split, "2026-09-03", "11:00", entity.LocationOutreach, &locationID, &under15)
	if ref.AgeGroup != nil {
		t.Error("outreach slots never key by age group")
	}

	ref = NewSlotRef(split, "2026-09-01", "09:00", entity.LocationResourceCenter, nil, nil)
	if ref.AgeGroup != nil {
		t.Error("untagged appointment keys onto the undivided slot")
	}
}

func TestSlotRefKeyDistinguishesCohorts(t *testing.T) {
	under15 := entity.AgeGroupUnder15
	over15 := entity.AgeGroup15Plus

	base := SlotRef{Date: "2026-09-01", Time: "09:00", LocationType: entity.LocationResourceCenter}
	a := base
	a.AgeGroup = &under15
	b := base
	b.AgeGroup = &over15

	if a.Key() == b.Key() {
		t.Error("cohort keys must not collide")
	}
	if a.Key() == base.Key() {
		t.Error("cohort key must differ from undivided key")
	}
}
