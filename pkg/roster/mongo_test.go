package roster

import (
	"testing"

	"badgeforge/pkg/errors"
)

func strptr(s string) *string { return &s }

func TestEntityDocToEntity(t *testing.T) {
	tests := []struct {
		name string
		doc  entityDoc
		want Entity
	}{
		{
			name: "team name preferred",
			doc:  entityDoc{EntityID: strptr("E1"), EntityType: "Delegation", TeamName: "Alpha", InstitutionName: "Uni A"},
			want: Entity{ID: "E1", Type: "Delegation", DisplayName: "Alpha"},
		},
		{
			name: "all fields trimmed, institution fallback",
			doc:  entityDoc{EntityID: strptr(" E2 "), EntityType: " Private Delegate ", TeamName: " ", InstitutionName: " Uni B "},
			want: Entity{ID: "E2", Type: "Private Delegate", DisplayName: "Uni B"},
		},
		{
			name: "absent optional fields default to empty",
			doc:  entityDoc{EntityID: strptr("E3")},
			want: Entity{ID: "E3"},
		},
		{
			name: "present but empty key tolerated",
			doc:  entityDoc{EntityID: strptr(""), EntityType: "Delegation"},
			want: Entity{Type: "Delegation"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.doc.toEntity()
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("toEntity() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEntityDocMissingKey(t *testing.T) {
	_, err := entityDoc{EntityType: "Delegation", TeamName: "Alpha"}.toEntity()
	if !errors.Is(err, errors.ErrCodeMissingKey) {
		t.Errorf("err = %v, want MISSING_KEY", err)
	}
}

func TestParticipantDocToParticipant(t *testing.T) {
	tests := []struct {
		name     string
		doc      participantDoc
		wantID   string
		wantPart Participant
	}{
		{
			name:     "plain document",
			doc:      participantDoc{EntityID: strptr("E1"), ParticipantID: "P1", Name: "Alice"},
			wantID:   "E1",
			wantPart: Participant{ID: "P1", Name: "Alice"},
		},
		{
			name:     "whitespace trimmed from every field",
			doc:      participantDoc{EntityID: strptr(" E1 "), ParticipantID: " P1 ", Name: " Alice "},
			wantID:   "E1",
			wantPart: Participant{ID: "P1", Name: "Alice"},
		},
		{
			name:     "absent optional fields default to empty",
			doc:      participantDoc{EntityID: strptr("E1")},
			wantID:   "E1",
			wantPart: Participant{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entityID, p, err := tt.doc.toParticipant()
			if err != nil {
				t.Fatal(err)
			}
			if entityID != tt.wantID {
				t.Errorf("entity ID = %q, want %q", entityID, tt.wantID)
			}
			if p != tt.wantPart {
				t.Errorf("participant = %+v, want %+v", p, tt.wantPart)
			}
		})
	}
}

func TestParticipantDocMissingKey(t *testing.T) {
	_, _, err := participantDoc{ParticipantID: "P1", Name: "Alice"}.toParticipant()
	if !errors.Is(err, errors.ErrCodeMissingKey) {
		t.Errorf("err = %v, want MISSING_KEY", err)
	}
}
