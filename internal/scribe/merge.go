package scribe

import (
	"strings"

	"github.com/harentsoaR/lipi-scribe-api/internal/models"
)

// Update describes one change applied to the draft, for the client to
// surface as a notification.
type Update struct {
	Field string `json:"field"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// MergePatient copies detected facts that differ from the current details.
func MergePatient(p *models.PatientDetails, facts PatientFacts) []Update {
	var updates []Update
	set := func(dst *string, v, field, label string) {
		if v == "" || v == *dst {
			return
		}
		*dst = v
		updates = append(updates, Update{Field: field, Label: label, Value: v})
	}
	set(&p.Name, facts.Name, "name", "Patient Name")
	set(&p.Age, facts.Age, "age", "Patient Age")
	set(&p.Gender, facts.Gender, "gender", "Patient Gender")
	return updates
}

// MergeNote appends each fragment to its section unless the section
// already contains it. Appended fragments are joined with ". ".
func MergeNote(note *models.ClinicalNote, fragments []Fragment) []Update {
	var updates []Update
	for _, f := range fragments {
		field := sectionField(note, f.Section)
		if field == nil || containsFold(*field, f.Text) {
			continue
		}
		if *field == "" {
			*field = f.Text
		} else {
			*field = *field + ". " + f.Text
		}
		updates = append(updates, Update{Field: string(f.Section), Label: f.Section.Label(), Value: f.Text})
	}
	return updates
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func sectionField(note *models.ClinicalNote, s Section) *string {
	switch s {
	case ChiefComplaint:
		return &note.ChiefComplaint
	case HistoryOfPresentIllness:
		return &note.HistoryOfPresentIllness
	case PastMedicalHistory:
		return &note.PastMedicalHistory
	case Examination:
		return &note.Examination
	case Diagnosis:
		return &note.Diagnosis
	case Treatment:
		return &note.Treatment
	case FollowUp:
		return &note.FollowUp
	}
	return nil
}

// HasSignificantContent reports whether the note is worth auto-saving.
func HasSignificantContent(note models.ClinicalNote) bool {
	return len(note.ChiefComplaint) > 10 ||
		len(note.Diagnosis) > 5 ||
		len(note.Treatment) > 5
}

// ShouldAutoSave requires an identified patient on top of significant
// clinical content.
func ShouldAutoSave(p models.PatientDetails, note models.ClinicalNote) bool {
	return p.Name != "" && p.Age != "" && HasSignificantContent(note)
}
