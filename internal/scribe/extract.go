// Package scribe turns a running speech-to-text transcript into patient
// details and clinical note sections.
//
// Extraction is pattern based and runs over the whole transcript every
// time a chunk arrives; merging is idempotent so that repeated passes
// over a growing transcript never duplicate text.
package scribe

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

type Section string

const (
	ChiefComplaint          Section = "chiefComplaint"
	HistoryOfPresentIllness Section = "historyOfPresentIllness"
	PastMedicalHistory      Section = "pastMedicalHistory"
	Examination             Section = "examination"
	Diagnosis               Section = "diagnosis"
	Treatment               Section = "treatment"
	FollowUp                Section = "followUp"
)

// Sections lists every note section in display order.
var Sections = []Section{
	ChiefComplaint, HistoryOfPresentIllness, PastMedicalHistory,
	Examination, Diagnosis, Treatment, FollowUp,
}

var sectionLabels = map[Section]string{
	ChiefComplaint:          "Chief Complaint",
	HistoryOfPresentIllness: "History",
	PastMedicalHistory:      "Past History",
	Examination:             "Examination",
	Diagnosis:               "Diagnosis",
	Treatment:               "Treatment",
	FollowUp:                "Follow-up",
}

func (s Section) Label() string { return sectionLabels[s] }

type sectionSpec struct {
	Section  Section
	MinLen   int
	Patterns []*regexp.Regexp
}

// PatientFacts are the demographics detected in a transcript. Empty
// strings mean nothing valid was found.
type PatientFacts struct {
	Name   string `json:"name,omitempty"`
	Age    string `json:"age,omitempty"`
	Gender string `json:"gender,omitempty"`
}

// Fragment is one piece of clinical text found for a section.
type Fragment struct {
	Section Section `json:"section"`
	Text    string  `json:"text"`
}

// Extraction is the result of one pass over a transcript.
type Extraction struct {
	Patient   PatientFacts `json:"patient"`
	Fragments []Fragment   `json:"fragments"`
}

// Extract runs every pattern over text. When complete is false, fragments
// that run into the end of the text are held back because the speaker may
// still be in the middle of that sentence.
func Extract(text string, complete bool) Extraction {
	return Extraction{
		Patient:   DetectPatient(text),
		Fragments: ExtractSections(text, complete),
	}
}

// DetectPatient finds the patient's name, age and gender. For each field
// the patterns are tried in order and the first valid value wins.
func DetectPatient(text string) PatientFacts {
	return PatientFacts{
		Name:   detectName(text),
		Age:    detectAge(text),
		Gender: detectGender(text),
	}
}

func detectName(text string) string {
	for _, re := range namePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if name := cleanName(m[1]); name != "" {
				return name
			}
		}
	}
	return ""
}

// cleanName keeps the leading words of a captured run up to the first
// stop word and title-cases them.
func cleanName(raw string) string {
	var words []string
	for _, w := range strings.Fields(raw) {
		if nameStopWords[strings.ToLower(w)] || len(words) == maxNameWords {
			break
		}
		words = append(words, titleCase(w))
	}
	name := strings.Join(words, " ")
	if len(strings.ReplaceAll(name, " ", "")) < 2 {
		return ""
	}
	return name
}

func titleCase(w string) string {
	r := []rune(strings.ToLower(w))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func detectAge(text string) string {
	for _, re := range agePatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			n, err := strconv.Atoi(m[1])
			if err == nil && n > 0 && n < 120 {
				return strconv.Itoa(n)
			}
		}
	}
	return ""
}

func detectGender(text string) string {
	for _, re := range genderPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		switch g := strings.ToLower(m[1]); g {
		case "man", "boy":
			return "male"
		case "woman", "girl":
			return "female"
		default:
			return g
		}
	}
	return ""
}

// ExtractSections returns every fragment found, grouped by section in
// pattern order. Within a section, a match overlapping text already
// claimed by an earlier pattern is dropped, so "patient complains of
// headache" yields one fragment, not two.
func ExtractSections(text string, complete bool) []Fragment {
	var out []Fragment

	for _, spec := range sectionSpecs {
		var claimed [][2]int
		seen := make(map[string]bool)
		for _, re := range spec.Patterns {
			for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
				if loc[2] < 0 {
					continue
				}
				// Zero-width terminator at end of text: sentence still open.
				if !complete && loc[1] == len(text) && loc[3] == loc[1] {
					continue
				}
				span := [2]int{loc[2], loc[3]}
				frag := strings.TrimSpace(text[span[0]:span[1]])
				if len(frag) <= spec.MinLen || seen[frag] || overlaps(claimed, span) {
					continue
				}
				seen[frag] = true
				claimed = append(claimed, span)
				out = append(out, Fragment{Section: spec.Section, Text: frag})
			}
		}
	}
	return out
}

func overlaps(claimed [][2]int, span [2]int) bool {
	for _, c := range claimed {
		if span[0] < c[1] && c[0] < span[1] {
			return true
		}
	}
	return false
}
