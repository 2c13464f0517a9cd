package utils

import (
	"fmt"
	"strings"
	"time"
)

// GenerateMRN builds a medical record number from the last six digits of
// the millisecond clock.
func GenerateMRN(now time.Time) string {
	return fmt.Sprintf("MRN%06d", now.UnixMilli()%1000000)
}

// PatientKey identifies a patient within a scribe session: the MRN when
// known, otherwise the lower-cased name with whitespace runs replaced by
// underscores.
func PatientKey(mrn, name string) string {
	if mrn != "" {
		return mrn
	}
	return strings.ToLower(strings.Join(strings.Fields(name), "_"))
}

// ApproximateDOB returns January 1st of the year the patient was born in,
// given an age in years.
func ApproximateDOB(now time.Time, age int) string {
	return fmt.Sprintf("%d-01-01", now.Year()-age)
}
