package utils

import (
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("doctor123", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "doctor123", hash)
	assert.True(t, CheckPasswordHash("doctor123", hash))
	assert.False(t, CheckPasswordHash("patient123", hash))
}

func TestTokenIssuer(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	token, err := issuer.Generate("abc", "doctor")
	require.NoError(t, err)

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "abc", claims.UserID)
	assert.Equal(t, "doctor", claims.UserType)

	_, err = NewTokenIssuer("other", time.Hour).Validate(token)
	assert.Error(t, err)
}

func TestTokenIssuerExpired(t *testing.T) {
	issuer := NewTokenIssuer("secret", -time.Minute)

	token, err := issuer.Generate("abc", "patient")
	require.NoError(t, err)

	_, err = issuer.Validate(token)
	assert.Error(t, err)
}

func TestTokenIssuerMissingSecret(t *testing.T) {
	_, err := NewTokenIssuer("", time.Hour).Generate("abc", "doctor")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestGenerateMRN(t *testing.T) {
	now := time.UnixMilli(1718000123456)
	assert.Equal(t, "MRN123456", GenerateMRN(now))

	now = time.UnixMilli(1718000000042)
	assert.Equal(t, "MRN000042", GenerateMRN(now))
}

func TestPatientKey(t *testing.T) {
	assert.Equal(t, "MRN001", PatientKey("MRN001", "John Smith"))
	assert.Equal(t, "john_smith", PatientKey("", "John  Smith"))
	assert.Equal(t, "", PatientKey("", "  "))
}

func TestApproximateDOB(t *testing.T) {
	now := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "1981-01-01", ApproximateDOB(now, 45))
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		name      string
		page      string
		limit     string
		wantPage  int
		wantLimit int
		wantErr   bool
	}{
		{name: "defaults", wantPage: 1, wantLimit: 10},
		{name: "explicit", page: "3", limit: "25", wantPage: 3, wantLimit: 25},
		{name: "capped", page: "1", limit: "1000", wantPage: 1, wantLimit: MaxLimit},
		{name: "zero page", page: "0", wantErr: true},
		{name: "bad limit", limit: "ten", wantErr: true},
		{name: "negative limit", limit: "-1", wantErr: true},
		{name: "offset overflows", page: "922337203685477581", limit: "100", wantErr: true},
		{name: "largest page", page: strconv.Itoa(math.MaxInt/MaxLimit + 1), limit: "100", wantPage: math.MaxInt/MaxLimit + 1, wantLimit: MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit, err := ParsePage(tt.page, tt.limit)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPagination)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 25)
	assert.Equal(t, 2, p.CurrentPage)
	assert.Equal(t, 3, p.TotalPages)
	assert.EqualValues(t, 25, p.TotalRecords)

	assert.Equal(t, 0, NewPagination(1, 10, 0).TotalPages)
}
