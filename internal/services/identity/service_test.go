package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-long-enough!"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "plain name", input: "Coach Alex", want: "Coach Alex"},
		{name: "trims whitespace", input: "  Sam  ", want: "Sam"},
		{name: "empty", input: "", wantErr: ErrNameRequired},
		{name: "whitespace only", input: "   ", wantErr: ErrNameRequired},
		{name: "colon rejected", input: "Alex: QB coach", wantErr: ErrNameInvalid},
		{name: "newline rejected", input: "Alex\nSam", wantErr: ErrNameInvalid},
		{name: "too long", input: string(make([]byte, 80)), wantErr: ErrNameInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeName(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIssueAndVerify(t *testing.T) {
	svc := NewService(testSecret, time.Hour)

	token, normalized, err := svc.Issue("  Coach Alex ")
	require.NoError(t, err)
	assert.Equal(t, "Coach Alex", normalized)

	coach, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "Coach Alex", coach)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	token, _, err := NewService(testSecret, time.Hour).Issue("Alex")
	require.NoError(t, err)

	_, err = NewService("another-secret-key-also-long-enough!", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc := NewService(testSecret, time.Hour)
	token, _, err := svc.Issue("Alex")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := NewService(testSecret, time.Hour)
	_, err := svc.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
