package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims jwt.RegisteredClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestJWTVerifier_Verify(t *testing.T) {
	const secret = "test-secret"
	now := time.Now()

	tests := []struct {
		name     string
		token    string
		wantID   string
		wantErr  bool
	}{
		{
			name: "valid token",
			token: signToken(t, secret, jwt.RegisteredClaims{
				Subject:   "psy-1",
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			}),
			wantID: "psy-1",
		},
		{
			name: "expired token",
			token: signToken(t, secret, jwt.RegisteredClaims{
				Subject:   "psy-1",
				IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
				ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
			}),
			wantErr: true,
		},
		{
			name: "wrong secret",
			token: signToken(t, "other-secret", jwt.RegisteredClaims{
				Subject:   "psy-1",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			}),
			wantErr: true,
		},
		{
			name: "missing subject",
			token: signToken(t, secret, jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			}),
			wantErr: true,
		},
		{
			name:    "garbage",
			token:   "not-a-token",
			wantErr: true,
		},
	}

	verifier := NewJWTVerifier(secret)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := verifier.Verify(tt.token)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
		})
	}
}
