package credentials

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/compute/metadata"
	"github.com/golang-jwt/jwt"
	"golang.org/x/oauth2"
)

// signIDToken returns a JWT signed with a throwaway key. The credential
// sources never verify signatures, they only read the exp claim.
func signIDToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return raw
}

func TestNewTokenSourceFromJSON(t *testing.T) {
	type args struct {
		json     string
		audience string
	}
	tests := []struct {
		name    string
		args    args
		wantErr string
	}{
		{
			name: "AuthorizedUser",
			args: args{
				json:     `{"type":"authorized_user","client_id":"id.apps.googleusercontent.com","client_secret":"secret","refresh_token":"refresh"}`,
				audience: "https://my-service.a.run.app",
			},
		},
		{
			name: "AuthorizedUser:NoAudience",
			args: args{
				json:     `{"type":"authorized_user","client_id":"id.apps.googleusercontent.com","client_secret":"secret","refresh_token":"refresh"}`,
				audience: "",
			},
		},
		{
			name: "ServiceAccount:NoAudience",
			args: args{
				json:     `{"type":"service_account","project_id":"my-project"}`,
				audience: "",
			},
			wantErr: "an audience is required",
		},
		{
			name: "InvalidType",
			args: args{
				json:     `{"type":"external_account"}`,
				audience: "https://my-service.a.run.app",
			},
			wantErr: "invalid credentials type",
		},
		{
			name: "InvalidJSON",
			args: args{
				json:     `{"type":`,
				audience: "https://my-service.a.run.app",
			},
			wantErr: "not valid JSON",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := NewTokenSource(context.Background(), tt.args.audience,
				WithCredentialsJSON([]byte(tt.args.json)))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("NewTokenSource() error = %v, want nil", err)
				}
				if ts == nil {
					t.Fatal("NewTokenSource() returned a nil token source")
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("NewTokenSource() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestNewTokenSourceFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.json")
	if err := os.WriteFile(path, []byte(`{"type":"authorized_user","client_id":"id","client_secret":"secret","refresh_token":"refresh"}`), 0600); err != nil {
		t.Fatal(err)
	}

	ts, err := NewTokenSource(context.Background(), "https://my-service.a.run.app", WithCredentialsFile(path))
	if err != nil {
		t.Fatalf("NewTokenSource() error = %v, want nil", err)
	}
	if ts == nil {
		t.Fatal("NewTokenSource() returned a nil token source")
	}
}

func TestNewTokenSourceMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.json")

	_, err := NewTokenSource(context.Background(), "https://my-service.a.run.app", WithCredentialsFile(path))
	if err == nil {
		t.Fatal("NewTokenSource() error = nil, want error for missing file")
	}
}

func TestNewTokenSourceExplicitEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.json")
	if err := os.WriteFile(path, []byte(`{"type":"authorized_user","client_id":"id","client_secret":"secret","refresh_token":"refresh"}`), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvVar, path)

	ts, err := NewTokenSource(context.Background(), "https://my-service.a.run.app")
	if err != nil {
		t.Fatalf("NewTokenSource() error = %v, want nil", err)
	}
	if ts == nil {
		t.Fatal("NewTokenSource() returned a nil token source")
	}
}

func TestNewTokenSourceNoAmbientCredentials(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on HOME for the gcloud credentials path")
	}
	if metadata.OnGCE() {
		t.Skip("running on GCE, the metadata server would resolve an identity")
	}
	// Point the chain at an empty environment.
	t.Setenv(EnvVar, "")
	t.Setenv("HOME", t.TempDir())

	_, err := NewTokenSource(context.Background(), "https://my-service.a.run.app")
	if !errors.Is(err, ErrCredentialsNotFound) {
		t.Errorf("NewTokenSource() error = %v, want ErrCredentialsNotFound", err)
	}
}

func TestTokenExpiry(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)

	tests := []struct {
		name    string
		raw     string
		want    time.Time
		wantErr bool
	}{
		{
			name: "Valid",
			raw: signIDToken(t, jwt.MapClaims{
				"aud": "https://my-service.a.run.app",
				"exp": expiry.Unix(),
			}),
			want: expiry,
		},
		{
			name:    "NoExpClaim",
			raw:     signIDToken(t, jwt.MapClaims{"aud": "https://my-service.a.run.app"}),
			wantErr: true,
		},
		{
			name:    "NotAToken",
			raw:     "definitely-not-a-jwt",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tokenExpiry(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("tokenExpiry() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("tokenExpiry() = %v, want %v", got, tt.want)
			}
		})
	}
}

type staticTokenSource struct {
	token *oauth2.Token
	err   error
}

func (s staticTokenSource) Token() (*oauth2.Token, error) {
	return s.token, s.err
}

func TestUserIDTokenSource(t *testing.T) {
	expiry := time.Now().Add(time.Hour).Truncate(time.Second)
	raw := signIDToken(t, jwt.MapClaims{"exp": expiry.Unix()})

	base := (&oauth2.Token{AccessToken: "access"}).WithExtra(map[string]interface{}{
		"id_token": raw,
	})
	ts := &userIDTokenSource{base: staticTokenSource{token: base}}

	token, err := ts.Token()
	if err != nil {
		t.Fatalf("Token() error = %v, want nil", err)
	}
	if token.AccessToken != raw {
		t.Errorf("Token() access token = %q, want the raw id_token", token.AccessToken)
	}
	if !token.Expiry.Equal(expiry) {
		t.Errorf("Token() expiry = %v, want %v", token.Expiry, expiry)
	}
}

func TestUserIDTokenSourceMissingIDToken(t *testing.T) {
	ts := &userIDTokenSource{base: staticTokenSource{token: &oauth2.Token{AccessToken: "access"}}}

	if _, err := ts.Token(); err == nil {
		t.Fatal("Token() error = nil, want error for a response without id_token")
	}
}
