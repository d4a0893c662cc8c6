package common

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/comcast/ilohwmetrics/config"
	cm_vault "github.com/comcast/ilohwmetrics/vault"
	"github.com/stretchr/testify/assert"
)

func Test_Resolve_Static(t *testing.T) {
	assert := assert.New(t)

	cfg := config.GetConfig()
	cfg.User = "Administrator"
	cfg.Pass = "Administrator"

	creds := ChassisCredentials{Creds: make(map[string]*Credential)}
	cred, err := creds.Resolve(context.Background(), "10.0.0.5")
	assert.Nil(err)
	assert.Equal(&Credential{User: "Administrator", Pass: "Administrator"}, cred)

	creds.Set("10.0.0.5", &Credential{User: "cached", Pass: "cached"})
	cred, err = creds.Resolve(context.Background(), "10.0.0.5")
	assert.Nil(err)
	assert.Equal("cached", cred.User)
}

func Test_Resolve_Vault(t *testing.T) {
	ctx := context.Background()
	assert := assert.New(t)
	t.Setenv("VAULT_TOKEN", "")

	var logins int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/auth/approle/login":
			atomic.AddInt32(&logins, 1)
			w.Write([]byte(`{"auth":{"client_token":"hvs.testtoken","lease_duration":3600,"renewable":true}}`))
		case "/v1/secret/ilo/10.0.0.5":
			w.Write([]byte(`{"data":{"username":"vaultuser","password":"vaultpass"}}`))
		case "/v1/secret/ilo/10.0.0.6":
			w.Write([]byte(`{"data":{"username":"vaultuser"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"errors":[]}`))
		}
	}))
	defer server.Close()

	v, err := cm_vault.NewVaultAppRoleClient(ctx, cm_vault.Parameters{
		Address:         server.URL,
		ApproleRoleID:   "role",
		ApproleSecretID: "secret",
	})
	assert.Nil(err)

	creds := ChassisCredentials{
		Creds: make(map[string]*Credential),
		Vault: v,
		Secret: &cm_vault.SecretProperties{
			MountPath:     "secret",
			Path:          "ilo",
			UserField:     "username",
			PasswordField: "password",
		},
	}

	cred, err := creds.Resolve(ctx, "10.0.0.5")
	assert.Nil(err)
	assert.Equal(&Credential{User: "vaultuser", Pass: "vaultpass"}, cred)

	// second lookup is served from the cache
	_, err = creds.Resolve(ctx, "10.0.0.5")
	assert.Nil(err)
	assert.Equal(int32(1), atomic.LoadInt32(&logins))

	_, err = creds.Resolve(ctx, "10.0.0.6")
	assert.NotNil(err)

	_, err = creds.Resolve(ctx, "10.0.0.7")
	assert.NotNil(err)
}

func Test_GetCredentials_NoVault(t *testing.T) {
	creds := ChassisCredentials{Creds: make(map[string]*Credential)}
	_, err := creds.GetCredentials(context.Background(), "10.0.0.5")
	assert.ErrorIs(t, err, ErrVaultNotConfigured)
}
