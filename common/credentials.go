package common

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/comcast/ilohwmetrics/config"
	cm_vault "github.com/comcast/ilohwmetrics/vault"
	"go.uber.org/zap"
)

var (
	ChassisCreds = ChassisCredentials{
		Creds: make(map[string]*Credential),
	}

	ErrVaultNotConfigured = errors.New("vault client not configured")

	log *zap.Logger
)

type ChassisCredentials struct {
	mu     sync.Mutex
	Creds  map[string]*Credential
	Vault  *cm_vault.Vault
	Secret *cm_vault.SecretProperties
}

type Credential struct {
	User string
	Pass string
}

func (c *ChassisCredentials) Get(key string) (*Credential, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	val, ok := c.Creds[key]
	return val, ok
}

func (c *ChassisCredentials) Set(key string, value *Credential) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Creds[key] = value
}

func (c *ChassisCredentials) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.Creds, key)
}

// Resolve returns the BMC credential for target. Without vault the
// statically configured user and password are used.
func (c *ChassisCredentials) Resolve(ctx context.Context, target string) (*Credential, error) {
	if cred, ok := c.Get(target); ok {
		return cred, nil
	}

	if c.Vault == nil {
		return &Credential{
			User: config.GetConfig().User,
			Pass: config.GetConfig().Pass,
		}, nil
	}

	cred, err := c.GetCredentials(ctx, target)
	if err != nil {
		return nil, err
	}
	c.Set(target, cred)
	return cred, nil
}

func (c *ChassisCredentials) GetCredentials(ctx context.Context, target string) (*Credential, error) {
	var ok bool
	var user, pass string

	log = zap.L()

	if c.Vault == nil || c.Secret == nil {
		log.Error("issue retrieving credentials from vault using target "+target, zap.Error(ErrVaultNotConfigured))
		return nil, fmt.Errorf("issue retrieving credentials from vault using target %s: %w", target, ErrVaultNotConfigured)
	}

	if !c.Vault.IsLoggedIn() {
		if err := c.Vault.Login(ctx); err != nil {
			log.Error("unable to authenticate to vault", zap.Error(err))
			return nil, err
		}
	}

	secret, err := c.Vault.GetKVSecret(ctx, c.Secret, target)
	if err != nil {
		log.Error("issue retrieving credentials from vault using target "+target, zap.Error(err))
		return nil, fmt.Errorf("issue retrieving credentials from vault using target %s: %w", target, err)
	}

	if user, ok = secret.Data[c.Secret.UserField].(string); !ok {
		return nil, fmt.Errorf("the secret retrieved from vault using target %s is missing the %q field", target, c.Secret.UserField)
	}

	if pass, ok = secret.Data[c.Secret.PasswordField].(string); !ok {
		return nil, fmt.Errorf("the secret retrieved from vault using target %s is missing the %q field", target, c.Secret.PasswordField)
	}

	return &Credential{
		User: user,
		Pass: pass,
	}, nil
}
