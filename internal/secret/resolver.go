package secret

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/99designs/keyring"
	"github.com/viant/scy"
	"github.com/viant/scy/cred"
	"github.com/viant/servicenow-mcp/servicenow"
)

// Keys used in the OS keyring.
const (
	KeyUsername = "username"
	KeyPassword = "password"
)

// Source lists the places an account may come from.
type Source struct {
	Username  string
	Password  string
	SecretURL string
	SecretKey string
	Keyring   string
}

// Resolver turns a Source into credentials.
type Resolver struct {
	openRing   func(service string) (keyring.Keyring, error)
	loadSecret func(ctx context.Context, URL, key string) (*cred.Basic, error)
}

// NewResolver returns a resolver backed by the OS keyring and scy.
func NewResolver() *Resolver {
	return &Resolver{openRing: OpenRing, loadSecret: loadBasic}
}

// Resolve fills missing parts of the inline account from the secret
// resource and then from the keyring. A username is mandatory.
func (r *Resolver) Resolve(ctx context.Context, source Source) (servicenow.Credentials, error) {
	ret := servicenow.Credentials{Username: source.Username, Password: source.Password}
	if ret.Username != "" && ret.Password != "" {
		return ret, nil
	}
	if source.SecretURL != "" {
		basic, err := r.loadSecret(ctx, source.SecretURL, source.SecretKey)
		if err != nil {
			return ret, fmt.Errorf("load secret %q: %w", source.SecretURL, err)
		}
		fill(&ret, basic.Username, basic.Password)
	}
	if (ret.Username == "" || ret.Password == "") && source.Keyring != "" {
		ring, err := r.openRing(source.Keyring)
		if err != nil {
			return ret, fmt.Errorf("open keyring %q: %w", source.Keyring, err)
		}
		username, err := get(ring, KeyUsername)
		if err != nil {
			return ret, err
		}
		password, err := get(ring, KeyPassword)
		if err != nil {
			return ret, err
		}
		fill(&ret, username, password)
	}
	if ret.Username == "" {
		return ret, errors.New("username is required")
	}
	return ret, nil
}

// Store saves an account in the keyring service.
func (r *Resolver) Store(service string, credentials servicenow.Credentials) error {
	ring, err := r.openRing(service)
	if err != nil {
		return fmt.Errorf("open keyring %q: %w", service, err)
	}
	if err := ring.Set(keyring.Item{Key: KeyUsername, Data: []byte(credentials.Username), Label: service + " username"}); err != nil {
		return fmt.Errorf("store username: %w", err)
	}
	if err := ring.Set(keyring.Item{Key: KeyPassword, Data: []byte(credentials.Password), Label: service + " password"}); err != nil {
		return fmt.Errorf("store password: %w", err)
	}
	return nil
}

func fill(target *servicenow.Credentials, username, password string) {
	if target.Username == "" {
		target.Username = username
	}
	if target.Password == "" {
		target.Password = password
	}
}

func get(ring keyring.Keyring, key string) (string, error) {
	item, err := ring.Get(key)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("read keyring %q: %w", key, err)
	}
	return string(item.Data), nil
}

// OpenRing opens the native credential store for service; file based
// backends are excluded because they prompt for a passphrase.
func OpenRing(service string) (keyring.Keyring, error) {
	var allowed []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		allowed = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowed = []keyring.BackendType{keyring.WinCredBackend}
	default:
		allowed = []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend, keyring.KeyCtlBackend}
	}
	cfg := keyring.Config{
		ServiceName:     service,
		AllowedBackends: allowed,
		PassPrefix:      service,
		WinCredPrefix:   service,
	}
	return keyring.Open(cfg)
}

func loadBasic(ctx context.Context, URL, key string) (*cred.Basic, error) {
	resource := scy.NewResource(&cred.Basic{}, URL, key)
	secret, err := scy.New().Load(ctx, resource)
	if err != nil {
		return nil, err
	}
	basic, ok := secret.Target.(*cred.Basic)
	if !ok {
		return nil, fmt.Errorf("unexpected secret type %T", secret.Target)
	}
	return basic, nil
}
