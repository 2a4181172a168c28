package autocert

import (
	"crypto"
	"errors"
	"os"
	"path/filepath"

	"github.com/go-acme/lego/v4/certcrypto"
	"github.com/go-acme/lego/v4/registration"
	"github.com/maskserve/maskserve/internal/gperr"
	"github.com/maskserve/maskserve/internal/utils"
)

// User is the ACME account, persisted in the cache directory
// so that restarts reuse the same key and registration.
type User struct {
	Email        string
	Registration *registration.Resource
	key          crypto.PrivateKey

	dir string
}

func (u *User) GetEmail() string {
	return u.Email
}

func (u *User) GetRegistration() *registration.Resource {
	return u.Registration
}

func (u *User) GetPrivateKey() crypto.PrivateKey {
	return u.key
}

// loadOrCreateUser loads the account key and registration from dir,
// generating and saving a new EC P-256 key if there is none.
func loadOrCreateUser(dir, email string) (*User, gperr.Error) {
	u := &User{Email: email, dir: dir}

	keyPath := filepath.Join(dir, accountKeyFile)
	data, err := os.ReadFile(keyPath)
	switch {
	case err == nil:
		u.key, err = certcrypto.ParsePEMPrivateKey(data)
		if err != nil {
			return nil, gperr.Wrap(err, "parse account key").Subject(keyPath)
		}
	case errors.Is(err, os.ErrNotExist):
		u.key, err = certcrypto.GeneratePrivateKey(certcrypto.EC256)
		if err != nil {
			return nil, gperr.Wrap(err, "generate account key")
		}
		if err := utils.WriteFileAtomic(keyPath, certcrypto.PEMEncode(u.key), 0o600); err != nil {
			return nil, gperr.Wrap(err, "save account key")
		}
		logger.Info().Str("path", keyPath).Msg("generated new ACME account key")
	default:
		return nil, gperr.Wrap(err, "read account key")
	}

	var reg registration.Resource
	err = utils.LoadJSON(filepath.Join(dir, registrationFile), &reg)
	switch {
	case err == nil:
		u.Registration = &reg
	case errors.Is(err, os.ErrNotExist):
	default:
		// a broken registration file only costs a new lookup
		logger.Warn().Err(err).Msg("ignoring unreadable ACME registration")
	}
	return u, nil
}

func (u *User) saveRegistration(reg *registration.Resource) error {
	u.Registration = reg
	return utils.SaveJSON(filepath.Join(u.dir, registrationFile), reg, 0o600)
}
