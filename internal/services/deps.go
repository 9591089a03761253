package services

import (
	"time"

	"github.com/minitodo/apiserver/internal/notify"
	"github.com/minitodo/apiserver/internal/security"
	"go.uber.org/zap"
)

// Hasher derives salted password hashes.
type Hasher interface {
	GenSalt() (string, error)
	Hash(raw, salt string) (string, error)
}

// OtpGenerator issues one-time codes.
type OtpGenerator interface {
	Generate() (int, error)
}

// Deps carries the collaborators shared by the services. Zero fields are
// filled with production defaults, except Notifier which falls back to
// logging.
type Deps struct {
	Hasher   Hasher
	Otp      OtpGenerator
	IDs      security.IDGenerator
	Notifier notify.Notifier
	Logger   *zap.Logger
	Now      func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Hasher == nil {
		d.Hasher = security.NewPasswordHasher()
	}
	if d.Otp == nil {
		d.Otp = security.NewOtpGenerator()
	}
	if d.IDs == nil {
		d.IDs, _ = security.NewIDGenerator("uuid", 0)
	}
	if d.Notifier == nil {
		d.Notifier = notify.NewLog(d.Logger)
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}
