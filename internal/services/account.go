package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/minitodo/apiserver/internal/notify"
	"github.com/minitodo/apiserver/internal/security"
	"github.com/minitodo/apiserver/internal/store"
	"github.com/minitodo/apiserver/types"
	"go.uber.org/zap"
)

// OtpValidity is how many whole minutes a code stays usable. Elapsed time is
// rounded up to the next minute before the comparison.
const OtpValidity = 2

const (
	subjectOtp          = "OTP Verification"
	subjectConfirmation = "Account Confirmation"
	subjectResend       = "OTP resend"
	bodyConfirmation    = "Hello, your account has been successfully confirmed. Once again welcome"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	CreateUnique(ctx context.Context, user types.User) (types.User, error)
	Activate(ctx context.Context, email string) (types.User, error)
	List(ctx context.Context) ([]types.User, error)
}

// OtpRepository defines persistence operations for issued codes.
type OtpRepository interface {
	Create(ctx context.Context, record types.OtpRecord) (types.OtpRecord, error)
	Find(ctx context.Context, email string, code int) (types.OtpRecord, error)
}

// Registration is the input to Register.
type Registration struct {
	Title     string
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// AccountService runs signup, verification, resend and login.
type AccountService struct {
	users            UserRepository
	otps             OtpRepository
	deps             Deps
	rejectDuplicates bool
}

// NewAccountService constructs an AccountService. When rejectDuplicates is
// set, Register refuses an email that is already registered.
func NewAccountService(users UserRepository, otps OtpRepository, deps Deps, rejectDuplicates bool) *AccountService {
	return &AccountService{
		users:            users,
		otps:             otps,
		deps:             deps.withDefaults(),
		rejectDuplicates: rejectDuplicates,
	}
}

// Register stores an inactive user and emails them a fresh code. The code
// is drawn before the user is stored, so a generator failure leaves nothing
// behind.
func (s *AccountService) Register(ctx context.Context, in Registration) (types.User, error) {
	salt, err := s.deps.Hasher.GenSalt()
	if err != nil {
		return types.User{}, fmt.Errorf("%w: %v", ErrHashFailure, err)
	}
	hash, err := s.deps.Hasher.Hash(in.Password, salt)
	if err != nil {
		return types.User{}, fmt.Errorf("%w: %v", ErrHashFailure, err)
	}

	code, err := s.deps.Otp.Generate()
	if err != nil {
		return types.User{}, err
	}

	create := s.users.Create
	if s.rejectDuplicates {
		create = s.users.CreateUnique
	}
	user, err := create(ctx, types.User{
		Title:        in.Title,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Salt:         salt,
		PasswordHash: hash,
		Status:       types.UserInactive,
		CreatedAt:    s.deps.Now(),
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return types.User{}, ErrUserAlreadyExists
		}
		return types.User{}, fmt.Errorf("create user: %w", err)
	}

	if err := s.storeOtp(ctx, user.Email, code); err != nil {
		return types.User{}, err
	}

	s.notify(ctx, notify.Message{
		To:      user.Email,
		Subject: subjectOtp,
		Body:    fmt.Sprintf("Hello %s, Kindly use this otp %d to finish your application", user.FirstName, code),
	})
	return user, nil
}

// VerifyOtp activates the user the code was issued to and returns every
// registered user. An already active user may verify again.
func (s *AccountService) VerifyOtp(ctx context.Context, email string, code int) ([]types.User, error) {
	record, err := s.otps.Find(ctx, email, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidOtp
		}
		return nil, fmt.Errorf("lookup otp: %w", err)
	}

	if otpExpired(record.IssuedAt, s.deps.Now()) {
		return nil, ErrOtpExpired
	}

	if _, err := s.users.Activate(ctx, email); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("activate user: %w", err)
	}

	s.notify(ctx, notify.Message{To: email, Subject: subjectConfirmation, Body: bodyConfirmation})

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// ResendOtp issues an additional code. Earlier codes stay valid until they
// expire on their own.
func (s *AccountService) ResendOtp(ctx context.Context, email string) error {
	if _, err := s.lookup(ctx, email); err != nil {
		return err
	}

	code, err := s.issueOtp(ctx, email)
	if err != nil {
		return err
	}

	s.notify(ctx, notify.Message{
		To:      email,
		Subject: subjectResend,
		Body:    fmt.Sprintf("Hello, an OTP has been resent to you for your account confirmation. Kindly use this otp %d", code),
	})
	return nil
}

// Login checks the password of an active user. Activation is checked before
// the password.
func (s *AccountService) Login(ctx context.Context, email, password string) (types.User, error) {
	user, err := s.lookup(ctx, email)
	if err != nil {
		return types.User{}, err
	}
	if !user.IsActive() {
		return types.User{}, ErrAccountNotActive
	}

	hash, err := s.deps.Hasher.Hash(password, user.Salt)
	if err != nil {
		return types.User{}, fmt.Errorf("%w: %v", ErrHashFailure, err)
	}
	if !security.Equal(hash, user.PasswordHash) {
		return types.User{}, ErrInvalidCredential
	}
	return user, nil
}

func (s *AccountService) lookup(ctx context.Context, email string) (types.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrUserNotFound
		}
		return types.User{}, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}

func (s *AccountService) issueOtp(ctx context.Context, email string) (int, error) {
	code, err := s.deps.Otp.Generate()
	if err != nil {
		return 0, err
	}
	if err := s.storeOtp(ctx, email, code); err != nil {
		return 0, err
	}
	return code, nil
}

func (s *AccountService) storeOtp(ctx context.Context, email string, code int) error {
	if _, err := s.otps.Create(ctx, types.OtpRecord{
		ID:       s.deps.IDs.NewID(),
		Email:    email,
		Code:     code,
		IssuedAt: s.deps.Now(),
	}); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	return nil
}

// notify never fails the caller; an undelivered email is only logged.
func (s *AccountService) notify(ctx context.Context, msg notify.Message) {
	if err := s.deps.Notifier.Notify(ctx, msg); err != nil {
		s.deps.Logger.Warn("notification not sent",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err),
		)
	}
}

// otpExpired reports whether more than OtpValidity minutes, rounded up, have
// passed since issuedAt. A clock that moved backwards counts as no time.
func otpExpired(issuedAt, now time.Time) bool {
	elapsed := now.Sub(issuedAt).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}
	minutes := (elapsed + 59999) / 60000
	return minutes > OtpValidity
}
