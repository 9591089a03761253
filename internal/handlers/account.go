package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/minitodo/apiserver/internal/services"
	"go.uber.org/zap"
)

const (
	msgSignup   = "Kindly use the OTP to verify your account for complete account craetion."
	msgVerified = "Sign up has been done successfully."
	msgResent   = "An OTP has been resent."
	msgLoggedIn = "You are logged in"
)

// AccountHandler serves signup, verification and login.
type AccountHandler struct {
	accounts *services.AccountService
	logger   *zap.Logger
}

// NewAccountHandler constructs an AccountHandler with the provided dependencies.
func NewAccountHandler(accounts *services.AccountService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, logger: logger}
}

// AccountRouter registers account routes on the given router.
func AccountRouter(r chi.Router, accounts *services.AccountService, logger *zap.Logger) {
	handler := NewAccountHandler(accounts, logger)

	r.Post("/signup", handler.Signup)
	r.Get("/verify-otp/{email}/{otp}", handler.VerifyOtp)
	r.Get("/resend-otp/{email}", handler.ResendOtp)
	r.Post("/login", handler.Login)
}

func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	result := decodeAndValidate[SignupRequest](r)
	if !result.OK() {
		writeError(w, http.StatusBadRequest, result.First())
		return
	}
	req := result.Value

	if _, err := h.accounts.Register(r.Context(), services.Registration{
		Title:     req.Title,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	}); err != nil {
		writeServiceError(w, h.logger, err, nil)
		return
	}
	writeOK(w, msgSignup, nil)
}

func (h *AccountHandler) VerifyOtp(w http.ResponseWriter, r *http.Request) {
	email := pathParam(r, "email")
	rawOtp := strings.TrimSpace(pathParam(r, "otp"))
	if email == "" || rawOtp == "" {
		writeError(w, http.StatusBadRequest, "Email and OTP are required")
		return
	}

	code, err := strconv.Atoi(rawOtp)
	if err != nil {
		writeError(w, http.StatusBadRequest, services.ErrInvalidOtp.Error())
		return
	}

	users, err := h.accounts.VerifyOtp(r.Context(), email, code)
	if err != nil {
		writeServiceError(w, h.logger, err, nil)
		return
	}
	writeOK(w, msgVerified, users)
}

func (h *AccountHandler) ResendOtp(w http.ResponseWriter, r *http.Request) {
	email := pathParam(r, "email")
	if email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}

	if err := h.accounts.ResendOtp(r.Context(), email); err != nil {
		writeServiceError(w, h.logger, err, map[error]string{
			services.ErrUserNotFound: "Email does not exist",
		})
		return
	}
	writeOK(w, msgResent, nil)
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	result := decodeAndValidate[LoginRequest](r)
	if !result.OK() {
		writeError(w, http.StatusBadRequest, result.First())
		return
	}

	if _, err := h.accounts.Login(r.Context(), result.Value.Email, result.Value.Password); err != nil {
		writeServiceError(w, h.logger, err, nil)
		return
	}
	writeOK(w, msgLoggedIn, nil)
}
