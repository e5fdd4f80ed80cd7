package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/davaardana/dacoklinik-web/internal/auth"
	"github.com/davaardana/dacoklinik-web/internal/config"
	"github.com/davaardana/dacoklinik-web/internal/domain/user"
	"github.com/davaardana/dacoklinik-web/internal/security"
	"github.com/gin-gonic/gin"
)

type UserReader interface {
	GetByUsername(ctx context.Context, username string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, username, passwordHash, role string) (user.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type AuthHandler struct {
	users      UserReader
	userWriter UserWriter
	jwt        *auth.Manager
	hasher     *security.Hasher
}

func NewAuthHandler(users UserReader, userWriter UserWriter, jwtManager *auth.Manager, hasher *security.Hasher) *AuthHandler {
	return &AuthHandler{
		users:      users,
		userWriter: userWriter,
		jwt:        jwtManager,
		hasher:     hasher,
	}
}

// Login verifies a username/password pair and returns a bearer token with
// the public user projection. An unknown username and a wrong password
// produce the same generic 401 so the endpoint cannot be used to probe for
// accounts.
func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByUsername(cctx, req.Username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondUnAuthorized(ctx, "invalid_credentials", "Username or password is incorrect.")
			return
		}

		RespondInternal(ctx, "Unable to process login")
		return
	}

	if !h.hasher.Verify(foundUser.PasswordHash, req.Password) {
		RespondUnAuthorized(ctx, "invalid_credentials", "Username or password is incorrect.")
		return
	}

	token, err := h.jwt.Issue(foundUser.Username, foundUser.Role)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  foundUser.Public(),
	})
}

// Register creates an account and logs it in immediately. Unlike login, the
// validation failures here are field-specific: existence checking is the
// point of this endpoint.
func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	// early existence check for the friendly 409; the unique index catches
	// the race between two concurrent registrations
	_, err := h.users.GetByUsername(cctx, req.Username)

	if err == nil {
		RespondConflict(ctx, "username_taken", "Username already exists.")
		return
	}

	if !errors.Is(err, user.ErrNotFound) {
		RespondInternal(ctx, "Unable to process registration")
		return
	}

	hash, err := h.hasher.Hash(req.Password)

	if err != nil {
		RespondInternal(ctx, "Unable to process registration")
		return
	}

	role := req.Role

	if role == "" {
		role = user.DefaultRole
	}

	u, err := h.userWriter.Create(cctx, req.Username, hash, role)

	if err != nil {
		if errors.Is(err, user.ErrUsernameTaken) {
			RespondConflict(ctx, "username_taken", "Username already exists.")
			return
		}

		RespondInternal(ctx, "Unable to process registration")
		return
	}

	token, err := h.jwt.Issue(u.Username, u.Role)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"token":   token,
		"user":    u.Public(),
		"message": "Registration successful",
	})
}

// ChangePassword rotates the stored hash after verifying the old password.
// No token is required or issued: this is the recovery path off the login
// page, and tokens already in the wild stay valid until their own expiry.
func (h *AuthHandler) ChangePassword(ctx *gin.Context) {
	var req user.ChangePasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	foundUser, err := h.users.GetByUsername(cctx, req.Username)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Unable to change password")
		return
	}

	if !h.hasher.Verify(foundUser.PasswordHash, req.OldPassword) {
		RespondUnAuthorized(ctx, "invalid_credentials", "Current password is incorrect.")
		return
	}

	hash, err := h.hasher.Hash(req.NewPassword)

	if err != nil {
		RespondInternal(ctx, "Unable to change password")
		return
	}

	err = h.userWriter.UpdatePassword(cctx, foundUser.ID, hash)

	if err != nil {
		RespondInternal(ctx, "Unable to change password")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
