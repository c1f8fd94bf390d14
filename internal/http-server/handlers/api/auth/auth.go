package auth

import (
	"context"
	"encoding/json"
	serrors "errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"adhok_platform/internal/config"
	"adhok_platform/internal/http-server/middleware"
	authlib "adhok_platform/internal/lib/auth"
	"adhok_platform/internal/lib/errors"
	"adhok_platform/internal/models/user"
	"adhok_platform/internal/storage/postgres"
)

var validate = validator.New()

type UserSaver interface {
	RegisterUser(ctx context.Context, email, passwordHash, fullName string, role user.Role, experienceBadge string) (user.User, error)
}

type UserFetcher interface {
	FetchUserByEmail(ctx context.Context, email string) (user.User, string, error)
}

type ProfileReader interface {
	FetchUser(ctx context.Context, userId string) (user.User, error)
	FetchTalentProfile(ctx context.Context, userId string) (user.TalentProfile, error)
}

// NewRegister creates client and talent accounts. Admins are seeded out
// of band and can never be self-registered.
func NewRegister(log *slog.Logger, userSaver UserSaver, jwtCfg config.JWTConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req user.RegisterRequest

		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()

		if err := decoder.Decode(&req); err != nil {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError(err.Error()))
			return
		}

		if err := validate.Struct(req); err != nil {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("Invalid registration fields"))
			return
		}

		hash, err := authlib.HashPassword(req.Password)
		if err != nil {
			log.Error("failed to hash password", slog.String("error", err.Error()))
			render.Status(r, 500)
			render.JSON(w, r, errors.NewHttpError("Registration failed"))
			return
		}

		usr, err := userSaver.RegisterUser(r.Context(), req.Email, hash, req.FullName, req.Role, req.ExperienceBadge)
		if err != nil {
			if serrors.Is(err, postgres.ErrBadRequest) {
				render.Status(r, 400)
			} else {
				render.Status(r, 500)
			}
			render.JSON(w, r, errors.NewHttpError(err.Error()))
			return
		}

		token, err := authlib.GenerateToken(usr.Id, usr.Role, jwtCfg.Secret, time.Duration(jwtCfg.TTLHours)*time.Hour)
		if err != nil {
			log.Error("failed to issue token", slog.String("error", err.Error()))
			render.Status(r, 500)
			render.JSON(w, r, errors.NewHttpError("Registration failed"))
			return
		}

		render.Status(r, 201)
		render.JSON(w, r, user.TokenResponse{Token: token, User: usr})
	}
}

type meResponse struct {
	User    user.User           `json:"user"`
	Profile *user.TalentProfile `json:"profile,omitempty"`
}

// NewMe returns the calling account, with the talent profile attached
// for talent accounts.
func NewMe(log *slog.Logger, profileReader ProfileReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.SessionFromContext(r.Context())

		usr, err := profileReader.FetchUser(r.Context(), sess.UserId)
		if err != nil {
			if serrors.Is(err, postgres.ErrUserNotFound) {
				render.Status(r, 404)
			} else {
				render.Status(r, 500)
			}
			render.JSON(w, r, errors.NewHttpError(err.Error()))
			return
		}

		resp := meResponse{User: usr}
		if usr.Role == user.RoleTalent {
			profile, err := profileReader.FetchTalentProfile(r.Context(), sess.UserId)
			if err != nil && !serrors.Is(err, postgres.ErrNotFound) {
				log.Error("failed to read talent profile", slog.String("error", err.Error()))
				render.Status(r, 500)
				render.JSON(w, r, errors.NewHttpError("Profile lookup failed"))
				return
			}
			if err == nil {
				resp.Profile = &profile
			}
		}

		render.JSON(w, r, resp)
	}
}

func NewLogin(log *slog.Logger, userFetcher UserFetcher, jwtCfg config.JWTConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req user.LoginRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError(err.Error()))
			return
		}

		if err := validate.Struct(req); err != nil {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("Email and password are required"))
			return
		}

		usr, hash, err := userFetcher.FetchUserByEmail(r.Context(), req.Email)
		if err != nil || !authlib.CheckPassword(req.Password, hash) {
			// Same answer for unknown email and wrong password.
			render.Status(r, 401)
			render.JSON(w, r, errors.NewHttpError("Invalid email or password"))
			return
		}

		token, err := authlib.GenerateToken(usr.Id, usr.Role, jwtCfg.Secret, time.Duration(jwtCfg.TTLHours)*time.Hour)
		if err != nil {
			log.Error("failed to issue token", slog.String("error", err.Error()))
			render.Status(r, 500)
			render.JSON(w, r, errors.NewHttpError("Login failed"))
			return
		}

		render.JSON(w, r, user.TokenResponse{Token: token, User: usr})
	}
}
