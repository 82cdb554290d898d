/*
Package handler provides the HTTP handlers and routing setup for the
gemchat server.

This file contains the account endpoints: the Proof-of-Work challenge
gate, registration, sign-in, session validation, and sign-out.
*/
package handler

import (
	"errors"
	"net/http"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"gemchat/internal/app/account"
	"gemchat/internal/app/session"
	"gemchat/internal/pkg/errs"
	"gemchat/internal/pkg/logx"
	"gemchat/internal/pkg/req"
	"gemchat/internal/pkg/resp"
)

var usernameRegex = regexp.MustCompile(`^\w+$`)

// HandlePowChallenge issues a fresh Proof-of-Work nonce together with
// the required difficulty.
func HandlePowChallenge(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nonce := deps.Pow.GenerateNonce()

		resp.RespondSuccess(w, r, map[string]any{
			"nonce":      nonce,
			"difficulty": deps.Config.PowDifficulty,
		})
	}
}

type PowVerifyInput struct {
	Nonce   string `json:"nonce"`
	Counter string `json:"counter"`
}

// HandlePowVerify exchanges a solved challenge for a short-lived Proof
// Token, presented with the registration request.
func HandlePowVerify(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input PowVerifyInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		token, err := deps.Pow.ValidateProof(input.Nonce, input.Counter)
		if err != nil {
			logx.Warn("PoW proof rejected", "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrPowChallengeInvalid))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"powToken": token,
		})
	}
}

type RegisterInput struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// HandleRegister creates a new account and signs the user in.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !deps.Pow.CheckProofToken(r) {
			resp.RespondError(w, r, errs.NewError(errs.ErrPowChallengeRequired))
			return
		}

		var input RegisterInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Username == "" || input.Avatar == "" || input.Name == "" || input.Password == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrMissingFields))
			return
		}

		if !usernameRegex.MatchString(input.Username) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidUsername))
			return
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		acc := account.Account{
			Username:     input.Username,
			Avatar:       input.Avatar,
			Name:         input.Name,
			PasswordHash: string(hashedPassword),
		}

		if err := deps.Accounts.Create(r.Context(), acc); err != nil {
			if errors.Is(err, account.ErrAlreadyExists) {
				logx.Warn("registration conflict: username already exists", "username", input.Username)
				resp.RespondError(w, r, errs.NewError(errs.ErrUserAlreadyExists))
				return
			}

			logx.Error(err, "failed to create account")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		identity := acc.Identity()

		token, err := deps.Sessions.Create(r.Context(), identity)
		if err != nil {
			logx.Error(err, "failed to create session after registration", "username", input.Username)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		setSessionCookie(w, deps, token)

		resp.RespondSuccess(w, r, map[string]any{
			"user": identity,
		})
	}
}

type SigninInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleSignin verifies the credentials and establishes a session.
func HandleSignin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input SigninInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		acc, err := deps.Accounts.GetByUsername(r.Context(), input.Username)
		if err != nil {
			logx.Warn("signin: account fetch failed", "username", input.Username, "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(input.Password)); err != nil {
			logx.Warn("signin: password mismatch", "username", input.Username)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		identity := acc.Identity()

		token, err := deps.Sessions.Create(r.Context(), identity)
		if err != nil {
			logx.Error(err, "signin: failed to create session", "username", input.Username)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		setSessionCookie(w, deps, token)

		resp.RespondSuccess(w, r, map[string]any{
			"user": identity,
		})
	}
}

// HandleValidate checks the request's session and returns the identity
// it carries. A hit refreshes the sliding inactivity window on both
// the session and the cookie.
func HandleValidate(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := resolveIdentity(r, deps)
		if identity == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		cookie, _ := r.Cookie(session.CookieName)
		if cookie != nil {
			setSessionCookie(w, deps, cookie.Value)
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user": identity,
		})
	}
}

// HandleSignout deletes the session and clears the cookie. Signing out
// without a session succeeds quietly.
func HandleSignout(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(session.CookieName); err == nil && cookie.Value != "" {
			if err := deps.Sessions.Delete(r.Context(), cookie.Value); err != nil {
				logx.Error(err, "signout: failed to delete session")
			}
		}

		clearSessionCookie(w, deps)
		resp.RespondSuccess(w, r, nil)
	}
}
