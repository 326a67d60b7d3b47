package http

import (
	"log/slog"
	"net/http"
	"strings"

	"fintrack/internal/auth"
	"fintrack/internal/core"
)

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type registerResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	if err := core.ValidateRegistration(req.Email, req.Name, req.Password); err != nil {
		writeDomainError(w, r, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	user, err := s.repo.CreateUser(r.Context(), req.Email, req.Name, hash)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, registerResponse{ID: user.ID, Email: user.Email, Name: user.Name})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.repo.GetUserByEmail(r.Context(), email)
	if err != nil {
		// Unknown email and wrong password are indistinguishable.
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if !auth.VerifyPassword(req.Password, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := s.tokens.IssueAccessToken(user.Email)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "User logged in", "user_id", user.ID)
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.repo.GetUserByEmail(r.Context(), email)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	token, err := s.tokens.IssueResetToken(user.Email)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	// Development mode: the token rides in the response instead of an
	// email.
	writeJSON(w, http.StatusOK, map[string]string{
		"message":     "Password reset token generated",
		"reset_token": token,
	})
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	email, err := s.tokens.VerifyResetToken(req.Token)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid or expired reset token")
		return
	}
	if err := core.ValidatePassword(req.NewPassword); err != nil {
		writeDomainError(w, r, err)
		return
	}

	user, err := s.repo.GetUserByEmail(r.Context(), email)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := s.repo.UpdateUserPassword(r.Context(), user.ID, hash); err != nil {
		writeDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Password reset", "user_id", user.ID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)

	var req changePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !auth.VerifyPassword(req.CurrentPassword, user.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "Current password is incorrect")
		return
	}
	if err := core.ValidatePassword(req.NewPassword); err != nil {
		writeDomainError(w, r, err)
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if err := s.repo.UpdateUserPassword(r.Context(), user.ID, hash); err != nil {
		writeDomainError(w, r, err)
		return
	}

	slog.InfoContext(r.Context(), "Password changed", "user_id", user.ID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	writeJSON(w, http.StatusOK, user)
}
