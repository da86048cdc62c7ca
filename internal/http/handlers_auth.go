package http

import (
	"net/http"
	"time"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	Current string `json:"current_password"`
	New     string `json:"new_password"`
	Confirm string `json:"confirm_password"`
}

type accountView struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type sessionView struct {
	Token          string `json:"token"`
	TimeoutSeconds int64  `json:"timeout_seconds"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	account, err := s.auth.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		failErr(w, r, err)
		return
	}
	respond(w, http.StatusCreated, accountView{ID: account.ID, Username: account.Username, Email: account.Email})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	session, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		failErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, sessionView{
		Token:          session.Token,
		TimeoutSeconds: int64(session.Timeout / time.Second),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), bearerToken(r)); err != nil {
		failErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	account := accountFrom(r)
	if err := s.auth.ChangePassword(r.Context(), account.ID, req.Current, req.New, req.Confirm); err != nil {
		failErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, nil)
}
