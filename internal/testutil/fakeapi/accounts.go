package fakeapi

import (
	"net/http"

	"venuebook/pkg/model"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

func (s *Server) login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range s.users {
		if rec.account.Username == req.Username && rec.password == req.Password {
			writeCreated(w, s.issueTokenLocked(rec))
			return
		}
	}
	writeError(w, http.StatusUnauthorized, "Invalid username or password")
}

func (s *Server) register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if msgs := missing(map[string]string{
		"username":  req.Username,
		"password":  req.Password,
		"firstName": req.FirstName,
		"lastName":  req.LastName,
		"phone":     req.Phone,
	}); len(msgs) > 0 {
		writeError(w, http.StatusBadRequest, msgs)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.usernameTakenLocked(req.Username, "") {
		writeError(w, http.StatusConflict, "Username already exists")
		return
	}

	role := req.Role
	if role == "" {
		role = model.RoleUser
	}
	rec := &userRecord{
		account: model.Account{
			ID:        newID(),
			Username:  req.Username,
			Role:      role,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
		},
		password: req.Password,
	}
	s.users[rec.account.ID] = rec
	writeCreated(w, s.issueTokenLocked(rec))
}

func (s *Server) issueTokenLocked(rec *userRecord) model.AuthPayload {
	token := uuid.NewString()
	s.tokens[token] = rec.account.ID
	return model.AuthPayload{AccessToken: token, User: rec.account}
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	rec, ok := s.requireAuth(w, r)
	if !ok {
		return
	}
	writeOK(w, rec.account)
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	role := model.Role(r.URL.Query().Get("role"))

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := make([]model.Account, 0)
	for _, rec := range s.users {
		if role == "" || rec.account.Role == role {
			accounts = append(accounts, rec.account)
		}
	}
	sortByID(accounts, func(a model.Account) string { return a.ID })
	writeOK(w, accounts)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if _, ok := s.requireAuth(w, r, model.RoleAdmin); !ok {
		return
	}

	var req model.CreateAccountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !req.Role.Valid() {
		writeError(w, http.StatusBadRequest, []string{"role must be one of user, admin, owner"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.usernameTakenLocked(req.Username, "") {
		writeError(w, http.StatusConflict, "Username already exists")
		return
	}

	rec := &userRecord{
		account: model.Account{
			ID:        newID(),
			Username:  req.Username,
			Role:      req.Role,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
		},
		password: req.Password,
	}
	s.users[rec.account.ID] = rec
	writeCreated(w, rec.account)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if _, ok := s.requireAuth(w, r, model.RoleAdmin); !ok {
		return
	}

	var patch model.AccountUpdate
	if !decodeBody(w, r, &patch) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.users[ps.ByName("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	if patch.Username != nil {
		if s.usernameTakenLocked(*patch.Username, rec.account.ID) {
			writeError(w, http.StatusConflict, "Username already exists")
			return
		}
		rec.account.Username = *patch.Username
	}
	if patch.FirstName != nil {
		rec.account.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		rec.account.LastName = *patch.LastName
	}
	if patch.Phone != nil {
		rec.account.Phone = *patch.Phone
	}
	writeOK(w, rec.account)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if _, ok := s.requireAuth(w, r, model.RoleAdmin); !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := ps.ByName("id")
	if _, ok := s.users[id]; !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	delete(s.users, id)
	writeOK(w, map[string]any{"success": true, "id": id})
}

func (s *Server) usernameTakenLocked(username, exceptID string) bool {
	for id, rec := range s.users {
		if id != exceptID && rec.account.Username == username {
			return true
		}
	}
	return false
}

func missing(fields map[string]string) []string {
	var msgs []string
	for name, value := range fields {
		if value == "" {
			msgs = append(msgs, name+" should not be empty")
		}
	}
	sortStrings(msgs)
	return msgs
}
