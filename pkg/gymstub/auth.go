package gymstub

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/hashicorp/go-uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/naiba/gymkit/model"
	"github.com/naiba/gymkit/pkg/mygin"
)

const issuer = "gymkit-stub"

var errSessionRevoked = errors.New("session revoked")

type claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// AddUser creates an account and returns it.
func (s *Server) AddUser(name, email, phone, password string) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return model.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(strings.TrimSpace(email))
	if _, ok := s.accounts[key]; ok {
		return model.User{}, fmt.Errorf("email %s already taken", email)
	}
	s.nextUserID++
	a := &account{
		user: model.User{ID: s.nextUserID, Name: name, Email: key, Phone: phone},
		hash: hash,
	}
	s.accounts[key] = a
	return a.user, nil
}

// issue starts a new session for uid and signs its token.
func (s *Server) issue(uid uint64) (string, error) {
	sid, err := uuid.GenerateUUID()
	if err != nil {
		return "", err
	}
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		SessionID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatUint(uid, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	s.sessions[sid] = uid
	s.mu.Unlock()
	return signed, nil
}

func (s *Server) parse(raw string) (*account, string, error) {
	var cl claims
	_, err := jwt.ParseWithClaims(raw, &cl, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil {
		return nil, "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	uid, ok := s.sessions[cl.SessionID]
	if !ok {
		return nil, "", errSessionRevoked
	}
	for _, a := range s.accounts {
		if a.user.ID == uid {
			return a, cl.SessionID, nil
		}
	}
	return nil, "", errSessionRevoked
}

// verify 供 mygin.Authorize 使用
func (s *Server) verify(token string) (any, string, error) {
	a, sid, err := s.parse(token)
	if err != nil {
		return nil, "", err
	}
	return a, sid, nil
}

func (s *Server) login(c *gin.Context) {
	var req model.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		mygin.ValidationFailed(c, map[string][]string{"body": {err.Error()}})
		return
	}
	errs := map[string][]string{}
	if strings.TrimSpace(req.Email) == "" {
		errs["email"] = []string{"The email field is required."}
	}
	if req.Password == "" {
		errs["password"] = []string{"The password field is required."}
	}
	if req.Gym != "" && !s.hasGym(req.Gym) {
		errs["gym"] = []string{"The selected gym is invalid."}
	}
	if len(errs) > 0 {
		mygin.ValidationFailed(c, errs)
		return
	}

	s.mu.RLock()
	a, ok := s.accounts[strings.ToLower(strings.TrimSpace(req.Email))]
	s.mu.RUnlock()
	// 凭证错误时服务端仍返回 200，靠 status 字段区分
	if !ok || bcrypt.CompareHashAndPassword(a.hash, []byte(req.Password)) != nil {
		mygin.Rejected(c, "These credentials do not match our records.")
		return
	}

	s.respondWithToken(c, http.StatusOK, "Logged in successfully.", a, req.Gym)
}

func (s *Server) signup(c *gin.Context) {
	var req model.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mygin.ValidationFailed(c, map[string][]string{"body": {err.Error()}})
		return
	}
	errs := map[string][]string{}
	if strings.TrimSpace(req.Name) == "" {
		errs["name"] = append(errs["name"], "The name field is required.")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	switch {
	case email == "":
		errs["email"] = append(errs["email"], "The email field is required.")
	case !strings.Contains(email, "@"):
		errs["email"] = append(errs["email"], "The email must be a valid email address.")
	default:
		s.mu.RLock()
		_, taken := s.accounts[email]
		s.mu.RUnlock()
		if taken {
			errs["email"] = append(errs["email"], "The email has already been taken.")
		}
	}
	if len(req.Password) < 8 {
		errs["password"] = append(errs["password"], "The password must be at least 8 characters.")
	}
	if req.Password != req.PasswordConfirmation {
		errs["password"] = append(errs["password"], "The password confirmation does not match.")
	}
	if req.Gym != "" && !s.hasGym(req.Gym) {
		errs["gym"] = append(errs["gym"], "The selected gym is invalid.")
	}
	if len(errs) > 0 {
		mygin.ValidationFailed(c, errs)
		return
	}

	if _, err := s.AddUser(strings.TrimSpace(req.Name), email, req.Phone, req.Password); err != nil {
		mygin.ValidationFailed(c, map[string][]string{"email": {"The email has already been taken."}})
		return
	}
	s.mu.RLock()
	a := s.accounts[email]
	s.mu.RUnlock()
	s.respondWithToken(c, http.StatusCreated, "Account created.", a, req.Gym)
}

func (s *Server) respondWithToken(c *gin.Context, status int, message string, a *account, gym string) {
	token, err := s.issue(a.user.ID)
	if err != nil {
		mygin.ShowErrorPage(c, mygin.ErrInfo{Code: http.StatusInternalServerError, Msg: err.Error()}, false)
		return
	}
	user := a.user
	user.Gym = gym
	mygin.Wrapped(c, status, message, model.AuthPayload{Token: token, User: user})
}

func (s *Server) hasGym(slug string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gymLocked(slug) != nil
}

func (s *Server) logoutCurrent(c *gin.Context) {
	sid := c.GetString(mygin.CtxKeySession)
	s.mu.Lock()
	delete(s.sessions, sid)
	s.mu.Unlock()
	mygin.Wrapped[any](c, http.StatusOK, "Logged out.", nil)
}

func (s *Server) logoutAll(c *gin.Context) {
	s.revoke(c, false)
	mygin.Wrapped[any](c, http.StatusOK, "Logged out from all devices.", nil)
}

func (s *Server) logoutOthers(c *gin.Context) {
	s.revoke(c, true)
	mygin.Wrapped[any](c, http.StatusOK, "Logged out from other devices.", nil)
}

func (s *Server) revoke(c *gin.Context, keepCurrent bool) {
	a := c.MustGet(mygin.CtxKeyAuthorizedUser).(*account)
	current := c.GetString(mygin.CtxKeySession)
	s.mu.Lock()
	defer s.mu.Unlock()
	for sid, uid := range s.sessions {
		if uid != a.user.ID || (keepCurrent && sid == current) {
			continue
		}
		delete(s.sessions, sid)
	}
}

func (s *Server) profile(c *gin.Context) {
	a := c.MustGet(mygin.CtxKeyAuthorizedUser).(*account)
	s.mu.RLock()
	user := a.user
	s.mu.RUnlock()
	user.Gym = c.Param("slug")
	mygin.Wrapped(c, http.StatusOK, "Profile fetched.", user)
}

func (s *Server) updateProfile(c *gin.Context) {
	var req model.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		mygin.ValidationFailed(c, map[string][]string{"body": {err.Error()}})
		return
	}
	a := c.MustGet(mygin.CtxKeyAuthorizedUser).(*account)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email != "" && !strings.Contains(email, "@") {
		mygin.ValidationFailed(c, map[string][]string{"email": {"The email must be a valid email address."}})
		return
	}

	s.mu.Lock()
	if email != "" && email != a.user.Email {
		if _, taken := s.accounts[email]; taken {
			s.mu.Unlock()
			mygin.ValidationFailed(c, map[string][]string{"email": {"The email has already been taken."}})
			return
		}
		delete(s.accounts, a.user.Email)
		a.user.Email = email
		s.accounts[email] = a
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		a.user.Name = name
	}
	if req.Phone != "" {
		a.user.Phone = req.Phone
	}
	user := a.user
	s.mu.Unlock()

	user.Gym = c.Param("slug")
	mygin.Wrapped(c, http.StatusOK, "Profile updated.", user)
}
