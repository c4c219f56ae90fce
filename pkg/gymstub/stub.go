// Package gymstub is an in-memory implementation of the gym REST API,
// response-shape quirks included. Tests and local development run against it.
package gymstub

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/naiba/gymkit/model"
	"github.com/naiba/gymkit/pkg/logger"
	"github.com/naiba/gymkit/pkg/mygin"
	"github.com/naiba/gymkit/pkg/utils"
)

const APIPrefix = "/api/v1"

type Config struct {
	JWTSecret string
	TokenTTL  time.Duration
	Logger    *logger.Logger
	// Seed loads the demo gyms and the demo account.
	Seed bool
}

type account struct {
	user model.User
	hash []byte
}

type gymData struct {
	gym         model.Gym
	memberships []model.Membership
	classes     []model.GymClass
	services    []model.GymService
	contact     model.ContactInfo
	inbox       []model.ContactMessage
}

type Server struct {
	engine   *gin.Engine
	secret   []byte
	ttl      time.Duration
	log      *logger.Logger
	registry *prometheus.Registry
	requests *prometheus.CounterVec

	mu           sync.RWMutex
	gyms         []*gymData
	accounts     map[string]*account // by email
	sessions     map[string]uint64   // session id -> user id
	nextUserID   uint64
	misconfigure map[string]bool
}

func New(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}
	secret := cfg.JWTSecret
	if secret == "" {
		// 未配置时每次启动随机生成，重启后旧 token 失效
		secret, _ = utils.GenerateRandomString(32)
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	s := &Server{
		secret:       []byte(secret),
		ttl:          ttl,
		log:          log.Named("gymstub"),
		registry:     prometheus.NewRegistry(),
		accounts:     make(map[string]*account),
		sessions:     make(map[string]uint64),
		misconfigure: make(map[string]bool),
	}
	s.requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gymkit",
		Subsystem: "stub",
		Name:      "requests_total",
		Help:      "Requests served by the stub backend, by route and status code.",
	}, []string{"route", "code"})
	s.registry.MustRegister(s.requests)

	if cfg.Seed {
		s.seed()
	}
	s.engine = s.routers()
	return s
}

// Handler ..
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Engine exposes the gin engine so callers can mount debug routes.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Misconfigure makes path (relative to /api/v1, e.g. "/acme/classes")
// answer with an HTML error page instead of JSON.
func (s *Server) Misconfigure(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.misconfigure["/"+strings.Trim(path, "/")] = true
}

// AddGym registers a tenant and returns it with its assigned id.
func (s *Server) AddGym(g model.Gym) model.Gym {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = uint64(len(s.gyms) + 1)
	s.gyms = append(s.gyms, &gymData{gym: g})
	return g
}

func (s *Server) AddMembership(slug string, m model.Membership) model.Membership {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.gymLocked(slug)
	if d == nil {
		return m
	}
	m.ID = uint64(len(d.memberships) + 1)
	d.memberships = append(d.memberships, m)
	return m
}

func (s *Server) AddClass(slug string, c model.GymClass) model.GymClass {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.gymLocked(slug)
	if d == nil {
		return c
	}
	c.ID = uint64(len(d.classes) + 1)
	d.classes = append(d.classes, c)
	return c
}

func (s *Server) AddService(slug string, svc model.GymService) model.GymService {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.gymLocked(slug)
	if d == nil {
		return svc
	}
	svc.ID = uint64(len(d.services) + 1)
	d.services = append(d.services, svc)
	return svc
}

func (s *Server) SetContact(slug string, info model.ContactInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d := s.gymLocked(slug); d != nil {
		d.contact = info
	}
}

// Inbox returns the contact messages a gym received.
func (s *Server) Inbox(slug string) []model.ContactMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := s.gymLocked(slug)
	if d == nil {
		return nil
	}
	return append([]model.ContactMessage(nil), d.inbox...)
}

// Sessions counts the live sessions of a user.
func (s *Server) Sessions(email string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[strings.ToLower(email)]
	if !ok {
		return 0
	}
	n := 0
	for _, uid := range s.sessions {
		if uid == a.user.ID {
			n++
		}
	}
	return n
}

func (s *Server) gymLocked(slug string) *gymData {
	for _, d := range s.gyms {
		if d.gym.Slug == slug {
			return d
		}
	}
	return nil
}

func (s *Server) routers() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), mygin.RecordPath, s.accessLog, s.misconfigured)
	authorize := mygin.Authorize(mygin.AuthorizeOption{
		Member: true,
		Msg:    "Unauthenticated.",
		Verify: s.verify,
	})

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := r.Group(APIPrefix)
	{
		api.GET("", s.listGyms)
		api.POST("/login", s.login)
		api.POST("/signup", s.signup)

		// 认证接口
		member := api.Group("", authorize)
		member.POST("/logout/current", s.logoutCurrent)
		member.POST("/logout/all", s.logoutAll)
		member.POST("/logout/others", s.logoutOthers)
		member.GET("/profile", s.profile)
		member.PUT("/profile", s.updateProfile)

		// 租户接口
		scoped := api.Group("/:slug", s.tenant)
		scoped.GET("/memberships", s.listMemberships)
		scoped.GET("/memberships/:id", s.getMembership)
		scoped.GET("/classes", s.listClasses)
		scoped.GET("/classes/:id", s.getClass)
		scoped.GET("/services", s.listServices)
		scoped.GET("/services/:id", s.getService)
		scoped.GET("/contact", s.contactInfo)
		scoped.POST("/contact", s.submitContact)
		scoped.GET("/profile", authorize, s.profile)
		scoped.PUT("/profile", authorize, s.updateProfile)
	}
	return r
}

func (s *Server) accessLog(c *gin.Context) {
	start := time.Now()
	c.Next()
	code := c.Writer.Status()
	s.requests.WithLabelValues(mygin.MatchedPath(c), strconv.Itoa(code)).Inc()
	log := s.log.WithField("method", c.Request.Method).
		WithField("path", c.Request.URL.Path).
		WithField("status", code).
		WithField("request_id", c.GetHeader("X-Request-Id")).
		WithField("elapsed", time.Since(start).String())
	if len(c.Errors) > 0 {
		log = log.WithField("errors", c.Errors.String())
	}
	log.Debug("request served")
}

// misconfigured 模拟反代把请求打到了前端页面
func (s *Server) misconfigured(c *gin.Context) {
	path := strings.TrimPrefix(c.Request.URL.Path, APIPrefix)
	if path == "" {
		path = "/"
	}
	s.mu.RLock()
	hit := s.misconfigure[strings.TrimRight(path, "/")] || s.misconfigure[path]
	s.mu.RUnlock()
	if !hit {
		return
	}
	mygin.ShowErrorPage(c, mygin.ErrInfo{Code: http.StatusOK, Title: "Not Found", Msg: "Page not found"}, true)
}

func (s *Server) tenant(c *gin.Context) {
	slug := c.Param("slug")
	s.mu.RLock()
	d := s.gymLocked(slug)
	s.mu.RUnlock()
	if d == nil {
		mygin.ShowErrorPage(c, mygin.ErrInfo{Code: http.StatusNotFound, Msg: "Gym not found."}, false)
	}
}
