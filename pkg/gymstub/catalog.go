package gymstub

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/naiba/gymkit/model"
	"github.com/naiba/gymkit/pkg/mygin"
)

// The real backend is not consistent about wrapping GET responses.
// Each handler below keeps the shape that endpoint is known to use.

func (s *Server) gym(c *gin.Context) *gymData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gymLocked(c.Param("slug"))
}

func parseID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		mygin.NotFound(c)
		return 0, false
	}
	return id, true
}

// listGyms 裸数组
func (s *Server) listGyms(c *gin.Context) {
	s.mu.RLock()
	gyms := make([]model.Gym, 0, len(s.gyms))
	for _, d := range s.gyms {
		gyms = append(gyms, d.gym)
	}
	s.mu.RUnlock()
	c.JSON(http.StatusOK, gyms)
}

// listMemberships 包装
func (s *Server) listMemberships(c *gin.Context) {
	d := s.gym(c)
	s.mu.RLock()
	list := append([]model.Membership{}, d.memberships...)
	s.mu.RUnlock()
	mygin.Wrapped(c, http.StatusOK, "Memberships fetched.", list)
}

// getMembership 裸对象
func (s *Server) getMembership(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	d := s.gym(c)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range d.memberships {
		if m.ID == id {
			c.JSON(http.StatusOK, m)
			return
		}
	}
	mygin.NotFound(c)
}

// listClasses 裸数组
func (s *Server) listClasses(c *gin.Context) {
	d := s.gym(c)
	s.mu.RLock()
	list := append([]model.GymClass{}, d.classes...)
	s.mu.RUnlock()
	c.JSON(http.StatusOK, list)
}

// getClass 包装
func (s *Server) getClass(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	d := s.gym(c)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, cl := range d.classes {
		if cl.ID == id {
			mygin.Wrapped(c, http.StatusOK, "Class fetched.", cl)
			return
		}
	}
	mygin.NotFound(c)
}

// listServices 包装
func (s *Server) listServices(c *gin.Context) {
	d := s.gym(c)
	s.mu.RLock()
	list := append([]model.GymService{}, d.services...)
	s.mu.RUnlock()
	mygin.Wrapped(c, http.StatusOK, "Services fetched.", list)
}

// getService 裸对象
func (s *Server) getService(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	d := s.gym(c)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, svc := range d.services {
		if svc.ID == id {
			c.JSON(http.StatusOK, svc)
			return
		}
	}
	mygin.NotFound(c)
}

// contactInfo 裸对象
func (s *Server) contactInfo(c *gin.Context) {
	d := s.gym(c)
	s.mu.RLock()
	info := d.contact
	s.mu.RUnlock()
	c.JSON(http.StatusOK, info)
}

func (s *Server) submitContact(c *gin.Context) {
	var msg model.ContactMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		mygin.ValidationFailed(c, map[string][]string{"body": {err.Error()}})
		return
	}
	if errs := msg.Validate(); errs != nil {
		mygin.ValidationFailed(c, errs)
		return
	}
	d := s.gym(c)
	s.mu.Lock()
	d.inbox = append(d.inbox, msg)
	s.mu.Unlock()
	mygin.Wrapped[any](c, http.StatusCreated, "Thank you for your message. We will get back to you shortly.", nil)
}
