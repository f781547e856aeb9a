package ui

import (
	"net/http"

	"sliceinsight/adapters/payload"
	"sliceinsight/domain/insight"
	"sliceinsight/internal/errors"

	"github.com/gin-gonic/gin"
)

type modeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

type sensitivityRequest struct {
	Sensitivity string `json:"sensitivity" binding:"required"`
}

type toggleRowRequest struct {
	KeyPath   []string `json:"keyPath"`
	Dimension string   `json:"dimension"`
}

type selectRequest struct {
	Key string `json:"key" binding:"required"`
}

func (s *Server) handleView(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.service.View())
}

// handleIngest accepts a payload pushed by the statistics backend
func (s *Server) handleIngest(c *gin.Context) {
	metrics, err := payload.Decode(c.Request.Body)
	if err != nil {
		s.respondError(c, errors.InvalidInput(err.Error()))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.service.UpdateMetrics(metrics); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.service.View())
}

func (s *Server) handleReload(c *gin.Context) {
	if err := s.Reload(c.Request.Context()); err != nil {
		s.respondError(c, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, s.service.View())
}

func (s *Server) handleSetMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errors.InvalidInput(err.Error()))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.service.SetMode(insight.Mode(req.Mode)); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.service.View())
}

func (s *Server) handleSetSensitivity(c *gin.Context) {
	var req sensitivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errors.InvalidInput(err.Error()))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.service.SetSensitivity(insight.Sensitivity(req.Sensitivity)); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.service.View())
}

func (s *Server) handleToggleGroupRows(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.service.ToggleGroupRows(); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.service.View())
}

func (s *Server) handleToggleRow(c *gin.Context) {
	var req toggleRowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errors.InvalidInput(err.Error()))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	row, err := s.service.ToggleRow(req.KeyPath, req.Dimension)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"row": row})
}

func (s *Server) handleSelect(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, errors.InvalidInput(err.Error()))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.service.SelectSliceForDetail(req.Key); err != nil {
		s.respondError(c, err)
		return
	}
	info, _ := s.service.SelectedSlice()
	c.JSON(http.StatusOK, gin.H{"slice": info})
}

func (s *Server) handleSelection(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.service.SelectedSlice()
	if !ok {
		s.respondError(c, errors.NotFound("selected slice"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"slice": info})
}
