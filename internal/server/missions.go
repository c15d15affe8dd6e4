package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"missiond/internal/decomposer"
	"missiond/internal/mission"
	"missiond/internal/store"
	"missiond/internal/supervisor"
)

type missions struct {
	store store.Store
	sup   *supervisor.Supervisor
	log   *zap.Logger
}

func newMissions(st store.Store, sup *supervisor.Supervisor, log *zap.Logger) missions {
	return missions{store: st, sup: sup, log: log}
}

func (h missions) Create(c *gin.Context) {
	var req struct {
		Goal string `json:"goal" binding:"required,min=1,max=4000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid request body", "detail": err.Error()})
		return
	}

	m, err := h.sup.CreateMission(c.Request.Context(), req.Goal)
	if err != nil {
		if errors.Is(err, decomposer.ErrDecomposition) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"err":     "goal decomposition failed",
				"detail":  err.Error(),
				"mission": m,
			})
			return
		}
		h.log.Error("mission create failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"err": "could not create mission"})
		return
	}

	if !mission.IsTerminal(m.Status) {
		h.sup.Submit(m.ID)
	}
	c.JSON(http.StatusCreated, m)
}

func (h missions) Get(c *gin.Context) {
	m, ok := h.loadMission(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h missions) ListActive(c *gin.Context) {
	ms, err := h.store.ListActiveMissions(c.Request.Context())
	if err != nil {
		h.log.Error("mission list failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"err": "could not list missions"})
		return
	}
	if ms == nil {
		ms = []*mission.Mission{}
	}
	c.JSON(http.StatusOK, gin.H{"missions": ms})
}

func (h missions) Status(c *gin.Context) {
	m, ok := h.loadMission(c)
	if !ok {
		return
	}

	completed, failed := 0, 0
	for _, t := range m.Tasks {
		switch t.Status {
		case mission.StatusCompleted:
			completed++
		case mission.StatusFailed:
			failed++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"id":              m.ID,
		"status":          m.Status,
		"result":          m.Result,
		"tasks_total":     len(m.Tasks),
		"tasks_completed": completed,
		"tasks_failed":    failed,
	})
}

func (h missions) Update(c *gin.Context) {
	m, ok := h.loadMission(c)
	if !ok {
		return
	}

	var req struct {
		Status *string `json:"status"`
		Result *string `json:"result"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid request body", "detail": err.Error()})
		return
	}

	// Status moves only forward; the one externally allowed transition is
	// marking a non-terminal mission failed (cancellation).
	if req.Status != nil {
		if *req.Status != mission.StatusFailed {
			c.JSON(http.StatusBadRequest, gin.H{"err": "status can only be set to failed"})
			return
		}
		if mission.IsTerminal(m.Status) {
			c.JSON(http.StatusConflict, gin.H{"err": "mission already finalized"})
			return
		}
		if _, err := h.sup.Cancel(m.ID); err != nil {
			// Not running; finalize directly.
			h.log.Info("cancelling idle mission", zap.String("mission_id", m.ID))
		}
	}

	if err := h.store.UpdateMission(c.Request.Context(), m.ID, store.MissionUpdate{Status: req.Status, Result: req.Result}); err != nil {
		h.log.Error("mission update failed", zap.String("mission_id", m.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"err": "could not update mission"})
		return
	}

	updated, err := h.store.GetMission(c.Request.Context(), m.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": "could not reload mission"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h missions) Delete(c *gin.Context) {
	if err := h.store.DeleteMission(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"err": "mission not found"})
			return
		}
		h.log.Error("mission delete failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"err": "could not delete mission"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h missions) GetTask(c *gin.Context) {
	t, ok := h.loadTask(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h missions) UpdateTask(c *gin.Context) {
	t, ok := h.loadTask(c)
	if !ok {
		return
	}

	var req struct {
		Status *string `json:"status"`
		Result *string `json:"result"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": "invalid request body", "detail": err.Error()})
		return
	}

	if req.Status != nil {
		if *req.Status != mission.StatusFailed {
			c.JSON(http.StatusBadRequest, gin.H{"err": "status can only be set to failed"})
			return
		}
		if mission.IsTerminal(t.Status) {
			c.JSON(http.StatusConflict, gin.H{"err": "task already finalized"})
			return
		}
	}

	if err := h.store.UpdateTask(c.Request.Context(), t.ID, store.TaskUpdate{Status: req.Status, Result: req.Result}); err != nil {
		h.log.Error("task update failed", zap.String("task_id", t.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"err": "could not update task"})
		return
	}

	updated, err := h.store.GetTask(c.Request.Context(), t.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": "could not reload task"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h missions) DeleteTask(c *gin.Context) {
	t, ok := h.loadTask(c)
	if !ok {
		return
	}
	if err := h.store.DeleteTask(c.Request.Context(), t.ID); err != nil {
		h.log.Error("task delete failed", zap.String("task_id", t.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"err": "could not delete task"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h missions) loadMission(c *gin.Context) (*mission.Mission, bool) {
	m, err := h.store.GetMission(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"err": "mission not found"})
		} else {
			h.log.Error("mission load failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"err": "could not load mission"})
		}
		return nil, false
	}
	return m, true
}

func (h missions) loadTask(c *gin.Context) (*mission.Task, bool) {
	t, err := h.store.GetTask(c.Request.Context(), c.Param("tid"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"err": "task not found"})
		} else {
			h.log.Error("task load failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"err": "could not load task"})
		}
		return nil, false
	}
	if t.MissionID != c.Param("id") {
		c.JSON(http.StatusNotFound, gin.H{"err": "task not found in this mission"})
		return nil, false
	}
	return t, true
}
