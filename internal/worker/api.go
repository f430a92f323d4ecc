package worker

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hively/hively/internal/common"
	"github.com/hively/hively/internal/model"
)

// registerRoutes mounts the local data API and the notification-click
// endpoint ahead of the fetch-policy fallback. The shell reads and writes
// its state exclusively through /api; every mutation flows through the
// snapshot manager, so all consumers converge via the change bus.
func (g *Gateway) registerRoutes() {
	if g.snapshots != nil {
		api := g.engine.Group("/api")
		api.GET("/snapshot", g.getSnapshot)
		api.POST("/expenses", g.addExpense)
		api.PUT("/expenses/:id", g.updateExpense)
		api.DELETE("/expenses/:id", g.deleteExpense)
		api.POST("/categories", g.addCategory)
		api.DELETE("/categories/:id", g.deleteCategory)
		api.POST("/reminders", g.addReminder)
		api.DELETE("/reminders/:id", g.deleteReminder)
		api.PUT("/settings", g.saveSettings)
	}
	if g.clicks != nil {
		g.engine.GET("/_notify/click", g.notificationClick)
	}
}

func (g *Gateway) getSnapshot(c *gin.Context) {
	snap := g.snapshots.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"loading":    g.snapshots.Loading(),
		"settings":   snap.Settings,
		"expenses":   snap.Expenses,
		"categories": snap.Categories,
		"reminders":  snap.Reminders,
	})
}

func (g *Gateway) addExpense(c *gin.Context) {
	var expense model.Expense
	if err := c.ShouldBindJSON(&expense); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := g.snapshots.AddExpense(c.Request.Context(), &expense); err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

func (g *Gateway) updateExpense(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var expense model.Expense
	if err := c.ShouldBindJSON(&expense); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	expense.ID = id
	if err := g.snapshots.UpdateExpense(c.Request.Context(), &expense); err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, expense)
}

func (g *Gateway) deleteExpense(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := g.snapshots.DeleteExpense(c.Request.Context(), id); err != nil {
		apiError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (g *Gateway) addCategory(c *gin.Context) {
	var category model.Category
	if err := c.ShouldBindJSON(&category); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := g.snapshots.AddCategory(c.Request.Context(), &category); err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (g *Gateway) deleteCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := g.snapshots.DeleteCategory(c.Request.Context(), id); err != nil {
		apiError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (g *Gateway) addReminder(c *gin.Context) {
	var reminder model.Reminder
	if err := c.ShouldBindJSON(&reminder); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := g.snapshots.AddReminder(c.Request.Context(), &reminder); err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reminder)
}

func (g *Gateway) deleteReminder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := g.snapshots.DeleteReminder(c.Request.Context(), id); err != nil {
		apiError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (g *Gateway) saveSettings(c *gin.Context) {
	var settings model.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := g.snapshots.SaveSettings(c.Request.Context(), &settings); err != nil {
		apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// notificationClick dismisses the tagged notification and surfaces one
// client at its target route.
func (g *Gateway) notificationClick(c *gin.Context) {
	tag := c.Query("tag")
	if tag == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing tag"})
		return
	}
	if err := g.clicks.HandleClick(c.Request.Context(), tag); err != nil {
		apiError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func apiError(c *gin.Context, err error) {
	if errors.Is(err, common.ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
