package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"Gin_postgres_redis_device_inventory/app"
	"Gin_postgres_redis_device_inventory/models"

	"github.com/gin-gonic/gin"
)

type LendeeController struct{ *Srv }

func NewLendeeController(s *Srv) *LendeeController { return &LendeeController{Srv: s} }

// GET /api/lendees?q=&page=&size=
func (lc *LendeeController) ListLendees(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	res, err := lc.Repo.ListLendees(c.Request.Context(), c.Query("q"), page, size)
	if err != nil {
		lc.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/lendees/:id
func (lc *LendeeController) GetLendee(c *gin.Context) {
	l, err := lc.Repo.FindLendeeByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		lc.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"lendee": l})
}

// POST /api/lendees 姓名或受试者编号至少一个
func (lc *LendeeController) CreateLendee(c *gin.Context) {
	var in struct {
		FirstName string `json:"firstName" binding:"max=100"`
		LastName  string `json:"lastName" binding:"max=100"`
		Email     string `json:"email" binding:"omitempty,email"`
		SubjectID string `json:"subjectId" binding:"max=64"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		bindError(c, err)
		return
	}
	l := &models.Lendee{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     in.Email,
	}
	if sid := strings.TrimSpace(in.SubjectID); sid != "" {
		l.SubjectID = &sid
	}
	if l.FullName() == "" && l.SubjectID == nil {
		badFields(c, map[string]string{
			"firstName": app.MsgRequired,
			"subjectId": app.MsgRequired,
		})
		return
	}
	if err := lc.Repo.CreateLendee(c.Request.Context(), l); err != nil {
		lc.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{"lendee": l})
}
