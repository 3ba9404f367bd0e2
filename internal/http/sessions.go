package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"librarium/internal/entities"
)

// SessionReader lists past import runs.
type SessionReader interface {
	ListByUser(userID uint) ([]entities.ImportSession, error)
	GetByID(id uint) (*entities.ImportSession, error)
}

// SessionsController serves the import history API.
type SessionsController struct {
	sessions SessionReader
}

func NewSessionsController(sessions SessionReader) *SessionsController {
	return &SessionsController{sessions: sessions}
}

// List handles GET /api/imports.
func (ctrl *SessionsController) List(c *gin.Context) {
	sessions, err := ctrl.sessions.ListByUser(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "listing import sessions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"imports": sessions, "count": len(sessions)})
}

// Get handles GET /api/imports/:id.
func (ctrl *SessionsController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	session, err := ctrl.sessions.GetByID(id)
	if err != nil {
		respondNotFound(c, "import session")
		return
	}
	if session.UserID != GetUserID(c) {
		respondNotFound(c, "import session")
		return
	}
	c.JSON(http.StatusOK, session)
}
