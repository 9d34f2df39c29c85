package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-portal-api/internal/dto"
	"github.com/noah-isme/academic-portal-api/internal/middleware"
	"github.com/noah-isme/academic-portal-api/internal/models"
	"github.com/noah-isme/academic-portal-api/internal/workflow"
	appErrors "github.com/noah-isme/academic-portal-api/pkg/errors"
	"github.com/noah-isme/academic-portal-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.CurrentUser(c)
}

// outcomeStatus picks an HTTP status for a typed outcome. Clients branch on
// the body's success flag; the status only helps proxies and logs.
func outcomeStatus(outcome workflow.Outcome) int {
	switch outcome {
	case workflow.OutcomeAllowed:
		return http.StatusOK
	case workflow.OutcomeAlreadyTransitioned:
		return appErrors.ErrAlreadyTransitioned.Status
	case workflow.OutcomeNotFound:
		return appErrors.ErrNotFound.Status
	case workflow.OutcomeFailed:
		return appErrors.ErrTransitionFailed.Status
	default:
		return appErrors.ErrGuardRejected.Status
	}
}

func writeOutcome(c *gin.Context, out dto.TransitionOutcome, fields gin.H) {
	status := outcomeStatus(out.Outcome)
	if out.Success {
		status = http.StatusOK
	}
	response.Outcome(c, status, out.Success, string(out.Outcome), out.Message, fields)
}

func bindJSON(c *gin.Context, dest interface{}, message string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message))
		return false
	}
	return true
}
