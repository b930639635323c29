package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pcbuildsite/pcbuild-backend/internal/drafts/domain"
)

func (h *Handler) list(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.List(c.Request.Context()))
}

func (h *Handler) save(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, saveResponse{Success: false, Message: "could not read request body"})
		return
	}

	draft, err := h.svc.Save(c.Request.Context(), body)
	if err != nil {
		c.JSON(http.StatusInternalServerError, saveResponse{
			Success: false,
			Message: fmt.Sprintf("Error saving draft: %v", err),
		})
		return
	}

	c.JSON(http.StatusOK, saveResponse{
		Success: true,
		Message: fmt.Sprintf("Draft saved with ID %d", draft.ID),
		BuildID: draft.ID,
	})
}

func (h *Handler) delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, deleteResponse{Success: false, Message: "invalid draft id"})
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrDraftNotFound) {
			c.JSON(http.StatusNotFound, deleteResponse{
				Success: false,
				Message: fmt.Sprintf("Draft %d not found", id),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, deleteResponse{
			Success: false,
			Message: fmt.Sprintf("Error deleting draft: %v", err),
		})
		return
	}

	c.JSON(http.StatusOK, deleteResponse{
		Success: true,
		Message: fmt.Sprintf("Draft %d deleted", id),
	})
}
