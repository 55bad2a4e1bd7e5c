package api

import (
	"chat-room/domain"
	"chat-room/errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

func (h *Handler) RegisterParticipant(c *gin.Context) {
	var body registerRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.abort(c, fmt.Errorf("%w: %v", errors.ErrValidation, err))
		return
	}
	if err := h.presence.Register(c.Request.Context(), domain.RegisterCommand{Name: body.Name}); err != nil {
		h.abort(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (h *Handler) ListParticipants(c *gin.Context) {
	participants, err := h.presence.List(c.Request.Context())
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, toParticipantResponses(participants))
}

func (h *Handler) Heartbeat(c *gin.Context) {
	if err := h.presence.Heartbeat(c.Request.Context(), c.GetHeader(identityHeader)); err != nil {
		h.abort(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) SendMessage(c *gin.Context) {
	var body messageRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.abort(c, fmt.Errorf("%w: %v", errors.ErrValidation, err))
		return
	}
	err := h.messages.Send(c.Request.Context(), domain.SendMessageCommand{
		From: c.GetHeader(identityHeader),
		To:   body.To,
		Text: body.Text,
		Type: domain.MessageType(body.Type),
	})
	if err != nil {
		h.abort(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (h *Handler) ListMessages(c *gin.Context) {
	cmd := domain.ListMessagesCommand{Requester: c.GetHeader(identityHeader)}
	if raw, ok := c.GetQuery("limit"); ok {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			h.abort(c, fmt.Errorf("%w: limit %q is not a number", errors.ErrValidation, raw))
			return
		}
		cmd.Limit = &limit
	}

	messages, err := h.messages.List(c.Request.Context(), cmd)
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, toMessageResponses(messages))
}

func (h *Handler) EditMessage(c *gin.Context) {
	var body messageRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.abort(c, fmt.Errorf("%w: %v", errors.ErrValidation, err))
		return
	}
	err := h.messages.Edit(c.Request.Context(), domain.EditMessageCommand{
		ID:        domain.MessageID(c.Param("messageId")),
		Requester: c.GetHeader(identityHeader),
		To:        body.To,
		Text:      body.Text,
		Type:      domain.MessageType(body.Type),
	})
	if err != nil {
		h.abort(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) DeleteMessage(c *gin.Context) {
	err := h.messages.Delete(c.Request.Context(), domain.DeleteMessageCommand{
		ID:        domain.MessageID(c.Param("messageId")),
		Requester: c.GetHeader(identityHeader),
	})
	if err != nil {
		h.abort(c, err)
		return
	}
	c.Status(http.StatusOK)
}
