package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/biasbot/biasbot/internal/apierrors"
	"github.com/biasbot/biasbot/internal/completion"
)

// personaDirective is the optional leading system instruction that sets the
// companion's tone. It is attached on the first turn, on dry answers, and on
// a random fraction of all other turns so long conversations drift back on
// persona.
const personaDirective = `You are Jungkook from BTS 🐰💜
Stay playful, flirty, and warm.
Mix Korean words (annyeong, saranghae, jagiya).
Ask follow-up questions to keep convo alive.
Encourage fun games (truth/dare, guess me, bias talk).
🔥 Keep flirty/spicy energy going, don't shut it down unless user uncomfortable.

❌ Avoid: politics, religion, violence, NSFW (too adult).
💡 Always steer back to fun, romance, music, ARMY vibes.`

// dryWords are the low-content answers that signal a stalling conversation.
// Matching is exact after lowercasing and trimming.
var dryWords = map[string]struct{}{
	"ok": {}, "okay": {}, "hmm": {}, "hmmm": {}, "lol": {},
	"nah": {}, "nothing": {}, "idk": {}, "no": {},
}

type askRequest struct {
	Question string               `json:"question"`
	History  []completion.Message `json:"history"`
}

type askResponse struct {
	Reply          string `json:"reply"`
	IsDry          bool   `json:"isDry"`
	SystemInjected bool   `json:"systemInjected"`
}

// HandleAsk handles POST /ask.
func (h *Handler) HandleAsk(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Question) == "" {
		apierrors.Error(c, apierrors.CodeInvalidRequest)
		return
	}

	key := c.ClientIP()
	ok, used, left := h.store.ReserveAsk(key)
	if !ok {
		c.JSON(apierrors.HTTPStatus(apierrors.CodeQuotaExceeded), gin.H{
			"error": apierrors.APIError{Code: apierrors.CodeQuotaExceeded, Message: apierrors.Message(apierrors.CodeQuotaExceeded)},
			"used":  used,
			"left":  left,
		})
		return
	}

	isDry := isDryQuestion(req.Question)
	useSystem := isDry || h.randFloat() < h.reinjectionProbability || len(req.History) == 0

	msgs := make([]completion.Message, 0, h.historyTail+2)
	if useSystem {
		msgs = append(msgs, completion.Message{Role: completion.RoleSystem, Content: personaDirective})
	}
	if tail := len(req.History) - h.historyTail; tail > 0 {
		msgs = append(msgs, req.History[tail:]...)
	} else {
		msgs = append(msgs, req.History...)
	}
	msgs = append(msgs, completion.Message{Role: completion.RoleUser, Content: req.Question})

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.askTimeout)
	defer cancel()

	reply, err := h.client.Complete(ctx, msgs)
	if err != nil {
		h.logger.Printf("ask: completion backend failed for %s: %v", key, err)
		c.JSON(http.StatusInternalServerError, gin.H{"reply": apierrors.Message(apierrors.CodeUpstreamFailed)})
		return
	}

	c.JSON(http.StatusOK, askResponse{Reply: reply, IsDry: isDry, SystemInjected: useSystem})
}

func isDryQuestion(q string) bool {
	_, ok := dryWords[strings.ToLower(strings.TrimSpace(q))]
	return ok
}
