package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/domino14/caissa/ai/bot"
	"github.com/domino14/caissa/game"
	"github.com/domino14/caissa/position"
)

type server struct {
	game              *game.Game
	hub               *Hub
	defaultDifficulty string
}

type moveRequest struct {
	Move string `json:"move"`
}

type aiMoveRequest struct {
	Difficulty string `json:"difficulty"`
}

type takebackRequest struct {
	Plies int `json:"plies"`
}

type positionRequest struct {
	FEN string `json:"fen"`
}

func errorJSON(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"status": "error", "message": message})
}

// bindOptionalJSON binds the request body into obj. A missing or empty body,
// chunked or not, leaves obj untouched.
func bindOptionalJSON(c *gin.Context, obj any) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (s *server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *server) state(c *gin.Context) {
	c.JSON(http.StatusOK, s.game.State())
}

func (s *server) difficulties(c *gin.Context) {
	tiers := make([]bot.Difficulty, 0, len(bot.Difficulties))
	for _, name := range bot.DifficultyNames() {
		tiers = append(tiers, bot.Difficulties[name])
	}
	c.JSON(http.StatusOK, gin.H{"default": bot.DefaultDifficulty, "difficulties": tiers})
}

func (s *server) reset(c *gin.Context) {
	st := s.game.Reset()
	c.JSON(http.StatusOK, gin.H{"status": "success", "fen": st.FEN})
}

func (s *server) makeMove(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid request")
		return
	}
	st, err := s.game.PlayUserMove(req.Move)
	switch {
	case errors.Is(err, game.ErrGameOver):
		errorJSON(c, http.StatusConflict, "Game is over")
		return
	case err != nil:
		errorJSON(c, http.StatusBadRequest, "Invalid move")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "fen": st.FEN, "game_status": st.Status})
}

func (s *server) aiMove(c *gin.Context) {
	var req aiMoveRequest
	// An empty body means the default difficulty.
	if err := bindOptionalJSON(c, &req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid request")
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = s.defaultDifficulty
	}
	st, san, err := s.game.PlayAIMove(c.Request.Context(), req.Difficulty)
	switch {
	case errors.Is(err, game.ErrGameOver):
		errorJSON(c, http.StatusConflict, "Game is over")
		return
	case errors.Is(err, bot.ErrDepthTooLarge):
		errorJSON(c, http.StatusBadRequest, "Difficulty too deep for this server")
		return
	case err != nil:
		log.Err(err).Str("difficulty", req.Difficulty).Msg("ai-move-failed")
		errorJSON(c, http.StatusInternalServerError, "Could not compute a move")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "move": san, "fen": st.FEN,
		"game_status": st.Status})
}

func (s *server) takeback(c *gin.Context) {
	req := takebackRequest{Plies: 1}
	if err := bindOptionalJSON(c, &req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid request")
		return
	}
	st, err := s.game.Takeback(req.Plies)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "Nothing to take back")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "fen": st.FEN})
}

func (s *server) setPosition(c *gin.Context) {
	var req positionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "Invalid request")
		return
	}
	st, err := s.game.SetFEN(req.FEN)
	if errors.Is(err, position.ErrInvalidFEN) {
		errorJSON(c, http.StatusBadRequest, "Invalid FEN")
		return
	} else if err != nil {
		errorJSON(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "fen": st.FEN, "game_status": st.Status})
}
